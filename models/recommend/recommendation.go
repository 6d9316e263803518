package recommend

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NextSteps bundles the actionable follow-ups attached to a recommended
// career. Any of the lists may be empty.
type NextSteps struct {
	Courses        []string `json:"courses"`
	Certifications []string `json:"certifications"`
	PracticeAreas  []string `json:"practiceAreas"`
}

// CareerPath is one recommended occupation. Title doubles as the display key
// within a set.
type CareerPath struct {
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	RequiredSkills []string  `json:"requiredSkills"`
	NextSteps      NextSteps `json:"nextSteps"`
	MatchScore     int       `json:"matchScore"`
}

// SkillGapItem compares the user's current skills against one recommended
// career. CareerTitle correlates to a CareerPath.Title by convention only.
type SkillGapItem struct {
	CareerTitle   string   `json:"careerTitle"`
	MissingSkills []string `json:"missingSkills"`
	PresentSkills []string `json:"presentSkills"`
}

// RoadmapStage is one level of the learning progression for the top-ranked
// career.
type RoadmapStage struct {
	Level         string   `json:"level"` // Beginner, Intermediate or Advanced
	Skills        []string `json:"skills"`
	EstimatedTime string   `json:"estimatedTime"`
	Description   string   `json:"description"`
}

// Artifact is the three-array object the model is instructed to emit.
type Artifact struct {
	Recommendations  []CareerPath   `json:"recommendations"`
	SkillGapAnalysis []SkillGapItem `json:"skillGapAnalysis"`
	LearningRoadmap  []RoadmapStage `json:"learningRoadmap"`
}

// Validate reports soft violations of the generation contract. The bounds
// are prompt instructions, not acceptance criteria: callers log the
// violations and persist the artifact anyway.
func (a *Artifact) Validate() []string {
	var violations []string

	if n := len(a.Recommendations); n < 3 || n > 5 {
		violations = append(violations, fmt.Sprintf("expected 3-5 recommendations, got %d", n))
	}

	titles := make(map[string]bool, len(a.Recommendations))
	for _, rec := range a.Recommendations {
		if rec.MatchScore < 60 || rec.MatchScore > 95 {
			violations = append(violations, fmt.Sprintf("matchScore %d for %q outside 60-95", rec.MatchScore, rec.Title))
		}
		if titles[rec.Title] {
			violations = append(violations, fmt.Sprintf("duplicate career title %q", rec.Title))
		}
		titles[rec.Title] = true
	}

	for _, gap := range a.SkillGapAnalysis {
		if !titles[gap.CareerTitle] {
			violations = append(violations, fmt.Sprintf("skill gap references unknown career %q", gap.CareerTitle))
		}
	}

	levels := make(map[string]bool, len(a.LearningRoadmap))
	for _, stage := range a.LearningRoadmap {
		switch stage.Level {
		case "Beginner", "Intermediate", "Advanced":
			if levels[stage.Level] {
				violations = append(violations, fmt.Sprintf("duplicate roadmap level %q", stage.Level))
			}
		default:
			violations = append(violations, fmt.Sprintf("unknown roadmap level %q", stage.Level))
		}
		levels[stage.Level] = true
	}

	return violations
}

// CareerRecommendation is the persisted record of the latest generated
// artifact set. One row per user: generation replaces it wholesale.
type CareerRecommendation struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	UserID           uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	Recommendations  datatypes.JSON `gorm:"type:jsonb" json:"recommendations"`
	SkillGapAnalysis datatypes.JSON `gorm:"type:jsonb" json:"skill_gap_analysis"`
	LearningRoadmap  datatypes.JSON `gorm:"type:jsonb" json:"learning_roadmap"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// Store persists recommendation sets in Postgres.
type Store struct {
	DB *gorm.DB
}

// Save upserts the user's recommendation set, keyed by user id. The three
// arrays are written verbatim.
func (s *Store) Save(userID uint, artifact *Artifact) error {
	recs, err := json.Marshal(artifact.Recommendations)
	if err != nil {
		return fmt.Errorf("failed to encode recommendations: %w", err)
	}
	gaps, err := json.Marshal(artifact.SkillGapAnalysis)
	if err != nil {
		return fmt.Errorf("failed to encode skill gap analysis: %w", err)
	}
	roadmap, err := json.Marshal(artifact.LearningRoadmap)
	if err != nil {
		return fmt.Errorf("failed to encode learning roadmap: %w", err)
	}

	row := CareerRecommendation{
		UserID:           userID,
		Recommendations:  recs,
		SkillGapAnalysis: gaps,
		LearningRoadmap:  roadmap,
	}

	return s.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"recommendations", "skill_gap_analysis", "learning_roadmap", "updated_at",
		}),
	}).Create(&row).Error
}

// Latest returns the user's current recommendation set, or
// gorm.ErrRecordNotFound when none has been generated yet.
func (s *Store) Latest(userID uint) (*CareerRecommendation, error) {
	var row CareerRecommendation
	err := s.DB.Where("user_id = ?", userID).Order("created_at DESC").First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}
