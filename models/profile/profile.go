package profile

import (
	"time"

	"github.com/lib/pq"

	"careerpath-backend/config"
)

// Profile holds the career-relevant attributes a user fills in before asking
// for recommendations. List fields are user-curated and kept free of
// duplicates at the point of insertion.
type Profile struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	UserID              uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	EducationLevel      string         `json:"education_level"`
	Skills              pq.StringArray `gorm:"type:text[]" json:"skills"`
	Interests           pq.StringArray `gorm:"type:text[]" json:"interests"`
	PreferredIndustries pq.StringArray `gorm:"type:text[]" json:"preferred_industries"`
	CareerGoals         *string        `gorm:"type:text" json:"career_goals"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

// GetOrCreate returns the user's profile, creating an empty one on first use.
func GetOrCreate(userID uint) (*Profile, error) {
	var p Profile
	err := config.DB.Where(Profile{UserID: userID}).FirstOrCreate(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// AddTo appends value to the list unless it is already present. Reports
// whether the list changed.
func AddTo(list *pq.StringArray, value string) bool {
	for _, v := range *list {
		if v == value {
			return false
		}
	}
	*list = append(*list, value)
	return true
}

// RemoveFrom deletes value from the list, preserving the order of the rest.
// Reports whether the list changed.
func RemoveFrom(list *pq.StringArray, value string) bool {
	for i, v := range *list {
		if v == value {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return true
		}
	}
	return false
}
