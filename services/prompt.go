package services

import (
	"fmt"
	"strings"

	"careerpath-backend/models/profile"
)

// SystemPrompt pins the output contract for the career model. Any change
// here must keep the three array names in sync with recommend.Artifact.
const SystemPrompt = `You are an expert career counselor and AI career guidance system. Based on the user's profile, provide personalized career recommendations.

You must respond with a valid JSON object containing exactly this structure:
{
  "recommendations": [
    {
      "title": "Career Title",
      "description": "Brief description of the career (2-3 sentences)",
      "requiredSkills": ["skill1", "skill2", "skill3", "skill4", "skill5"],
      "nextSteps": {
        "courses": ["Course 1", "Course 2"],
        "certifications": ["Certification 1", "Certification 2"],
        "practiceAreas": ["Practice Area 1", "Practice Area 2"]
      },
      "matchScore": 85
    }
  ],
  "skillGapAnalysis": [
    {
      "careerTitle": "Career Title",
      "missingSkills": ["skill1", "skill2"],
      "presentSkills": ["skill3", "skill4"]
    }
  ],
  "learningRoadmap": [
    {
      "level": "Beginner",
      "skills": ["skill1", "skill2", "skill3"],
      "estimatedTime": "2-3 months",
      "description": "Foundation skills to get started"
    },
    {
      "level": "Intermediate",
      "skills": ["skill4", "skill5", "skill6"],
      "estimatedTime": "4-6 months",
      "description": "Core competencies for the field"
    },
    {
      "level": "Advanced",
      "skills": ["skill7", "skill8", "skill9"],
      "estimatedTime": "6-12 months",
      "description": "Expert-level specializations"
    }
  ]
}

Provide 3-5 career recommendations sorted by matchScore (highest first).
Match scores should be realistic (60-95%) based on how well the user's profile matches.
The skillGapAnalysis should compare user's current skills with each recommended career.
The learningRoadmap should provide a clear progression path for the top career choice.
Be specific and actionable with courses, certifications, and practice areas.`

// BuildUserPrompt renders the profile as labeled lines. Empty fields get an
// explicit placeholder so the prompt keeps the same shape regardless of how
// complete the profile is.
func BuildUserPrompt(p *profile.Profile) string {
	education := p.EducationLevel
	if education == "" {
		education = "Not specified"
	}

	goals := "Not specified"
	if p.CareerGoals != nil && *p.CareerGoals != "" {
		goals = *p.CareerGoals
	}

	return fmt.Sprintf(`Please analyze this user profile and provide career recommendations:

Education Level: %s
Current Skills: %s
Interests: %s
Preferred Industries: %s
Career Goals: %s

Provide personalized career path recommendations based on this profile.`,
		education,
		joinOr(p.Skills, "None specified"),
		joinOr(p.Interests, "None specified"),
		joinOr(p.PreferredIndustries, "Open to all"),
		goals)
}

func joinOr(values []string, placeholder string) string {
	if len(values) == 0 {
		return placeholder
	}
	return strings.Join(values, ", ")
}
