package profile

import (
	"encoding/json"
	"net/http"

	"github.com/lib/pq"

	"careerpath-backend/config"
	"careerpath-backend/controllers/authentication"
	"careerpath-backend/models/profile"
)

// Get returns the caller's profile, creating an empty one on first access.
func Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, err := authentication.ValidateToken(r)
	if err != nil {
		http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
		return
	}

	p, err := profile.GetOrCreate(claims.UserID)
	if err != nil {
		config.Log.Errorw("failed to load profile", "user_id", claims.UserID, "error", err)
		http.Error(w, "Error loading profile", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(p)
}

// Update changes the profile's scalar fields (education level, career
// goals). List fields are managed through their own add/remove endpoints.
func Update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, err := authentication.ValidateToken(r)
	if err != nil {
		http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
		return
	}

	var input struct {
		EducationLevel *string `json:"education_level"`
		CareerGoals    *string `json:"career_goals"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	p, err := profile.GetOrCreate(claims.UserID)
	if err != nil {
		http.Error(w, "Error loading profile", http.StatusInternalServerError)
		return
	}

	if input.EducationLevel != nil {
		p.EducationLevel = *input.EducationLevel
	}
	if input.CareerGoals != nil {
		p.CareerGoals = input.CareerGoals
	}

	if err := config.DB.Save(p).Error; err != nil {
		config.Log.Errorw("failed to update profile", "user_id", claims.UserID, "error", err)
		http.Error(w, "Error saving profile", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(p)
}

// Skills handles POST (add) and DELETE (remove) for the skills list.
func Skills(w http.ResponseWriter, r *http.Request) {
	handleListField(w, r, func(p *profile.Profile) *pq.StringArray { return &p.Skills })
}

// Interests handles POST (add) and DELETE (remove) for the interests list.
func Interests(w http.ResponseWriter, r *http.Request) {
	handleListField(w, r, func(p *profile.Profile) *pq.StringArray { return &p.Interests })
}

// Industries handles POST (add) and DELETE (remove) for the preferred
// industries list.
func Industries(w http.ResponseWriter, r *http.Request) {
	handleListField(w, r, func(p *profile.Profile) *pq.StringArray { return &p.PreferredIndustries })
}

// handleListField mutates one of the profile's list fields. Adding an entry
// that is already present is a no-op, which is where the no-duplicates
// invariant is enforced.
func handleListField(w http.ResponseWriter, r *http.Request, pick func(*profile.Profile) *pq.StringArray) {
	claims, err := authentication.ValidateToken(r)
	if err != nil {
		http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
		return
	}

	var input struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Value == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	p, err := profile.GetOrCreate(claims.UserID)
	if err != nil {
		http.Error(w, "Error loading profile", http.StatusInternalServerError)
		return
	}

	list := pick(p)
	var changed bool
	switch r.Method {
	case http.MethodPost:
		changed = profile.AddTo(list, input.Value)
	case http.MethodDelete:
		changed = profile.RemoveFrom(list, input.Value)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if changed {
		if err := config.DB.Save(p).Error; err != nil {
			config.Log.Errorw("failed to update profile list", "user_id", claims.UserID, "error", err)
			http.Error(w, "Error saving profile", http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(p)
}
