package recommendations

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"careerpath-backend/config"
	"careerpath-backend/controllers/authentication"
	"careerpath-backend/models/profile"
	"careerpath-backend/models/recommend"
	"careerpath-backend/services"
)

// Handler exposes the recommendation pipeline over HTTP.
type Handler struct {
	Pipeline *services.Pipeline
	Store    *recommend.Store
}

func NewHandler(pipeline *services.Pipeline, store *recommend.Store) *Handler {
	return &Handler{Pipeline: pipeline, Store: store}
}

// Generate runs the full pipeline for the caller and maps each failure kind
// to its HTTP status. Upstream failures are never retried here; the user
// re-triggers manually.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, err := authentication.ValidateToken(r)
	if err != nil {
		http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
		return
	}

	requestID := uuid.NewString()
	log := config.Log.With("request_id", requestID, "user_id", claims.UserID)

	prof, err := profile.GetOrCreate(claims.UserID)
	if err != nil {
		log.Errorw("failed to load profile", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load profile. Please try again.")
		return
	}

	err = h.Pipeline.Generate(r.Context(), claims.UserID, prof)
	switch {
	case err == nil:
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	case errors.Is(err, services.ErrGenerationInFlight):
		writeError(w, http.StatusConflict, "Generation already in progress. Please wait for it to finish.")
	case errors.Is(err, services.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again in a moment.")
	case errors.Is(err, services.ErrCreditsRequired):
		writeError(w, http.StatusPaymentRequired, "AI credits required. Please add credits to continue.")
	default:
		// Config, upstream, parse and persistence failures all surface the
		// same generic message; details stay in the logs.
		log.Errorw("recommendation generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to generate recommendations. Please try again.")
	}
}

// Latest returns the caller's current recommendation set.
func (h *Handler) Latest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, err := authentication.ValidateToken(r)
	if err != nil {
		http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
		return
	}

	row, err := h.Store.Latest(claims.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeError(w, http.StatusNotFound, "No recommendations generated yet.")
		return
	}
	if err != nil {
		config.Log.Errorw("failed to load recommendations", "user_id", claims.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load recommendations.")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(row)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
