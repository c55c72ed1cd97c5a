package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/trailfeed/trailfeed-backend/internal/middleware"
	"github.com/trailfeed/trailfeed-backend/internal/models"
	"github.com/trailfeed/trailfeed-backend/internal/services"
	"github.com/trailfeed/trailfeed-backend/internal/store"
)

// ExperienceHandler handles experience browsing, publishing and likes.
type ExperienceHandler struct {
	experiences *services.ExperienceService
}

func NewExperienceHandler(experiences *services.ExperienceService) *ExperienceHandler {
	return &ExperienceHandler{experiences: experiences}
}

// List handles GET /api/experiences with optional page, keyword, category,
// country and user query parameters.
func (h *ExperienceHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page := 1
	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
		page = p
	}

	filter := store.ExperienceFilter{
		Category: q.Get("category"),
		Country:  q.Get("country"),
		UserID:   q.Get("user"),
		Keyword:  q.Get("keyword"),
		Page:     page,
	}

	result, err := h.experiences.List(r.Context(), filter)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"experiences": result.Experiences,
		"page":        result.Page,
		"pages":       result.Pages,
		"total":       result.Total,
	})
}

// Get handles GET /api/experiences/{id}
func (h *ExperienceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	exp, err := h.experiences.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"experience": exp,
	})
}

// Create handles POST /api/experiences
func (h *ExperienceHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var exp models.Experience
	if err := json.NewDecoder(r.Body).Decode(&exp); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.experiences.Create(r.Context(), userID, &exp)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success":    true,
		"message":    "Experience created successfully",
		"experience": created,
	})
}

// Update handles PUT /api/experiences/{id}
func (h *ExperienceHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	id := chi.URLParam(r, "id")

	var upd models.ExperienceUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	updated, err := h.experiences.Update(r.Context(), id, userID, upd)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"message":    "Experience updated successfully",
		"experience": updated,
	})
}

// Delete handles DELETE /api/experiences/{id}
func (h *ExperienceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.experiences.Delete(r.Context(), id, userID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Experience deleted successfully",
		"id":      id,
	})
}

// ToggleLike handles PUT /api/experiences/{id}/like. A repeated call from the
// same user takes the like back.
func (h *ExperienceHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	id := chi.URLParam(r, "id")

	likes, liked, err := h.experiences.ToggleLike(r.Context(), id, userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"liked":   liked,
		"likes":   likes,
	})
}
