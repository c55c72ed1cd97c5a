package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/trailfeed/trailfeed-backend/internal/services"
	"github.com/trailfeed/trailfeed-backend/internal/store"
)

// ErrorResponse is the envelope for all error responses.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, statusCode, ErrorResponse{Success: false, Message: message})
}

// respondServiceError maps service errors onto HTTP statuses without leaking
// internals.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, "Resource not found", http.StatusNotFound)
	case errors.Is(err, services.ErrUnauthorized):
		respondError(w, "Not authorized", http.StatusUnauthorized)
	case errors.Is(err, services.ErrInvalidCredentials):
		respondError(w, "Invalid email or password", http.StatusUnauthorized)
	case errors.Is(err, services.ErrEmailTaken):
		respondError(w, "User with this email already exists", http.StatusConflict)
	case errors.Is(err, services.ErrInvalidResetToken):
		respondError(w, "Invalid or expired reset token", http.StatusBadRequest)
	case errors.Is(err, services.ErrValidation):
		respondError(w, err.Error(), http.StatusBadRequest)
	default:
		log.Printf("internal error: %v", err)
		respondError(w, "Internal server error", http.StatusInternalServerError)
	}
}
