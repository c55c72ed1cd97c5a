package handlers

import (
	"net/http"

	"github.com/trailfeed/trailfeed-backend/internal/services"
)

const maxUploadSize = 10 << 20 // 10MB

// UploadHandler pushes photos to Cloudinary.
type UploadHandler struct {
	cloudinary *services.CloudinaryService
}

func NewUploadHandler(cloudinary *services.CloudinaryService) *UploadHandler {
	return &UploadHandler{cloudinary: cloudinary}
}

// Upload handles POST /api/upload
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.cloudinary == nil {
		respondError(w, "File uploads are not configured", http.StatusServiceUnavailable)
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, "Failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		respondError(w, "No file provided", http.StatusBadRequest)
		return
	}
	defer file.Close()

	folder := r.URL.Query().Get("folder")
	if folder == "" {
		folder = services.DefaultUploadFolder
	}

	url, err := h.cloudinary.UploadFileFromHeader(r.Context(), fileHeader, folder)
	if err != nil {
		respondError(w, "Failed to upload file", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "File uploaded successfully",
		"url":     url,
	})
}
