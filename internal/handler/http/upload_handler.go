package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/marketplace-service/internal/storage"
)

type UploadResponse struct {
	URL string `json:"url"`
}

type UploadHandler struct {
	files storage.Storage
}

func NewUploadHandler(files storage.Storage) *UploadHandler {
	return &UploadHandler{files: files}
}

func (h *UploadHandler) RegisterRoutes(router chi.Router) {
	router.Post("/upload", h.handleUpload)
}

func (h *UploadHandler) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		log.Warn().Err(err).Msg("Failed to parse upload form")
		if isTooLarge(err) {
			respondWithError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		respondWithError(w, http.StatusBadRequest, "No image part")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			respondWithError(w, http.StatusBadRequest, "No image part")
			return
		}
		log.Warn().Err(err).Msg("Failed to read uploaded image")
		respondWithError(w, http.StatusBadRequest, "Invalid image")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		respondWithError(w, http.StatusBadRequest, "No selected file")
		return
	}

	name, err := storage.ObjectName("", header.Filename)
	if err != nil {
		log.Error().Err(err).Msg("Failed to name uploaded image")
		respondWithError(w, http.StatusInternalServerError, "Failed to save image")
		return
	}

	path, err := h.files.Put(r.Context(), name, file, header.Header.Get("Content-Type"))
	if err != nil {
		log.Error().Err(err).Str("file", name).Msg("Failed to store uploaded image")
		respondWithError(w, http.StatusInternalServerError, "Failed to save image")
		return
	}

	log.Info().Str("file", name).Int64("size", header.Size).Msg("Image uploaded")
	respondWithJSON(w, http.StatusOK, UploadResponse{URL: path})
}
