package v1

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/UnknownOlympus/meridian/internal/ingest"
	"github.com/UnknownOlympus/meridian/internal/repository"
	"github.com/UnknownOlympus/meridian/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// maxUploadBytes bounds the in-memory part of a multipart upload; the rest
// spills to temporary files.
const maxUploadBytes = 32 << 20

// Uploader accepts an uploaded CSV stream and returns the upload identifier.
type Uploader interface {
	SaveUpload(ctx context.Context, filename string, file io.Reader) (uuid.UUID, error)
}

// ResultProvider assembles the poll response for one upload.
type ResultProvider interface {
	GetResult(ctx context.Context, uploadID uuid.UUID) (service.Result, error)
}

// GeoHandler serves the upload and result endpoints.
type GeoHandler struct {
	log      *slog.Logger
	uploader Uploader
	results  ResultProvider
}

// NewGeoHandler creates a GeoHandler.
func NewGeoHandler(log *slog.Logger, uploader Uploader, results ResultProvider) *GeoHandler {
	return &GeoHandler{log: log, uploader: uploader, results: results}
}

// UploadResponse is the body returned after a successful upload. The
// returned identifier keys later result polls.
type UploadResponse struct {
	TaskID uuid.UUID `json:"task_id"`
}

// CalculateDistances accepts a multipart CSV upload and registers it for
// background processing.
func (h *GeoHandler) CalculateDistances(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "failed to parse multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	uploadID, err := h.uploader.SaveUpload(r.Context(), header.Filename, file)
	if err != nil {
		if errors.Is(err, ingest.ErrInvalidFile) {
			http.Error(w, "only CSV files are accepted", http.StatusBadRequest)
			return
		}

		h.log.ErrorContext(r.Context(), "Failed to accept upload",
			"filename", header.Filename, "error", err)
		http.Error(w, "failed to accept upload", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusAccepted, UploadResponse{TaskID: uploadID})
}

// GetResult reports the current processing state and data of one upload.
func (h *GeoHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	uploadID, err := uuid.Parse(chi.URLParam(r, "upload_uuid"))
	if err != nil {
		http.Error(w, "invalid upload identifier", http.StatusBadRequest)
		return
	}

	result, err := h.results.GetResult(r.Context(), uploadID)
	if err != nil {
		if errors.Is(err, repository.ErrUploadNotFound) {
			http.Error(w, "upload not found", http.StatusNotFound)
			return
		}

		h.log.ErrorContext(r.Context(), "Failed to assemble result",
			"upload", uploadID, "error", err)
		http.Error(w, "failed to assemble result", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

func (h *GeoHandler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error("Failed to encode response", "error", err)
	}
}
