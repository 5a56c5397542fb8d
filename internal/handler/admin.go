package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/fanpicks/platform/internal/domain"
	"github.com/fanpicks/platform/internal/service"
	"github.com/fanpicks/platform/internal/sweep"
)

// SweepRunner triggers one completion sweep.
type SweepRunner interface {
	RunOnce(ctx context.Context) (*sweep.Report, error)
}

// AdminHandler serves admin operations that are not plain CRUD.
type AdminHandler struct {
	media   *service.MediaService
	sweeper SweepRunner
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(media *service.MediaService, sweeper SweepRunner) *AdminHandler {
	return &AdminHandler{media: media, sweeper: sweeper}
}

// UploadContestImage handles POST /admin/contests/{id}/image (multipart field "image").
func (h *AdminHandler) UploadContestImage(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	if !h.media.Enabled() {
		RespondError(w, domain.ErrUnavailable("object storage is not configured"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, service.MaxImageBytes+1024)
	if err := r.ParseMultipartForm(service.MaxImageBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			RespondError(w, domain.ErrValidation("image exceeds 5 MiB"))
			return
		}
		RespondError(w, domain.ErrValidation("invalid multipart body"))
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		RespondError(w, domain.ErrValidation("missing image file"))
		return
	}
	defer file.Close()

	contest, err := h.media.UploadContestImage(r.Context(), id, file, header.Header.Get("Content-Type"))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, contest)
}

// RunSweep handles POST /admin/sweep/run.
func (h *AdminHandler) RunSweep(w http.ResponseWriter, r *http.Request) {
	report, err := h.sweeper.RunOnce(r.Context())
	if err != nil {
		RespondError(w, domain.ErrInternal("sweep failed", err))
		return
	}
	RespondJSON(w, http.StatusOK, report)
}
