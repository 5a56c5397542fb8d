package handler

import (
	"context"
	"net/http"

	"github.com/fanpicks/platform/internal/domain"
	"github.com/fanpicks/platform/internal/service"
)

// Limiter admits or rejects a request keyed by caller.
type Limiter interface {
	Check(ctx context.Context, key string) domain.GuardResult
}

// PredictionHandler serves prediction submission and listing.
type PredictionHandler struct {
	svc     *service.PredictionService
	limiter Limiter
}

// NewPredictionHandler creates a new PredictionHandler. limiter may be nil.
func NewPredictionHandler(svc *service.PredictionService, limiter Limiter) *PredictionHandler {
	return &PredictionHandler{svc: svc, limiter: limiter}
}

func (h *PredictionHandler) allow(w http.ResponseWriter, r *http.Request, key string) bool {
	if h.limiter == nil {
		return true
	}
	if res := h.limiter.Check(r.Context(), key); !res.Allowed {
		RespondError(w, domain.ErrRateLimited(res.Reason))
		return false
	}
	return true
}

// Submit handles POST /predictions.
func (h *PredictionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	if !h.allow(w, r, userID.String()) {
		return
	}

	var input service.SubmitInput
	if !decodeAndValidate(w, r, &input) {
		return
	}

	p, err := h.svc.Submit(r.Context(), userID, input)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, p)
}

// Update handles PATCH /predictions/{id}.
func (h *PredictionHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	predictionID, err := uuidParam(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	if !h.allow(w, r, userID.String()) {
		return
	}

	var input service.UpdateInput
	if !decodeAndValidate(w, r, &input) {
		return
	}

	p, err := h.svc.Update(r.Context(), userID, predictionID, input)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, p)
}

// ListMine handles GET /contests/{id}/predictions/me.
func (h *PredictionHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	contestID, err := uuidParam(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}

	predictions, err := h.svc.ListMine(r.Context(), userID, contestID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, predictions)
}
