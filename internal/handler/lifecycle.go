package handler

import (
	"net/http"

	"github.com/fanpicks/platform/internal/domain"
	"github.com/fanpicks/platform/internal/service"
)

// LifecycleHandler serves events, matches and contests, including the
// admin status transitions that cascade between them.
type LifecycleHandler struct {
	events   *service.EventService
	matches  *service.MatchService
	contests *service.ContestService
}

// NewLifecycleHandler creates a new LifecycleHandler.
func NewLifecycleHandler(events *service.EventService, matches *service.MatchService, contests *service.ContestService) *LifecycleHandler {
	return &LifecycleHandler{events: events, matches: matches, contests: contests}
}

// ListEvents handles GET /events?status=.
func (h *LifecycleHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	var status *domain.EventStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s, ok := domain.ParseEventStatus(raw)
		if !ok {
			RespondError(w, domain.ErrValidation("invalid status "+raw))
			return
		}
		status = &s
	}

	events, err := h.events.List(r.Context(), status)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, events)
}

// GetEvent handles GET /events/{id}.
func (h *LifecycleHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}

	event, err := h.events.Get(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, event)
}

// ListEventMatches handles GET /events/{id}/matches.
func (h *LifecycleHandler) ListEventMatches(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}

	matches, err := h.matches.ListByEvent(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, matches)
}

// CreateEvent handles POST /admin/events.
func (h *LifecycleHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var input service.CreateEventInput
	if !decodeAndValidate(w, r, &input) {
		return
	}

	event, err := h.events.Create(r.Context(), input)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, event)
}

// UpdateEventStatus handles PATCH /admin/events/{id}/status.
func (h *LifecycleHandler) UpdateEventStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	var body statusBody
	if !decodeAndValidate(w, r, &body) {
		return
	}
	to, ok := domain.ParseEventStatus(body.Status)
	if !ok {
		RespondError(w, domain.ErrValidation("invalid status "+body.Status))
		return
	}

	event, err := h.events.UpdateStatus(r.Context(), id, to)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, event)
}

// GetMatch handles GET /matches/{id}.
func (h *LifecycleHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}

	match, err := h.matches.Get(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, match)
}

// ListMatchContests handles GET /matches/{id}/contests.
func (h *LifecycleHandler) ListMatchContests(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}

	contests, err := h.contests.ListByMatch(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, contests)
}

// CreateMatch handles POST /admin/matches.
func (h *LifecycleHandler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	var input service.CreateMatchInput
	if !decodeAndValidate(w, r, &input) {
		return
	}

	match, err := h.matches.Create(r.Context(), input)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, match)
}

// UpdateMatchStatus handles PATCH /admin/matches/{id}/status.
func (h *LifecycleHandler) UpdateMatchStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	var body statusBody
	if !decodeAndValidate(w, r, &body) {
		return
	}
	to, ok := domain.ParseMatchStatus(body.Status)
	if !ok {
		RespondError(w, domain.ErrValidation("invalid status "+body.Status))
		return
	}

	match, err := h.matches.UpdateStatus(r.Context(), id, to)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, match)
}

// DeleteMatch handles DELETE /admin/matches/{id}.
func (h *LifecycleHandler) DeleteMatch(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}

	if err := h.matches.Delete(r.Context(), id); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusNoContent, nil)
}

// ListContests handles GET /contests?status=.
func (h *LifecycleHandler) ListContests(w http.ResponseWriter, r *http.Request) {
	var status *domain.ContestStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s, ok := domain.ParseContestStatus(raw)
		if !ok {
			RespondError(w, domain.ErrValidation("invalid status "+raw))
			return
		}
		status = &s
	}

	contests, err := h.contests.List(r.Context(), status)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, contests)
}

// GetContest handles GET /contests/{id}.
func (h *LifecycleHandler) GetContest(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}

	contest, err := h.contests.Get(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, contest)
}

// CreateContest handles POST /admin/contests.
func (h *LifecycleHandler) CreateContest(w http.ResponseWriter, r *http.Request) {
	var input service.CreateContestInput
	if !decodeAndValidate(w, r, &input) {
		return
	}

	contest, err := h.contests.Create(r.Context(), input)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, contest)
}

// UpdateContestStatus handles PATCH /admin/contests/{id}/status.
func (h *LifecycleHandler) UpdateContestStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	var body statusBody
	if !decodeAndValidate(w, r, &body) {
		return
	}
	to, ok := domain.ParseContestStatus(body.Status)
	if !ok {
		RespondError(w, domain.ErrValidation("invalid status "+body.Status))
		return
	}

	contest, err := h.contests.UpdateStatus(r.Context(), id, to)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, contest)
}
