package handler

import (
	"net/http"

	"github.com/fanpicks/platform/internal/domain"
	"github.com/fanpicks/platform/internal/service"
	"github.com/google/uuid"
)

// CatalogHandler serves sports and teams.
type CatalogHandler struct {
	svc *service.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(svc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// ListSports handles GET /sports.
func (h *CatalogHandler) ListSports(w http.ResponseWriter, r *http.Request) {
	sports, err := h.svc.ListSports(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, sports)
}

// ListTeams handles GET /teams?sport_id=.
func (h *CatalogHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	var sportID *uuid.UUID
	if raw := r.URL.Query().Get("sport_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			RespondError(w, domain.ErrValidation("invalid sport_id"))
			return
		}
		sportID = &id
	}

	teams, err := h.svc.ListTeams(r.Context(), sportID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, teams)
}

// CreateSport handles POST /admin/sports.
func (h *CatalogHandler) CreateSport(w http.ResponseWriter, r *http.Request) {
	var input service.CreateSportInput
	if !decodeAndValidate(w, r, &input) {
		return
	}

	sport, err := h.svc.CreateSport(r.Context(), input)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, sport)
}

// CreateTeam handles POST /admin/teams.
func (h *CatalogHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	var input service.CreateTeamInput
	if !decodeAndValidate(w, r, &input) {
		return
	}

	team, err := h.svc.CreateTeam(r.Context(), input)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, team)
}
