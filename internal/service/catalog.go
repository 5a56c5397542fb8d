package service

import (
	"context"
	"strings"

	"github.com/fanpicks/platform/internal/domain"
	"github.com/fanpicks/platform/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CatalogService manages sports and teams.
type CatalogService struct {
	pool    *pgxpool.Pool
	catalog repository.CatalogRepository
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(pool *pgxpool.Pool, catalog repository.CatalogRepository) *CatalogService {
	return &CatalogService{pool: pool, catalog: catalog}
}

// CreateSportInput holds the fields for a new sport.
type CreateSportInput struct {
	Name     string  `json:"name" validate:"required,max=100"`
	ImageURL *string `json:"image_url" validate:"omitempty,url"`
}

// CreateSport inserts a sport. Names are unique.
func (s *CatalogService) CreateSport(ctx context.Context, input CreateSportInput) (*domain.Sport, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrValidation("name is required")
	}

	sport := &domain.Sport{ID: uuid.New(), Name: name, ImageURL: input.ImageURL}
	if err := s.catalog.CreateSport(ctx, s.pool, sport); err != nil {
		if repository.IsUniqueViolation(err, "") {
			return nil, domain.ErrConflict("sport " + name + " already exists")
		}
		return nil, domain.ErrInternal("create sport", err)
	}
	return sport, nil
}

// ListSports returns all sports by name.
func (s *CatalogService) ListSports(ctx context.Context) ([]domain.Sport, error) {
	sports, err := s.catalog.ListSports(ctx, s.pool)
	if err != nil {
		return nil, domain.ErrInternal("list sports", err)
	}
	return sports, nil
}

// CreateTeamInput holds the fields for a new team.
type CreateTeamInput struct {
	SportID   uuid.UUID `json:"sport_id" validate:"required"`
	Name      string    `json:"name" validate:"required,max=100"`
	ShortName string    `json:"short_name" validate:"max=10"`
	LogoURL   *string   `json:"logo_url" validate:"omitempty,url"`
}

// CreateTeam inserts a team under an existing sport.
func (s *CatalogService) CreateTeam(ctx context.Context, input CreateTeamInput) (*domain.Team, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrValidation("name is required")
	}

	sports, err := s.catalog.ListSports(ctx, s.pool)
	if err != nil {
		return nil, domain.ErrInternal("list sports", err)
	}
	found := false
	for _, sp := range sports {
		if sp.ID == input.SportID {
			found = true
			break
		}
	}
	if !found {
		return nil, domain.ErrNotFound("sport", input.SportID.String())
	}

	team := &domain.Team{
		ID:        uuid.New(),
		SportID:   input.SportID,
		Name:      name,
		ShortName: input.ShortName,
		LogoURL:   input.LogoURL,
	}
	if err := s.catalog.CreateTeam(ctx, s.pool, team); err != nil {
		if repository.IsUniqueViolation(err, "") {
			return nil, domain.ErrConflict("team " + name + " already exists for this sport")
		}
		return nil, domain.ErrInternal("create team", err)
	}
	return team, nil
}

// ListTeams returns teams, optionally restricted to one sport.
func (s *CatalogService) ListTeams(ctx context.Context, sportID *uuid.UUID) ([]domain.Team, error) {
	teams, err := s.catalog.ListTeams(ctx, s.pool, sportID)
	if err != nil {
		return nil, domain.ErrInternal("list teams", err)
	}
	return teams, nil
}
