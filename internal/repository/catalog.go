package repository

import (
	"context"
	"fmt"

	"github.com/fanpicks/platform/internal/domain"
	"github.com/google/uuid"
)

type catalogRepo struct{}

// NewCatalogRepository returns a pgx-backed CatalogRepository.
func NewCatalogRepository() CatalogRepository {
	return &catalogRepo{}
}

func (r *catalogRepo) CreateSport(ctx context.Context, db DBTX, s *domain.Sport) error {
	err := db.QueryRow(ctx,
		`INSERT INTO sports (id, name, image_url) VALUES ($1, $2, $3) RETURNING created_at`,
		s.ID, s.Name, s.ImageURL).Scan(&s.CreatedAt)
	return wrapWriteErr("insert sport", err)
}

func (r *catalogRepo) ListSports(ctx context.Context, db DBTX) ([]domain.Sport, error) {
	rows, err := db.Query(ctx, `SELECT id, name, image_url, created_at FROM sports ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query sports: %w", err)
	}
	defer rows.Close()

	sports := []domain.Sport{}
	for rows.Next() {
		var s domain.Sport
		if err := rows.Scan(&s.ID, &s.Name, &s.ImageURL, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan sport: %w", err)
		}
		sports = append(sports, s)
	}
	return sports, rows.Err()
}

func (r *catalogRepo) CreateTeam(ctx context.Context, db DBTX, t *domain.Team) error {
	err := db.QueryRow(ctx, `
		INSERT INTO teams (id, sport_id, name, short_name, logo_url)
		VALUES ($1, $2, $3, $4, $5) RETURNING created_at`,
		t.ID, t.SportID, t.Name, t.ShortName, t.LogoURL).Scan(&t.CreatedAt)
	return wrapWriteErr("insert team", err)
}

func (r *catalogRepo) ListTeams(ctx context.Context, db DBTX, sportID *uuid.UUID) ([]domain.Team, error) {
	rows, err := db.Query(ctx, `
		SELECT id, sport_id, name, short_name, logo_url, created_at
		FROM teams
		WHERE $1::uuid IS NULL OR sport_id = $1
		ORDER BY name`, sportID)
	if err != nil {
		return nil, fmt.Errorf("query teams: %w", err)
	}
	defer rows.Close()

	teams := []domain.Team{}
	for rows.Next() {
		var t domain.Team
		if err := rows.Scan(&t.ID, &t.SportID, &t.Name, &t.ShortName, &t.LogoURL, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}
