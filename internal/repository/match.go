package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/fanpicks/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type matchRepo struct{}

// NewMatchRepository returns a pgx-backed MatchRepository.
func NewMatchRepository() MatchRepository {
	return &matchRepo{}
}

const matchColumns = `id, event_id, home_team_id, away_team_id, start_time, venue, status, created_at, updated_at`

func scanMatch(row pgx.Row) (*domain.Match, error) {
	m := &domain.Match{}
	err := row.Scan(&m.ID, &m.EventID, &m.HomeTeamID, &m.AwayTeamID, &m.StartTime, &m.Venue,
		&m.Status, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan match: %w", err)
	}
	return m, nil
}

func collectMatches(rows pgx.Rows) ([]domain.Match, error) {
	defer rows.Close()
	matches := []domain.Match{}
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, *m)
	}
	return matches, rows.Err()
}

func (r *matchRepo) Create(ctx context.Context, db DBTX, m *domain.Match) error {
	err := db.QueryRow(ctx, `
		INSERT INTO matches (id, event_id, home_team_id, away_team_id, start_time, venue, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		m.ID, m.EventID, m.HomeTeamID, m.AwayTeamID, m.StartTime, m.Venue, m.Status,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
	return wrapWriteErr("insert match", err)
}

func (r *matchRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Match, error) {
	return scanMatch(db.QueryRow(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id))
}

func (r *matchRepo) LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Match, error) {
	return scanMatch(tx.QueryRow(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1 FOR UPDATE`, id))
}

func (r *matchRepo) ListByEvent(ctx context.Context, db DBTX, eventID uuid.UUID) ([]domain.Match, error) {
	rows, err := db.Query(ctx, `
		SELECT `+matchColumns+` FROM matches WHERE event_id = $1 ORDER BY start_time ASC`, eventID)
	if err != nil {
		return nil, fmt.Errorf("query matches by event: %w", err)
	}
	return collectMatches(rows)
}

func (r *matchRepo) ListByStatus(ctx context.Context, db DBTX, status domain.MatchStatus) ([]domain.Match, error) {
	rows, err := db.Query(ctx, `
		SELECT `+matchColumns+` FROM matches WHERE status = $1 ORDER BY start_time ASC`, status)
	if err != nil {
		return nil, fmt.Errorf("query matches by status: %w", err)
	}
	return collectMatches(rows)
}

func (r *matchRepo) UpdateStatus(ctx context.Context, db DBTX, id uuid.UUID, status domain.MatchStatus) error {
	tag, err := db.Exec(ctx,
		`UPDATE matches SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("update match status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("match", id.String())
	}
	return nil
}

func (r *matchRepo) Delete(ctx context.Context, db DBTX, id uuid.UUID) error {
	tag, err := db.Exec(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete match: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("match", id.String())
	}
	return nil
}
