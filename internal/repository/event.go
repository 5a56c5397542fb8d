package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/fanpicks/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type eventRepo struct{}

// NewEventRepository returns a pgx-backed EventRepository.
func NewEventRepository() EventRepository {
	return &eventRepo{}
}

const eventColumns = `id, sport_id, name, description, start_time, end_time, status, created_at, updated_at`

func scanEvent(row pgx.Row) (*domain.Event, error) {
	e := &domain.Event{}
	err := row.Scan(&e.ID, &e.SportID, &e.Name, &e.Description, &e.StartTime, &e.EndTime,
		&e.Status, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan event: %w", err)
	}
	return e, nil
}

func (r *eventRepo) Create(ctx context.Context, db DBTX, e *domain.Event) error {
	err := db.QueryRow(ctx, `
		INSERT INTO events (id, sport_id, name, description, start_time, end_time, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		e.ID, e.SportID, e.Name, e.Description, e.StartTime, e.EndTime, e.Status,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
	return wrapWriteErr("insert event", err)
}

func (r *eventRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Event, error) {
	return scanEvent(db.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
}

func (r *eventRepo) LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Event, error) {
	return scanEvent(tx.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, id))
}

func (r *eventRepo) List(ctx context.Context, db DBTX, status *domain.EventStatus) ([]domain.Event, error) {
	rows, err := db.Query(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE $1::text IS NULL OR status = $1
		ORDER BY start_time ASC`, status)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []domain.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func (r *eventRepo) UpdateStatus(ctx context.Context, db DBTX, id uuid.UUID, status domain.EventStatus) error {
	tag, err := db.Exec(ctx,
		`UPDATE events SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("update event status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("event", id.String())
	}
	return nil
}
