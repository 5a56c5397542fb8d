package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/fanpicks/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type contestRepo struct{}

// NewContestRepository returns a pgx-backed ContestRepository.
func NewContestRepository() ContestRepository {
	return &contestRepo{}
}

const contestColumns = `id, match_id, name, description, entry_fee, prize_pool, max_participants,
	image_url, status, created_at, updated_at`

func scanContest(row pgx.Row) (*domain.Contest, error) {
	c := &domain.Contest{}
	var fee, pool pgtype.Numeric
	err := row.Scan(&c.ID, &c.MatchID, &c.Name, &c.Description, &fee, &pool, &c.MaxParticipants,
		&c.ImageURL, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan contest: %w", err)
	}
	if c.EntryFee, err = NumericToDecimal(fee); err != nil {
		return nil, fmt.Errorf("contest entry_fee: %w", err)
	}
	if c.PrizePool, err = NumericToDecimal(pool); err != nil {
		return nil, fmt.Errorf("contest prize_pool: %w", err)
	}
	return c, nil
}

func collectContests(rows pgx.Rows) ([]domain.Contest, error) {
	defer rows.Close()
	contests := []domain.Contest{}
	for rows.Next() {
		c, err := scanContest(rows)
		if err != nil {
			return nil, err
		}
		contests = append(contests, *c)
	}
	return contests, rows.Err()
}

func (r *contestRepo) Create(ctx context.Context, db DBTX, c *domain.Contest) error {
	err := db.QueryRow(ctx, `
		INSERT INTO contests (id, match_id, name, description, entry_fee, prize_pool,
			max_participants, image_url, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`,
		c.ID, c.MatchID, c.Name, c.Description, DecimalToNumeric(c.EntryFee), DecimalToNumeric(c.PrizePool),
		c.MaxParticipants, c.ImageURL, c.Status,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	return wrapWriteErr("insert contest", err)
}

func (r *contestRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Contest, error) {
	return scanContest(db.QueryRow(ctx, `SELECT `+contestColumns+` FROM contests WHERE id = $1`, id))
}

func (r *contestRepo) LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Contest, error) {
	return scanContest(tx.QueryRow(ctx, `SELECT `+contestColumns+` FROM contests WHERE id = $1 FOR UPDATE`, id))
}

func (r *contestRepo) List(ctx context.Context, db DBTX, status *domain.ContestStatus) ([]domain.Contest, error) {
	rows, err := db.Query(ctx, `
		SELECT `+contestColumns+`
		FROM contests
		WHERE $1::text IS NULL OR status = $1
		ORDER BY created_at DESC`, status)
	if err != nil {
		return nil, fmt.Errorf("query contests: %w", err)
	}
	return collectContests(rows)
}

func (r *contestRepo) ListByMatch(ctx context.Context, db DBTX, matchID uuid.UUID) ([]domain.Contest, error) {
	rows, err := db.Query(ctx, `
		SELECT `+contestColumns+` FROM contests WHERE match_id = $1 ORDER BY created_at ASC`, matchID)
	if err != nil {
		return nil, fmt.Errorf("query contests by match: %w", err)
	}
	return collectContests(rows)
}

func (r *contestRepo) UpdateStatus(ctx context.Context, db DBTX, id uuid.UUID, status domain.ContestStatus) error {
	tag, err := db.Exec(ctx,
		`UPDATE contests SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("update contest status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("contest", id.String())
	}
	return nil
}

func (r *contestRepo) SetImage(ctx context.Context, db DBTX, id uuid.UUID, url string) error {
	tag, err := db.Exec(ctx,
		`UPDATE contests SET image_url = $1, updated_at = now() WHERE id = $2`, url, id)
	if err != nil {
		return fmt.Errorf("update contest image: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("contest", id.String())
	}
	return nil
}
