package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/fanpicks/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type predictionRepo struct{}

// NewPredictionRepository returns a pgx-backed PredictionRepository.
func NewPredictionRepository() PredictionRepository {
	return &predictionRepo{}
}

const predictionColumns = `id, user_id, contest_id, question_id, outcome, position, created_at, updated_at`

func scanPrediction(row pgx.Row) (*domain.Prediction, error) {
	p := &domain.Prediction{}
	err := row.Scan(&p.ID, &p.UserID, &p.ContestID, &p.QuestionID, &p.Outcome, &p.Position,
		&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan prediction: %w", err)
	}
	return p, nil
}

func (r *predictionRepo) LockUserContest(ctx context.Context, tx pgx.Tx, userID, contestID uuid.UUID) error {
	key := "prediction:" + userID.String() + ":" + contestID.String()
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key); err != nil {
		return fmt.Errorf("advisory lock: %w", err)
	}
	return nil
}

func (r *predictionRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Prediction, error) {
	return scanPrediction(db.QueryRow(ctx, `SELECT `+predictionColumns+` FROM predictions WHERE id = $1`, id))
}

func (r *predictionRepo) ListByUserContest(ctx context.Context, db DBTX, userID, contestID uuid.UUID) ([]domain.Prediction, error) {
	rows, err := db.Query(ctx, `
		SELECT `+predictionColumns+`
		FROM predictions
		WHERE user_id = $1 AND contest_id = $2
		ORDER BY position ASC, created_at ASC`, userID, contestID)
	if err != nil {
		return nil, fmt.Errorf("query predictions: %w", err)
	}
	defer rows.Close()

	preds := []domain.Prediction{}
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, err
		}
		preds = append(preds, *p)
	}
	return preds, rows.Err()
}

func (r *predictionRepo) Insert(ctx context.Context, db DBTX, p *domain.Prediction) error {
	err := db.QueryRow(ctx, `
		INSERT INTO predictions (id, user_id, contest_id, question_id, outcome, position)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		p.ID, p.UserID, p.ContestID, p.QuestionID, p.Outcome, p.Position,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	return wrapWriteErr("insert prediction", err)
}

func (r *predictionRepo) Update(ctx context.Context, db DBTX, p *domain.Prediction) error {
	err := db.QueryRow(ctx, `
		UPDATE predictions
		SET question_id = $1, outcome = $2, position = $3, updated_at = now()
		WHERE id = $4
		RETURNING updated_at`,
		p.QuestionID, p.Outcome, p.Position, p.ID,
	).Scan(&p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound("prediction", p.ID.String())
	}
	return wrapWriteErr("update prediction", err)
}
