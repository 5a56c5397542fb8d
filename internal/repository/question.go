package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/fanpicks/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type questionRepo struct{}

// NewQuestionRepository returns a pgx-backed QuestionRepository.
func NewQuestionRepository() QuestionRepository {
	return &questionRepo{}
}

func scanQuestion(row pgx.Row) (*domain.Question, error) {
	q := &domain.Question{}
	err := row.Scan(&q.ID, &q.ContestID, &q.Text, &q.VideoURL, &q.Outcome, &q.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan question: %w", err)
	}
	return q, nil
}

func (r *questionRepo) Create(ctx context.Context, db DBTX, q *domain.Question) error {
	err := db.QueryRow(ctx, `
		INSERT INTO questions (id, contest_id, text, video_url)
		VALUES ($1, $2, $3, $4) RETURNING created_at`,
		q.ID, q.ContestID, q.Text, q.VideoURL).Scan(&q.CreatedAt)
	return wrapWriteErr("insert question", err)
}

func (r *questionRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Question, error) {
	return scanQuestion(db.QueryRow(ctx,
		`SELECT id, contest_id, text, video_url, outcome, created_at FROM questions WHERE id = $1`, id))
}

func (r *questionRepo) ListByContest(ctx context.Context, db DBTX, contestID uuid.UUID) ([]domain.Question, error) {
	rows, err := db.Query(ctx, `
		SELECT id, contest_id, text, video_url, outcome, created_at
		FROM questions WHERE contest_id = $1 ORDER BY created_at ASC`, contestID)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	questions := []domain.Question{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *q)
	}
	return questions, rows.Err()
}

func (r *questionRepo) SetOutcome(ctx context.Context, db DBTX, id uuid.UUID, outcome bool) error {
	tag, err := db.Exec(ctx, `UPDATE questions SET outcome = $1 WHERE id = $2`, outcome, id)
	if err != nil {
		return fmt.Errorf("update question outcome: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("question", id.String())
	}
	return nil
}
