package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/fanpicks/platform/internal/domain"
	"github.com/fanpicks/platform/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// QuestionService manages contest questions and their outcomes.
type QuestionService struct {
	pool      *pgxpool.Pool
	contests  repository.ContestRepository
	questions repository.QuestionRepository
	outbox    repository.OutboxRepository
	logger    *slog.Logger
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(
	pool *pgxpool.Pool,
	contests repository.ContestRepository,
	questions repository.QuestionRepository,
	outbox repository.OutboxRepository,
	logger *slog.Logger,
) *QuestionService {
	return &QuestionService{pool: pool, contests: contests, questions: questions, outbox: outbox, logger: logger}
}

// CreateQuestionInput holds the fields for a new question.
type CreateQuestionInput struct {
	ContestID uuid.UUID `json:"contest_id" validate:"required"`
	Text      string    `json:"text" validate:"required,max=500"`
	VideoURL  *string   `json:"video_url" validate:"omitempty,url"`
}

// Create adds a question to a contest that has not finished.
func (s *QuestionService) Create(ctx context.Context, input CreateQuestionInput) (*domain.Question, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, domain.ErrValidation("text is required")
	}

	c, err := s.contests.FindByID(ctx, s.pool, input.ContestID)
	if err != nil {
		return nil, domain.ErrInternal("find contest", err)
	}
	if c == nil {
		return nil, domain.ErrNotFound("contest", input.ContestID.String())
	}
	if c.Status.Terminal() {
		return nil, domain.ErrContestNotOpen(c.Status)
	}

	q := &domain.Question{ID: uuid.New(), ContestID: c.ID, Text: text, VideoURL: input.VideoURL}
	if err := s.questions.Create(ctx, s.pool, q); err != nil {
		return nil, domain.ErrInternal("create question", err)
	}
	return q, nil
}

// ListByContest returns the questions of a contest.
func (s *QuestionService) ListByContest(ctx context.Context, contestID uuid.UUID) ([]domain.Question, error) {
	qs, err := s.questions.ListByContest(ctx, s.pool, contestID)
	if err != nil {
		return nil, domain.ErrInternal("list questions", err)
	}
	return qs, nil
}

// SetOutcome resolves a question and records a question.resolved event.
func (s *QuestionService) SetOutcome(ctx context.Context, id uuid.UUID, outcome bool) (*domain.Question, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	q, err := s.questions.FindByID(ctx, tx, id)
	if err != nil {
		return nil, domain.ErrInternal("find question", err)
	}
	if q == nil {
		return nil, domain.ErrNotFound("question", id.String())
	}
	c, err := s.contests.FindByID(ctx, tx, q.ContestID)
	if err != nil {
		return nil, domain.ErrInternal("find contest", err)
	}
	if c != nil && c.Status == domain.ContestCancelled {
		return nil, domain.ErrConflict("cannot resolve a question of a cancelled contest")
	}

	if err := s.questions.SetOutcome(ctx, tx, id, outcome); err != nil {
		return nil, appOrInternal("set outcome", err)
	}
	q.Outcome = &outcome
	if err := s.outbox.Insert(ctx, tx, domain.NewQuestionResolvedEvent(q)); err != nil {
		return nil, domain.ErrInternal("write outbox", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	s.logger.Info("question resolved", "question_id", id, "contest_id", q.ContestID, "outcome", outcome)
	return q, nil
}
