package service

import (
	"context"
	"log/slog"

	"github.com/fanpicks/platform/internal/domain"
	"github.com/fanpicks/platform/internal/metrics"
	"github.com/fanpicks/platform/internal/policy"
	"github.com/fanpicks/platform/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PredictionService admits and amends user predictions.
type PredictionService struct {
	pool        *pgxpool.Pool
	contests    repository.ContestRepository
	questions   repository.QuestionRepository
	predictions repository.PredictionRepository
	outbox      repository.OutboxRepository
	logger      *slog.Logger
}

// NewPredictionService creates a new PredictionService.
func NewPredictionService(
	pool *pgxpool.Pool,
	contests repository.ContestRepository,
	questions repository.QuestionRepository,
	predictions repository.PredictionRepository,
	outbox repository.OutboxRepository,
	logger *slog.Logger,
) *PredictionService {
	return &PredictionService{
		pool:        pool,
		contests:    contests,
		questions:   questions,
		predictions: predictions,
		outbox:      outbox,
		logger:      logger,
	}
}

// SubmitInput holds a new prediction.
type SubmitInput struct {
	ContestID  uuid.UUID `json:"contest_id" validate:"required"`
	QuestionID uuid.UUID `json:"question_id" validate:"required"`
	Outcome    bool      `json:"outcome"`
	Position   int       `json:"position" validate:"gte=0,lte=100"`
}

// loadContestAndQuestion reads the contest directly and checks the question belongs to it.
func (s *PredictionService) loadContestAndQuestion(ctx context.Context, db repository.DBTX, contestID, questionID uuid.UUID) (*domain.Contest, *domain.Question, error) {
	c, err := s.contests.FindByID(ctx, db, contestID)
	if err != nil {
		return nil, nil, domain.ErrInternal("find contest", err)
	}
	if c == nil {
		return nil, nil, domain.ErrNotFound("contest", contestID.String())
	}

	q, err := s.questions.FindByID(ctx, db, questionID)
	if err != nil {
		return nil, nil, domain.ErrInternal("find question", err)
	}
	if q == nil || q.ContestID != contestID {
		return nil, nil, domain.ErrNotFound("question", questionID.String())
	}
	return c, q, nil
}

func (s *PredictionService) lockAndList(ctx context.Context, tx pgx.Tx, userID, contestID uuid.UUID) ([]domain.Prediction, error) {
	if err := s.predictions.LockUserContest(ctx, tx, userID, contestID); err != nil {
		return nil, domain.ErrInternal("lock predictions", err)
	}
	existing, err := s.predictions.ListByUserContest(ctx, tx, userID, contestID)
	if err != nil {
		return nil, domain.ErrInternal("list predictions", err)
	}
	return existing, nil
}

// Submit admits a new prediction. The (user, contest) advisory lock serializes
// concurrent submissions so the count check and insert cannot interleave; the
// unique index backs up the per-question rule.
func (s *PredictionService) Submit(ctx context.Context, userID uuid.UUID, input SubmitInput) (*domain.Prediction, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	existing, err := s.lockAndList(ctx, tx, userID, input.ContestID)
	if err != nil {
		return nil, err
	}
	c, q, err := s.loadContestAndQuestion(ctx, tx, input.ContestID, input.QuestionID)
	if err != nil {
		return nil, err
	}

	predicted := make([]uuid.UUID, len(existing))
	for i, p := range existing {
		predicted[i] = p.QuestionID
	}
	if err := policy.EvaluatePredictionAdmission(policy.AdmissionInput{
		ContestStatus:      c.Status,
		ExistingCount:      len(existing),
		PredictedQuestions: predicted,
		QuestionID:         input.QuestionID,
	}); err != nil {
		metrics.PredictionAdmissions.WithLabelValues(metrics.ResultRejected).Inc()
		return nil, err
	}

	p := &domain.Prediction{
		ID:         uuid.New(),
		UserID:     userID,
		ContestID:  input.ContestID,
		QuestionID: input.QuestionID,
		Outcome:    input.Outcome,
		Position:   input.Position,
	}
	if err := s.predictions.Insert(ctx, tx, p); err != nil {
		if repository.IsUniqueViolation(err, repository.ConstraintPredictionQuestion) {
			metrics.PredictionAdmissions.WithLabelValues(metrics.ResultRejected).Inc()
			return nil, domain.ErrQuestionAlreadyPredicted()
		}
		return nil, domain.ErrInternal("insert prediction", err)
	}
	if err := s.outbox.Insert(ctx, tx, domain.NewPredictionPlacedEvent(p)); err != nil {
		return nil, domain.ErrInternal("write outbox", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	metrics.PredictionAdmissions.WithLabelValues(metrics.ResultAdmitted).Inc()
	s.logger.Info("prediction placed",
		"prediction_id", p.ID,
		"user_id", userID,
		"contest_id", input.ContestID,
		"question_id", input.QuestionID,
		"count", len(existing)+1,
	)

	p.Question = q
	p.Contest = c
	return p, nil
}

// UpdateInput holds optional changes to an existing prediction.
type UpdateInput struct {
	QuestionID *uuid.UUID `json:"question_id"`
	Outcome    *bool      `json:"outcome"`
	Position   *int       `json:"position" validate:"omitempty,gte=0,lte=100"`
}

// Update amends one of the caller's predictions while the contest is OPEN.
// Moving to another question re-checks uniqueness against the caller's other
// predictions in the contest.
func (s *PredictionService) Update(ctx context.Context, userID, predictionID uuid.UUID, input UpdateInput) (*domain.Prediction, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	current, err := s.predictions.FindByID(ctx, tx, predictionID)
	if err != nil {
		return nil, domain.ErrInternal("find prediction", err)
	}
	// Another user's prediction is reported as missing.
	if current == nil || current.UserID != userID {
		return nil, domain.ErrNotFound("prediction", predictionID.String())
	}

	existing, err := s.lockAndList(ctx, tx, userID, current.ContestID)
	if err != nil {
		return nil, err
	}

	questionID := current.QuestionID
	if input.QuestionID != nil {
		questionID = *input.QuestionID
	}
	c, q, err := s.loadContestAndQuestion(ctx, tx, current.ContestID, questionID)
	if err != nil {
		return nil, err
	}

	others := make(map[uuid.UUID]uuid.UUID, len(existing))
	for _, p := range existing {
		others[p.ID] = p.QuestionID
	}
	if err := policy.EvaluatePredictionUpdate(policy.UpdateInput{
		ContestStatus: c.Status,
		PredictionID:  predictionID,
		NewQuestionID: questionID,
		Others:        others,
	}); err != nil {
		return nil, err
	}

	current.QuestionID = questionID
	if input.Outcome != nil {
		current.Outcome = *input.Outcome
	}
	if input.Position != nil {
		current.Position = *input.Position
	}
	if err := s.predictions.Update(ctx, tx, current); err != nil {
		if repository.IsUniqueViolation(err, repository.ConstraintPredictionQuestion) {
			return nil, domain.ErrQuestionAlreadyPredicted()
		}
		return nil, appOrInternal("update prediction", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	current.Question = q
	current.Contest = c
	return current, nil
}

// ListMine returns the caller's predictions in a contest.
func (s *PredictionService) ListMine(ctx context.Context, userID, contestID uuid.UUID) ([]domain.Prediction, error) {
	preds, err := s.predictions.ListByUserContest(ctx, s.pool, userID, contestID)
	if err != nil {
		return nil, domain.ErrInternal("list predictions", err)
	}
	return preds, nil
}
