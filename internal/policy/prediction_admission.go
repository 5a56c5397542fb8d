package policy

import (
	"github.com/fanpicks/platform/internal/domain"
	"github.com/google/uuid"
)

// AdmissionInput is the state read under lock before a prediction is written.
type AdmissionInput struct {
	ContestStatus      domain.ContestStatus
	ExistingCount      int
	PredictedQuestions []uuid.UUID
	QuestionID         uuid.UUID
}

// EvaluatePredictionAdmission applies the admission rules in order:
// cardinality, contest status, question uniqueness.
func EvaluatePredictionAdmission(in AdmissionInput) error {
	if in.ExistingCount >= domain.MaxPredictionsPerContest {
		return domain.ErrPredictionLimit(domain.MaxPredictionsPerContest)
	}
	if in.ContestStatus != domain.ContestOpen {
		return domain.ErrContestNotOpen(in.ContestStatus)
	}
	for _, q := range in.PredictedQuestions {
		if q == in.QuestionID {
			return domain.ErrQuestionAlreadyPredicted()
		}
	}
	return nil
}

// UpdateInput is the state read before an existing prediction is changed.
type UpdateInput struct {
	ContestStatus domain.ContestStatus
	PredictionID  uuid.UUID
	NewQuestionID uuid.UUID
	// Others maps each of the user's predictions in the contest to its question.
	Others map[uuid.UUID]uuid.UUID
}

// EvaluatePredictionUpdate checks a prediction change. Uniqueness is
// re-validated against the user's other predictions, excluding the one being updated.
func EvaluatePredictionUpdate(in UpdateInput) error {
	if in.ContestStatus != domain.ContestOpen {
		return domain.ErrContestNotOpen(in.ContestStatus)
	}
	for id, q := range in.Others {
		if id == in.PredictionID {
			continue
		}
		if q == in.NewQuestionID {
			return domain.ErrQuestionAlreadyPredicted()
		}
	}
	return nil
}
