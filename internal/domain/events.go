package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

func newDraft(agg AggregateType, id uuid.UUID, evt EventType, payload interface{}) OutboxDraft {
	body, _ := json.Marshal(payload)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: agg,
		AggregateID:   id.String(),
		EventType:     evt,
		PartitionKey:  id.String(),
		Headers:       json.RawMessage(`{}`),
		Payload:       body,
		OccurredAt:    time.Now(),
	}
}

// NewStatusChangedEvent records a validated lifecycle transition.
func NewStatusChangedEvent(agg AggregateType, id uuid.UUID, from, to string) OutboxDraft {
	return newDraft(agg, id, EventTypeStatusChanged, map[string]string{
		"id":   id.String(),
		"from": from,
		"to":   to,
	})
}

// NewContestEnteredEvent records a paid entry mirrored from chain or joined via the API.
func NewContestEnteredEvent(uc *UserContest, signature string) OutboxDraft {
	return newDraft(AggregateContest, uc.ContestID, EventTypeContestEntered, map[string]interface{}{
		"user_contest_id": uc.ID.String(),
		"user_id":         uc.UserID.String(),
		"contest_id":      uc.ContestID.String(),
		"entry_fee":       uc.EntryFee.String(),
		"signature":       signature,
	})
}

// NewUserCreatedEvent records a new account.
func NewUserCreatedEvent(u *User, source string) OutboxDraft {
	wallet := ""
	if u.WalletAddress != nil {
		wallet = *u.WalletAddress
	}
	return newDraft(AggregateUser, u.ID, EventTypeUserCreated, map[string]string{
		"user_id":        u.ID.String(),
		"username":       u.Username,
		"wallet_address": wallet,
		"source":         source,
	})
}

// NewPredictionPlacedEvent records an accepted prediction.
func NewPredictionPlacedEvent(p *Prediction) OutboxDraft {
	return newDraft(AggregatePrediction, p.ContestID, EventTypePredictionPlaced, map[string]interface{}{
		"prediction_id": p.ID.String(),
		"user_id":       p.UserID.String(),
		"question_id":   p.QuestionID.String(),
		"outcome":       p.Outcome,
	})
}

// NewQuestionResolvedEvent records the outcome set on a question.
func NewQuestionResolvedEvent(q *Question) OutboxDraft {
	return newDraft(AggregateQuestion, q.ContestID, EventTypeQuestionResolved, map[string]interface{}{
		"question_id": q.ID.String(),
		"outcome":     q.Outcome,
	})
}
