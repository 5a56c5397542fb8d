package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates outbox event types.
type EventType string

const (
	EventTypeStatusChanged    EventType = "status_changed"
	EventTypeContestEntered   EventType = "entered"
	EventTypeUserCreated      EventType = "created"
	EventTypePredictionPlaced EventType = "placed"
	EventTypeQuestionResolved EventType = "resolved"
)

// AggregateType enumerates the aggregate root types for outbox events.
type AggregateType string

const (
	AggregateEvent      AggregateType = "event"
	AggregateMatch      AggregateType = "match"
	AggregateContest    AggregateType = "contest"
	AggregateUser       AggregateType = "user"
	AggregatePrediction AggregateType = "prediction"
	AggregateQuestion   AggregateType = "question"
)

// OutboxDraft is the payload written to the event_outbox table.
type OutboxDraft struct {
	SeqID         int64           `json:"-"`
	EventID       uuid.UUID       `json:"eventId"`
	AggregateType AggregateType   `json:"aggregateType"`
	AggregateID   string          `json:"aggregateId"`
	EventType     EventType       `json:"eventType"`
	PartitionKey  string          `json:"partitionKey"`
	Headers       json.RawMessage `json:"headers"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurredAt"`
}

// Topic is the broker topic an outbox row is relayed to.
func (d OutboxDraft) Topic(prefix string) string {
	return prefix + "." + string(d.AggregateType) + "." + string(d.EventType)
}

// GuardResult is the outcome of an in-process guard check.
type GuardResult struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
	Guard   string `json:"guard,omitempty"`
}
