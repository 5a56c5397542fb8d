package infra

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/fanpicks/platform/internal/metrics"
	"github.com/fanpicks/platform/internal/repository"
)

const pruneInterval = time.Hour

// OutboxPollerConfig tunes the relay loop.
type OutboxPollerConfig struct {
	TopicPrefix string
	Interval    time.Duration
	BatchSize   int

	// Retention is how long published rows are kept; zero keeps them forever.
	Retention time.Duration
}

// OutboxPoller relays unpublished event_outbox rows to the broker.
type OutboxPoller struct {
	db       repository.DBTX
	repo     repository.OutboxRepository
	producer Publisher
	cfg      OutboxPollerConfig
	logger   *slog.Logger
	now      func() time.Time
}

// NewOutboxPoller creates a new outbox poller.
func NewOutboxPoller(db repository.DBTX, repo repository.OutboxRepository, producer Publisher, cfg OutboxPollerConfig, logger *slog.Logger) *OutboxPoller {
	if cfg.Interval <= 0 {
		cfg.Interval = 500 * time.Millisecond
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	return &OutboxPoller{db: db, repo: repo, producer: producer, cfg: cfg, logger: logger, now: time.Now}
}

// Run polls until ctx is cancelled and prunes old published rows hourly.
func (p *OutboxPoller) Run(ctx context.Context) error {
	p.logger.Info("outbox poller started",
		"interval", p.cfg.Interval, "batch_size", p.cfg.BatchSize, "retention", p.cfg.Retention)

	poll := time.NewTicker(p.cfg.Interval)
	defer poll.Stop()
	prune := time.NewTicker(pruneInterval)
	defer prune.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("outbox poller stopped")
			return nil
		case <-poll.C:
			if _, err := p.Poll(ctx); err != nil {
				p.logger.Error("outbox poll error", "error", err)
			}
		case <-prune.C:
			if _, err := p.Prune(ctx); err != nil {
				p.logger.Error("outbox prune error", "error", err)
			}
		}
	}
}

// outboxMessage is the envelope consumers receive.
type outboxMessage struct {
	EventID       string          `json:"event_id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// Poll publishes one batch and returns how many rows were marked published.
// A failed publish stops the batch so ordering per aggregate is preserved.
func (p *OutboxPoller) Poll(ctx context.Context) (int, error) {
	events, err := p.repo.FetchUnpublished(ctx, p.db, p.cfg.BatchSize)
	if err != nil {
		return 0, err
	}

	published := make([]int64, 0, len(events))
	for _, e := range events {
		msg, err := json.Marshal(outboxMessage{
			EventID:       e.EventID.String(),
			AggregateType: string(e.AggregateType),
			AggregateID:   e.AggregateID,
			EventType:     string(e.EventType),
			Payload:       e.Payload,
			OccurredAt:    e.OccurredAt,
		})
		if err != nil {
			p.logger.Error("encode outbox event", "event_id", e.EventID, "error", err)
			break
		}
		err = p.producer.Publish(ctx, Message{
			Topic: e.Topic(p.cfg.TopicPrefix),
			Key:   []byte(e.PartitionKey),
			Value: msg,
			Headers: map[string]string{
				"event_id":   e.EventID.String(),
				"event_type": string(e.EventType),
			},
		})
		if err != nil {
			p.logger.Error("kafka publish failed", "event_id", e.EventID, "error", err)
			break
		}
		published = append(published, e.SeqID)
	}

	if len(published) > 0 {
		if err := p.repo.MarkPublished(ctx, p.db, published); err != nil {
			return 0, err
		}
		metrics.OutboxPublished.Add(float64(len(published)))
		p.logger.Debug("outbox poll complete", "published", len(published))
	}

	if backlog, err := p.repo.CountUnpublished(ctx, p.db); err == nil {
		metrics.OutboxBacklog.Set(float64(backlog))
	}
	return len(published), nil
}

// Prune deletes rows published longer ago than the retention window.
func (p *OutboxPoller) Prune(ctx context.Context) (int64, error) {
	if p.cfg.Retention <= 0 {
		return 0, nil
	}
	n, err := p.repo.DeletePublishedBefore(ctx, p.db, p.now().Add(-p.cfg.Retention))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		p.logger.Info("pruned published outbox rows", "deleted", n)
	}
	return n, nil
}
