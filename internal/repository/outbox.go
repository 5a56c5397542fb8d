package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/fanpicks/platform/internal/domain"
	"github.com/jackc/pgx/v5"
)

// event_outbox keeps the camelCase column names its consumers already read.
const outboxColumns = `"id", "eventId", "aggregateType", "aggregateId", "eventType",
	"partitionKey", "headers", "payload", "occurredAt"`

type outboxRepo struct{}

// NewOutboxRepository returns a pgx-backed OutboxRepository.
func NewOutboxRepository() OutboxRepository {
	return &outboxRepo{}
}

func (r *outboxRepo) Insert(ctx context.Context, db DBTX, d domain.OutboxDraft) error {
	_, err := db.Exec(ctx, `
		INSERT INTO event_outbox
		  ("eventId", "aggregateType", "aggregateId", "eventType", "partitionKey", "headers", "payload", "occurredAt")
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		d.EventID, string(d.AggregateType), d.AggregateID, string(d.EventType),
		d.PartitionKey, d.Headers, d.Payload, d.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("insert outbox %s.%s: %w", d.AggregateType, d.EventType, err)
	}
	return nil
}

func (r *outboxRepo) FetchUnpublished(ctx context.Context, db DBTX, limit int) ([]domain.OutboxDraft, error) {
	rows, err := db.Query(ctx, `SELECT `+outboxColumns+`
		FROM event_outbox
		WHERE "publishedAt" IS NULL
		ORDER BY "id"
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch unpublished: %w", err)
	}
	return pgx.CollectRows(rows, scanOutboxRow)
}

func scanOutboxRow(row pgx.CollectableRow) (domain.OutboxDraft, error) {
	var d domain.OutboxDraft
	err := row.Scan(&d.SeqID, &d.EventID, &d.AggregateType, &d.AggregateID,
		&d.EventType, &d.PartitionKey, &d.Headers, &d.Payload, &d.OccurredAt)
	return d, err
}

func (r *outboxRepo) MarkPublished(ctx context.Context, db DBTX, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := db.Exec(ctx, `UPDATE event_outbox SET "publishedAt" = now() WHERE "id" = ANY($1)`, ids); err != nil {
		return fmt.Errorf("mark %d outbox rows published: %w", len(ids), err)
	}
	return nil
}

func (r *outboxRepo) CountUnpublished(ctx context.Context, db DBTX) (int, error) {
	var n int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM event_outbox WHERE "publishedAt" IS NULL`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count unpublished: %w", err)
	}
	return n, nil
}

func (r *outboxRepo) DeletePublishedBefore(ctx context.Context, db DBTX, before time.Time) (int64, error) {
	tag, err := db.Exec(ctx, `DELETE FROM event_outbox WHERE "publishedAt" < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("prune outbox: %w", err)
	}
	return tag.RowsAffected(), nil
}
