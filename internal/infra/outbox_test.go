package infra

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/fanpicks/platform/internal/domain"
	"github.com/fanpicks/platform/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOutboxRepo struct {
	rows     []domain.OutboxDraft
	marked   []int64
	prunedAt time.Time
	pruned   int64
}

func (f *fakeOutboxRepo) Insert(_ context.Context, _ repository.DBTX, d domain.OutboxDraft) error {
	f.rows = append(f.rows, d)
	return nil
}

func (f *fakeOutboxRepo) FetchUnpublished(_ context.Context, _ repository.DBTX, limit int) ([]domain.OutboxDraft, error) {
	if len(f.rows) > limit {
		return f.rows[:limit], nil
	}
	return f.rows, nil
}

func (f *fakeOutboxRepo) MarkPublished(_ context.Context, _ repository.DBTX, ids []int64) error {
	f.marked = append(f.marked, ids...)
	return nil
}

func (f *fakeOutboxRepo) CountUnpublished(_ context.Context, _ repository.DBTX) (int, error) {
	return len(f.rows) - len(f.marked), nil
}

func (f *fakeOutboxRepo) DeletePublishedBefore(_ context.Context, _ repository.DBTX, before time.Time) (int64, error) {
	f.prunedAt = before
	return f.pruned, nil
}

type fakePublisher struct {
	topics []string
	failOn int
	last   Message
}

func (f *fakePublisher) Publish(_ context.Context, msg Message) error {
	if f.failOn > 0 && len(f.topics)+1 == f.failOn {
		return errors.New("broker down")
	}
	f.topics = append(f.topics, msg.Topic)
	f.last = msg
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func draft(seq int64, agg domain.AggregateType, evt domain.EventType) domain.OutboxDraft {
	return domain.OutboxDraft{SeqID: seq, EventID: uuid.New(), AggregateType: agg, EventType: evt, PartitionKey: "k"}
}

func TestOutboxPoller_PublishesAndMarks(t *testing.T) {
	repo := &fakeOutboxRepo{rows: []domain.OutboxDraft{
		draft(1, domain.AggregateMatch, domain.EventTypeStatusChanged),
		draft(2, domain.AggregateContest, domain.EventTypeContestEntered),
	}}
	pub := &fakePublisher{}
	p := NewOutboxPoller(nil, repo, pub, OutboxPollerConfig{TopicPrefix: "fanpicks", BatchSize: 10}, testLogger())

	n, err := p.Poll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []int64{1, 2}, repo.marked)
	assert.Equal(t, []string{"fanpicks.match.status_changed", "fanpicks.contest.entered"}, pub.topics)
	assert.Equal(t, []byte("k"), pub.last.Key)
	assert.Equal(t, repo.rows[1].EventID.String(), pub.last.Headers["event_id"])
	assert.Equal(t, "entered", pub.last.Headers["event_type"])
	assert.Contains(t, string(pub.last.Value), `"aggregate_type":"contest"`)
}

func TestOutboxPoller_StopsAtFirstFailure(t *testing.T) {
	repo := &fakeOutboxRepo{rows: []domain.OutboxDraft{
		draft(1, domain.AggregateUser, domain.EventTypeUserCreated),
		draft(2, domain.AggregateUser, domain.EventTypeUserCreated),
		draft(3, domain.AggregateUser, domain.EventTypeUserCreated),
	}}
	pub := &fakePublisher{failOn: 2}
	p := NewOutboxPoller(nil, repo, pub, OutboxPollerConfig{TopicPrefix: "fanpicks", BatchSize: 10}, testLogger())

	n, err := p.Poll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []int64{1}, repo.marked)
}

func TestOutboxPoller_Empty(t *testing.T) {
	repo := &fakeOutboxRepo{}
	p := NewOutboxPoller(nil, repo, &fakePublisher{}, OutboxPollerConfig{TopicPrefix: "fanpicks", BatchSize: 10}, testLogger())

	n, err := p.Poll(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, repo.marked)
}

func TestOutboxPoller_PruneUsesRetention(t *testing.T) {
	repo := &fakeOutboxRepo{pruned: 3}
	p := NewOutboxPoller(nil, repo, &fakePublisher{}, OutboxPollerConfig{Retention: 24 * time.Hour}, testLogger())
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	n, err := p.Prune(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, fixed.Add(-24*time.Hour), repo.prunedAt)
}

func TestOutboxPoller_PruneDisabled(t *testing.T) {
	repo := &fakeOutboxRepo{pruned: 3}
	p := NewOutboxPoller(nil, repo, &fakePublisher{}, OutboxPollerConfig{}, testLogger())

	n, err := p.Prune(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.True(t, repo.prunedAt.IsZero())
}
