package settlement

import (
	"context"
	"log/slog"

	"github.com/fanpicks/platform/internal/guard"
	"github.com/fanpicks/platform/internal/metrics"
)

// Outcome is what processing did with one notification.
type Outcome string

const (
	OutcomeApplied   Outcome = "applied"
	OutcomeRejected  Outcome = "rejected"
	OutcomeIgnored   Outcome = "ignored"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
)

// Result is the store's verdict on an event.
type Result struct {
	Outcome Outcome
	Reason  string
}

// Store persists the effects of program events. Each call is one database
// transaction that also records the signature, so a signature is only ever
// marked processed together with its side effects.
type Store interface {
	ApplyContestEntered(ctx context.Context, signature string, ev ContestEntered) (Result, error)
	RecordIgnored(ctx context.Context, signature string, name EventName, reason string) (Result, error)
	Processed(ctx context.Context, signature string) (bool, error)
}

// Processor turns notifications into store calls. It is safe for concurrent
// use by the live listener and backfill.
type Processor struct {
	store  Store
	cache  *guard.SignatureCache
	logger *slog.Logger
}

// NewProcessor creates a Processor.
func NewProcessor(store Store, cache *guard.SignatureCache, logger *slog.Logger) *Processor {
	return &Processor{store: store, cache: cache, logger: logger}
}

// Handle processes one notification. Errors are logged, never returned: a
// failed signature is evicted from the cache and left unrecorded so a later
// delivery or backfill retries it.
func (p *Processor) Handle(ctx context.Context, n Notification) Outcome {
	log := p.logger.With("signature", n.Signature)

	if n.Failed() {
		p.cache.Mark(n.Signature)
		return OutcomeSkipped
	}
	if !p.cache.Mark(n.Signature) {
		return OutcomeDuplicate
	}
	metrics.SettlementCacheEntries.Set(float64(p.cache.Len()))

	ev := DecodeLogs(n.Logs)
	if ev == nil {
		return OutcomeSkipped
	}

	var (
		res Result
		err error
	)
	switch ev.Name {
	case EventContestEntered:
		res, err = p.store.ApplyContestEntered(ctx, n.Signature, *ev.Entered)
	case EventContestCreated:
		log.Info("contest created on chain",
			"contest_id", ev.Created.ContestID, "creator", ev.Created.Creator, "entry_fee", ev.Created.EntryFee)
		res, err = p.store.RecordIgnored(ctx, n.Signature, ev.Name, "informational")
	case EventContestResolved:
		log.Info("contest resolved on chain",
			"contest_id", ev.Resolved.ContestID, "winners", len(ev.Resolved.Winners))
		res, err = p.store.RecordIgnored(ctx, n.Signature, ev.Name, "informational")
	}

	if err != nil {
		p.cache.Forget(n.Signature)
		metrics.SettlementEvents.WithLabelValues(string(ev.Name), string(OutcomeFailed)).Inc()
		log.Error("settlement event failed", "event", ev.Name, "error", err)
		return OutcomeFailed
	}

	metrics.SettlementEvents.WithLabelValues(string(ev.Name), string(res.Outcome)).Inc()
	switch res.Outcome {
	case OutcomeRejected:
		log.Warn("settlement event rejected", "event", ev.Name, "reason", res.Reason)
	case OutcomeApplied:
		log.Info("settlement event applied", "event", ev.Name)
	}
	return res.Outcome
}
