package settlement

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"
)

// ChainReader is the RPC surface backfill needs.
type ChainReader interface {
	GetSignaturesForAddress(ctx context.Context, address string, limit int) ([]SignatureInfo, error)
	GetTransaction(ctx context.Context, signature string) (*TransactionLogs, error)
}

// Backfiller replays recent program transactions through the processor so
// events emitted while the listener was down, or whose processing failed,
// are applied.
type Backfiller struct {
	chain     ChainReader
	store     Store
	proc      *Processor
	programID string
	limit     int
	logger    *slog.Logger
}

// NewBackfiller creates a Backfiller reading up to limit recent signatures.
func NewBackfiller(chain ChainReader, store Store, proc *Processor, programID string, limit int, logger *slog.Logger) *Backfiller {
	if limit <= 0 {
		limit = 100
	}
	return &Backfiller{chain: chain, store: store, proc: proc, programID: programID, limit: limit, logger: logger}
}

// Run replays oldest first and returns how many transactions were handed to
// the processor. Per-signature RPC failures are logged and skipped.
func (b *Backfiller) Run(ctx context.Context) (int, error) {
	sigs, err := b.chain.GetSignaturesForAddress(ctx, b.programID, b.limit)
	if err != nil {
		return 0, err
	}
	slices.Reverse(sigs)

	handled := 0
	for _, s := range sigs {
		if ctx.Err() != nil {
			return handled, ctx.Err()
		}
		if s.Err != nil || b.proc.cache.Seen(s.Signature) {
			continue
		}
		done, err := b.store.Processed(ctx, s.Signature)
		if err != nil {
			b.logger.Error("backfill: check signature", "signature", s.Signature, "error", err)
			continue
		}
		if done {
			continue
		}

		tx, err := b.chain.GetTransaction(ctx, s.Signature)
		if err != nil {
			b.logger.Error("backfill: get transaction", "signature", s.Signature, "error", err)
			continue
		}
		if tx == nil || tx.Meta == nil {
			continue
		}

		b.proc.Handle(ctx, Notification{Signature: s.Signature, Err: tx.Meta.Err, Logs: tx.Meta.LogMessages})
		handled++
	}

	level := slog.LevelDebug
	if handled > 0 {
		level = slog.LevelInfo
	}
	b.logger.Log(ctx, level, "settlement backfill complete", "signatures", len(sigs), "handled", handled)
	return handled, nil
}

// Service runs the live listener and repeated backfill passes: at startup,
// after every resubscribe, and every interval.
type Service struct {
	listener *Listener
	backfill *Backfiller
	interval time.Duration
	trigger  chan struct{}
	logger   *slog.Logger
}

// NewService wires a listener and backfiller around one processor. An
// interval of zero disables the periodic pass. Either component may be nil.
func NewService(listener *Listener, backfill *Backfiller, interval time.Duration, logger *slog.Logger) *Service {
	s := &Service{
		listener: listener,
		backfill: backfill,
		interval: interval,
		trigger:  make(chan struct{}, 1),
		logger:   logger,
	}
	if listener != nil && backfill != nil {
		listener.OnSubscribed(s.RequestBackfill)
	}
	return s
}

// RequestBackfill schedules a pass. Requests made while one is pending coalesce.
func (s *Service) RequestBackfill() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Run blocks until ctx is cancelled. The listener starts first so nothing
// emitted during backfill is missed; the processor dedups the overlap.
func (s *Service) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	if s.listener != nil {
		g.Go(func() error {
			return s.listener.Run(ctx)
		})
	}
	if s.backfill != nil {
		g.Go(func() error {
			s.backfillLoop(ctx)
			return nil
		})
	}
	return g.Wait()
}

func (s *Service) backfillLoop(ctx context.Context) {
	s.RequestBackfill()

	var tick <-chan time.Time
	if s.interval > 0 {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.trigger:
		case <-tick:
		}
		if _, err := s.backfill.Run(ctx); err != nil && ctx.Err() == nil {
			s.logger.Error("settlement backfill failed", "error", err)
		}
	}
}
