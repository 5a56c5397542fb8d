// Package sweep completes matches still open at fixed wall-clock times.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fanpicks/platform/internal/domain"
	"github.com/fanpicks/platform/internal/infra"
	"github.com/fanpicks/platform/internal/metrics"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultSchedule runs at midnight and noon.
	DefaultSchedule = "0 0,12 * * *"

	lockKey = "sweep:complete-matches"
	lockTTL = 10 * time.Minute
)

// Matches is the match lifecycle surface the sweep drives.
type Matches interface {
	ListByStatus(ctx context.Context, status domain.MatchStatus) ([]domain.Match, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, to domain.MatchStatus) (*domain.Match, error)
}

// Locker serializes runs across API replicas.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

// MatchFailure is one match the sweep could not complete.
type MatchFailure struct {
	MatchID uuid.UUID `json:"match_id"`
	Error   string    `json:"error"`
}

// Report summarizes one run.
type Report struct {
	Skipped   bool           `json:"skipped,omitempty"`
	Completed []uuid.UUID    `json:"completed"`
	Failed    []MatchFailure `json:"failed"`
}

// Sweeper completes every OPEN match. Each match goes through its own
// UpdateStatus call, so one failure leaves siblings untouched.
type Sweeper struct {
	matches     Matches
	locker      Locker
	concurrency int
	logger      *slog.Logger
}

// New creates a Sweeper. locker may be nil when redis is not configured.
func New(matches Matches, locker Locker, concurrency int, logger *slog.Logger) *Sweeper {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Sweeper{matches: matches, locker: locker, concurrency: concurrency, logger: logger}
}

// RunOnce performs a single sweep. It returns an error only when the run
// could not start; per-match failures are reported in the Report.
func (s *Sweeper) RunOnce(ctx context.Context) (*Report, error) {
	report := &Report{Completed: []uuid.UUID{}, Failed: []MatchFailure{}}

	if s.locker != nil {
		unlock, err := s.locker.Acquire(ctx, lockKey, lockTTL)
		if errors.Is(err, infra.ErrLockHeld) {
			s.logger.Info("sweep already running elsewhere, skipping")
			metrics.SweepRuns.WithLabelValues(metrics.ResultSkipped).Inc()
			report.Skipped = true
			return report, nil
		}
		if err != nil {
			metrics.SweepRuns.WithLabelValues(metrics.ResultFailed).Inc()
			return nil, err
		}
		defer unlock()
	}

	open, err := s.matches.ListByStatus(ctx, domain.MatchOpen)
	if err != nil {
		metrics.SweepRuns.WithLabelValues(metrics.ResultFailed).Inc()
		return nil, fmt.Errorf("list open matches: %w", err)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, m := range open {
		g.Go(func() error {
			_, err := s.matches.UpdateStatus(gctx, m.ID, domain.MatchCompleted)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Error("sweep: complete match", "match_id", m.ID, "error", err)
				metrics.SweepMatches.WithLabelValues(metrics.ResultFailed).Inc()
				report.Failed = append(report.Failed, MatchFailure{MatchID: m.ID, Error: err.Error()})
				return nil
			}
			metrics.SweepMatches.WithLabelValues(metrics.ResultOK).Inc()
			report.Completed = append(report.Completed, m.ID)
			return nil
		})
	}
	_ = g.Wait()

	metrics.SweepRuns.WithLabelValues(metrics.ResultOK).Inc()
	s.logger.Info("sweep complete", "open", len(open), "completed", len(report.Completed), "failed", len(report.Failed))
	return report, nil
}

// Schedule runs RunOnce on spec in loc until ctx is cancelled.
func (s *Sweeper) Schedule(ctx context.Context, spec string, loc *time.Location) error {
	c := cron.New(cron.WithLocation(loc))
	_, err := c.AddFunc(spec, func() {
		if _, err := s.RunOnce(ctx); err != nil {
			s.logger.Error("sweep run failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("sweep schedule %q: %w", spec, err)
	}

	c.Start()
	s.logger.Info("sweep scheduled", "schedule", spec, "timezone", loc.String())
	<-ctx.Done()

	// Wait for an in-flight run to finish.
	<-c.Stop().Done()
	return nil
}
