package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fanpicks/platform/internal/metrics"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
)

const (
	reconnectDelay    = 2 * time.Second
	maxReconnectDelay = 60 * time.Second
)

// Notification is one program transaction delivered by the log stream or backfill.
type Notification struct {
	Signature string
	Err       any
	Logs      []string
}

// Failed reports whether the transaction errored on chain.
func (n Notification) Failed() bool {
	return n.Err != nil
}

// HandlerFunc receives each notification in arrival order.
type HandlerFunc func(ctx context.Context, n Notification)

var errSubscriptionClosed = errors.New("log subscription closed")

// Listener subscribes to program logs over the RPC websocket and reconnects
// with capped exponential backoff until its context ends.
//
// The websocket client reads and answers pings on its own goroutine and
// buffers notifications, so a slow handler does not stall the connection.
// If the buffer overflows the subscription errors and Run reconnects.
type Listener struct {
	wsURL        string
	programID    solana.PublicKey
	commitment   rpc.CommitmentType
	handle       HandlerFunc
	onSubscribed func()
	minDelay     time.Duration
	logger       *slog.Logger
}

// NewListener creates a log-stream listener for programID.
func NewListener(wsURL string, programID solana.PublicKey, commitment string, handle HandlerFunc, logger *slog.Logger) *Listener {
	return &Listener{
		wsURL:      wsURL,
		programID:  programID,
		commitment: rpc.CommitmentType(commitment),
		handle:     handle,
		minDelay:   reconnectDelay,
		logger:     logger,
	}
}

// OnSubscribed registers fn to run after every confirmed (re)subscription.
// It must not block.
func (l *Listener) OnSubscribed(fn func()) {
	l.onSubscribed = fn
}

// Run blocks until ctx is cancelled.
func (l *Listener) Run(ctx context.Context) error {
	delay := l.minDelay
	for {
		started := time.Now()
		err := l.session(ctx)
		if ctx.Err() != nil {
			l.logger.Info("settlement listener stopped")
			return nil
		}

		// A session that stayed up for a while resets the backoff.
		if time.Since(started) > maxReconnectDelay {
			delay = l.minDelay
		}
		metrics.SettlementReconnects.Inc()
		l.logger.Warn("log subscription dropped, reconnecting", "error", err, "delay", delay)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
		delay = min(delay*2, maxReconnectDelay)
	}
}

func (l *Listener) session(ctx context.Context) error {
	client, err := ws.Connect(ctx, l.wsURL)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer client.Close()

	sub, err := client.LogsSubscribeMentions(l.programID, l.commitment)
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	defer sub.Unsubscribe()

	l.logger.Info("log subscription confirmed", "program_id", l.programID.String())
	if l.onSubscribed != nil {
		l.onSubscribed()
	}

	for {
		got, err := sub.Recv(ctx)
		if err != nil {
			return fmt.Errorf("recv: %w", err)
		}
		if got == nil {
			return errSubscriptionClosed
		}
		l.handle(ctx, Notification{
			Signature: got.Value.Signature.String(),
			Err:       got.Value.Err,
			Logs:      got.Value.Logs,
		})
	}
}
