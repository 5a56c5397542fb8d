package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fanpicks/platform/internal/guard"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"golang.org/x/time/rate"
)

// SignatureInfo is one entry of getSignaturesForAddress.
type SignatureInfo struct {
	Signature string
	Slot      uint64
	Err       any
}

// TransactionMeta carries a transaction's execution result and logs.
type TransactionMeta struct {
	Err         any
	LogMessages []string
}

// TransactionLogs is the part of getTransaction the processor needs.
type TransactionLogs struct {
	Slot uint64
	Meta *TransactionMeta
}

// RPCClient paces the Solana RPC calls backfill makes and trips a breaker
// when the node keeps failing.
type RPCClient struct {
	client     *rpc.Client
	commitment rpc.CommitmentType
	limiter    *rate.Limiter
	breaker    *guard.CircuitBreaker
}

// NewRPCClient creates a client that issues at most rps requests per second.
func NewRPCClient(url, commitment string, rps float64) *RPCClient {
	if rps <= 0 {
		rps = 5
	}
	return &RPCClient{
		client:     rpc.New(url),
		commitment: rpc.CommitmentType(commitment),
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		breaker:    guard.NewCircuitBreaker(5, 30*time.Second),
	}
}

func (c *RPCClient) call(ctx context.Context, method string, fn func() error) error {
	if res := c.breaker.Check(ctx, method); !res.Allowed {
		return fmt.Errorf("%s: %s", method, res.Reason)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	err := fn()
	// Context cancellation says nothing about the upstream's health.
	if ctx.Err() == nil {
		c.breaker.Record(method, err)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	return nil
}

// GetSignaturesForAddress returns up to limit recent signatures touching address, newest first.
func (c *RPCClient) GetSignaturesForAddress(ctx context.Context, address string, limit int) ([]SignatureInfo, error) {
	account, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return nil, fmt.Errorf("program address %q: %w", address, err)
	}

	var out []*rpc.TransactionSignature
	err = c.call(ctx, "getSignaturesForAddress", func() error {
		var err error
		out, err = c.client.GetSignaturesForAddressWithOpts(ctx, account, &rpc.GetSignaturesForAddressOpts{
			Limit:      &limit,
			Commitment: c.commitment,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	sigs := make([]SignatureInfo, 0, len(out))
	for _, s := range out {
		if s == nil {
			continue
		}
		sigs = append(sigs, SignatureInfo{Signature: s.Signature.String(), Slot: s.Slot, Err: s.Err})
	}
	return sigs, nil
}

// GetTransaction returns a transaction's status and log messages, or nil if the node does not have it.
func (c *RPCClient) GetTransaction(ctx context.Context, signature string) (*TransactionLogs, error) {
	sig, err := solana.SignatureFromBase58(signature)
	if err != nil {
		return nil, fmt.Errorf("signature %q: %w", signature, err)
	}

	maxVersion := uint64(0)
	var res *rpc.GetTransactionResult
	err = c.call(ctx, "getTransaction", func() error {
		var err error
		res, err = c.client.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
			Encoding:                       solana.EncodingBase64,
			Commitment:                     c.commitment,
			MaxSupportedTransactionVersion: &maxVersion,
		})
		if errors.Is(err, rpc.ErrNotFound) {
			res = nil
			return nil
		}
		return err
	})
	if err != nil || res == nil {
		return nil, err
	}

	tx := &TransactionLogs{Slot: res.Slot}
	if res.Meta != nil {
		tx.Meta = &TransactionMeta{Err: res.Meta.Err, LogMessages: res.Meta.LogMessages}
	}
	return tx, nil
}
