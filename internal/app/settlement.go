package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fanpicks/platform/internal/guard"
	"github.com/fanpicks/platform/internal/infra"
	"github.com/fanpicks/platform/internal/repository"
	"github.com/fanpicks/platform/internal/settlement"
	"github.com/gagliardetto/solana-go"
	"github.com/jackc/pgx/v5/pgxpool"
)

// signatureCacheTTL bounds how long a signature stays in the in-memory front cache.
const signatureCacheTTL = 24 * time.Hour

// NewSettlement wires the on-chain listener, backfill and PostgreSQL store.
func NewSettlement(pool *pgxpool.Pool, cfg *infra.Config, logger *slog.Logger) (*settlement.Service, error) {
	programID, err := solana.PublicKeyFromBase58(cfg.ContestProgramID)
	if err != nil {
		return nil, fmt.Errorf("contest program id: %w", err)
	}
	logger = logger.With("component", "settlement")

	store := settlement.NewPgStore(pool, settlement.StoreRepos{
		Users:        repository.NewUserRepository(),
		Contests:     repository.NewContestRepository(),
		Entries:      repository.NewUserContestRepository(),
		Transactions: repository.NewTransactionRepository(),
		Outbox:       repository.NewOutboxRepository(),
		Signatures:   repository.NewSignatureRepository(),
	}, logger)

	cache := guard.NewSignatureCache(cfg.SettlementCacheSize, signatureCacheTTL)
	proc := settlement.NewProcessor(store, cache, logger)

	listener := settlement.NewListener(cfg.SolanaWSURL, programID, cfg.SolanaCommitment,
		func(ctx context.Context, n settlement.Notification) {
			proc.Handle(ctx, n)
		}, logger)

	chain := settlement.NewRPCClient(cfg.SolanaRPCURL, cfg.SolanaCommitment, cfg.SolanaRPCRatePerSecond)
	backfill := settlement.NewBackfiller(chain, store, proc, cfg.ContestProgramID, cfg.SettlementBackfillLimit, logger)

	return settlement.NewService(listener, backfill, cfg.SettlementBackfillInterval, logger), nil
}
