package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/fanpicks/platform/internal/domain"
	"github.com/fanpicks/platform/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const (
	defaultLeaderboardLimit = 100
	defaultHistoryLimit     = 50
)

// EntryService covers contest entries, the transaction ledger, payouts and leaderboards.
type EntryService struct {
	pool         *pgxpool.Pool
	users        repository.UserRepository
	contests     repository.ContestRepository
	entries      repository.UserContestRepository
	transactions repository.TransactionRepository
	payouts      repository.PayoutRepository
	leaderboard  repository.LeaderboardRepository
	outbox       repository.OutboxRepository
	logger       *slog.Logger
}

// EntryRepos bundles the repositories used by EntryService.
type EntryRepos struct {
	Users        repository.UserRepository
	Contests     repository.ContestRepository
	Entries      repository.UserContestRepository
	Transactions repository.TransactionRepository
	Payouts      repository.PayoutRepository
	Leaderboard  repository.LeaderboardRepository
	Outbox       repository.OutboxRepository
}

// NewEntryService creates a new EntryService.
func NewEntryService(pool *pgxpool.Pool, repos EntryRepos, logger *slog.Logger) *EntryService {
	return &EntryService{
		pool:         pool,
		users:        repos.Users,
		contests:     repos.Contests,
		entries:      repos.Entries,
		transactions: repos.Transactions,
		payouts:      repos.Payouts,
		leaderboard:  repos.Leaderboard,
		outbox:       repos.Outbox,
		logger:       logger,
	}
}

// Join enters the user into an OPEN contest at the contest's entry fee.
// The contest row is locked so the participant cap holds under concurrency.
func (s *EntryService) Join(ctx context.Context, userID, contestID uuid.UUID) (*domain.UserContest, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	c, err := s.contests.LockForUpdate(ctx, tx, contestID)
	if err != nil {
		return nil, domain.ErrInternal("lock contest", err)
	}
	if c == nil {
		return nil, domain.ErrNotFound("contest", contestID.String())
	}
	if c.Status != domain.ContestOpen {
		return nil, domain.ErrContestNotOpen(c.Status)
	}
	if c.MaxParticipants > 0 {
		n, err := s.entries.CountByContest(ctx, tx, contestID)
		if err != nil {
			return nil, domain.ErrInternal("count entries", err)
		}
		if n >= c.MaxParticipants {
			return nil, domain.ErrConflict("contest is full")
		}
	}

	uc := &domain.UserContest{ID: uuid.New(), UserID: userID, ContestID: contestID, EntryFee: c.EntryFee}
	if err := s.entries.Insert(ctx, tx, uc); err != nil {
		if repository.IsUniqueViolation(err, repository.ConstraintUserContest) {
			return nil, domain.ErrAlreadyJoined()
		}
		return nil, domain.ErrInternal("insert entry", err)
	}
	if err := s.outbox.Insert(ctx, tx, domain.NewContestEnteredEvent(uc, "")); err != nil {
		return nil, domain.ErrInternal("write outbox", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	s.logger.Info("contest joined", "user_id", userID, "contest_id", contestID)
	return uc, nil
}

// ListEntries returns the contests a user has entered.
func (s *EntryService) ListEntries(ctx context.Context, userID uuid.UUID) ([]domain.UserContest, error) {
	entries, err := s.entries.ListByUser(ctx, s.pool, userID)
	if err != nil {
		return nil, domain.ErrInternal("list entries", err)
	}
	return entries, nil
}

// RecordTransactionInput is an admin-recorded ledger entry.
type RecordTransactionInput struct {
	UserID          uuid.UUID       `json:"user_id" validate:"required"`
	ContestID       *uuid.UUID      `json:"contest_id"`
	Type            string          `json:"type" validate:"required,oneof=ENTRY_FEE PAYOUT REFUND"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionHash string          `json:"transaction_hash" validate:"required,max=128"`
}

// RecordTransaction inserts a ledger entry. Each transaction hash is recorded
// once. A PAYOUT tied to a contest also writes the user's Payout at their
// current leaderboard rank, in the same transaction.
func (s *EntryService) RecordTransaction(ctx context.Context, input RecordTransactionInput) (*domain.Transaction, error) {
	typ, ok := domain.ParseTransactionType(input.Type)
	if !ok {
		return nil, domain.ErrValidation("type must be one of ENTRY_FEE, PAYOUT, REFUND")
	}
	if !input.Amount.IsPositive() {
		return nil, domain.ErrValidation("amount must be positive")
	}
	hash := strings.TrimSpace(input.TransactionHash)
	if hash == "" {
		return nil, domain.ErrValidation("transaction_hash is required")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	u, err := s.users.FindByID(ctx, tx, input.UserID)
	if err != nil {
		return nil, domain.ErrInternal("find user", err)
	}
	if u == nil {
		return nil, domain.ErrNotFound("user", input.UserID.String())
	}
	if input.ContestID != nil {
		c, err := s.contests.FindByID(ctx, tx, *input.ContestID)
		if err != nil {
			return nil, domain.ErrInternal("find contest", err)
		}
		if c == nil {
			return nil, domain.ErrNotFound("contest", input.ContestID.String())
		}
	}

	t := &domain.Transaction{
		ID:              uuid.New(),
		UserID:          input.UserID,
		ContestID:       input.ContestID,
		Type:            typ,
		Amount:          input.Amount,
		TransactionHash: hash,
	}
	if err := s.transactions.Insert(ctx, tx, t); err != nil {
		if repository.IsUniqueViolation(err, repository.ConstraintTransactionHash) {
			return nil, domain.ErrDuplicateTransaction(hash)
		}
		return nil, domain.ErrInternal("insert transaction", err)
	}

	if typ == domain.TxPayout && input.ContestID != nil {
		if err := s.recordPayout(ctx, tx, t); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}
	return t, nil
}

func (s *EntryService) recordPayout(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	rank, err := s.leaderboard.RankOf(ctx, tx, *t.ContestID, t.UserID)
	if err != nil {
		return domain.ErrInternal("rank payout", err)
	}
	if rank == 0 {
		return domain.ErrValidation("payout user has not entered the contest")
	}

	hash := t.TransactionHash
	p := &domain.Payout{
		ID:              uuid.New(),
		UserID:          t.UserID,
		ContestID:       *t.ContestID,
		Amount:          t.Amount,
		Rank:            rank,
		TransactionHash: &hash,
	}
	if err := s.payouts.Insert(ctx, tx, p); err != nil {
		if repository.IsUniqueViolation(err, repository.ConstraintPayoutContest) {
			return domain.ErrConflict("payout already recorded for this contest")
		}
		return domain.ErrInternal("insert payout", err)
	}

	s.logger.Info("payout recorded", "user_id", t.UserID, "contest_id", *t.ContestID, "rank", rank)
	return nil
}

// ListTransactions returns the user's most recent ledger entries.
func (s *EntryService) ListTransactions(ctx context.Context, userID uuid.UUID) ([]domain.Transaction, error) {
	txs, err := s.transactions.ListByUser(ctx, s.pool, userID, defaultHistoryLimit)
	if err != nil {
		return nil, domain.ErrInternal("list transactions", err)
	}
	return txs, nil
}

// ListPayouts returns the user's payouts.
func (s *EntryService) ListPayouts(ctx context.Context, userID uuid.UUID) ([]domain.Payout, error) {
	payouts, err := s.payouts.ListByUser(ctx, s.pool, userID)
	if err != nil {
		return nil, domain.ErrInternal("list payouts", err)
	}
	return payouts, nil
}

// Leaderboard ranks a contest's entrants by correct predictions.
func (s *EntryService) Leaderboard(ctx context.Context, contestID uuid.UUID) ([]domain.LeaderboardEntry, error) {
	c, err := s.contests.FindByID(ctx, s.pool, contestID)
	if err != nil {
		return nil, domain.ErrInternal("find contest", err)
	}
	if c == nil {
		return nil, domain.ErrNotFound("contest", contestID.String())
	}

	entries, err := s.leaderboard.ForContest(ctx, s.pool, contestID, defaultLeaderboardLimit)
	if err != nil {
		return nil, domain.ErrInternal("leaderboard", err)
	}
	return entries, nil
}
