package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fanpicks/platform/internal/domain"
	"github.com/fanpicks/platform/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// maxUsernameAttempts bounds retries when a generated wallet username is taken.
const maxUsernameAttempts = 3

// PgStore is the PostgreSQL Store.
type PgStore struct {
	pool         *pgxpool.Pool
	users        repository.UserRepository
	contests     repository.ContestRepository
	entries      repository.UserContestRepository
	transactions repository.TransactionRepository
	outbox       repository.OutboxRepository
	signatures   repository.SignatureRepository
	logger       *slog.Logger
}

// StoreRepos groups the repositories PgStore writes through.
type StoreRepos struct {
	Users        repository.UserRepository
	Contests     repository.ContestRepository
	Entries      repository.UserContestRepository
	Transactions repository.TransactionRepository
	Outbox       repository.OutboxRepository
	Signatures   repository.SignatureRepository
}

// NewPgStore creates a PgStore.
func NewPgStore(pool *pgxpool.Pool, repos StoreRepos, logger *slog.Logger) *PgStore {
	return &PgStore{
		pool:         pool,
		users:        repos.Users,
		contests:     repos.Contests,
		entries:      repos.Entries,
		transactions: repos.Transactions,
		outbox:       repos.Outbox,
		signatures:   repos.Signatures,
		logger:       logger,
	}
}

// ApplyContestEntered mirrors a paid entry: it finds or creates the wallet's
// user, records the entry and the entry-fee transaction, and claims the
// signature, all in one transaction.
func (s *PgStore) ApplyContestEntered(ctx context.Context, signature string, ev ContestEntered) (Result, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	claimed, err := s.signatures.Claim(ctx, tx, signature, string(EventContestEntered))
	if err != nil {
		return Result{}, err
	}
	if !claimed {
		return Result{Outcome: OutcomeDuplicate}, nil
	}

	res, err := s.applyEntry(ctx, tx, signature, ev)
	if err != nil {
		return Result{}, err
	}

	outcome := repository.SignatureApplied
	if res.Outcome == OutcomeRejected {
		outcome = repository.SignatureRejected
	}
	if err := s.signatures.SetOutcome(ctx, tx, signature, outcome, res.Reason); err != nil {
		return Result{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Result{}, fmt.Errorf("commit: %w", err)
	}
	return res, nil
}

func (s *PgStore) applyEntry(ctx context.Context, tx pgx.Tx, signature string, ev ContestEntered) (Result, error) {
	contestID, err := uuid.Parse(ev.ContestID)
	if err != nil {
		return rejected("contest id %q is not a uuid", ev.ContestID), nil
	}

	contest, err := s.contests.LockForUpdate(ctx, tx, contestID)
	if err != nil {
		return Result{}, err
	}
	if contest == nil {
		return rejected("contest %s not found", contestID), nil
	}
	if contest.Status.Terminal() {
		return rejected("contest %s is %s", contestID, contest.Status), nil
	}

	user, err := s.findOrCreateUser(ctx, tx, ev.User)
	if err != nil {
		return Result{}, err
	}

	fee := domain.LamportsToSOL(ev.EntryFee)
	if !fee.Equal(contest.EntryFee) {
		s.logger.Warn("on-chain entry fee differs from contest",
			"signature", signature, "contest_id", contestID, "paid", fee, "expected", contest.EntryFee)
	}

	existing, err := s.transactions.FindByHash(ctx, tx, signature)
	if err != nil {
		return Result{}, err
	}
	if existing != nil {
		return rejected("transaction already recorded"), nil
	}

	uc := &domain.UserContest{
		ID:        uuid.New(),
		UserID:    user.ID,
		ContestID: contestID,
		EntryFee:  fee,
	}
	inserted, err := s.entries.InsertIfAbsent(ctx, tx, uc)
	if err != nil {
		return Result{}, err
	}
	if !inserted {
		return rejected("user %s already entered contest %s", user.ID, contestID), nil
	}

	if err := s.recordEntryFee(ctx, tx, user.ID, contestID, fee, signature); err != nil {
		return Result{}, err
	}
	if err := s.outbox.Insert(ctx, tx, domain.NewContestEnteredEvent(uc, signature)); err != nil {
		return Result{}, err
	}
	return Result{Outcome: OutcomeApplied}, nil
}

func (s *PgStore) recordEntryFee(ctx context.Context, tx pgx.Tx, userID, contestID uuid.UUID, amount decimal.Decimal, signature string) error {
	return s.transactions.Insert(ctx, tx, &domain.Transaction{
		ID:              uuid.New(),
		UserID:          userID,
		ContestID:       &contestID,
		Type:            domain.TxEntryFee,
		Amount:          amount,
		TransactionHash: signature,
	})
}

// findOrCreateUser returns the user owning wallet, creating a default profile
// when the wallet is new. Inserts run in a savepoint so a concurrent insert of
// the same wallet, or a username collision, does not abort the outer tx.
func (s *PgStore) findOrCreateUser(ctx context.Context, tx pgx.Tx, wallet string) (*domain.User, error) {
	for attempt := 0; attempt < maxUsernameAttempts; attempt++ {
		user, err := s.users.FindByWallet(ctx, tx, wallet)
		if err != nil {
			return nil, err
		}
		if user != nil {
			return user, nil
		}

		user = domain.NewWalletUser(wallet)
		if attempt > 0 {
			user.Username = fmt.Sprintf("%s_%s", user.Username, uuid.NewString()[:4])
		}

		sp, err := tx.Begin(ctx)
		if err != nil {
			return nil, fmt.Errorf("savepoint: %w", err)
		}
		err = s.users.Create(ctx, sp, user)
		if err == nil {
			err = s.outbox.Insert(ctx, sp, domain.NewUserCreatedEvent(user, "chain"))
		}
		if err == nil {
			if err := sp.Commit(ctx); err != nil {
				return nil, fmt.Errorf("release savepoint: %w", err)
			}
			s.logger.Info("created user for wallet", "user_id", user.ID, "wallet", wallet)
			return user, nil
		}
		_ = sp.Rollback(ctx)
		if !repository.IsUniqueViolation(err, "") {
			return nil, err
		}
	}
	return nil, errors.New("could not allocate a username for wallet " + wallet)
}

// RecordIgnored claims signature for an event that carries no state change.
func (s *PgStore) RecordIgnored(ctx context.Context, signature string, name EventName, reason string) (Result, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	claimed, err := s.signatures.Claim(ctx, tx, signature, string(name))
	if err != nil {
		return Result{}, err
	}
	if !claimed {
		return Result{Outcome: OutcomeDuplicate}, nil
	}
	if err := s.signatures.SetOutcome(ctx, tx, signature, repository.SignatureIgnored, reason); err != nil {
		return Result{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Result{}, fmt.Errorf("commit: %w", err)
	}
	return Result{Outcome: OutcomeIgnored, Reason: reason}, nil
}

// Processed reports whether signature has already been recorded.
func (s *PgStore) Processed(ctx context.Context, signature string) (bool, error) {
	return s.signatures.Exists(ctx, s.pool, signature)
}

func rejected(format string, args ...interface{}) Result {
	return Result{Outcome: OutcomeRejected, Reason: fmt.Sprintf(format, args...)}
}
