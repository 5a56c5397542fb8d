package repository

import (
	"context"
	"time"

	"github.com/fanpicks/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Lookups return (nil, nil) when the row does not exist.

// UserRepository provides access to users.
type UserRepository interface {
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.User, error)
	FindByEmail(ctx context.Context, db DBTX, email string) (*domain.User, error)
	FindByWallet(ctx context.Context, db DBTX, wallet string) (*domain.User, error)

	// Create inserts a user. Duplicate email, username or wallet yields a *UniqueViolation.
	Create(ctx context.Context, db DBTX, user *domain.User) error
}

// CatalogRepository provides access to sports and teams.
type CatalogRepository interface {
	CreateSport(ctx context.Context, db DBTX, sport *domain.Sport) error
	ListSports(ctx context.Context, db DBTX) ([]domain.Sport, error)
	CreateTeam(ctx context.Context, db DBTX, team *domain.Team) error
	ListTeams(ctx context.Context, db DBTX, sportID *uuid.UUID) ([]domain.Team, error)
}

// EventRepository provides access to events.
type EventRepository interface {
	Create(ctx context.Context, db DBTX, event *domain.Event) error
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Event, error)

	// LockForUpdate acquires a row-level lock (SELECT FOR UPDATE) and returns the event.
	LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Event, error)
	List(ctx context.Context, db DBTX, status *domain.EventStatus) ([]domain.Event, error)
	UpdateStatus(ctx context.Context, db DBTX, id uuid.UUID, status domain.EventStatus) error
}

// MatchRepository provides access to matches.
type MatchRepository interface {
	Create(ctx context.Context, db DBTX, match *domain.Match) error
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Match, error)
	LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Match, error)
	ListByEvent(ctx context.Context, db DBTX, eventID uuid.UUID) ([]domain.Match, error)
	ListByStatus(ctx context.Context, db DBTX, status domain.MatchStatus) ([]domain.Match, error)
	UpdateStatus(ctx context.Context, db DBTX, id uuid.UUID, status domain.MatchStatus) error
	Delete(ctx context.Context, db DBTX, id uuid.UUID) error
}

// ContestRepository provides access to contests.
type ContestRepository interface {
	Create(ctx context.Context, db DBTX, contest *domain.Contest) error
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Contest, error)
	LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Contest, error)
	List(ctx context.Context, db DBTX, status *domain.ContestStatus) ([]domain.Contest, error)
	ListByMatch(ctx context.Context, db DBTX, matchID uuid.UUID) ([]domain.Contest, error)
	UpdateStatus(ctx context.Context, db DBTX, id uuid.UUID, status domain.ContestStatus) error
	SetImage(ctx context.Context, db DBTX, id uuid.UUID, url string) error
}

// QuestionRepository provides access to questions.
type QuestionRepository interface {
	Create(ctx context.Context, db DBTX, q *domain.Question) error
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Question, error)
	ListByContest(ctx context.Context, db DBTX, contestID uuid.UUID) ([]domain.Question, error)
	SetOutcome(ctx context.Context, db DBTX, id uuid.UUID, outcome bool) error
}

// PredictionRepository provides access to predictions.
type PredictionRepository interface {
	// LockUserContest takes a transaction-scoped advisory lock on (user, contest)
	// so admission checks and the insert are serialized.
	LockUserContest(ctx context.Context, tx pgx.Tx, userID, contestID uuid.UUID) error
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Prediction, error)
	ListByUserContest(ctx context.Context, db DBTX, userID, contestID uuid.UUID) ([]domain.Prediction, error)

	// Insert writes a prediction. A duplicate (user, contest, question) yields a *UniqueViolation.
	Insert(ctx context.Context, db DBTX, p *domain.Prediction) error
	Update(ctx context.Context, db DBTX, p *domain.Prediction) error
}

// UserContestRepository provides access to user_contests.
type UserContestRepository interface {
	// Insert writes an entry. A second entry for (user, contest) yields a *UniqueViolation.
	Insert(ctx context.Context, db DBTX, uc *domain.UserContest) error

	// InsertIfAbsent writes an entry and reports false if one already existed.
	InsertIfAbsent(ctx context.Context, db DBTX, uc *domain.UserContest) (bool, error)
	ListByUser(ctx context.Context, db DBTX, userID uuid.UUID) ([]domain.UserContest, error)
	CountByContest(ctx context.Context, db DBTX, contestID uuid.UUID) (int, error)
}

// TransactionRepository provides access to transactions.
type TransactionRepository interface {
	// Insert writes a ledger entry. A reused transaction_hash yields a *UniqueViolation.
	Insert(ctx context.Context, db DBTX, tx *domain.Transaction) error
	FindByHash(ctx context.Context, db DBTX, hash string) (*domain.Transaction, error)
	ListByUser(ctx context.Context, db DBTX, userID uuid.UUID, limit int) ([]domain.Transaction, error)
}

// PayoutRepository provides access to payouts.
type PayoutRepository interface {
	// Insert writes a payout. A second payout for (user, contest) yields a *UniqueViolation.
	Insert(ctx context.Context, db DBTX, p *domain.Payout) error
	ListByUser(ctx context.Context, db DBTX, userID uuid.UUID) ([]domain.Payout, error)
}

// LeaderboardRepository ranks contest entrants.
type LeaderboardRepository interface {
	ForContest(ctx context.Context, db DBTX, contestID uuid.UUID, limit int) ([]domain.LeaderboardEntry, error)

	// RankOf returns the user's current rank, or 0 if they have not entered the contest.
	RankOf(ctx context.Context, db DBTX, contestID, userID uuid.UUID) (int, error)
}

// OutboxRepository provides access to the event_outbox table.
type OutboxRepository interface {
	// Insert writes an outbox event (within the same transaction as the state change).
	Insert(ctx context.Context, db DBTX, draft domain.OutboxDraft) error

	// FetchUnpublished returns unpublished events in insertion order.
	FetchUnpublished(ctx context.Context, db DBTX, limit int) ([]domain.OutboxDraft, error)

	// MarkPublished stamps publishedAt on the given sequence ids.
	MarkPublished(ctx context.Context, db DBTX, ids []int64) error

	CountUnpublished(ctx context.Context, db DBTX) (int, error)

	// DeletePublishedBefore removes rows relayed before the cutoff.
	DeletePublishedBefore(ctx context.Context, db DBTX, before time.Time) (int64, error)
}

// SignatureOutcome records what happened to an on-chain transaction.
type SignatureOutcome string

const (
	SignatureApplied  SignatureOutcome = "applied"
	SignatureRejected SignatureOutcome = "rejected"
	SignatureIgnored  SignatureOutcome = "ignored"
)

// SignatureRepository is the durable dedup set for on-chain transaction signatures.
type SignatureRepository interface {
	// Claim records the signature and returns false if it was already recorded.
	// Callers run it inside the transaction that applies the side effects.
	Claim(ctx context.Context, db DBTX, signature, eventName string) (bool, error)
	SetOutcome(ctx context.Context, db DBTX, signature string, outcome SignatureOutcome, reason string) error
	Exists(ctx context.Context, db DBTX, signature string) (bool, error)
}
