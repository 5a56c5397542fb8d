package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Constraint names from db/migrations that services translate into domain errors.
const (
	ConstraintPredictionQuestion = "uq_predictions_user_question"
	ConstraintUserContest        = "uq_user_contests_user_contest"
	ConstraintTransactionHash    = "uq_transactions_hash"
	ConstraintPayoutContest      = "uq_payouts_user_contest"
)

const pgUniqueViolation = "23505"

// UniqueViolation reports that a write hit a unique index.
type UniqueViolation struct {
	Constraint string
	Err        error
}

func (e *UniqueViolation) Error() string {
	return fmt.Sprintf("unique violation on %s: %v", e.Constraint, e.Err)
}

func (e *UniqueViolation) Unwrap() error { return e.Err }

// wrapWriteErr converts a PostgreSQL unique violation into *UniqueViolation
// and wraps everything else with op.
func wrapWriteErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return &UniqueViolation{Constraint: pgErr.ConstraintName, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// IsUniqueViolation reports whether err is a unique violation on constraint.
// An empty constraint matches any unique violation.
func IsUniqueViolation(err error, constraint string) bool {
	var uv *UniqueViolation
	if !errors.As(err, &uv) {
		return false
	}
	return constraint == "" || uv.Constraint == constraint
}
