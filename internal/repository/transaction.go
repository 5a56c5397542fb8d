package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/fanpicks/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type transactionRepo struct{}

// NewTransactionRepository returns a pgx-backed TransactionRepository.
func NewTransactionRepository() TransactionRepository {
	return &transactionRepo{}
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	var amount pgtype.Numeric
	err := row.Scan(&t.ID, &t.UserID, &t.ContestID, &t.Type, &amount, &t.TransactionHash, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	if t.Amount, err = NumericToDecimal(amount); err != nil {
		return nil, fmt.Errorf("transaction amount: %w", err)
	}
	return t, nil
}

// Insert relies on uq_transactions_hash; callers translate the *UniqueViolation.
func (r *transactionRepo) Insert(ctx context.Context, db DBTX, t *domain.Transaction) error {
	err := db.QueryRow(ctx, `
		INSERT INTO transactions (id, user_id, contest_id, type, amount, transaction_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		t.ID, t.UserID, t.ContestID, t.Type, DecimalToNumeric(t.Amount), t.TransactionHash,
	).Scan(&t.CreatedAt)
	return wrapWriteErr("insert transaction", err)
}

func (r *transactionRepo) FindByHash(ctx context.Context, db DBTX, hash string) (*domain.Transaction, error) {
	return scanTransaction(db.QueryRow(ctx, `
		SELECT id, user_id, contest_id, type, amount, transaction_hash, created_at
		FROM transactions WHERE transaction_hash = $1`, hash))
}

func (r *transactionRepo) ListByUser(ctx context.Context, db DBTX, userID uuid.UUID, limit int) ([]domain.Transaction, error) {
	rows, err := db.Query(ctx, `
		SELECT id, user_id, contest_id, type, amount, transaction_hash, created_at
		FROM transactions WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	txs := []domain.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, *t)
	}
	return txs, rows.Err()
}
