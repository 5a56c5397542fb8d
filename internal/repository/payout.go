package repository

import (
	"context"
	"fmt"

	"github.com/fanpicks/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type payoutRepo struct{}

// NewPayoutRepository returns a pgx-backed PayoutRepository.
func NewPayoutRepository() PayoutRepository {
	return &payoutRepo{}
}

func (r *payoutRepo) Insert(ctx context.Context, db DBTX, p *domain.Payout) error {
	err := db.QueryRow(ctx, `
		INSERT INTO payouts (id, user_id, contest_id, amount, rank, transaction_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		p.ID, p.UserID, p.ContestID, DecimalToNumeric(p.Amount), p.Rank, p.TransactionHash,
	).Scan(&p.CreatedAt)
	return wrapWriteErr("insert payout", err)
}

func (r *payoutRepo) ListByUser(ctx context.Context, db DBTX, userID uuid.UUID) ([]domain.Payout, error) {
	rows, err := db.Query(ctx, `
		SELECT id, user_id, contest_id, amount, rank, transaction_hash, created_at
		FROM payouts WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query payouts: %w", err)
	}
	defer rows.Close()

	payouts := []domain.Payout{}
	for rows.Next() {
		var p domain.Payout
		var amount pgtype.Numeric
		if err := rows.Scan(&p.ID, &p.UserID, &p.ContestID, &amount, &p.Rank, &p.TransactionHash, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan payout: %w", err)
		}
		if p.Amount, err = NumericToDecimal(amount); err != nil {
			return nil, fmt.Errorf("payout amount: %w", err)
		}
		payouts = append(payouts, p)
	}
	return payouts, rows.Err()
}
