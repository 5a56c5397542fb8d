package repository

import (
	"context"
	"fmt"

	"github.com/fanpicks/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type userContestRepo struct{}

// NewUserContestRepository returns a pgx-backed UserContestRepository.
func NewUserContestRepository() UserContestRepository {
	return &userContestRepo{}
}

func (r *userContestRepo) Insert(ctx context.Context, db DBTX, uc *domain.UserContest) error {
	err := db.QueryRow(ctx, `
		INSERT INTO user_contests (id, user_id, contest_id, entry_fee)
		VALUES ($1, $2, $3, $4)
		RETURNING joined_at`,
		uc.ID, uc.UserID, uc.ContestID, DecimalToNumeric(uc.EntryFee),
	).Scan(&uc.JoinedAt)
	return wrapWriteErr("insert user contest", err)
}

func (r *userContestRepo) InsertIfAbsent(ctx context.Context, db DBTX, uc *domain.UserContest) (bool, error) {
	tag, err := db.Exec(ctx, `
		INSERT INTO user_contests (id, user_id, contest_id, entry_fee)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT ON CONSTRAINT `+ConstraintUserContest+` DO NOTHING`,
		uc.ID, uc.UserID, uc.ContestID, DecimalToNumeric(uc.EntryFee))
	if err != nil {
		return false, fmt.Errorf("insert user contest: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *userContestRepo) ListByUser(ctx context.Context, db DBTX, userID uuid.UUID) ([]domain.UserContest, error) {
	rows, err := db.Query(ctx, `
		SELECT id, user_id, contest_id, entry_fee, joined_at
		FROM user_contests WHERE user_id = $1 ORDER BY joined_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query user contests: %w", err)
	}
	defer rows.Close()

	entries := []domain.UserContest{}
	for rows.Next() {
		var uc domain.UserContest
		var fee pgtype.Numeric
		if err := rows.Scan(&uc.ID, &uc.UserID, &uc.ContestID, &fee, &uc.JoinedAt); err != nil {
			return nil, fmt.Errorf("scan user contest: %w", err)
		}
		if uc.EntryFee, err = NumericToDecimal(fee); err != nil {
			return nil, fmt.Errorf("user contest entry_fee: %w", err)
		}
		entries = append(entries, uc)
	}
	return entries, rows.Err()
}

func (r *userContestRepo) CountByContest(ctx context.Context, db DBTX, contestID uuid.UUID) (int, error) {
	var n int
	err := db.QueryRow(ctx, `SELECT count(*) FROM user_contests WHERE contest_id = $1`, contestID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count user contests: %w", err)
	}
	return n, nil
}
