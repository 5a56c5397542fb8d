package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/fanpicks/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type leaderboardRepo struct{}

// NewLeaderboardRepository returns a pgx-backed LeaderboardRepository.
func NewLeaderboardRepository() LeaderboardRepository {
	return &leaderboardRepo{}
}

// rankedEntrants scores every entrant of contest $1 by correct predictions on
// resolved questions. Entrants without predictions score zero; ties share a rank.
const rankedEntrants = `
		WITH scores AS (
			SELECT uc.user_id,
			       count(p.id) FILTER (WHERE q.outcome IS NOT NULL AND q.outcome = p.outcome) AS correct,
			       count(p.id) AS total
			FROM user_contests uc
			LEFT JOIN predictions p ON p.user_id = uc.user_id AND p.contest_id = uc.contest_id
			LEFT JOIN questions q ON q.id = p.question_id
			WHERE uc.contest_id = $1
			GROUP BY uc.user_id
		)
		SELECT RANK() OVER (ORDER BY s.correct DESC) AS rank,
		       s.user_id, u.username, s.correct, s.total
		FROM scores s
		JOIN users u ON u.id = s.user_id`

// ForContest returns the top limit entrants.
func (r *leaderboardRepo) ForContest(ctx context.Context, db DBTX, contestID uuid.UUID, limit int) ([]domain.LeaderboardEntry, error) {
	rows, err := db.Query(ctx, rankedEntrants+`
		ORDER BY rank ASC, u.username ASC
		LIMIT $2`, contestID, limit)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	entries := []domain.LeaderboardEntry{}
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.Rank, &e.UserID, &e.Username, &e.Correct, &e.Total); err != nil {
			return nil, fmt.Errorf("scan leaderboard entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *leaderboardRepo) RankOf(ctx context.Context, db DBTX, contestID, userID uuid.UUID) (int, error) {
	var rank int
	err := db.QueryRow(ctx, `SELECT r.rank FROM (`+rankedEntrants+`) r WHERE r.user_id = $2`, contestID, userID).Scan(&rank)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query rank: %w", err)
	}
	return rank, nil
}
