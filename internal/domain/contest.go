package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxPredictionsPerContest caps how many predictions a user may hold in one contest.
const MaxPredictionsPerContest = 9

// Contest is a paid prediction pool scoped to a match.
type Contest struct {
	ID              uuid.UUID       `json:"id"`
	MatchID         uuid.UUID       `json:"match_id"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	EntryFee        decimal.Decimal `json:"entry_fee"`
	PrizePool       decimal.Decimal `json:"prize_pool"`
	MaxParticipants int             `json:"max_participants"`
	ImageURL        *string         `json:"image_url,omitempty"`
	Status          ContestStatus   `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Question is a yes/no proposition within a contest. Outcome is nil until resolved.
type Question struct {
	ID        uuid.UUID `json:"id"`
	ContestID uuid.UUID `json:"contest_id"`
	Text      string    `json:"text"`
	VideoURL  *string   `json:"video_url,omitempty"`
	Outcome   *bool     `json:"outcome"`
	CreatedAt time.Time `json:"created_at"`
}

// Prediction is a user's chosen outcome for a question within a contest.
type Prediction struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	ContestID  uuid.UUID `json:"contest_id"`
	QuestionID uuid.UUID `json:"question_id"`
	Outcome    bool      `json:"outcome"`
	Position   int       `json:"position"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Question *Question `json:"question,omitempty"`
	Contest  *Contest  `json:"contest,omitempty"`
}

// UserContest is a user's paid entry into a contest.
type UserContest struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	ContestID uuid.UUID       `json:"contest_id"`
	EntryFee  decimal.Decimal `json:"entry_fee"`
	JoinedAt  time.Time       `json:"joined_at"`
}

// Payout is the amount owed to a user for a contest.
type Payout struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	ContestID       uuid.UUID       `json:"contest_id"`
	Amount          decimal.Decimal `json:"amount"`
	Rank            int             `json:"rank"`
	TransactionHash *string         `json:"transaction_hash,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// LeaderboardEntry ranks a user by correct predictions; ties share a rank.
type LeaderboardEntry struct {
	Rank     int       `json:"rank"`
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Correct  int       `json:"correct"`
	Total    int       `json:"total"`
}
