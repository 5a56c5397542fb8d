package domain

import (
	"time"

	"github.com/google/uuid"
)

// Sport is a sports category (football, cricket, ...).
type Sport struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	ImageURL  *string   `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Team is a side that takes part in matches.
type Team struct {
	ID        uuid.UUID `json:"id"`
	SportID   uuid.UUID `json:"sport_id"`
	Name      string    `json:"name"`
	ShortName string    `json:"short_name"`
	LogoURL   *string   `json:"logo_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Event is a sporting event grouping one or more matches.
type Event struct {
	ID          uuid.UUID   `json:"id"`
	SportID     uuid.UUID   `json:"sport_id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	StartTime   time.Time   `json:"start_time"`
	EndTime     *time.Time  `json:"end_time,omitempty"`
	Status      EventStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Match is a single game between two teams within an event.
type Match struct {
	ID         uuid.UUID   `json:"id"`
	EventID    uuid.UUID   `json:"event_id"`
	HomeTeamID uuid.UUID   `json:"home_team_id"`
	AwayTeamID uuid.UUID   `json:"away_team_id"`
	StartTime  time.Time   `json:"start_time"`
	Venue      string      `json:"venue,omitempty"`
	Status     MatchStatus `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}
