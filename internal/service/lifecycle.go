package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/fanpicks/platform/internal/domain"
	"github.com/fanpicks/platform/internal/policy"
	"github.com/fanpicks/platform/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// lifecycle applies validated status transitions inside a caller-owned
// transaction. Rows are locked top-down (event, match, contest) so cascades
// never wait on each other in reverse order.
type lifecycle struct {
	events   repository.EventRepository
	matches  repository.MatchRepository
	contests repository.ContestRepository
	outbox   repository.OutboxRepository
	logger   *slog.Logger
}

func (l *lifecycle) transitionContest(ctx context.Context, tx pgx.Tx, id uuid.UUID, to domain.ContestStatus) (*domain.Contest, error) {
	c, err := l.contests.LockForUpdate(ctx, tx, id)
	if err != nil {
		return nil, domain.ErrInternal("lock contest", err)
	}
	if c == nil {
		return nil, domain.ErrNotFound("contest", id.String())
	}
	if err := policy.ValidateContestTransition(c.Status, to); err != nil {
		return nil, err
	}

	from := c.Status
	if err := l.contests.UpdateStatus(ctx, tx, id, to); err != nil {
		return nil, appOrInternal("update contest status", err)
	}
	if err := l.outbox.Insert(ctx, tx, domain.NewStatusChangedEvent(domain.AggregateContest, id, string(from), string(to))); err != nil {
		return nil, domain.ErrInternal("write outbox", err)
	}
	c.Status = to
	return c, nil
}

// cascadeContests moves every non-terminal contest of a finished match along
// with it. A contest that cannot complete from its current state (PENDING
// never opened) is cancelled instead.
func (l *lifecycle) cascadeContests(ctx context.Context, tx pgx.Tx, matchID uuid.UUID, matchTo domain.MatchStatus) error {
	contests, err := l.contests.ListByMatch(ctx, tx, matchID)
	if err != nil {
		return domain.ErrInternal("list match contests", err)
	}

	for _, c := range contests {
		if c.Status.Terminal() {
			continue
		}
		to := domain.ContestCancelled
		if matchTo == domain.MatchCompleted && policy.ValidateContestTransition(c.Status, domain.ContestCompleted) == nil {
			to = domain.ContestCompleted
		}
		if _, err := l.transitionContest(ctx, tx, c.ID, to); err != nil {
			return err
		}
		l.logger.Info("contest status cascaded", "contest_id", c.ID, "match_id", matchID, "from", c.Status, "to", to)
	}
	return nil
}

func (l *lifecycle) transitionMatch(ctx context.Context, tx pgx.Tx, id uuid.UUID, to domain.MatchStatus) (*domain.Match, error) {
	m, err := l.matches.LockForUpdate(ctx, tx, id)
	if err != nil {
		return nil, domain.ErrInternal("lock match", err)
	}
	if m == nil {
		return nil, domain.ErrNotFound("match", id.String())
	}
	if err := policy.ValidateMatchTransition(m.Status, to); err != nil {
		return nil, err
	}

	from := m.Status
	if err := l.matches.UpdateStatus(ctx, tx, id, to); err != nil {
		return nil, appOrInternal("update match status", err)
	}
	if err := l.outbox.Insert(ctx, tx, domain.NewStatusChangedEvent(domain.AggregateMatch, id, string(from), string(to))); err != nil {
		return nil, domain.ErrInternal("write outbox", err)
	}

	if to == domain.MatchCompleted || to == domain.MatchCancelled {
		if err := l.cascadeContests(ctx, tx, id, to); err != nil {
			return nil, err
		}
	}

	m.Status = to
	return m, nil
}

func (l *lifecycle) transitionEvent(ctx context.Context, tx pgx.Tx, id uuid.UUID, to domain.EventStatus) (*domain.Event, error) {
	e, err := l.events.LockForUpdate(ctx, tx, id)
	if err != nil {
		return nil, domain.ErrInternal("lock event", err)
	}
	if e == nil {
		return nil, domain.ErrNotFound("event", id.String())
	}
	if err := policy.ValidateEventTransition(e.Status, to); err != nil {
		return nil, err
	}

	from := e.Status
	if err := l.events.UpdateStatus(ctx, tx, id, to); err != nil {
		return nil, appOrInternal("update event status", err)
	}
	if err := l.outbox.Insert(ctx, tx, domain.NewStatusChangedEvent(domain.AggregateEvent, id, string(from), string(to))); err != nil {
		return nil, domain.ErrInternal("write outbox", err)
	}

	var matchTo domain.MatchStatus
	switch to {
	case domain.EventCompleted:
		matchTo = domain.MatchCompleted
	case domain.EventCancelled:
		matchTo = domain.MatchCancelled
	}
	if matchTo != "" {
		matches, err := l.matches.ListByEvent(ctx, tx, id)
		if err != nil {
			return nil, domain.ErrInternal("list event matches", err)
		}
		for _, m := range matches {
			if m.Status.Terminal() {
				continue
			}
			if _, err := l.transitionMatch(ctx, tx, m.ID, matchTo); err != nil {
				return nil, err
			}
		}
	}

	e.Status = to
	return e, nil
}

// LifecycleRepos bundles the repositories shared by the lifecycle services.
type LifecycleRepos struct {
	Catalog  repository.CatalogRepository
	Events   repository.EventRepository
	Matches  repository.MatchRepository
	Contests repository.ContestRepository
	Outbox   repository.OutboxRepository
}

// NewLifecycleServices creates the event, match and contest services over one
// shared transition core.
func NewLifecycleServices(pool *pgxpool.Pool, repos LifecycleRepos, logger *slog.Logger) (*EventService, *MatchService, *ContestService) {
	lc := &lifecycle{
		events:   repos.Events,
		matches:  repos.Matches,
		contests: repos.Contests,
		outbox:   repos.Outbox,
		logger:   logger,
	}
	return &EventService{pool: pool, catalog: repos.Catalog, lc: lc, logger: logger},
		&MatchService{pool: pool, catalog: repos.Catalog, lc: lc, logger: logger},
		&ContestService{pool: pool, lc: lc, logger: logger}
}

// EventService manages sporting events.
type EventService struct {
	pool    *pgxpool.Pool
	catalog repository.CatalogRepository
	lc      *lifecycle
	logger  *slog.Logger
}

// CreateEventInput holds the fields for a new event.
type CreateEventInput struct {
	SportID     uuid.UUID  `json:"sport_id" validate:"required"`
	Name        string     `json:"name" validate:"required,max=200"`
	Description string     `json:"description" validate:"max=2000"`
	StartTime   time.Time  `json:"start_time" validate:"required"`
	EndTime     *time.Time `json:"end_time"`
}

// Create inserts a new UPCOMING event.
func (s *EventService) Create(ctx context.Context, input CreateEventInput) (*domain.Event, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, domain.ErrValidation("name is required")
	}
	if input.EndTime != nil && input.EndTime.Before(input.StartTime) {
		return nil, domain.ErrValidation("end_time must be after start_time")
	}
	if err := s.requireSport(ctx, input.SportID); err != nil {
		return nil, err
	}

	e := &domain.Event{
		ID:          uuid.New(),
		SportID:     input.SportID,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		Status:      domain.EventUpcoming,
	}
	if err := s.lc.events.Create(ctx, s.pool, e); err != nil {
		return nil, domain.ErrInternal("create event", err)
	}
	return e, nil
}

func (s *EventService) requireSport(ctx context.Context, id uuid.UUID) error {
	sports, err := s.catalog.ListSports(ctx, s.pool)
	if err != nil {
		return domain.ErrInternal("list sports", err)
	}
	for _, sp := range sports {
		if sp.ID == id {
			return nil
		}
	}
	return domain.ErrNotFound("sport", id.String())
}

// Get returns a single event.
func (s *EventService) Get(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	e, err := s.lc.events.FindByID(ctx, s.pool, id)
	if err != nil {
		return nil, domain.ErrInternal("find event", err)
	}
	if e == nil {
		return nil, domain.ErrNotFound("event", id.String())
	}
	return e, nil
}

// List returns events, optionally filtered by status.
func (s *EventService) List(ctx context.Context, status *domain.EventStatus) ([]domain.Event, error) {
	events, err := s.lc.events.List(ctx, s.pool, status)
	if err != nil {
		return nil, domain.ErrInternal("list events", err)
	}
	return events, nil
}

// UpdateStatus validates and applies an event transition. Completing or
// cancelling an event does the same to each of its non-terminal matches, and
// through them their contests, in the same transaction.
func (s *EventService) UpdateStatus(ctx context.Context, id uuid.UUID, to domain.EventStatus) (*domain.Event, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	e, err := s.lc.transitionEvent(ctx, tx, id, to)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	s.logger.Info("event status updated", "event_id", id, "status", to)
	return e, nil
}

// MatchService manages matches.
type MatchService struct {
	pool    *pgxpool.Pool
	catalog repository.CatalogRepository
	lc      *lifecycle
	logger  *slog.Logger
}

// CreateMatchInput holds the fields for a new match.
type CreateMatchInput struct {
	EventID    uuid.UUID `json:"event_id" validate:"required"`
	HomeTeamID uuid.UUID `json:"home_team_id" validate:"required"`
	AwayTeamID uuid.UUID `json:"away_team_id" validate:"required,nefield=HomeTeamID"`
	StartTime  time.Time `json:"start_time" validate:"required"`
	Venue      string    `json:"venue" validate:"max=200"`
}

// Create inserts a new OPEN match under a non-terminal event.
func (s *MatchService) Create(ctx context.Context, input CreateMatchInput) (*domain.Match, error) {
	if input.HomeTeamID == input.AwayTeamID {
		return nil, domain.ErrValidation("home and away teams must differ")
	}

	event, err := s.lc.events.FindByID(ctx, s.pool, input.EventID)
	if err != nil {
		return nil, domain.ErrInternal("find event", err)
	}
	if event == nil {
		return nil, domain.ErrNotFound("event", input.EventID.String())
	}
	if event.Status.Terminal() {
		return nil, domain.ErrConflict("cannot add a match to a " + strings.ToLower(string(event.Status)) + " event")
	}

	teams, err := s.catalog.ListTeams(ctx, s.pool, &event.SportID)
	if err != nil {
		return nil, domain.ErrInternal("list teams", err)
	}
	known := make(map[uuid.UUID]bool, len(teams))
	for _, t := range teams {
		known[t.ID] = true
	}
	for _, id := range []uuid.UUID{input.HomeTeamID, input.AwayTeamID} {
		if !known[id] {
			return nil, domain.ErrNotFound("team", id.String())
		}
	}

	m := &domain.Match{
		ID:         uuid.New(),
		EventID:    input.EventID,
		HomeTeamID: input.HomeTeamID,
		AwayTeamID: input.AwayTeamID,
		StartTime:  input.StartTime,
		Venue:      input.Venue,
		Status:     domain.MatchOpen,
	}
	if err := s.lc.matches.Create(ctx, s.pool, m); err != nil {
		return nil, domain.ErrInternal("create match", err)
	}
	return m, nil
}

// Get returns a single match.
func (s *MatchService) Get(ctx context.Context, id uuid.UUID) (*domain.Match, error) {
	m, err := s.lc.matches.FindByID(ctx, s.pool, id)
	if err != nil {
		return nil, domain.ErrInternal("find match", err)
	}
	if m == nil {
		return nil, domain.ErrNotFound("match", id.String())
	}
	return m, nil
}

// ListByEvent returns the matches of an event.
func (s *MatchService) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]domain.Match, error) {
	matches, err := s.lc.matches.ListByEvent(ctx, s.pool, eventID)
	if err != nil {
		return nil, domain.ErrInternal("list matches", err)
	}
	return matches, nil
}

// ListByStatus returns all matches currently in status.
func (s *MatchService) ListByStatus(ctx context.Context, status domain.MatchStatus) ([]domain.Match, error) {
	matches, err := s.lc.matches.ListByStatus(ctx, s.pool, status)
	if err != nil {
		return nil, domain.ErrInternal("list matches", err)
	}
	return matches, nil
}

// UpdateStatus validates and applies a match transition in its own
// transaction. COMPLETED completes every non-terminal contest of the match;
// CANCELLED cancels them.
func (s *MatchService) UpdateStatus(ctx context.Context, id uuid.UUID, to domain.MatchStatus) (*domain.Match, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	m, err := s.lc.transitionMatch(ctx, tx, id, to)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	s.logger.Info("match status updated", "match_id", id, "status", to)
	return m, nil
}

// Delete removes a match that has not completed.
func (s *MatchService) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	m, err := s.lc.matches.LockForUpdate(ctx, tx, id)
	if err != nil {
		return domain.ErrInternal("lock match", err)
	}
	if m == nil {
		return domain.ErrNotFound("match", id.String())
	}
	if m.Status == domain.MatchCompleted {
		return domain.ErrConflict("completed matches cannot be deleted")
	}
	contests, err := s.lc.contests.ListByMatch(ctx, tx, id)
	if err != nil {
		return domain.ErrInternal("list match contests", err)
	}
	if len(contests) > 0 {
		return domain.ErrConflict("match still has contests; cancel the match instead")
	}

	if err := s.lc.matches.Delete(ctx, tx, id); err != nil {
		return appOrInternal("delete match", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.ErrInternal("commit tx", err)
	}

	s.logger.Info("match deleted", "match_id", id)
	return nil
}

// ContestService manages contests.
type ContestService struct {
	pool   *pgxpool.Pool
	lc     *lifecycle
	logger *slog.Logger
}

// CreateContestInput holds the fields for a new contest.
type CreateContestInput struct {
	MatchID         uuid.UUID       `json:"match_id" validate:"required"`
	Name            string          `json:"name" validate:"required,max=200"`
	Description     string          `json:"description" validate:"max=2000"`
	EntryFee        decimal.Decimal `json:"entry_fee"`
	PrizePool       decimal.Decimal `json:"prize_pool"`
	MaxParticipants int             `json:"max_participants" validate:"gte=0"`
}

// Create inserts a new PENDING contest under an open match.
func (s *ContestService) Create(ctx context.Context, input CreateContestInput) (*domain.Contest, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, domain.ErrValidation("name is required")
	}
	if input.EntryFee.IsNegative() || input.PrizePool.IsNegative() {
		return nil, domain.ErrValidation("entry_fee and prize_pool must not be negative")
	}

	m, err := s.lc.matches.FindByID(ctx, s.pool, input.MatchID)
	if err != nil {
		return nil, domain.ErrInternal("find match", err)
	}
	if m == nil {
		return nil, domain.ErrNotFound("match", input.MatchID.String())
	}
	if m.Status.Terminal() {
		return nil, domain.ErrConflict("cannot add a contest to a " + strings.ToLower(string(m.Status)) + " match")
	}

	c := &domain.Contest{
		ID:              uuid.New(),
		MatchID:         input.MatchID,
		Name:            strings.TrimSpace(input.Name),
		Description:     input.Description,
		EntryFee:        input.EntryFee,
		PrizePool:       input.PrizePool,
		MaxParticipants: input.MaxParticipants,
		Status:          domain.ContestPending,
	}
	if err := s.lc.contests.Create(ctx, s.pool, c); err != nil {
		return nil, domain.ErrInternal("create contest", err)
	}
	return c, nil
}

// Get returns a single contest.
func (s *ContestService) Get(ctx context.Context, id uuid.UUID) (*domain.Contest, error) {
	c, err := s.lc.contests.FindByID(ctx, s.pool, id)
	if err != nil {
		return nil, domain.ErrInternal("find contest", err)
	}
	if c == nil {
		return nil, domain.ErrNotFound("contest", id.String())
	}
	return c, nil
}

// List returns contests, optionally filtered by status.
func (s *ContestService) List(ctx context.Context, status *domain.ContestStatus) ([]domain.Contest, error) {
	contests, err := s.lc.contests.List(ctx, s.pool, status)
	if err != nil {
		return nil, domain.ErrInternal("list contests", err)
	}
	return contests, nil
}

// ListByMatch returns the contests of a match.
func (s *ContestService) ListByMatch(ctx context.Context, matchID uuid.UUID) ([]domain.Contest, error) {
	contests, err := s.lc.contests.ListByMatch(ctx, s.pool, matchID)
	if err != nil {
		return nil, domain.ErrInternal("list contests", err)
	}
	return contests, nil
}

// UpdateStatus validates and applies a contest transition.
func (s *ContestService) UpdateStatus(ctx context.Context, id uuid.UUID, to domain.ContestStatus) (*domain.Contest, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	c, err := s.lc.transitionContest(ctx, tx, id, to)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	s.logger.Info("contest status updated", "contest_id", id, "status", to)
	return c, nil
}

// SetImage records the public URL of an uploaded contest image.
func (s *ContestService) SetImage(ctx context.Context, id uuid.UUID, url string) (*domain.Contest, error) {
	if err := s.lc.contests.SetImage(ctx, s.pool, id, url); err != nil {
		return nil, appOrInternal("set contest image", err)
	}
	return s.Get(ctx, id)
}
