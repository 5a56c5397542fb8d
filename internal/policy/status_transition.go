package policy

import (
	"slices"

	"github.com/fanpicks/platform/internal/domain"
)

// lattice describes the forward transitions of one lifecycle plus the escape
// states reachable from any non-terminal state.
type lattice[S ~string] struct {
	entity   string
	forward  map[S][]S
	escapes  []S
	terminal func(S) bool
}

var eventLattice = lattice[domain.EventStatus]{
	entity: "event",
	forward: map[domain.EventStatus][]domain.EventStatus{
		domain.EventUpcoming:  {domain.EventOpen},
		domain.EventOpen:      {domain.EventLive},
		domain.EventLive:      {domain.EventCompleted},
		domain.EventSuspended: {domain.EventUpcoming, domain.EventOpen, domain.EventLive},
	},
	escapes:  []domain.EventStatus{domain.EventCancelled, domain.EventSuspended},
	terminal: domain.EventStatus.Terminal,
}

var matchLattice = lattice[domain.MatchStatus]{
	entity: "match",
	forward: map[domain.MatchStatus][]domain.MatchStatus{
		domain.MatchOpen:   {domain.MatchClosed, domain.MatchCompleted},
		domain.MatchClosed: {domain.MatchCompleted},
	},
	escapes:  []domain.MatchStatus{domain.MatchCancelled},
	terminal: domain.MatchStatus.Terminal,
}

var contestLattice = lattice[domain.ContestStatus]{
	entity: "contest",
	forward: map[domain.ContestStatus][]domain.ContestStatus{
		domain.ContestPending: {domain.ContestOpen},
		domain.ContestOpen:    {domain.ContestClosed, domain.ContestCompleted},
		domain.ContestClosed:  {domain.ContestCompleted},
	},
	escapes:  []domain.ContestStatus{domain.ContestCancelled},
	terminal: domain.ContestStatus.Terminal,
}

func (l lattice[S]) allowed(from, to S) bool {
	if from == to || l.terminal(from) {
		return false
	}
	return slices.Contains(l.escapes, to) || slices.Contains(l.forward[from], to)
}

func (l lattice[S]) validate(from, to S) error {
	if l.allowed(from, to) {
		return nil
	}
	next := l.forward[from]
	if l.terminal(from) {
		next = nil
	}
	valid := make([]string, len(next))
	for i, s := range next {
		valid[i] = string(s)
	}
	return domain.ErrInvalidTransition(l.entity, string(from), string(to), valid)
}

// ValidateEventTransition rejects any event status change outside the lattice.
// CANCELLED and SUSPENDED are accepted from every other non-terminal state.
func ValidateEventTransition(from, to domain.EventStatus) error {
	return eventLattice.validate(from, to)
}

// ValidateMatchTransition rejects any match status change outside the lattice.
func ValidateMatchTransition(from, to domain.MatchStatus) error {
	return matchLattice.validate(from, to)
}

// ValidateContestTransition rejects any contest status change outside the lattice.
func ValidateContestTransition(from, to domain.ContestStatus) error {
	return contestLattice.validate(from, to)
}

// EventNextStates returns the forward states reachable from s, escapes excluded.
func EventNextStates(s domain.EventStatus) []domain.EventStatus {
	if s.Terminal() {
		return nil
	}
	return slices.Clone(eventLattice.forward[s])
}
