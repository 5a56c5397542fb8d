package domain

// EventStatus is the lifecycle state of a sporting event.
type EventStatus string

const (
	EventUpcoming  EventStatus = "UPCOMING"
	EventOpen      EventStatus = "OPEN"
	EventLive      EventStatus = "LIVE"
	EventCompleted EventStatus = "COMPLETED"
	EventCancelled EventStatus = "CANCELLED"
	EventSuspended EventStatus = "SUSPENDED"
)

// MatchStatus is the lifecycle state of a match.
type MatchStatus string

const (
	MatchOpen      MatchStatus = "OPEN"
	MatchClosed    MatchStatus = "CLOSED"
	MatchCompleted MatchStatus = "COMPLETED"
	MatchCancelled MatchStatus = "CANCELLED"
)

// ContestStatus is the lifecycle state of a contest.
type ContestStatus string

const (
	ContestPending   ContestStatus = "PENDING"
	ContestOpen      ContestStatus = "OPEN"
	ContestClosed    ContestStatus = "CLOSED"
	ContestCompleted ContestStatus = "COMPLETED"
	ContestCancelled ContestStatus = "CANCELLED"
)

// Terminal reports whether no further transitions are possible.
func (s EventStatus) Terminal() bool { return s == EventCompleted || s == EventCancelled }

func (s MatchStatus) Terminal() bool { return s == MatchCompleted || s == MatchCancelled }

func (s ContestStatus) Terminal() bool { return s == ContestCompleted || s == ContestCancelled }

// ParseEventStatus validates a raw status string.
func ParseEventStatus(s string) (EventStatus, bool) {
	switch st := EventStatus(s); st {
	case EventUpcoming, EventOpen, EventLive, EventCompleted, EventCancelled, EventSuspended:
		return st, true
	}
	return "", false
}

func ParseMatchStatus(s string) (MatchStatus, bool) {
	switch st := MatchStatus(s); st {
	case MatchOpen, MatchClosed, MatchCompleted, MatchCancelled:
		return st, true
	}
	return "", false
}

func ParseContestStatus(s string) (ContestStatus, bool) {
	switch st := ContestStatus(s); st {
	case ContestPending, ContestOpen, ContestClosed, ContestCompleted, ContestCancelled:
		return st, true
	}
	return "", false
}
