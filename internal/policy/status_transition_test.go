package policy

import (
	"testing"

	"github.com/fanpicks/platform/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allEventStatuses = []domain.EventStatus{
	domain.EventUpcoming, domain.EventOpen, domain.EventLive,
	domain.EventCompleted, domain.EventCancelled, domain.EventSuspended,
}

func TestValidateEventTransition_ForwardPath(t *testing.T) {
	steps := []struct{ from, to domain.EventStatus }{
		{domain.EventUpcoming, domain.EventOpen},
		{domain.EventOpen, domain.EventLive},
		{domain.EventLive, domain.EventCompleted},
	}
	for _, s := range steps {
		t.Run(string(s.from)+"->"+string(s.to), func(t *testing.T) {
			assert.NoError(t, ValidateEventTransition(s.from, s.to))
		})
	}
}

func TestValidateEventTransition_SkipRejected(t *testing.T) {
	err := ValidateEventTransition(domain.EventOpen, domain.EventCompleted)
	require.Error(t, err)

	appErr, ok := err.(*domain.AppError)
	require.True(t, ok)
	assert.Equal(t, "INVALID_STATUS_TRANSITION", appErr.Code)
	assert.Equal(t, 400, appErr.Status)
	assert.Contains(t, appErr.Message, "from OPEN")
	assert.Contains(t, appErr.Message, "valid next states: LIVE")
}

func TestValidateEventTransition_Resume(t *testing.T) {
	for _, to := range []domain.EventStatus{domain.EventUpcoming, domain.EventOpen, domain.EventLive} {
		t.Run(string(to), func(t *testing.T) {
			assert.NoError(t, ValidateEventTransition(domain.EventSuspended, to))
		})
	}
	assert.Error(t, ValidateEventTransition(domain.EventSuspended, domain.EventCompleted))
}

func TestValidateEventTransition_EscapesFromEveryNonTerminal(t *testing.T) {
	for _, from := range allEventStatuses {
		if from.Terminal() {
			continue
		}
		for _, to := range []domain.EventStatus{domain.EventCancelled, domain.EventSuspended} {
			if from == to {
				continue
			}
			t.Run(string(from)+"->"+string(to), func(t *testing.T) {
				assert.NoError(t, ValidateEventTransition(from, to))
			})
		}
	}
}

func TestValidateEventTransition_TerminalStates(t *testing.T) {
	for _, from := range []domain.EventStatus{domain.EventCompleted, domain.EventCancelled} {
		for _, to := range allEventStatuses {
			t.Run(string(from)+"->"+string(to), func(t *testing.T) {
				err := ValidateEventTransition(from, to)
				require.Error(t, err)
				assert.Contains(t, err.Error(), "valid next states: none")
			})
		}
	}
}

func TestValidateEventTransition_FullMatrix(t *testing.T) {
	valid := map[[2]domain.EventStatus]bool{
		{domain.EventUpcoming, domain.EventOpen}:       true,
		{domain.EventOpen, domain.EventLive}:           true,
		{domain.EventLive, domain.EventCompleted}:      true,
		{domain.EventSuspended, domain.EventUpcoming}:  true,
		{domain.EventSuspended, domain.EventOpen}:      true,
		{domain.EventSuspended, domain.EventLive}:      true,
	}

	for _, from := range allEventStatuses {
		for _, to := range allEventStatuses {
			escape := !from.Terminal() && from != to && (to == domain.EventCancelled || to == domain.EventSuspended)
			want := valid[[2]domain.EventStatus{from, to}] || escape
			err := ValidateEventTransition(from, to)
			if want {
				assert.NoError(t, err, "%s -> %s", from, to)
				continue
			}
			require.Error(t, err, "%s -> %s", from, to)
			for _, next := range EventNextStates(from) {
				assert.Contains(t, err.Error(), string(next))
			}
		}
	}
}

func TestValidateTransition_SameStateRejected(t *testing.T) {
	for _, s := range allEventStatuses {
		assert.Error(t, ValidateEventTransition(s, s), "event %s", s)
	}
	for _, s := range []domain.MatchStatus{domain.MatchOpen, domain.MatchClosed} {
		assert.Error(t, ValidateMatchTransition(s, s), "match %s", s)
	}
	for _, s := range []domain.ContestStatus{domain.ContestPending, domain.ContestOpen, domain.ContestClosed} {
		assert.Error(t, ValidateContestTransition(s, s), "contest %s", s)
	}

	err := ValidateEventTransition(domain.EventSuspended, domain.EventSuspended)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UPCOMING")
}

func TestValidateMatchTransition(t *testing.T) {
	tests := []struct {
		from, to domain.MatchStatus
		wantErr  bool
	}{
		{domain.MatchOpen, domain.MatchClosed, false},
		{domain.MatchOpen, domain.MatchCompleted, false},
		{domain.MatchClosed, domain.MatchCompleted, false},
		{domain.MatchOpen, domain.MatchCancelled, false},
		{domain.MatchClosed, domain.MatchCancelled, false},
		{domain.MatchClosed, domain.MatchOpen, true},
		{domain.MatchCompleted, domain.MatchOpen, true},
		{domain.MatchCompleted, domain.MatchCancelled, true},
		{domain.MatchCancelled, domain.MatchCompleted, true},
		{domain.MatchOpen, domain.MatchOpen, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			err := ValidateMatchTransition(tt.from, tt.to)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateMatchTransition_MessageListsNextStates(t *testing.T) {
	err := ValidateMatchTransition(domain.MatchClosed, domain.MatchOpen)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "valid next states: COMPLETED")
}

func TestValidateContestTransition(t *testing.T) {
	tests := []struct {
		from, to domain.ContestStatus
		wantErr  bool
	}{
		{domain.ContestPending, domain.ContestOpen, false},
		{domain.ContestOpen, domain.ContestClosed, false},
		{domain.ContestOpen, domain.ContestCompleted, false},
		{domain.ContestClosed, domain.ContestCompleted, false},
		{domain.ContestPending, domain.ContestCancelled, false},
		{domain.ContestOpen, domain.ContestCancelled, false},
		{domain.ContestPending, domain.ContestCompleted, true},
		{domain.ContestCompleted, domain.ContestOpen, true},
		{domain.ContestCancelled, domain.ContestOpen, true},
		{domain.ContestCompleted, domain.ContestCancelled, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			err := ValidateContestTransition(tt.from, tt.to)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
