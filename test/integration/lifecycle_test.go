//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/fanpicks/platform/test/integration/testutil"
	"github.com/stretchr/testify/assert"
)

func TestContestTransition_Invalid(t *testing.T) {
	env := testutil.NewTestEnv(t)
	admin := env.CreateAdmin("admin@test.com")
	fx := env.CreateFixture(admin)

	resp := env.AuthPATCH(fmt.Sprintf("/admin/contests/%s/status", fx.ContestID),
		map[string]string{"status": "COMPLETED"}, admin)
	testutil.AssertStatus(t, resp, http.StatusBadRequest)
	testutil.AssertErrorCode(t, resp, "INVALID_STATUS_TRANSITION")
	assert.Equal(t, "PENDING", testutil.Status(t, env, "contests", fx.ContestID))
}

func TestContestTransition_TerminalIsFinal(t *testing.T) {
	env := testutil.NewTestEnv(t)
	admin := env.CreateAdmin("admin@test.com")
	fx := env.CreateFixture(admin)
	env.SetStatus("contests", fx.ContestID, "CANCELLED", admin)

	resp := env.AuthPATCH(fmt.Sprintf("/admin/contests/%s/status", fx.ContestID),
		map[string]string{"status": "OPEN"}, admin)
	testutil.AssertStatus(t, resp, http.StatusBadRequest)
	testutil.AssertErrorCode(t, resp, "INVALID_STATUS_TRANSITION")
}

func TestMatchCompleted_CascadesToEveryContest(t *testing.T) {
	env := testutil.NewTestEnv(t)
	admin := env.CreateAdmin("admin@test.com")
	fx := env.CreateFixture(admin)

	open := env.CreateContest(fx.MatchID, "0.1", admin)
	closed := env.CreateContest(fx.MatchID, "0.1", admin)
	env.SetStatus("contests", open, "OPEN", admin)
	env.SetStatus("contests", closed, "OPEN", admin)
	env.SetStatus("contests", closed, "CLOSED", admin)

	env.SetStatus("matches", fx.MatchID, "COMPLETED", admin)

	assert.Equal(t, "COMPLETED", testutil.Status(t, env, "contests", open))
	assert.Equal(t, "COMPLETED", testutil.Status(t, env, "contests", closed))
	// PENDING cannot complete, so it is cancelled.
	assert.Equal(t, "CANCELLED", testutil.Status(t, env, "contests", fx.ContestID))
	assert.Equal(t, 1, testutil.CountOutboxEvents(t, env, fx.MatchID, "status_changed"))
}

func TestMatchCancelled_CancelsContests(t *testing.T) {
	env := testutil.NewTestEnv(t)
	admin := env.CreateAdmin("admin@test.com")
	fx := env.CreateFixture(admin)
	env.SetStatus("contests", fx.ContestID, "OPEN", admin)

	env.SetStatus("matches", fx.MatchID, "CANCELLED", admin)

	assert.Equal(t, "CANCELLED", testutil.Status(t, env, "contests", fx.ContestID))
}

func TestEventCompleted_CascadesThroughMatches(t *testing.T) {
	env := testutil.NewTestEnv(t)
	admin := env.CreateAdmin("admin@test.com")
	fx := env.CreateFixture(admin)
	env.SetStatus("contests", fx.ContestID, "OPEN", admin)

	env.SetStatus("events", fx.EventID, "OPEN", admin)
	env.SetStatus("events", fx.EventID, "LIVE", admin)
	env.SetStatus("events", fx.EventID, "COMPLETED", admin)

	assert.Equal(t, "COMPLETED", testutil.Status(t, env, "matches", fx.MatchID))
	assert.Equal(t, "COMPLETED", testutil.Status(t, env, "contests", fx.ContestID))
}

func TestEventCancelled_CascadesThroughMatches(t *testing.T) {
	env := testutil.NewTestEnv(t)
	admin := env.CreateAdmin("admin@test.com")
	fx := env.CreateFixture(admin)

	env.SetStatus("events", fx.EventID, "CANCELLED", admin)

	assert.Equal(t, "CANCELLED", testutil.Status(t, env, "matches", fx.MatchID))
	assert.Equal(t, "CANCELLED", testutil.Status(t, env, "contests", fx.ContestID))
}

func TestDeleteMatch(t *testing.T) {
	env := testutil.NewTestEnv(t)
	admin := env.CreateAdmin("admin@test.com")
	fx := env.CreateFixture(admin)

	resp := env.AuthDELETE(fmt.Sprintf("/admin/matches/%s", fx.MatchID), admin)
	testutil.AssertStatus(t, resp, http.StatusConflict)
	resp.Body.Close()

	env.SetStatus("matches", fx.MatchID, "COMPLETED", admin)
	resp = env.AuthDELETE(fmt.Sprintf("/admin/matches/%s", fx.MatchID), admin)
	testutil.AssertStatus(t, resp, http.StatusConflict)
	resp.Body.Close()
}

func TestSweep_CompletesOpenMatches(t *testing.T) {
	env := testutil.NewTestEnv(t)
	admin := env.CreateAdmin("admin@test.com")
	fx := env.CreateFixture(admin)
	env.SetStatus("contests", fx.ContestID, "OPEN", admin)

	resp := env.POST("/admin/sweep/run", nil, admin)
	testutil.AssertStatus(t, resp, http.StatusOK)

	var report struct {
		Completed []string `json:"completed"`
		Failed    []struct {
			MatchID string `json:"match_id"`
		} `json:"failed"`
	}
	testutil.DecodeJSON(t, resp, &report)
	assert.Equal(t, []string{fx.MatchID.String()}, report.Completed)
	assert.Empty(t, report.Failed)

	assert.Equal(t, "COMPLETED", testutil.Status(t, env, "matches", fx.MatchID))
	assert.Equal(t, "COMPLETED", testutil.Status(t, env, "contests", fx.ContestID))
}
