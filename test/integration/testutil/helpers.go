//go:build integration

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// TestPassword is used for every account the helpers create.
const TestPassword = "securepass123"

// RegisterUser creates a player via the API and returns the token and user ID.
func (env *TestEnv) RegisterUser(email, username string) (token string, userID uuid.UUID) {
	env.t.Helper()
	resp := env.POST("/auth/register", map[string]string{
		"email":    email,
		"password": TestPassword,
		"username": username,
	}, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		env.t.Fatalf("RegisterUser: expected 201, got %d", resp.StatusCode)
	}

	var result struct {
		Token string `json:"token"`
		User  struct {
			ID uuid.UUID `json:"id"`
		} `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		env.t.Fatalf("RegisterUser: decode: %v", err)
	}
	return result.Token, result.User.ID
}

// CreateAdmin inserts an admin user directly and returns an admin-realm token.
func (env *TestEnv) CreateAdmin(email string) string {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		env.t.Fatalf("CreateAdmin: hash: %v", err)
	}
	_, err = env.Pool.Exec(ctx, `
		INSERT INTO users (id, username, email, password_hash, is_admin)
		VALUES ($1, $2, $3, $4, true)`,
		uuid.New(), "admin_"+uuid.NewString()[:8], email, string(hash))
	if err != nil {
		env.t.Fatalf("CreateAdmin: insert: %v", err)
	}

	resp := env.POST("/auth/admin/login", map[string]string{
		"email":    email,
		"password": TestPassword,
	}, "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		env.t.Fatalf("CreateAdmin: admin login expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		env.t.Fatalf("CreateAdmin: decode: %v", err)
	}
	return result.Token
}

// Fixture is a sport, event, match and contest created through the admin API.
type Fixture struct {
	SportID   uuid.UUID
	EventID   uuid.UUID
	MatchID   uuid.UUID
	ContestID uuid.UUID
}

// createID POSTs body to an admin path and returns the created resource's id.
func (env *TestEnv) createID(path string, body interface{}, adminToken string) uuid.UUID {
	env.t.Helper()
	resp := env.POST(path, body, adminToken)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		env.t.Fatalf("POST %s: expected 201, got %d", path, resp.StatusCode)
	}
	var created struct {
		ID uuid.UUID `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		env.t.Fatalf("POST %s: decode: %v", path, err)
	}
	return created.ID
}

// CreateFixture builds sport → teams → event → match → one PENDING contest.
func (env *TestEnv) CreateFixture(adminToken string) Fixture {
	env.t.Helper()
	suffix := uuid.NewString()[:6]

	sportID := env.createID("/admin/sports", map[string]string{"name": "Football " + suffix}, adminToken)
	home := env.createID("/admin/teams", map[string]interface{}{"sport_id": sportID, "name": "Home " + suffix}, adminToken)
	away := env.createID("/admin/teams", map[string]interface{}{"sport_id": sportID, "name": "Away " + suffix}, adminToken)

	start := time.Now().Add(24 * time.Hour).UTC()
	eventID := env.createID("/admin/events", map[string]interface{}{
		"sport_id": sportID, "name": "Cup " + suffix, "start_time": start,
	}, adminToken)
	matchID := env.createID("/admin/matches", map[string]interface{}{
		"event_id": eventID, "home_team_id": home, "away_team_id": away, "start_time": start,
	}, adminToken)

	return Fixture{
		SportID:   sportID,
		EventID:   eventID,
		MatchID:   matchID,
		ContestID: env.CreateContest(matchID, "0.25", adminToken),
	}
}

// CreateContest adds a PENDING contest to a match.
func (env *TestEnv) CreateContest(matchID uuid.UUID, entryFee, adminToken string) uuid.UUID {
	env.t.Helper()
	return env.createID("/admin/contests", map[string]interface{}{
		"match_id": matchID, "name": "Contest " + uuid.NewString()[:6],
		"entry_fee": entryFee, "prize_pool": "10",
	}, adminToken)
}

// CreateQuestion adds a question to a contest.
func (env *TestEnv) CreateQuestion(contestID uuid.UUID, text, adminToken string) uuid.UUID {
	env.t.Helper()
	return env.createID("/admin/questions", map[string]interface{}{
		"contest_id": contestID, "text": text,
	}, adminToken)
}

// SetStatus PATCHes /admin/{kind}/{id}/status and fails the test on non-200.
func (env *TestEnv) SetStatus(kind string, id uuid.UUID, status, adminToken string) {
	env.t.Helper()
	path := fmt.Sprintf("/admin/%s/%s/status", kind, id)
	resp := env.AuthPATCH(path, map[string]string{"status": status}, adminToken)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		env.t.Fatalf("PATCH %s -> %s: expected 200, got %d", path, status, resp.StatusCode)
	}
}

// GET performs an unauthenticated GET request.
func (env *TestEnv) GET(path string) *http.Response {
	env.t.Helper()
	resp, err := http.Get(env.Server.URL + path)
	if err != nil {
		env.t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

// do sends a JSON request with an optional bearer token.
func (env *TestEnv) do(method, path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			env.t.Fatalf("%s %s: encode: %v", method, path, err)
		}
	}
	req, err := http.NewRequest(method, env.Server.URL+path, &buf)
	if err != nil {
		env.t.Fatalf("%s %s: new request: %v", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

// POST performs a POST request with optional auth token.
func (env *TestEnv) POST(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.do(http.MethodPost, path, body, token)
}

// AuthGET performs an authenticated GET request.
func (env *TestEnv) AuthGET(path, token string) *http.Response {
	env.t.Helper()
	return env.do(http.MethodGet, path, nil, token)
}

// AuthPATCH performs an authenticated PATCH request.
func (env *TestEnv) AuthPATCH(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.do(http.MethodPatch, path, body, token)
}

// AuthPUT performs an authenticated PUT request.
func (env *TestEnv) AuthPUT(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.do(http.MethodPut, path, body, token)
}

// AuthDELETE performs an authenticated DELETE request.
func (env *TestEnv) AuthDELETE(path, token string) *http.Response {
	env.t.Helper()
	return env.do(http.MethodDelete, path, nil, token)
}
