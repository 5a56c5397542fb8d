package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fanpicks/platform/internal/auth"
	"github.com/fanpicks/platform/internal/domain"
	"github.com/fanpicks/platform/internal/guard"
	"github.com/fanpicks/platform/internal/service"
	"github.com/fanpicks/platform/internal/sweep"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- RespondJSON Tests ---

func TestRespondJSON(t *testing.T) {
	t.Run("200 with body", func(t *testing.T) {
		w := httptest.NewRecorder()
		RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		assert.Equal(t, http.StatusOK, w.Code)
		var body map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "ok", body["status"])
	})

	t.Run("204 with nil body", func(t *testing.T) {
		w := httptest.NewRecorder()
		RespondJSON(w, http.StatusNoContent, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})
}

// --- RespondError Tests ---

func TestRespondError(t *testing.T) {
	t.Run("AppError maps to correct status", func(t *testing.T) {
		tests := []struct {
			err        *domain.AppError
			wantStatus int
			wantCode   string
		}{
			{domain.ErrNotFound("contest", "123"), 404, "NOT_FOUND"},
			{domain.ErrValidation("bad input"), 400, "VALIDATION_ERROR"},
			{domain.ErrUnauthorized("no token"), 401, "UNAUTHORIZED"},
			{domain.ErrForbidden("not allowed"), 403, "FORBIDDEN"},
			{domain.ErrConflict("duplicate"), 409, "CONFLICT"},
			{domain.ErrInvalidTransition("match", "COMPLETED", "OPEN", nil), 400, "INVALID_STATUS_TRANSITION"},
			{domain.ErrPredictionLimit(9), 409, "PREDICTION_LIMIT_REACHED"},
			{domain.ErrContestNotOpen(domain.ContestClosed), 409, "CONTEST_NOT_OPEN"},
			{domain.ErrQuestionAlreadyPredicted(), 409, "QUESTION_ALREADY_PREDICTED"},
			{domain.ErrAlreadyJoined(), 409, "ALREADY_JOINED"},
			{domain.ErrDuplicateTransaction("abc"), 409, "DUPLICATE_TRANSACTION"},
			{domain.ErrRateLimited("slow down"), 429, "RATE_LIMITED"},
			{domain.ErrUnavailable("down"), 503, "SERVICE_UNAVAILABLE"},
			{domain.ErrInternal("oops", nil), 500, "INTERNAL_ERROR"},
		}

		for _, tt := range tests {
			t.Run(tt.wantCode, func(t *testing.T) {
				w := httptest.NewRecorder()
				RespondError(w, tt.err)
				assert.Equal(t, tt.wantStatus, w.Code)

				var body map[string]string
				require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
				assert.Equal(t, tt.wantCode, body["code"])
			})
		}
	})

	t.Run("wrapped AppError keeps its status", func(t *testing.T) {
		w := httptest.NewRecorder()
		RespondError(w, fmt.Errorf("join: %w", domain.ErrAlreadyJoined()))
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("internal cause is not leaked", func(t *testing.T) {
		w := httptest.NewRecorder()
		RespondError(w, domain.ErrInternal("load contest", errors.New("pq: password authentication failed")))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "password")
	})

	t.Run("generic error returns 500", func(t *testing.T) {
		w := httptest.NewRecorder()
		RespondError(w, assert.AnError)
		assert.Equal(t, http.StatusInternalServerError, w.Code)

		var body map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "INTERNAL_ERROR", body["code"])
		assert.Equal(t, "internal server error", body["message"])
	})
}

// --- DecodeJSON Tests ---

func TestDecodeJSON(t *testing.T) {
	t.Run("valid JSON body", func(t *testing.T) {
		body := bytes.NewBufferString(`{"name":"test","value":42}`)
		r := httptest.NewRequest(http.MethodPost, "/", body)
		var dst struct {
			Name  string `json:"name"`
			Value int    `json:"value"`
		}
		require.NoError(t, DecodeJSON(r, &dst))
		assert.Equal(t, "test", dst.Name)
		assert.Equal(t, 42, dst.Value)
	})

	t.Run("invalid JSON returns error", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{invalid`))
		var dst map[string]interface{}
		require.Error(t, DecodeJSON(r, &dst))
	})

	t.Run("body exceeding 1MiB returns error", func(t *testing.T) {
		bigBody := `"` + strings.Repeat("x", 1<<20+1) + `"`
		r := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(bigBody))
		var dst string
		require.Error(t, DecodeJSON(r, &dst))
	})
}

// --- Validation Tests ---

func TestFormatValidationError(t *testing.T) {
	err := GetValidator().ValidateStruct(&service.RegisterInput{Email: "nope", Password: "short"})
	require.Error(t, err)

	fields := FormatValidationError(err)
	assert.Equal(t, "Invalid email format", fields["email"])
	assert.Equal(t, "Must be at least 8", fields["password"])
	assert.Equal(t, "This field is required", fields["username"])
}

func TestFormatValidationError_NonValidatorError(t *testing.T) {
	fields := FormatValidationError(errors.New("boom"))
	assert.Equal(t, "Invalid request format", fields["error"])
	assert.Nil(t, FormatValidationError(nil))
}

func TestValidator_MatchTeamsMustDiffer(t *testing.T) {
	team := uuid.New()
	err := GetValidator().ValidateStruct(&service.CreateMatchInput{
		EventID:    uuid.New(),
		HomeTeamID: team,
		AwayTeamID: team,
		StartTime:  time.Now(),
	})
	require.Error(t, err)
	assert.Contains(t, FormatValidationError(err), "away_team_id")
}

func TestDecodeAndValidate_WritesFieldErrors(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"email":"a@b.co"}`))

	var input service.LoginInput
	assert.False(t, decodeAndValidate(w, r, &input))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Code   string            `json:"code"`
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "VALIDATION_ERROR", body.Code)
	assert.Contains(t, body.Fields, "password")
}

// --- ClientIP Tests ---

func TestClientIP(t *testing.T) {
	t.Run("X-Forwarded-For multiple IPs takes first", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("X-Forwarded-For", "1.2.3.4, 5.6.7.8")
		assert.Equal(t, "1.2.3.4", ClientIP(r))
	})

	t.Run("X-Forwarded-For with spaces", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("X-Forwarded-For", "  1.2.3.4  ")
		assert.Equal(t, "1.2.3.4", ClientIP(r))
	})

	t.Run("no X-Forwarded-For uses RemoteAddr", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = "10.0.0.1:54321"
		assert.Equal(t, "10.0.0.1", ClientIP(r))
	})

	t.Run("RemoteAddr without port", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = "10.0.0.1"
		assert.Equal(t, "10.0.0.1", ClientIP(r))
	})
}

// --- Middleware Tests ---

func TestRequestID(t *testing.T) {
	t.Run("generates ID when none provided", func(t *testing.T) {
		handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.NotEmpty(t, GetRequestID(r.Context()))
			w.WriteHeader(http.StatusOK)
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("uses provided X-Request-ID", func(t *testing.T) {
		handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "my-custom-id", GetRequestID(r.Context()))
		}))

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("X-Request-ID", "my-custom-id")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		assert.Equal(t, "my-custom-id", w.Header().Get("X-Request-ID"))
	})

	t.Run("replaces malformed X-Request-ID", func(t *testing.T) {
		handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		for _, bad := range []string{"has space", "new\nline", strings.Repeat("a", 65)} {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.Header.Set("X-Request-ID", bad)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)

			got := w.Header().Get("X-Request-ID")
			assert.NotEqual(t, bad, got)
			_, err := uuid.Parse(got)
			assert.NoError(t, err)
		}
	})
}

func TestGetRequestID_EmptyContext(t *testing.T) {
	assert.Empty(t, GetRequestID(context.Background()))
}

func TestJSONContentType(t *testing.T) {
	handler := JSONContentType(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}

func TestCORSWithOrigins(t *testing.T) {
	t.Run("sets CORS headers", func(t *testing.T) {
		handler := CORSWithOrigins("*")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
	})

	t.Run("preflight from an allowed origin", func(t *testing.T) {
		handler := CORSWithOrigins("https://app.fanpicks.io, https://admin.fanpicks.io")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		r := httptest.NewRequest(http.MethodOptions, "/", nil)
		r.Header.Set("Origin", "https://admin.fanpicks.io")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "https://admin.fanpicks.io", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "Origin", w.Header().Get("Vary"))
	})

	t.Run("disallowed origin gets no headers", func(t *testing.T) {
		called := false
		handler := CORSWithOrigins("https://app.fanpicks.io")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Origin", "https://evil.example")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		assert.True(t, called)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Methods"))
	})
}

func TestHealthHandler(t *testing.T) {
	ok := HealthCheck{Name: "postgres", Check: func(context.Context) error { return nil }}
	down := HealthCheck{Name: "redis", Check: func(context.Context) error { return errors.New("dial tcp: refused") }}

	t.Run("all up", func(t *testing.T) {
		w := httptest.NewRecorder()
		HealthHandler(ok)(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var body healthBody
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "healthy", body.Status)
		assert.Equal(t, map[string]string{"postgres": "up"}, body.Components)
	})

	t.Run("one down", func(t *testing.T) {
		w := httptest.NewRecorder()
		HealthHandler(ok, down)(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.NotContains(t, w.Body.String(), "refused")
		var body healthBody
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "unhealthy", body.Status)
		assert.Equal(t, "down", body.Components["redis"])
	})
}

func TestRecovery(t *testing.T) {
	handler := Recovery(noopLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("something went wrong")
	}))

	w := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}

func TestResponseWriter_CapturesStatus(t *testing.T) {
	w := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: w, status: 200}

	rw.WriteHeader(http.StatusNotFound)
	assert.Equal(t, 404, rw.status)
	assert.Equal(t, 404, w.Code)
}

// --- Handler Tests ---

func withUser(r *http.Request, id uuid.UUID) *http.Request {
	claims := &auth.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: id.String()}, Realm: auth.RealmPlayer}
	return r.WithContext(auth.WithClaims(r.Context(), claims))
}

func TestLifecycleHandler_InvalidIDs(t *testing.T) {
	h := NewLifecycleHandler(nil, nil, nil)
	r := chi.NewRouter()
	r.Get("/events/{id}", h.GetEvent)
	r.Get("/matches/{id}", h.GetMatch)
	r.Get("/contests/{id}", h.GetContest)
	r.Delete("/admin/matches/{id}", h.DeleteMatch)

	for _, path := range []string{"/events/x", "/matches/x", "/contests/x"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/admin/matches/nope", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLifecycleHandler_InvalidStatus(t *testing.T) {
	h := NewLifecycleHandler(nil, nil, nil)
	r := chi.NewRouter()
	r.Patch("/admin/matches/{id}/status", h.UpdateMatchStatus)
	r.Get("/contests", h.ListContests)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/admin/matches/"+uuid.NewString()+"/status",
		bytes.NewBufferString(`{"status":"FINISHED"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid status")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/contests?status=bogus", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPredictionHandler_RequiresIdentity(t *testing.T) {
	h := NewPredictionHandler(nil, nil)

	w := httptest.NewRecorder()
	h.Submit(w, httptest.NewRequest(http.MethodPost, "/predictions", bytes.NewBufferString(`{}`)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPredictionHandler_RateLimited(t *testing.T) {
	h := NewPredictionHandler(nil, guard.NewRateLimiter(1, time.Minute))
	user := uuid.New()

	// The first request consumes the only token and fails validation.
	w := httptest.NewRecorder()
	h.Submit(w, withUser(httptest.NewRequest(http.MethodPost, "/predictions", bytes.NewBufferString(`{}`)), user))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	h.Submit(w, withUser(httptest.NewRequest(http.MethodPost, "/predictions", bytes.NewBufferString(`{}`)), user))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// Another user has their own budget.
	w = httptest.NewRecorder()
	h.Submit(w, withUser(httptest.NewRequest(http.MethodPost, "/predictions", bytes.NewBufferString(`{}`)), uuid.New()))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestContestHandler_SetOutcomeRequiresValue(t *testing.T) {
	h := NewContestHandler(nil, nil)
	r := chi.NewRouter()
	r.Put("/admin/questions/{id}/outcome", h.SetOutcome)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/admin/questions/"+uuid.NewString()+"/outcome",
		bytes.NewBufferString(`{}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type fakeSweeper struct {
	report *sweep.Report
	err    error
}

func (f *fakeSweeper) RunOnce(context.Context) (*sweep.Report, error) {
	return f.report, f.err
}

func TestAdminHandler_RunSweep(t *testing.T) {
	matchID := uuid.New()
	h := NewAdminHandler(nil, &fakeSweeper{report: &sweep.Report{
		Completed: []uuid.UUID{matchID},
		Failed:    []sweep.MatchFailure{},
	}})

	w := httptest.NewRecorder()
	h.RunSweep(w, httptest.NewRequest(http.MethodPost, "/admin/sweep/run", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), matchID.String())

	h = NewAdminHandler(nil, &fakeSweeper{err: errors.New("redis down")})
	w = httptest.NewRecorder()
	h.RunSweep(w, httptest.NewRequest(http.MethodPost, "/admin/sweep/run", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "redis")
}

func TestAdminHandler_UploadDisabled(t *testing.T) {
	h := NewAdminHandler(service.NewMediaService(nil, nil, noopLogger()), nil)
	r := chi.NewRouter()
	r.Post("/admin/contests/{id}/image", h.UploadContestImage)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/contests/"+uuid.NewString()+"/image", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

// helper

func noopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
