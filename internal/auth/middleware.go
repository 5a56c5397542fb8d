package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type contextKey string

const claimsKey contextKey = "auth_claims"

var errNoBearer = errors.New("missing bearer token")

// ClaimsFromContext extracts JWT claims from request context.
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsKey).(*Claims)
	return claims
}

// IdentityFromContext returns the canonical caller identity. The subject was
// checked to be a uuid when the token was validated.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	c := ClaimsFromContext(ctx)
	if c == nil {
		return Identity{}, false
	}
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return Identity{}, false
	}
	return Identity{UserID: id, Email: c.Email, WalletAddress: c.WalletAddress, Role: c.Role}, true
}

// WithClaims returns a context carrying claims, as the middleware would set it.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// AuthenticatePlayer admits only player-realm tokens.
func AuthenticatePlayer(jwtMgr *JWTManager) func(http.Handler) http.Handler {
	return authenticateRealm(jwtMgr, RealmPlayer)
}

// AuthenticateAdmin admits only admin-realm tokens.
func AuthenticateAdmin(jwtMgr *JWTManager) func(http.Handler) http.Handler {
	return authenticateRealm(jwtMgr, RealmAdmin)
}

func authenticateRealm(jwtMgr *JWTManager, realm Realm) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r)
			if err != nil {
				writeUnauthorized(w, err.Error())
				return
			}
			claims, err := jwtMgr.ValidateTokenForRealm(token, realm)
			if err != nil {
				// Parse details stay server-side.
				writeUnauthorized(w, "invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// bearerToken returns the token of an "Authorization: Bearer <token>" header.
func bearerToken(r *http.Request) (string, error) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
		return "", errNoBearer
	}
	return strings.TrimSpace(token), nil
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	body, _ := json.Marshal(map[string]string{"code": "UNAUTHORIZED", "message": msg})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write(body)
}
