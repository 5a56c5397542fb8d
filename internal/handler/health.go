package handler

import (
	"context"
	"net/http"
	"time"
)

// HealthCheck probes one dependency.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type healthBody struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}

// HealthHandler reports 200 when every check passes and 503 otherwise.
// Check errors are not echoed to clients.
func HealthHandler(checks ...HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		body := healthBody{Status: "healthy", Components: make(map[string]string, len(checks))}
		status := http.StatusOK
		for _, c := range checks {
			if err := c.Check(ctx); err != nil {
				body.Components[c.Name] = "down"
				body.Status = "unhealthy"
				status = http.StatusServiceUnavailable
				continue
			}
			body.Components[c.Name] = "up"
		}
		RespondJSON(w, status, body)
	}
}
