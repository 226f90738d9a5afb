// Package api holds the HTTP middleware shared by every route: bearer token
// authentication, request metrics, timeouts and rate limiting.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/linesmerrill/police-case-api/models"
)

// HealthHandler reports whether the service can reach its database. A nil
// ping always reports alive.
func HealthHandler(ping func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		resp := models.HealthCheckResponse{Alive: true}
		if ping != nil {
			ctx, cancel := WithQueryTimeout(r.Context())
			defer cancel()
			if err := ping(ctx); err != nil {
				zap.S().Warnw("health check failed", "error", err)
				status = http.StatusServiceUnavailable
				resp.Alive = false
			}
		}
		b, _ := json.Marshal(resp)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write(b)
	}
}
