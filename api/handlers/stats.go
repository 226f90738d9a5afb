package handlers

import (
	"net/http"

	"github.com/linesmerrill/police-case-api/api"
	"github.com/linesmerrill/police-case-api/workflow"
)

// Stats exposes the dashboard counters
type Stats struct {
	Service *workflow.StatsService
}

// StatsHandler returns the case load summary
func (s Stats) StatsHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	stats, err := s.Service.Stats(ctx, actor)
	respond(w, r, http.StatusOK, stats, err)
}
