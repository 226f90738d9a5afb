package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/linesmerrill/police-case-api/api"
	"github.com/linesmerrill/police-case-api/models"
	"github.com/linesmerrill/police-case-api/workflow"
)

// Suspect exposes case suspects and the most wanted list
type Suspect struct {
	Service *workflow.SuspectService
}

// CaseSuspectsHandler lists the suspects of a case with their rank
func (s Suspect) CaseSuspectsHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	list, err := s.Service.CaseSuspects(ctx, actor, mux.Vars(r)["case_id"])
	respondRanked(w, r, list, err)
}

// AddSuspectHandler links a new suspect to a case
func (s Suspect) AddSuspectHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	var in workflow.SuspectInput
	if !decodeJSON(w, r, &in) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	rs, err := s.Service.AddSuspect(ctx, actor, mux.Vars(r)["case_id"], in)
	respond(w, r, http.StatusCreated, rs, err)
}

// UpdateRankHandler changes a suspect's rank or chase state
func (s Suspect) UpdateRankHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	var in workflow.RankInput
	if !decodeJSON(w, r, &in) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	rs, err := s.Service.UpdateSuspectRank(ctx, actor, mux.Vars(r)["id"], in)
	respond(w, r, http.StatusOK, rs, err)
}

// MostWantedHandler lists suspects chased for longer than the most wanted threshold
func (s Suspect) MostWantedHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	list, err := s.Service.MostWanted(ctx, actor)
	respondRanked(w, r, list, err)
}

func respondRanked(w http.ResponseWriter, r *http.Request, list []models.RankedSuspect, err error) {
	if list == nil {
		list = []models.RankedSuspect{}
	}
	respond(w, r, http.StatusOK, list, err)
}
