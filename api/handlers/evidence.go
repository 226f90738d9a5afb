package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/linesmerrill/police-case-api/api"
	"github.com/linesmerrill/police-case-api/models"
	"github.com/linesmerrill/police-case-api/workflow"
)

// Evidence exposes the evidence recorded on cases
type Evidence struct {
	Service *workflow.EvidenceService
}

// EvidenceHandler lists evidence, filtered by the case_id (or case) query parameter
func (e Evidence) EvidenceHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	caseID := r.URL.Query().Get("case_id")
	if caseID == "" {
		caseID = r.URL.Query().Get("case")
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	list, err := e.Service.List(ctx, actor, caseID)
	if list == nil {
		list = []models.Evidence{}
	}
	respond(w, r, http.StatusOK, list, err)
}

// CreateEvidenceHandler records evidence on a case
func (e Evidence) CreateEvidenceHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	var in workflow.EvidenceInput
	if !decodeJSON(w, r, &in) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	ev, err := e.Service.Create(ctx, actor, in)
	respond(w, r, http.StatusCreated, ev, err)
}

// EvidenceByIDHandler returns one item of evidence
func (e Evidence) EvidenceByIDHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	ev, err := e.Service.Get(ctx, actor, mux.Vars(r)["id"])
	respond(w, r, http.StatusOK, ev, err)
}

// DeleteEvidenceHandler removes an item of evidence
func (e Evidence) DeleteEvidenceHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := e.Service.Delete(ctx, actor, mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
