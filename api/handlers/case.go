package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/linesmerrill/police-case-api/api"
	"github.com/linesmerrill/police-case-api/models"
	"github.com/linesmerrill/police-case-api/workflow"
)

// Case exposes the case lifecycle
type Case struct {
	Service *workflow.CaseService
}

// CreateCaseHandler opens a case directly
func (c Case) CreateCaseHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	var in workflow.CreateCaseInput
	if !decodeJSON(w, r, &in) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	cs, err := c.Service.Create(ctx, actor, in)
	respond(w, r, http.StatusCreated, cs, err)
}

// CreateFromComplaintHandler opens a case from a citizen complaint
func (c Case) CreateFromComplaintHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	var in workflow.FromComplaintInput
	if !decodeJSON(w, r, &in) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	cs, err := c.Service.CreateFromComplaint(ctx, actor, in)
	respond(w, r, http.StatusCreated, cs, err)
}

// CreateFromCrimeSceneHandler opens a case from an officer's crime-scene report
func (c Case) CreateFromCrimeSceneHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	var in workflow.FromCrimeSceneInput
	if !decodeJSON(w, r, &in) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	cs, err := c.Service.CreateFromCrimeScene(ctx, actor, in)
	respond(w, r, http.StatusCreated, cs, err)
}

// CasesHandler lists cases, optionally filtered by ?status=
func (c Case) CasesHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	status := models.CaseStatus(strings.ToUpper(r.URL.Query().Get("status")))
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	cases, err := c.Service.List(ctx, actor, status, queryInt(r, "page", 1), queryInt(r, "limit", 20))
	if cases == nil {
		cases = []models.Case{}
	}
	respond(w, r, http.StatusOK, cases, err)
}

// CaseByIDHandler returns one case
func (c Case) CaseByIDHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	cs, err := c.Service.Get(ctx, actor, mux.Vars(r)["id"])
	respond(w, r, http.StatusOK, cs, err)
}

// UpdateCaseHandler patches the editable case fields
func (c Case) UpdateCaseHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	var in workflow.UpdateCaseInput
	if !decodeJSON(w, r, &in) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	cs, err := c.Service.Update(ctx, actor, mux.Vars(r)["id"], in)
	respond(w, r, http.StatusOK, cs, err)
}

// DeleteCaseHandler removes a case and its records
func (c Case) DeleteCaseHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := c.Service.Delete(ctx, actor, mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ComplaintHandler attaches a complaint to an existing case
func (c Case) ComplaintHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	var in workflow.ComplaintInput
	if !decodeJSON(w, r, &in) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	cs, err := c.Service.CreateComplaint(ctx, actor, mux.Vars(r)["id"], in)
	respond(w, r, http.StatusCreated, cs, err)
}

// ComplaintStrikeHandler sends a complaint back to the complainant
func (c Case) ComplaintStrikeHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	var in workflow.StrikeInput
	if !decodeJSON(w, r, &in) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	cs, err := c.Service.ComplaintStrike(ctx, actor, mux.Vars(r)["id"], in)
	respond(w, r, http.StatusOK, cs, err)
}

// ComplaintResubmitHandler resubmits a struck complaint
func (c Case) ComplaintResubmitHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	var in workflow.ComplaintInput
	if !decodeJSON(w, r, &in) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	cs, err := c.Service.ComplaintResubmit(ctx, actor, mux.Vars(r)["id"], in)
	respond(w, r, http.StatusOK, cs, err)
}

// CreateCrimeSceneHandler files a crime-scene report on a case
func (c Case) CreateCrimeSceneHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	var in workflow.CrimeSceneInput
	if !decodeJSON(w, r, &in) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	cs, err := c.Service.CreateCrimeScene(ctx, actor, mux.Vars(r)["id"], in)
	respond(w, r, http.StatusCreated, cs, err)
}

// ApproveCrimeSceneHandler approves a pending crime-scene report
func (c Case) ApproveCrimeSceneHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	cs, err := c.Service.ApproveCrimeScene(ctx, actor, mux.Vars(r)["id"])
	respond(w, r, http.StatusOK, cs, err)
}

// DossierHandler returns the case with everything filed against it
func (c Case) DossierHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	d, err := c.Service.Dossier(ctx, actor, mux.Vars(r)["id"])
	respond(w, r, http.StatusOK, d, err)
}
