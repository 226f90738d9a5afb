package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/linesmerrill/police-case-api/api"
	"github.com/linesmerrill/police-case-api/models"
	"github.com/linesmerrill/police-case-api/workflow"
)

// Intake exposes the complaint intake queue
type Intake struct {
	Service *workflow.IntakeService
}

// CreateComplaintHandler files a new intake complaint
func (i Intake) CreateComplaintHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	var in workflow.IntakeInput
	if !decodeJSON(w, r, &in) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	ic, err := i.Service.Create(ctx, actor, in)
	respond(w, r, http.StatusCreated, ic, err)
}

// ComplaintsHandler lists the actor's own complaints
func (i Intake) ComplaintsHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	list, err := i.Service.ListMine(ctx, actor)
	respondList(w, r, list, err)
}

// ComplaintByIDHandler returns one complaint
func (i Intake) ComplaintByIDHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	ic, err := i.Service.Get(ctx, actor, mux.Vars(r)["id"])
	respond(w, r, http.StatusOK, ic, err)
}

// CadetReviewHandler records the cadet's review
func (i Intake) CadetReviewHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	var in workflow.IntakeReviewInput
	if !decodeJSON(w, r, &in) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	ic, err := i.Service.CadetReview(ctx, actor, mux.Vars(r)["id"], in)
	respond(w, r, http.StatusOK, ic, err)
}

// ResubmitHandler sends a fixed complaint back to the cadets
func (i Intake) ResubmitHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	var in workflow.IntakeInput
	if !decodeJSON(w, r, &in) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	ic, err := i.Service.Resubmit(ctx, actor, mux.Vars(r)["id"], in)
	respond(w, r, http.StatusOK, ic, err)
}

// OfficerReviewHandler records the officer's review, opening a case on approval
func (i Intake) OfficerReviewHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	var in workflow.IntakeReviewInput
	if !decodeJSON(w, r, &in) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	ic, err := i.Service.OfficerReview(ctx, actor, mux.Vars(r)["id"], in)
	respond(w, r, http.StatusOK, ic, err)
}

// CadetInboxHandler lists complaints waiting for a cadet
func (i Intake) CadetInboxHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	list, err := i.Service.CadetInbox(ctx, actor)
	respondList(w, r, list, err)
}

// OfficerInboxHandler lists complaints waiting for an officer
func (i Intake) OfficerInboxHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	list, err := i.Service.OfficerInbox(ctx, actor)
	respondList(w, r, list, err)
}

func respondList(w http.ResponseWriter, r *http.Request, list []models.IntakeComplaint, err error) {
	if list == nil {
		list = []models.IntakeComplaint{}
	}
	respond(w, r, http.StatusOK, list, err)
}
