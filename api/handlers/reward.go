package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/linesmerrill/police-case-api/api"
	"github.com/linesmerrill/police-case-api/workflow"
)

// Reward exposes the reward-tip chain
type Reward struct {
	Service *workflow.RewardService
}

// SubmitTipHandler files a citizen's tip
func (rw Reward) SubmitTipHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	var in workflow.TipInput
	if !decodeJSON(w, r, &in) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	tip, err := rw.Service.Submit(ctx, actor, in)
	respond(w, r, http.StatusCreated, tip, err)
}

// OfficerReviewHandler records the officer's review of a tip
func (rw Reward) OfficerReviewHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	var in workflow.TipReviewInput
	if !decodeJSON(w, r, &in) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	tip, err := rw.Service.OfficerReview(ctx, actor, mux.Vars(r)["id"], in)
	respond(w, r, http.StatusOK, tip, err)
}

// DetectiveApproveHandler approves a tip and issues its reward code
func (rw Reward) DetectiveApproveHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	var in workflow.TipApprovalInput
	if !decodeJSON(w, r, &in) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	tip, err := rw.Service.DetectiveApprove(ctx, actor, mux.Vars(r)["id"], in)
	respond(w, r, http.StatusOK, tip, err)
}

// LookupHandler resolves ?national_id=&code= to the approved tip and its reward
func (rw Reward) LookupHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	res, err := rw.Service.Lookup(ctx, actor, q.Get("national_id"), q.Get("code"))
	respond(w, r, http.StatusOK, res, err)
}
