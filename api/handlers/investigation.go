package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/linesmerrill/police-case-api/api"
	"github.com/linesmerrill/police-case-api/models"
	"github.com/linesmerrill/police-case-api/workflow"
)

// SolveSubmitHandler submits the detective's suspects for review
func (c Case) SolveSubmitHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	var in workflow.SolveSubmitInput
	if !decodeJSON(w, r, &in) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	sr, err := c.Service.SolveSubmit(ctx, actor, mux.Vars(r)["id"], in)
	respond(w, r, http.StatusCreated, sr, err)
}

// SolveReviewHandler records the sergeant's review of the pending solve request
func (c Case) SolveReviewHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	var in workflow.ReviewInput
	if !decodeJSON(w, r, &in) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	sr, err := c.Service.SolveReview(ctx, actor, mux.Vars(r)["id"], in)
	respond(w, r, http.StatusOK, sr, err)
}

// DetectiveScoreHandler records the detective's interrogation score
func (c Case) DetectiveScoreHandler(w http.ResponseWriter, r *http.Request) {
	c.score(w, r, models.DetectiveScore)
}

// SergeantScoreHandler records the sergeant's interrogation score
func (c Case) SergeantScoreHandler(w http.ResponseWriter, r *http.Request) {
	c.score(w, r, models.SergeantScore)
}

func (c Case) score(w http.ResponseWriter, r *http.Request, field models.ScoreField) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	var in workflow.ScoreInput
	if !decodeJSON(w, r, &in) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	vars := mux.Vars(r)
	it, err := c.Service.InterrogationScore(ctx, actor, vars["id"], vars["suspect_id"], field, in)
	respond(w, r, http.StatusOK, it, err)
}

// CaptainDecisionHandler records the captain's disposition
func (c Case) CaptainDecisionHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	var in workflow.CaptainDecisionInput
	if !decodeJSON(w, r, &in) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	cs, err := c.Service.CaptainDecide(ctx, actor, mux.Vars(r)["id"], in)
	respond(w, r, http.StatusOK, cs, err)
}

// ChiefApproveHandler records the chief's sign-off on a critical case
func (c Case) ChiefApproveHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	var in workflow.ChiefApprovalInput
	if !decodeJSON(w, r, &in) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	cs, err := c.Service.ChiefApprove(ctx, actor, mux.Vars(r)["id"], in)
	respond(w, r, http.StatusOK, cs, err)
}

// TrialVerdictHandler records the judge's verdict and closes the case
func (c Case) TrialVerdictHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	var in workflow.VerdictInput
	if !decodeJSON(w, r, &in) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	cs, err := c.Service.TrialVerdict(ctx, actor, mux.Vars(r)["id"], in)
	respond(w, r, http.StatusOK, cs, err)
}
