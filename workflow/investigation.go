package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/linesmerrill/police-case-api/databases"
	"github.com/linesmerrill/police-case-api/models"
)

// SolveSubmitInput is a detective's claim that the named suspects solve the case
type SolveSubmitInput struct {
	SuspectIDs []string `json:"suspect_ids"`
	Note       string   `json:"note"`
}

// ReviewInput carries an approve or reject decision
type ReviewInput struct {
	Decision string `json:"decision"`
	Comment  string `json:"comment"`
}

// ScoreInput is one interrogation score
type ScoreInput struct {
	Score int `json:"score"`
}

// CaptainDecisionInput is the captain's disposition of the case
type CaptainDecisionInput struct {
	Decision models.CaptainDecisionKind `json:"decision"`
	Comment  string                     `json:"comment"`
}

// ChiefApprovalInput is the chief's sign-off on a critical case
type ChiefApprovalInput struct {
	Approve *bool  `json:"approve"`
	Comment string `json:"comment"`
}

// VerdictInput is the judge's verdict and punishment
type VerdictInput struct {
	Verdict               models.Verdict `json:"verdict"`
	PunishmentTitle       string         `json:"punishment_title"`
	PunishmentDescription string         `json:"punishment_description"`
}

const (
	decisionApprove = "approve"
	decisionReject  = "reject"
)

func approveOrReject(decision string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(decision)) {
	case decisionApprove:
		return true, nil
	case decisionReject:
		return false, nil
	}
	return false, validationError("decision must be approve or reject.").WithDetail("decision", decision)
}

// dedupe drops blanks and repeats, keeping first-seen order
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func solvePending() *Error {
	return conflict("A solve request is already pending for this case.")
}

// SolveSubmit files a solve request. Only one may be pending per case.
func (s *CaseService) SolveSubmit(ctx context.Context, actor *models.Actor, caseID string, in SolveSubmitInput) (*models.SolveRequest, error) {
	sr, err := s.solveSubmit(ctx, actor, caseID, in)
	return sr, s.record(caseWorkflow, "solve_submit", err)
}

func (s *CaseService) solveSubmit(ctx context.Context, actor *models.Actor, caseID string, in SolveSubmitInput) (*models.SolveRequest, error) {
	if err := requireRole(actor, models.RoleDetective, models.RoleAdmin); err != nil {
		return nil, err
	}
	cs, err := s.load(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if cs.IsTerminal() {
		return nil, conflict("Case is %s.", strings.ToLower(string(cs.Details.Status)))
	}
	suspects := dedupe(in.SuspectIDs)
	if len(suspects) == 0 {
		return nil, validationError("At least one suspect is required.").WithDetail("suspect_ids", "This field is required.")
	}
	hex := cs.ID.Hex()
	pending, err := s.stores.SolveRequests.ExistsWithStatus(ctx, hex, models.SolveSubmitted)
	if err != nil {
		return nil, fromStore(err, "Solve request")
	}
	if pending {
		return nil, solvePending()
	}

	sr := &models.SolveRequest{Details: models.SolveRequestDetails{
		CaseID:      hex,
		SuspectIDs:  suspects,
		Note:        strings.TrimSpace(in.Note),
		Status:      models.SolveSubmitted,
		SubmittedBy: actor.ID,
		SubmittedAt: s.now(),
	}}
	if err := s.stores.SolveRequests.Insert(ctx, sr); err != nil {
		// lost the race to a concurrent submission
		if errors.Is(err, databases.ErrDuplicate) {
			return nil, solvePending()
		}
		return nil, fromStore(err, "Solve request")
	}
	return sr, nil
}

// SolveReview approves or rejects the latest pending solve request
func (s *CaseService) SolveReview(ctx context.Context, actor *models.Actor, caseID string, in ReviewInput) (*models.SolveRequest, error) {
	sr, err := s.solveReview(ctx, actor, caseID, in)
	return sr, s.record(caseWorkflow, "solve_review", err)
}

func (s *CaseService) solveReview(ctx context.Context, actor *models.Actor, caseID string, in ReviewInput) (*models.SolveRequest, error) {
	if err := requireRole(actor, models.RoleSergeant, models.RoleAdmin); err != nil {
		return nil, err
	}
	approve, err := approveOrReject(in.Decision)
	if err != nil {
		return nil, err
	}
	cs, err := s.load(ctx, caseID)
	if err != nil {
		return nil, err
	}
	sr, err := s.stores.SolveRequests.FindLatestSubmitted(ctx, cs.ID.Hex())
	if err != nil {
		return nil, fromStore(err, "Pending solve request")
	}

	sr.Details.Status = models.SolveRejected
	if approve {
		sr.Details.Status = models.SolveApproved
	}
	sr.Details.ReviewedBy = actor.ID
	sr.Details.ReviewedAt = s.nowPtr()
	sr.Details.ReviewComment = strings.TrimSpace(in.Comment)
	if err := s.stores.SolveRequests.Update(ctx, sr); err != nil {
		return nil, fromStore(err, "Solve request")
	}
	s.notifier.notify(ctx, sr.Details.CaseID, sr.Details.SubmittedBy, models.NotificationSolveReviewed,
		fmt.Sprintf("Your solve request for case %q was %s.", cs.Details.Title, strings.ToLower(string(sr.Details.Status))))
	return sr, nil
}

// scoreRoles maps an interrogation score field to the ranks allowed to write it
var scoreRoles = map[models.ScoreField][]models.Role{
	models.DetectiveScore: {models.RoleDetective, models.RoleAdmin},
	models.SergeantScore:  {models.RoleSergeant, models.RoleAdmin},
}

// InterrogationScore records one rank's score for a suspect. Scoring opens once a
// solve request for the case has been approved.
func (s *CaseService) InterrogationScore(ctx context.Context, actor *models.Actor, caseID, suspectID string, field models.ScoreField, in ScoreInput) (*models.Interrogation, error) {
	it, err := s.interrogationScore(ctx, actor, caseID, suspectID, field, in)
	return it, s.record(caseWorkflow, "interrogation_"+string(field), err)
}

func (s *CaseService) interrogationScore(ctx context.Context, actor *models.Actor, caseID, suspectID string, field models.ScoreField, in ScoreInput) (*models.Interrogation, error) {
	roles, ok := scoreRoles[field]
	if !ok {
		return nil, validationError("Unknown score %q.", field)
	}
	if err := requireRole(actor, roles...); err != nil {
		return nil, err
	}
	if in.Score < models.MinScore || in.Score > models.MaxScore {
		return nil, validationError("score must be between %d and %d.", models.MinScore, models.MaxScore).
			WithDetail("score", in.Score)
	}
	suspectID = strings.TrimSpace(suspectID)
	if suspectID == "" {
		return nil, validationError("suspect_id is required.")
	}
	cs, err := s.load(ctx, caseID)
	if err != nil {
		return nil, err
	}
	hex := cs.ID.Hex()
	approved, err := s.stores.SolveRequests.ExistsWithStatus(ctx, hex, models.SolveApproved)
	if err != nil {
		return nil, fromStore(err, "Solve request")
	}
	if !approved {
		return nil, precondition("Interrogation needs an approved solve request.")
	}
	it, err := s.stores.Interrogations.SetScore(ctx, hex, suspectID, field, in.Score)
	if err != nil {
		return nil, fromStore(err, "Interrogation")
	}
	return it, nil
}

// CaptainDecide records the captain's decision. A new decision wipes any chief
// sign-off given on the previous one.
func (s *CaseService) CaptainDecide(ctx context.Context, actor *models.Actor, caseID string, in CaptainDecisionInput) (*models.Case, error) {
	cs, err := s.captainDecide(ctx, actor, caseID, in)
	return cs, s.record(caseWorkflow, "captain_decision", err)
}

func (s *CaseService) captainDecide(ctx context.Context, actor *models.Actor, caseID string, in CaptainDecisionInput) (*models.Case, error) {
	if err := requireRole(actor, models.RoleCaptain, models.RoleAdmin); err != nil {
		return nil, err
	}
	decision := models.CaptainDecisionKind(strings.ToUpper(strings.TrimSpace(string(in.Decision))))
	if decision != models.DecisionSendToTrial && decision != models.DecisionRelease {
		return nil, validationError("decision must be %s or %s.", models.DecisionSendToTrial, models.DecisionRelease).
			WithDetail("decision", in.Decision)
	}
	cs, err := s.load(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if cs.IsTerminal() {
		return nil, invalidState("Case is %s.", strings.ToLower(string(cs.Details.Status)))
	}

	cs.Details.CaptainDecision = &models.CaptainDecision{
		Decision:      decision,
		Comment:       strings.TrimSpace(in.Comment),
		DecidedBy:     actor.ID,
		DecidedAt:     s.now(),
		ChiefApproval: models.ChiefUnset,
	}
	cs.Details.UpdatedAt = s.now()
	return cs, s.save(ctx, cs, cs.Details.Status)
}

// ChiefApprove signs off, or refuses to, on sending a critical case to trial
func (s *CaseService) ChiefApprove(ctx context.Context, actor *models.Actor, caseID string, in ChiefApprovalInput) (*models.Case, error) {
	cs, err := s.chiefApprove(ctx, actor, caseID, in)
	return cs, s.record(caseWorkflow, "chief_approve", err)
}

func (s *CaseService) chiefApprove(ctx context.Context, actor *models.Actor, caseID string, in ChiefApprovalInput) (*models.Case, error) {
	if err := requireRole(actor, models.RoleChief, models.RoleAdmin); err != nil {
		return nil, err
	}
	if in.Approve == nil {
		return nil, validationError("approve is required.").WithDetail("approve", "This field is required.")
	}
	cs, err := s.load(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if cs.IsTerminal() {
		return nil, invalidState("Case is %s.", strings.ToLower(string(cs.Details.Status)))
	}
	decision := cs.Details.CaptainDecision
	if decision == nil || decision.Decision != models.DecisionSendToTrial {
		return nil, precondition("Chief approval needs a captain decision of %s.", models.DecisionSendToTrial)
	}
	if !cs.IsCritical() {
		return nil, precondition("Chief approval is only needed for critical cases.")
	}

	decision.ChiefApproval = models.ChiefRejected
	if *in.Approve {
		decision.ChiefApproval = models.ChiefApproved
	}
	decision.ChiefBy = actor.ID
	decision.ChiefAt = s.nowPtr()
	decision.ChiefComment = strings.TrimSpace(in.Comment)
	cs.Details.UpdatedAt = s.now()
	return cs, s.save(ctx, cs, cs.Details.Status)
}

// TrialVerdict records the verdict and closes the case. A later verdict
// replaces the earlier one.
func (s *CaseService) TrialVerdict(ctx context.Context, actor *models.Actor, caseID string, in VerdictInput) (*models.Case, error) {
	cs, err := s.trialVerdict(ctx, actor, caseID, in)
	return cs, s.record(caseWorkflow, "trial_verdict", err)
}

func (s *CaseService) trialVerdict(ctx context.Context, actor *models.Actor, caseID string, in VerdictInput) (*models.Case, error) {
	if err := requireRole(actor, models.RoleJudge, models.RoleChief, models.RoleAdmin); err != nil {
		return nil, err
	}
	verdict := models.Verdict(strings.ToUpper(strings.TrimSpace(string(in.Verdict))))
	if verdict != models.VerdictGuilty && verdict != models.VerdictInnocent {
		return nil, validationError("verdict must be %s or %s.", models.VerdictGuilty, models.VerdictInnocent).
			WithDetail("verdict", in.Verdict)
	}
	cs, err := s.load(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if cs.IsTerminal() {
		return nil, invalidState("Case is %s.", strings.ToLower(string(cs.Details.Status)))
	}
	decision := cs.Details.CaptainDecision
	if decision == nil || decision.Decision != models.DecisionSendToTrial {
		return nil, precondition("Trial needs a captain decision of %s.", models.DecisionSendToTrial)
	}
	if cs.IsCritical() && decision.ChiefApproval != models.ChiefApproved {
		return nil, precondition("Critical cases need chief approval before trial.")
	}

	from := cs.Details.Status
	cs.Details.Trial = &models.Trial{
		Verdict:               verdict,
		PunishmentTitle:       strings.TrimSpace(in.PunishmentTitle),
		PunishmentDescription: strings.TrimSpace(in.PunishmentDescription),
		JudgedBy:              actor.ID,
		JudgedAt:              s.now(),
	}
	if from == models.CaseClosed {
		cs.Details.UpdatedAt = s.now()
	} else {
		s.transition(cs, actor, "trial_verdict", models.CaseClosed, string(verdict))
	}
	return cs, s.save(ctx, cs, from)
}
