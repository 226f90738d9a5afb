package workflow

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/linesmerrill/police-case-api/models"
)

const caseWorkflow = "case"

// CaseService drives the case lifecycle and the investigation pipeline
type CaseService struct {
	base
}

// CreateCaseInput is the body of a plain case creation
type CreateCaseInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CrimeLevel  int    `json:"crime_level"`
}

// FromComplaintInput opens a case together with the complaint that prompted it
type FromComplaintInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Details     string `json:"details"`
}

// ComplaintInput carries complaint details
type ComplaintInput struct {
	Details string `json:"details"`
}

// CrimeSceneInput is an officer's crime-scene report
type CrimeSceneInput struct {
	Report            string   `json:"report"`
	WitnessPhone      string   `json:"witness_phone"`
	WitnessNationalID string   `json:"witness_national_id"`
	Media             []string `json:"media"`
}

// FromCrimeSceneInput opens a case from a crime-scene report
type FromCrimeSceneInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CrimeLevel  int    `json:"crime_level"`
	CrimeSceneInput
}

// UpdateCaseInput changes the editable case fields. Nil fields are left alone.
type UpdateCaseInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	CrimeLevel  *int    `json:"crime_level"`
}

// StrikeInput gives the reason a complaint was sent back
type StrikeInput struct {
	Reason string `json:"reason"`
}

func crimeLevel(level int) (int, error) {
	if level == 0 {
		return 1, nil
	}
	if level < 1 || level > models.CriticalCrimeLevel {
		return 0, validationError("crime_level must be between 1 and %d.", models.CriticalCrimeLevel).
			WithDetail("crime_level", level)
	}
	return level, nil
}

func requiredText(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", validationError("%s is required.", field).WithDetail(field, "This field is required.")
	}
	return value, nil
}

func (s *CaseService) newCase(actor *models.Actor, title, description string, level int, status models.CaseStatus) *models.Case {
	now := s.now()
	return &models.Case{Details: models.CaseDetails{
		Title:       title,
		Description: description,
		Status:      status,
		CrimeLevel:  level,
		CreatedBy:   actor.ID,
		History: []models.CaseHistoryEntry{{
			Action:    "created",
			UserID:    actor.ID,
			To:        status,
			Timestamp: now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}}
}

// transition moves the case to status and records why
func (s *CaseService) transition(cs *models.Case, actor *models.Actor, action string, to models.CaseStatus, notes string) {
	now := s.now()
	cs.Details.History = append(cs.Details.History, models.CaseHistoryEntry{
		Action:    action,
		UserID:    actor.ID,
		From:      cs.Details.Status,
		To:        to,
		Notes:     notes,
		Timestamp: now,
	})
	cs.Details.Status = to
	cs.Details.UpdatedAt = now
}

func (s *CaseService) load(ctx context.Context, id string) (*models.Case, error) {
	oid, err := parseID(id, "Case")
	if err != nil {
		return nil, err
	}
	cs, err := s.stores.Cases.FindByID(ctx, oid)
	if err != nil {
		return nil, fromStore(err, "Case")
	}
	return cs, nil
}

// save persists cs and tells its creator when the status moved
func (s *CaseService) save(ctx context.Context, cs *models.Case, from models.CaseStatus) error {
	if err := s.stores.Cases.Update(ctx, cs); err != nil {
		return fromStore(err, "Case")
	}
	if cs.Details.Status != from {
		s.notifier.notify(ctx, cs.ID.Hex(), cs.Details.CreatedBy, models.NotificationStatusChanged,
			fmt.Sprintf("Case %q moved from %s to %s.", cs.Details.Title, from, cs.Details.Status))
	}
	return nil
}

// Create opens a case directly
func (s *CaseService) Create(ctx context.Context, actor *models.Actor, in CreateCaseInput) (*models.Case, error) {
	cs, err := s.create(ctx, actor, in)
	return cs, s.record(caseWorkflow, "create", err)
}

func (s *CaseService) create(ctx context.Context, actor *models.Actor, in CreateCaseInput) (*models.Case, error) {
	title, err := requiredText("title", in.Title)
	if err != nil {
		return nil, err
	}
	level, err := crimeLevel(in.CrimeLevel)
	if err != nil {
		return nil, err
	}
	cs := s.newCase(actor, title, strings.TrimSpace(in.Description), level, models.CaseOpen)
	if err := s.stores.Cases.Insert(ctx, cs); err != nil {
		return nil, fromStore(err, "Case")
	}
	return cs, nil
}

// CreateFromComplaint opens a case for review around the actor's complaint
func (s *CaseService) CreateFromComplaint(ctx context.Context, actor *models.Actor, in FromComplaintInput) (*models.Case, error) {
	cs, err := s.createFromComplaint(ctx, actor, in)
	return cs, s.record(caseWorkflow, "from_complaint", err)
}

func (s *CaseService) createFromComplaint(ctx context.Context, actor *models.Actor, in FromComplaintInput) (*models.Case, error) {
	title, err := requiredText("title", in.Title)
	if err != nil {
		return nil, err
	}
	details, err := requiredText("details", in.Details)
	if err != nil {
		return nil, err
	}
	cs := s.newCase(actor, title, strings.TrimSpace(in.Description), 1, models.CaseUnderReview)
	cs.Details.Complaint = &models.Complaint{
		ComplainantID: actor.ID,
		Details:       details,
		CreatedAt:     s.now(),
	}
	if err := s.stores.Cases.Insert(ctx, cs); err != nil {
		return nil, fromStore(err, "Case")
	}
	return cs, nil
}

// CreateComplaint attaches the actor's complaint to a case that has none
func (s *CaseService) CreateComplaint(ctx context.Context, actor *models.Actor, caseID string, in ComplaintInput) (*models.Case, error) {
	cs, err := s.createComplaint(ctx, actor, caseID, in)
	return cs, s.record(caseWorkflow, "create_complaint", err)
}

func (s *CaseService) createComplaint(ctx context.Context, actor *models.Actor, caseID string, in ComplaintInput) (*models.Case, error) {
	cs, err := s.load(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if cs.Details.Complaint != nil {
		return nil, conflict("Complaint already exists.")
	}
	if cs.IsTerminal() {
		return nil, invalidState("Case is %s.", strings.ToLower(string(cs.Details.Status)))
	}
	details, err := requiredText("details", in.Details)
	if err != nil {
		return nil, err
	}
	cs.Details.Complaint = &models.Complaint{ComplainantID: actor.ID, Details: details, CreatedAt: s.now()}
	cs.Details.UpdatedAt = s.now()
	return cs, s.save(ctx, cs, cs.Details.Status)
}

// CreateFromCrimeScene opens a case from an officer's crime-scene report. A
// chief's report needs no approval, so the case opens straight away.
func (s *CaseService) CreateFromCrimeScene(ctx context.Context, actor *models.Actor, in FromCrimeSceneInput) (*models.Case, error) {
	cs, err := s.createFromCrimeScene(ctx, actor, in)
	return cs, s.record(caseWorkflow, "from_crime_scene", err)
}

func (s *CaseService) createFromCrimeScene(ctx context.Context, actor *models.Actor, in FromCrimeSceneInput) (*models.Case, error) {
	if err := requireRole(actor, crimeSceneReporters...); err != nil {
		return nil, err
	}
	title, err := requiredText("title", in.Title)
	if err != nil {
		return nil, err
	}
	level, err := crimeLevel(in.CrimeLevel)
	if err != nil {
		return nil, err
	}
	report, err := s.crimeScene(actor, in.CrimeSceneInput)
	if err != nil {
		return nil, err
	}

	status := models.CaseUnderReview
	if report.IsApproved {
		status = models.CaseOpen
	}
	cs := s.newCase(actor, title, strings.TrimSpace(in.Description), level, status)
	cs.Details.CrimeScene = report
	if err := s.stores.Cases.Insert(ctx, cs); err != nil {
		return nil, fromStore(err, "Case")
	}
	return cs, nil
}

// crimeScene builds the report, approving it up front for chief-level reporters
func (s *CaseService) crimeScene(actor *models.Actor, in CrimeSceneInput) (*models.CrimeSceneReport, error) {
	text, err := requiredText("report", in.Report)
	if err != nil {
		return nil, err
	}
	report := &models.CrimeSceneReport{
		ReporterID:        actor.ID,
		Report:            text,
		WitnessPhone:      strings.TrimSpace(in.WitnessPhone),
		WitnessNationalID: strings.TrimSpace(in.WitnessNationalID),
		Media:             in.Media,
		CreatedAt:         s.now(),
	}
	if report.Media == nil {
		report.Media = []string{}
	}
	if HasRole(actor, models.RoleChief) {
		report.IsApproved = true
		report.ApprovedBy = actor.ID
		report.ApprovedAt = s.nowPtr()
	}
	return report, nil
}

// Update edits the title, description or crime level of a live case
func (s *CaseService) Update(ctx context.Context, actor *models.Actor, caseID string, in UpdateCaseInput) (*models.Case, error) {
	cs, err := s.update(ctx, actor, caseID, in)
	return cs, s.record(caseWorkflow, "update", err)
}

func (s *CaseService) update(ctx context.Context, actor *models.Actor, caseID string, in UpdateCaseInput) (*models.Case, error) {
	if err := requireRole(actor, caseEditors...); err != nil {
		return nil, err
	}
	if in.Title == nil && in.Description == nil && in.CrimeLevel == nil {
		return nil, validationError("Nothing to update.")
	}
	cs, err := s.load(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if cs.IsTerminal() {
		return nil, invalidState("Case is %s.", strings.ToLower(string(cs.Details.Status)))
	}
	if in.Title != nil {
		title, err := requiredText("title", *in.Title)
		if err != nil {
			return nil, err
		}
		cs.Details.Title = title
	}
	if in.Description != nil {
		cs.Details.Description = strings.TrimSpace(*in.Description)
	}
	if in.CrimeLevel != nil {
		if *in.CrimeLevel < 1 || *in.CrimeLevel > models.CriticalCrimeLevel {
			return nil, validationError("crime_level must be between 1 and %d.", models.CriticalCrimeLevel)
		}
		cs.Details.CrimeLevel = *in.CrimeLevel
	}
	cs.Details.UpdatedAt = s.now()
	return cs, s.save(ctx, cs, cs.Details.Status)
}

// ComplaintStrike sends the complaint back to its author. The third strike
// invalidates the case for good.
func (s *CaseService) ComplaintStrike(ctx context.Context, actor *models.Actor, caseID string, in StrikeInput) (*models.Case, error) {
	cs, err := s.complaintStrike(ctx, actor, caseID, in)
	return cs, s.record(caseWorkflow, "complaint_strike", err)
}

func (s *CaseService) complaintStrike(ctx context.Context, actor *models.Actor, caseID string, in StrikeInput) (*models.Case, error) {
	if err := requireRole(actor, models.RoleCadet, models.RoleOfficer, models.RoleAdmin); err != nil {
		return nil, err
	}
	cs, err := s.load(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if cs.Details.Complaint == nil {
		return nil, notFound("Complaint")
	}
	if cs.IsTerminal() {
		return nil, invalidState("Case is %s.", strings.ToLower(string(cs.Details.Status)))
	}

	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		reason = "Invalid data"
	}
	from := cs.Details.Status
	cs.Details.Complaint.RevisionCount++
	cs.Details.Complaint.RejectionReason = reason
	if cs.Details.Complaint.RevisionCount >= models.MaxBadSubmissions {
		s.transition(cs, actor, "complaint_invalidated", models.CaseInvalidated, reason)
	} else {
		s.transition(cs, actor, "complaint_strike", models.CaseDraft, reason)
	}
	return cs, s.save(ctx, cs, from)
}

// ComplaintResubmit lets the complainant send corrected details for review
func (s *CaseService) ComplaintResubmit(ctx context.Context, actor *models.Actor, caseID string, in ComplaintInput) (*models.Case, error) {
	cs, err := s.complaintResubmit(ctx, actor, caseID, in)
	return cs, s.record(caseWorkflow, "complaint_resubmit", err)
}

func (s *CaseService) complaintResubmit(ctx context.Context, actor *models.Actor, caseID string, in ComplaintInput) (*models.Case, error) {
	cs, err := s.load(ctx, caseID)
	if err != nil {
		return nil, err
	}
	complaint := cs.Details.Complaint
	if complaint == nil {
		return nil, notFound("Complaint")
	}
	if complaint.ComplainantID != actor.ID && !HasRole(actor, models.RoleAdmin) {
		return nil, forbidden()
	}
	if cs.IsTerminal() {
		return nil, invalidState("Case is %s.", strings.ToLower(string(cs.Details.Status)))
	}
	details, err := requiredText("details", in.Details)
	if err != nil {
		return nil, err
	}

	from := cs.Details.Status
	complaint.Details = details
	complaint.RejectionReason = ""
	s.transition(cs, actor, "complaint_resubmit", models.CaseUnderReview, "")
	return cs, s.save(ctx, cs, from)
}

// CreateCrimeScene attaches a crime-scene report to a case
func (s *CaseService) CreateCrimeScene(ctx context.Context, actor *models.Actor, caseID string, in CrimeSceneInput) (*models.Case, error) {
	cs, err := s.createCrimeScene(ctx, actor, caseID, in)
	return cs, s.record(caseWorkflow, "create_crime_scene", err)
}

func (s *CaseService) createCrimeScene(ctx context.Context, actor *models.Actor, caseID string, in CrimeSceneInput) (*models.Case, error) {
	if err := requireRole(actor, crimeSceneReporters...); err != nil {
		return nil, err
	}
	cs, err := s.load(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if cs.Details.CrimeScene != nil {
		return nil, conflict("Crime scene report already exists.")
	}
	if cs.IsTerminal() {
		return nil, invalidState("Case is %s.", strings.ToLower(string(cs.Details.Status)))
	}
	report, err := s.crimeScene(actor, in)
	if err != nil {
		return nil, err
	}

	from := cs.Details.Status
	cs.Details.CrimeScene = report
	if report.IsApproved {
		s.transition(cs, actor, "crime_scene_approved", models.CaseOpen, "auto-approved")
	} else {
		cs.Details.UpdatedAt = s.now()
	}
	return cs, s.save(ctx, cs, from)
}

// ApproveCrimeScene approves the case's crime-scene report and reopens the case
func (s *CaseService) ApproveCrimeScene(ctx context.Context, actor *models.Actor, caseID string) (*models.Case, error) {
	cs, err := s.approveCrimeScene(ctx, actor, caseID)
	return cs, s.record(caseWorkflow, "crime_scene_approve", err)
}

func (s *CaseService) approveCrimeScene(ctx context.Context, actor *models.Actor, caseID string) (*models.Case, error) {
	if err := requireRole(actor, models.RoleSupervisor, models.RoleChief, models.RoleAdmin); err != nil {
		return nil, err
	}
	cs, err := s.load(ctx, caseID)
	if err != nil {
		return nil, err
	}
	report := cs.Details.CrimeScene
	if report == nil {
		return nil, notFound("Crime scene report")
	}
	if cs.Details.Status == models.CaseInvalidated {
		return nil, invalidState("Case is invalidated.")
	}

	from := cs.Details.Status
	if !report.IsApproved {
		report.IsApproved = true
		report.ApprovedBy = actor.ID
		report.ApprovedAt = s.nowPtr()
	}
	if cs.Details.Status != models.CaseClosed {
		s.transition(cs, actor, "crime_scene_approved", models.CaseOpen, "")
	}
	return cs, s.save(ctx, cs, from)
}

// Get returns a case to police staff, its creator or its complainant
func (s *CaseService) Get(ctx context.Context, actor *models.Actor, caseID string) (*models.Case, error) {
	cs, err := s.load(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if HasRole(actor, models.PoliceRoles...) || cs.Details.CreatedBy == actor.ID ||
		(cs.Details.Complaint != nil && cs.Details.Complaint.ComplainantID == actor.ID) {
		return cs, nil
	}
	// citizens do not learn about cases that are not theirs
	return nil, notFound("Case")
}

// List returns a page of cases, newest first, to police staff
func (s *CaseService) List(ctx context.Context, actor *models.Actor, status models.CaseStatus, page, limit int) ([]models.Case, error) {
	if err := requireRole(actor, models.PoliceRoles...); err != nil {
		return nil, err
	}
	cases, err := s.stores.Cases.List(ctx, status, page, limit)
	if err != nil {
		return nil, fromStore(err, "Case")
	}
	return cases, nil
}

// Delete removes a case and every record hanging off it
func (s *CaseService) Delete(ctx context.Context, actor *models.Actor, caseID string) error {
	return s.record(caseWorkflow, "delete", s.delete(ctx, actor, caseID))
}

func (s *CaseService) delete(ctx context.Context, actor *models.Actor, caseID string) error {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return err
	}
	cs, err := s.load(ctx, caseID)
	if err != nil {
		return err
	}
	hex := cs.ID.Hex()
	err = s.stores.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.stores.Cases.Delete(ctx, cs.ID); err != nil {
			return err
		}
		if err := s.stores.SolveRequests.DeleteByCase(ctx, hex); err != nil {
			return err
		}
		if err := s.stores.Interrogations.DeleteByCase(ctx, hex); err != nil {
			return err
		}
		if err := s.stores.Suspects.DeleteByCase(ctx, hex); err != nil {
			return err
		}
		if err := s.stores.Evidence.DeleteByCase(ctx, hex); err != nil {
			return err
		}
		if err := s.stores.Boards.DeleteByCase(ctx, hex); err != nil {
			return err
		}
		return s.stores.Notifications.DeleteByCase(ctx, hex)
	})
	if err != nil {
		return fromStore(err, "Case")
	}
	zap.S().Infow("case deleted", "case", hex, "by", actor.ID)
	return nil
}

// Dossier gathers everything recorded on a case for police staff
func (s *CaseService) Dossier(ctx context.Context, actor *models.Actor, caseID string) (*models.Dossier, error) {
	if err := requireRole(actor, models.PoliceRoles...); err != nil {
		return nil, err
	}
	cs, err := s.load(ctx, caseID)
	if err != nil {
		return nil, err
	}

	hex := cs.ID.Hex()
	dossier := &models.Dossier{Case: *cs}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		requests, err := s.stores.SolveRequests.FindByCase(gctx, hex)
		dossier.SolveRequests = requests
		return err
	})
	g.Go(func() error {
		interrogations, err := s.stores.Interrogations.FindByCase(gctx, hex)
		dossier.Interrogations = interrogations
		return err
	})
	g.Go(func() error {
		suspects, err := s.stores.Suspects.FindByCase(gctx, hex)
		dossier.Suspects = rankAll(suspects)
		return err
	})
	g.Go(func() error {
		evidence, err := s.stores.Evidence.List(gctx, hex)
		dossier.Evidence = evidence
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fromStore(err, "Case")
	}
	return dossier, nil
}
