package workflow

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/linesmerrill/police-case-api/models"
)

const intakeWorkflow = "intake"

// Default reviewer messages
const (
	DefaultCadetError   = "Information is incomplete or incorrect."
	DefaultOfficerError = "Requires cadet re-check."
)

// IntakeService triages citizen complaints through cadet and officer review.
// An officer's approval turns the complaint into an open case.
type IntakeService struct {
	base
}

// IntakeInput is the free-form complaint payload
type IntakeInput struct {
	Payload map[string]interface{} `json:"payload"`
}

// IntakeReviewInput is a cadet or officer review
type IntakeReviewInput struct {
	Approve      bool   `json:"approve"`
	ErrorMessage string `json:"error_message"`
}

func (s *IntakeService) load(ctx context.Context, id string) (*models.IntakeComplaint, error) {
	oid, err := parseID(id, "Complaint")
	if err != nil {
		return nil, err
	}
	ic, err := s.stores.Intake.FindByID(ctx, oid)
	if err != nil {
		return nil, fromStore(err, "Complaint")
	}
	return ic, nil
}

func payload(in map[string]interface{}) (map[string]interface{}, error) {
	if len(in) == 0 {
		return nil, validationError("payload is required.").WithDetail("payload", "This field is required.")
	}
	return in, nil
}

// Create files a new complaint
func (s *IntakeService) Create(ctx context.Context, actor *models.Actor, in IntakeInput) (*models.IntakeComplaint, error) {
	ic, err := s.create(ctx, actor, in)
	return ic, s.record(intakeWorkflow, "create", err)
}

func (s *IntakeService) create(ctx context.Context, actor *models.Actor, in IntakeInput) (*models.IntakeComplaint, error) {
	p, err := payload(in.Payload)
	if err != nil {
		return nil, err
	}
	now := s.now()
	ic := &models.IntakeComplaint{Details: models.IntakeComplaintDetails{
		CreatedBy: actor.ID,
		Payload:   p,
		Status:    models.IntakeSubmitted,
		CreatedAt: now,
		UpdatedAt: now,
	}}
	if err := s.stores.Intake.Insert(ctx, ic); err != nil {
		return nil, fromStore(err, "Complaint")
	}
	return ic, nil
}

// reviewer reports whether actor may act as the cadet (or officer) of ic: the
// role, or being the reviewer already recorded on it
func reviewer(actor *models.Actor, assigned string, role models.Role) bool {
	return HasRole(actor, role, models.RoleAdmin) || (assigned != "" && assigned == actor.ID)
}

// CadetReview approves the complaint for officer review or sends it back to
// the citizen. Each rejection counts towards invalidation.
func (s *IntakeService) CadetReview(ctx context.Context, actor *models.Actor, id string, in IntakeReviewInput) (*models.IntakeComplaint, error) {
	ic, err := s.cadetReview(ctx, actor, id, in)
	return ic, s.record(intakeWorkflow, "cadet_review", err)
}

func (s *IntakeService) cadetReview(ctx context.Context, actor *models.Actor, id string, in IntakeReviewInput) (*models.IntakeComplaint, error) {
	ic, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	d := &ic.Details
	if !reviewer(actor, d.CadetID, models.RoleCadet) {
		return nil, forbidden()
	}
	if d.Status != models.IntakeSubmitted && d.Status != models.IntakeOfficerDefect {
		return nil, invalidState("Cadet review is not allowed from %s.", d.Status)
	}

	d.CadetID = actor.ID
	if in.Approve {
		d.Status = models.IntakeCadetApproved
		d.CadetErrorMessage = ""
	} else {
		d.BadSubmissionCount++
		d.CadetErrorMessage = strings.TrimSpace(in.ErrorMessage)
		if d.CadetErrorMessage == "" {
			d.CadetErrorMessage = DefaultCadetError
		}
		d.Status = models.IntakeNeedsFix
		d.InvalidateIfNeeded()
	}
	d.UpdatedAt = s.now()
	if err := s.stores.Intake.Update(ctx, ic); err != nil {
		return nil, fromStore(err, "Complaint")
	}
	return ic, nil
}

// Resubmit replaces the payload of a complaint sent back for fixes
func (s *IntakeService) Resubmit(ctx context.Context, actor *models.Actor, id string, in IntakeInput) (*models.IntakeComplaint, error) {
	ic, err := s.resubmit(ctx, actor, id, in)
	return ic, s.record(intakeWorkflow, "resubmit", err)
}

func (s *IntakeService) resubmit(ctx context.Context, actor *models.Actor, id string, in IntakeInput) (*models.IntakeComplaint, error) {
	ic, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	d := &ic.Details
	if d.CreatedBy != actor.ID && !HasRole(actor, models.RoleAdmin) {
		return nil, forbidden()
	}
	switch d.Status {
	case models.IntakeNeedsFix:
	case models.IntakeInvalidated:
		return nil, invalidState("Complaint was invalidated after %d rejected submissions.", d.BadSubmissionCount)
	default:
		return nil, invalidState("Complaint can only be resubmitted from %s.", models.IntakeNeedsFix)
	}
	p, err := payload(in.Payload)
	if err != nil {
		return nil, err
	}

	d.Payload = p
	d.CadetErrorMessage = ""
	d.Status = models.IntakeSubmitted
	d.UpdatedAt = s.now()
	if err := s.stores.Intake.Update(ctx, ic); err != nil {
		return nil, fromStore(err, "Complaint")
	}
	return ic, nil
}

// OfficerReview sends a cadet-approved complaint back as defective, or approves
// it. Approval forms the case and links it in one transaction.
func (s *IntakeService) OfficerReview(ctx context.Context, actor *models.Actor, id string, in IntakeReviewInput) (*models.IntakeComplaint, error) {
	ic, err := s.officerReview(ctx, actor, id, in)
	return ic, s.record(intakeWorkflow, "officer_review", err)
}

func (s *IntakeService) officerReview(ctx context.Context, actor *models.Actor, id string, in IntakeReviewInput) (*models.IntakeComplaint, error) {
	ic, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	d := &ic.Details
	if !reviewer(actor, d.OfficerID, models.RoleOfficer) {
		return nil, forbidden()
	}
	if d.Status != models.IntakeCadetApproved {
		return nil, invalidState("Officer review is not allowed from %s.", d.Status)
	}

	d.OfficerID = actor.ID
	d.UpdatedAt = s.now()
	if !in.Approve {
		d.Status = models.IntakeOfficerDefect
		d.OfficerErrorMessage = strings.TrimSpace(in.ErrorMessage)
		if d.OfficerErrorMessage == "" {
			d.OfficerErrorMessage = DefaultOfficerError
		}
		if err := s.stores.Intake.Update(ctx, ic); err != nil {
			return nil, fromStore(err, "Complaint")
		}
		return ic, nil
	}

	cs := caseFromIntake(ic, s.now())
	d.Status = models.IntakeOfficerApproved
	d.OfficerErrorMessage = ""
	version, caseVersion := ic.Version, cs.Version
	err = s.stores.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		// the transaction may be retried; every attempt starts from the loaded state
		ic.Version, cs.Version = version, caseVersion
		d.CaseID = ""
		if err := s.stores.Cases.Insert(ctx, cs); err != nil {
			return err
		}
		d.CaseID = cs.ID.Hex()
		return s.stores.Intake.Update(ctx, ic)
	})
	if err != nil {
		return nil, fromStore(err, "Complaint")
	}
	return ic, nil
}

// caseFromIntake builds the open case an approved complaint becomes
func caseFromIntake(ic *models.IntakeComplaint, now primitive.DateTime) *models.Case {
	p := ic.Details.Payload
	title := strings.TrimSpace(payloadString(p, "title"))
	if title == "" {
		title = fmt.Sprintf("Complaint #%s", ic.ID.Hex())
	}
	return &models.Case{Details: models.CaseDetails{
		Title:       title,
		Description: strings.TrimSpace(payloadString(p, "description")),
		Status:      models.CaseOpen,
		CrimeLevel:  payloadCrimeLevel(p),
		CreatedBy:   ic.Details.CreatedBy,
		History: []models.CaseHistoryEntry{{
			Action:    "created_from_intake",
			UserID:    ic.Details.OfficerID,
			To:        models.CaseOpen,
			Notes:     ic.ID.Hex(),
			Timestamp: now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}}
}

func payloadString(p map[string]interface{}, key string) string {
	switch v := p[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// payloadCrimeLevel reads crime_level from the payload, clamped to [1,4].
// Anything unreadable is level 1.
func payloadCrimeLevel(p map[string]interface{}) int {
	var level float64
	switch v := p["crime_level"].(type) {
	case int:
		level = float64(v)
	case int32:
		level = float64(v)
	case int64:
		level = float64(v)
	case float64:
		level = v
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 1
		}
		level = f
	default:
		return 1
	}
	if math.IsNaN(level) {
		return 1
	}
	return int(math.Max(1, math.Min(models.CriticalCrimeLevel, math.Trunc(level))))
}

// Get returns a complaint to its creator or to intake staff
func (s *IntakeService) Get(ctx context.Context, actor *models.Actor, id string) (*models.IntakeComplaint, error) {
	ic, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if ic.Details.CreatedBy != actor.ID && !HasRole(actor, models.RoleCadet, models.RoleOfficer, models.RoleAdmin) {
		return nil, notFound("Complaint")
	}
	return ic, nil
}

// ListMine returns the actor's own complaints, newest first
func (s *IntakeService) ListMine(ctx context.Context, actor *models.Actor) ([]models.IntakeComplaint, error) {
	list, err := s.stores.Intake.FindByCreator(ctx, actor.ID)
	if err != nil {
		return nil, fromStore(err, "Complaint")
	}
	return list, nil
}

// CadetInbox lists complaints waiting on a cadet
func (s *IntakeService) CadetInbox(ctx context.Context, actor *models.Actor) ([]models.IntakeComplaint, error) {
	if err := requireRole(actor, models.RoleCadet, models.RoleAdmin); err != nil {
		return nil, err
	}
	list, err := s.stores.Intake.FindByStatus(ctx, models.IntakeSubmitted, models.IntakeOfficerDefect)
	if err != nil {
		return nil, fromStore(err, "Complaint")
	}
	return list, nil
}

// OfficerInbox lists complaints waiting on an officer
func (s *IntakeService) OfficerInbox(ctx context.Context, actor *models.Actor) ([]models.IntakeComplaint, error) {
	if err := requireRole(actor, models.RoleOfficer, models.RoleAdmin); err != nil {
		return nil, err
	}
	list, err := s.stores.Intake.FindByStatus(ctx, models.IntakeCadetApproved)
	if err != nil {
		return nil, fromStore(err, "Complaint")
	}
	return list, nil
}
