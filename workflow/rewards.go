package workflow

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/linesmerrill/police-case-api/databases"
	"github.com/linesmerrill/police-case-api/models"
)

const rewardWorkflow = "reward"

// codeAttempts bounds how many lookup codes are minted before giving up
const codeAttempts = 5

// RewardService runs the tip approval chain and the police reward lookup
type RewardService struct {
	base
	// newCode mints a lookup code, swapped in tests to force collisions
	newCode func() string
}

// TipInput is a citizen's tip about a suspect
type TipInput struct {
	CitizenName       string `json:"citizen_name"`
	CitizenNationalID string `json:"citizen_national_id"`
	CitizenPhone      string `json:"citizen_phone"`
	SuspectName       string `json:"suspect_name"`
	SuspectLastSeen   string `json:"suspect_last_seen"`
	Message           string `json:"message"`
}

// TipReviewInput is an officer's review of a tip
type TipReviewInput struct {
	Decision string `json:"decision"`
	Note     string `json:"note"`
}

// TipApprovalInput is a detective's approval note
type TipApprovalInput struct {
	Note string `json:"note"`
}

// mintCode returns a short code that is easy to read out over the phone
func mintCode() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

func (s *RewardService) load(ctx context.Context, id string) (*models.RewardTip, error) {
	oid, err := parseID(id, "Tip")
	if err != nil {
		return nil, err
	}
	tip, err := s.stores.RewardTips.FindByID(ctx, oid)
	if err != nil {
		return nil, fromStore(err, "Tip")
	}
	return tip, nil
}

// Submit files a tip
func (s *RewardService) Submit(ctx context.Context, actor *models.Actor, in TipInput) (*models.RewardTip, error) {
	tip, err := s.submit(ctx, actor, in)
	return tip, s.record(rewardWorkflow, "submit", err)
}

func (s *RewardService) submit(ctx context.Context, actor *models.Actor, in TipInput) (*models.RewardTip, error) {
	required := []struct{ field, value string }{
		{"citizen_name", in.CitizenName},
		{"citizen_national_id", in.CitizenNationalID},
		{"citizen_phone", in.CitizenPhone},
		{"suspect_name", in.SuspectName},
		{"message", in.Message},
	}
	var missing []string
	verr := validationError("Missing fields.")
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.field)
			verr.WithDetail(r.field, "This field is required.")
		}
	}
	if len(missing) > 0 {
		verr.Message = "Missing fields: " + strings.Join(missing, ", ") + "."
		return nil, verr
	}

	tip := &models.RewardTip{Details: models.RewardTipDetails{
		CitizenID:         actor.ID,
		CitizenName:       strings.TrimSpace(in.CitizenName),
		CitizenNationalID: strings.TrimSpace(in.CitizenNationalID),
		CitizenPhone:      strings.TrimSpace(in.CitizenPhone),
		SuspectName:       strings.TrimSpace(in.SuspectName),
		SuspectLastSeen:   strings.TrimSpace(in.SuspectLastSeen),
		Message:           strings.TrimSpace(in.Message),
		Status:            models.TipSubmitted,
		CreatedAt:         s.now(),
	}}
	if err := s.stores.RewardTips.Insert(ctx, tip); err != nil {
		return nil, fromStore(err, "Tip")
	}
	return tip, nil
}

// OfficerReview passes a fresh tip on to detectives or rejects it
func (s *RewardService) OfficerReview(ctx context.Context, actor *models.Actor, id string, in TipReviewInput) (*models.RewardTip, error) {
	tip, err := s.officerReview(ctx, actor, id, in)
	return tip, s.record(rewardWorkflow, "officer_review", err)
}

func (s *RewardService) officerReview(ctx context.Context, actor *models.Actor, id string, in TipReviewInput) (*models.RewardTip, error) {
	if err := requireRole(actor, tipOfficers...); err != nil {
		return nil, err
	}
	tip, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if tip.Details.Status != models.TipSubmitted {
		return nil, conflict("Tip is not in %s state (current=%s).", models.TipSubmitted, tip.Details.Status)
	}
	approve, err := approveOrReject(in.Decision)
	if err != nil {
		return nil, err
	}

	tip.Details.Status = models.TipOfficerRejected
	if approve {
		tip.Details.Status = models.TipOfficerApproved
	}
	tip.Details.OfficerID = actor.ID
	tip.Details.OfficerReviewedAt = s.nowPtr()
	tip.Details.OfficerNote = strings.TrimSpace(in.Note)
	if err := s.stores.RewardTips.Update(ctx, tip); err != nil {
		return nil, fromStore(err, "Tip")
	}
	return tip, nil
}

// DetectiveApprove approves an officer-approved tip and mints its lookup code
func (s *RewardService) DetectiveApprove(ctx context.Context, actor *models.Actor, id string, in TipApprovalInput) (*models.RewardTip, error) {
	tip, err := s.detectiveApprove(ctx, actor, id, in)
	return tip, s.record(rewardWorkflow, "detective_approve", err)
}

func (s *RewardService) detectiveApprove(ctx context.Context, actor *models.Actor, id string, in TipApprovalInput) (*models.RewardTip, error) {
	if err := requireRole(actor, tipDetectives...); err != nil {
		return nil, err
	}
	tip, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if tip.Details.Status != models.TipOfficerApproved {
		return nil, conflict("Tip is not in %s state (current=%s).", models.TipOfficerApproved, tip.Details.Status)
	}
	code, err := s.freshCode(ctx)
	if err != nil {
		return nil, err
	}

	tip.Details.UniqueCode = code
	tip.Details.Status = models.TipDetectiveApproved
	tip.Details.DetectiveID = actor.ID
	tip.Details.DetectiveApprovedAt = s.nowPtr()
	tip.Details.DetectiveNote = strings.TrimSpace(in.Note)
	if err := s.stores.RewardTips.Update(ctx, tip); err != nil {
		return nil, fromStore(err, "Tip")
	}
	return tip, nil
}

func (s *RewardService) freshCode(ctx context.Context) (string, error) {
	gen := s.newCode
	if gen == nil {
		gen = mintCode
	}
	for i := 0; i < codeAttempts; i++ {
		code := gen()
		taken, err := s.stores.RewardTips.CodeExists(ctx, code)
		if err != nil {
			return "", fromStore(err, "Tip")
		}
		if !taken {
			return code, nil
		}
	}
	return "", ServerError(errCodeExhausted)
}

// Lookup finds the detective-approved tip for a national id and code and prices
// the reward from the suspect's current rank
func (s *RewardService) Lookup(ctx context.Context, actor *models.Actor, nationalID, code string) (*models.RewardLookup, error) {
	if err := requireRole(actor, models.PoliceRoles...); err != nil {
		return nil, err
	}
	nationalID = strings.TrimSpace(nationalID)
	code = strings.TrimSpace(code)
	if nationalID == "" || code == "" {
		return nil, validationError("national_id and code are required.")
	}
	tip, err := s.stores.RewardTips.FindApproved(ctx, nationalID, code)
	if err != nil {
		return nil, fromStore(err, "Approved tip")
	}

	lookup := &models.RewardLookup{Tip: *tip}
	suspect, err := s.stores.Suspects.FindLatestByName(ctx, tip.Details.SuspectName)
	switch {
	case err == nil:
		lookup.RewardAmount = suspect.RewardAmount()
	case errors.Is(err, databases.ErrNotFound):
		// no matching suspect yet, no reward
	default:
		return nil, fromStore(err, "Suspect")
	}
	return lookup, nil
}
