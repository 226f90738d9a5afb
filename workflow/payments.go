package workflow

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/linesmerrill/police-case-api/databases"
	"github.com/linesmerrill/police-case-api/gateway"
	"github.com/linesmerrill/police-case-api/models"
)

const paymentWorkflow = "payment"

// callbackAttempts bounds retries when a callback races another writer
const callbackAttempts = 3

// PaymentService runs bail and fine payments through a gateway
type PaymentService struct {
	base
	gateway gateway.Gateway
}

// PaymentInput creates a payment request
type PaymentInput struct {
	PayerID    string                `json:"payer_user_id"`
	Purpose    models.PaymentPurpose `json:"purpose"`
	Amount     int64                 `json:"amount_rials"`
	CrimeLevel int                   `json:"crime_level"`
	CaseID     string                `json:"case_id"`
	SuspectID  string                `json:"suspect_id"`
}

// CallbackInput is the settlement signal sent back by the gateway
type CallbackInput struct {
	PaymentID string
	Status    string
	RefID     string
	Authority string
}

func (s *PaymentService) load(ctx context.Context, id string) (*models.PaymentRequest, error) {
	oid, err := parseID(id, "Payment request")
	if err != nil {
		return nil, err
	}
	p, err := s.stores.Payments.FindByID(ctx, oid)
	if err != nil {
		return nil, fromStore(err, "Payment request")
	}
	return p, nil
}

// Create opens a payment request in DRAFT
func (s *PaymentService) Create(ctx context.Context, actor *models.Actor, in PaymentInput) (*models.PaymentRequest, error) {
	p, err := s.create(ctx, actor, in)
	return p, s.record(paymentWorkflow, "create", err)
}

func (s *PaymentService) create(ctx context.Context, actor *models.Actor, in PaymentInput) (*models.PaymentRequest, error) {
	if err := requireRole(actor, paymentClerks...); err != nil {
		return nil, err
	}
	payer, err := requiredText("payer_user_id", in.PayerID)
	if err != nil {
		return nil, err
	}
	if in.Amount <= 0 {
		return nil, validationError("amount_rials must be positive.").WithDetail("amount_rials", in.Amount)
	}
	purpose := models.PaymentPurpose(strings.ToUpper(strings.TrimSpace(string(in.Purpose))))
	switch purpose {
	case models.PurposeBail, models.PurposeFine:
	default:
		return nil, validationError("purpose must be %s or %s.", models.PurposeBail, models.PurposeFine).
			WithDetail("purpose", in.Purpose)
	}
	if !models.PurposeAllowed(purpose, in.CrimeLevel) {
		if purpose == models.PurposeBail {
			return nil, validationError("Bail is allowed only for crime level 2 or 3.").WithDetail("crime_level", in.CrimeLevel)
		}
		return nil, validationError("Fine is allowed only for crime level 3.").WithDetail("crime_level", in.CrimeLevel)
	}

	p := &models.PaymentRequest{Details: models.PaymentRequestDetails{
		PayerID:    payer,
		CreatedBy:  actor.ID,
		Purpose:    purpose,
		Amount:     in.Amount,
		CrimeLevel: in.CrimeLevel,
		CaseID:     strings.TrimSpace(in.CaseID),
		SuspectID:  strings.TrimSpace(in.SuspectID),
		Status:     models.PaymentDraft,
		PublicID:   strings.ReplaceAll(uuid.NewString(), "-", ""),
		Gateway:    s.gateway.Name(),
		CreatedAt:  s.now(),
	}}
	if err := s.stores.Payments.Insert(ctx, p); err != nil {
		return nil, fromStore(err, "Payment request")
	}
	return p, nil
}

// Get returns a payment request to its payer or to a clerk
func (s *PaymentService) Get(ctx context.Context, actor *models.Actor, id string) (*models.PaymentRequest, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Details.PayerID != actor.ID && !HasRole(actor, paymentClerks...) {
		return nil, forbidden()
	}
	return p, nil
}

// Approve clears a payment for initiation. Approving an approved request is a no-op.
func (s *PaymentService) Approve(ctx context.Context, actor *models.Actor, id string) (*models.PaymentRequest, error) {
	p, err := s.approve(ctx, actor, id)
	return p, s.record(paymentWorkflow, "approve", err)
}

func (s *PaymentService) approve(ctx context.Context, actor *models.Actor, id string) (*models.PaymentRequest, error) {
	if err := requireRole(actor, paymentClerks...); err != nil {
		return nil, err
	}
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	switch p.Details.Status {
	case models.PaymentApproved:
		return p, nil
	case models.PaymentDraft, models.PaymentFailed:
	default:
		return nil, conflict("Cannot approve in status=%s.", p.Details.Status)
	}

	p.Details.Status = models.PaymentApproved
	p.Details.ApprovedBy = actor.ID
	p.Details.ApprovedAt = s.nowPtr()
	if err := s.stores.Payments.Update(ctx, p); err != nil {
		return nil, fromStore(err, "Payment request")
	}
	return p, nil
}

// Initiate hands the payment to the gateway and returns where to send the payer.
// callbackURL is where the gateway reports back; the payment id is added to it.
func (s *PaymentService) Initiate(ctx context.Context, actor *models.Actor, id, callbackURL string) (*models.PaymentInitiation, error) {
	res, err := s.initiate(ctx, actor, id, callbackURL)
	return res, s.record(paymentWorkflow, "initiate", err)
}

func (s *PaymentService) initiate(ctx context.Context, actor *models.Actor, id, callbackURL string) (*models.PaymentInitiation, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Details.PayerID != actor.ID {
		return nil, forbidden().WithDetail("reason", "You are not the payer for this payment request.")
	}
	if p.Details.Status == models.PaymentPaid {
		return nil, conflict("Already paid.")
	}
	if p.Details.Purpose == models.PurposeFine && p.Details.Status != models.PaymentApproved {
		return nil, conflict("Fine payment requires sergeant approval.")
	}
	callback, err := withPaymentID(callbackURL, p.Details.PublicID)
	if err != nil {
		return nil, err
	}

	res, err := s.gateway.Initiate(ctx, gateway.InitiateRequest{
		PaymentToken: p.Details.PublicID,
		CallbackURL:  callback,
		Amount:       p.Details.Amount,
		Description:  fmt.Sprintf("%s payment", strings.ToLower(string(p.Details.Purpose))),
	})
	if err != nil {
		return nil, ServerError(fmt.Errorf("gateway %s: %w", s.gateway.Name(), err))
	}

	p.Details.Gateway = s.gateway.Name()
	p.Details.Authority = res.Authority
	p.Details.Status = models.PaymentInitiated
	p.Details.InitiatedAt = s.nowPtr()
	if err := s.stores.Payments.Update(ctx, p); err != nil {
		return nil, fromStore(err, "Payment request")
	}
	return &models.PaymentInitiation{PaymentID: p.Details.PublicID, RedirectURL: res.RedirectURL}, nil
}

func withPaymentID(callbackURL, publicID string) (string, error) {
	u, err := url.Parse(callbackURL)
	if err != nil {
		return "", validationError("callback url is malformed.")
	}
	q := u.Query()
	q.Set("payment_id", publicID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Callback settles a payment from the gateway's report once the gateway has
// confirmed it. It applies whatever state the payment is in, except that a
// paid payment stays paid.
func (s *PaymentService) Callback(ctx context.Context, in CallbackInput) (*models.PaymentRequest, error) {
	p, err := s.callback(ctx, in)
	return p, s.record(paymentWorkflow, "callback", err)
}

func (s *PaymentService) callback(ctx context.Context, in CallbackInput) (*models.PaymentRequest, error) {
	publicID := strings.TrimSpace(in.PaymentID)
	if publicID == "" {
		return nil, validationError("payment_id is required.")
	}
	success, err := gateway.ParseStatus(in.Status)
	if err != nil {
		return nil, validationError("status is not a known callback status.").WithDetail("status", in.Status)
	}

	for attempt := 1; ; attempt++ {
		p, err := s.stores.Payments.FindByPublicID(ctx, publicID)
		if err != nil {
			return nil, fromStore(err, "Payment request")
		}
		if p.Details.Status == models.PaymentPaid {
			return p, nil
		}

		settled, err := s.gateway.Verify(ctx, gateway.CallbackReport{
			Authority:         p.Details.Authority,
			Success:           success,
			RefID:             in.RefID,
			ReportedAuthority: in.Authority,
		})
		if err != nil {
			return nil, ServerError(fmt.Errorf("gateway %s: %w", s.gateway.Name(), err))
		}

		switch settled.Outcome {
		case gateway.OutcomePaid:
			p.Details.Status = models.PaymentPaid
			p.Details.RefID = settled.RefID
			if settled.Authority != "" {
				p.Details.Authority = settled.Authority
			}
			p.Details.PaidAt = s.nowPtr()
		case gateway.OutcomeFailed:
			p.Details.Status = models.PaymentFailed
		default:
			return nil, precondition("Payment is not settled at the gateway yet.")
		}
		err = s.stores.Payments.Update(ctx, p)
		if errors.Is(err, databases.ErrConflict) && attempt < callbackAttempts {
			continue
		}
		if err != nil {
			return nil, fromStore(err, "Payment request")
		}
		return p, nil
	}
}
