package gateway

import (
	"context"
	"net/url"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
)

// checkoutSessions creates and reads stripe checkout sessions
type checkoutSessions interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	Get(id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// StripeGateway starts payments as hosted Stripe Checkout sessions. The
// authority is the checkout session id.
type StripeGateway struct {
	sessions checkoutSessions
	currency string
}

// NewStripeGateway returns a gateway using the given secret key
func NewStripeGateway(secretKey, currency string) *StripeGateway {
	return &StripeGateway{
		sessions: &session.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey},
		currency: currency,
	}
}

// Name implements Gateway
func (s *StripeGateway) Name() string {
	return "stripe"
}

// Initiate implements Gateway
func (s *StripeGateway) Initiate(ctx context.Context, req InitiateRequest) (InitiateResult, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(req.PaymentToken),
		SuccessURL:        stripe.String(withStatus(req.CallbackURL, "success", true)),
		CancelURL:         stripe.String(withStatus(req.CallbackURL, "failed", false)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(s.currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.Description),
					},
					UnitAmount: stripe.Int64(req.Amount),
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx
	params.AddMetadata("payment_id", req.PaymentToken)

	sess, err := s.sessions.New(params)
	if err != nil {
		return InitiateResult{}, err
	}
	return InitiateResult{Authority: sess.ID, RedirectURL: sess.URL}, nil
}

// Verify implements Gateway. The callback is only the payer's browser coming
// back, so the recorded checkout session is read from stripe and its payment
// status decides the outcome; the callback's own claim and ids are ignored.
func (s *StripeGateway) Verify(ctx context.Context, report CallbackReport) (Settlement, error) {
	if report.Authority == "" {
		return Settlement{Outcome: OutcomePending}, nil
	}
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("payment_intent")
	sess, err := s.sessions.Get(report.Authority, params)
	if err != nil {
		return Settlement{}, err
	}

	out := Settlement{Outcome: OutcomePending, Authority: sess.ID}
	switch {
	case sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid ||
		sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusNoPaymentRequired:
		out.Outcome = OutcomePaid
		out.RefID = sess.ID
		if sess.PaymentIntent != nil && sess.PaymentIntent.ID != "" {
			out.RefID = sess.PaymentIntent.ID
		}
	case sess.Status == stripe.CheckoutSessionStatusExpired:
		out.Outcome = OutcomeFailed
	case !report.Success && sess.Status == stripe.CheckoutSessionStatusOpen:
		// the payer cancelled on the hosted page
		out.Outcome = OutcomeFailed
	}
	return out, nil
}

// withStatus adds the callback status, and on success the session id
// placeholder stripe fills in, to callbackURL
func withStatus(callbackURL, status string, withRef bool) string {
	u, err := url.Parse(callbackURL)
	if err != nil {
		return callbackURL
	}
	q := u.Query()
	q.Set("status", status)
	u.RawQuery = q.Encode()
	if withRef {
		// the placeholder braces must reach stripe unescaped
		u.RawQuery += "&ref_id={CHECKOUT_SESSION_ID}&authority={CHECKOUT_SESSION_ID}"
	}
	return u.String()
}
