package gateway

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"

	"github.com/linesmerrill/police-case-api/config"
)

type mockSessions struct {
	mock.Mock
}

func (m *mockSessions) New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	ret := m.Called(params)
	var sess *stripe.CheckoutSession
	if ret.Get(0) != nil {
		sess = ret.Get(0).(*stripe.CheckoutSession)
	}
	return sess, ret.Error(1)
}

func (m *mockSessions) Get(id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	ret := m.Called(id, params)
	var sess *stripe.CheckoutSession
	if ret.Get(0) != nil {
		sess = ret.Get(0).(*stripe.CheckoutSession)
	}
	return sess, ret.Error(1)
}

func TestMockGateway_Initiate(t *testing.T) {
	res, err := NewMockGateway().Initiate(context.Background(), InitiateRequest{
		PaymentToken: "abc123",
		CallbackURL:  "http://localhost/api/v1/payments/callback?payment_id=abc123",
	})
	require.NoError(t, err)

	assert.Equal(t, "MOCK_AUTH", res.Authority)
	u, err := url.Parse(res.RedirectURL)
	require.NoError(t, err)
	assert.Equal(t, "/payments/mock-gateway/", u.Path)
	assert.Equal(t, "abc123", u.Query().Get("payment_id"))
	assert.Equal(t, "http://localhost/api/v1/payments/callback?payment_id=abc123", u.Query().Get("callback"))
}

func TestStripeGateway_Initiate(t *testing.T) {
	sessions := &mockSessions{}
	sessions.On("New", mock.MatchedBy(func(p *stripe.CheckoutSessionParams) bool {
		return *p.ClientReferenceID == "abc123" &&
			*p.LineItems[0].PriceData.UnitAmount == 5000 &&
			*p.LineItems[0].PriceData.Currency == "irr"
	})).Return(&stripe.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.stripe.com/c/pay/cs_test_1"}, nil)

	gw := &StripeGateway{sessions: sessions, currency: "irr"}
	res, err := gw.Initiate(context.Background(), InitiateRequest{
		PaymentToken: "abc123",
		CallbackURL:  "http://localhost/api/v1/payments/callback?payment_id=abc123",
		Amount:       5000,
		Description:  "BAIL",
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", res.Authority)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_1", res.RedirectURL)

	params := sessions.Calls[0].Arguments.Get(0).(*stripe.CheckoutSessionParams)
	assert.Contains(t, *params.SuccessURL, "status=success")
	assert.Contains(t, *params.SuccessURL, "ref_id={CHECKOUT_SESSION_ID}")
	assert.Contains(t, *params.CancelURL, "status=failed")
}

func TestStripeGateway_InitiateError(t *testing.T) {
	sessions := &mockSessions{}
	sessions.On("New", mock.Anything).Return(nil, errors.New("card network down"))

	gw := &StripeGateway{sessions: sessions, currency: "irr"}
	_, err := gw.Initiate(context.Background(), InitiateRequest{PaymentToken: "abc"})
	assert.EqualError(t, err, "card network down")
}

func TestNew(t *testing.T) {
	gw, err := New(config.GatewayConfig{Kind: "mock"})
	require.NoError(t, err)
	assert.Equal(t, "mock", gw.Name())

	_, err = New(config.GatewayConfig{Kind: "stripe"})
	assert.Error(t, err)

	gw, err = New(config.GatewayConfig{Kind: "stripe", StripeSecretKey: "sk_test_x", Currency: "irr"})
	require.NoError(t, err)
	assert.Equal(t, "stripe", gw.Name())

	_, err = New(config.GatewayConfig{Kind: "paypal"})
	assert.Error(t, err)
}

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"OK", "success", "1", "true", " True "} {
		ok, err := ParseStatus(s)
		require.NoError(t, err, s)
		assert.True(t, ok, s)
		assert.True(t, IsSuccessStatus(s), s)
	}
	for _, s := range []string{"NOK", "failed", "0", "false"} {
		ok, err := ParseStatus(s)
		require.NoError(t, err, s)
		assert.False(t, ok, s)
	}
	for _, s := range []string{"", "pending", "okay"} {
		_, err := ParseStatus(s)
		assert.ErrorIs(t, err, ErrUnknownStatus, s)
		assert.False(t, IsSuccessStatus(s), s)
	}
}

func TestMockGateway_Verify(t *testing.T) {
	gw := NewMockGateway()
	out, err := gw.Verify(context.Background(), CallbackReport{Authority: MockAuthority, Success: true, RefID: "R1", ReportedAuthority: "A2"})
	require.NoError(t, err)
	assert.Equal(t, Settlement{Outcome: OutcomePaid, RefID: "R1", Authority: "A2"}, out)

	out, err = gw.Verify(context.Background(), CallbackReport{Authority: MockAuthority, RefID: "R1"})
	require.NoError(t, err)
	assert.Equal(t, Settlement{Outcome: OutcomeFailed, Authority: MockAuthority}, out)
}

func TestStripeGateway_Verify(t *testing.T) {
	sessions := &mockSessions{}
	sessions.On("Get", "cs_paid", mock.Anything).Return(&stripe.CheckoutSession{
		ID:            "cs_paid",
		Status:        stripe.CheckoutSessionStatusComplete,
		PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid,
		PaymentIntent: &stripe.PaymentIntent{ID: "pi_1"},
	}, nil)
	sessions.On("Get", "cs_open", mock.Anything).Return(&stripe.CheckoutSession{
		ID:            "cs_open",
		Status:        stripe.CheckoutSessionStatusOpen,
		PaymentStatus: stripe.CheckoutSessionPaymentStatusUnpaid,
	}, nil)
	sessions.On("Get", "cs_expired", mock.Anything).Return(&stripe.CheckoutSession{
		ID:            "cs_expired",
		Status:        stripe.CheckoutSessionStatusExpired,
		PaymentStatus: stripe.CheckoutSessionPaymentStatusUnpaid,
	}, nil)
	sessions.On("Get", "cs_gone", mock.Anything).Return(nil, errors.New("no such checkout session"))

	gw := &StripeGateway{sessions: sessions, currency: "irr"}
	ctx := context.Background()

	out, err := gw.Verify(ctx, CallbackReport{Authority: "cs_paid", Success: false, RefID: "forged", ReportedAuthority: "cs_x"})
	require.NoError(t, err)
	assert.Equal(t, Settlement{Outcome: OutcomePaid, RefID: "pi_1", Authority: "cs_paid"}, out)

	// a success claim for an unpaid session is not trusted
	out, err = gw.Verify(ctx, CallbackReport{Authority: "cs_open", Success: true, RefID: "forged"})
	require.NoError(t, err)
	assert.Equal(t, OutcomePending, out.Outcome)
	assert.Empty(t, out.RefID)

	out, err = gw.Verify(ctx, CallbackReport{Authority: "cs_open", Success: false})
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailed, out.Outcome)

	out, err = gw.Verify(ctx, CallbackReport{Authority: "cs_expired", Success: true})
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailed, out.Outcome)

	out, err = gw.Verify(ctx, CallbackReport{Success: true})
	require.NoError(t, err)
	assert.Equal(t, OutcomePending, out.Outcome)

	_, err = gw.Verify(ctx, CallbackReport{Authority: "cs_gone", Success: true})
	assert.EqualError(t, err, "no such checkout session")

	params := sessions.Calls[0].Arguments.Get(1).(*stripe.CheckoutSessionParams)
	assert.Contains(t, params.Expand, stripe.String("payment_intent"))
}
