package workflow_test

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/police-case-api/gateway"
	"github.com/linesmerrill/police-case-api/models"
	"github.com/linesmerrill/police-case-api/workflow"
)

const callbackBase = "https://police.example/api/v1/payments/callback"

func newPayment(t *testing.T, h *harness, purpose models.PaymentPurpose, level int) *models.PaymentRequest {
	t.Helper()
	p, err := h.Payments.Create(context.Background(), sergeant, workflow.PaymentInput{
		PayerID: citizen.ID, Purpose: purpose, Amount: 5_000_000, CrimeLevel: level,
	})
	require.NoError(t, err)
	return p
}

func TestPaymentService_CreateValidatesPurpose(t *testing.T) {
	tests := []struct {
		purpose models.PaymentPurpose
		level   int
		ok      bool
	}{
		{models.PurposeBail, 1, false},
		{models.PurposeBail, 2, true},
		{models.PurposeBail, 3, true},
		{models.PurposeBail, 4, false},
		{models.PurposeFine, 2, false},
		{models.PurposeFine, 3, true},
		{"bribe", 3, false},
	}
	h := newHarness(t)
	ctx := context.Background()
	for _, tt := range tests {
		p, err := h.Payments.Create(ctx, sergeant, workflow.PaymentInput{
			PayerID: citizen.ID, Purpose: tt.purpose, Amount: 100, CrimeLevel: tt.level,
		})
		if !tt.ok {
			requireKind(t, err, workflow.KindValidation)
			assert.Equal(t, 400, workflow.KindOf(err).StatusCode())
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, models.PaymentDraft, p.Details.Status)
		assert.Len(t, p.Details.PublicID, 32)
	}

	_, err := h.Payments.Create(ctx, sergeant, workflow.PaymentInput{PayerID: citizen.ID, Purpose: models.PurposeFine, CrimeLevel: 3})
	requireKind(t, err, workflow.KindValidation)
	_, err = h.Payments.Create(ctx, officer, workflow.PaymentInput{PayerID: citizen.ID, Purpose: models.PurposeFine, Amount: 1, CrimeLevel: 3})
	requireKind(t, err, workflow.KindForbidden)
}

func TestPaymentService_FineFlow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := newPayment(t, h, models.PurposeFine, 3)
	id := p.ID.Hex()

	_, err := h.Payments.Initiate(ctx, citizen, id, callbackBase)
	requireKind(t, err, workflow.KindConflict)

	approved, err := h.Payments.Approve(ctx, sergeant, id)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentApproved, approved.Details.Status)

	_, err = h.Payments.Initiate(ctx, neighbour, id, callbackBase)
	requireKind(t, err, workflow.KindForbidden)

	res, err := h.Payments.Initiate(ctx, citizen, id, callbackBase)
	require.NoError(t, err)
	assert.Equal(t, p.Details.PublicID, res.PaymentID)
	redirect, err := url.Parse(res.RedirectURL)
	require.NoError(t, err)
	assert.Equal(t, "/payments/mock-gateway/", redirect.Path)
	assert.Equal(t, p.Details.PublicID, redirect.Query().Get("payment_id"))
	callback, err := url.Parse(redirect.Query().Get("callback"))
	require.NoError(t, err)
	assert.Equal(t, p.Details.PublicID, callback.Query().Get("payment_id"))

	stored, err := h.Payments.Get(ctx, citizen, id)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentInitiated, stored.Details.Status)
	assert.Equal(t, gateway.MockAuthority, stored.Details.Authority)

	paid, err := h.Payments.Callback(ctx, workflow.CallbackInput{
		PaymentID: p.Details.PublicID, Status: "OK", RefID: " REF-0042 ", Authority: "AUTH-9",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, paid.Details.Status)
	assert.Equal(t, " REF-0042 ", paid.Details.RefID)
	assert.Equal(t, "AUTH-9", paid.Details.Authority)

	// late or repeated callbacks leave a paid payment alone
	again, err := h.Payments.Callback(ctx, workflow.CallbackInput{PaymentID: p.Details.PublicID, Status: "failed", RefID: "other"})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, again.Details.Status)
	assert.Equal(t, " REF-0042 ", again.Details.RefID)

	_, err = h.Payments.Initiate(ctx, citizen, id, callbackBase)
	requireKind(t, err, workflow.KindConflict)
	_, err = h.Payments.Approve(ctx, sergeant, id)
	requireKind(t, err, workflow.KindConflict)
}

func TestPaymentService_BailNeedsNoApproval(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := newPayment(t, h, models.PurposeBail, 2)

	_, err := h.Payments.Initiate(ctx, citizen, p.ID.Hex(), callbackBase)
	require.NoError(t, err)

	failed, err := h.Payments.Callback(ctx, workflow.CallbackInput{PaymentID: p.Details.PublicID, Status: "NOK"})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentFailed, failed.Details.Status)

	approved, err := h.Payments.Approve(ctx, admin, p.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.PaymentApproved, approved.Details.Status)

	again, err := h.Payments.Approve(ctx, sergeant, p.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, approved.Version, again.Version)
	assert.Equal(t, admin.ID, again.Details.ApprovedBy)
}

func TestPaymentService_CallbackWithoutInitiate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := newPayment(t, h, models.PurposeBail, 3)

	_, err := h.Payments.Callback(ctx, workflow.CallbackInput{PaymentID: "unknown", Status: "ok"})
	requireKind(t, err, workflow.KindNotFound)
	_, err = h.Payments.Callback(ctx, workflow.CallbackInput{Status: "ok"})
	requireKind(t, err, workflow.KindValidation)

	paid, err := h.Payments.Callback(ctx, workflow.CallbackInput{PaymentID: p.Details.PublicID, Status: "true", RefID: "R1"})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, paid.Details.Status)
	assert.Equal(t, "R1", paid.Details.RefID)
}

func TestPaymentService_Get(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := newPayment(t, h, models.PurposeBail, 2)

	_, err := h.Payments.Get(ctx, neighbour, p.ID.Hex())
	requireKind(t, err, workflow.KindForbidden)
	_, err = h.Payments.Get(ctx, sergeant, p.ID.Hex())
	require.NoError(t, err)
	_, err = h.Payments.Get(ctx, citizen, "ffffffffffffffffffffffff")
	requireKind(t, err, workflow.KindNotFound)
}

type failingGateway struct{}

func (failingGateway) Name() string { return "broken" }

func (failingGateway) Initiate(context.Context, gateway.InitiateRequest) (gateway.InitiateResult, error) {
	return gateway.InitiateResult{}, errors.New("gateway unreachable")
}

func (failingGateway) Verify(context.Context, gateway.CallbackReport) (gateway.Settlement, error) {
	return gateway.Settlement{}, errors.New("gateway unreachable")
}

// checkoutGateway settles like a hosted checkout: only the provider's record
// of the recorded session counts
type checkoutGateway struct {
	mu   sync.Mutex
	paid map[string]string
}

func (g *checkoutGateway) Name() string { return "stripe" }

func (g *checkoutGateway) Initiate(_ context.Context, req gateway.InitiateRequest) (gateway.InitiateResult, error) {
	return gateway.InitiateResult{Authority: "cs_" + req.PaymentToken, RedirectURL: "https://checkout.example/" + req.PaymentToken}, nil
}

func (g *checkoutGateway) Verify(_ context.Context, report gateway.CallbackReport) (gateway.Settlement, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if report.Authority == "" {
		return gateway.Settlement{Outcome: gateway.OutcomePending}, nil
	}
	if ref, ok := g.paid[report.Authority]; ok {
		return gateway.Settlement{Outcome: gateway.OutcomePaid, RefID: ref, Authority: report.Authority}, nil
	}
	if !report.Success {
		return gateway.Settlement{Outcome: gateway.OutcomeFailed, Authority: report.Authority}, nil
	}
	return gateway.Settlement{Outcome: gateway.OutcomePending, Authority: report.Authority}, nil
}

func (g *checkoutGateway) settle(authority, ref string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.paid[authority] = ref
}

func TestPaymentService_CheckoutCallbackIsVerified(t *testing.T) {
	gw := &checkoutGateway{paid: map[string]string{}}
	h := newHarness(t, func(o *workflow.Options) { o.Gateway = gw })
	ctx := context.Background()
	p := newPayment(t, h, models.PurposeFine, 3)
	id := p.ID.Hex()

	// the payer knows the public id but nothing was paid
	mine, err := h.Payments.Get(ctx, citizen, id)
	require.NoError(t, err)
	forged := workflow.CallbackInput{PaymentID: mine.Details.PublicID, Status: "success", RefID: "forged"}
	_, err = h.Payments.Callback(ctx, forged)
	requireKind(t, err, workflow.KindPrecondition)

	stored, err := h.Payments.Get(ctx, citizen, id)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentDraft, stored.Details.Status)

	_, err = h.Payments.Approve(ctx, sergeant, id)
	require.NoError(t, err)
	_, err = h.Payments.Initiate(ctx, citizen, id, callbackBase)
	require.NoError(t, err)

	_, err = h.Payments.Callback(ctx, forged)
	requireKind(t, err, workflow.KindPrecondition)
	stored, err = h.Payments.Get(ctx, citizen, id)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentInitiated, stored.Details.Status)

	authority := "cs_" + p.Details.PublicID
	gw.settle(authority, "pi_123")
	paid, err := h.Payments.Callback(ctx, workflow.CallbackInput{
		PaymentID: p.Details.PublicID, Status: "success", RefID: "forged", Authority: "cs_other",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, paid.Details.Status)
	assert.Equal(t, "pi_123", paid.Details.RefID)
	assert.Equal(t, authority, paid.Details.Authority)
}

func TestPaymentService_CheckoutCancelFails(t *testing.T) {
	gw := &checkoutGateway{paid: map[string]string{}}
	h := newHarness(t, func(o *workflow.Options) { o.Gateway = gw })
	ctx := context.Background()
	p := newPayment(t, h, models.PurposeBail, 2)

	_, err := h.Payments.Initiate(ctx, citizen, p.ID.Hex(), callbackBase)
	require.NoError(t, err)
	failed, err := h.Payments.Callback(ctx, workflow.CallbackInput{PaymentID: p.Details.PublicID, Status: "failed"})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentFailed, failed.Details.Status)
}

func TestPaymentService_CallbackRejectsUnknownStatus(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := newPayment(t, h, models.PurposeBail, 2)

	_, err := h.Payments.Initiate(ctx, citizen, p.ID.Hex(), callbackBase)
	require.NoError(t, err)

	for _, status := range []string{"", "maybe", "cancelled?"} {
		_, err = h.Payments.Callback(ctx, workflow.CallbackInput{PaymentID: p.Details.PublicID, Status: status})
		requireKind(t, err, workflow.KindValidation)
	}

	stored, err := h.Payments.Get(ctx, citizen, p.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.PaymentInitiated, stored.Details.Status)
}

func TestPaymentService_GatewayVerifyFailure(t *testing.T) {
	h := newHarness(t, func(o *workflow.Options) { o.Gateway = failingGateway{} })
	ctx := context.Background()
	p := newPayment(t, h, models.PurposeBail, 2)

	_, err := h.Payments.Callback(ctx, workflow.CallbackInput{PaymentID: p.Details.PublicID, Status: "OK"})
	requireKind(t, err, workflow.KindServer)
}

func TestPaymentService_GatewayFailureLeavesPaymentUntouched(t *testing.T) {
	h := newHarness(t, func(o *workflow.Options) { o.Gateway = failingGateway{} })
	ctx := context.Background()
	p := newPayment(t, h, models.PurposeBail, 2)

	_, err := h.Payments.Initiate(ctx, citizen, p.ID.Hex(), callbackBase)
	requireKind(t, err, workflow.KindServer)
	assert.Equal(t, "Internal server error", workflow.AsError(err).Message)

	stored, err := h.Payments.Get(ctx, citizen, p.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.PaymentDraft, stored.Details.Status)
}

func TestPaymentService_SweepAbandoned(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	stale := newPayment(t, h, models.PurposeBail, 2)
	_, err := h.Payments.Initiate(ctx, citizen, stale.ID.Hex(), callbackBase)
	require.NoError(t, err)

	h.clock.Advance(3 * time.Hour)
	fresh := newPayment(t, h, models.PurposeBail, 2)
	_, err = h.Payments.Initiate(ctx, citizen, fresh.ID.Hex(), callbackBase)
	require.NoError(t, err)

	swept, err := h.Payments.SweepAbandoned(ctx, 2*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, swept)

	got, err := h.Payments.Get(ctx, citizen, stale.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.PaymentFailed, got.Details.Status)
	got, err = h.Payments.Get(ctx, citizen, fresh.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.PaymentInitiated, got.Details.Status)

	swept, err = h.Payments.SweepAbandoned(ctx, 2*time.Hour)
	require.NoError(t, err)
	assert.Zero(t, swept)
}
