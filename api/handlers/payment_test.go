package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/police-case-api/gateway"
	"github.com/linesmerrill/police-case-api/models"
)

func createBail(t *testing.T, rr *httptest.ResponseRecorder) models.PaymentRequest {
	t.Helper()
	requireStatus(t, rr, http.StatusCreated)
	return decode[models.PaymentRequest](t, rr)
}

func TestPayment_BailPaidThroughMockGateway(t *testing.T) {
	app := newTestApp(t)

	rr := do(t, app, &sergeant, http.MethodPost, "/api/v1/payments/requests", map[string]interface{}{
		"payer_user_id": citizen.ID,
		"purpose":       "BAIL",
		"amount_rials":  5000000,
		"crime_level":   4,
	})
	env := requireError(t, rr, http.StatusBadRequest, "validation_error")
	assert.Equal(t, "Bail is allowed only for crime level 2 or 3.", env.Error.Message)

	p := createBail(t, do(t, app, &sergeant, http.MethodPost, "/api/v1/payments/requests", map[string]interface{}{
		"payer_user_id": citizen.ID,
		"purpose":       "bail",
		"amount_rials":  5000000,
		"crime_level":   2,
	}))
	assert.Equal(t, models.PaymentDraft, p.Details.Status)
	path := "/api/v1/payments/requests/" + p.ID.Hex()

	rr = do(t, app, &neighbour, http.MethodGet, path, nil)
	requireError(t, rr, http.StatusForbidden, "forbidden")

	rr = do(t, app, &sergeant, http.MethodPost, path+"/initiate", nil)
	requireError(t, rr, http.StatusForbidden, "forbidden")

	rr = do(t, app, &citizen, http.MethodPost, path+"/initiate", nil)
	requireStatus(t, rr, http.StatusOK)
	initiation := decode[models.PaymentInitiation](t, rr)
	assert.Equal(t, p.Details.PublicID, initiation.PaymentID)
	require.True(t, strings.HasPrefix(initiation.RedirectURL, "/payments/mock-gateway/?"))

	// the payer follows the redirect to the mock gateway page
	req := httptest.NewRequest(http.MethodGet, initiation.RedirectURL, nil)
	rr = httptest.NewRecorder()
	app.Router.ServeHTTP(rr, req)
	requireStatus(t, rr, http.StatusOK)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rr.Body.String(), p.Details.PublicID)

	q := url.Values{
		"payment_id": {p.Details.PublicID},
		"status":     {"OK"},
		"ref_id":     {"REF-1"},
		"authority":  {gateway.MockAuthority},
	}
	rr = do(t, app, nil, http.MethodGet, "/api/v1/payments/callback?"+q.Encode(), nil)
	requireStatus(t, rr, http.StatusOK)
	paid := decode[models.PaymentRequest](t, rr)
	assert.Equal(t, models.PaymentPaid, paid.Details.Status)
	assert.Equal(t, "REF-1", paid.Details.RefID)

	// a late failure report does not undo the payment
	q.Set("status", "NOK")
	rr = do(t, app, nil, http.MethodGet, "/api/v1/payments/callback?"+q.Encode(), nil)
	requireStatus(t, rr, http.StatusOK)
	assert.Equal(t, models.PaymentPaid, decode[models.PaymentRequest](t, rr).Details.Status)

	rr = do(t, app, &citizen, http.MethodPost, path+"/initiate", nil)
	env = requireError(t, rr, http.StatusConflict, "conflict")
	assert.Equal(t, "Already paid.", env.Error.Message)
}

func TestPayment_FineNeedsApproval(t *testing.T) {
	app := newTestApp(t)
	p := createBail(t, do(t, app, &sergeant, http.MethodPost, "/api/v1/payments/requests", map[string]interface{}{
		"payer_user_id": citizen.ID,
		"purpose":       "FINE",
		"amount_rials":  200000,
		"crime_level":   3,
	}))
	path := "/api/v1/payments/requests/" + p.ID.Hex()

	rr := do(t, app, &citizen, http.MethodPost, path+"/initiate", nil)
	requireError(t, rr, http.StatusConflict, "conflict")

	rr = do(t, app, &citizen, http.MethodPost, path+"/approve", nil)
	requireError(t, rr, http.StatusForbidden, "forbidden")

	rr = do(t, app, &sergeant, http.MethodPost, path+"/approve", nil)
	requireStatus(t, rr, http.StatusOK)
	assert.Equal(t, models.PaymentApproved, decode[models.PaymentRequest](t, rr).Details.Status)

	rr = do(t, app, &citizen, http.MethodPost, path+"/initiate", nil)
	requireStatus(t, rr, http.StatusOK)
}

func TestPayment_CallbackHandler(t *testing.T) {
	app := newTestApp(t)

	rr := do(t, app, nil, http.MethodGet, "/api/v1/payments/callback", nil)
	requireError(t, rr, http.StatusBadRequest, "validation_error")

	rr = do(t, app, nil, http.MethodGet, "/api/v1/payments/callback?payment_id=unknown&status=OK", nil)
	requireError(t, rr, http.StatusNotFound, "not_found")

	rr = do(t, app, nil, http.MethodGet, "/api/v1/payments/callback?payment_id=unknown&status=later", nil)
	requireError(t, rr, http.StatusBadRequest, "validation_error")
}

func TestPayment_MockGatewayHandlerRejectsForeignCallback(t *testing.T) {
	app := newTestApp(t)

	q := url.Values{"payment_id": {"abc"}, "callback": {"https://evil.example/steal"}}
	rr := do(t, app, nil, http.MethodGet, "/payments/mock-gateway/?"+q.Encode(), nil)
	requireError(t, rr, http.StatusBadRequest, "validation_error")
}
