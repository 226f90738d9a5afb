package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/linesmerrill/police-case-api/api"
	"github.com/linesmerrill/police-case-api/config"
	"github.com/linesmerrill/police-case-api/gateway"
	templates "github.com/linesmerrill/police-case-api/templates/html"
	"github.com/linesmerrill/police-case-api/workflow"
)

// callbackPath is where gateways report a payment's outcome
const callbackPath = "/api/v1/payments/callback"

// Payment exposes payment requests and the gateway callback
type Payment struct {
	Service *workflow.PaymentService
	// BaseURL is this service's public address, used to build the callback url
	BaseURL string
}

// CreatePaymentHandler opens a payment request
func (p Payment) CreatePaymentHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	var in workflow.PaymentInput
	if !decodeJSON(w, r, &in) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	pr, err := p.Service.Create(ctx, actor, in)
	respond(w, r, http.StatusCreated, pr, err)
}

// PaymentByIDHandler returns one payment request
func (p Payment) PaymentByIDHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	pr, err := p.Service.Get(ctx, actor, mux.Vars(r)["id"])
	respond(w, r, http.StatusOK, pr, err)
}

// ApprovePaymentHandler approves a payment request for payment
func (p Payment) ApprovePaymentHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	pr, err := p.Service.Approve(ctx, actor, mux.Vars(r)["id"])
	respond(w, r, http.StatusOK, pr, err)
}

// InitiatePaymentHandler hands the payment to the gateway and returns the redirect
func (p Payment) InitiatePaymentHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOf(w, r)
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	res, err := p.Service.Initiate(ctx, actor, mux.Vars(r)["id"], strings.TrimRight(p.BaseURL, "/")+callbackPath)
	respond(w, r, http.StatusOK, res, err)
}

// CallbackHandler settles a payment from the gateway's report. It is not
// authenticated: the gateway calls it, and the payment id is unguessable.
func (p Payment) CallbackHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	pr, err := p.Service.Callback(ctx, workflow.CallbackInput{
		PaymentID: q.Get("payment_id"),
		Status:    q.Get("status"),
		RefID:     q.Get("ref_id"),
		Authority: q.Get("authority"),
	})
	respond(w, r, http.StatusOK, pr, err)
}

// MockGatewayHandler is the payment page of the mock gateway
func (p Payment) MockGatewayHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	paymentID := q.Get("payment_id")
	callback, err := url.Parse(q.Get("callback"))
	if paymentID == "" || err != nil || !strings.HasSuffix(callback.Path, callbackPath) {
		config.WriteError(w, http.StatusBadRequest, config.CodeBadRequest, "payment_id and callback are required.", nil)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(templates.RenderMockGateway(paymentID,
		settleURL(*callback, paymentID, "OK"),
		settleURL(*callback, paymentID, "NOK"),
	)))
}

func settleURL(callback url.URL, paymentID, status string) string {
	v := callback.Query()
	v.Set("payment_id", paymentID)
	v.Set("status", status)
	v.Set("authority", gateway.MockAuthority)
	if gateway.IsSuccessStatus(status) {
		v.Set("ref_id", "MOCK-"+strings.ToUpper(uuid.NewString()[:8]))
	}
	callback.RawQuery = v.Encode()
	return callback.String()
}
