// Package gateway prepares payment attempts with an external payment provider.
// Settlement is reported back out of band through the payment callback and
// confirmed with the provider before it is applied.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/linesmerrill/police-case-api/config"
)

// InitiateRequest describes the payment attempt handed to a gateway
type InitiateRequest struct {
	// PaymentToken is the payment's public id; it comes back on the callback
	PaymentToken string
	CallbackURL  string
	Amount       int64
	Description  string
}

// InitiateResult is what the payer needs to continue at the gateway
type InitiateResult struct {
	Authority   string
	RedirectURL string
}

// Outcome is a gateway's verdict on a payment attempt
type Outcome string

// Outcomes a gateway can report
const (
	OutcomePaid    Outcome = "PAID"
	OutcomeFailed  Outcome = "FAILED"
	OutcomePending Outcome = "PENDING"
)

// CallbackReport is what came back on the callback for one attempt
type CallbackReport struct {
	// Authority is the one recorded when the attempt was initiated
	Authority string
	// Success is the status the callback claims
	Success bool
	RefID   string
	// ReportedAuthority is the authority the callback carried, if any
	ReportedAuthority string
}

// Settlement is the gateway's confirmed state of an attempt
type Settlement struct {
	Outcome   Outcome
	RefID     string
	Authority string
}

// Gateway starts payment attempts and confirms how they ended
type Gateway interface {
	Name() string
	Initiate(ctx context.Context, req InitiateRequest) (InitiateResult, error)
	Verify(ctx context.Context, report CallbackReport) (Settlement, error)
}

// New returns the gateway selected by conf.Kind
func New(conf config.GatewayConfig) (Gateway, error) {
	switch strings.ToLower(conf.Kind) {
	case "", "mock":
		return NewMockGateway(), nil
	case "stripe":
		if conf.StripeSecretKey == "" {
			return nil, fmt.Errorf("stripe secret key is not set")
		}
		return NewStripeGateway(conf.StripeSecretKey, conf.Currency), nil
	}
	return nil, fmt.Errorf("unknown payment gateway %q", conf.Kind)
}

// MockAuthority is the authority every mock payment attempt receives
const MockAuthority = "MOCK_AUTH"

// MockGateway sends the payer to a local page that can pay or fail the attempt
type MockGateway struct{}

// NewMockGateway returns the local demo gateway
func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

// Name implements Gateway
func (m *MockGateway) Name() string {
	return "mock"
}

// Initiate implements Gateway
func (m *MockGateway) Initiate(_ context.Context, req InitiateRequest) (InitiateResult, error) {
	q := url.Values{}
	q.Set("payment_id", req.PaymentToken)
	q.Set("callback", req.CallbackURL)
	return InitiateResult{
		Authority:   MockAuthority,
		RedirectURL: "/payments/mock-gateway/?" + q.Encode(),
	}, nil
}

// Verify implements Gateway. The mock gateway page is the payer's own
// browser, so the callback's claim is taken as is.
func (m *MockGateway) Verify(_ context.Context, report CallbackReport) (Settlement, error) {
	out := Settlement{Outcome: OutcomeFailed, Authority: report.Authority}
	if report.Success {
		out.Outcome = OutcomePaid
		out.RefID = report.RefID
		if report.ReportedAuthority != "" {
			out.Authority = report.ReportedAuthority
		}
	}
	return out, nil
}

// ErrUnknownStatus is returned for callback status values that are neither a
// success nor a failure
var ErrUnknownStatus = errors.New("unknown callback status")

// ParseStatus reports whether a callback status value means the payment went
// through. Only the known failure values count as a failure.
func ParseStatus(status string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "ok", "success", "1", "true":
		return true, nil
	case "nok", "failed", "0", "false":
		return false, nil
	}
	return false, ErrUnknownStatus
}

// IsSuccessStatus reports whether a callback status value means the payment went through
func IsSuccessStatus(status string) bool {
	ok, err := ParseStatus(status)
	return err == nil && ok
}
