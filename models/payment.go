package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// PaymentPurpose is what a payment request settles
type PaymentPurpose string

// Payment purposes
const (
	PurposeBail PaymentPurpose = "BAIL"
	PurposeFine PaymentPurpose = "FINE"
)

// PaymentStatus is the state of a payment request
type PaymentStatus string

// Payment statuses
const (
	PaymentDraft     PaymentStatus = "DRAFT"
	PaymentApproved  PaymentStatus = "APPROVED"
	PaymentInitiated PaymentStatus = "INITIATED"
	PaymentPaid      PaymentStatus = "PAID"
	PaymentFailed    PaymentStatus = "FAILED"
)

// PaymentRequest holds the structure for the payment_requests collection in mongo
type PaymentRequest struct {
	ID      primitive.ObjectID    `json:"_id" bson:"_id"`
	Details PaymentRequestDetails `json:"paymentRequest" bson:"paymentRequest"`
	Version int32                 `json:"__v" bson:"__v"`
}

// PaymentRequestDetails holds a bail or fine owed by a payer
type PaymentRequestDetails struct {
	PayerID    string         `json:"payerID" bson:"payerID"`
	CreatedBy  string         `json:"createdBy" bson:"createdBy"`
	Purpose    PaymentPurpose `json:"purpose" bson:"purpose"`
	Amount     int64          `json:"amount" bson:"amount"`
	CrimeLevel int            `json:"crimeLevel" bson:"crimeLevel"`
	CaseID     string         `json:"caseID,omitempty" bson:"caseID,omitempty"`
	SuspectID  string         `json:"suspectID,omitempty" bson:"suspectID,omitempty"`
	Status     PaymentStatus  `json:"status" bson:"status"`

	// opaque token handed to the gateway and echoed back on callback
	PublicID  string `json:"publicID" bson:"publicID"`
	Gateway   string `json:"gateway" bson:"gateway"`
	Authority string `json:"authority" bson:"authority"`
	RefID     string `json:"refID" bson:"refID"`

	ApprovedBy  string              `json:"approvedBy,omitempty" bson:"approvedBy,omitempty"`
	ApprovedAt  *primitive.DateTime `json:"approvedAt,omitempty" bson:"approvedAt,omitempty"`
	InitiatedAt *primitive.DateTime `json:"initiatedAt,omitempty" bson:"initiatedAt,omitempty"`
	PaidAt      *primitive.DateTime `json:"paidAt,omitempty" bson:"paidAt,omitempty"`
	CreatedAt   primitive.DateTime  `json:"createdAt" bson:"createdAt"`
}

// PurposeAllowed reports whether a purpose may be charged for a crime level.
// Bail is only for levels 2 and 3, fines only for level 3.
func PurposeAllowed(purpose PaymentPurpose, crimeLevel int) bool {
	switch purpose {
	case PurposeBail:
		return crimeLevel == 2 || crimeLevel == 3
	case PurposeFine:
		return crimeLevel == 3
	}
	return false
}

// PaymentInitiation is returned to the payer after a gateway redirect is prepared
type PaymentInitiation struct {
	PaymentID   string `json:"paymentID"`
	RedirectURL string `json:"redirectURL"`
}
