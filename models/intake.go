package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// IntakeStatus is the triage state of an intake complaint
type IntakeStatus string

// Intake statuses
const (
	IntakeSubmitted       IntakeStatus = "SUBMITTED"
	IntakeNeedsFix        IntakeStatus = "NEEDS_FIX"
	IntakeInvalidated     IntakeStatus = "INVALIDATED"
	IntakeCadetApproved   IntakeStatus = "CADET_APPROVED"
	IntakeOfficerDefect   IntakeStatus = "OFFICER_DEFECT"
	IntakeOfficerApproved IntakeStatus = "OFFICER_APPROVED"
)

// MaxBadSubmissions is the number of rejected submissions that invalidates a complaint
const MaxBadSubmissions = 3

// IntakeComplaint holds the structure for the intake_complaints collection in mongo
type IntakeComplaint struct {
	ID      primitive.ObjectID     `json:"_id" bson:"_id"`
	Details IntakeComplaintDetails `json:"intake" bson:"intake"`
	Version int32                  `json:"__v" bson:"__v"`
}

// IntakeComplaintDetails holds a citizen complaint before it becomes a case
type IntakeComplaintDetails struct {
	CreatedBy string                 `json:"createdBy" bson:"createdBy"`
	Payload   map[string]interface{} `json:"payload" bson:"payload"`
	Status    IntakeStatus           `json:"status" bson:"status"`

	BadSubmissionCount  int    `json:"badSubmissionCount" bson:"badSubmissionCount"`
	CadetErrorMessage   string `json:"cadetErrorMessage" bson:"cadetErrorMessage"`
	OfficerErrorMessage string `json:"officerErrorMessage" bson:"officerErrorMessage"`

	CadetID   string `json:"cadetID,omitempty" bson:"cadetID,omitempty"`
	OfficerID string `json:"officerID,omitempty" bson:"officerID,omitempty"`

	// set once an officer approves and the case is formed
	CaseID string `json:"caseID,omitempty" bson:"caseID,omitempty"`

	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}

// InvalidateIfNeeded moves the complaint to INVALIDATED once it has reached the
// bad submission limit
func (d *IntakeComplaintDetails) InvalidateIfNeeded() bool {
	if d.BadSubmissionCount >= MaxBadSubmissions {
		d.Status = IntakeInvalidated
		return true
	}
	return false
}
