package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// CaseStatus is the lifecycle state of a case
type CaseStatus string

// Case statuses
const (
	CaseDraft       CaseStatus = "DRAFT"
	CaseUnderReview CaseStatus = "UNDER_REVIEW"
	CaseOpen        CaseStatus = "OPEN"
	CaseClosed      CaseStatus = "CLOSED"
	CaseInvalidated CaseStatus = "INVALIDATED"
)

// CriticalCrimeLevel is the crime level that needs chief sign-off before trial
const CriticalCrimeLevel = 4

// Case holds the structure for the cases collection in mongo
type Case struct {
	ID      primitive.ObjectID `json:"_id" bson:"_id"`
	Details CaseDetails        `json:"case" bson:"case"`
	Version int32              `json:"__v" bson:"__v"`
}

// CaseDetails holds the inner case structure, including the optional one-to-one
// sub-records that are embedded in the case document
type CaseDetails struct {
	Title       string     `json:"title" bson:"title"`
	Description string     `json:"description" bson:"description"`
	Status      CaseStatus `json:"status" bson:"status"`
	CrimeLevel  int        `json:"crimeLevel" bson:"crimeLevel"`
	CreatedBy   string     `json:"createdBy" bson:"createdBy"`

	Complaint       *Complaint        `json:"complaint,omitempty" bson:"complaint,omitempty"`
	CrimeScene      *CrimeSceneReport `json:"crimeScene,omitempty" bson:"crimeScene,omitempty"`
	CaptainDecision *CaptainDecision  `json:"captainDecision,omitempty" bson:"captainDecision,omitempty"`
	Trial           *Trial            `json:"trial,omitempty" bson:"trial,omitempty"`

	// Audit trail
	History []CaseHistoryEntry `json:"history" bson:"history"`

	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}

// IsCritical reports whether the case is at the critical crime level
func (c *Case) IsCritical() bool {
	return c.Details.CrimeLevel == CriticalCrimeLevel
}

// IsTerminal reports whether the case is closed or invalidated
func (c *Case) IsTerminal() bool {
	return c.Details.Status == CaseClosed || c.Details.Status == CaseInvalidated
}

// Complaint is the citizen complaint a case was formed from
type Complaint struct {
	ComplainantID   string             `json:"complainantID" bson:"complainantID"`
	Details         string             `json:"details" bson:"details"`
	RevisionCount   int                `json:"revisionCount" bson:"revisionCount"`
	RejectionReason string             `json:"rejectionReason" bson:"rejectionReason"`
	CreatedAt       primitive.DateTime `json:"createdAt" bson:"createdAt"`
}

// CrimeSceneReport is the officer report filed from a crime scene
type CrimeSceneReport struct {
	ReporterID        string              `json:"reporterID" bson:"reporterID"`
	Report            string              `json:"report" bson:"report"`
	WitnessPhone      string              `json:"witnessPhone" bson:"witnessPhone"`
	WitnessNationalID string              `json:"witnessNationalID" bson:"witnessNationalID"`
	Media             []string            `json:"media" bson:"media"`
	IsApproved        bool                `json:"isApproved" bson:"isApproved"`
	ApprovedBy        string              `json:"approvedBy,omitempty" bson:"approvedBy,omitempty"`
	ApprovedAt        *primitive.DateTime `json:"approvedAt,omitempty" bson:"approvedAt,omitempty"`
	CreatedAt         primitive.DateTime  `json:"createdAt" bson:"createdAt"`
}

// CaptainDecisionKind is the captain's disposition of a solved case
type CaptainDecisionKind string

// Captain decisions
const (
	DecisionSendToTrial CaptainDecisionKind = "SEND_TO_TRIAL"
	DecisionRelease     CaptainDecisionKind = "RELEASE"
)

// ChiefApproval is the chief's sign-off on a critical case. It is a three-way
// value so that "not yet decided" never reads as a rejection.
type ChiefApproval string

// Chief approval states
const (
	ChiefUnset    ChiefApproval = "UNSET"
	ChiefApproved ChiefApproval = "APPROVED"
	ChiefRejected ChiefApproval = "REJECTED"
)

// CaptainDecision holds the captain decision and the chief step for critical cases
type CaptainDecision struct {
	Decision  CaptainDecisionKind `json:"decision" bson:"decision"`
	Comment   string              `json:"comment" bson:"comment"`
	DecidedBy string              `json:"decidedBy" bson:"decidedBy"`
	DecidedAt primitive.DateTime  `json:"decidedAt" bson:"decidedAt"`

	ChiefApproval ChiefApproval       `json:"chiefApproval" bson:"chiefApproval"`
	ChiefBy       string              `json:"chiefBy,omitempty" bson:"chiefBy,omitempty"`
	ChiefAt       *primitive.DateTime `json:"chiefAt,omitempty" bson:"chiefAt,omitempty"`
	ChiefComment  string              `json:"chiefComment" bson:"chiefComment"`
}

// Verdict is the outcome of a trial
type Verdict string

// Trial verdicts
const (
	VerdictGuilty   Verdict = "GUILTY"
	VerdictInnocent Verdict = "INNOCENT"
)

// Trial holds the judge's verdict for a case
type Trial struct {
	Verdict               Verdict            `json:"verdict" bson:"verdict"`
	PunishmentTitle       string             `json:"punishmentTitle" bson:"punishmentTitle"`
	PunishmentDescription string             `json:"punishmentDescription" bson:"punishmentDescription"`
	JudgedBy              string             `json:"judgedBy" bson:"judgedBy"`
	JudgedAt              primitive.DateTime `json:"judgedAt" bson:"judgedAt"`
}

// CaseHistoryEntry records a single event in the case lifecycle
type CaseHistoryEntry struct {
	Action    string             `json:"action" bson:"action"`
	UserID    string             `json:"userID" bson:"userID"`
	From      CaseStatus         `json:"from,omitempty" bson:"from,omitempty"`
	To        CaseStatus         `json:"to,omitempty" bson:"to,omitempty"`
	Notes     string             `json:"notes,omitempty" bson:"notes,omitempty"`
	Timestamp primitive.DateTime `json:"timestamp" bson:"timestamp"`
}
