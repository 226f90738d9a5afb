package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// SolveRequestStatus is the review state of a solve request
type SolveRequestStatus string

// Solve request statuses
const (
	SolveSubmitted SolveRequestStatus = "SUBMITTED"
	SolveApproved  SolveRequestStatus = "APPROVED"
	SolveRejected  SolveRequestStatus = "REJECTED"
)

// SolveRequest holds the structure for the solve_requests collection in mongo
type SolveRequest struct {
	ID      primitive.ObjectID  `json:"_id" bson:"_id"`
	Details SolveRequestDetails `json:"solveRequest" bson:"solveRequest"`
	Version int32               `json:"__v" bson:"__v"`
}

// SolveRequestDetails holds the detective's claim that a case is solved
type SolveRequestDetails struct {
	CaseID     string             `json:"caseID" bson:"caseID"`
	SuspectIDs []string           `json:"suspectIDs" bson:"suspectIDs"`
	Note       string             `json:"note" bson:"note"`
	Status     SolveRequestStatus `json:"status" bson:"status"`

	SubmittedBy string             `json:"submittedBy" bson:"submittedBy"`
	SubmittedAt primitive.DateTime `json:"submittedAt" bson:"submittedAt"`

	ReviewedBy    string              `json:"reviewedBy,omitempty" bson:"reviewedBy,omitempty"`
	ReviewedAt    *primitive.DateTime `json:"reviewedAt,omitempty" bson:"reviewedAt,omitempty"`
	ReviewComment string              `json:"reviewComment" bson:"reviewComment"`
}
