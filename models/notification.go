package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// NotificationType classifies a case notification
type NotificationType string

// Notification types
const (
	NotificationInfo          NotificationType = "INFO"
	NotificationStatusChanged NotificationType = "STATUS_CHANGED"
	NotificationSolveReviewed NotificationType = "SOLVE_REVIEWED"
	NotificationEvidenceAdded NotificationType = "EVIDENCE_ADDED"
)

// CaseNotification holds the structure for the case_notifications collection in mongo
type CaseNotification struct {
	ID      primitive.ObjectID      `json:"_id" bson:"_id"`
	Details CaseNotificationDetails `json:"notification" bson:"notification"`
	Version int32                   `json:"__v" bson:"__v"`
}

// CaseNotificationDetails holds a message for one recipient about a case
type CaseNotificationDetails struct {
	CaseID      string              `json:"caseID" bson:"caseID"`
	RecipientID string              `json:"recipientID" bson:"recipientID"`
	Type        NotificationType    `json:"type" bson:"type"`
	Message     string              `json:"message" bson:"message"`
	CreatedAt   primitive.DateTime  `json:"createdAt" bson:"createdAt"`
	ReadAt      *primitive.DateTime `json:"readAt,omitempty" bson:"readAt,omitempty"`
}

// IsRead reports whether the recipient has read the notification
func (n *CaseNotification) IsRead() bool {
	return n.Details.ReadAt != nil
}
