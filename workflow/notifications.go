package workflow

import (
	"context"

	"go.uber.org/zap"

	"github.com/linesmerrill/police-case-api/models"
)

// Deliverer pushes a stored notification to its recipient. Delivery is best
// effort: a failure is the deliverer's to log, never the transition's.
type Deliverer interface {
	Deliver(ctx context.Context, n models.CaseNotification)
}

// NotificationService stores case notifications and fans them out
type NotificationService struct {
	base
	deliverers []Deliverer
}

// notify records a notification for recipient. It runs after the transition
// committed, so failures are logged and swallowed.
func (s *NotificationService) notify(ctx context.Context, caseID, recipientID string, kind models.NotificationType, message string) {
	if recipientID == "" {
		return
	}
	n := &models.CaseNotification{Details: models.CaseNotificationDetails{
		CaseID:      caseID,
		RecipientID: recipientID,
		Type:        kind,
		Message:     message,
		CreatedAt:   s.now(),
	}}
	if err := s.stores.Notifications.Insert(ctx, n); err != nil {
		zap.S().Warnw("failed to store notification", "case", caseID, "recipient", recipientID, "error", err)
		return
	}
	for _, d := range s.deliverers {
		d.Deliver(ctx, *n)
	}
}

// List returns the actor's notifications, newest first
func (s *NotificationService) List(ctx context.Context, actor *models.Actor) ([]models.CaseNotification, error) {
	notifications, err := s.stores.Notifications.FindByRecipient(ctx, actor.ID)
	if err != nil {
		return nil, fromStore(err, "Notification")
	}
	return notifications, nil
}

// MarkRead marks one of the actor's notifications read. Someone else's
// notification reads as not found.
func (s *NotificationService) MarkRead(ctx context.Context, actor *models.Actor, id string) (*models.CaseNotification, error) {
	oid, err := parseID(id, "Notification")
	if err != nil {
		return nil, err
	}
	n, err := s.stores.Notifications.MarkRead(ctx, oid, actor.ID, s.clock())
	if err != nil {
		return nil, fromStore(err, "Notification")
	}
	return n, nil
}
