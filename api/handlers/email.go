package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/linesmerrill/police-case-api/api"
	"github.com/linesmerrill/police-case-api/config"
	"github.com/linesmerrill/police-case-api/models"
	templates "github.com/linesmerrill/police-case-api/templates/html"
)

const sendTimeout = 15 * time.Second

// EmailDeliverer mails case notifications through sendgrid to recipients
// whose email the directory knows
type EmailDeliverer struct {
	from      *mail.Email
	directory *api.Directory
	baseURL   string
	send      func(ctx context.Context, m *mail.SGMailV3) (int, error)
}

// NewEmailDeliverer returns nil when no sendgrid api key is configured
func NewEmailDeliverer(conf config.SendGridConfig, dir *api.Directory, baseURL string) *EmailDeliverer {
	if conf.APIKey == "" {
		return nil
	}
	client := sendgrid.NewSendClient(conf.APIKey)
	return &EmailDeliverer{
		from:      mail.NewEmail(conf.FromName, conf.FromEmail),
		directory: dir,
		baseURL:   strings.TrimRight(baseURL, "/"),
		send: func(ctx context.Context, m *mail.SGMailV3) (int, error) {
			resp, err := client.SendWithContext(ctx, m)
			if err != nil {
				return 0, err
			}
			return resp.StatusCode, nil
		},
	}
}

// Deliver implements workflow.Deliverer. The mail goes out in the background.
func (e *EmailDeliverer) Deliver(_ context.Context, n models.CaseNotification) {
	to, ok := e.directory.Email(n.Details.RecipientID)
	if !ok {
		return
	}
	m := e.message(to, n)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		status, err := e.send(ctx, m)
		if err != nil || status >= 300 {
			zap.S().Warnw("failed to send notification email",
				"recipient", n.Details.RecipientID,
				"status", status,
				"error", err,
			)
		}
	}()
}

func (e *EmailDeliverer) message(to string, n models.CaseNotification) *mail.SGMailV3 {
	subject := notificationSubject(n.Details.Type)
	caseURL := ""
	if e.baseURL != "" && n.Details.CaseID != "" {
		caseURL = fmt.Sprintf("%s/api/v1/cases/%s", e.baseURL, n.Details.CaseID)
	}
	return mail.NewSingleEmail(e.from, subject, mail.NewEmail("", to), n.Details.Message,
		templates.RenderNotificationEmail(subject, n.Details.Message, caseURL))
}

func notificationSubject(t models.NotificationType) string {
	switch t {
	case models.NotificationStatusChanged:
		return "Case status changed"
	case models.NotificationSolveReviewed:
		return "Solve request reviewed"
	}
	return "Case update"
}
