// Package sendgrid delivers assignment invite and reminder emails
// through the SendGrid API.
package sendgrid

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/insighthr/dossier-api/internal/config"
	"github.com/insighthr/dossier-api/internal/service"
)

// HTML template for invite and reminder emails. The single %s slots
// are recipient name, lead-in sentence, and form URL.
const inviteEmailHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<style>
  body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif; line-height: 1.6; color: #333; background-color: #f8f9fa; margin: 0; padding: 20px; }
  .container { max-width: 500px; margin: auto; background: #ffffff; border: 1px solid #e9ecef; border-radius: 8px; overflow: hidden; }
  .content { padding: 30px; text-align: left; }
  .button { display: inline-block; padding: 12px 24px; background-color: #2d6cdf; color: #ffffff; border-radius: 6px; text-decoration: none; }
  .footer { padding: 15px; font-size: 12px; color: #868e96; text-align: center; }
</style>
</head>
<body>
  <div class="container">
    <div class="content">
      <p>Hello %s,</p>
      <p>%s</p>
      <p><a class="button" href="%s">Open the form</a></p>
      <p>This link is personal to you. Please do not forward it.</p>
    </div>
    <div class="footer">
      If the button does not work, copy this address into your browser:<br>%s
    </div>
  </div>
</body>
</html>`

// Mailer implements service.Mailer using the SendGrid API.
type Mailer struct {
	client *sendgrid.Client
	from   *mail.Email
	logger *slog.Logger
}

// Ensure Mailer implements service.Mailer interface
var _ service.Mailer = (*Mailer)(nil)

// NewMailer creates a Mailer from mail configuration. Returns an error
// when the API key is missing; callers that want delivery to be
// optional check the key themselves and pass a nil Mailer downstream.
func NewMailer(cfg config.MailConfig, logger *slog.Logger) (*Mailer, error) {
	if cfg.SendGridAPIKey == "" {
		return nil, fmt.Errorf("sendgrid api key is required")
	}
	if cfg.FromAddress == "" {
		return nil, fmt.Errorf("mail from address is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Mailer{
		client: sendgrid.NewSendClient(cfg.SendGridAPIKey),
		from:   mail.NewEmail(cfg.FromName, cfg.FromAddress),
		logger: logger.With(slog.String("component", "sendgrid_mailer")),
	}, nil
}

// SendInvite implements service.Mailer.SendInvite.
func (m *Mailer) SendInvite(ctx context.Context, invite service.Invite) error {
	to := mail.NewEmail(invite.RecipientName, invite.RecipientEmail)

	subject := fmt.Sprintf("Please fill in: %s", invite.FormTitle)
	leadIn := fmt.Sprintf("you have been asked to complete the questionnaire %q.", invite.FormTitle)
	if invite.Reminder {
		subject = fmt.Sprintf("Reminder: %s is waiting for you", invite.FormTitle)
		leadIn = fmt.Sprintf("a friendly reminder that the questionnaire %q is still waiting for your answers.", invite.FormTitle)
	}

	plainText := fmt.Sprintf("Hello %s,\n\n%s\n\nOpen the form: %s\n\nThis link is personal to you. Please do not forward it.",
		invite.RecipientName, leadIn, invite.FormURL)
	htmlContent := fmt.Sprintf(inviteEmailHTML,
		invite.RecipientName, leadIn, invite.FormURL, invite.FormURL)

	msg := mail.NewSingleEmail(m.from, subject, to, plainText, htmlContent)
	resp, err := m.client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to send invite email: %w", err)
	}
	if resp.StatusCode >= 400 {
		m.logger.Warn("sendgrid rejected invite email",
			slog.Int("status", resp.StatusCode),
			slog.Bool("reminder", invite.Reminder))
		return fmt.Errorf("sendgrid rejected invite email: status %d", resp.StatusCode)
	}

	m.logger.Info("invite email sent",
		slog.Bool("reminder", invite.Reminder))
	return nil
}
