package service

import "context"

// Invite is the content of an assignment invite or reminder email.
type Invite struct {
	RecipientName  string
	RecipientEmail string
	FormTitle      string
	FormURL        string
	Reminder       bool
}

// Mailer delivers assignment invites. Implemented by the SendGrid
// client in platform/sendgrid; tests substitute a fake. Delivery
// failure is reported to the caller and never rolls back the
// assignment itself.
type Mailer interface {
	SendInvite(ctx context.Context, invite Invite) error
}
