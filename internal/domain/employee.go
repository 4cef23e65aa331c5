package domain

import (
	"time"

	"github.com/google/uuid"
)

// Employee is a person known to a tenant who can be the recipient of a
// form assignment. An employee without an email address can still be
// assigned a form; the link is then shared out of band and the
// assignment stays pending until completed.
type Employee struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	FullName       string    `json:"full_name"`
	Email          string    `json:"email,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
