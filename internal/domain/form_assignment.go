package domain

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AssignmentStatus represents the lifecycle state of a form assignment.
type AssignmentStatus string

// Possible assignment status values.
const (
	AssignmentStatusPending   AssignmentStatus = "pending"
	AssignmentStatusSent      AssignmentStatus = "sent"
	AssignmentStatusOpened    AssignmentStatus = "opened"
	AssignmentStatusCompleted AssignmentStatus = "completed"
)

// assignmentTransitions is the explicit table of legal status
// transitions. A recipient may complete directly from pending or sent
// (skipping opened), but completed has no outgoing edges.
var assignmentTransitions = map[AssignmentStatus][]AssignmentStatus{
	AssignmentStatusPending:   {AssignmentStatusSent, AssignmentStatusOpened, AssignmentStatusCompleted},
	AssignmentStatusSent:      {AssignmentStatusOpened, AssignmentStatusCompleted},
	AssignmentStatusOpened:    {AssignmentStatusCompleted},
	AssignmentStatusCompleted: {},
}

// Token entropy and lifetime for assignment bearer tokens.
const (
	assignmentTokenBytes = 32
	// AssignmentTokenLifetime is the fixed validity window of an
	// assignment token, measured from creation.
	AssignmentTokenLifetime = 30 * 24 * time.Hour
)

// Common validation errors for FormAssignment.
var (
	ErrEmptyAssignmentID          = errors.New("assignment ID cannot be empty")
	ErrEmptyAssignmentAnalysisID  = errors.New("assignment analysis ID cannot be empty")
	ErrEmptyAssignmentOrgID       = errors.New("assignment organization ID cannot be empty")
	ErrEmptyAssignmentFormID      = errors.New("assignment form ID cannot be empty")
	ErrEmptyAssignmentRecipientID = errors.New("assignment recipient ID cannot be empty")
	ErrEmptyAssignmentToken       = errors.New("assignment token cannot be empty")
	ErrInvalidAssignmentStatus    = errors.New("invalid assignment status")
	ErrAssignmentTransition       = errors.New("illegal assignment status transition")
)

// FormAssignment binds a form to a specific recipient for a specific
// analysis, gated by a single-purpose bearer token. Its lifecycle is
// independent of any dossier job; only completed submissions feed the
// dispatch payload.
type FormAssignment struct {
	ID             uuid.UUID        `json:"id"`
	AnalysisID     uuid.UUID        `json:"analysis_id"`
	OrganizationID uuid.UUID        `json:"organization_id"`
	FormID         uuid.UUID        `json:"form_id"`
	FormVersionID  uuid.UUID        `json:"form_version_id"`
	RecipientID    uuid.UUID        `json:"recipient_id"`
	Token          string           `json:"-"`
	TokenExpiresAt time.Time        `json:"token_expires_at"`
	Status         AssignmentStatus `json:"status"`
	DueDate        *time.Time       `json:"due_date,omitempty"`
	SentAt         *time.Time       `json:"sent_at,omitempty"`
	OpenedAt       *time.Time       `json:"opened_at,omitempty"`
	CompletedAt    *time.Time       `json:"completed_at,omitempty"`
	ReminderCount  int              `json:"reminder_count"`
	LastReminderAt *time.Time       `json:"last_reminder_at,omitempty"`
	SubmissionID   *uuid.UUID       `json:"submission_id,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

// NewFormAssignment creates a pending FormAssignment with a freshly
// generated high-entropy bearer token and a fixed 30-day expiry.
func NewFormAssignment(
	analysisID, organizationID, formID, formVersionID, recipientID uuid.UUID,
	dueDate *time.Time,
) (*FormAssignment, error) {
	token, err := generateAssignmentToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate assignment token: %w", err)
	}

	now := time.Now().UTC()
	assignment := &FormAssignment{
		ID:             uuid.New(),
		AnalysisID:     analysisID,
		OrganizationID: organizationID,
		FormID:         formID,
		FormVersionID:  formVersionID,
		RecipientID:    recipientID,
		Token:          token,
		TokenExpiresAt: now.Add(AssignmentTokenLifetime),
		Status:         AssignmentStatusPending,
		DueDate:        dueDate,
		CreatedAt:      now,
	}

	if err := assignment.Validate(); err != nil {
		return nil, err
	}

	return assignment, nil
}

// Validate checks if the FormAssignment has valid data.
func (a *FormAssignment) Validate() error {
	if a.ID == uuid.Nil {
		return ErrEmptyAssignmentID
	}
	if a.AnalysisID == uuid.Nil {
		return ErrEmptyAssignmentAnalysisID
	}
	if a.OrganizationID == uuid.Nil {
		return ErrEmptyAssignmentOrgID
	}
	if a.FormID == uuid.Nil || a.FormVersionID == uuid.Nil {
		return ErrEmptyAssignmentFormID
	}
	if a.RecipientID == uuid.Nil {
		return ErrEmptyAssignmentRecipientID
	}
	if a.Token == "" {
		return ErrEmptyAssignmentToken
	}
	if !isValidAssignmentStatus(a.Status) {
		return ErrInvalidAssignmentStatus
	}
	return nil
}

// Expired reports whether the token is past its expiry at the given
// instant. Expiry is evaluated live at every read rather than stored
// as a discrete status, so a missed background sweep can never leave a
// stale usable token. A completed assignment never expires; it is an
// immutable audit record.
func (a *FormAssignment) Expired(now time.Time) bool {
	if a.Status == AssignmentStatusCompleted {
		return false
	}
	return now.After(a.TokenExpiresAt)
}

// CanTransition reports whether moving from the current status to the
// given status is listed in the transition table.
func (a *FormAssignment) CanTransition(to AssignmentStatus) bool {
	for _, allowed := range assignmentTransitions[a.Status] {
		if allowed == to {
			return true
		}
	}
	return false
}

// MarkSent records successful delivery of the assignment invite.
func (a *FormAssignment) MarkSent(now time.Time) error {
	if !a.CanTransition(AssignmentStatusSent) {
		return ErrAssignmentTransition
	}
	a.Status = AssignmentStatusSent
	t := now.UTC()
	a.SentAt = &t
	return nil
}

// MarkOpened records the recipient resolving the assignment by token.
func (a *FormAssignment) MarkOpened(now time.Time) error {
	if !a.CanTransition(AssignmentStatusOpened) {
		return ErrAssignmentTransition
	}
	a.Status = AssignmentStatusOpened
	t := now.UTC()
	a.OpenedAt = &t
	return nil
}

// MarkCompleted records the recipient's submission and makes the
// assignment immutable.
func (a *FormAssignment) MarkCompleted(now time.Time, submissionID uuid.UUID) error {
	if !a.CanTransition(AssignmentStatusCompleted) {
		return ErrAssignmentTransition
	}
	a.Status = AssignmentStatusCompleted
	a.SubmissionID = &submissionID
	t := now.UTC()
	a.CompletedAt = &t
	return nil
}

// RecordReminder increments the reminder counter without changing
// status. Callers enforce that reminders are only sent from sent or
// opened.
func (a *FormAssignment) RecordReminder(now time.Time) {
	a.ReminderCount++
	t := now.UTC()
	a.LastReminderAt = &t
}

// generateAssignmentToken returns a hex-encoded token with 32 bytes of
// entropy from crypto/rand.
func generateAssignmentToken() (string, error) {
	buf := make([]byte, assignmentTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// isValidAssignmentStatus checks if the given status is a valid
// AssignmentStatus.
func isValidAssignmentStatus(status AssignmentStatus) bool {
	switch status {
	case AssignmentStatusPending, AssignmentStatusSent,
		AssignmentStatusOpened, AssignmentStatusCompleted:
		return true
	default:
		return false
	}
}
