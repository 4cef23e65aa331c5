package domain

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for forms and submissions.
var (
	ErrEmptySubmissionAnswers = errors.New("submission answers cannot be empty")
	ErrInvalidSubmissionJSON  = errors.New("submission answers must be valid JSON")
)

// FormDefinition is a reusable questionnaire. A definition with a nil
// OrganizationID is globally visible; otherwise it is visible only to
// tenants holding an explicit grant.
type FormDefinition struct {
	ID               uuid.UUID  `json:"id"`
	OrganizationID   *uuid.UUID `json:"organization_id,omitempty"`
	Title            string     `json:"title"`
	Active           bool       `json:"active"`
	CurrentVersionID uuid.UUID  `json:"current_version_id"`
	CreatedAt        time.Time  `json:"created_at"`
}

// FormVersion is an immutable snapshot of a form's fields. Assignments
// pin a specific version so in-flight questionnaires are unaffected by
// later edits.
type FormVersion struct {
	ID        uuid.UUID       `json:"id"`
	FormID    uuid.UUID       `json:"form_id"`
	Number    int             `json:"number"`
	Fields    json.RawMessage `json:"fields"`
	CreatedAt time.Time       `json:"created_at"`
}

// FormSubmission is the completed answer set for one assignment.
type FormSubmission struct {
	ID            uuid.UUID       `json:"id"`
	AssignmentID  uuid.UUID       `json:"assignment_id"`
	AnalysisID    uuid.UUID       `json:"analysis_id"`
	FormVersionID uuid.UUID       `json:"form_version_id"`
	Answers       json.RawMessage `json:"answers"`
	SubmittedAt   time.Time       `json:"submitted_at"`
}

// NewFormSubmission creates a FormSubmission for the given assignment.
// Returns an error if the answers are empty or not valid JSON.
func NewFormSubmission(
	assignmentID, analysisID, formVersionID uuid.UUID,
	answers json.RawMessage,
) (*FormSubmission, error) {
	if len(answers) == 0 {
		return nil, ErrEmptySubmissionAnswers
	}
	if !json.Valid(answers) {
		return nil, ErrInvalidSubmissionJSON
	}

	return &FormSubmission{
		ID:            uuid.New(),
		AssignmentID:  assignmentID,
		AnalysisID:    analysisID,
		FormVersionID: formVersionID,
		Answers:       answers,
		SubmittedAt:   time.Now().UTC(),
	}, nil
}
