package api

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Common request/response structures

// LoginRequest defines the payload for the staff login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for the login endpoint.
type AuthResponse struct {
	// UserID is the unique identifier for the authenticated staff user
	UserID uuid.UUID `json:"user_id"`

	// OrganizationID scopes every subsequent request made with the token
	OrganizationID uuid.UUID `json:"organization_id"`

	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"token"`

	// ExpiresAt is the ISO 8601 timestamp when the access token expires
	ExpiresAt string `json:"expires_at,omitempty"`
}

// RequestDossierRequest defines the payload for requesting dossier
// generation for an analysis.
type RequestDossierRequest struct {
	Prompt string `json:"prompt" validate:"required,min=1"`
}

// CreateAssignmentRequest defines the payload for assigning a form to
// a recipient.
type CreateAssignmentRequest struct {
	FormID      uuid.UUID  `json:"form_id"      validate:"required"`
	RecipientID uuid.UUID  `json:"recipient_id" validate:"required"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// SubmitFormRequest defines the payload for an anonymous form
// submission. Answers are validated structurally by the service; the
// API layer only requires that the field is present.
type SubmitFormRequest struct {
	Answers json.RawMessage `json:"answers" validate:"required"`
}

// CallbackRequest is the payload posted by the external workflow
// engine when a dossier job finishes. OrganizationID is carried in the
// payload because the callback is authenticated by shared secret, not
// by a staff token.
type CallbackRequest struct {
	JobID            uuid.UUID       `json:"job_id"            validate:"required"`
	OrganizationID   uuid.UUID       `json:"organization_id"   validate:"required"`
	Status           string          `json:"status"            validate:"required,oneof=completed failed"`
	ResultData       json.RawMessage `json:"result_data,omitempty"`
	ErrorMessage     string          `json:"error_message,omitempty"`
	ModelUsed        string          `json:"model_used,omitempty"`
	PromptTokens     int             `json:"prompt_tokens,omitempty"`
	CompletionTokens int             `json:"completion_tokens,omitempty"`
}

// PutSecretRequest defines the payload for storing a vault secret.
type PutSecretRequest struct {
	Value     string `json:"value" validate:"required"`
	Sensitive bool   `json:"sensitive"`
}
