package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/insighthr/dossier-api/internal/domain"
)

// FormStore defines read access to form definitions and versions.
type FormStore interface {
	// GetDefinition retrieves a form definition by ID.
	// Returns ErrFormNotFound if it does not exist.
	GetDefinition(ctx context.Context, id uuid.UUID) (*domain.FormDefinition, error)

	// GetVersion retrieves a form version by ID.
	// Returns ErrFormNotFound if it does not exist.
	GetVersion(ctx context.Context, id uuid.UUID) (*domain.FormVersion, error)

	// HasTenantAccess reports whether the organization may use the
	// form: either the form is globally visible or the tenant holds an
	// explicit grant.
	HasTenantAccess(ctx context.Context, formID, orgID uuid.UUID) (bool, error)
}

// SubmissionStore defines the interface for form submission
// persistence.
type SubmissionStore interface {
	// Create saves a new submission.
	Create(ctx context.Context, submission *domain.FormSubmission) error

	// ListCompletedByAnalysis retrieves the submissions of completed
	// assignments for an analysis. Submissions linked to non-completed
	// assignments are never returned; their raw text must not leak
	// into dispatch payloads.
	ListCompletedByAnalysis(ctx context.Context, analysisID uuid.UUID) ([]*domain.FormSubmission, error)

	// WithTx returns a SubmissionStore bound to the provided transaction.
	WithTx(tx *sql.Tx) SubmissionStore
}
