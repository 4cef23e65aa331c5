package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/insighthr/dossier-api/internal/domain"
)

// AssignmentStore defines the interface for form assignment
// persistence. Staff-facing operations are organization-scoped;
// GetByToken is the single lookup available to anonymous bearer-token
// holders and is scoped by the token alone.
type AssignmentStore interface {
	// Create saves a new assignment.
	// Returns ErrDuplicate if the token collides with an existing one.
	Create(ctx context.Context, assignment *domain.FormAssignment) error

	// GetByID retrieves an assignment by ID within the organization.
	// Returns ErrAssignmentNotFound if it does not exist.
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*domain.FormAssignment, error)

	// GetByToken retrieves an assignment by its bearer token.
	// Returns ErrTokenNotFound for unknown tokens.
	GetByToken(ctx context.Context, token string) (*domain.FormAssignment, error)

	// ListByAnalysis retrieves all assignments for an analysis, newest
	// first. Returns an empty slice when none exist.
	ListByAnalysis(ctx context.Context, orgID, analysisID uuid.UUID) ([]*domain.FormAssignment, error)

	// Update saves changes to an existing assignment.
	// Returns ErrAssignmentNotFound if it does not exist.
	Update(ctx context.Context, assignment *domain.FormAssignment) error

	// Delete removes an assignment. The completed-is-immutable rule is
	// enforced in the service layer; the store also refuses to delete a
	// completed row as a second line of defense.
	Delete(ctx context.Context, orgID, id uuid.UUID) error

	// WithTx returns an AssignmentStore bound to the provided transaction.
	WithTx(tx *sql.Tx) AssignmentStore
}
