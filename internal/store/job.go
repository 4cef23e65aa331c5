package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/insighthr/dossier-api/internal/domain"
)

// JobStore defines the interface for dossier job persistence.
// All reads and writes are organization-scoped: a job belonging to a
// different tenant behaves exactly like a missing job.
type JobStore interface {
	// Create saves a new job. The insert is the single-flight check:
	// returns ErrJobAlreadyActive when another job for the same
	// analysis is still pending or processing.
	Create(ctx context.Context, job *domain.DossierJob) error

	// GetByID retrieves a job by its unique ID within the organization.
	// Returns ErrJobNotFound if the job does not exist.
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*domain.DossierJob, error)

	// GetLatestByAnalysis retrieves the most recently created job for
	// the analysis, regardless of status. Used by polling clients.
	// Returns ErrJobNotFound when the analysis has no jobs.
	GetLatestByAnalysis(ctx context.Context, orgID, analysisID uuid.UUID) (*domain.DossierJob, error)

	// Update saves changes to an existing job.
	// Returns ErrJobNotFound if the job does not exist.
	Update(ctx context.Context, job *domain.DossierJob) error

	// WithTx returns a JobStore bound to the provided transaction.
	WithTx(tx *sql.Tx) JobStore
}
