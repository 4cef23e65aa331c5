package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/insighthr/dossier-api/internal/domain"
)

// AnalysisStore defines read access to the analysis aggregate and the
// source material attached to it. The CRUD surface for analyses lives
// in another part of the product; this core only reads.
type AnalysisStore interface {
	// GetByID retrieves an analysis by ID within the organization.
	// Returns ErrAnalysisNotFound if it does not exist.
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*domain.Analysis, error)

	// ListTranscripts retrieves all transcripts for an analysis,
	// including empty ones; callers filter.
	ListTranscripts(ctx context.Context, analysisID uuid.UUID) ([]*domain.Transcript, error)

	// ListDocuments retrieves all documents for an analysis, including
	// ones whose text extraction produced nothing; callers filter.
	ListDocuments(ctx context.Context, analysisID uuid.UUID) ([]*domain.Document, error)
}
