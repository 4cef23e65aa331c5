package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/insighthr/dossier-api/internal/domain"
	"github.com/insighthr/dossier-api/internal/store"
)

// PostgresAnalysisStore implements the store.AnalysisStore interface
// using a PostgreSQL database as the storage backend. The tables are
// owned by the analysis CRUD service; this store only reads.
type PostgresAnalysisStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresAnalysisStore creates a new PostgreSQL implementation of
// the AnalysisStore interface.
func NewPostgresAnalysisStore(db store.DBTX, logger *slog.Logger) *PostgresAnalysisStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresAnalysisStore{
		db:     db,
		logger: logger.With(slog.String("component", "analysis_store")),
	}
}

// Ensure PostgresAnalysisStore implements store.AnalysisStore interface
var _ store.AnalysisStore = (*PostgresAnalysisStore)(nil)

// GetByID implements store.AnalysisStore.GetByID.
// Returns store.ErrAnalysisNotFound if the analysis does not exist in
// the organization.
func (s *PostgresAnalysisStore) GetByID(ctx context.Context, orgID, id uuid.UUID) (*domain.Analysis, error) {
	query := `
		SELECT id, organization_id, subject_name,
			COALESCE(subject_role, ''), COALESCE(department, ''), created_at
		FROM analyses
		WHERE id = $1 AND organization_id = $2
	`
	var analysis domain.Analysis
	err := s.db.QueryRowContext(ctx, query, id, orgID).Scan(
		&analysis.ID,
		&analysis.OrganizationID,
		&analysis.SubjectName,
		&analysis.SubjectRole,
		&analysis.Department,
		&analysis.CreatedAt,
	)
	if err != nil {
		if mapped := MapError(err); store.IsNotFoundError(mapped) {
			return nil, store.ErrAnalysisNotFound
		}
		return nil, fmt.Errorf("failed to scan analysis: %w", err)
	}

	return &analysis, nil
}

// ListTranscripts implements store.AnalysisStore.ListTranscripts.
func (s *PostgresAnalysisStore) ListTranscripts(
	ctx context.Context,
	analysisID uuid.UUID,
) ([]*domain.Transcript, error) {
	query := `
		SELECT id, analysis_id, COALESCE(title, ''), COALESCE(text, ''), created_at
		FROM transcripts
		WHERE analysis_id = $1
		ORDER BY created_at
	`
	rows, err := s.db.QueryContext(ctx, query, analysisID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transcripts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	transcripts := []*domain.Transcript{}
	for rows.Next() {
		var t domain.Transcript
		if err := rows.Scan(&t.ID, &t.AnalysisID, &t.Title, &t.Text, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transcript: %w", err)
		}
		transcripts = append(transcripts, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transcripts: %w", err)
	}

	return transcripts, nil
}

// ListDocuments implements store.AnalysisStore.ListDocuments.
func (s *PostgresAnalysisStore) ListDocuments(
	ctx context.Context,
	analysisID uuid.UUID,
) ([]*domain.Document, error) {
	query := `
		SELECT id, analysis_id, file_name, COALESCE(extracted_text, ''), created_at
		FROM documents
		WHERE analysis_id = $1
		ORDER BY created_at
	`
	rows, err := s.db.QueryContext(ctx, query, analysisID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	documents := []*domain.Document{}
	for rows.Next() {
		var d domain.Document
		if err := rows.Scan(&d.ID, &d.AnalysisID, &d.FileName, &d.ExtractedText, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		documents = append(documents, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}

	return documents, nil
}
