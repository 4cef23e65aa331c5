package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/insighthr/dossier-api/internal/domain"
	"github.com/insighthr/dossier-api/internal/platform/logger"
	"github.com/insighthr/dossier-api/internal/store"
)

// PostgresFormStore implements the store.FormStore interface using a
// PostgreSQL database as the storage backend.
type PostgresFormStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresFormStore creates a new PostgreSQL implementation of the
// FormStore interface.
func NewPostgresFormStore(db store.DBTX, logger *slog.Logger) *PostgresFormStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresFormStore{
		db:     db,
		logger: logger.With(slog.String("component", "form_store")),
	}
}

// Ensure PostgresFormStore implements store.FormStore interface
var _ store.FormStore = (*PostgresFormStore)(nil)

// GetDefinition implements store.FormStore.GetDefinition.
func (s *PostgresFormStore) GetDefinition(ctx context.Context, id uuid.UUID) (*domain.FormDefinition, error) {
	query := `
		SELECT id, organization_id, title, active, current_version_id, created_at
		FROM form_definitions
		WHERE id = $1
	`
	var form domain.FormDefinition
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&form.ID,
		&form.OrganizationID,
		&form.Title,
		&form.Active,
		&form.CurrentVersionID,
		&form.CreatedAt,
	)
	if err != nil {
		if mapped := MapError(err); store.IsNotFoundError(mapped) {
			return nil, store.ErrFormNotFound
		}
		return nil, fmt.Errorf("failed to scan form definition: %w", err)
	}

	return &form, nil
}

// GetVersion implements store.FormStore.GetVersion.
func (s *PostgresFormStore) GetVersion(ctx context.Context, id uuid.UUID) (*domain.FormVersion, error) {
	query := `
		SELECT id, form_id, number, fields, created_at
		FROM form_versions
		WHERE id = $1
	`
	var version domain.FormVersion
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&version.ID,
		&version.FormID,
		&version.Number,
		&version.Fields,
		&version.CreatedAt,
	)
	if err != nil {
		if mapped := MapError(err); store.IsNotFoundError(mapped) {
			return nil, store.ErrFormNotFound
		}
		return nil, fmt.Errorf("failed to scan form version: %w", err)
	}

	return &version, nil
}

// HasTenantAccess implements store.FormStore.HasTenantAccess. A form
// with a NULL organization_id is globally visible; otherwise an
// explicit grant row must exist.
func (s *PostgresFormStore) HasTenantAccess(ctx context.Context, formID, orgID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM form_definitions f
			WHERE f.id = $1 AND (
				f.organization_id IS NULL
				OR f.organization_id = $2
				OR EXISTS (
					SELECT 1 FROM form_grants g
					WHERE g.form_id = f.id AND g.organization_id = $2
				)
			)
		)
	`
	var allowed bool
	if err := s.db.QueryRowContext(ctx, query, formID, orgID).Scan(&allowed); err != nil {
		return false, fmt.Errorf("failed to check form access: %w", err)
	}
	return allowed, nil
}

// PostgresSubmissionStore implements the store.SubmissionStore
// interface using a PostgreSQL database as the storage backend.
type PostgresSubmissionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSubmissionStore creates a new PostgreSQL implementation
// of the SubmissionStore interface.
func NewPostgresSubmissionStore(db store.DBTX, logger *slog.Logger) *PostgresSubmissionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSubmissionStore{
		db:     db,
		logger: logger.With(slog.String("component", "submission_store")),
	}
}

// Ensure PostgresSubmissionStore implements store.SubmissionStore interface
var _ store.SubmissionStore = (*PostgresSubmissionStore)(nil)

// Create implements store.SubmissionStore.Create.
func (s *PostgresSubmissionStore) Create(ctx context.Context, submission *domain.FormSubmission) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO form_submissions (id, assignment_id, analysis_id, form_version_id, answers, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		submission.ID,
		submission.AssignmentID,
		submission.AnalysisID,
		submission.FormVersionID,
		submission.Answers,
		submission.SubmittedAt,
	)
	if err != nil {
		log.Error("failed to create submission",
			slog.String("error", err.Error()),
			slog.String("submission_id", submission.ID.String()))
		return MapError(err)
	}

	return nil
}

// ListCompletedByAnalysis implements
// store.SubmissionStore.ListCompletedByAnalysis. The join guarantees
// only submissions of completed assignments leave this layer.
func (s *PostgresSubmissionStore) ListCompletedByAnalysis(
	ctx context.Context,
	analysisID uuid.UUID,
) ([]*domain.FormSubmission, error) {
	query := `
		SELECT s.id, s.assignment_id, s.analysis_id, s.form_version_id, s.answers, s.submitted_at
		FROM form_submissions s
		JOIN form_assignments a ON a.submission_id = s.id
		WHERE s.analysis_id = $1 AND a.status = 'completed'
		ORDER BY s.submitted_at
	`
	rows, err := s.db.QueryContext(ctx, query, analysisID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	submissions := []*domain.FormSubmission{}
	for rows.Next() {
		var sub domain.FormSubmission
		err := rows.Scan(
			&sub.ID,
			&sub.AssignmentID,
			&sub.AnalysisID,
			&sub.FormVersionID,
			&sub.Answers,
			&sub.SubmittedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		submissions = append(submissions, &sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate submissions: %w", err)
	}

	return submissions, nil
}

// WithTx implements store.SubmissionStore.WithTx.
func (s *PostgresSubmissionStore) WithTx(tx *sql.Tx) store.SubmissionStore {
	return &PostgresSubmissionStore{
		db:     tx,
		logger: s.logger,
	}
}
