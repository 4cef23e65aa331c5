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

// PostgresJobStore implements the store.JobStore interface
// using a PostgreSQL database as the storage backend.
type PostgresJobStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresJobStore creates a new PostgreSQL implementation of the
// JobStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
func NewPostgresJobStore(db store.DBTX, logger *slog.Logger) *PostgresJobStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresJobStore{
		db:     db,
		logger: logger.With(slog.String("component", "job_store")),
	}
}

// Ensure PostgresJobStore implements store.JobStore interface
var _ store.JobStore = (*PostgresJobStore)(nil)

const jobColumns = `id, analysis_id, organization_id, status, prompt, result_data,
		COALESCE(error_message, ''), COALESCE(model_used, ''),
		prompt_tokens, completion_tokens, requested_by, is_test,
		started_at, completed_at, created_at`

// Create implements store.JobStore.Create. The insert races against
// the dossier_jobs_one_active_per_analysis partial unique index; the
// loser gets store.ErrJobAlreadyActive.
func (s *PostgresJobStore) Create(ctx context.Context, job *domain.DossierJob) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := job.Validate(); err != nil {
		log.Warn("job validation failed during create",
			slog.String("error", err.Error()),
			slog.String("job_id", job.ID.String()))
		return err
	}

	query := `
		INSERT INTO dossier_jobs (id, analysis_id, organization_id, status, prompt,
			result_data, error_message, model_used, prompt_tokens, completion_tokens,
			requested_by, is_test, started_at, completed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		job.ID,
		job.AnalysisID,
		job.OrganizationID,
		job.Status,
		job.Prompt,
		job.ResultData,
		job.ErrorMessage,
		job.ModelUsed,
		job.PromptTokens,
		job.CompletionTokens,
		job.RequestedBy,
		job.IsTest,
		job.StartedAt,
		job.CompletedAt,
		job.CreatedAt,
	)
	if err != nil {
		mapped := MapError(err)
		if store.IsDuplicateError(mapped) {
			log.Info("job creation blocked by active job",
				slog.String("analysis_id", job.AnalysisID.String()))
		} else {
			log.Error("failed to create job",
				slog.String("error", err.Error()),
				slog.String("job_id", job.ID.String()))
		}
		return mapped
	}

	return nil
}

// GetByID implements store.JobStore.GetByID.
// Returns store.ErrJobNotFound if the job does not exist in the
// organization.
func (s *PostgresJobStore) GetByID(ctx context.Context, orgID, id uuid.UUID) (*domain.DossierJob, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM dossier_jobs
		WHERE id = $1 AND organization_id = $2
	`
	return s.scanJob(s.db.QueryRowContext(ctx, query, id, orgID))
}

// GetLatestByAnalysis implements store.JobStore.GetLatestByAnalysis.
func (s *PostgresJobStore) GetLatestByAnalysis(
	ctx context.Context,
	orgID, analysisID uuid.UUID,
) (*domain.DossierJob, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM dossier_jobs
		WHERE analysis_id = $1 AND organization_id = $2
		ORDER BY created_at DESC
		LIMIT 1
	`
	return s.scanJob(s.db.QueryRowContext(ctx, query, analysisID, orgID))
}

// Update implements store.JobStore.Update.
// Returns store.ErrJobNotFound if the job does not exist.
func (s *PostgresJobStore) Update(ctx context.Context, job *domain.DossierJob) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := job.Validate(); err != nil {
		log.Warn("job validation failed during update",
			slog.String("error", err.Error()),
			slog.String("job_id", job.ID.String()))
		return err
	}

	query := `
		UPDATE dossier_jobs
		SET status = $1, result_data = $2, error_message = NULLIF($3, ''),
			model_used = NULLIF($4, ''), prompt_tokens = $5, completion_tokens = $6,
			is_test = $7, started_at = $8, completed_at = $9
		WHERE id = $10 AND organization_id = $11
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		job.Status,
		job.ResultData,
		job.ErrorMessage,
		job.ModelUsed,
		job.PromptTokens,
		job.CompletionTokens,
		job.IsTest,
		job.StartedAt,
		job.CompletedAt,
		job.ID,
		job.OrganizationID,
	)
	if err != nil {
		log.Error("failed to update job",
			slog.String("error", err.Error()),
			slog.String("job_id", job.ID.String()))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrJobNotFound)
}

// WithTx implements store.JobStore.WithTx.
func (s *PostgresJobStore) WithTx(tx *sql.Tx) store.JobStore {
	return &PostgresJobStore{
		db:     tx,
		logger: s.logger,
	}
}

// scanJob maps a single row onto a DossierJob.
func (s *PostgresJobStore) scanJob(row *sql.Row) (*domain.DossierJob, error) {
	var job domain.DossierJob
	err := row.Scan(
		&job.ID,
		&job.AnalysisID,
		&job.OrganizationID,
		&job.Status,
		&job.Prompt,
		&job.ResultData,
		&job.ErrorMessage,
		&job.ModelUsed,
		&job.PromptTokens,
		&job.CompletionTokens,
		&job.RequestedBy,
		&job.IsTest,
		&job.StartedAt,
		&job.CompletedAt,
		&job.CreatedAt,
	)
	if err != nil {
		if mapped := MapError(err); store.IsNotFoundError(mapped) {
			return nil, store.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to scan job: %w", err)
	}
	return &job, nil
}
