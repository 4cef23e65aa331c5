package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/insighthr/dossier-api/internal/domain"
	"github.com/insighthr/dossier-api/internal/platform/logger"
	"github.com/insighthr/dossier-api/internal/store"
	"github.com/insighthr/dossier-api/internal/webhook"
)

// Dispatcher abstracts the outbound webhook call so tests can
// substitute a fake. Implemented by webhook.Dispatcher.
type Dispatcher interface {
	Dispatch(ctx context.Context, job *domain.DossierJob) webhook.Result
}

// CallbackInput is the payload delivered by the external workflow
// engine when a job finishes. Redelivery of the same jobID must be
// tolerated: applying a callback to an already-terminal job is a
// no-op, never an overwrite.
type CallbackInput struct {
	Status           domain.JobStatus
	ResultData       json.RawMessage
	ErrorMessage     string
	ModelUsed        string
	PromptTokens     int
	CompletionTokens int
}

// JobSummary is the polling shape for the latest job of an analysis.
// ProcessingSeconds is a staleness signal: how long the job has been
// in processing with no callback. Operators watch it; the system never
// times a processing job out on its own because the external engine is
// the source of truth for completion.
type JobSummary struct {
	JobID             uuid.UUID        `json:"job_id"`
	Status            domain.JobStatus `json:"status"`
	IsTest            bool             `json:"is_test"`
	ErrorMessage      string           `json:"error_message,omitempty"`
	ResultData        json.RawMessage  `json:"result_data,omitempty"`
	ModelUsed         string           `json:"model_used,omitempty"`
	ProcessingSeconds *int64           `json:"processing_seconds,omitempty"`
	StartedAt         *time.Time       `json:"started_at,omitempty"`
	CompletedAt       *time.Time       `json:"completed_at,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
}

// DossierService owns the dossier job lifecycle.
type DossierService interface {
	// RequestDossier creates a new pending job for the analysis and
	// dispatches it. Returns ErrJobAlreadyInProgress when another job
	// for the analysis is still active. The returned job reflects the
	// dispatch outcome (processing or failed) so callers can surface
	// status immediately.
	RequestDossier(ctx context.Context, orgID, analysisID, requestedBy uuid.UUID, prompt string) (*domain.DossierJob, error)

	// RetryDossier creates a fresh job for the analysis of a failed
	// job, reusing its prompt. Returns ErrJobNotFailed when the
	// referenced job is not failed. The old record is never mutated.
	RetryDossier(ctx context.Context, orgID, jobID, requestedBy uuid.UUID) (*domain.DossierJob, error)

	// ApplyCallback applies the external engine's terminal verdict to
	// a job. Idempotent under redelivery.
	ApplyCallback(ctx context.Context, orgID, jobID uuid.UUID, input CallbackInput) error

	// GetStatus returns a summary of the most recently created job for
	// the analysis. Safe to poll repeatedly.
	GetStatus(ctx context.Context, orgID, analysisID uuid.UUID) (*JobSummary, error)
}

// dossierService is the production DossierService implementation.
type dossierService struct {
	jobs       store.JobStore
	analyses   store.AnalysisStore
	dispatcher Dispatcher
	logger     *slog.Logger
	now        func() time.Time
}

// NewDossierService creates a DossierService.
func NewDossierService(
	jobs store.JobStore,
	analyses store.AnalysisStore,
	dispatcher Dispatcher,
	log *slog.Logger,
) (DossierService, error) {
	if jobs == nil || analyses == nil || dispatcher == nil {
		return nil, fmt.Errorf("dossier service dependencies cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &dossierService{
		jobs:       jobs,
		analyses:   analyses,
		dispatcher: dispatcher,
		logger:     log.With(slog.String("component", "dossier_service")),
		now:        time.Now,
	}, nil
}

func (s *dossierService) RequestDossier(
	ctx context.Context,
	orgID, analysisID, requestedBy uuid.UUID,
	prompt string,
) (*domain.DossierJob, error) {
	// Reject unknown or cross-tenant analyses before creating anything.
	if _, err := s.analyses.GetByID(ctx, orgID, analysisID); err != nil {
		return nil, err
	}

	job, err := domain.NewDossierJob(analysisID, orgID, requestedBy, prompt)
	if err != nil {
		return nil, err
	}

	return s.createAndDispatch(ctx, job)
}

func (s *dossierService) RetryDossier(
	ctx context.Context,
	orgID, jobID, requestedBy uuid.UUID,
) (*domain.DossierJob, error) {
	previous, err := s.jobs.GetByID(ctx, orgID, jobID)
	if err != nil {
		return nil, err
	}
	if previous.Status != domain.JobStatusFailed {
		return nil, ErrJobNotFailed
	}

	job, err := domain.NewDossierJob(previous.AnalysisID, orgID, requestedBy, previous.Prompt)
	if err != nil {
		return nil, err
	}

	return s.createAndDispatch(ctx, job)
}

// createAndDispatch inserts the pending job (the insert doubles as the
// single-flight check) and dispatches it. Dispatch happens outside any
// transaction: a network call must never hold a database transaction
// open.
func (s *dossierService) createAndDispatch(ctx context.Context, job *domain.DossierJob) (*domain.DossierJob, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.jobs.Create(ctx, job); err != nil {
		if errors.Is(err, store.ErrJobAlreadyActive) {
			return nil, ErrJobAlreadyInProgress
		}
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	result := s.dispatcher.Dispatch(ctx, job)
	job.IsTest = result.IsTest

	if result.Success {
		if err := job.MarkProcessing(s.now()); err != nil {
			return nil, err
		}
		log.Info("dossier job dispatched",
			slog.String("job_id", job.ID.String()),
			slog.String("analysis_id", job.AnalysisID.String()),
			slog.Bool("is_test", job.IsTest))
	} else {
		message := "dispatch failed"
		if result.Err != nil {
			message = result.Err.Error()
		}
		if err := job.MarkFailed(s.now(), message); err != nil {
			return nil, err
		}
		log.Warn("dossier job dispatch failed",
			slog.String("job_id", job.ID.String()),
			slog.String("analysis_id", job.AnalysisID.String()),
			slog.String("error", message))
	}

	if err := s.jobs.Update(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to record dispatch outcome: %w", err)
	}

	return job, nil
}

func (s *dossierService) ApplyCallback(
	ctx context.Context,
	orgID, jobID uuid.UUID,
	input CallbackInput,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	job, err := s.jobs.GetByID(ctx, orgID, jobID)
	if err != nil {
		return err
	}

	// Redelivery for an already-terminal job is a no-op: the stored
	// result must never be overwritten.
	if job.Terminal() {
		log.Info("ignoring callback for terminal job",
			slog.String("job_id", jobID.String()),
			slog.String("status", string(job.Status)))
		return nil
	}

	switch input.Status {
	case domain.JobStatusCompleted:
		// A completed callback can arrive for a job still marked
		// pending when the process died between dispatch and the
		// processing update. Promote through processing so the
		// transition table stays authoritative.
		if job.Status == domain.JobStatusPending {
			if err := job.MarkProcessing(s.now()); err != nil {
				return err
			}
		}
		if err := job.MarkCompleted(s.now(), input.ResultData, input.ModelUsed,
			input.PromptTokens, input.CompletionTokens); err != nil {
			return err
		}
	case domain.JobStatusFailed:
		message := input.ErrorMessage
		if message == "" {
			message = "external workflow reported failure"
		}
		if err := job.MarkFailed(s.now(), message); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: callback status %q", domain.ErrInvalidJobStatus, input.Status)
	}

	if err := s.jobs.Update(ctx, job); err != nil {
		return fmt.Errorf("failed to apply callback: %w", err)
	}

	log.Info("callback applied",
		slog.String("job_id", jobID.String()),
		slog.String("status", string(job.Status)))
	return nil
}

func (s *dossierService) GetStatus(ctx context.Context, orgID, analysisID uuid.UUID) (*JobSummary, error) {
	job, err := s.jobs.GetLatestByAnalysis(ctx, orgID, analysisID)
	if err != nil {
		return nil, err
	}

	summary := &JobSummary{
		JobID:        job.ID,
		Status:       job.Status,
		IsTest:       job.IsTest,
		ErrorMessage: job.ErrorMessage,
		ResultData:   job.ResultData,
		ModelUsed:    job.ModelUsed,
		StartedAt:    job.StartedAt,
		CompletedAt:  job.CompletedAt,
		CreatedAt:    job.CreatedAt,
	}

	if job.Status == domain.JobStatusProcessing && job.StartedAt != nil {
		age := int64(s.now().Sub(*job.StartedAt).Seconds())
		summary.ProcessingSeconds = &age
	}

	return summary, nil
}
