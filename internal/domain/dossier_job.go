package domain

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the processing state of a dossier job.
type JobStatus string

// Possible job status values.
const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// jobTransitions is the explicit table of legal status transitions.
// Terminal states have no outgoing edges; any transition not listed
// here is rejected at the domain boundary.
var jobTransitions = map[JobStatus][]JobStatus{
	JobStatusPending:    {JobStatusProcessing, JobStatusFailed},
	JobStatusProcessing: {JobStatusCompleted, JobStatusFailed},
	JobStatusCompleted:  {},
	JobStatusFailed:     {},
}

// Common validation errors for DossierJob.
var (
	ErrEmptyJobID         = errors.New("job ID cannot be empty")
	ErrEmptyJobAnalysisID = errors.New("job analysis ID cannot be empty")
	ErrEmptyJobOrgID      = errors.New("job organization ID cannot be empty")
	ErrEmptyJobPrompt     = errors.New("job prompt cannot be empty")
	ErrInvalidJobStatus   = errors.New("invalid job status")
	ErrJobTransition      = errors.New("illegal job status transition")
)

// DossierJob represents one attempt to produce an externally computed
// dossier for an analysis. Retries never mutate a terminal job; they
// create a fresh DossierJob for the same analysis so the full audit
// history is preserved.
type DossierJob struct {
	ID               uuid.UUID       `json:"id"`
	AnalysisID       uuid.UUID       `json:"analysis_id"`
	OrganizationID   uuid.UUID       `json:"organization_id"`
	Status           JobStatus       `json:"status"`
	Prompt           string          `json:"prompt"`
	ResultData       json.RawMessage `json:"result_data,omitempty"`
	ErrorMessage     string          `json:"error_message,omitempty"`
	ModelUsed        string          `json:"model_used,omitempty"`
	PromptTokens     int             `json:"prompt_tokens"`
	CompletionTokens int             `json:"completion_tokens"`
	RequestedBy      uuid.UUID       `json:"requested_by"`
	IsTest           bool            `json:"is_test"`
	StartedAt        *time.Time      `json:"started_at,omitempty"`
	CompletedAt      *time.Time      `json:"completed_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// NewDossierJob creates a new pending DossierJob for the given analysis.
// Returns an error if validation fails.
func NewDossierJob(
	analysisID, organizationID, requestedBy uuid.UUID,
	prompt string,
) (*DossierJob, error) {
	job := &DossierJob{
		ID:             uuid.New(),
		AnalysisID:     analysisID,
		OrganizationID: organizationID,
		Status:         JobStatusPending,
		Prompt:         prompt,
		RequestedBy:    requestedBy,
		CreatedAt:      time.Now().UTC(),
	}

	if err := job.Validate(); err != nil {
		return nil, err
	}

	return job, nil
}

// Validate checks if the DossierJob has valid data.
func (j *DossierJob) Validate() error {
	if j.ID == uuid.Nil {
		return ErrEmptyJobID
	}
	if j.AnalysisID == uuid.Nil {
		return ErrEmptyJobAnalysisID
	}
	if j.OrganizationID == uuid.Nil {
		return ErrEmptyJobOrgID
	}
	if j.Prompt == "" {
		return ErrEmptyJobPrompt
	}
	if !isValidJobStatus(j.Status) {
		return ErrInvalidJobStatus
	}
	return nil
}

// Terminal reports whether the job has reached a terminal state.
func (j *DossierJob) Terminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}

// Active reports whether the job counts against the single-flight
// guard for its analysis.
func (j *DossierJob) Active() bool {
	return j.Status == JobStatusPending || j.Status == JobStatusProcessing
}

// CanTransition reports whether moving from the current status to the
// given status is listed in the transition table.
func (j *DossierJob) CanTransition(to JobStatus) bool {
	for _, allowed := range jobTransitions[j.Status] {
		if allowed == to {
			return true
		}
	}
	return false
}

// MarkProcessing transitions the job to processing and stamps StartedAt.
func (j *DossierJob) MarkProcessing(now time.Time) error {
	if !j.CanTransition(JobStatusProcessing) {
		return ErrJobTransition
	}
	j.Status = JobStatusProcessing
	t := now.UTC()
	j.StartedAt = &t
	return nil
}

// MarkCompleted transitions the job to completed, recording the result
// payload and usage data reported by the external workflow engine.
func (j *DossierJob) MarkCompleted(
	now time.Time,
	resultData json.RawMessage,
	modelUsed string,
	promptTokens, completionTokens int,
) error {
	if !j.CanTransition(JobStatusCompleted) {
		return ErrJobTransition
	}
	j.Status = JobStatusCompleted
	j.ResultData = resultData
	j.ModelUsed = modelUsed
	j.PromptTokens = promptTokens
	j.CompletionTokens = completionTokens
	t := now.UTC()
	j.CompletedAt = &t
	return nil
}

// MarkFailed transitions the job to failed with a human-readable error
// message and stamps CompletedAt.
func (j *DossierJob) MarkFailed(now time.Time, message string) error {
	if !j.CanTransition(JobStatusFailed) {
		return ErrJobTransition
	}
	j.Status = JobStatusFailed
	j.ErrorMessage = message
	t := now.UTC()
	j.CompletedAt = &t
	return nil
}

// isValidJobStatus checks if the given status is a valid JobStatus.
func isValidJobStatus(status JobStatus) bool {
	switch status {
	case JobStatusPending, JobStatusProcessing, JobStatusCompleted, JobStatusFailed:
		return true
	default:
		return false
	}
}
