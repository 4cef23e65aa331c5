package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/insighthr/dossier-api/internal/domain"
	"github.com/insighthr/dossier-api/internal/platform/logger"
	"github.com/insighthr/dossier-api/internal/store"
	"github.com/insighthr/dossier-api/internal/vault"
)

// DefaultTimeout bounds the outbound dispatch call so a slow or
// unreachable workflow engine cannot hold a request handler.
const DefaultTimeout = 30 * time.Second

// defaultAuthHeader is used when no header name secret is configured.
const defaultAuthHeader = "X-Webhook-Signature"

// AuthHeader returns the shared signing header name and value from the
// vault. The same header secures both directions: outbound dispatches
// carry it and inbound callbacks must present it. ok is false when the
// header value is not configured; the name falls back to the default.
func AuthHeader(ctx context.Context, v *vault.Vault) (name, value string, ok bool) {
	name, nameOK := v.GetCached(ctx, ServiceN8N, keyAuthHeaderName)
	if !nameOK || name == "" {
		name = defaultAuthHeader
	}
	value, ok = v.GetCached(ctx, ServiceN8N, keyAuthHeaderValue)
	if !ok || value == "" {
		return name, "", false
	}
	return name, value, true
}

// Dispatch failure modes callers may branch on.
var (
	// ErrTargetNotConfigured means no webhook URL resolved for the
	// task type. A configuration-absence condition, not a fault.
	ErrTargetNotConfigured = errors.New("webhook target not configured")

	// ErrSigningSecretMissing means the signing header value is absent
	// from the vault. A hard precondition failure: a payload must
	// never be sent unsigned.
	ErrSigningSecretMissing = errors.New("webhook signing secret not configured")
)

// Result is the outcome of one dispatch attempt.
type Result struct {
	Success bool
	IsTest  bool
	Err     error
}

// envelope is the opaque payload POSTed to the workflow engine.
type envelope struct {
	JobID          uuid.UUID         `json:"jobId"`
	AnalysisID     uuid.UUID         `json:"analysisId"`
	OrganizationID uuid.UUID         `json:"organizationId"`
	CallbackURL    string            `json:"callbackUrl"`
	Subject        subjectMeta       `json:"subject"`
	Transcripts    []transcriptItem  `json:"transcripts"`
	Documents      []documentItem    `json:"documents"`
	FormResponses  []formResponse    `json:"formResponses"`
	Prompt         string            `json:"prompt"`
}

type subjectMeta struct {
	Name       string `json:"name"`
	Role       string `json:"role"`
	Department string `json:"department"`
}

type transcriptItem struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

type documentItem struct {
	FileName string `json:"fileName"`
	Text     string `json:"text"`
}

type formResponse struct {
	FormVersionID uuid.UUID       `json:"formVersionId"`
	Answers       json.RawMessage `json:"answers"`
	SubmittedAt   time.Time       `json:"submittedAt"`
}

// Dispatcher assembles and sends dossier job payloads.
type Dispatcher struct {
	vault           *vault.Vault
	resolver        *Resolver
	analyses        store.AnalysisStore
	submissions     store.SubmissionStore
	client          *http.Client
	callbackBaseURL string
	logger          *slog.Logger
}

// NewDispatcher creates a Dispatcher. callbackBaseURL is the externally
// reachable base URL of this service; timeout falls back to
// DefaultTimeout when zero.
func NewDispatcher(
	v *vault.Vault,
	resolver *Resolver,
	analyses store.AnalysisStore,
	submissions store.SubmissionStore,
	callbackBaseURL string,
	timeout time.Duration,
	log *slog.Logger,
) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{
		vault:           v,
		resolver:        resolver,
		analyses:        analyses,
		submissions:     submissions,
		client:          &http.Client{Timeout: timeout},
		callbackBaseURL: strings.TrimSuffix(callbackBaseURL, "/"),
		logger:          log.With(slog.String("component", "dispatcher")),
	}
}

// Dispatch assembles the payload for the job and POSTs it to the
// resolved target with the signing header. Exactly one HTTP attempt is
// made; retries are an explicit separate user action on the job. The
// returned Result carries the resolved IsTest flag even on failure so
// the caller can persist it.
func (d *Dispatcher) Dispatch(ctx context.Context, job *domain.DossierJob) Result {
	log := logger.FromContextOrDefault(ctx, d.logger)

	target, ok := d.resolver.Resolve(ctx, TaskTypeDossier)
	if !ok {
		return Result{Err: ErrTargetNotConfigured}
	}

	headerName, headerValue, ok := AuthHeader(ctx, d.vault)
	if !ok {
		return Result{IsTest: target.IsTest, Err: ErrSigningSecretMissing}
	}

	env, err := d.buildEnvelope(ctx, job)
	if err != nil {
		return Result{IsTest: target.IsTest, Err: err}
	}

	body, err := json.Marshal(env)
	if err != nil {
		return Result{IsTest: target.IsTest, Err: fmt.Errorf("failed to encode payload: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.URL, bytes.NewReader(body))
	if err != nil {
		return Result{IsTest: target.IsTest, Err: fmt.Errorf("failed to build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerName, headerValue)

	log.Info("dispatching dossier job",
		slog.String("job_id", job.ID.String()),
		slog.String("analysis_id", job.AnalysisID.String()),
		slog.Bool("is_test", target.IsTest),
		slog.Int("transcripts", len(env.Transcripts)),
		slog.Int("documents", len(env.Documents)),
		slog.Int("form_responses", len(env.FormResponses)))

	resp, err := d.client.Do(req)
	if err != nil {
		return Result{IsTest: target.IsTest, Err: fmt.Errorf("webhook request failed: %w", err)}
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{
			IsTest: target.IsTest,
			Err:    fmt.Errorf("webhook returned status %d", resp.StatusCode),
		}
	}

	return Result{Success: true, IsTest: target.IsTest}
}

// buildEnvelope gathers input data from the three source aggregates.
// Empty transcripts and documents are omitted; only submissions of
// completed assignments are included (the store guarantees that), so
// partially filled questionnaires never leak into a payload.
func (d *Dispatcher) buildEnvelope(ctx context.Context, job *domain.DossierJob) (*envelope, error) {
	analysis, err := d.analyses.GetByID(ctx, job.OrganizationID, job.AnalysisID)
	if err != nil {
		return nil, fmt.Errorf("failed to load analysis: %w", err)
	}

	transcripts, err := d.analyses.ListTranscripts(ctx, job.AnalysisID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transcripts: %w", err)
	}
	documents, err := d.analyses.ListDocuments(ctx, job.AnalysisID)
	if err != nil {
		return nil, fmt.Errorf("failed to load documents: %w", err)
	}
	submissions, err := d.submissions.ListCompletedByAnalysis(ctx, job.AnalysisID)
	if err != nil {
		return nil, fmt.Errorf("failed to load form submissions: %w", err)
	}

	env := &envelope{
		JobID:          job.ID,
		AnalysisID:     job.AnalysisID,
		OrganizationID: job.OrganizationID,
		CallbackURL:    d.callbackBaseURL + "/api/webhooks/n8n/callback",
		Subject: subjectMeta{
			Name:       analysis.SubjectName,
			Role:       analysis.SubjectRole,
			Department: analysis.Department,
		},
		Transcripts:   make([]transcriptItem, 0, len(transcripts)),
		Documents:     make([]documentItem, 0, len(documents)),
		FormResponses: make([]formResponse, 0, len(submissions)),
		Prompt:        job.Prompt,
	}

	for _, tr := range transcripts {
		if strings.TrimSpace(tr.Text) == "" {
			continue
		}
		env.Transcripts = append(env.Transcripts, transcriptItem{Title: tr.Title, Text: tr.Text})
	}
	for _, doc := range documents {
		if strings.TrimSpace(doc.ExtractedText) == "" {
			continue
		}
		env.Documents = append(env.Documents, documentItem{FileName: doc.FileName, Text: doc.ExtractedText})
	}
	for _, sub := range submissions {
		env.FormResponses = append(env.FormResponses, formResponse{
			FormVersionID: sub.FormVersionID,
			Answers:       sub.Answers,
			SubmittedAt:   sub.SubmittedAt,
		})
	}

	return env, nil
}
