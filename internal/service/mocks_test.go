package service

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"
	"github.com/insighthr/dossier-api/internal/domain"
	"github.com/insighthr/dossier-api/internal/store"
	"github.com/insighthr/dossier-api/internal/webhook"
)

// fakeJobStore is an in-memory JobStore. Create enforces the same
// single-flight invariant the partial unique index provides in
// Postgres, under a mutex so concurrent tests exercise the race.
type fakeJobStore struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*domain.DossierJob
	seq  int
}

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{jobs: make(map[uuid.UUID]*domain.DossierJob)}
}

func (f *fakeJobStore) Create(_ context.Context, job *domain.DossierJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.jobs {
		if existing.AnalysisID == job.AnalysisID && existing.Active() {
			return store.ErrJobAlreadyActive
		}
	}
	f.seq++
	copied := *job
	f.jobs[job.ID] = &copied
	return nil
}

func (f *fakeJobStore) GetByID(_ context.Context, orgID, id uuid.UUID) (*domain.DossierJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok || job.OrganizationID != orgID {
		return nil, store.ErrJobNotFound
	}
	copied := *job
	return &copied, nil
}

func (f *fakeJobStore) GetLatestByAnalysis(_ context.Context, orgID, analysisID uuid.UUID) (*domain.DossierJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *domain.DossierJob
	for _, job := range f.jobs {
		if job.OrganizationID != orgID || job.AnalysisID != analysisID {
			continue
		}
		if latest == nil || job.CreatedAt.After(latest.CreatedAt) {
			latest = job
		}
	}
	if latest == nil {
		return nil, store.ErrJobNotFound
	}
	copied := *latest
	return &copied, nil
}

func (f *fakeJobStore) Update(_ context.Context, job *domain.DossierJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.jobs[job.ID]; !ok {
		return store.ErrJobNotFound
	}
	copied := *job
	f.jobs[job.ID] = &copied
	return nil
}

func (f *fakeJobStore) WithTx(_ *sql.Tx) store.JobStore { return f }

// activeCount reports how many non-terminal jobs exist for the analysis.
func (f *fakeJobStore) activeCount(analysisID uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, job := range f.jobs {
		if job.AnalysisID == analysisID && job.Active() {
			n++
		}
	}
	return n
}

// fakeAnalysisStore serves a fixed set of analyses.
type fakeAnalysisStore struct {
	analyses    map[uuid.UUID]*domain.Analysis
	transcripts []*domain.Transcript
	documents   []*domain.Document
}

func newFakeAnalysisStore(analyses ...*domain.Analysis) *fakeAnalysisStore {
	m := make(map[uuid.UUID]*domain.Analysis)
	for _, a := range analyses {
		m[a.ID] = a
	}
	return &fakeAnalysisStore{analyses: m}
}

func (f *fakeAnalysisStore) GetByID(_ context.Context, orgID, id uuid.UUID) (*domain.Analysis, error) {
	a, ok := f.analyses[id]
	if !ok || a.OrganizationID != orgID {
		return nil, store.ErrAnalysisNotFound
	}
	return a, nil
}

func (f *fakeAnalysisStore) ListTranscripts(_ context.Context, _ uuid.UUID) ([]*domain.Transcript, error) {
	return f.transcripts, nil
}

func (f *fakeAnalysisStore) ListDocuments(_ context.Context, _ uuid.UUID) ([]*domain.Document, error) {
	return f.documents, nil
}

// fakeDispatcher returns a scripted result and counts invocations.
type fakeDispatcher struct {
	mu     sync.Mutex
	result webhook.Result
	calls  int
}

func (f *fakeDispatcher) Dispatch(_ context.Context, _ *domain.DossierJob) webhook.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.result
}

func (f *fakeDispatcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeAssignmentStore is an in-memory AssignmentStore.
type fakeAssignmentStore struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*domain.FormAssignment
}

func newFakeAssignmentStore() *fakeAssignmentStore {
	return &fakeAssignmentStore{rows: make(map[uuid.UUID]*domain.FormAssignment)}
}

func (f *fakeAssignmentStore) Create(_ context.Context, a *domain.FormAssignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.rows {
		if existing.Token == a.Token {
			return store.ErrDuplicate
		}
	}
	copied := *a
	f.rows[a.ID] = &copied
	return nil
}

func (f *fakeAssignmentStore) GetByID(_ context.Context, orgID, id uuid.UUID) (*domain.FormAssignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.rows[id]
	if !ok || a.OrganizationID != orgID {
		return nil, store.ErrAssignmentNotFound
	}
	copied := *a
	return &copied, nil
}

func (f *fakeAssignmentStore) GetByToken(_ context.Context, token string) (*domain.FormAssignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.rows {
		if a.Token == token {
			copied := *a
			return &copied, nil
		}
	}
	return nil, store.ErrTokenNotFound
}

func (f *fakeAssignmentStore) ListByAnalysis(_ context.Context, orgID, analysisID uuid.UUID) ([]*domain.FormAssignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.FormAssignment
	for _, a := range f.rows {
		if a.OrganizationID == orgID && a.AnalysisID == analysisID {
			copied := *a
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeAssignmentStore) Update(_ context.Context, a *domain.FormAssignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[a.ID]; !ok {
		return store.ErrAssignmentNotFound
	}
	copied := *a
	f.rows[a.ID] = &copied
	return nil
}

func (f *fakeAssignmentStore) Delete(_ context.Context, orgID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.rows[id]
	if !ok || a.OrganizationID != orgID {
		return store.ErrAssignmentNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeAssignmentStore) WithTx(_ *sql.Tx) store.AssignmentStore { return f }

// fakeSubmissionStore is an in-memory SubmissionStore.
type fakeSubmissionStore struct {
	mu   sync.Mutex
	rows []*domain.FormSubmission
}

func (f *fakeSubmissionStore) Create(_ context.Context, s *domain.FormSubmission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *s
	f.rows = append(f.rows, &copied)
	return nil
}

func (f *fakeSubmissionStore) ListCompletedByAnalysis(_ context.Context, _ uuid.UUID) ([]*domain.FormSubmission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*domain.FormSubmission(nil), f.rows...), nil
}

func (f *fakeSubmissionStore) WithTx(_ *sql.Tx) store.SubmissionStore { return f }

func (f *fakeSubmissionStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

// fakeFormStore serves one form definition and version.
type fakeFormStore struct {
	definition *domain.FormDefinition
	version    *domain.FormVersion
	granted    map[uuid.UUID]bool
}

func (f *fakeFormStore) GetDefinition(_ context.Context, id uuid.UUID) (*domain.FormDefinition, error) {
	if f.definition == nil || f.definition.ID != id {
		return nil, store.ErrFormNotFound
	}
	return f.definition, nil
}

func (f *fakeFormStore) GetVersion(_ context.Context, id uuid.UUID) (*domain.FormVersion, error) {
	if f.version == nil || f.version.ID != id {
		return nil, store.ErrFormNotFound
	}
	return f.version, nil
}

func (f *fakeFormStore) HasTenantAccess(_ context.Context, _ uuid.UUID, orgID uuid.UUID) (bool, error) {
	if f.definition != nil && f.definition.OrganizationID == nil {
		return true, nil
	}
	return f.granted[orgID], nil
}

// fakeEmployeeStore serves a fixed set of employees.
type fakeEmployeeStore struct {
	employees map[uuid.UUID]*domain.Employee
}

func (f *fakeEmployeeStore) GetByID(_ context.Context, orgID, id uuid.UUID) (*domain.Employee, error) {
	e, ok := f.employees[id]
	if !ok || e.OrganizationID != orgID {
		return nil, store.ErrEmployeeNotFound
	}
	return e, nil
}

// fakeMailer records invites and optionally fails.
type fakeMailer struct {
	mu      sync.Mutex
	invites []Invite
	fail    bool
}

func (f *fakeMailer) SendInvite(_ context.Context, invite Invite) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errDeliveryDown
	}
	f.invites = append(f.invites, invite)
	return nil
}

func (f *fakeMailer) sent() []Invite {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Invite(nil), f.invites...)
}
