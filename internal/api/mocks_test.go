package api

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/insighthr/dossier-api/internal/domain"
	"github.com/insighthr/dossier-api/internal/service"
	"github.com/insighthr/dossier-api/internal/service/auth"
	"github.com/insighthr/dossier-api/internal/store"
)

// In-memory fakes for handler tests. Handlers only see interfaces, so
// each fake scripts the return values a test needs and records calls.

type fakeStaffUserStore struct {
	users map[string]*domain.StaffUser
}

func newFakeStaffUserStore(users ...*domain.StaffUser) *fakeStaffUserStore {
	s := &fakeStaffUserStore{users: make(map[string]*domain.StaffUser)}
	for _, u := range users {
		s.users[u.Email] = u
	}
	return s
}

func (s *fakeStaffUserStore) GetByEmail(_ context.Context, email string) (*domain.StaffUser, error) {
	user, ok := s.users[email]
	if !ok {
		return nil, store.ErrStaffUserNotFound
	}
	return user, nil
}

type fakeJWTService struct {
	token string
	err   error
}

func (s *fakeJWTService) GenerateToken(_ context.Context, _ *domain.StaffUser) (string, error) {
	return s.token, s.err
}

func (s *fakeJWTService) ValidateToken(_ context.Context, _ string) (*auth.Claims, error) {
	panic("not used in handler tests")
}

type fakePasswordVerifier struct {
	match bool
}

func (v *fakePasswordVerifier) Compare(_, _ string) error {
	if v.match {
		return nil
	}
	return errors.New("crypto/bcrypt: hashedPassword is not the hash of the given password")
}

// fakeDossierService scripts the dossier service for handler tests.
type fakeDossierService struct {
	job     *domain.DossierJob
	summary *service.JobSummary
	err     error

	callbackOrg   uuid.UUID
	callbackJob   uuid.UUID
	callbackInput service.CallbackInput
	callbackCount int
}

func (s *fakeDossierService) RequestDossier(
	_ context.Context, _, _, _ uuid.UUID, _ string,
) (*domain.DossierJob, error) {
	return s.job, s.err
}

func (s *fakeDossierService) RetryDossier(
	_ context.Context, _, _, _ uuid.UUID,
) (*domain.DossierJob, error) {
	return s.job, s.err
}

func (s *fakeDossierService) ApplyCallback(
	_ context.Context, orgID, jobID uuid.UUID, input service.CallbackInput,
) error {
	s.callbackOrg = orgID
	s.callbackJob = jobID
	s.callbackInput = input
	s.callbackCount++
	return s.err
}

func (s *fakeDossierService) GetStatus(
	_ context.Context, _, _ uuid.UUID,
) (*service.JobSummary, error) {
	return s.summary, s.err
}

// fakeAssignmentService scripts the assignment service for handler tests.
type fakeAssignmentService struct {
	assignment *domain.FormAssignment
	task       *service.AssignmentTask
	submission *domain.FormSubmission
	list       []*domain.FormAssignment
	err        error

	lastToken   string
	lastAnswers json.RawMessage
	remindCount int
	removeCount int
}

func (s *fakeAssignmentService) Create(
	_ context.Context, _, _, _, _ uuid.UUID, _ *time.Time,
) (*domain.FormAssignment, error) {
	return s.assignment, s.err
}

func (s *fakeAssignmentService) ResolveByToken(
	_ context.Context, token string,
) (*service.AssignmentTask, error) {
	s.lastToken = token
	return s.task, s.err
}

func (s *fakeAssignmentService) Submit(
	_ context.Context, token string, answers json.RawMessage,
) (*domain.FormSubmission, error) {
	s.lastToken = token
	s.lastAnswers = answers
	return s.submission, s.err
}

func (s *fakeAssignmentService) Remind(_ context.Context, _, _ uuid.UUID) error {
	s.remindCount++
	return s.err
}

func (s *fakeAssignmentService) Remove(_ context.Context, _, _ uuid.UUID) error {
	s.removeCount++
	return s.err
}

func (s *fakeAssignmentService) ListByAnalysis(
	_ context.Context, _, _ uuid.UUID,
) ([]*domain.FormAssignment, error) {
	return s.list, s.err
}

// fakeSecretStore backs a real vault in callback and secret handler
// tests. Only the store is faked; encryption is exercised for real.
type fakeSecretStore struct {
	rows map[string]*domain.Secret
}

func newFakeSecretStore() *fakeSecretStore {
	return &fakeSecretStore{rows: make(map[string]*domain.Secret)}
}

func (s *fakeSecretStore) Upsert(_ context.Context, secret *domain.Secret) error {
	copied := *secret
	s.rows[secret.Service+"/"+secret.Key] = &copied
	return nil
}

func (s *fakeSecretStore) Get(_ context.Context, svc, key string) (*domain.Secret, error) {
	row, ok := s.rows[svc+"/"+key]
	if !ok {
		return nil, store.ErrSecretNotFound
	}
	copied := *row
	return &copied, nil
}

func (s *fakeSecretStore) ListByService(_ context.Context, svc string) ([]*domain.Secret, error) {
	var rows []*domain.Secret
	for _, row := range s.rows {
		if row.Service == svc {
			copied := *row
			rows = append(rows, &copied)
		}
	}
	return rows, nil
}
