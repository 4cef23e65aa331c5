package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/insighthr/dossier-api/internal/domain"
	"github.com/insighthr/dossier-api/internal/platform/logger"
	"github.com/insighthr/dossier-api/internal/store"
)

// AssignmentTask is the data handed to a recipient who resolved a
// valid token: everything needed to render and fill the form, and
// nothing that belongs to staff.
type AssignmentTask struct {
	AssignmentID uuid.UUID       `json:"assignment_id"`
	FormTitle    string          `json:"form_title"`
	Fields       json.RawMessage `json:"fields"`
	DueDate      *time.Time      `json:"due_date,omitempty"`
	SubjectName  string          `json:"subject_name"`
}

// AssignmentService owns the token-gated assignment lifecycle. Staff
// operations are organization-scoped; ResolveByToken and Submit are
// the only paths available to anonymous bearer-token holders.
type AssignmentService interface {
	// Create assigns the form to a recipient for an analysis. When the
	// recipient has an email address, delivery is attempted
	// immediately; delivery failure leaves the assignment pending and
	// is not an error.
	Create(ctx context.Context, orgID, analysisID, formID, recipientID uuid.UUID, dueDate *time.Time) (*domain.FormAssignment, error)

	// ResolveByToken loads the task for a bearer token. Returns
	// ErrTokenInvalid, ErrTokenExpired, or ErrAlreadyCompleted; a
	// successful resolution of a pending or sent assignment advances
	// it to opened.
	ResolveByToken(ctx context.Context, token string) (*AssignmentTask, error)

	// Submit records the recipient's answers and completes the
	// assignment. Expiry and completion are re-validated at submit
	// time. One-time: a second submit returns ErrAlreadyCompleted.
	Submit(ctx context.Context, token string, answers json.RawMessage) (*domain.FormSubmission, error)

	// Remind re-sends the original link. Legal only from sent or
	// opened; increments the reminder counter without changing status.
	Remind(ctx context.Context, orgID, assignmentID uuid.UUID) error

	// Remove deletes an assignment. Completed assignments are audit
	// records and are never deletable.
	Remove(ctx context.Context, orgID, assignmentID uuid.UUID) error

	// ListByAnalysis returns all assignments for an analysis, newest
	// first.
	ListByAnalysis(ctx context.Context, orgID, analysisID uuid.UUID) ([]*domain.FormAssignment, error)
}

// assignmentService is the production AssignmentService implementation.
type assignmentService struct {
	db          *sql.DB
	assignments store.AssignmentStore
	submissions store.SubmissionStore
	forms       store.FormStore
	analyses    store.AnalysisStore
	employees   store.EmployeeStore
	mailer      Mailer
	formBaseURL string
	logger      *slog.Logger
	now         func() time.Time

	// runTx wraps store.RunInTransaction; injectable in tests.
	runTx func(ctx context.Context, fn store.TxFn) error
}

// NewAssignmentService creates an AssignmentService. mailer may be nil
// when delivery is not configured; assignments are then created
// pending and links shared out of band.
func NewAssignmentService(
	db *sql.DB,
	assignments store.AssignmentStore,
	submissions store.SubmissionStore,
	forms store.FormStore,
	analyses store.AnalysisStore,
	employees store.EmployeeStore,
	mailer Mailer,
	formBaseURL string,
	log *slog.Logger,
) (AssignmentService, error) {
	if db == nil || assignments == nil || submissions == nil || forms == nil ||
		analyses == nil || employees == nil {
		return nil, fmt.Errorf("assignment service dependencies cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	s := &assignmentService{
		db:          db,
		assignments: assignments,
		submissions: submissions,
		forms:       forms,
		analyses:    analyses,
		employees:   employees,
		mailer:      mailer,
		formBaseURL: strings.TrimSuffix(formBaseURL, "/"),
		logger:      log.With(slog.String("component", "assignment_service")),
		now:         time.Now,
	}
	s.runTx = func(ctx context.Context, fn store.TxFn) error {
		return store.RunInTransaction(ctx, s.db, fn)
	}
	return s, nil
}

func (s *assignmentService) Create(
	ctx context.Context,
	orgID, analysisID, formID, recipientID uuid.UUID,
	dueDate *time.Time,
) (*domain.FormAssignment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.analyses.GetByID(ctx, orgID, analysisID); err != nil {
		return nil, err
	}

	form, err := s.forms.GetDefinition(ctx, formID)
	if err != nil {
		return nil, err
	}
	if !form.Active {
		return nil, ErrFormNotAvailable
	}
	allowed, err := s.forms.HasTenantAccess(ctx, formID, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to check form access: %w", err)
	}
	if !allowed {
		return nil, ErrFormNotAvailable
	}

	recipient, err := s.employees.GetByID(ctx, orgID, recipientID)
	if err != nil {
		return nil, err
	}

	assignment, err := domain.NewFormAssignment(
		analysisID, orgID, formID, form.CurrentVersionID, recipientID, dueDate)
	if err != nil {
		return nil, err
	}

	if err := s.assignments.Create(ctx, assignment); err != nil {
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}

	// Delivery is best-effort: a failed send leaves the assignment
	// pending and retriable via reminder, never rolls it back.
	if s.mailer != nil && recipient.Email != "" {
		invite := Invite{
			RecipientName:  recipient.FullName,
			RecipientEmail: recipient.Email,
			FormTitle:      form.Title,
			FormURL:        s.formURL(assignment.Token),
		}
		if err := s.mailer.SendInvite(ctx, invite); err != nil {
			log.Warn("assignment invite delivery failed",
				slog.String("assignment_id", assignment.ID.String()),
				slog.String("error", err.Error()))
			return assignment, nil
		}

		if err := assignment.MarkSent(s.now()); err != nil {
			return nil, err
		}
		if err := s.assignments.Update(ctx, assignment); err != nil {
			return nil, fmt.Errorf("failed to record delivery: %w", err)
		}
	}

	log.Info("assignment created",
		slog.String("assignment_id", assignment.ID.String()),
		slog.String("analysis_id", analysisID.String()),
		slog.String("status", string(assignment.Status)))
	return assignment, nil
}

func (s *assignmentService) ResolveByToken(ctx context.Context, token string) (*AssignmentTask, error) {
	assignment, err := s.loadByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	// Side effect of a successful resolution: pending or sent
	// assignments advance to opened.
	if assignment.Status == domain.AssignmentStatusPending ||
		assignment.Status == domain.AssignmentStatusSent {
		if err := assignment.MarkOpened(s.now()); err != nil {
			return nil, err
		}
		if err := s.assignments.Update(ctx, assignment); err != nil {
			return nil, fmt.Errorf("failed to record open: %w", err)
		}
	}

	version, err := s.forms.GetVersion(ctx, assignment.FormVersionID)
	if err != nil {
		return nil, err
	}
	form, err := s.forms.GetDefinition(ctx, assignment.FormID)
	if err != nil {
		return nil, err
	}
	analysis, err := s.analyses.GetByID(ctx, assignment.OrganizationID, assignment.AnalysisID)
	if err != nil {
		return nil, err
	}

	return &AssignmentTask{
		AssignmentID: assignment.ID,
		FormTitle:    form.Title,
		Fields:       version.Fields,
		DueDate:      assignment.DueDate,
		SubjectName:  analysis.SubjectName,
	}, nil
}

func (s *assignmentService) Submit(
	ctx context.Context,
	token string,
	answers json.RawMessage,
) (*domain.FormSubmission, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// Re-validate at submit time: the page may have been open for
	// hours and the token can have expired meanwhile.
	assignment, err := s.loadByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	submission, err := domain.NewFormSubmission(
		assignment.ID, assignment.AnalysisID, assignment.FormVersionID, answers)
	if err != nil {
		return nil, err
	}

	if err := assignment.MarkCompleted(s.now(), submission.ID); err != nil {
		return nil, err
	}

	// The submission insert and the status flip land together or not
	// at all; a submission without a completed assignment would leak
	// into dispatch payload assembly half-linked.
	err = s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.submissions.WithTx(tx).Create(ctx, submission); err != nil {
			return err
		}
		return s.assignments.WithTx(tx).Update(ctx, assignment)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record submission: %w", err)
	}

	log.Info("assignment completed",
		slog.String("assignment_id", assignment.ID.String()),
		slog.String("submission_id", submission.ID.String()))
	return submission, nil
}

func (s *assignmentService) Remind(ctx context.Context, orgID, assignmentID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	assignment, err := s.assignments.GetByID(ctx, orgID, assignmentID)
	if err != nil {
		return err
	}
	if assignment.Status != domain.AssignmentStatusSent &&
		assignment.Status != domain.AssignmentStatusOpened {
		return ErrReminderNotAllowed
	}

	recipient, err := s.employees.GetByID(ctx, orgID, assignment.RecipientID)
	if err != nil {
		return err
	}
	form, err := s.forms.GetDefinition(ctx, assignment.FormID)
	if err != nil {
		return err
	}

	if s.mailer == nil || recipient.Email == "" {
		return fmt.Errorf("no delivery channel for recipient %s", recipient.ID)
	}

	invite := Invite{
		RecipientName:  recipient.FullName,
		RecipientEmail: recipient.Email,
		FormTitle:      form.Title,
		FormURL:        s.formURL(assignment.Token),
		Reminder:       true,
	}
	if err := s.mailer.SendInvite(ctx, invite); err != nil {
		return fmt.Errorf("failed to send reminder: %w", err)
	}

	assignment.RecordReminder(s.now())
	if err := s.assignments.Update(ctx, assignment); err != nil {
		return fmt.Errorf("failed to record reminder: %w", err)
	}

	log.Info("reminder sent",
		slog.String("assignment_id", assignmentID.String()),
		slog.Int("reminder_count", assignment.ReminderCount))
	return nil
}

func (s *assignmentService) Remove(ctx context.Context, orgID, assignmentID uuid.UUID) error {
	assignment, err := s.assignments.GetByID(ctx, orgID, assignmentID)
	if err != nil {
		return err
	}
	if assignment.Status == domain.AssignmentStatusCompleted {
		return ErrAssignmentCompleted
	}
	return s.assignments.Delete(ctx, orgID, assignmentID)
}

func (s *assignmentService) ListByAnalysis(
	ctx context.Context,
	orgID, analysisID uuid.UUID,
) ([]*domain.FormAssignment, error) {
	return s.assignments.ListByAnalysis(ctx, orgID, analysisID)
}

// loadByToken maps raw store results onto the closed three-way token
// error set and checks expiry live against the clock.
func (s *assignmentService) loadByToken(ctx context.Context, token string) (*domain.FormAssignment, error) {
	if token == "" {
		return nil, ErrTokenInvalid
	}

	assignment, err := s.assignments.GetByToken(ctx, token)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrTokenInvalid
		}
		return nil, err
	}

	if assignment.Status == domain.AssignmentStatusCompleted {
		return nil, ErrAlreadyCompleted
	}
	if assignment.Expired(s.now()) {
		return nil, ErrTokenExpired
	}

	return assignment, nil
}

func (s *assignmentService) formURL(token string) string {
	return FormFillURL(s.formBaseURL, token)
}

// FormFillURL builds the recipient-facing fill link for a token. The
// API layer uses the same function so the link in a create response
// matches the link in the invite email byte for byte.
func FormFillURL(baseURL, token string) string {
	return strings.TrimSuffix(baseURL, "/") + "/forms/fill/" + token
}
