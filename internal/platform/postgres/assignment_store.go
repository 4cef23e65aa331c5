package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/insighthr/dossier-api/internal/domain"
	"github.com/insighthr/dossier-api/internal/platform/logger"
	"github.com/insighthr/dossier-api/internal/store"
)

// PostgresAssignmentStore implements the store.AssignmentStore
// interface using a PostgreSQL database as the storage backend.
type PostgresAssignmentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresAssignmentStore creates a new PostgreSQL implementation
// of the AssignmentStore interface.
func NewPostgresAssignmentStore(db store.DBTX, logger *slog.Logger) *PostgresAssignmentStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresAssignmentStore{
		db:     db,
		logger: logger.With(slog.String("component", "assignment_store")),
	}
}

// Ensure PostgresAssignmentStore implements store.AssignmentStore interface
var _ store.AssignmentStore = (*PostgresAssignmentStore)(nil)

const assignmentColumns = `id, analysis_id, organization_id, form_id, form_version_id,
		recipient_id, token, token_expires_at, status, due_date, sent_at, opened_at,
		completed_at, reminder_count, last_reminder_at, submission_id, created_at`

// Create implements store.AssignmentStore.Create.
func (s *PostgresAssignmentStore) Create(ctx context.Context, assignment *domain.FormAssignment) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := assignment.Validate(); err != nil {
		log.Warn("assignment validation failed during create",
			slog.String("error", err.Error()),
			slog.String("assignment_id", assignment.ID.String()))
		return err
	}

	query := `
		INSERT INTO form_assignments (id, analysis_id, organization_id, form_id,
			form_version_id, recipient_id, token, token_expires_at, status, due_date,
			sent_at, opened_at, completed_at, reminder_count, last_reminder_at,
			submission_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		assignment.ID,
		assignment.AnalysisID,
		assignment.OrganizationID,
		assignment.FormID,
		assignment.FormVersionID,
		assignment.RecipientID,
		assignment.Token,
		assignment.TokenExpiresAt,
		assignment.Status,
		assignment.DueDate,
		assignment.SentAt,
		assignment.OpenedAt,
		assignment.CompletedAt,
		assignment.ReminderCount,
		assignment.LastReminderAt,
		assignment.SubmissionID,
		assignment.CreatedAt,
	)
	if err != nil {
		log.Error("failed to create assignment",
			slog.String("error", err.Error()),
			slog.String("assignment_id", assignment.ID.String()))
		return MapError(err)
	}

	return nil
}

// GetByID implements store.AssignmentStore.GetByID.
func (s *PostgresAssignmentStore) GetByID(
	ctx context.Context,
	orgID, id uuid.UUID,
) (*domain.FormAssignment, error) {
	query := `
		SELECT ` + assignmentColumns + `
		FROM form_assignments
		WHERE id = $1 AND organization_id = $2
	`
	assignment, err := s.scanAssignment(s.db.QueryRowContext(ctx, query, id, orgID))
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, store.ErrAssignmentNotFound
		}
		return nil, err
	}
	return assignment, nil
}

// GetByToken implements store.AssignmentStore.GetByToken. The token is
// the only credential here; no organization scoping applies.
func (s *PostgresAssignmentStore) GetByToken(
	ctx context.Context,
	token string,
) (*domain.FormAssignment, error) {
	query := `
		SELECT ` + assignmentColumns + `
		FROM form_assignments
		WHERE token = $1
	`
	assignment, err := s.scanAssignment(s.db.QueryRowContext(ctx, query, token))
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, store.ErrTokenNotFound
		}
		return nil, err
	}
	return assignment, nil
}

// ListByAnalysis implements store.AssignmentStore.ListByAnalysis.
func (s *PostgresAssignmentStore) ListByAnalysis(
	ctx context.Context,
	orgID, analysisID uuid.UUID,
) ([]*domain.FormAssignment, error) {
	query := `
		SELECT ` + assignmentColumns + `
		FROM form_assignments
		WHERE analysis_id = $1 AND organization_id = $2
		ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, analysisID, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	assignments := []*domain.FormAssignment{}
	for rows.Next() {
		var a domain.FormAssignment
		if err := scanAssignmentColumns(rows, &a); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments = append(assignments, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assignments: %w", err)
	}

	return assignments, nil
}

// Update implements store.AssignmentStore.Update. Completed rows are
// excluded in the WHERE clause so that two writers racing to complete
// the same assignment cannot both succeed; the loser gets
// store.ErrAssignmentCompleted.
func (s *PostgresAssignmentStore) Update(ctx context.Context, assignment *domain.FormAssignment) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := assignment.Validate(); err != nil {
		log.Warn("assignment validation failed during update",
			slog.String("error", err.Error()),
			slog.String("assignment_id", assignment.ID.String()))
		return err
	}

	query := `
		UPDATE form_assignments
		SET status = $1, due_date = $2, sent_at = $3, opened_at = $4, completed_at = $5,
			reminder_count = $6, last_reminder_at = $7, submission_id = $8
		WHERE id = $9 AND organization_id = $10 AND status <> 'completed'
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		assignment.Status,
		assignment.DueDate,
		assignment.SentAt,
		assignment.OpenedAt,
		assignment.CompletedAt,
		assignment.ReminderCount,
		assignment.LastReminderAt,
		assignment.SubmissionID,
		assignment.ID,
		assignment.OrganizationID,
	)
	if err != nil {
		log.Error("failed to update assignment",
			slog.String("error", err.Error()),
			slog.String("assignment_id", assignment.ID.String()))
		return MapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		// Zero rows means the row is gone or the guard fired.
		var status domain.AssignmentStatus
		err := s.db.QueryRowContext(
			ctx,
			`SELECT status FROM form_assignments WHERE id = $1 AND organization_id = $2`,
			assignment.ID,
			assignment.OrganizationID,
		).Scan(&status)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return store.ErrAssignmentNotFound
		case err != nil:
			return fmt.Errorf("failed to check assignment status: %w", err)
		case status == domain.AssignmentStatusCompleted:
			return store.ErrAssignmentCompleted
		}
		return store.ErrAssignmentNotFound
	}

	return nil
}

// Delete implements store.AssignmentStore.Delete. Completed rows are
// excluded in the WHERE clause as a second line of defense behind the
// service-level rule.
func (s *PostgresAssignmentStore) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	query := `
		DELETE FROM form_assignments
		WHERE id = $1 AND organization_id = $2 AND status <> 'completed'
	`
	result, err := s.db.ExecContext(ctx, query, id, orgID)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrAssignmentNotFound)
}

// WithTx implements store.AssignmentStore.WithTx.
func (s *PostgresAssignmentStore) WithTx(tx *sql.Tx) store.AssignmentStore {
	return &PostgresAssignmentStore{
		db:     tx,
		logger: s.logger,
	}
}

func (s *PostgresAssignmentStore) scanAssignment(row *sql.Row) (*domain.FormAssignment, error) {
	var a domain.FormAssignment
	if err := scanAssignmentColumns(row, &a); err != nil {
		if mapped := MapError(err); store.IsNotFoundError(mapped) {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to scan assignment: %w", err)
	}
	return &a, nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAssignmentColumns(row rowScanner, a *domain.FormAssignment) error {
	return row.Scan(
		&a.ID,
		&a.AnalysisID,
		&a.OrganizationID,
		&a.FormID,
		&a.FormVersionID,
		&a.RecipientID,
		&a.Token,
		&a.TokenExpiresAt,
		&a.Status,
		&a.DueDate,
		&a.SentAt,
		&a.OpenedAt,
		&a.CompletedAt,
		&a.ReminderCount,
		&a.LastReminderAt,
		&a.SubmissionID,
		&a.CreatedAt,
	)
}
