package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/insighthr/dossier-api/internal/domain"
	"github.com/insighthr/dossier-api/internal/store"
)

// PostgresEmployeeStore implements the store.EmployeeStore interface
// using a PostgreSQL database as the storage backend.
type PostgresEmployeeStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresEmployeeStore creates a new PostgreSQL implementation of
// the EmployeeStore interface.
func NewPostgresEmployeeStore(db store.DBTX, logger *slog.Logger) *PostgresEmployeeStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresEmployeeStore{
		db:     db,
		logger: logger.With(slog.String("component", "employee_store")),
	}
}

// Ensure PostgresEmployeeStore implements store.EmployeeStore interface
var _ store.EmployeeStore = (*PostgresEmployeeStore)(nil)

// GetByID implements store.EmployeeStore.GetByID.
func (s *PostgresEmployeeStore) GetByID(ctx context.Context, orgID, id uuid.UUID) (*domain.Employee, error) {
	query := `
		SELECT id, organization_id, full_name, COALESCE(email, ''), created_at
		FROM employees
		WHERE id = $1 AND organization_id = $2
	`
	var employee domain.Employee
	err := s.db.QueryRowContext(ctx, query, id, orgID).Scan(
		&employee.ID,
		&employee.OrganizationID,
		&employee.FullName,
		&employee.Email,
		&employee.CreatedAt,
	)
	if err != nil {
		if mapped := MapError(err); store.IsNotFoundError(mapped) {
			return nil, store.ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("failed to scan employee: %w", err)
	}

	return &employee, nil
}

// PostgresStaffUserStore implements the store.StaffUserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresStaffUserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresStaffUserStore creates a new PostgreSQL implementation of
// the StaffUserStore interface.
func NewPostgresStaffUserStore(db store.DBTX, logger *slog.Logger) *PostgresStaffUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresStaffUserStore{
		db:     db,
		logger: logger.With(slog.String("component", "staff_user_store")),
	}
}

// Ensure PostgresStaffUserStore implements store.StaffUserStore interface
var _ store.StaffUserStore = (*PostgresStaffUserStore)(nil)

// GetByEmail implements store.StaffUserStore.GetByEmail. Email
// comparison is case-insensitive; addresses are stored lowercased.
func (s *PostgresStaffUserStore) GetByEmail(ctx context.Context, email string) (*domain.StaffUser, error) {
	query := `
		SELECT id, organization_id, email, hashed_password, COALESCE(display_name, ''), role, created_at
		FROM staff_users
		WHERE email = LOWER($1)
	`
	var user domain.StaffUser
	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.OrganizationID,
		&user.Email,
		&user.HashedPassword,
		&user.DisplayName,
		&user.Role,
		&user.CreatedAt,
	)
	if err != nil {
		if mapped := MapError(err); store.IsNotFoundError(mapped) {
			return nil, store.ErrStaffUserNotFound
		}
		return nil, fmt.Errorf("failed to scan staff user: %w", err)
	}

	return &user, nil
}
