package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/insighthr/dossier-api/internal/domain"
)

// EmployeeStore defines read access to assignment recipients.
type EmployeeStore interface {
	// GetByID retrieves an employee by ID within the organization.
	// Returns ErrEmployeeNotFound if the employee does not exist.
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*domain.Employee, error)
}

// StaffUserStore defines read access to staff accounts for login.
type StaffUserStore interface {
	// GetByEmail retrieves a staff user by email.
	// Returns ErrStaffUserNotFound if no account exists.
	GetByEmail(ctx context.Context, email string) (*domain.StaffUser, error)
}
