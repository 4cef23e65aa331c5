package domain

import (
	"errors"
	"net/mail"
	"time"

	"github.com/google/uuid"
)

// StaffRole controls access to administrative surfaces.
type StaffRole string

// Possible staff roles.
const (
	StaffRoleMember StaffRole = "member"
	StaffRoleAdmin  StaffRole = "admin"
)

// Common validation errors for StaffUser.
var (
	ErrEmptyStaffUserID    = errors.New("staff user ID cannot be empty")
	ErrEmptyStaffUserOrgID = errors.New("staff user organization ID cannot be empty")
	ErrInvalidStaffEmail   = errors.New("invalid staff email format")
	ErrInvalidStaffRole    = errors.New("invalid staff role")
)

// StaffUser is an authenticated member of a tenant organization. Staff
// actions (requesting dossiers, managing assignments, rotating
// secrets) always carry both the user and organization identity.
type StaffUser struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	DisplayName    string    `json:"display_name"`
	Role           StaffRole `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
}

// Validate checks if the StaffUser has valid data.
func (u *StaffUser) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyStaffUserID
	}
	if u.OrganizationID == uuid.Nil {
		return ErrEmptyStaffUserOrgID
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return ErrInvalidStaffEmail
	}
	if u.Role != StaffRoleMember && u.Role != StaffRoleAdmin {
		return ErrInvalidStaffRole
	}
	return nil
}
