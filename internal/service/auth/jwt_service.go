package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/insighthr/dossier-api/internal/domain"
)

// JWTService defines operations for managing JWT authentication tokens.
// Every token is organization-scoped: the org claim drives tenant
// isolation for all staff endpoints.
type JWTService interface {
	// GenerateToken creates a signed JWT access token for the staff
	// user, embedding their organization and role.
	GenerateToken(ctx context.Context, user *domain.StaffUser) (string, error)

	// ValidateToken validates the provided token string and extracts
	// the claims. Returns ErrExpiredToken, ErrTokenNotYetValid, or
	// ErrInvalidToken on failure.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents the custom claims structure for the JWT tokens.
// It extends standard JWT registered claims with application-specific fields.
type Claims struct {
	// UserID is the unique identifier of the staff user the token was
	// issued for.
	UserID uuid.UUID `json:"uid,omitempty"`

	// OrganizationID scopes every request made with this token to one
	// tenant.
	OrganizationID uuid.UUID `json:"org,omitempty"`

	// Role is the staff user's role within the organization.
	Role domain.StaffRole `json:"role,omitempty"`

	// Standard registered JWT claims
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
