package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insighthr/dossier-api/internal/domain"
	"github.com/insighthr/dossier-api/internal/service/auth"
)

// fakeJWTService scripts token validation for middleware tests.
type fakeJWTService struct {
	claims *auth.Claims
	err    error
}

func (s *fakeJWTService) GenerateToken(_ context.Context, _ *domain.StaffUser) (string, error) {
	return "unused", nil
}

func (s *fakeJWTService) ValidateToken(_ context.Context, _ string) (*auth.Claims, error) {
	return s.claims, s.err
}

func memberClaims() *auth.Claims {
	return &auth.Claims{
		UserID:         uuid.New(),
		OrganizationID: uuid.New(),
		Role:           domain.StaffRoleMember,
	}
}

// identityEcho records the identity the middleware stored in context.
func identityEcho(t *testing.T, wantUser, wantOrg uuid.UUID) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, orgID, ok := GetIdentity(r)
		require.True(t, ok)
		assert.Equal(t, wantUser, userID)
		assert.Equal(t, wantOrg, orgID)
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticateSuccess(t *testing.T) {
	t.Parallel()

	claims := memberClaims()
	mw := NewAuthMiddleware(&fakeJWTService{claims: claims})

	req := httptest.NewRequest(http.MethodGet, "/api/analyses/123/dossier", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	w := httptest.NewRecorder()

	mw.Authenticate(identityEcho(t, claims.UserID, claims.OrganizationID)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthenticateRejectsBadHeaders(t *testing.T) {
	t.Parallel()

	mw := NewAuthMiddleware(&fakeJWTService{claims: memberClaims()})
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run")
	})

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "not bearer", header: "Basic dXNlcjpwYXNz"},
		{name: "missing token part", header: "Bearer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/analyses/123/dossier", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			mw.Authenticate(next).ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestAuthenticateMapsTokenErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantBody string
	}{
		{name: "expired", err: auth.ErrExpiredToken, wantBody: "Token expired"},
		{name: "invalid", err: auth.ErrInvalidToken, wantBody: "Invalid token"},
		{name: "not yet valid", err: auth.ErrTokenNotYetValid, wantBody: "Invalid token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw := NewAuthMiddleware(&fakeJWTService{err: tt.err})

			req := httptest.NewRequest(http.MethodGet, "/api/analyses/123/dossier", nil)
			req.Header.Set("Authorization", "Bearer some-token")
			w := httptest.NewRecorder()

			mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("next handler must not run")
			})).ServeHTTP(w, req)

			require.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		role       domain.StaffRole
		wantStatus int
	}{
		{name: "admin allowed", role: domain.StaffRoleAdmin, wantStatus: http.StatusOK},
		{name: "member forbidden", role: domain.StaffRoleMember, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := memberClaims()
			claims.Role = tt.role
			mw := NewAuthMiddleware(&fakeJWTService{claims: claims})

			req := httptest.NewRequest(http.MethodPut, "/api/admin/secrets/n8n/webhook_url", nil)
			req.Header.Set("Authorization", "Bearer some-token")
			w := httptest.NewRecorder()

			handler := mw.Authenticate(mw.RequireAdmin(
				http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusOK)
				})))
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestRequireAdminWithoutIdentity(t *testing.T) {
	t.Parallel()

	mw := NewAuthMiddleware(&fakeJWTService{})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/secrets/n8n", nil)
	w := httptest.NewRecorder()

	mw.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run")
	})).ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
