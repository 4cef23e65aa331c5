package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/insighthr/dossier-api/internal/api/shared"
	"github.com/insighthr/dossier-api/internal/service/auth"
	"github.com/insighthr/dossier-api/internal/store"
)

// AuthHandler handles staff authentication requests.
type AuthHandler struct {
	staffUsers       store.StaffUserStore
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	tokenLifetime    time.Duration
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	staffUsers store.StaffUserStore,
	jwtService auth.JWTService,
	passwordVerifier auth.PasswordVerifier,
	tokenLifetime time.Duration,
) *AuthHandler {
	return &AuthHandler{
		staffUsers:       staffUsers,
		jwtService:       jwtService,
		passwordVerifier: passwordVerifier,
		tokenLifetime:    tokenLifetime,
	}
}

// Login handles POST /api/auth/login. An unknown email and a wrong
// password produce the same response so the endpoint cannot be used to
// enumerate accounts.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.staffUsers.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrStaffUserNotFound) {
			respondWithMappedError(w, r, auth.ErrInvalidCredentials)
			return
		}
		respondWithMappedError(w, r, err)
		return
	}

	if err := h.passwordVerifier.Compare(user.HashedPassword, req.Password); err != nil {
		respondWithMappedError(w, r, auth.ErrInvalidCredentials)
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context(), user)
	if err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		UserID:         user.ID,
		OrganizationID: user.OrganizationID,
		AccessToken:    token,
		ExpiresAt:      time.Now().UTC().Add(h.tokenLifetime).Format(time.RFC3339),
	})
}
