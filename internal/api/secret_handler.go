package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/insighthr/dossier-api/internal/api/shared"
	"github.com/insighthr/dossier-api/internal/vault"
)

// SecretHandler exposes the admin-only vault surface. Writes accept
// plaintext once and store only ciphertext; reads return masked values
// only. There is no endpoint that returns a stored plaintext.
type SecretHandler struct {
	vault *vault.Vault
}

// NewSecretHandler creates a new SecretHandler.
func NewSecretHandler(v *vault.Vault) *SecretHandler {
	return &SecretHandler{vault: v}
}

// PutSecret handles PUT /api/admin/secrets/{service}/{key}.
func (h *SecretHandler) PutSecret(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	serviceName := chi.URLParam(r, "service")
	key := chi.URLParam(r, "key")
	if serviceName == "" || key == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Service and key are required")
		return
	}

	var req PutSecretRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.vault.Put(r.Context(), serviceName, key, req.Value, req.Sensitive, userID); err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListSecrets handles GET /api/admin/secrets/{service}. Values are
// masked; sensitive ones fully, non-sensitive ones down to a
// recognizable tail.
func (h *SecretHandler) ListSecrets(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := requireIdentity(w, r); !ok {
		return
	}

	serviceName := chi.URLParam(r, "service")
	if serviceName == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Service is required")
		return
	}

	secrets, err := h.vault.List(r.Context(), serviceName)
	if err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, secrets)
}
