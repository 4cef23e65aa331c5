package api

import (
	"crypto/subtle"
	"net/http"

	"github.com/insighthr/dossier-api/internal/api/shared"
	"github.com/insighthr/dossier-api/internal/domain"
	"github.com/insighthr/dossier-api/internal/service"
	"github.com/insighthr/dossier-api/internal/vault"
	"github.com/insighthr/dossier-api/internal/webhook"
)

// CallbackHandler receives terminal job verdicts from the external
// workflow engine. The endpoint is machine-to-machine: it is
// authenticated by the same shared header that outbound dispatches
// carry, never by a staff token.
type CallbackHandler struct {
	dossiers service.DossierService
	vault    *vault.Vault
}

// NewCallbackHandler creates a new CallbackHandler.
func NewCallbackHandler(dossiers service.DossierService, v *vault.Vault) *CallbackHandler {
	return &CallbackHandler{
		dossiers: dossiers,
		vault:    v,
	}
}

// HandleCallback handles POST /api/webhooks/n8n/callback.
//
// Authentication fails closed: when no signing value is configured in
// the vault, every callback is rejected rather than accepted
// unsigned. Redelivered callbacks for an already-terminal job return
// 200 so the engine stops retrying.
func (h *CallbackHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	headerName, expected, ok := webhook.AuthHeader(r.Context(), h.vault)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Callback authentication not configured")
		return
	}

	presented := r.Header.Get(headerName)
	if subtle.ConstantTimeCompare([]byte(presented), []byte(expected)) != 1 {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid callback signature")
		return
	}

	var req CallbackRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	input := service.CallbackInput{
		Status:           domain.JobStatus(req.Status),
		ResultData:       req.ResultData,
		ErrorMessage:     req.ErrorMessage,
		ModelUsed:        req.ModelUsed,
		PromptTokens:     req.PromptTokens,
		CompletionTokens: req.CompletionTokens,
	}

	if err := h.dossiers.ApplyCallback(r.Context(), req.OrganizationID, req.JobID, input); err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
