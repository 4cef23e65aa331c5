package api

import (
	"net/http"

	"github.com/insighthr/dossier-api/internal/api/shared"
	"github.com/insighthr/dossier-api/internal/webhook"
)

// HealthHandler reports API liveness plus whether the outbound webhook
// is configured. A missing webhook URL is a setup state, not a fault,
// so the endpoint stays 200 and surfaces it as a field instead.
type HealthHandler struct {
	resolver *webhook.Resolver
}

// NewHealthHandler creates a new health check handler.
func NewHealthHandler(resolver *webhook.Resolver) *HealthHandler {
	if resolver == nil {
		panic("resolver cannot be nil")
	}
	return &HealthHandler{resolver: resolver}
}

type healthResponse struct {
	Status  string `json:"status"`
	Webhook string `json:"webhook"`
}

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	webhookState := "configured"
	if _, ok := h.resolver.Resolve(r.Context(), webhook.TaskTypeDossier); !ok {
		webhookState = "not_configured"
	}

	shared.RespondWithJSON(w, r, http.StatusOK, healthResponse{
		Status:  "ok",
		Webhook: webhookState,
	})
}
