package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/insighthr/dossier-api/internal/api/shared"
	"github.com/insighthr/dossier-api/internal/service"
)

// FormHandler handles the anonymous, token-gated recipient endpoints.
// No staff authentication applies here; the bearer token in the path
// is the entire credential, so these routes sit behind rate limiting
// and reveal nothing beyond what the token holder needs.
type FormHandler struct {
	assignments service.AssignmentService
}

// NewFormHandler creates a new FormHandler.
func NewFormHandler(assignments service.AssignmentService) *FormHandler {
	return &FormHandler{assignments: assignments}
}

// Resolve handles GET /api/forms/fill/{token}. A successful resolve of
// a pending or sent assignment marks it opened.
func (h *FormHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	task, err := h.assignments.ResolveByToken(r.Context(), token)
	if err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// Submit handles POST /api/forms/fill/{token}. One-time: the token is
// consumed on success and a repeat submit gets 409.
func (h *FormHandler) Submit(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	var req SubmitFormRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	submission, err := h.assignments.Submit(r.Context(), token, req.Answers)
	if err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, submission)
}
