package api

import (
	"net/http"

	"github.com/insighthr/dossier-api/internal/api/shared"
	"github.com/insighthr/dossier-api/internal/service"
)

// DossierHandler handles dossier job requests: generation, status
// polling, and retry. All routes are staff-only and organization
// scoped through the authenticated identity.
type DossierHandler struct {
	dossiers service.DossierService
}

// NewDossierHandler creates a new DossierHandler.
func NewDossierHandler(dossiers service.DossierService) *DossierHandler {
	return &DossierHandler{dossiers: dossiers}
}

// RequestDossier handles POST /api/analyses/{analysisID}/dossier.
// Responds 202: the job is accepted and runs in the external engine;
// the response body carries the job in its post-dispatch state.
func (h *DossierHandler) RequestDossier(w http.ResponseWriter, r *http.Request) {
	userID, orgID, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	analysisID, err := getPathUUID(r, "analysisID")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var req RequestDossierRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	job, err := h.dossiers.RequestDossier(r.Context(), orgID, analysisID, userID, req.Prompt)
	if err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, job)
}

// GetStatus handles GET /api/analyses/{analysisID}/dossier. Returns
// the latest job for the analysis; clients poll this endpoint while a
// job is processing.
func (h *DossierHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	_, orgID, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	analysisID, err := getPathUUID(r, "analysisID")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := h.dossiers.GetStatus(r.Context(), orgID, analysisID)
	if err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, summary)
}

// RetryDossier handles POST /api/dossiers/{jobID}/retry. Creates a
// fresh job reusing the failed job's prompt; the failed record stays
// untouched for audit.
func (h *DossierHandler) RetryDossier(w http.ResponseWriter, r *http.Request) {
	userID, orgID, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	jobID, err := getPathUUID(r, "jobID")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	job, err := h.dossiers.RetryDossier(r.Context(), orgID, jobID, userID)
	if err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, job)
}
