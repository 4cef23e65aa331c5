package api

import (
	"net/http"

	"github.com/insighthr/dossier-api/internal/api/shared"
	"github.com/insighthr/dossier-api/internal/domain"
	"github.com/insighthr/dossier-api/internal/service"
)

// AssignmentHandler handles the staff side of form assignments:
// creating them, listing them per analysis, re-sending reminders, and
// removing them. The anonymous recipient side lives in FormHandler.
type AssignmentHandler struct {
	assignments service.AssignmentService
	formBaseURL string
}

// NewAssignmentHandler creates a new AssignmentHandler.
func NewAssignmentHandler(assignments service.AssignmentService, formBaseURL string) *AssignmentHandler {
	return &AssignmentHandler{
		assignments: assignments,
		formBaseURL: formBaseURL,
	}
}

// createAssignmentResponse is a FormAssignment extended with the fill
// link. The raw token is never serialized on its own; the link is the
// only place it leaves the API, and only at creation time.
type createAssignmentResponse struct {
	*domain.FormAssignment
	FormURL string `json:"form_url"`
}

// Create handles POST /api/analyses/{analysisID}/assignments.
func (h *AssignmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	_, orgID, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	analysisID, err := getPathUUID(r, "analysisID")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var req CreateAssignmentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	assignment, err := h.assignments.Create(
		r.Context(), orgID, analysisID, req.FormID, req.RecipientID, req.DueDate)
	if err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, createAssignmentResponse{
		FormAssignment: assignment,
		FormURL:        service.FormFillURL(h.formBaseURL, assignment.Token),
	})
}

// ListByAnalysis handles GET /api/analyses/{analysisID}/assignments.
func (h *AssignmentHandler) ListByAnalysis(w http.ResponseWriter, r *http.Request) {
	_, orgID, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	analysisID, err := getPathUUID(r, "analysisID")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	assignments, err := h.assignments.ListByAnalysis(r.Context(), orgID, analysisID)
	if err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, assignments)
}

// Remind handles POST /api/assignments/{assignmentID}/remind.
func (h *AssignmentHandler) Remind(w http.ResponseWriter, r *http.Request) {
	_, orgID, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	assignmentID, err := getPathUUID(r, "assignmentID")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.assignments.Remind(r.Context(), orgID, assignmentID); err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Remove handles DELETE /api/assignments/{assignmentID}.
func (h *AssignmentHandler) Remove(w http.ResponseWriter, r *http.Request) {
	_, orgID, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	assignmentID, err := getPathUUID(r, "assignmentID")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.assignments.Remove(r.Context(), orgID, assignmentID); err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
