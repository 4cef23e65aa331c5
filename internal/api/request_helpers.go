package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/insighthr/dossier-api/internal/api/shared"
)

// getPathUUID extracts a UUID from the URL path parameters. It parses
// and validates the UUID, handling common error cases.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, fmt.Errorf("path parameter %q is required", paramName)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, fmt.Errorf("path parameter %q has invalid format", paramName)
	}

	return id, nil
}

// requireIdentity extracts the authenticated staff identity from the
// request context. When the identity is missing the helper writes a
// 401 response itself and returns ok=false; handlers simply return.
// Identity can only be absent if a route was wired without the
// authentication middleware, so this is a guard, not a code path.
func requireIdentity(w http.ResponseWriter, r *http.Request) (userID, orgID uuid.UUID, ok bool) {
	userID, okUser := shared.GetUserID(r.Context())
	orgID, okOrg := shared.GetOrgID(r.Context())
	if !okUser || !okOrg {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, orgID, true
}

// decodeAndValidate decodes the JSON body into v and validates it,
// writing a 400 response on failure. Returns false when a response has
// already been written.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := shared.DecodeJSON(r, v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Validation failed", err)
		return false
	}
	return true
}

// respondWithMappedError maps a service or store error to its HTTP
// status and safe message, logging the underlying error.
func respondWithMappedError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
}
