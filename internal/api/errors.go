package api

import (
	"errors"
	"net/http"

	"github.com/insighthr/dossier-api/internal/domain"
	"github.com/insighthr/dossier-api/internal/service"
	"github.com/insighthr/dossier-api/internal/service/auth"
	"github.com/insighthr/dossier-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized

	// Conflict errors. All of these describe state the client can
	// observe and react to, so 409 rather than 400.
	case errors.Is(err, service.ErrJobAlreadyInProgress),
		errors.Is(err, service.ErrJobNotFailed),
		errors.Is(err, service.ErrAlreadyCompleted),
		errors.Is(err, service.ErrReminderNotAllowed),
		errors.Is(err, service.ErrAssignmentCompleted),
		errors.Is(err, store.ErrAssignmentCompleted),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// An unknown token is indistinguishable from a deleted assignment,
	// so it gets 404 rather than 401. An expired token is a distinct,
	// recoverable condition: 410 tells the recipient to ask for a new
	// invite instead of retrying.
	case errors.Is(err, service.ErrTokenInvalid):
		return http.StatusNotFound
	case errors.Is(err, service.ErrTokenExpired):
		return http.StatusGone

	case errors.Is(err, service.ErrFormNotAvailable):
		return http.StatusUnprocessableEntity

	// Not found errors, including cross-tenant reads.
	case store.IsNotFoundError(err):
		return http.StatusNotFound

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrInvalidJobStatus),
		errors.Is(err, domain.ErrInvalidSubmissionJSON),
		errors.Is(err, domain.ErrEmptySubmissionAnswers):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	// Authentication errors. Invalid credentials and invalid tokens
	// share phrasing with their auth package counterparts so clients
	// cannot probe which accounts exist.
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid credentials"

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return "Invalid token"

	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"

	case errors.Is(err, auth.ErrMissingToken):
		return "Authorization required"

	// Dossier job errors
	case errors.Is(err, service.ErrJobAlreadyInProgress):
		return "A dossier job is already in progress for this analysis"

	case errors.Is(err, service.ErrJobNotFailed):
		return "Only failed jobs can be retried"

	// Assignment token errors
	case errors.Is(err, service.ErrTokenInvalid):
		return "Form not found"

	case errors.Is(err, service.ErrTokenExpired):
		return "This form link has expired"

	case errors.Is(err, service.ErrAlreadyCompleted),
		errors.Is(err, store.ErrAssignmentCompleted):
		return "This form has already been submitted"

	case errors.Is(err, service.ErrFormNotAvailable):
		return "Form is not available"

	case errors.Is(err, service.ErrReminderNotAllowed):
		return "Reminders are only allowed for sent or opened assignments"

	case errors.Is(err, service.ErrAssignmentCompleted):
		return "Completed assignments cannot be modified"

	// Not found errors
	case errors.Is(err, store.ErrAnalysisNotFound):
		return "Analysis not found"

	case errors.Is(err, store.ErrJobNotFound):
		return "Dossier job not found"

	case errors.Is(err, store.ErrAssignmentNotFound):
		return "Assignment not found"

	case errors.Is(err, store.ErrEmployeeNotFound):
		return "Employee not found"

	case errors.Is(err, store.ErrFormNotFound):
		return "Form not found"

	case errors.Is(err, store.ErrSecretNotFound):
		return "Secret not found"

	case store.IsNotFoundError(err):
		return "Resource not found"

	// Conflict errors
	case errors.Is(err, store.ErrDuplicate):
		return "Resource already exists"

	// Bad request errors
	case errors.Is(err, domain.ErrInvalidSubmissionJSON),
		errors.Is(err, domain.ErrEmptySubmissionAnswers):
		return "Invalid form answers"

	case errors.Is(err, domain.ErrInvalidJobStatus):
		return "Invalid job status"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		return "An unexpected error occurred"
	}
}
