package service

import "errors"

// Common service errors. Callers branch on these with errors.Is; the
// API layer maps each to a distinct HTTP status and error tag because
// they drive different client behavior.
var (
	// ErrJobAlreadyInProgress indicates a dossier job for the analysis
	// is already pending or processing. Clients disable the "generate"
	// action rather than showing a failure. Maps to HTTP 409.
	ErrJobAlreadyInProgress = errors.New("a dossier job is already in progress for this analysis")

	// ErrJobNotFailed indicates a retry was requested for a job that
	// is not in the failed state. Maps to HTTP 409.
	ErrJobNotFailed = errors.New("only failed jobs can be retried")

	// Token resolution errors. These are deliberately three distinct
	// values: "invalid" and "already completed" are terminal for the
	// recipient, while "expired" is re-issuable by staff.

	// ErrTokenInvalid indicates the bearer token matches no assignment.
	ErrTokenInvalid = errors.New("invalid assignment token")

	// ErrTokenExpired indicates the token's validity window has passed.
	ErrTokenExpired = errors.New("assignment token expired")

	// ErrAlreadyCompleted indicates the assignment was already
	// submitted; there is nothing left for the recipient to do.
	ErrAlreadyCompleted = errors.New("assignment already completed")

	// ErrFormNotAvailable indicates the form is inactive or not
	// visible to the tenant. Maps to HTTP 422.
	ErrFormNotAvailable = errors.New("form is not available to this organization")

	// ErrReminderNotAllowed indicates a reminder was requested for an
	// assignment that is not in the sent or opened state.
	ErrReminderNotAllowed = errors.New("reminders are only allowed for sent or opened assignments")

	// ErrAssignmentCompleted indicates a mutation was attempted on a
	// completed assignment, which is an immutable audit record.
	ErrAssignmentCompleted = errors.New("completed assignments cannot be modified or deleted")
)
