package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in
	// the store. Cross-tenant reads also surface as ErrNotFound so that
	// the existence of another tenant's records is never revealed.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a
	// duplicate of a unique entity.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation
	// before being stored.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed is returned when a database transaction
	// fails to commit or an operation inside it fails.
	ErrTransactionFailed = errors.New("transaction failed")

	// Entity-specific "not found" errors.

	ErrAnalysisNotFound   = fmt.Errorf("%w: analysis", ErrNotFound)
	ErrJobNotFound        = fmt.Errorf("%w: dossier job", ErrNotFound)
	ErrAssignmentNotFound = fmt.Errorf("%w: form assignment", ErrNotFound)
	ErrFormNotFound       = fmt.Errorf("%w: form", ErrNotFound)
	ErrSecretNotFound     = fmt.Errorf("%w: secret", ErrNotFound)
	ErrEmployeeNotFound   = fmt.Errorf("%w: employee", ErrNotFound)
	ErrStaffUserNotFound  = fmt.Errorf("%w: staff user", ErrNotFound)
	ErrSubmissionNotFound = fmt.Errorf("%w: form submission", ErrNotFound)

	// ErrJobAlreadyActive is returned when inserting a job would
	// violate the single-flight guarantee: another job for the same
	// analysis is already pending or processing. The partial unique
	// index on active jobs makes this check atomic under concurrency.
	ErrJobAlreadyActive = fmt.Errorf("%w: active dossier job for analysis", ErrDuplicate)

	// ErrAssignmentCompleted is returned when an update would touch an
	// assignment that has already completed. Completed rows are
	// immutable; the guard in the UPDATE statement makes the
	// service-level rule hold even when two writers race.
	ErrAssignmentCompleted = errors.New("assignment already completed")

	// ErrTokenNotFound is returned when no assignment matches a bearer
	// token. Distinct from ErrAssignmentNotFound because the caller is
	// an anonymous token holder, not staff.
	ErrTokenNotFound = fmt.Errorf("%w: assignment token", ErrNotFound)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
