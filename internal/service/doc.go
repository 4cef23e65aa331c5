// Package service contains the application use cases of the
// orchestration core. It coordinates domain entities, stores, the
// vault, and the webhook dispatcher, applying transactional boundaries
// where an operation spans multiple repositories. Services return
// sentinel errors for expected conditions; the API layer maps those to
// HTTP status codes.
package service
