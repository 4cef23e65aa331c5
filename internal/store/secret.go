package store

import (
	"context"

	"github.com/insighthr/dossier-api/internal/domain"
)

// SecretStore defines the interface for encrypted secret persistence.
// Rows carry ciphertext only; encryption and decryption are the
// vault's concern.
type SecretStore interface {
	// Upsert inserts the secret or replaces the existing row with the
	// same (service, key) pair.
	Upsert(ctx context.Context, secret *domain.Secret) error

	// Get retrieves a secret row by service and key.
	// Returns ErrSecretNotFound if no row exists.
	Get(ctx context.Context, service, key string) (*domain.Secret, error)

	// ListByService retrieves all secret rows for a service, ordered
	// by key. Returns an empty slice when none exist.
	ListByService(ctx context.Context, service string) ([]*domain.Secret, error)
}
