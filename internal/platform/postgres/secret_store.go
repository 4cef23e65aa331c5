package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/insighthr/dossier-api/internal/domain"
	"github.com/insighthr/dossier-api/internal/platform/logger"
	"github.com/insighthr/dossier-api/internal/store"
)

// PostgresSecretStore implements the store.SecretStore interface
// using a PostgreSQL database as the storage backend. Rows hold
// ciphertext only; plaintext never reaches this layer.
type PostgresSecretStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSecretStore creates a new PostgreSQL implementation of
// the SecretStore interface.
func NewPostgresSecretStore(db store.DBTX, logger *slog.Logger) *PostgresSecretStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSecretStore{
		db:     db,
		logger: logger.With(slog.String("component", "secret_store")),
	}
}

// Ensure PostgresSecretStore implements store.SecretStore interface
var _ store.SecretStore = (*PostgresSecretStore)(nil)

// Upsert implements store.SecretStore.Upsert. The (service, key) pair
// is the natural identity; a rotation replaces ciphertext, nonce, and
// audit fields in place.
func (s *PostgresSecretStore) Upsert(ctx context.Context, secret *domain.Secret) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := secret.Validate(); err != nil {
		log.Warn("secret validation failed during upsert",
			slog.String("error", err.Error()),
			slog.String("service", secret.Service),
			slog.String("key", secret.Key))
		return err
	}

	query := `
		INSERT INTO secrets (id, service, key, ciphertext, nonce, sensitive, updated_by, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (service, key) DO UPDATE
		SET ciphertext = EXCLUDED.ciphertext,
			nonce = EXCLUDED.nonce,
			sensitive = EXCLUDED.sensitive,
			updated_by = EXCLUDED.updated_by,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		secret.ID,
		secret.Service,
		secret.Key,
		secret.Ciphertext,
		secret.Nonce,
		secret.Sensitive,
		secret.UpdatedBy,
		secret.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to upsert secret",
			slog.String("error", err.Error()),
			slog.String("service", secret.Service),
			slog.String("key", secret.Key))
		return MapError(err)
	}

	return nil
}

// Get implements store.SecretStore.Get.
// Returns store.ErrSecretNotFound if no row exists.
func (s *PostgresSecretStore) Get(ctx context.Context, service, key string) (*domain.Secret, error) {
	query := `
		SELECT id, service, key, ciphertext, nonce, sensitive, updated_by, updated_at
		FROM secrets
		WHERE service = $1 AND key = $2
	`
	var secret domain.Secret
	err := s.db.QueryRowContext(ctx, query, service, key).Scan(
		&secret.ID,
		&secret.Service,
		&secret.Key,
		&secret.Ciphertext,
		&secret.Nonce,
		&secret.Sensitive,
		&secret.UpdatedBy,
		&secret.UpdatedAt,
	)
	if err != nil {
		if mapped := MapError(err); store.IsNotFoundError(mapped) {
			return nil, store.ErrSecretNotFound
		}
		return nil, fmt.Errorf("failed to scan secret: %w", err)
	}

	return &secret, nil
}

// ListByService implements store.SecretStore.ListByService.
func (s *PostgresSecretStore) ListByService(ctx context.Context, service string) ([]*domain.Secret, error) {
	query := `
		SELECT id, service, key, ciphertext, nonce, sensitive, updated_by, updated_at
		FROM secrets
		WHERE service = $1
		ORDER BY key
	`
	rows, err := s.db.QueryContext(ctx, query, service)
	if err != nil {
		return nil, fmt.Errorf("failed to list secrets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	secrets := []*domain.Secret{}
	for rows.Next() {
		var secret domain.Secret
		err := rows.Scan(
			&secret.ID,
			&secret.Service,
			&secret.Key,
			&secret.Ciphertext,
			&secret.Nonce,
			&secret.Sensitive,
			&secret.UpdatedBy,
			&secret.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan secret: %w", err)
		}
		secrets = append(secrets, &secret)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate secrets: %w", err)
	}

	return secrets, nil
}
