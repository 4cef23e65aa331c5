package vault

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/insighthr/dossier-api/internal/domain"
	"github.com/insighthr/dossier-api/internal/platform/logger"
	"github.com/insighthr/dossier-api/internal/store"
)

// MasterKeySize is the required length of the AES-256 master key.
const MasterKeySize = 32

// nonceSize is the GCM nonce length stored alongside each value.
const nonceSize = 12

// DefaultCacheTTL bounds how long a decrypted secret may be served
// from the process-local cache.
const DefaultCacheTTL = 5 * time.Minute

// Vault encrypts, stores, and retrieves third-party credentials.
type Vault struct {
	secrets store.SecretStore
	aead    cipher.AEAD
	cache   *secretCache
	logger  *slog.Logger
}

// Option customizes a Vault.
type Option func(*options)

type options struct {
	ttl   time.Duration
	clock func() time.Time
}

// WithCacheTTL overrides the default cache TTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(o *options) { o.ttl = ttl }
}

// WithClock injects a clock, used by tests to drive cache expiry.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.clock = now }
}

// New creates a Vault from a raw 32-byte master key. A short or
// malformed key is a fatal configuration error: the process must not
// start without a working vault because every dispatch depends on it.
func New(masterKey []byte, secrets store.SecretStore, log *slog.Logger, opts ...Option) (*Vault, error) {
	if len(masterKey) != MasterKeySize {
		return nil, fmt.Errorf("vault master key must be %d bytes, got %d", MasterKeySize, len(masterKey))
	}
	if secrets == nil {
		return nil, fmt.Errorf("secret store cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	block, err := aes.NewCipher(masterKey)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize GCM: %w", err)
	}

	o := options{ttl: DefaultCacheTTL, clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	return &Vault{
		secrets: secrets,
		aead:    aead,
		cache:   newSecretCache(o.ttl, o.clock),
		logger:  log.With(slog.String("component", "vault")),
	}, nil
}

// Put encrypts the plaintext and upserts it under (service, key),
// then synchronously invalidates the local cache entry so this process
// never serves the old value past the write.
func (v *Vault) Put(ctx context.Context, service, key, plaintext string, sensitive bool, updatedBy uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, v.logger)

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	// Seal appends the 16-byte authentication tag to the ciphertext,
	// so one column round-trips ciphertext and tag together.
	sealed := v.aead.Seal(nil, nonce, []byte(plaintext), nil)

	secret, err := domain.NewSecret(
		service,
		key,
		base64.StdEncoding.EncodeToString(sealed),
		base64.StdEncoding.EncodeToString(nonce),
		sensitive,
		updatedBy,
	)
	if err != nil {
		return err
	}

	if err := v.secrets.Upsert(ctx, secret); err != nil {
		return fmt.Errorf("failed to store secret: %w", err)
	}

	v.cache.evict(service, key)

	log.Info("secret stored",
		slog.String("service", service),
		slog.String("key", key),
		slog.Bool("sensitive", sensitive))
	return nil
}

// Get looks up and decrypts a secret. The second return value is false
// when the secret is missing or cannot be decrypted; callers treat
// both as "feature not configured". Cryptographic failures are logged
// for operators but never surfaced to callers.
func (v *Vault) Get(ctx context.Context, service, key string) (string, bool) {
	log := logger.FromContextOrDefault(ctx, v.logger)

	secret, err := v.secrets.Get(ctx, service, key)
	if err != nil {
		if !store.IsNotFoundError(err) {
			log.Warn("secret lookup failed",
				slog.String("service", service),
				slog.String("key", key),
				slog.String("error", err.Error()))
		}
		return "", false
	}

	plaintext, err := v.decrypt(secret)
	if err != nil {
		log.Warn("secret decryption failed, treating as not configured",
			slog.String("service", service),
			slog.String("key", key),
			slog.String("error", err.Error()))
		return "", false
	}

	return plaintext, true
}

// GetCached is Get behind the process-local TTL cache. A failed
// underlying lookup evicts any stale cache entry so a deleted secret
// does not linger until TTL expiry.
func (v *Vault) GetCached(ctx context.Context, service, key string) (string, bool) {
	if plaintext, ok := v.cache.get(service, key); ok {
		return plaintext, true
	}

	plaintext, ok := v.Get(ctx, service, key)
	if !ok {
		v.cache.evict(service, key)
		return "", false
	}

	v.cache.set(service, key, plaintext)
	return plaintext, true
}

// Invalidate drops cached entries: one key when given, the whole
// service otherwise.
func (v *Vault) Invalidate(service string, keys ...string) {
	if len(keys) == 0 {
		v.cache.evictService(service)
		return
	}
	for _, key := range keys {
		v.cache.evict(service, key)
	}
}

// List returns the stored secret rows for a service with values
// masked for display. Plaintext never leaves the vault through this
// path.
func (v *Vault) List(ctx context.Context, service string) ([]MaskedSecret, error) {
	rows, err := v.secrets.ListByService(ctx, service)
	if err != nil {
		return nil, fmt.Errorf("failed to list secrets: %w", err)
	}

	masked := make([]MaskedSecret, 0, len(rows))
	for _, row := range rows {
		m := MaskedSecret{
			Service:   row.Service,
			Key:       row.Key,
			Sensitive: row.Sensitive,
			UpdatedAt: row.UpdatedAt,
			Value:     "••••",
		}
		// Non-sensitive values (URLs, header names) may reveal their
		// tail for recognition; sensitive ones stay fully masked.
		if !row.Sensitive {
			if plaintext, err := v.decrypt(row); err == nil {
				m.Value = domain.MaskSecret(plaintext)
			}
		}
		masked = append(masked, m)
	}
	return masked, nil
}

// MaskedSecret is the display shape of a stored secret.
type MaskedSecret struct {
	Service   string    `json:"service"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	Sensitive bool      `json:"sensitive"`
	UpdatedAt time.Time `json:"updated_at"`
}

// decrypt decodes and opens one stored row.
func (v *Vault) decrypt(secret *domain.Secret) (string, error) {
	nonce, err := base64.StdEncoding.DecodeString(secret.Nonce)
	if err != nil {
		return "", fmt.Errorf("malformed nonce: %w", err)
	}
	if len(nonce) != nonceSize {
		return "", fmt.Errorf("unexpected nonce length %d", len(nonce))
	}

	sealed, err := base64.StdEncoding.DecodeString(secret.Ciphertext)
	if err != nil {
		return "", fmt.Errorf("malformed ciphertext: %w", err)
	}

	plaintext, err := v.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		// Tag mismatch or corrupt ciphertext. Fail closed.
		return "", fmt.Errorf("authenticated decryption failed: %w", err)
	}

	return string(plaintext), nil
}
