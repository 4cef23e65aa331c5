package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Secret.
var (
	ErrEmptySecretService = errors.New("secret service cannot be empty")
	ErrEmptySecretKey     = errors.New("secret key cannot be empty")
	ErrEmptySecretValue   = errors.New("secret value cannot be empty")
)

// Secret is an encrypted third-party credential stored by the vault.
// Ciphertext carries the base64-encoded AES-GCM output (tag included)
// and Nonce the base64-encoded 12-byte nonce, so a row round-trips
// without any out-of-band state. The plaintext never appears in this
// struct.
type Secret struct {
	ID         uuid.UUID `json:"id"`
	Service    string    `json:"service"`
	Key        string    `json:"key"`
	Ciphertext string    `json:"-"`
	Nonce      string    `json:"-"`
	Sensitive  bool      `json:"sensitive"`
	UpdatedBy  uuid.UUID `json:"updated_by"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewSecret creates a Secret row for the given service/key pair.
// Encryption is the vault's concern; the ciphertext and nonce are
// supplied already encoded.
func NewSecret(service, key, ciphertext, nonce string, sensitive bool, updatedBy uuid.UUID) (*Secret, error) {
	secret := &Secret{
		ID:         uuid.New(),
		Service:    service,
		Key:        key,
		Ciphertext: ciphertext,
		Nonce:      nonce,
		Sensitive:  sensitive,
		UpdatedBy:  updatedBy,
		UpdatedAt:  time.Now().UTC(),
	}

	if err := secret.Validate(); err != nil {
		return nil, err
	}

	return secret, nil
}

// Validate checks if the Secret has valid data.
func (s *Secret) Validate() error {
	if s.Service == "" {
		return ErrEmptySecretService
	}
	if s.Key == "" {
		return ErrEmptySecretKey
	}
	if s.Ciphertext == "" || s.Nonce == "" {
		return ErrEmptySecretValue
	}
	return nil
}

// MaskSecret returns a display-safe rendering of a plaintext secret:
// only the trailing 4 characters are revealed, and anything 4
// characters or shorter is fully masked.
func MaskSecret(plaintext string) string {
	if len(plaintext) <= 4 {
		return "••••"
	}
	return strings.Repeat("•", 4) + plaintext[len(plaintext)-4:]
}
