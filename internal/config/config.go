package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Vault    VaultConfig    `mapstructure:"vault"    validate:"required"`
	Webhook  WebhookConfig  `mapstructure:"webhook"  validate:"required"`
	Mail     MailConfig     `mapstructure:"mail"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains authentication settings for staff-facing endpoints.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// VaultConfig contains settings for the secrets vault.
//
// MasterKey is the base64-encoded 32-byte AES key used to encrypt
// stored secrets. It is never persisted to the database; a missing or
// malformed key aborts process startup because every dispatch path
// depends on it.
type VaultConfig struct {
	MasterKey       string `mapstructure:"master_key"        validate:"required"`
	CacheTTLSeconds int    `mapstructure:"cache_ttl_seconds" validate:"omitempty,gt=0"`
}

// WebhookConfig contains settings for outbound dispatch to the external
// workflow engine and for the callback URL handed to it.
type WebhookConfig struct {
	// CallbackBaseURL is the externally reachable base URL of this
	// service, used to build the callbackUrl included in every dispatch
	// envelope.
	CallbackBaseURL string `mapstructure:"callback_base_url" validate:"required,url"`

	// DefaultURL is an optional process-level fallback for the
	// production webhook URL when no secret is configured.
	DefaultURL string `mapstructure:"default_url" validate:"omitempty,url"`

	// TimeoutSeconds bounds the outbound dispatch call. Defaults to 30.
	TimeoutSeconds int `mapstructure:"timeout_seconds" validate:"omitempty,gt=0"`
}

// MailConfig contains settings for assignment invite/reminder delivery.
// Delivery is optional: with an empty API key assignments are still
// created, they just stay pending until a later reminder succeeds.
type MailConfig struct {
	SendGridAPIKey string `mapstructure:"sendgrid_api_key"`
	FromAddress    string `mapstructure:"from_address" validate:"omitempty,email"`
	FromName       string `mapstructure:"from_name"`

	// FormBaseURL is the public base URL for token-gated form links
	// embedded in invite emails.
	FormBaseURL string `mapstructure:"form_base_url" validate:"omitempty,url"`
}
