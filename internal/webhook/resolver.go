package webhook

import (
	"context"
	"log/slog"

	"github.com/insighthr/dossier-api/internal/platform/logger"
	"github.com/insighthr/dossier-api/internal/vault"
)

// ServiceN8N is the vault service name under which all workflow-engine
// configuration lives.
const ServiceN8N = "n8n"

// Vault key names for webhook configuration.
const (
	keyWebhookURL      = "webhook_url"
	keyWebhookURLTest  = "webhook_url_test"
	keyAuthHeaderName  = "auth_header_name"
	keyAuthHeaderValue = "auth_header_value"

	// envKeyPrefix + taskType holds the per-task-type environment
	// toggle, either "test" or "production". Absent means production.
	envKeyPrefix = "webhook_env_"
)

// TaskTypeDossier is the task type for dossier generation jobs.
const TaskTypeDossier = "dossier"

// Target is a resolved dispatch destination. IsTest is persisted onto
// any job created from this resolution so test traffic stays
// distinguishable for reporting and cleanup.
type Target struct {
	URL    string
	IsTest bool
}

// Resolver chooses the external endpoint for a task type.
type Resolver struct {
	vault      *vault.Vault
	defaultURL string
	logger     *slog.Logger
}

// NewResolver creates a Resolver. defaultURL is an optional
// process-level fallback for the production URL and may be empty.
func NewResolver(v *vault.Vault, defaultURL string, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{
		vault:      v,
		defaultURL: defaultURL,
		logger:     log.With(slog.String("component", "webhook_resolver")),
	}
}

// Resolve returns the dispatch target for the task type. The second
// return value is false when no URL is configured anywhere; callers
// surface that as "not configured", not as an error.
func (r *Resolver) Resolve(ctx context.Context, taskType string) (Target, bool) {
	log := logger.FromContextOrDefault(ctx, r.logger)

	env, _ := r.vault.GetCached(ctx, ServiceN8N, envKeyPrefix+taskType)
	if env == "test" {
		url, ok := r.vault.GetCached(ctx, ServiceN8N, keyWebhookURLTest)
		if !ok || url == "" {
			log.Warn("test environment selected but no test webhook URL configured",
				slog.String("task_type", taskType))
			return Target{}, false
		}
		return Target{URL: url, IsTest: true}, true
	}

	url, ok := r.vault.GetCached(ctx, ServiceN8N, keyWebhookURL)
	if !ok || url == "" {
		url = r.defaultURL
	}
	if url == "" {
		return Target{}, false
	}
	return Target{URL: url, IsTest: false}, true
}
