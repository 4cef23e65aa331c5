package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insighthr/dossier-api/internal/vault"
	"github.com/insighthr/dossier-api/internal/webhook"
)

func newHealthResolver(t *testing.T, webhookURL string) *webhook.Resolver {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	v, err := vault.New(bytes.Repeat([]byte{0x42}, vault.MasterKeySize), newFakeSecretStore(), log)
	require.NoError(t, err)

	if webhookURL != "" {
		require.NoError(t, v.Put(
			context.Background(),
			webhook.ServiceN8N, "webhook_url", webhookURL,
			false, uuid.New(),
		))
	}
	return webhook.NewResolver(v, "", log)
}

func getHealth(t *testing.T, resolver *webhook.Resolver) (int, map[string]string) {
	t.Helper()

	handler := NewHealthHandler(resolver)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.Health(rec, req)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestHealthWebhookConfigured(t *testing.T) {
	resolver := newHealthResolver(t, "https://n8n.example.com/webhook/dossier")

	code, body := getHealth(t, resolver)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "configured", body["webhook"])
}

func TestHealthWebhookNotConfigured(t *testing.T) {
	// No URL secret and no fallback. Still 200: a blank vault is a
	// setup state the operator resolves through the admin API, not an
	// outage.
	resolver := newHealthResolver(t, "")

	code, body := getHealth(t, resolver)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "not_configured", body["webhook"])
}
