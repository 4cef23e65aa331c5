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

	"github.com/insighthr/dossier-api/internal/domain"
	"github.com/insighthr/dossier-api/internal/vault"
	"github.com/insighthr/dossier-api/internal/webhook"
)

const callbackSecret = "shared-callback-secret-value"

// newCallbackVault builds a real vault over an in-memory secret store.
// Only encryption at rest is in play here, so exercising the real
// cipher path is cheap and catches key wiring mistakes.
func newCallbackVault(t *testing.T, configured bool) *vault.Vault {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	v, err := vault.New(bytes.Repeat([]byte{0x42}, vault.MasterKeySize), newFakeSecretStore(), log)
	require.NoError(t, err)

	if configured {
		require.NoError(t, v.Put(
			context.Background(),
			webhook.ServiceN8N, "auth_header_value", callbackSecret,
			true, uuid.New(),
		))
	}
	return v
}

func validCallbackPayload(jobID, orgID uuid.UUID) []byte {
	payload := map[string]interface{}{
		"job_id":            jobID,
		"organization_id":   orgID,
		"status":            "completed",
		"result_data":       map[string]string{"summary": "strong communicator"},
		"model_used":        "gpt-4o",
		"prompt_tokens":     1200,
		"completion_tokens": 800,
	}
	body, _ := json.Marshal(payload)
	return body
}

func postCallback(handler *CallbackHandler, body []byte, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/n8n/callback", bytes.NewReader(body))
	for name, value := range header {
		req.Header.Set(name, value)
	}
	w := httptest.NewRecorder()
	handler.HandleCallback(w, req)
	return w
}

func TestCallbackSuccess(t *testing.T) {
	jobID := uuid.New()
	orgID := uuid.New()
	dossiers := &fakeDossierService{}
	handler := NewCallbackHandler(dossiers, newCallbackVault(t, true))

	w := postCallback(handler, validCallbackPayload(jobID, orgID), map[string]string{
		"X-Webhook-Signature": callbackSecret,
	})

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, dossiers.callbackCount)
	assert.Equal(t, jobID, dossiers.callbackJob)
	assert.Equal(t, orgID, dossiers.callbackOrg)
	assert.Equal(t, domain.JobStatusCompleted, dossiers.callbackInput.Status)
	assert.Equal(t, "gpt-4o", dossiers.callbackInput.ModelUsed)
	assert.Equal(t, 1200, dossiers.callbackInput.PromptTokens)
}

func TestCallbackCustomHeaderName(t *testing.T) {
	dossiers := &fakeDossierService{}
	v := newCallbackVault(t, true)
	require.NoError(t, v.Put(
		context.Background(),
		webhook.ServiceN8N, "auth_header_name", "X-N8N-Auth",
		false, uuid.New(),
	))
	handler := NewCallbackHandler(dossiers, v)

	w := postCallback(handler, validCallbackPayload(uuid.New(), uuid.New()), map[string]string{
		"X-N8N-Auth": callbackSecret,
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, dossiers.callbackCount)
}

func TestCallbackRejectsWrongSecret(t *testing.T) {
	dossiers := &fakeDossierService{}
	handler := NewCallbackHandler(dossiers, newCallbackVault(t, true))

	w := postCallback(handler, validCallbackPayload(uuid.New(), uuid.New()), map[string]string{
		"X-Webhook-Signature": "guessed-wrong",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, dossiers.callbackCount)
}

func TestCallbackRejectsMissingHeader(t *testing.T) {
	dossiers := &fakeDossierService{}
	handler := NewCallbackHandler(dossiers, newCallbackVault(t, true))

	w := postCallback(handler, validCallbackPayload(uuid.New(), uuid.New()), nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, dossiers.callbackCount)
}

// With no signing secret configured the endpoint fails closed: no
// callback is accepted, signed or not.
func TestCallbackFailsClosedWhenUnconfigured(t *testing.T) {
	dossiers := &fakeDossierService{}
	handler := NewCallbackHandler(dossiers, newCallbackVault(t, false))

	w := postCallback(handler, validCallbackPayload(uuid.New(), uuid.New()), map[string]string{
		"X-Webhook-Signature": callbackSecret,
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, dossiers.callbackCount)
}

func TestCallbackRejectsNonTerminalStatus(t *testing.T) {
	dossiers := &fakeDossierService{}
	handler := NewCallbackHandler(dossiers, newCallbackVault(t, true))

	payload := map[string]interface{}{
		"job_id":          uuid.New(),
		"organization_id": uuid.New(),
		"status":          "processing",
	}
	body, _ := json.Marshal(payload)

	w := postCallback(handler, body, map[string]string{
		"X-Webhook-Signature": callbackSecret,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, dossiers.callbackCount)
}
