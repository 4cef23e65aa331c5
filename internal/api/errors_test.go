package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/insighthr/dossier-api/internal/domain"
	"github.com/insighthr/dossier-api/internal/service"
	"github.com/insighthr/dossier-api/internal/service/auth"
	"github.com/insighthr/dossier-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{
			name:           "nil error",
			err:            nil,
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "invalid token",
			err:            auth.ErrInvalidToken,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "wrapped expired token",
			err:            fmt.Errorf("failed to authenticate: %w", auth.ErrExpiredToken),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "invalid credentials",
			err:            auth.ErrInvalidCredentials,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "job already in progress",
			err:            service.ErrJobAlreadyInProgress,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "retry of non-failed job",
			err:            service.ErrJobNotFailed,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "assignment already completed",
			err:            service.ErrAlreadyCompleted,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "reminder not allowed",
			err:            service.ErrReminderNotAllowed,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "unknown assignment token",
			err:            service.ErrTokenInvalid,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "expired assignment token",
			err:            service.ErrTokenExpired,
			expectedStatus: http.StatusGone,
		},
		{
			name:           "form not available",
			err:            service.ErrFormNotAvailable,
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "analysis not found",
			err:            store.ErrAnalysisNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "wrapped job not found",
			err:            fmt.Errorf("failed to get job: %w", store.ErrJobNotFound),
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "invalid job status",
			err:            domain.ErrInvalidJobStatus,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "malformed submission answers",
			err:            domain.ErrInvalidSubmissionJSON,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown error",
			err:            errors.New("unexpected database failure"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedStatus, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	tests := []struct {
		name            string
		err             error
		expectedMessage string
	}{
		{
			name:            "nil error",
			err:             nil,
			expectedMessage: "An unexpected error occurred",
		},
		{
			name:            "invalid credentials",
			err:             auth.ErrInvalidCredentials,
			expectedMessage: "Invalid credentials",
		},
		{
			name:            "expired staff token",
			err:             auth.ErrExpiredToken,
			expectedMessage: "Token expired",
		},
		{
			name:            "job already in progress",
			err:             service.ErrJobAlreadyInProgress,
			expectedMessage: "A dossier job is already in progress for this analysis",
		},
		{
			name:            "unknown assignment token reads as not found",
			err:             service.ErrTokenInvalid,
			expectedMessage: "Form not found",
		},
		{
			name:            "expired assignment token",
			err:             service.ErrTokenExpired,
			expectedMessage: "This form link has expired",
		},
		{
			name:            "already submitted",
			err:             service.ErrAlreadyCompleted,
			expectedMessage: "This form has already been submitted",
		},
		{
			name:            "analysis not found",
			err:             store.ErrAnalysisNotFound,
			expectedMessage: "Analysis not found",
		},
		{
			name:            "internal detail never leaks",
			err:             errors.New("pq: connection refused to db at 10.0.0.5:5432"),
			expectedMessage: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedMessage, GetSafeErrorMessage(tt.err))
		})
	}
}
