package main

import (
	"context"
	"database/sql"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"github.com/insighthr/dossier-api/internal/config"
	"github.com/insighthr/dossier-api/internal/platform/postgres"
	"github.com/insighthr/dossier-api/internal/platform/sendgrid"
	"github.com/insighthr/dossier-api/internal/service"
	"github.com/insighthr/dossier-api/internal/service/auth"
	"github.com/insighthr/dossier-api/internal/store"
	"github.com/insighthr/dossier-api/internal/vault"
	"github.com/insighthr/dossier-api/internal/webhook"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	jobStore        store.JobStore
	analysisStore   store.AnalysisStore
	assignmentStore store.AssignmentStore
	submissionStore store.SubmissionStore
	formStore       store.FormStore
	employeeStore   store.EmployeeStore
	staffUserStore  store.StaffUserStore

	// Platform
	vault      *vault.Vault
	resolver   *webhook.Resolver
	dispatcher *webhook.Dispatcher

	// Service interfaces
	jwtService        auth.JWTService
	passwordVerifier  auth.PasswordVerifier
	dossierService    service.DossierService
	assignmentService service.AssignmentService
}

// newApplication creates a new application instance with all
// dependencies initialized. It accepts core dependencies like
// configuration, logger, and database connection that must be
// established before application initialization.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.passwordVerifier = auth.NewBcryptVerifier()

	// Stores
	app.jobStore = postgres.NewPostgresJobStore(db, logger)
	app.analysisStore = postgres.NewPostgresAnalysisStore(db, logger)
	app.assignmentStore = postgres.NewPostgresAssignmentStore(db, logger)
	app.submissionStore = postgres.NewPostgresSubmissionStore(db, logger)
	app.formStore = postgres.NewPostgresFormStore(db, logger)
	app.employeeStore = postgres.NewPostgresEmployeeStore(db, logger)
	app.staffUserStore = postgres.NewPostgresStaffUserStore(db, logger)

	// Vault
	masterKey, err := base64.StdEncoding.DecodeString(cfg.Vault.MasterKey)
	if err != nil {
		return nil, fmt.Errorf("vault master key is not valid base64: %w", err)
	}
	var vaultOpts []vault.Option
	if cfg.Vault.CacheTTLSeconds > 0 {
		vaultOpts = append(vaultOpts,
			vault.WithCacheTTL(time.Duration(cfg.Vault.CacheTTLSeconds)*time.Second))
	}
	app.vault, err = vault.New(masterKey, postgres.NewPostgresSecretStore(db, logger), logger, vaultOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize vault: %w", err)
	}
	logger.Info("Secrets vault initialized")

	// Outbound dispatch
	app.resolver = webhook.NewResolver(app.vault, cfg.Webhook.DefaultURL, logger)
	app.dispatcher = webhook.NewDispatcher(
		app.vault,
		app.resolver,
		app.analysisStore,
		app.submissionStore,
		cfg.Webhook.CallbackBaseURL,
		time.Duration(cfg.Webhook.TimeoutSeconds)*time.Second,
		logger,
	)

	// Invite delivery is optional: without an API key assignments are
	// created pending and links shared out of band.
	var mailer service.Mailer
	if cfg.Mail.SendGridAPIKey != "" {
		sgMailer, err := sendgrid.NewMailer(cfg.Mail, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize mailer: %w", err)
		}
		mailer = sgMailer
		logger.Info("SendGrid mailer initialized", "from", cfg.Mail.FromAddress)
	} else {
		logger.Warn("SendGrid API key not configured, invite delivery disabled")
	}

	app.dossierService, err = service.NewDossierService(
		app.jobStore, app.analysisStore, app.dispatcher, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize dossier service: %w", err)
	}

	app.assignmentService, err = service.NewAssignmentService(
		db,
		app.assignmentStore,
		app.submissionStore,
		app.formStore,
		app.analysisStore,
		app.employeeStore,
		mailer,
		cfg.Mail.FormBaseURL,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize assignment service: %w", err)
	}

	return app, nil
}
