package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/insighthr/dossier-api/internal/api"
	apiMiddleware "github.com/insighthr/dossier-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all
// routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(
		app.staffUserStore,
		app.jwtService,
		app.passwordVerifier,
		app.tokenLifetime(),
	)
	dossierHandler := api.NewDossierHandler(app.dossierService)
	assignmentHandler := api.NewAssignmentHandler(app.assignmentService, app.config.Mail.FormBaseURL)
	formHandler := api.NewFormHandler(app.assignmentService)
	callbackHandler := api.NewCallbackHandler(app.dossierService, app.vault)
	secretHandler := api.NewSecretHandler(app.vault)
	healthHandler := api.NewHealthHandler(app.resolver)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Public endpoints. Login, the token-gated form surface, and
		// the engine callback carry their own credentials, so they sit
		// behind rate limiting instead of staff auth.
		r.Group(func(r chi.Router) {
			r.Use(apiMiddleware.RateLimit(10, 20))

			r.Post("/auth/login", authHandler.Login)

			r.Get("/forms/fill/{token}", formHandler.Resolve)
			r.Post("/forms/fill/{token}", formHandler.Submit)

			r.Post("/webhooks/n8n/callback", callbackHandler.HandleCallback)
		})

		// Staff endpoints
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Post("/analyses/{analysisID}/dossier", dossierHandler.RequestDossier)
			r.Get("/analyses/{analysisID}/dossier", dossierHandler.GetStatus)
			r.Post("/dossiers/{jobID}/retry", dossierHandler.RetryDossier)

			r.Post("/analyses/{analysisID}/assignments", assignmentHandler.Create)
			r.Get("/analyses/{analysisID}/assignments", assignmentHandler.ListByAnalysis)
			r.Post("/assignments/{assignmentID}/remind", assignmentHandler.Remind)
			r.Delete("/assignments/{assignmentID}", assignmentHandler.Remove)

			// Admin endpoints
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.RequireAdmin)

				r.Put("/admin/secrets/{service}/{key}", secretHandler.PutSecret)
				r.Get("/admin/secrets/{service}", secretHandler.ListSecrets)
			})
		})
	})

	r.Get("/health", healthHandler.Health)

	return r
}
