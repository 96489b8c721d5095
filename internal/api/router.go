package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/koloni/koloni-be/internal/api/handlers"
	"github.com/koloni/koloni-be/internal/auth"
	"github.com/koloni/koloni-be/internal/history"
	"github.com/koloni/koloni-be/internal/services"
	"github.com/koloni/koloni-be/internal/websocket"
)

// Deps bundles everything the router needs.
type Deps struct {
	Hub               *websocket.Hub
	LedgerService     services.LedgerServiceProvider
	GenerationService services.GenerationServiceProvider
	ExportService     services.ExportServiceProvider
	ContactService    services.ContactServiceProvider
	UserService       services.UserServiceProvider
	EventService      services.EventServiceProvider
	HistoryLog        *history.Log
	StripeSecret      string
	AllowedOrigins    []string
}

// NewRouter creates and configures a new Chi router.
func NewRouter(deps Deps) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Stripe-Signature"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	tokenHandler := handlers.NewTokenHandler(deps.LedgerService)
	generationHandler := handlers.NewGenerationHandler(deps.GenerationService, deps.LedgerService, deps.HistoryLog)
	exportHandler := handlers.NewExportHandler(deps.ExportService)
	webhookHandler := handlers.NewWebhookHandler(deps.LedgerService, deps.EventService, deps.StripeSecret)
	contactHandler := handlers.NewContactHandler(deps.ContactService)
	userHandler := handlers.NewUserHandler(deps.UserService)
	eventHandler := handlers.NewEventHandler(deps.EventService)
	systemHandler := handlers.NewSystemHandler()
	wsHandler := handlers.NewWebSocketHandler(deps.Hub)

	// API versioning
	r.Route("/api/v1", func(r chi.Router) {
		// WebSocket event feed
		r.Get("/ws", wsHandler.Serve)

		// Token ledger
		r.Post("/tokens", tokenHandler.Manage)

		// AI content generation
		r.Post("/generate/{format}", generationHandler.Generate)
		r.Get("/generations/{userId}", generationHandler.History)

		// Platform exports
		r.Post("/export/{platform}", exportHandler.Export)

		// Payments
		r.Post("/webhooks/stripe", webhookHandler.HandleStripe)

		// Contact form
		r.Post("/contact", contactHandler.Submit)

		// Dashboard auth
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", userHandler.Register)
			r.Post("/login", userHandler.Login)
			r.With(auth.JWTMiddleware()).Get("/me", userHandler.GetMe)
		})

		// Authenticated dashboard surface
		r.Group(func(r chi.Router) {
			r.Use(auth.JWTMiddleware())
			r.Post("/admin/tokens/grant", tokenHandler.Grant)
			r.Get("/events", eventHandler.GetRecent)
			r.Get("/system/stats", systemHandler.GetStats)
		})
	})

	return r
}
