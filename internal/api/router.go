package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/loadline/collab/internal/api/handler"
	customMiddleware "github.com/loadline/collab/internal/api/middleware"
	"github.com/loadline/collab/internal/config"
	"github.com/loadline/collab/internal/realtime"
	"github.com/loadline/collab/internal/repository/postgres"
	"github.com/loadline/collab/internal/repository/redis"
	"github.com/loadline/collab/internal/security"
	"github.com/loadline/collab/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, db *postgres.DB, redisClient *redis.Client, hub *realtime.Hub) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize repositories
	sessionRepo := postgres.NewSessionRepository(db)
	participantRepo := postgres.NewParticipantRepository(db)
	annotationRepo := postgres.NewAnnotationRepository(db)
	commentRepo := postgres.NewCommentRepository(db)

	// Initialize services
	sessionService := service.NewSessionService(sessionRepo, participantRepo)
	collabService := service.NewCollabService(sessionService, annotationRepo, commentRepo)

	// Initialize handlers
	sessionHandler := handler.NewSessionHandler(sessionService)
	annotationHandler := handler.NewAnnotationHandler(collabService)
	commentHandler := handler.NewCommentHandler(collabService)
	wsHandler := handler.NewWSHandler(hub, sessionService, realtime.Options{
		SendBuffer:     cfg.Realtime.SendBuffer,
		WriteWait:      cfg.Realtime.WriteWait,
		PongWait:       cfg.Realtime.PongWait,
		PingPeriod:     cfg.Realtime.PingPeriod,
		MaxMessageSize: cfg.Realtime.MaxMessageSize,
	})

	// Auth and rate limit middleware
	validator := security.NewTokenValidator(cfg.Auth.JWTSecret)
	authMiddleware := customMiddleware.NewAuthMiddleware(validator)
	rateLimiter := redis.NewRateLimiter(
		redisClient,
		cfg.Security.RateLimit.RequestsPerMinute,
		cfg.Security.RateLimit.Burst,
	)
	rateLimitMiddleware := customMiddleware.NewRateLimitMiddleware(rateLimiter)

	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(db))

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Route("/sessions", func(r chi.Router) {
				r.Get("/", sessionHandler.List)
				r.With(rateLimitMiddleware.Limit).Post("/", sessionHandler.Create)

				r.Route("/{sessionID}", func(r chi.Router) {
					r.Use(customMiddleware.SessionContext)

					r.Get("/", sessionHandler.Get)
					r.Get("/participants", sessionHandler.Participants)

					// Long-lived; kept outside the rate limiter.
					r.Get("/ws", wsHandler.Serve)

					r.Group(func(r chi.Router) {
						r.Use(rateLimitMiddleware.Limit)

						r.Post("/join", sessionHandler.Join)
						r.Post("/leave", sessionHandler.Leave)
						r.Post("/end", sessionHandler.End)

						r.Route("/annotations", func(r chi.Router) {
							r.Get("/", annotationHandler.List)
							r.Post("/", annotationHandler.Create)
							r.Patch("/{annotationID}", annotationHandler.Update)
							r.Delete("/{annotationID}", annotationHandler.Delete)
						})

						r.Route("/comments", func(r chi.Router) {
							r.Get("/", commentHandler.List)
							r.Post("/", commentHandler.Create)
						})
					})
				})
			})
		})
	})

	return r
}
