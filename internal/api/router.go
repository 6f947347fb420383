package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"github.com/sanadchat/sanad/internal/api/handlers"
	"github.com/sanadchat/sanad/internal/api/middleware"
	"github.com/sanadchat/sanad/internal/auth"
	"github.com/sanadchat/sanad/internal/database/models"
	"gorm.io/gorm"
)

type Router struct {
	chi.Router
}

type RouterConfig struct {
	DB             *gorm.DB
	Redis          *redis.Client
	Logger         *slog.Logger
	JWTService     *auth.JWTService
	AuthService    auth.Authenticator
	AllowedOrigins []string // CORS allowed origins
}

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	// CORS - restrict to configured origins, or allow localhost in development
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis)
	authHandler := handlers.NewAuthHandler(cfg.AuthService)
	userHandler := handlers.NewUserHandler(cfg.DB, cfg.AuthService)
	conversationHandler := handlers.NewConversationHandler(cfg.DB)
	messageHandler := handlers.NewMessageHandler(cfg.DB)

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Public auth endpoints
		r.Post("/auth/register", authHandler.Register)
		r.Get("/auth/verify-email", authHandler.VerifyEmail)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/forget-password", authHandler.ForgetPassword)
		r.Post("/auth/reset-password", authHandler.ResetPassword)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTService))

			// User endpoints
			r.Route("/users", func(r chi.Router) {
				r.With(middleware.RequireRole(models.RoleAdmin)).Get("/", userHandler.List)
				r.Get("/{id}", userHandler.Get)
				r.Put("/{id}", userHandler.Update)
				r.Delete("/{id}", userHandler.Delete)
			})

			// Conversation endpoints
			r.Route("/conversations", func(r chi.Router) {
				r.Post("/", conversationHandler.Create)
				r.Get("/user/{userID}", conversationHandler.ListByUser)
				r.Delete("/{id}", conversationHandler.Delete)
			})

			// Message endpoints
			r.Route("/messages", func(r chi.Router) {
				r.Post("/", messageHandler.Create)
				r.Get("/conversation/{conversationID}", messageHandler.ListByConversation)
			})
		})
	})

	return &Router{r}
}
