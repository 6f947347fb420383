package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sanadchat/sanad/internal/api"
	"github.com/sanadchat/sanad/internal/auth"
	"github.com/sanadchat/sanad/internal/database"
	"github.com/sanadchat/sanad/internal/tasks"
	"github.com/sanadchat/sanad/pkg/config"
	"github.com/sanadchat/sanad/pkg/mailer"
	"github.com/sanadchat/sanad/pkg/queue"
	"github.com/sanadchat/sanad/pkg/util"
)

func main() {
	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := util.NewLogger(cfg.Server.Env)
	slog.SetDefault(logger)

	logger.Info("starting Sanad server",
		"env", cfg.Server.Env,
		"addr", cfg.Server.Addr(),
	)

	// Connect to database
	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.AutoMigrate(db); err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	// Connect to Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Warn("failed to connect to Redis, falling back to in-process token store and synchronous email", "error", err)
		redisClient = nil
	}

	// Token store: Redis when available so tokens survive restarts and
	// multiple API instances, in-memory map otherwise.
	var tokenStore auth.TokenStore
	if redisClient != nil {
		tokenStore = auth.NewRedisTokenStore(redisClient)
	} else {
		tokenStore = auth.NewMemoryTokenStore()
	}

	// Email: enqueue for the worker when Redis is up, send inline otherwise.
	smtpMailer := mailer.New(&cfg.SMTP)
	var notifier auth.Notifier = smtpMailer
	var asynqClient *asynq.Client
	if redisClient != nil {
		asynqClient = queue.NewClient(&cfg.Redis)
		notifier = tasks.NewQueueNotifier(asynqClient)
	}

	// Initialize services
	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.Expiry())
	if err != nil {
		logger.Error("failed to create jwt service", "error", err)
		os.Exit(1)
	}

	authService := auth.NewService(db, jwtService, tokenStore, notifier, logger, auth.Links{
		VerifyEmailURL:   cfg.App.VerifyEmailURL,
		ResetPasswordURL: cfg.App.ResetPasswordURL,
		VerifyEmailTTL:   cfg.Tokens.VerifyEmailTTL(),
		ResetPasswordTTL: cfg.Tokens.ResetPasswordTTL(),
	})

	// Create router
	router := api.NewRouter(api.RouterConfig{
		DB:          db,
		Redis:       redisClient,
		Logger:      logger,
		JWTService:  jwtService,
		AuthService: authService,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	// Close Asynq client
	if asynqClient != nil {
		asynqClient.Close()
	}

	// Close Redis connection
	if redisClient != nil {
		redisClient.Close()
	}

	// Close database connection
	sqlDB, _ := db.DB()
	sqlDB.Close()

	logger.Info("server stopped")
}
