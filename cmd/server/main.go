package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/namisapo/minna-diary-backend/internal/cache"
	"github.com/namisapo/minna-diary-backend/internal/config"
	"github.com/namisapo/minna-diary-backend/internal/database"
	"github.com/namisapo/minna-diary-backend/internal/handlers"
	"github.com/namisapo/minna-diary-backend/internal/logging"
	"github.com/namisapo/minna-diary-backend/internal/middleware"
	"github.com/namisapo/minna-diary-backend/internal/routes"
	"github.com/namisapo/minna-diary-backend/internal/services"
	"github.com/namisapo/minna-diary-backend/internal/storage"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	if err := database.Migrate(); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		pgLogHandler,
	)))

	// Log cleanup (30-day retention)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cleanupDone)

	// Cache and object storage
	redisCache := cache.New(cfg)

	var avatarStore *storage.AvatarStore
	if cfg.S3AccessKey != "" {
		store, err := storage.NewAvatarStore(cfg)
		if err != nil {
			slog.Error("avatar storage init failed", "error", err)
			os.Exit(1)
		}
		avatarStore = store
	} else {
		slog.Warn("S3_ACCESS_KEY not set, avatar uploads disabled")
	}

	// Services
	settingsService := services.NewSettingsService(database.DB, redisCache)
	authService := services.NewAuthService(database.DB, cfg, settingsService)
	moderationService := services.NewModerationService(database.DB)
	blockService := services.NewBlockService(database.DB)
	diaryService := services.NewDiaryService(database.DB, cfg, settingsService, moderationService, redisCache)
	commentService := services.NewCommentService(database.DB, settingsService, moderationService)
	profileService := services.NewProfileService(database.DB, blockService)

	if err := settingsService.SeedDefaults(); err != nil {
		slog.Error("settings seed failed", "error", err)
		os.Exit(1)
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	diaryHandler := handlers.NewDiaryHandler(diaryService, authService)
	commentHandler := handlers.NewCommentHandler(commentService, authService)
	blockHandler := handlers.NewBlockHandler(blockService)
	profileHandler := handlers.NewProfileHandler(profileService, avatarStore)
	settingsHandler := handlers.NewSettingsHandler(settingsService)
	moderationHandler := handlers.NewModerationHandler(moderationService)
	healthHandler := handlers.NewHealthHandler()

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    8 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	// Routes
	routes.Setup(app, cfg, database.DB,
		authHandler, diaryHandler, commentHandler, blockHandler,
		profileHandler, settingsHandler, moderationHandler, healthHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	close(cleanupDone)
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
