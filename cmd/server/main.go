package main

import (
	"context"
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

	"github.com/nestgirl/nestgirl-backend/internal/config"
	"github.com/nestgirl/nestgirl-backend/internal/database"
	"github.com/nestgirl/nestgirl-backend/internal/handlers"
	"github.com/nestgirl/nestgirl-backend/internal/logging"
	"github.com/nestgirl/nestgirl-backend/internal/middleware"
	"github.com/nestgirl/nestgirl-backend/internal/modules"
	"github.com/nestgirl/nestgirl-backend/internal/modules/assistant"
	"github.com/nestgirl/nestgirl-backend/internal/modules/tracker"
	"github.com/nestgirl/nestgirl-backend/internal/routes"
	"github.com/nestgirl/nestgirl-backend/internal/services"
	"github.com/nestgirl/nestgirl-backend/internal/status"
)

const (
	logRetention   = 30 * 24 * time.Hour
	tokenRetention = 7 * 24 * time.Hour
)

func main() {
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

	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.MigrateShared(); err != nil {
		slog.Error("shared migration failed", "error", err)
		os.Exit(1)
	}

	// ERROR+ records are also batched into system_logs
	pgLogHandler := logging.NewPGHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		logging.NewStdoutHandler(),
		pgLogHandler,
	)))

	cleanupDone := make(chan struct{})
	logging.StartCleanup(cleanupDone,
		logging.SystemLogSweep(database.DB, logRetention),
		logging.RefreshTokenSweep(database.DB, tokenRetention),
	)

	loc := cfg.Location()
	engine := status.NewEngine(loc)
	clock := status.SystemClock{}

	// Services
	authService := services.NewAuthService(database.DB, cfg, clock, engine.Calendar())
	userService := services.NewUserService(database.DB)
	trackerService := tracker.NewService(tracker.NewGormStore(database.DB), engine, clock, cfg.SaveRetries)

	var generator assistant.Generator
	if cfg.GeminiAPIKey != "" {
		gen, err := assistant.NewGeminiGenerator(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel, cfg.AITimeout)
		if err != nil {
			slog.Error("gemini client init failed, assistant will use fallback texts", "error", err)
		} else {
			generator = gen
		}
	} else {
		slog.Warn("GEMINI_API_KEY not set, assistant will use fallback texts")
	}

	var aiCache assistant.Cache = assistant.NopCache{}
	var redisCache *assistant.RedisCache
	if cfg.RedisAddr != "" {
		redisCache = assistant.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisCache.Ping(ctx); err != nil {
			slog.Warn("redis unreachable at startup, cache reads will miss until it recovers", "addr", cfg.RedisAddr, "error", err)
		}
		cancel()
		aiCache = redisCache
	}

	assistantService := assistant.NewService(generator, aiCache, trackerService,
		assistant.NewUserDirectory(database.DB), clock, engine.Calendar())

	mods := []modules.Module{
		tracker.New(trackerService),
		assistant.New(assistantService),
	}

	for _, m := range mods {
		if models := m.Models(); len(models) > 0 {
			if err := database.MigrateModels(models); err != nil {
				slog.Error("module migration failed", "module", m.ID(), "error", err)
				os.Exit(1)
			}
			slog.Info("module migrated", "module", m.ID(), "models", len(models))
		}
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	healthHandler := handlers.NewHealthHandler(len(mods))
	settingsHandler := handlers.NewSettingsHandler(database.DB)
	adminHandler := handlers.NewAdminHandler(userService)

	if err := settingsHandler.SeedDefaults(); err != nil {
		slog.Error("seeding default settings failed", "error", err)
	}

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

	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())

	routes.Setup(app, cfg, database.DB, authHandler, healthHandler, settingsHandler, adminHandler, mods)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "timezone", loc.String())
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	close(cleanupDone)
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if redisCache != nil {
		if err := redisCache.Close(); err != nil {
			slog.Error("redis close error", "error", err)
		}
	}
	if err := database.Close(); err != nil {
		slog.Error("database close error", "error", err)
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

	// 5xx details stay in the logs
	if code >= 500 {
		slog.Error("unhandled server error",
			"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
			"method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
