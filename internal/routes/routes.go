package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/nestgirl/nestgirl-backend/internal/config"
	"github.com/nestgirl/nestgirl-backend/internal/handlers"
	"github.com/nestgirl/nestgirl-backend/internal/middleware"
	"github.com/nestgirl/nestgirl-backend/internal/modules"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	settingsHandler *handlers.SettingsHandler,
	adminHandler *handlers.AdminHandler,
	mods []modules.Module,
) {
	api := app.Group("/api")

	// 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)
	api.Get("/settings", settingsHandler.GetSettings)

	// Auth: stricter 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/logout", middleware.JWTProtected(cfg), authHandler.Logout)
	auth.Delete("/account", middleware.JWTProtected(cfg), authHandler.DeleteAccount)

	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.AdminRequired(db, cfg))
	admin.Get("/users", adminHandler.ListUsers)
	admin.Put("/settings/:key", settingsHandler.SetSetting)
	admin.Delete("/settings/:key", settingsHandler.DeleteSetting)

	me := api.Group("/me", middleware.JWTProtected(cfg))
	for _, m := range mods {
		m.RegisterRoutes(me)
		if am, ok := m.(modules.AdminModule); ok {
			am.RegisterAdminRoutes(admin)
		}
	}
}
