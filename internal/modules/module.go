package modules

import (
	"github.com/gofiber/fiber/v2"
)

// Module is a feature area mounted under /api/me.
type Module interface {
	// ID names the module in startup logs.
	ID() string

	// Models returns GORM model pointers owned by the module, for AutoMigrate.
	Models() []interface{}

	// RegisterRoutes mounts user routes. The group already has JWT middleware applied.
	RegisterRoutes(router fiber.Router)
}

// AdminModule is implemented by modules that also expose admin-only routes.
type AdminModule interface {
	Module

	// RegisterAdminRoutes mounts routes on a group guarded by JWT and admin middleware.
	RegisterAdminRoutes(router fiber.Router)
}
