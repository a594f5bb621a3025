package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nestgirl/nestgirl-backend/internal/database"
	"github.com/nestgirl/nestgirl-backend/internal/dto"
)

type HealthHandler struct {
	modules int
	ping    func() error
}

func NewHealthHandler(modules int) *HealthHandler {
	return &HealthHandler{modules: modules, ping: database.Ping}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "ok"
	if err := h.ping(); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	return c.JSON(dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
		Modules:   h.modules,
	})
}
