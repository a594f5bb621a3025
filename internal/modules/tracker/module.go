package tracker

import (
	"github.com/gofiber/fiber/v2"
)

type TrackerModule struct {
	service *Service
}

func New(service *Service) *TrackerModule {
	return &TrackerModule{service: service}
}

func (m *TrackerModule) ID() string { return "tracker" }

func (m *TrackerModule) Models() []interface{} {
	return []interface{}{
		&ProfileRecord{},
	}
}

func (m *TrackerModule) RegisterRoutes(router fiber.Router) {
	handler := NewStatusHandler(m.service)

	router.Get("/status", handler.GetStatus)
	router.Post("/status/action", handler.ApplyAction)
	router.Get("/profile", handler.GetProfile)
	router.Post("/intake", handler.CompleteIntake)
}

func (m *TrackerModule) RegisterAdminRoutes(router fiber.Router) {
	handler := NewStatusHandler(m.service)

	router.Get("/users/:id/status", handler.GetUserStatus)
}
