package assistant

import (
	"github.com/gofiber/fiber/v2"
)

type AssistantModule struct {
	service *Service
}

func New(service *Service) *AssistantModule {
	return &AssistantModule{service: service}
}

func (m *AssistantModule) ID() string { return "assistant" }

// Generated texts live in the cache, not the database.
func (m *AssistantModule) Models() []interface{} { return nil }

func (m *AssistantModule) RegisterRoutes(router fiber.Router) {
	handler := NewAssistantHandler(m.service)

	router.Get("/assistant/greeting", handler.Greeting)
	router.Get("/assistant/advice", handler.Advice)
	router.Get("/assistant/horoscope", handler.Horoscope)
	router.Get("/assistant/meal-plan", handler.MealPlan)
	router.Post("/assistant/chat", handler.Chat)
}
