package assistant

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/nestgirl/nestgirl-backend/internal/dto"
	"github.com/nestgirl/nestgirl-backend/internal/middleware"
)

type AssistantHandler struct {
	service *Service
}

func NewAssistantHandler(service *Service) *AssistantHandler {
	return &AssistantHandler{service: service}
}

func (h *AssistantHandler) Greeting(c *fiber.Ctx) error {
	return h.respond(c, h.service.Greeting)
}

func (h *AssistantHandler) Advice(c *fiber.Ctx) error {
	return h.respond(c, h.service.Advice)
}

func (h *AssistantHandler) Horoscope(c *fiber.Ctx) error {
	return h.respond(c, h.service.Horoscope)
}

func (h *AssistantHandler) respond(c *fiber.Ctx, fn func(context.Context, uuid.UUID) (*Text, error)) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	text, err := fn(c.UserContext(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load assistant text",
		})
	}
	return c.JSON(text)
}

type chatRequest struct {
	Messages []Turn `json:"messages"`
}

// MealPlan takes the goal from ?goal=lose|gain|maintain.
func (h *AssistantHandler) MealPlan(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	plan, err := h.service.MealPlan(c.UserContext(), userID, c.Query("goal", "maintain"))
	if err != nil {
		if errors.Is(err, ErrInvalidGoal) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load meal plan",
		})
	}
	return c.JSON(plan)
}

func (h *AssistantHandler) Chat(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	reply, err := h.service.Chat(c.UserContext(), userID, req.Messages)
	if err != nil {
		if errors.Is(err, ErrInvalidChat) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to continue chat",
		})
	}
	return c.JSON(reply)
}
