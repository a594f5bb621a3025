package tracker

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/nestgirl/nestgirl-backend/internal/dto"
	"github.com/nestgirl/nestgirl-backend/internal/middleware"
	"github.com/nestgirl/nestgirl-backend/internal/status"
)

type ActionRequest struct {
	// ExpectedKind is the status kind the client showed when the button was tapped.
	ExpectedKind status.Kind `json:"expected_kind"`
}

type StatusHandler struct {
	service *Service
}

func NewStatusHandler(service *Service) *StatusHandler {
	return &StatusHandler{service: service}
}

func (h *StatusHandler) GetStatus(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	view, err := h.service.Current(c.UserContext(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load status",
		})
	}
	return c.JSON(view)
}

func (h *StatusHandler) ApplyAction(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req ActionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid request body",
			})
		}
	}

	view, err := h.service.ApplyAction(c.UserContext(), userID, req.ExpectedKind)
	if err != nil {
		switch {
		case errors.Is(err, ErrSaveFailed):
			return c.Status(fiber.StatusServiceUnavailable).JSON(view)
		case errors.Is(err, ErrStaleAction):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, ErrInvalidKind):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, ErrProfileNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to update status",
		})
	}
	return c.JSON(view)
}

func (h *StatusHandler) GetProfile(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	view, err := h.service.Profile(c.UserContext(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load profile",
		})
	}
	return c.JSON(view)
}

func (h *StatusHandler) CompleteIntake(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req status.IntakeAnswers
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	view, err := h.service.CompleteIntake(c.UserContext(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrSaveFailed):
			return c.Status(fiber.StatusServiceUnavailable).JSON(view)
		case errors.Is(err, status.ErrIntakeCompleted):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, ErrProfileNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case isValidationError(err):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to save survey",
		})
	}
	return c.JSON(view)
}

// GetUserStatus is the admin view of any user's derived status.
func (h *StatusHandler) GetUserStatus(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user ID",
		})
	}

	view, err := h.service.Current(c.UserContext(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load status",
		})
	}
	return c.JSON(view)
}

func isValidationError(err error) bool {
	return errors.Is(err, status.ErrInvalidDate) ||
		errors.Is(err, status.ErrBirthDateRequired) ||
		errors.Is(err, status.ErrDueDateRequired) ||
		errors.Is(err, status.ErrPeriodGateRequired) ||
		errors.Is(err, status.ErrLastPeriodRequired) ||
		errors.Is(err, status.ErrInvalidBabySex)
}
