package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/nestgirl/nestgirl-backend/internal/dto"
	"github.com/nestgirl/nestgirl-backend/internal/models"
	"gorm.io/gorm"
)

var errSettingValue = errors.New("value does not match type")

// SettingsHandler serves admin-managed key/value settings to the client.
type SettingsHandler struct {
	db *gorm.DB
}

func NewSettingsHandler(db *gorm.DB) *SettingsHandler {
	return &SettingsHandler{db: db}
}

// GetSettings returns every setting as a JSON object with typed values (public).
func (h *SettingsHandler) GetSettings(c *fiber.Ctx) error {
	var settings []models.AppSetting
	if err := h.db.WithContext(c.UserContext()).Find(&settings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch settings",
		})
	}
	return c.JSON(decodeSettings(settings))
}

// SetSetting creates or updates a setting (admin only).
func (h *SettingsHandler) SetSetting(c *fiber.Ctx) error {
	key := c.Params("key")
	if key == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Key parameter is required",
		})
	}

	var req dto.SettingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if req.Type == "" {
		req.Type = "string"
	}
	if _, err := decodeValue(req.Type, req.Value); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	db := h.db.WithContext(c.UserContext())
	var setting models.AppSetting
	err := db.Where("key = ?", key).First(&setting).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		setting = models.AppSetting{ID: uuid.New(), Key: key, Value: req.Value, Type: req.Type}
		err = db.Create(&setting).Error
	case err == nil:
		setting.Value = req.Value
		setting.Type = req.Type
		err = db.Save(&setting).Error
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to save setting",
		})
	}

	slog.Info("setting updated", "key", key, "type", req.Type)
	return c.JSON(fiber.Map{
		"error":   false,
		"message": "Setting updated successfully",
		"setting": setting,
	})
}

// DeleteSetting removes a setting (admin only).
func (h *SettingsHandler) DeleteSetting(c *fiber.Ctx) error {
	key := c.Params("key")
	result := h.db.WithContext(c.UserContext()).Where("key = ?", key).Delete(&models.AppSetting{})
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to delete setting",
		})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Setting not found",
		})
	}

	return c.JSON(fiber.Map{
		"error":   false,
		"message": "Setting deleted successfully",
	})
}

// SeedDefaults inserts default settings that do not exist yet.
func (h *SettingsHandler) SeedDefaults() error {
	defaults := []models.AppSetting{
		{Key: "app_name", Value: "Nestgirl", Type: "string"},
		{Key: "default_language", Value: "ar", Type: "string"},
		{Key: "maintenance_mode", Value: "false", Type: "bool"},
		{Key: "assistant_enabled", Value: "true", Type: "bool"},
		{Key: "announcement_title", Value: "", Type: "string"},
		{Key: "announcement_message", Value: "", Type: "string"},
	}

	for _, d := range defaults {
		var existing models.AppSetting
		err := h.db.Where("key = ?", d.Key).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			d.ID = uuid.New()
			if err := h.db.Create(&d).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
	}
	return nil
}

func decodeSettings(settings []models.AppSetting) map[string]interface{} {
	result := make(map[string]interface{}, len(settings))
	for _, s := range settings {
		value, err := decodeValue(s.Type, s.Value)
		if err != nil {
			value = s.Value
		}
		result[s.Key] = value
	}
	return result
}

func decodeValue(typ, raw string) (interface{}, error) {
	switch typ {
	case "string":
		return raw, nil
	case "bool":
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, errSettingValue
		}
		return b, nil
	case "int":
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errSettingValue
		}
		return n, nil
	case "json":
		var v interface{}
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, errSettingValue
		}
		return v, nil
	}
	return nil, errors.New("type must be string, bool, int or json")
}
