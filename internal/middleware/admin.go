package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/nestgirl/nestgirl-backend/internal/config"
	"github.com/nestgirl/nestgirl-backend/internal/dto"
	"github.com/nestgirl/nestgirl-backend/internal/models"
	"gorm.io/gorm"
)

type roleLookup func(c *fiber.Ctx, userID uuid.UUID) (string, error)

// AdminRequired lets a request through when any of these hold:
// the X-Admin-Token header matches ADMIN_TOKEN, the token's phone or user ID is
// listed in ADMIN_PHONES / ADMIN_USER_IDS, or the user's role is "admin".
func AdminRequired(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return adminRequired(cfg, func(c *fiber.Ctx, userID uuid.UUID) (string, error) {
		var user models.User
		if err := db.WithContext(c.UserContext()).Select("role").First(&user, "id = ?", userID).Error; err != nil {
			return "", err
		}
		return user.Role, nil
	})
}

func adminRequired(cfg *config.Config, lookup roleLookup) fiber.Handler {
	adminPhones := parseCSV(cfg.AdminPhones)
	adminUserIDs := parseCSV(cfg.AdminUserIDs)

	return func(c *fiber.Ctx) error {
		if cfg.AdminToken != "" && c.Get("X-Admin-Token") == cfg.AdminToken {
			return c.Next()
		}

		userID, err := GetUserID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		if contains(adminPhones, GetPhone(c)) || contains(adminUserIDs, userID.String()) {
			return c.Next()
		}

		if role, err := lookup(c, userID); err == nil && role == "admin" {
			return c.Next()
		}

		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Admin access required",
		})
	}
}

func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func contains(list []string, val string) bool {
	if val == "" {
		return false
	}
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}
