package middleware

import (
	"errors"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/nestgirl/nestgirl-backend/internal/config"
	"github.com/nestgirl/nestgirl-backend/internal/dto"
)

// JWTProtected verifies the HS256 access token, stores it in Locals("user") and
// rejects tokens whose subject is not a user ID.
func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(cfg.JWTSecret)},
		ContextKey: "user",
		SuccessHandler: func(c *fiber.Ctx) error {
			if _, err := GetUserID(c); err != nil {
				return unauthorized(c, "Unauthorized: token has no user")
			}
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			switch {
			case errors.Is(err, jwtware.ErrJWTMissingOrMalformed):
				return unauthorized(c, "Unauthorized: missing bearer token")
			case errors.Is(err, jwt.ErrTokenExpired):
				return unauthorized(c, "Unauthorized: token expired")
			default:
				return unauthorized(c, "Unauthorized: invalid token")
			}
		},
	})
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: true, Message: msg})
}
