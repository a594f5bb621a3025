package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrNoUser = errors.New("no authenticated user in context")

func claimsFrom(c *fiber.Ctx) (jwt.MapClaims, bool) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return nil, false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	return claims, ok
}

// GetUserID returns the user UUID from the "sub" claim of the verified access token.
func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	claims, ok := claimsFrom(c)
	if !ok {
		return uuid.Nil, ErrNoUser
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, errors.New("missing sub claim")
	}
	return uuid.Parse(sub)
}

// GetPhone returns the phone claim, or "" when absent.
func GetPhone(c *fiber.Ctx) string {
	claims, ok := claimsFrom(c)
	if !ok {
		return ""
	}
	phone, _ := claims["phone"].(string)
	return phone
}
