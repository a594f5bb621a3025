package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/nestgirl/nestgirl-backend/internal/config"
	"github.com/nestgirl/nestgirl-backend/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func newAdminApp(cfg *config.Config, lookup roleLookup) *fiber.App {
	app := fiber.New()
	app.Get("/admin", JWTProtected(cfg), adminRequired(cfg, lookup), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func get(t *testing.T, app *fiber.App, token string, headers map[string]string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	resp.Body.Close()
	return resp.StatusCode
}

func TestAdminRequired(t *testing.T) {
	adminID := uuid.New()
	roleAdmin := uuid.New()
	cfg := &config.Config{
		JWTSecret:    testSecret,
		AdminPhones:  "+966500000001, +966500000002",
		AdminUserIDs: adminID.String(),
	}
	lookup := func(_ *fiber.Ctx, id uuid.UUID) (string, error) {
		if id == roleAdmin {
			return "admin", nil
		}
		return "", errors.New("record not found")
	}
	app := newAdminApp(cfg, lookup)
	exp := time.Now().Add(time.Hour).Unix()

	byPhone := signToken(t, jwt.MapClaims{"sub": uuid.NewString(), "phone": "+966500000002", "exp": exp})
	byID := signToken(t, jwt.MapClaims{"sub": adminID.String(), "exp": exp})
	byRole := signToken(t, jwt.MapClaims{"sub": roleAdmin.String(), "exp": exp})
	regular := signToken(t, jwt.MapClaims{"sub": uuid.NewString(), "phone": "+966511111111", "exp": exp})

	assert.Equal(t, http.StatusOK, get(t, app, byPhone, nil))
	assert.Equal(t, http.StatusOK, get(t, app, byID, nil))
	assert.Equal(t, http.StatusOK, get(t, app, byRole, nil))
	assert.Equal(t, http.StatusForbidden, get(t, app, regular, nil))
	assert.Equal(t, http.StatusUnauthorized, get(t, app, "", nil))
}

func TestAdminTokenHeader(t *testing.T) {
	cfg := &config.Config{JWTSecret: testSecret, AdminToken: "ops-token"}
	app := fiber.New()
	app.Get("/admin", adminRequired(cfg, nil), func(c *fiber.Ctx) error { return c.SendString("ok") })

	assert.Equal(t, http.StatusOK, get(t, app, "", map[string]string{"X-Admin-Token": "ops-token"}))
	assert.Equal(t, http.StatusUnauthorized, get(t, app, "", map[string]string{"X-Admin-Token": "wrong"}))
}

func TestExpiredTokenRejected(t *testing.T) {
	cfg := &config.Config{JWTSecret: testSecret}
	app := fiber.New()
	app.Get("/admin", JWTProtected(cfg), func(c *fiber.Ctx) error {
		id, err := GetUserID(c)
		require.NoError(t, err)
		return c.SendString(id.String())
	})

	expired := signToken(t, jwt.MapClaims{"sub": uuid.NewString(), "exp": time.Now().Add(-time.Minute).Unix()})
	assert.Equal(t, http.StatusUnauthorized, get(t, app, expired, nil))

	valid := signToken(t, jwt.MapClaims{"sub": uuid.NewString(), "exp": time.Now().Add(time.Minute).Unix()})
	assert.Equal(t, http.StatusOK, get(t, app, valid, nil))
}

func TestGetUserIDWithoutToken(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		_, err := GetUserID(c)
		assert.ErrorIs(t, err, ErrNoUser)
		assert.Empty(t, GetPhone(c))
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestJWTProtectedExplainsRejection(t *testing.T) {
	app := fiber.New()
	app.Get("/me", JWTProtected(&config.Config{JWTSecret: testSecret}), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	call := func(token string) (int, string) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		var body dto.ErrorResponse
		if resp.StatusCode != http.StatusOK {
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		}
		return resp.StatusCode, body.Message
	}

	exp := time.Now().Add(time.Hour).Unix()
	cases := []struct {
		name  string
		token string
		want  string
	}{
		{"missing", "", "Unauthorized: missing bearer token"},
		{"expired", signToken(t, jwt.MapClaims{"sub": uuid.NewString(), "exp": time.Now().Add(-time.Hour).Unix()}), "Unauthorized: token expired"},
		{"wrong key", func() string {
			s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": uuid.NewString(), "exp": exp}).SignedString([]byte("other"))
			require.NoError(t, err)
			return s
		}(), "Unauthorized: invalid token"},
		{"subject not a user id", signToken(t, jwt.MapClaims{"sub": "admin", "exp": exp}), "Unauthorized: token has no user"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, msg := call(tc.token)
			assert.Equal(t, http.StatusUnauthorized, code)
			assert.Equal(t, tc.want, msg)
		})
	}

	code, _ := call(signToken(t, jwt.MapClaims{"sub": uuid.NewString(), "exp": exp}))
	assert.Equal(t, http.StatusOK, code)
}
