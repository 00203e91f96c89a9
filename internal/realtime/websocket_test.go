package realtime

import (
	"net/http/httptest"
	"testing"

	"github.com/chaitube/chaitube-api/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func upgradeApp(t *testing.T) *fiber.App {
	t.Helper()

	app := fiber.New()
	app.Use("/ws", UpgradeMiddleware(testSecret))
	// The middleware is what is under test; a plain handler stands in for
	// the websocket upgrade so identity resolution can be observed.
	app.Get("/ws", func(c *fiber.Ctx) error {
		userID, _ := c.Locals("userId").(uuid.UUID)
		return c.JSON(fiber.Map{"userId": userID.String()})
	})
	return app
}

func TestUpgradeRequiredWithoutUpgradeHeaders(t *testing.T) {
	app := upgradeApp(t)

	req := httptest.NewRequest("GET", "/ws", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}

func TestInvalidTokenRejectedBeforeUpgrade(t *testing.T) {
	app := upgradeApp(t)

	req := httptest.NewRequest("GET", "/ws?token=not-a-token", nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestWrongSecretRejected(t *testing.T) {
	app := upgradeApp(t)

	token, err := middleware.GenerateToken("another-secret", uuid.New())
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/ws?token="+token, nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestMissingTokenStaysAnonymous(t *testing.T) {
	app := upgradeApp(t)

	req := httptest.NewRequest("GET", "/ws", nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestValidTokenResolvesUser(t *testing.T) {
	app := upgradeApp(t)

	user := uuid.New()
	token, err := middleware.GenerateToken(testSecret, user)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/ws?token="+token, nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
