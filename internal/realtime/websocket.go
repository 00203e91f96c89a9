package realtime

import (
	"strings"

	"github.com/chaitube/chaitube-api/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UpgradeMiddleware checks the upgrade request and resolves the caller's
// identity from ?token= or the Authorization header. A missing token is
// allowed (the connection stays anonymous and joins no room); an invalid
// or expired one is rejected before the upgrade.
func UpgradeMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		tokenString := c.Query("token")
		if tokenString == "" {
			authHeader := c.Get("Authorization")
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				tokenString = ""
			}
		}

		if tokenString == "" {
			c.Locals("userId", uuid.Nil)
			return c.Next()
		}

		claims, err := middleware.ParseToken(secret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		c.Locals("userId", claims.UserID)
		return c.Next()
	}
}

// Handle serves one websocket connection for its whole lifetime: register,
// block on reads until the peer goes away, unregister.
func Handle(hub *Hub, log *zap.Logger) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		userID, _ := c.Locals("userId").(uuid.UUID)

		client := NewClient(userID, c)
		hub.Register(client)
		log.Info("ws connected",
			zap.String("connection", client.ID.String()),
			zap.String("user", userID.String()),
			zap.Int("total", hub.Len()))

		defer func() {
			hub.Unregister(client)
			log.Info("ws disconnected",
				zap.String("connection", client.ID.String()),
				zap.Int("total", hub.Len()))
		}()

		// Clients never mutate state over the socket; reads only keep the
		// connection alive until it drops.
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}
}
