package routes

import (
	"github.com/chaitube/chaitube-api/internal/config"
	"github.com/chaitube/chaitube-api/internal/handlers"
	"github.com/chaitube/chaitube-api/internal/middleware"
	"github.com/chaitube/chaitube-api/internal/realtime"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Deps collects everything the route table needs; wiring happens in
// cmd/server.
type Deps struct {
	Config        *config.Config
	Hub           *realtime.Hub
	Notifications *handlers.NotificationHandler
	Events        *handlers.EventHandler
	Log           *zap.Logger
}

func Setup(app *fiber.App, deps Deps) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api", middleware.Protected(deps.Config.JWTSecret))

	notifications := api.Group("/notifications")
	notifications.Get("/", deps.Notifications.GetNotifications)
	notifications.Patch("/read-all", deps.Notifications.MarkAllRead)
	notifications.Patch("/:id/read", deps.Notifications.MarkNotificationRead)
	notifications.Delete("/:id", deps.Notifications.DeleteNotification)

	// Collaborator ingest: the video, subscription, like and comment flows
	// report qualifying actions here.
	events := api.Group("/events")
	events.Post("/videos/:id/published", deps.Events.VideoPublished)
	events.Post("/videos/:id/liked", deps.Events.Liked)
	events.Post("/videos/:id/commented", deps.Events.Commented)
	events.Post("/channels/:id/subscribed", deps.Events.Subscribed)

	// WebSocket for real-time notification delivery
	app.Use("/ws", realtime.UpgradeMiddleware(deps.Config.JWTSecret))
	app.Get("/ws", websocket.New(realtime.Handle(deps.Hub, deps.Log)))
}
