package main

import (
	"log"

	"github.com/chaitube/chaitube-api/internal/config"
	"github.com/chaitube/chaitube-api/internal/database"
	"github.com/chaitube/chaitube-api/internal/handlers"
	"github.com/chaitube/chaitube-api/internal/logger"
	"github.com/chaitube/chaitube-api/internal/notify"
	"github.com/chaitube/chaitube-api/internal/realtime"
	"github.com/chaitube/chaitube-api/internal/routes"
	"github.com/chaitube/chaitube-api/internal/store"
	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading configuration from environment")
	}

	cfg := config.Load()

	zlog := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer zlog.Sync()

	db, err := database.Connect(cfg)
	if err != nil {
		zlog.Fatal("connect database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		zlog.Fatal("migrate database", zap.Error(err))
	}

	hub := realtime.NewHub()
	dispatcher := realtime.NewDispatcher(hub, zlog)

	notificationStore := store.NewNotificationStore(db)
	notifier := notify.NewNotifier(db, notificationStore, dispatcher, zlog)

	app := fiber.New(fiber.Config{
		AppName: "chaitube-api",
	})

	routes.Setup(app, routes.Deps{
		Config:        cfg,
		Hub:           hub,
		Notifications: handlers.NewNotificationHandler(notificationStore, dispatcher, zlog),
		Events:        handlers.NewEventHandler(db, notifier, zlog),
		Log:           zlog,
	})

	zlog.Info("server starting", zap.String("port", cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}
