package handlers

import (
	"errors"
	"strconv"

	"github.com/chaitube/chaitube-api/internal/middleware"
	"github.com/chaitube/chaitube-api/internal/realtime"
	"github.com/chaitube/chaitube-api/internal/store"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NotificationHandler serves the REST notification surface. Pushes emitted
// here are informational: the list endpoint stays the ground truth.
type NotificationHandler struct {
	store      *store.NotificationStore
	dispatcher *realtime.Dispatcher
	log        *zap.Logger
}

func NewNotificationHandler(s *store.NotificationStore, dispatcher *realtime.Dispatcher, log *zap.Logger) *NotificationHandler {
	return &NotificationHandler{store: s, dispatcher: dispatcher, log: log}
}

// GetNotifications returns paginated notifications for the current user,
// newest first. Non-numeric page/limit fall back to 1/20.
func (h *NotificationHandler) GetNotifications(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.Query("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}
	unreadOnly := c.Query("unreadOnly") == "true"

	list, err := h.store.List(c.Context(), userID, page, limit, unreadOnly)
	if err != nil {
		h.log.Error("list notifications", zap.String("user", userID.String()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch notifications",
		})
	}

	return c.JSON(list)
}

// MarkNotificationRead marks a single notification as read and returns the
// updated record.
func (h *NotificationHandler) MarkNotificationRead(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	notifID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid notification ID",
		})
	}

	notification, err := h.store.MarkAsRead(c.Context(), userID, notifID)
	if err != nil {
		return h.storeError(c, err, "Failed to update notification")
	}

	// Other tabs of the same user converge without a refetch.
	h.dispatcher.NotifyRead(userID, notification.ID)

	return c.JSON(notification)
}

// MarkAllRead marks all notifications as read for the current user.
func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	if _, err := h.store.MarkAllAsRead(c.Context(), userID); err != nil {
		h.log.Error("mark all read", zap.String("user", userID.String()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update notifications",
		})
	}

	h.dispatcher.NotifyAllRead(userID)

	return c.JSON(fiber.Map{"success": true})
}

// DeleteNotification permanently removes one of the user's notifications.
func (h *NotificationHandler) DeleteNotification(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	notifID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid notification ID",
		})
	}

	if err := h.store.Delete(c.Context(), userID, notifID); err != nil {
		return h.storeError(c, err, "Failed to delete notification")
	}

	return c.JSON(fiber.Map{"success": true})
}

func (h *NotificationHandler) storeError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Notification not found",
		})
	case errors.Is(err, store.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You can only manage your own notifications",
		})
	default:
		h.log.Error("notification store", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fallback,
		})
	}
}
