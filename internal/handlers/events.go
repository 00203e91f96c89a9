package handlers

import (
	"errors"

	"github.com/chaitube/chaitube-api/internal/middleware"
	"github.com/chaitube/chaitube-api/internal/models"
	"github.com/chaitube/chaitube-api/internal/notify"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EventHandler is the ingest seam for the collaborator flows (video
// publish, subscribe, like, comment). The acting user comes from the
// access token; the handler loads the referenced rows from the shared
// database and hands off to the notifier.
type EventHandler struct {
	db       *gorm.DB
	notifier *notify.Notifier
	log      *zap.Logger
}

func NewEventHandler(db *gorm.DB, notifier *notify.Notifier, log *zap.Logger) *EventHandler {
	return &EventHandler{db: db, notifier: notifier, log: log}
}

// VideoPublished fans new_video notifications out to the channel's
// subscribers. Only the video owner may announce a publish.
func (h *EventHandler) VideoPublished(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	video, ok, err := h.video(c)
	if !ok {
		return err
	}
	if video.OwnerID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You can only announce your own videos",
		})
	}

	owner, ok, err := h.user(c, userID)
	if !ok {
		return err
	}

	if err := h.notifier.VideoPublished(c.Context(), video, owner); err != nil {
		h.log.Error("video published fan-out", zap.String("video", video.ID.String()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create notifications",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true})
}

// Subscribed notifies the channel owner about a new subscriber.
func (h *EventHandler) Subscribed(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	channelID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid channel ID",
		})
	}

	var channel models.User
	if err := h.db.First(&channel, "id = ?", channelID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Channel not found",
			})
		}
		return h.internal(c, err)
	}

	subscriber, ok, err := h.user(c, userID)
	if !ok {
		return err
	}

	if err := h.notifier.SubscriberAdded(c.Context(), channelID, subscriber); err != nil {
		return h.internal(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true})
}

// Liked notifies the video owner about a like from the acting user.
func (h *EventHandler) Liked(c *fiber.Ctx) error {
	return h.videoReaction(c, func(ctx *fiber.Ctx, video *models.Video, actor *models.User) error {
		return h.notifier.VideoLiked(ctx.Context(), video, actor)
	})
}

// Commented notifies the video owner about a comment from the acting user.
func (h *EventHandler) Commented(c *fiber.Ctx) error {
	return h.videoReaction(c, func(ctx *fiber.Ctx, video *models.Video, actor *models.User) error {
		return h.notifier.CommentAdded(ctx.Context(), video, actor)
	})
}

func (h *EventHandler) videoReaction(c *fiber.Ctx, fn func(*fiber.Ctx, *models.Video, *models.User) error) error {
	userID := middleware.GetUserID(c)

	video, ok, err := h.video(c)
	if !ok {
		return err
	}
	actor, ok, err := h.user(c, userID)
	if !ok {
		return err
	}

	if err := fn(c, video, actor); err != nil {
		return h.internal(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true})
}

// video parses :id and loads the video. On failure the response has
// already been written and ok is false.
func (h *EventHandler) video(c *fiber.Ctx) (*models.Video, bool, error) {
	videoID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid video ID",
		})
	}

	var video models.Video
	if err := h.db.First(&video, "id = ?", videoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Video not found",
			})
		}
		return nil, false, h.internal(c, err)
	}
	return &video, true, nil
}

func (h *EventHandler) user(c *fiber.Ctx, id uuid.UUID) (*models.User, bool, error) {
	var user models.User
	if err := h.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "User not found",
			})
		}
		return nil, false, h.internal(c, err)
	}
	return &user, true, nil
}

func (h *EventHandler) internal(c *fiber.Ctx, err error) error {
	h.log.Error("event handler", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Internal server error",
	})
}
