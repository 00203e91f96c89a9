package notify

import (
	"context"
	"fmt"

	"github.com/chaitube/chaitube-api/internal/models"
	"github.com/chaitube/chaitube-api/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deliverer pushes a persisted notification to the recipient's live
// connections.
type Deliverer interface {
	DeliverToUser(userID uuid.UUID, n *models.Notification)
}

// Notifier is the create path used by the video, subscription, like and
// comment flows. The durable write always completes before any push is
// attempted; a push failure never touches the stored record.
type Notifier struct {
	db         *gorm.DB
	store      *store.NotificationStore
	dispatcher Deliverer
	log        *zap.Logger
}

func NewNotifier(db *gorm.DB, s *store.NotificationStore, dispatcher Deliverer, log *zap.Logger) *Notifier {
	return &Notifier{db: db, store: s, dispatcher: dispatcher, log: log}
}

// Create persists a notification and, only on success, pushes it to the
// recipient's live connections.
func (n *Notifier) Create(ctx context.Context, record *models.Notification) error {
	if err := n.store.Create(ctx, record); err != nil {
		return err
	}
	n.dispatcher.DeliverToUser(record.RecipientID, record)
	return nil
}

// VideoPublished fans a new_video notification out to every subscriber of
// the video's channel. Per-recipient failures are logged and skipped so
// one bad row does not starve the rest of the fan-out.
func (n *Notifier) VideoPublished(ctx context.Context, video *models.Video, owner *models.User) error {
	var subs []models.Subscription
	if err := n.db.WithContext(ctx).Where("channel_id = ?", video.OwnerID).Find(&subs).Error; err != nil {
		return err
	}

	message := fmt.Sprintf("%s uploaded a new video: %s", displayName(owner), video.Title)
	for _, sub := range subs {
		record := &models.Notification{
			RecipientID: sub.SubscriberID,
			SenderID:    &video.OwnerID,
			Type:        models.TypeNewVideo,
			VideoID:     &video.ID,
			Message:     message,
		}
		if err := n.Create(ctx, record); err != nil {
			n.log.Error("create new_video notification",
				zap.String("recipient", sub.SubscriberID.String()),
				zap.Error(err))
		}
	}
	return nil
}

// SubscriberAdded notifies a channel owner about a new subscriber.
// Subscribing to yourself notifies nobody.
func (n *Notifier) SubscriberAdded(ctx context.Context, channelID uuid.UUID, subscriber *models.User) error {
	if subscriber.ID == channelID {
		return nil
	}
	return n.Create(ctx, &models.Notification{
		RecipientID: channelID,
		SenderID:    &subscriber.ID,
		Type:        models.TypeNewSubscriber,
		Message:     fmt.Sprintf("%s subscribed to your channel", displayName(subscriber)),
	})
}

// VideoLiked notifies the video owner about a like. Liking your own video
// notifies nobody.
func (n *Notifier) VideoLiked(ctx context.Context, video *models.Video, liker *models.User) error {
	if liker.ID == video.OwnerID {
		return nil
	}
	return n.Create(ctx, &models.Notification{
		RecipientID: video.OwnerID,
		SenderID:    &liker.ID,
		Type:        models.TypeLike,
		VideoID:     &video.ID,
		Message:     fmt.Sprintf("%s liked your video %q", displayName(liker), video.Title),
	})
}

// CommentAdded notifies the video owner about a comment. Commenting on
// your own video notifies nobody.
func (n *Notifier) CommentAdded(ctx context.Context, video *models.Video, commenter *models.User) error {
	if commenter.ID == video.OwnerID {
		return nil
	}
	return n.Create(ctx, &models.Notification{
		RecipientID: video.OwnerID,
		SenderID:    &commenter.ID,
		Type:        models.TypeComment,
		VideoID:     &video.ID,
		Message:     fmt.Sprintf("%s commented on your video %q", displayName(commenter), video.Title),
	})
}

func displayName(u *models.User) string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}
