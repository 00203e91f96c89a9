package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/chaitube/chaitube-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrNotFound means no notification exists with the given id.
	ErrNotFound = errors.New("notification not found")
	// ErrForbidden means the notification belongs to another user.
	ErrForbidden = errors.New("notification belongs to another user")
	// ErrInvalid means the record failed validation before insert.
	ErrInvalid = errors.New("invalid notification")
)

// NotificationStore is the durable CRUD surface over notification records.
// Every read and mutation is scoped to the recipient.
type NotificationStore struct {
	db *gorm.DB
}

func NewNotificationStore(db *gorm.DB) *NotificationStore {
	return &NotificationStore{db: db}
}

// List returns the user's notifications newest first, with the total and
// unread counts. page and limit must already be sanitized by the caller.
func (s *NotificationStore) List(ctx context.Context, userID uuid.UUID, page, limit int, unreadOnly bool) (*models.NotificationList, error) {
	db := s.db.WithContext(ctx)

	notifications := make([]models.Notification, 0, limit)
	q := db.Where("recipient_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	if err := q.
		Preload("Sender").
		Preload("Video").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&notifications).Error; err != nil {
		return nil, err
	}

	var total int64
	cq := db.Model(&models.Notification{}).Where("recipient_id = ?", userID)
	if unreadOnly {
		cq = cq.Where("is_read = ?", false)
	}
	if err := cq.Count(&total).Error; err != nil {
		return nil, err
	}

	var unread int64
	if err := db.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Count(&unread).Error; err != nil {
		return nil, err
	}

	return &models.NotificationList{
		Notifications: notifications,
		Pagination: models.Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: (total + int64(limit) - 1) / int64(limit),
		},
		UnreadCount: unread,
	}, nil
}

// MarkAsRead flips the record to read and returns it. Marking an
// already-read notification succeeds silently.
func (s *NotificationStore) MarkAsRead(ctx context.Context, userID, id uuid.UUID) (*models.Notification, error) {
	db := s.db.WithContext(ctx)

	n, err := s.owned(db, userID, id)
	if err != nil {
		return nil, err
	}

	if !n.IsRead {
		if err := db.Model(n).Update("is_read", true).Error; err != nil {
			return nil, err
		}
	}
	return n, nil
}

// MarkAllAsRead flips every unread notification the user owns in one bulk
// update. Zero matches is still success.
func (s *NotificationStore) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}

// Delete permanently removes the record.
func (s *NotificationStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	db := s.db.WithContext(ctx)

	n, err := s.owned(db, userID, id)
	if err != nil {
		return err
	}
	return db.Delete(n).Error
}

// Create validates and inserts a new record. It performs no delivery; the
// caller dispatches only after Create returns nil.
func (s *NotificationStore) Create(ctx context.Context, n *models.Notification) error {
	if n.RecipientID == uuid.Nil {
		return fmt.Errorf("%w: recipient is required", ErrInvalid)
	}
	if n.Message == "" {
		return fmt.Errorf("%w: message is required", ErrInvalid)
	}
	if !models.ValidNotificationType(n.Type) {
		return fmt.Errorf("%w: unknown type %q", ErrInvalid, n.Type)
	}
	return s.db.WithContext(ctx).Create(n).Error
}

// owned loads a notification and enforces recipient scoping.
func (s *NotificationStore) owned(db *gorm.DB, userID, id uuid.UUID) (*models.Notification, error) {
	var n models.Notification
	if err := db.First(&n, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if n.RecipientID != userID {
		return nil, ErrForbidden
	}
	return &n, nil
}
