package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification types. The set is closed: the store rejects anything else.
const (
	TypeNewVideo      = "new_video"
	TypeNewSubscriber = "new_subscriber"
	TypeLike          = "like"
	TypeComment       = "comment"
)

// ValidNotificationType reports whether t is one of the known types.
func ValidNotificationType(t string) bool {
	switch t {
	case TypeNewVideo, TypeNewSubscriber, TypeLike, TypeComment:
		return true
	}
	return false
}

// Notification is the durable record. The recipient never changes after
// creation, IsRead only moves false to true, and deletion is permanent
// (no soft delete).
type Notification struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	RecipientID uuid.UUID  `json:"recipientId" gorm:"type:uuid;not null;index:idx_notifications_recipient_created,priority:1;index:idx_notifications_recipient_read,priority:1"`
	SenderID    *uuid.UUID `json:"senderId,omitempty" gorm:"type:uuid"`
	Type        string     `json:"type" gorm:"not null"`
	VideoID     *uuid.UUID `json:"videoId,omitempty" gorm:"type:uuid"`
	Message     string     `json:"message" gorm:"not null"`
	IsRead      bool       `json:"isRead" gorm:"default:false;index:idx_notifications_recipient_read,priority:2"`
	CreatedAt   time.Time  `json:"createdAt" gorm:"index:idx_notifications_recipient_created,priority:2,sort:desc"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	Sender *User  `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
	Video  *Video `json:"video,omitempty" gorm:"foreignKey:VideoID"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// Pagination is the fixed-field envelope returned with every list query.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

// NotificationList is the list response body.
type NotificationList struct {
	Notifications []Notification `json:"notifications"`
	Pagination    Pagination     `json:"pagination"`
	UnreadCount   int64          `json:"unreadCount"`
}
