package realtime

import (
	"encoding/json"

	"github.com/chaitube/chaitube-api/internal/metrics"
	"github.com/chaitube/chaitube-api/internal/models"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Event types sent to clients.
const (
	EventNotification         = "notification"
	EventNotificationRead     = "notification_read"
	EventNotificationsCleared = "notifications_cleared"
)

// Event is the JSON frame written to the websocket.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

type readEvent struct {
	NotificationID uuid.UUID `json:"notificationId"`
}

// Dispatcher pushes notification events to live connections. Delivery is
// best effort and at most once per connection: a write failure is logged
// and counted, never returned to the caller, and an offline target is a
// silent no-op. The stored record stays the source of truth either way.
type Dispatcher struct {
	hub *Hub
	log *zap.Logger
}

func NewDispatcher(hub *Hub, log *zap.Logger) *Dispatcher {
	return &Dispatcher{hub: hub, log: log}
}

// DeliverToUser sends the notification to every live connection of the
// recipient.
func (d *Dispatcher) DeliverToUser(userID uuid.UUID, n *models.Notification) {
	clients := d.hub.Connections(userID)
	if len(clients) == 0 {
		// Offline: the record is still discoverable through the REST API.
		return
	}
	d.send(clients, Event{Type: EventNotification, Data: n})
}

// DeliverToUsers applies DeliverToUser to each id independently. Partial
// delivery is expected, not a failure.
func (d *Dispatcher) DeliverToUsers(userIDs []uuid.UUID, n *models.Notification) {
	for _, id := range userIDs {
		d.DeliverToUser(id, n)
	}
}

// Broadcast sends to every connected client, anonymous ones included.
func (d *Dispatcher) Broadcast(n *models.Notification) {
	d.send(d.hub.All(), Event{Type: EventNotification, Data: n})
}

// NotifyRead tells the user's other live connections that one
// notification was marked as read.
func (d *Dispatcher) NotifyRead(userID, notificationID uuid.UUID) {
	d.send(d.hub.Connections(userID), Event{
		Type: EventNotificationRead,
		Data: readEvent{NotificationID: notificationID},
	})
}

// NotifyAllRead tells the user's live connections that every unread
// notification was cleared in bulk.
func (d *Dispatcher) NotifyAllRead(userID uuid.UUID) {
	d.send(d.hub.Connections(userID), Event{Type: EventNotificationsCleared})
}

func (d *Dispatcher) send(clients []*Client, event Event) {
	if len(clients) == 0 {
		return
	}

	msg, err := json.Marshal(event)
	if err != nil {
		d.log.Error("marshal event", zap.String("event", event.Type), zap.Error(err))
		return
	}

	for _, c := range clients {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			metrics.DeliveryFailures.Inc()
			d.log.Warn("write to client failed",
				zap.String("connection", c.ID.String()),
				zap.String("event", event.Type),
				zap.Error(err))
			continue
		}
		metrics.EventsDelivered.WithLabelValues(event.Type).Inc()
	}
}
