package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/chaitube/chaitube-api/internal/models"
	"github.com/chaitube/chaitube-api/internal/realtime"
	"github.com/chaitube/chaitube-api/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:notify_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Video{}, &models.Subscription{}, &models.Notification{}))
	return db
}

// recordingDeliverer captures every push without a live connection.
type recordingDeliverer struct {
	mu         sync.Mutex
	deliveries []delivery
}

type delivery struct {
	userID uuid.UUID
	record *models.Notification
}

func (r *recordingDeliverer) DeliverToUser(userID uuid.UUID, n *models.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deliveries = append(r.deliveries, delivery{userID: userID, record: n})
}

func (r *recordingDeliverer) all() []delivery {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]delivery, len(r.deliveries))
	copy(out, r.deliveries)
	return out
}

func newNotifier(t *testing.T, db *gorm.DB, d Deliverer) *Notifier {
	t.Helper()
	return NewNotifier(db, store.NewNotificationStore(db), d, zaptest.NewLogger(t))
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, FullName: ""}
	require.NoError(t, db.Create(u).Error)
	return u
}

func TestCreatePersistsBeforeDispatch(t *testing.T) {
	db := newTestDB(t)
	deliverer := &recordingDeliverer{}
	n := newNotifier(t, db, deliverer)

	recipient := uuid.New()
	record := &models.Notification{
		RecipientID: recipient,
		Type:        models.TypeLike,
		Message:     "someone liked your video",
	}
	require.NoError(t, n.Create(context.Background(), record))

	var stored models.Notification
	require.NoError(t, db.First(&stored, "id = ?", record.ID).Error)

	deliveries := deliverer.all()
	require.Len(t, deliveries, 1)
	assert.Equal(t, recipient, deliveries[0].userID)
	assert.Equal(t, stored.ID, deliveries[0].record.ID)
}

func TestCreateFailureDispatchesNothing(t *testing.T) {
	db := newTestDB(t)
	deliverer := &recordingDeliverer{}
	n := newNotifier(t, db, deliverer)

	err := n.Create(context.Background(), &models.Notification{
		RecipientID: uuid.New(),
		Type:        "poke",
		Message:     "hi",
	})
	require.ErrorIs(t, err, store.ErrInvalid)
	assert.Empty(t, deliverer.all())

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestVideoPublishedFanOut(t *testing.T) {
	db := newTestDB(t)
	deliverer := &recordingDeliverer{}
	n := newNotifier(t, db, deliverer)

	owner := seedUser(t, db, "creator")
	video := &models.Video{OwnerID: owner.ID, Title: "Go in production"}
	require.NoError(t, db.Create(video).Error)

	subscribers := make([]uuid.UUID, 3)
	for i := range subscribers {
		sub := seedUser(t, db, fmt.Sprintf("viewer%d", i))
		subscribers[i] = sub.ID
		require.NoError(t, db.Create(&models.Subscription{
			SubscriberID: sub.ID,
			ChannelID:    owner.ID,
		}).Error)
	}

	require.NoError(t, n.VideoPublished(context.Background(), video, owner))

	var records []models.Notification
	require.NoError(t, db.Find(&records).Error)
	require.Len(t, records, 3)
	for _, r := range records {
		assert.Equal(t, models.TypeNewVideo, r.Type)
		assert.Contains(t, subscribers, r.RecipientID)
		assert.NotEqual(t, owner.ID, r.RecipientID)
		assert.Contains(t, r.Message, "Go in production")
	}
	assert.Len(t, deliverer.all(), 3)
}

func TestSelfActionsNotifyNobody(t *testing.T) {
	db := newTestDB(t)
	deliverer := &recordingDeliverer{}
	n := newNotifier(t, db, deliverer)
	ctx := context.Background()

	owner := seedUser(t, db, "creator")
	video := &models.Video{OwnerID: owner.ID, Title: "Go in production"}
	require.NoError(t, db.Create(video).Error)

	require.NoError(t, n.VideoLiked(ctx, video, owner))
	require.NoError(t, n.CommentAdded(ctx, video, owner))
	require.NoError(t, n.SubscriberAdded(ctx, owner.ID, owner))

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
	assert.Empty(t, deliverer.all())
}

func TestSubscriberAdded(t *testing.T) {
	db := newTestDB(t)
	deliverer := &recordingDeliverer{}
	n := newNotifier(t, db, deliverer)

	channel := seedUser(t, db, "creator")
	fan := seedUser(t, db, "fan")
	fan.FullName = "A Fan"
	require.NoError(t, db.Save(fan).Error)

	require.NoError(t, n.SubscriberAdded(context.Background(), channel.ID, fan))

	var record models.Notification
	require.NoError(t, db.First(&record, "recipient_id = ?", channel.ID).Error)
	assert.Equal(t, models.TypeNewSubscriber, record.Type)
	assert.Equal(t, "A Fan subscribed to your channel", record.Message)
	require.NotNil(t, record.SenderID)
	assert.Equal(t, fan.ID, *record.SenderID)
	assert.Nil(t, record.VideoID)
}

// End-to-end over the real hub: every live connection of the recipient
// receives exactly one event whose payload matches the persisted record.
func TestDeliveredPayloadMatchesPersistedRecord(t *testing.T) {
	db := newTestDB(t)

	hub := realtime.NewHub()
	dispatcher := realtime.NewDispatcher(hub, zaptest.NewLogger(t))
	n := newNotifier(t, db, dispatcher)

	owner := seedUser(t, db, "creator")
	liker := seedUser(t, db, "viewer")
	video := &models.Video{OwnerID: owner.ID, Title: "Go in production"}
	require.NoError(t, db.Create(video).Error)

	tabOne := &captureConn{}
	tabTwo := &captureConn{}
	hub.Register(realtime.NewClient(owner.ID, tabOne))
	hub.Register(realtime.NewClient(owner.ID, tabTwo))

	require.NoError(t, n.VideoLiked(context.Background(), video, liker))

	var stored models.Notification
	require.NoError(t, db.First(&stored, "recipient_id = ?", owner.ID).Error)

	for _, conn := range []*captureConn{tabOne, tabTwo} {
		frames := conn.sent()
		require.Len(t, frames, 1)

		var event realtime.Event
		require.NoError(t, json.Unmarshal(frames[0], &event))
		assert.Equal(t, realtime.EventNotification, event.Type)

		data, ok := event.Data.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, stored.ID.String(), data["id"])
		assert.Equal(t, stored.Message, data["message"])
		assert.Equal(t, models.TypeLike, data["type"])
	}
}

type captureConn struct {
	mu     sync.Mutex
	frames [][]byte
}

func (c *captureConn) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	c.frames = append(c.frames, buf)
	return nil
}

func (c *captureConn) Close() error { return nil }

func (c *captureConn) sent() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.frames))
	copy(out, c.frames)
	return out
}
