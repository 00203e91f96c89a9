package realtime

import (
	"sync"

	"github.com/chaitube/chaitube-api/internal/metrics"
	"github.com/google/uuid"
)

// Conn is the subset of the websocket connection the hub and dispatcher
// need. *websocket.Conn satisfies it; tests substitute fakes.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client is one live connection, optionally bound to a user.
type Client struct {
	ID     uuid.UUID
	UserID uuid.UUID // uuid.Nil for anonymous connections
	conn   Conn
}

func NewClient(userID uuid.UUID, conn Conn) *Client {
	return &Client{ID: uuid.New(), UserID: userID, conn: conn}
}

// Hub is the connection registry: a routing index from user id to that
// user's live connections. It is never a source of truth for unread state
// or history; the store is.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
	rooms   map[uuid.UUID]map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]bool),
		rooms:   make(map[uuid.UUID]map[*Client]bool),
	}
}

// Register adds the client to the registry. Authenticated clients also
// join their user's room and become delivery targets; anonymous clients
// are reachable by broadcast only.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c] = true
	metrics.ConnectionsActive.Inc()

	if c.UserID == uuid.Nil {
		return
	}
	if h.rooms[c.UserID] == nil {
		h.rooms[c.UserID] = make(map[*Client]bool)
	}
	h.rooms[c.UserID][c] = true
}

// Unregister removes the client from the registry and its room. No-op for
// clients that were never registered.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.clients[c] {
		return
	}
	delete(h.clients, c)
	metrics.ConnectionsActive.Dec()

	if conns, ok := h.rooms[c.UserID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.rooms, c.UserID)
		}
	}
}

// Connections returns a snapshot of the live connections for a user.
func (h *Hub) Connections(userID uuid.UUID) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if userID == uuid.Nil {
		return nil
	}
	conns := h.rooms[userID]
	out := make([]*Client, 0, len(conns))
	for c := range conns {
		out = append(out, c)
	}
	return out
}

// All returns a snapshot of every live connection, anonymous included.
func (h *Hub) All() []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		out = append(out, c)
	}
	return out
}

// Len reports the number of live connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
