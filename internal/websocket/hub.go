package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Message is a catalog change notification pushed to connected pages.
type Message struct {
	Type    string         `json:"type"`
	Catalog string         `json:"catalog"`
	Action  string         `json:"action"`
	At      time.Time      `json:"at"`
	Extra   map[string]any `json:"extra,omitempty"`
}

// NewMessage creates a Message with Type derived from action, e.g.
// "sync_completed".
func NewMessage(catalog, action string, extra map[string]any) Message {
	return Message{
		Type:    fmt.Sprintf("sync_%s", action),
		Catalog: catalog,
		Action:  action,
		At:      time.Now().UTC(),
		Extra:   extra,
	}
}

// Hub fans out sync notifications. It remembers the latest message per
// catalog and replays it to clients as they connect, so a page opened
// between syncs still learns when its catalog last changed.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	last    map[string][]byte
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		last:    make(map[string][]byte),
		logger:  logger,
	}
}

// Register adds c and queues the latest message of each catalog it wants.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c] = struct{}{}
	for catalog, data := range h.last {
		if c.wants(catalog) {
			h.deliver(c, data)
		}
	}
}

// Unregister removes c and closes its send channel. It is safe to call
// more than once.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Broadcast sends msg to every client subscribed to its catalog.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.last[msg.Catalog] = data
	for c := range h.clients {
		if c.wants(msg.Catalog) {
			h.deliver(c, data)
		}
	}
}

// deliver must be called with h.mu held.
func (h *Hub) deliver(c *Client, data []byte) {
	select {
	case c.send <- data:
	default:
		h.logger.Debug("dropping message for slow client")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
