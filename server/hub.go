package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/onnwee/xp-gauge/telemetry"
	"github.com/onnwee/xp-gauge/xp"
)

// Hub fans xp events out to every connected overlay client. There is no replay:
// a client only sees events broadcast while it is registered.
type Hub struct {
	writeTimeout time.Duration
	upgrader     websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	id   string
	conn *websocket.Conn
}

// NewHub returns an empty hub. writeTimeout bounds each frame write; zero disables it.
func NewHub(writeTimeout time.Duration) *Hub {
	return &Hub{
		writeTimeout: writeTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Overlays are loaded from OBS browser sources and other hosts; clients are not authenticated.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Broadcast sends ev as one JSON text frame to every registered client. Writes happen
// under the hub lock, so concurrent callers are serialized and each caller's events keep
// their order. A client whose write fails is dropped.
//
// A client that stops reading blocks Broadcast, registration, unregistration and Count
// for up to writeTimeout per event, until its write deadline expires and it is dropped.
func (h *Hub) Broadcast(ev xp.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		slog.Error("broadcast: marshal event", slog.Any("err", err))
		return
	}
	msg, err := websocket.NewPreparedMessage(websocket.TextMessage, payload)
	if err != nil {
		slog.Error("broadcast: prepare frame", slog.Any("err", err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	sent := 0
	for c := range h.clients {
		if h.writeTimeout > 0 {
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
		}
		if err := c.conn.WritePreparedMessage(msg); err != nil {
			slog.Debug("broadcast: dropping client after write error", slog.String("client", c.id), slog.Any("err", err))
			h.removeLocked(c)
			continue
		}
		sent++
	}
	telemetry.AddDelivered(sent)
}

// ServeWS upgrades the request and keeps the client registered until its connection ends.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Debug("websocket upgrade failed", slog.Any("err", err))
		return
	}
	c := &client{id: uuid.NewString(), conn: conn}
	h.add(c)
	slog.Info("websocket connected", slog.String("client", c.id), slog.String("remote", r.RemoteAddr))

	// Clients never send anything meaningful; reading only surfaces close frames and errors.
	conn.SetReadLimit(512)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	h.removeLocked(c)
	h.mu.Unlock()
	slog.Info("websocket disconnected", slog.String("client", c.id))
}

// Count returns the number of registered clients.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	telemetry.SetClients(n)
}

// removeLocked must be called with h.mu held. Removing twice is a no-op.
func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	_ = c.conn.Close()
	telemetry.SetClients(len(h.clients))
}
