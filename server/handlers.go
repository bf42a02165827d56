package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
)

// StatusFunc reports component state for /status. It may be nil.
type StatusFunc func() map[string]any

// Handlers holds dependencies for all HTTP handlers.
type Handlers struct {
	hub    *Hub
	static http.Handler
	status StatusFunc
}

// NewHandlers creates a new Handlers instance with the given dependencies.
func NewHandlers(hub *Hub, publicDir string, status StatusFunc) *Handlers {
	return &Handlers{
		hub:    hub,
		static: http.FileServer(http.Dir(publicDir)),
		status: status,
	}
}

// HandleRoot upgrades WebSocket requests and serves overlay files otherwise.
func (h *Handlers) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if websocket.IsWebSocketUpgrade(r) {
		h.hub.ServeWS(w, r)
		return
	}
	h.static.ServeHTTP(w, r)
}

// HandleHealthz responds to liveness probes. The relay has no hard dependencies, so it is always ok.
func (h *Handlers) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// HandleStatus reports connected clients plus whatever the status func provides.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	out := map[string]any{}
	if h.status != nil {
		for k, v := range h.status() {
			out[k] = v
		}
	}
	out["clients"] = h.hub.Count()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}
