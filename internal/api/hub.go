package api

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"stormglass/pkg/overlay"
	"stormglass/pkg/tiles"
)

// Command is one render-surface operation pushed to the map UI. The UI
// keeps its own layer registry keyed by ID and resolves {z}/{x}/{y}
// templates itself.
type Command struct {
	Op          string   `json:"op"` // attach, detach, opacity, base
	ID          string   `json:"id,omitempty"`
	URL         string   `json:"url,omitempty"`
	Opacity     *float64 `json:"opacity,omitempty"`
	Attribution string   `json:"attribution,omitempty"`
}

type layerState struct {
	url      string
	opacity  float64
	attached bool
}

// Hub implements overlay.Surface over a websocket fan-out: every surface
// operation becomes a Command broadcast to connected map clients. Late
// joiners receive a replay of the base style and all attached layers, so
// the browser can reload without losing state.
type Hub struct {
	upgrader websocket.Upgrader

	mu     sync.Mutex
	conns  map[*websocket.Conn]bool
	layers map[overlay.LayerID]*layerState
	base   *Command
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Local-only server; the GUI shell and browser connect from
			// arbitrary origins (file://, webview).
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		conns:  make(map[*websocket.Conn]bool),
		layers: make(map[overlay.LayerID]*layerState),
	}
}

// HandleWS upgrades the connection, replays current state and keeps the
// connection registered until the peer closes it.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}

	// Replay under the lock and register afterwards, so broadcasts cannot
	// interleave with the replay writes. All writes to a connection happen
	// while holding h.mu.
	h.mu.Lock()
	for _, cmd := range h.replayLocked() {
		if err := conn.WriteJSON(cmd); err != nil {
			h.mu.Unlock()
			conn.Close()
			return
		}
	}
	h.conns[conn] = true
	h.mu.Unlock()

	slog.Info("map client connected", "remote", r.RemoteAddr)

	// Read loop: the surface protocol is one-directional, so inbound
	// messages are discarded; the loop exists to detect disconnects.
	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	if h.conns[conn] {
		delete(h.conns, conn)
		conn.Close()
		slog.Info("map client disconnected")
	}
	h.mu.Unlock()
}

// replayLocked builds the command sequence that brings a fresh client up
// to the current surface state.
func (h *Hub) replayLocked() []Command {
	var cmds []Command
	if h.base != nil {
		cmds = append(cmds, *h.base)
	}
	for id, l := range h.layers {
		if !l.attached {
			continue
		}
		op := l.opacity
		cmds = append(cmds, Command{Op: "attach", ID: id.String(), URL: l.url, Opacity: &op})
	}
	return cmds
}

// broadcastLocked sends a command to every connected client, dropping
// clients whose connection fails.
func (h *Hub) broadcastLocked(cmd Command) {
	for conn := range h.conns {
		if err := conn.WriteJSON(cmd); err != nil {
			slog.Warn("map client write failed, dropping", "error", err)
			delete(h.conns, conn)
			conn.Close()
		}
	}
}

// Attach implements overlay.Surface.
func (h *Hub) Attach(urlTemplate string, opacity float64) (overlay.LayerID, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := uuid.New()
	h.layers[id] = &layerState{url: urlTemplate, opacity: opacity, attached: true}
	op := opacity
	h.broadcastLocked(Command{Op: "attach", ID: id.String(), URL: urlTemplate, Opacity: &op})
	return id, nil
}

// Reattach implements overlay.Surface.
func (h *Hub) Reattach(id overlay.LayerID) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	l, ok := h.layers[id]
	if !ok {
		return ErrUnknownLayer
	}
	l.attached = true
	op := l.opacity
	h.broadcastLocked(Command{Op: "attach", ID: id.String(), URL: l.url, Opacity: &op})
	return nil
}

// Detach implements overlay.Surface.
func (h *Hub) Detach(id overlay.LayerID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	l, ok := h.layers[id]
	if !ok {
		return
	}
	l.attached = false
	h.broadcastLocked(Command{Op: "detach", ID: id.String()})
}

// SetOpacity implements overlay.Surface.
func (h *Hub) SetOpacity(id overlay.LayerID, opacity float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	l, ok := h.layers[id]
	if !ok {
		return
	}
	l.opacity = opacity
	op := opacity
	h.broadcastLocked(Command{Op: "opacity", ID: id.String(), Opacity: &op})
}

// IsAttached implements overlay.Surface.
func (h *Hub) IsAttached(id overlay.LayerID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	l, ok := h.layers[id]
	return ok && l.attached
}

// SetBaseStyle replaces the base layer on every client. The base layer is
// independent of the frame overlays and bypasses the caches.
func (h *Hub) SetBaseStyle(style tiles.BaseStyle) {
	h.mu.Lock()
	defer h.mu.Unlock()

	cmd := Command{Op: "base", URL: style.URLTemplate, Attribution: style.Attribution}
	h.base = &cmd
	h.broadcastLocked(cmd)
}

// ClientCount returns the number of connected map clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}
