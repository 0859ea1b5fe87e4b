// Package view holds the collaborators rendering an orrery engine: a terminal view and a
// websocket stream with its HTTP API.
package view

import (
	"net/http"
	"sync"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/papo1011/orrery"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	writeWait    = 5 * time.Second
	clientBuffer = 16
)

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub is a Renderer broadcasting every frame as JSON to websocket clients.
// Sends never block the tick loop: a client whose buffer is full misses frames.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*client]struct{}
	latest   orrery.Frame
	have     bool
	dropped  uint64
	upgrader websocket.Upgrader
	logger   kitlog.Logger
}

// NewHub returns a hub without clients.
func NewHub(logger kitlog.Logger) *Hub {
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	return &Hub{
		clients:  make(map[*client]struct{}),
		upgrader: websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 4096, CheckOrigin: func(r *http.Request) bool { return true }},
		logger:   kitlog.With(logger, "subsys", "stream"),
	}
}

// Render implements the orrery.Renderer interface.
func (h *Hub) Render(f orrery.Frame) error {
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest = f
	h.have = true
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.dropped++
		}
	}
	return nil
}

// Latest returns the last rendered frame.
func (h *Hub) Latest() (orrery.Frame, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.latest, h.have
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dropped returns how many frames were skipped for slow clients.
func (h *Hub) Dropped() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dropped
}

// ServeWS upgrades the request and streams frames until the client goes away.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Log("level", "warning", "status", "upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, clientBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.Log("level", "info", "status", "connected", "remote", r.RemoteAddr)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			// Clients have nothing to say, reading only detects the close.
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	defer func() {
		h.mu.Lock()
		delete(h.clients, c)
		h.mu.Unlock()
		conn.Close()
		h.logger.Log("level", "info", "status", "disconnected", "remote", r.RemoteAddr)
	}()
	for {
		select {
		case <-done:
			return
		case data := <-c.send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
	}
}
