// Package websocket streams auction outcomes to connected observers.
package websocket

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"

	"openrtb-auction/internal/domain"
	"openrtb-auction/pkg/logger"
)

// Hub fans auction results out to every registered connection. Connections
// that fail a write are dropped and closed.
type Hub struct {
	mu    sync.RWMutex
	conns map[*websocket.Conn]*sync.Mutex
	log   logger.Logger
}

func NewHub(log logger.Logger) *Hub {
	if log == nil {
		log = logger.NewNop()
	}
	return &Hub{
		conns: make(map[*websocket.Conn]*sync.Mutex),
		log:   log,
	}
}

func (h *Hub) Register(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = &sync.Mutex{}
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[conn]; ok {
		delete(h.conns, conn)
		_ = conn.Close()
	}
}

// ConnectionCount reports the number of live observers.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// BroadcastResult implements domain.ResultBroadcaster.
func (h *Hub) BroadcastResult(_ context.Context, result *domain.AuctionResult) error {
	h.mu.RLock()
	targets := make(map[*websocket.Conn]*sync.Mutex, len(h.conns))
	for conn, writeMu := range h.conns {
		targets[conn] = writeMu
	}
	h.mu.RUnlock()

	for conn, writeMu := range targets {
		writeMu.Lock()
		err := conn.WriteJSON(result)
		writeMu.Unlock()
		if err != nil {
			h.log.Warn("Dropping websocket observer", "error", err)
			h.Unregister(conn)
		}
	}
	return nil
}
