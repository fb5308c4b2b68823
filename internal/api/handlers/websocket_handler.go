package handlers

import (
	"net/http"

	gorilla "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"openrtb-auction/internal/infrastructure/websocket"
	"openrtb-auction/pkg/logger"
)

// WebSocketHandler upgrades observer connections and parks them in the hub
// until they disconnect. Observers only receive; inbound frames are drained
// and discarded.
type WebSocketHandler struct {
	hub      *websocket.Hub
	upgrader gorilla.Upgrader
	log      logger.Logger
}

func NewWebSocketHandler(hub *websocket.Hub, log logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
		upgrader: gorilla.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

func (h *WebSocketHandler) HandleConnection(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.log.Error("Failed to upgrade websocket connection", "error", err)
		return err
	}

	h.hub.Register(conn)
	h.log.Debug("Observer connected", "remote_addr", conn.RemoteAddr().String())

	go func() {
		defer h.hub.Unregister(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	return nil
}
