package handler

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/transitbook/bus-reservation/internal/ws"
)

// WSHandler upgrades GET /ws connections and subscribes them to seat
// updates. The channel is server -> client only; clients learn about
// every hold, release, purchase and expiry through it.
type WSHandler struct {
	Hub      *ws.Hub
	upgrader websocket.Upgrader
}

// NewWSHandler constructs a WSHandler over the hub. Origins are not
// restricted: the seat map is public data and the session token, not
// the origin, is what identifies a caller.
func NewWSHandler(hub *ws.Hub) *WSHandler {
	if hub == nil {
		panic("nil hub passed to NewWSHandler")
	}
	return &WSHandler{
		Hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Subscribe handles the upgrade and blocks until the peer disconnects.
func (h *WSHandler) Subscribe(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	h.Hub.ServeConn(conn)
	return nil
}
