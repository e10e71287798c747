// Package ws implements the notification fan-out: a registry of
// connected seat-map viewers and a best-effort broadcast of seat-update
// events to all of them. The subscriber set is process-local; the
// Backplane in this package extends the same Publish contract across
// multiple serving instances.
package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/transitbook/bus-reservation/internal/model"
)

const (
	// writeWait bounds every write attempt so a dead subscriber can
	// never stall the broadcast path.
	writeWait = 10 * time.Second

	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// sendBuffer is the per-subscriber queue; a subscriber that falls
	// this far behind is dropped rather than waited on.
	sendBuffer = 16
)

// Hub keeps the set of connected subscribers and fans events out to
// them. Registration is explicit and per-connection; nothing about the
// hub is a process-wide singleton the coordinator depends on.
type Hub struct {
	mu   sync.RWMutex
	subs map[*subscriber]struct{}
}

type subscriber struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[*subscriber]struct{})}
}

// Publish encodes the event once and delivers it to every subscriber.
// Best effort: there is no delivery guarantee, no persistence and no
// replay, and a slow or dead subscriber is dropped instead of blocking.
func (h *Hub) Publish(ev model.SeatUpdate) {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Printf("ws: marshal seat update: %v", err)
		return
	}
	h.Forward(payload)
}

// Forward delivers a pre-encoded frame to every subscriber. The
// backplane uses it to relay frames received from other instances
// without re-encoding.
func (h *Hub) Forward(payload []byte) {
	var dropped []*subscriber
	h.mu.RLock()
	for s := range h.subs {
		select {
		case s.send <- payload:
		default:
			dropped = append(dropped, s)
		}
	}
	h.mu.RUnlock()
	for _, s := range dropped {
		h.remove(s)
	}
}

// Subscribers reports how many connections are currently registered.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// ServeConn registers an upgraded connection and blocks until the peer
// disconnects or is dropped. The caller owns neither the connection nor
// its teardown after this returns.
func (h *Hub) ServeConn(conn *websocket.Conn) {
	s := &subscriber{conn: conn, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()

	go s.writePump()
	s.readPump(h)
}

// remove unregisters a subscriber and closes its send channel, which in
// turn terminates its write pump. Safe to call more than once.
func (h *Hub) remove(s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[s]; ok {
		delete(h.subs, s)
		close(s.send)
	}
}

// readPump discards inbound frames (the channel is server -> client
// only) and exists to notice disconnects and answer pings.
func (s *subscriber) readPump(h *Hub) {
	defer func() {
		h.remove(s)
		_ = s.conn.Close()
	}()
	s.conn.SetReadLimit(512)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump serialises all writes to the connection: queued events plus
// keepalive pings. It exits when the send channel closes or a write
// fails.
func (s *subscriber) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
