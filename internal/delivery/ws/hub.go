package ws

import (
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/gorilla/websocket"
	"go.uber.org/multierr"
)

// RoomAll receives every sighting regardless of animal.
const RoomAll = "all"

const writeWait = 5 * time.Second

// client serializes writes to one connection; websocket.Conn allows a single
// concurrent writer.
type client struct {
	conn *websocket.Conn
	wmu  sync.Mutex
}

func (c *client) write(msg []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, msg)
}

type Hub struct {
	mu     sync.Mutex
	closed bool
	rooms  map[string]map[*websocket.Conn]*client
	log    *logger.ZapLogger
}

func NewHub(log *logger.ZapLogger) *Hub {
	return &Hub{
		rooms: make(map[string]map[*websocket.Conn]*client),
		log:   log,
	}
}

// RoomFor maps an animal name to its feed room.
func RoomFor(animal string) string {
	room := strings.ToLower(strings.TrimSpace(animal))
	if room == "" {
		return RoomAll
	}
	return room
}

// Register adds conn to the room. After Close it closes conn instead and
// returns false.
func (h *Hub) Register(roomID string, conn *websocket.Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		_ = conn.Close()
		return false
	}

	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[*websocket.Conn]*client)
	}
	h.rooms[roomID][conn] = &client{conn: conn}

	h.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "feed subscriber joined",
		Fields:  map[string]any{"room": roomID, "conns": len(h.rooms[roomID])},
	})
	return true
}

func (h *Hub) Unregister(roomID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.rooms[roomID]
	if !ok {
		return
	}

	if _, ok := conns[conn]; ok {
		delete(conns, conn)
		_ = conn.Close()
	}

	if len(conns) == 0 {
		delete(h.rooms, roomID)
	}
}

// SendToRoom writes msg to every connection of the room and returns how many
// connections accepted it. Writes happen outside the hub lock, one goroutine
// per connection; a connection that fails a write is unregistered.
func (h *Hub) SendToRoom(roomID string, msg []byte) int {
	h.mu.Lock()
	targets := make([]*client, 0, len(h.rooms[roomID]))
	for _, c := range h.rooms[roomID] {
		targets = append(targets, c)
	}
	h.mu.Unlock()

	var (
		wg   sync.WaitGroup
		sent atomic.Int64
	)
	for _, c := range targets {
		wg.Add(1)
		go func(c *client) {
			defer wg.Done()
			if err := c.write(msg); err != nil {
				h.log.Log(logger.LogEntry{
					Level:   "warn",
					Message: "feed send failed",
					Fields:  map[string]any{"room": roomID},
					Error:   err,
				})
				h.Unregister(roomID, c.conn)
				return
			}
			sent.Add(1)
		}(c)
	}
	wg.Wait()

	return int(sent.Load())
}

// Broadcast sends msg to the catch-all room and, when different, to the
// animal's own room.
func (h *Hub) Broadcast(animal string, msg []byte) int {
	sent := h.SendToRoom(RoomAll, msg)
	if room := RoomFor(animal); room != RoomAll {
		sent += h.SendToRoom(room, msg)
	}
	return sent
}

func (h *Hub) Conns(roomID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[roomID])
}

// Close disconnects every subscriber and rejects later registrations.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true

	var err error
	for roomID, conns := range h.rooms {
		for conn := range conns {
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
			err = multierr.Append(err, conn.Close())
		}
		delete(h.rooms, roomID)
	}
	return err
}

var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}
