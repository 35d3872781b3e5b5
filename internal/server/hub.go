package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

// RoomBracket receives the whole match list whenever it changes.
const RoomBracket = "bracket"

// MatchRoom names the room that receives updates of one match.
func MatchRoom(num int) string { return "match:" + strconv.Itoa(num) }

// validRoom reports whether room is RoomBracket or a match room.
func validRoom(room string) bool {
	if room == RoomBracket {
		return true
	}
	n, ok := strings.CutPrefix(room, "match:")
	if !ok {
		return false
	}
	num, err := strconv.Atoi(n)
	return err == nil && num > 0
}

// Message types sent to clients.
const (
	MessageBracket = "bracket"
	MessageMatch   = "match"
	MessageError   = "error"
)

// Message is the JSON frame sent to websocket clients.
type Message struct {
	Type    string `json:"type"`
	Room    string `json:"room"`
	Payload any    `json:"payload"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	room string
}

// Hub fans messages out to the websocket clients of each room. The latest
// message of every room is replayed to clients as they join, so a new
// client never waits for the next change to see the current state.
type Hub struct {
	register   chan *client
	unregister chan *client
	done       chan struct{}
	logger     *log.Logger

	mu    sync.Mutex
	rooms map[string]map[*client]bool
	last  map[string][]byte
}

// NewHub creates a hub. Call Run before serving clients.
func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
		logger:     logger,
		rooms:      make(map[string]map[*client]bool),
		last:       make(map[string][]byte),
	}
}

// Run processes joins and leaves until ctx is cancelled, then disconnects
// every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			if h.rooms[c.room] == nil {
				h.rooms[c.room] = make(map[*client]bool)
			}
			h.rooms[c.room][c] = true
			if data, ok := h.last[c.room]; ok {
				c.send <- data
			}
			n := len(h.rooms[c.room])
			h.mu.Unlock()
			h.logger.Debug("websocket client joined", "room", c.room, "clients", n)

		case c := <-h.unregister:
			h.mu.Lock()
			h.removeLocked(c)
			h.mu.Unlock()
			h.logger.Debug("websocket client left", "room", c.room)

		case <-ctx.Done():
			h.mu.Lock()
			for _, clients := range h.rooms {
				for c := range clients {
					h.removeLocked(c)
				}
			}
			h.mu.Unlock()
			close(h.done)
			return
		}
	}
}

// removeLocked drops c and closes its send channel, which makes its write
// pump send a close frame.
func (h *Hub) removeLocked(c *client) {
	clients, ok := h.rooms[c.room]
	if !ok || !clients[c] {
		return
	}
	delete(clients, c)
	close(c.send)
	if len(clients) == 0 {
		delete(h.rooms, c.room)
	}
}

// Broadcast sends a message to every client in room and remembers it for
// clients that join later. Clients that cannot keep up are disconnected.
func (h *Hub) Broadcast(room, msgType string, payload any) {
	data, err := json.Marshal(Message{Type: msgType, Room: room, Payload: payload})
	if err != nil {
		h.logger.Error("encode websocket message", "room", room, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.last[room] = data
	for c := range h.rooms[room] {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("websocket client too slow, disconnecting", "room", room)
			h.removeLocked(c)
		}
	}
}

// Clients returns the number of clients in room.
func (h *Hub) Clients(room string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[room])
}

// ServeWS upgrades the request and joins the client to the room named by
// the "room" query parameter, RoomBracket by default.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	room := r.URL.Query().Get("room")
	if room == "" {
		room = RoomBracket
	}
	if !validRoom(room) {
		writeError(w, http.StatusBadRequest, "unknown room "+strconv.Quote(room))
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied.
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &client{hub: h, conn: conn, send: make(chan []byte, sendBuffer), room: room}
	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// readPump discards client frames; it exists to process control frames
// and notice disconnects.
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("websocket read failed", "room", c.room, "error", err)
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.hub.logger.Debug("websocket write failed", "room", c.room, "error", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
