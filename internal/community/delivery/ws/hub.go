// Package ws pushes community events to connected websocket clients.
package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"golang-stock-circle/internal/community/dto"
	"golang-stock-circle/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

type client struct {
	id     string
	userID uint
	conn   *websocket.Conn
	send   chan []byte
}

// Hub tracks websocket clients per user. An event with RecipientID 0 goes to everyone.
type Hub struct {
	mu       sync.RWMutex
	clients  map[uint]map[string]*client
	upgrader websocket.Upgrader
	logger   *logger.Logger
}

// NewHub creates a hub accepting upgrades from the given origins. An empty list allows any origin.
func NewHub(allowedOrigins []string, log *logger.Logger) *Hub {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &Hub{
		clients: make(map[uint]map[string]*client),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin] || allowed["*"]
			},
		},
		logger: log,
	}
}

// Serve upgrades the request and blocks until the client disconnects.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID uint) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &client{id: uuid.NewString(), userID: userID, conn: conn, send: make(chan []byte, sendBuffer)}
	h.register(c)
	h.logger.Debug("Websocket client connected", logger.UintField("user_id", userID), logger.StringField("client_id", c.id))

	go h.writePump(c)
	h.readPump(c)
	return nil
}

// Deliver queues the event for its recipient's clients. Clients that cannot keep up are dropped.
func (h *Hub) Deliver(event dto.Event) {
	msg, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Failed to encode websocket event", logger.ErrorField(err), logger.StringField("type", event.Type))
		return
	}

	var stale []*client
	h.mu.RLock()
	for userID, conns := range h.clients {
		if event.RecipientID != 0 && userID != event.RecipientID {
			continue
		}
		for _, c := range conns {
			select {
			case c.send <- msg:
			default:
				stale = append(stale, c)
			}
		}
	}
	h.mu.RUnlock()

	for _, c := range stale {
		h.logger.Warn("Dropping slow websocket client", logger.UintField("user_id", c.userID), logger.StringField("client_id", c.id))
		h.unregister(c)
	}
}

// ClientCount returns the number of open connections for a user.
func (h *Hub) ClientCount(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	var all []*client
	for _, conns := range h.clients {
		for _, c := range conns {
			all = append(all, c)
		}
	}
	h.mu.Unlock()

	for _, c := range all {
		h.unregister(c)
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c.userID] == nil {
		h.clients[c.userID] = make(map[string]*client)
	}
	h.clients[c.userID][c.id] = c
}

// unregister is safe to call more than once for the same client.
func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.clients[c.userID]
	if !ok {
		return
	}
	if _, ok := conns[c.id]; !ok {
		return
	}
	delete(conns, c.id)
	if len(conns) == 0 {
		delete(h.clients, c.userID)
	}
	close(c.send)
}

// readPump discards client input and keeps the read deadline alive via pongs.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("Websocket read failed", logger.ErrorField(err), logger.StringField("client_id", c.id))
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
