package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

// Client is one connected presentation layer for a session.
type Client struct {
	conn      *websocket.Conn
	sessionID string
	send      chan []byte
}

// Hub tracks the active client per session. A session has a single human
// player; a new connection for the same session replaces the old one.
type Hub struct {
	clients map[string]*Client // session ID -> client
	mu      sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]*Client)}
}

// GameHub is the single hub for all sessions.
var GameHub = NewHub()

// Register attaches a client, replacing any previous connection for the
// same session.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	old, existed := h.clients[c.sessionID]
	h.clients[c.sessionID] = c
	h.mu.Unlock()

	if existed {
		log.Printf("[WS] Session %s reconnecting - closing old connection", c.sessionID)
		old.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "replaced by new connection"),
			time.Now().Add(5*time.Second))
		old.conn.Close()
		select {
		case <-old.send:
		default:
			close(old.send)
		}
	}
	log.Printf("[WS] Client connected for session %s", c.sessionID)
}

// Unregister detaches a client if it is still the current one.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if cur, ok := h.clients[c.sessionID]; ok && cur == c {
		delete(h.clients, c.sessionID)
		select {
		case <-c.send:
		default:
			close(c.send)
		}
		log.Printf("[WS] Client disconnected from session %s", c.sessionID)
	}
	h.mu.Unlock()
}

// SendToSession delivers a message to the session's client, dropping it if
// the send buffer is full.
func (h *Hub) SendToSession(sessionID string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("[WS] Error marshaling message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if client, exists := h.clients[sessionID]; exists {
		select {
		case client.send <- data:
		default:
			log.Printf("[WS] Send buffer full for session %s, dropping message", sessionID)
		}
	}
}

// writePump writes queued messages and keepalive pings to the connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[WS] Write error for session %s: %v", c.sessionID, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[WS] Ping error for session %s: %v", c.sessionID, err)
				return
			}
		}
	}
}

func (c *Client) sendError(message string) {
	data, _ := json.Marshal(map[string]interface{}{
		"type":    "error",
		"message": message,
	})
	select {
	case c.send <- data:
	default:
	}
}
