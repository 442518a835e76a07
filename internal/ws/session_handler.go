package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/cuearena/backend/internal/config"
	"github.com/cuearena/backend/internal/game"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var wsConfig *config.Config

// SetConfig wires the application config into the WS layer.
func SetConfig(cfg *config.Config) {
	wsConfig = cfg
}

// Incoming message payloads.
type ShootData struct {
	Angle float64 `json:"angle"`
	Power float64 `json:"power"`
}

type PlaceCueBallData struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type wsMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// HandleWebSocket upgrades a presentation-layer connection for a session.
func HandleWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token required"})
		return
	}

	s, err := game.Manager.GetSessionByToken(token)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	client := &Client{
		conn:      conn,
		sessionID: s.ID,
		send:      make(chan []byte, 256),
	}

	GameHub.Register(client)
	ensureDriver(s)

	// Initial state so the client can draw immediately.
	snap := s.Snapshot()
	GameHub.SendToSession(s.ID, gin.H{"type": "session_state", "snapshot": snap})

	go client.writePump()
	go client.readPump(s)
}

// readPump reads and dispatches messages until the connection drops.
func (c *Client) readPump(s *game.Session) {
	defer func() {
		GameHub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] Unexpected close for session %s: %v", c.sessionID, err)
			}
			break
		}

		var msg wsMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		c.handleMessage(s, msg)
	}
}

func (c *Client) handleMessage(s *game.Session, msg wsMessage) {
	switch msg.Type {
	case "shoot":
		var data ShootData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid shot data")
			return
		}
		if err := s.Shoot(data.Angle, data.Power); err != nil {
			c.sendError(err.Error())
			return
		}

	case "place_cue_ball":
		var data PlaceCueBallData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid placement data")
			return
		}
		if err := s.PlaceCueBall(data.X, data.Y); err != nil {
			c.sendError(err.Error())
			return
		}
		GameHub.SendToSession(s.ID, gin.H{"type": "session_state", "snapshot": s.Snapshot()})

	case "concede":
		s.Concede()

	case "get_state":
		GameHub.SendToSession(s.ID, gin.H{"type": "session_state", "snapshot": s.Snapshot()})

	default:
		c.sendError("Unknown message type")
	}
}

// === session driver ===

var (
	driversMu sync.Mutex
	drivers   = make(map[string]bool) // session ID -> driver running
)

// ensureDriver starts the render-tick loop for a session exactly once. The
// driver advances the physics at the configured frame rate and streams
// snapshots: every frame while the balls roll, and on each state change
// otherwise.
func ensureDriver(s *game.Session) {
	driversMu.Lock()
	defer driversMu.Unlock()
	if drivers[s.ID] {
		return
	}
	drivers[s.ID] = true
	go runDriver(s)
}

func runDriver(s *game.Session) {
	defer func() {
		driversMu.Lock()
		delete(drivers, s.ID)
		driversMu.Unlock()
	}()

	// A reconnect after game over still spawns a driver; announce the final
	// result and stop rather than ticking until the expiry sweep.
	if over, outcome := terminalOutcome(s.State()); over {
		GameHub.SendToSession(s.ID, gin.H{"type": "session_over", "outcome": outcome})
		log.Printf("[WS] Driver finished for session %s (%s)", s.ID, outcome)
		return
	}

	interval := 33 * time.Millisecond
	if wsConfig != nil && wsConfig.FrameIntervalMs > 0 {
		interval = time.Duration(wsConfig.FrameIntervalMs) * time.Millisecond
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastState := s.State()
	log.Printf("[WS] Driver started for session %s", s.ID)

	for range ticker.C {
		if s.Closed() {
			log.Printf("[WS] Driver stopping for closed session %s", s.ID)
			return
		}

		s.Advance()
		state := s.State()

		if state == game.StateSimulating {
			GameHub.SendToSession(s.ID, gin.H{"type": "frame", "snapshot": s.Snapshot()})
		} else if state != lastState {
			GameHub.SendToSession(s.ID, gin.H{"type": "session_state", "snapshot": s.Snapshot()})
		}

		if over, outcome := terminalOutcome(state); over {
			GameHub.SendToSession(s.ID, gin.H{"type": "session_over", "outcome": outcome})
			log.Printf("[WS] Driver finished for session %s (%s)", s.ID, outcome)
			return
		}
		lastState = state
	}
}

func terminalOutcome(state game.SessionState) (bool, string) {
	switch state {
	case game.StateWon:
		return true, "win"
	case game.StateLost:
		return true, "loss"
	}
	return false, ""
}
