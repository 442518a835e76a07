package handlers

import (
	"fmt"
	"net/http"

	"github.com/cuearena/backend/internal/config"
	"github.com/cuearena/backend/internal/game"
	"github.com/gin-gonic/gin"
)

// CreateSessionRequest starts a human-versus-bot match. Seed is optional;
// a non-zero value makes the bot's play reproducible.
type CreateSessionRequest struct {
	Stake int   `json:"stake"`
	Seed  int64 `json:"seed"`
}

// CreateSession creates a session and returns its token and WS endpoint.
func CreateSession(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateSessionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		s, err := game.Manager.CreateSession(req.Stake, req.Seed)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"session_id": s.ID,
			"token":      s.Token,
			"ws_path":    fmt.Sprintf("/api/v1/session/ws?token=%s", s.Token),
			"snapshot":   s.Snapshot(),
		})
	}
}

// GetSessionState returns the current snapshot for polling clients.
func GetSessionState(c *gin.Context) {
	token := c.Param("token")
	s, err := game.Manager.GetSessionByToken(token)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"snapshot": s.Snapshot()})
}

// GetShotHistory returns the persisted session row and shot log. Requires a
// database; a core running without one reports the history as unavailable.
func GetShotHistory(c *gin.Context) {
	token := c.Param("token")
	s, err := game.Manager.GetSessionByToken(token)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	record, err := game.Manager.SessionRecord(s.ID)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "shot history unavailable"})
		return
	}
	shots, err := game.Manager.ShotHistory(s.ID)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "shot history unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session": record,
		"shots":   shots,
	})
}

// CloseSession tears down a session (host exit / forfeit path).
func CloseSession(c *gin.Context) {
	token := c.Param("token")
	s, err := game.Manager.GetSessionByToken(token)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	game.Manager.RemoveSession(s.ID)
	c.JSON(http.StatusOK, gin.H{"status": "closed"})
}
