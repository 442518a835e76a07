package handlers

import (
	"net/http"
	"time"

	"github.com/cuearena/backend/internal/game"
	"github.com/gin-gonic/gin"
)

var startTime = time.Now()

const version = "1.2.0"

// HealthCheck returns server health status.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":          "ok",
		"service":         "cuearena-api",
		"version":         version,
		"uptime":          time.Since(startTime).String(),
		"active_sessions": game.Manager.ActiveSessionCount(),
	})
}
