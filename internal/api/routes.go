package api

import (
	"log"

	"github.com/cuearena/backend/internal/api/handlers"
	"github.com/cuearena/backend/internal/config"
	"github.com/cuearena/backend/internal/middleware"
	"github.com/cuearena/backend/internal/ws"
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all API routes.
func SetupRoutes(router *gin.Engine, cfg *config.Config) {
	router.Use(middleware.CORSMiddleware(cfg))

	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Next()
		})
		log.Println("[DEV MODE] No-cache headers enabled for all routes")
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck)

		session := v1.Group("/session")
		{
			session.POST("", handlers.CreateSession(cfg))
			session.GET("/ws", ws.HandleWebSocket)
			session.GET("/:token", handlers.GetSessionState)
			session.GET("/:token/shots", handlers.GetShotHistory)
			session.DELETE("/:token", handlers.CloseSession)
		}
	}
}
