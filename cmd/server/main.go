package main

import (
	"context"
	"log"
	"os"

	"github.com/cuearena/backend/internal/api"
	"github.com/cuearena/backend/internal/config"
	"github.com/cuearena/backend/internal/database"
	"github.com/cuearena/backend/internal/game"
	"github.com/cuearena/backend/internal/migrations"
	"github.com/cuearena/backend/internal/redis"
	"github.com/cuearena/backend/internal/ws"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	// DB and Redis are optional: the core runs fine without persistence.
	var db *sqlx.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = database.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Printf("[DB] Unavailable (%v) — shot history disabled", err)
			db = nil
		} else {
			defer db.Close()
			if os.Getenv("MIGRATE_ON_START") == "true" {
				log.Println("↗ Running DB migrations on startup...")
				if err := migrations.RunMigrations(cfg.DatabaseURL); err != nil {
					log.Fatalf("Failed to run migrations: %v", err)
				}
			}
		}
	} else {
		log.Println("[DB] DATABASE_URL not set — shot history disabled")
	}

	var rdb *goredis.Client
	if cfg.RedisURL != "" {
		var err error
		rdb, err = redis.Connect(cfg.RedisURL)
		if err != nil {
			log.Printf("[REDIS] Unavailable (%v) — snapshot caching disabled", err)
			rdb = nil
		} else {
			defer rdb.Close()
		}
	} else {
		log.Println("[REDIS] REDIS_URL not set — snapshot caching disabled")
	}

	game.InitializeManager(context.Background(), db, rdb, cfg)
	ws.SetConfig(cfg)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	api.SetupRoutes(router, cfg)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting CueArena server on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
