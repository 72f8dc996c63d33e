package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/gin-gonic/gin"

	"github.com/qorvia/roombook_backend/internal/config"
	"github.com/qorvia/roombook_backend/internal/docstore"
	"github.com/qorvia/roombook_backend/internal/identity"
	"github.com/qorvia/roombook_backend/internal/rooms"
	"github.com/qorvia/roombook_backend/internal/routes"
	"github.com/qorvia/roombook_backend/internal/ws"
)

func main() {
	// Load .env (non-fatal if missing in production)
	_ = godotenv.Load()

	cfg := config.Load()

	store, err := docstore.Connect(cfg)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	if err := store.Migrate(); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	if cfg.SeedDemo {
		if err := rooms.NewRegistry(store).SeedDemo(context.Background()); err != nil {
			log.Fatalf("demo seed failed: %v", err)
		}
	}

	verifier := identity.NewJWTVerifier(cfg.TokenSecret)

	hub := ws.NewEventsHub()
	go hub.Run()

	r := gin.Default()
	routes.Register(r, store, verifier, hub)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Println("server exited with error:", err)
		os.Exit(1)
	}
}
