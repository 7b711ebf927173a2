package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/quillmed/chartextract/internal/config"
	"github.com/quillmed/chartextract/internal/database"
	"github.com/quillmed/chartextract/internal/db/migrate"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	command := flag.String("command", "up", "Migration command (up/down)")
	migrationsDir := flag.String("dir", "internal/db/migrations", "Migrations directory")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Disconnect(pool)

	absPath, err := filepath.Abs(*migrationsDir)
	if err != nil {
		log.Fatalf("Failed to resolve migrations directory: %v", err)
	}

	manager := migrate.NewManager(pool, absPath)

	if err := manager.Initialize(ctx); err != nil {
		log.Fatalf("Failed to initialize migrations table: %v", err)
	}

	switch *command {
	case "up":
		if err := manager.Up(ctx); err != nil {
			log.Fatalf("Failed to apply migrations: %v", err)
		}
		fmt.Println("Successfully applied all pending migrations")

	case "down":
		if err := manager.Down(ctx); err != nil {
			log.Fatalf("Failed to roll back migration: %v", err)
		}
		fmt.Println("Successfully rolled back last migration")

	default:
		log.Fatalf("Unknown command: %s", *command)
	}
}
