package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/ytakahashi/task-manager/internal/config"
	"github.com/ytakahashi/task-manager/internal/handlers"
	"github.com/ytakahashi/task-manager/internal/services"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.Server.Store, err)
	}
	defer store.Close()

	e := handlers.NewServer(store)

	go func() {
		log.Printf("Server starting on port %s (store: %s)", cfg.Server.Port, cfg.Server.Store)
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Server failed: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Println("Server stopped")
}

func openStore(ctx context.Context, cfg *config.Config) (services.TaskStore, error) {
	switch cfg.Server.Store {
	case config.StoreMemory:
		return services.NewMemoryStore(), nil
	case config.StoreFirestore:
		return services.NewFirestoreService(ctx, cfg.Server.ProjectID)
	case config.StorePostgres:
		return services.NewPostgresStore(ctx, cfg.Server.DatabaseURL)
	case config.StoreSQLite:
		return services.NewSQLiteStore(cfg.Server.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Server.Store)
	}
}
