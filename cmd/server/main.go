package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blast-arena/server/config"
	"blast-arena/server/handlers"
	"blast-arena/server/persistence"
	"blast-arena/server/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := openStorage(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize persistence: %v", err)
	}
	defer db.Close()

	log.Println("Persistence initialized successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize services
	matchManager := services.NewMatchManager(ctx, db, cfg.StageName, cfg.ResumeMatches, services.MatchConfig{
		MaxPlayers:    cfg.MaxPlayers,
		BombRange:     cfg.BombRange,
		SnapshotEvery: cfg.SnapshotEvery,
		TickInterval:  cfg.TickInterval(),
	})
	clientManager := handlers.NewClientManager()
	matchManager.OnCreate(clientManager.WatchMatch)
	playerService := services.NewPlayerService(matchManager)

	// Set up HTTP routes
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", handlers.NewWebSocketHandler(playerService, clientManager))

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: mux,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

// openStorage picks the persistence backend named by DB_TYPE
func openStorage(cfg config.Config) (persistence.Storage, error) {
	switch cfg.DBType {
	case "postgres":
		log.Println("Using PostgreSQL persistence")
		return persistence.NewPostgresStore(cfg.DatabaseURL)
	case "sqlite":
		log.Println("Using SQLite persistence")
		return persistence.NewSQLiteStore(cfg.SQLitePath)
	default:
		log.Println("Using JSON persistence")
		return persistence.NewJSONStore(cfg.DBFile)
	}
}
