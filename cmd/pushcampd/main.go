package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"push-campaign-backend/config"
	"push-campaign-backend/internal/api"
	"push-campaign-backend/internal/db"
	"push-campaign-backend/internal/dispatch"
	"push-campaign-backend/internal/maintenance"
	"push-campaign-backend/internal/push"
	"push-campaign-backend/internal/store"
)

func main() {
	// Setup logger
	logger := log.New(os.Stdout, "pushcamp ", log.LstdFlags)

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	// Check for VAPID keys
	if cfg.Push.PublicKey == "" || cfg.Push.PrivateKey == "" {
		logger.Fatalf("VAPID keys must be configured. Please generate them and add them to your config file.")
	}

	// Initialize database
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	logger.Println("data store initialized")

	// Seed the configured operator if it does not exist yet.
	if cfg.Operator.Name != "" {
		op, err := appStore.EnsureOperator(ctx, cfg.Operator.Name, cfg.Operator.Email)
		if err != nil {
			logger.Fatalf("failed to ensure operator %q: %v", cfg.Operator.Name, err)
		}
		logger.Printf("operator %q ready (id %d)", op.Name, op.ID)
	}

	transport := push.NewTransport(&cfg.Push)
	orchestrator := dispatch.NewOrchestrator(appStore, transport, cfg.Dispatch.Concurrency)

	// Run the retention sweeper in the background.
	sweeper := maintenance.NewSweeper(&cfg.Retention, appStore)
	go sweeper.Run(ctx)

	// Initialize router
	router := api.NewRouter(cfg, appStore, orchestrator)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start the server in a goroutine
	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
