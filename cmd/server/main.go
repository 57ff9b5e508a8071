package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/azeasycpa/askcpa/api"
	dbfs "github.com/azeasycpa/askcpa/db"
	"github.com/azeasycpa/askcpa/internal/config"
	"github.com/azeasycpa/askcpa/internal/db"
	"github.com/azeasycpa/askcpa/internal/draft"
	"github.com/azeasycpa/askcpa/internal/jobs"
	"github.com/azeasycpa/askcpa/internal/mailer"
	"github.com/azeasycpa/askcpa/internal/repository/sqlite"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	var configPath = flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	log.Printf("Starting askcpa server version %s (built at %s)", version, buildTime)

	ctx := context.Background()

	// Open database connection and apply migrations
	database, err := db.New(ctx, cfg.DatabasePath, nil)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := db.Migrate(ctx, database, dbfs.Migrations); err != nil {
		log.Fatalf("Failed to migrate DB: %v", err)
	}

	repo := sqlite.New(database, nil)

	mail, err := mailer.NewClient(cfg.Mailer, nil)
	if err != nil {
		log.Fatalf("Failed to create mailer: %v", err)
	}

	var drafter jobs.Drafter
	if cfg.Draft.Model != "" {
		d, err := draft.NewEngine(cfg.Draft, nil)
		if err != nil {
			log.Fatalf("Failed to create draft engine: %v", err)
		}
		drafter = d
	}

	// Background workers deliver notifications and drafts off the request path
	pool := jobs.NewWorkerPool(repo, jobs.NewHandlers(mail, drafter, repo), nil, cfg.Workers)
	pool.Start(ctx)

	handler := api.SetupRoutes(cfg, version, buildTime, database, pool)

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.APITimeout,
		WriteTimeout: cfg.APITimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	pool.Stop()
	_ = mail.Close()

	if err := database.Close(); err != nil {
		log.Printf("Error closing DB: %v", err)
	}

	log.Println("Server exited")
}
