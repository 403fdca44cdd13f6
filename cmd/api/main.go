// Package main provides the entry point for the SecureVault API server
// @title SecureVault API
// @version 1.0
// @description Authentication and session management API.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token authentication
// @Security BearerAuth
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"securevault/internal/api/routes"
	"securevault/internal/cleanup"
	"securevault/internal/config"
	"securevault/internal/database"
	"securevault/internal/repository/postgres"
	"securevault/internal/validation"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
)

func main() {
	// Parse command line flags
	envFile := flag.String("env", ".env", "Path to env file")
	flag.Parse()

	// Load environment file
	if err := godotenv.Load(*envFile); err != nil && *envFile == ".env" {
		log.Printf("Warning: %v", err)
	}

	// Load configuration
	cfg := &config.Config{}
	if err := cfg.LoadFromEnv(); err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database and schema
	db, err := database.Setup(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to set up database: %v", err)
	}
	defer db.Close()

	// Initialize validators
	validation.Initialize()

	// Start background cleanup of expired sessions and old login attempts
	cleanupCtx, cancelCleanup := context.WithCancel(context.Background())
	defer cancelCleanup()
	cleanupManager := cleanup.NewManager(
		cfg.Cleanup,
		postgres.NewSessionRepository(db),
		postgres.NewLoginAttemptRepository(db),
	)
	go func() {
		if err := cleanupManager.Start(cleanupCtx); err != nil {
			log.Printf("Cleanup scheduler stopped: %v", err)
		}
	}()

	// Setup routes
	router := routes.SetupRoutes(cfg, db)

	// Convert port string to int
	port, err := strconv.Atoi(cfg.API.Port)
	if err != nil {
		log.Fatalf("Invalid port number: %v", err)
	}

	// Create server with graceful shutdown
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Starting server on port %d", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 5 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
