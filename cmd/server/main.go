package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lumeo-app/backend/internal/router"
	"github.com/lumeo-app/backend/pkg/config"
	"github.com/lumeo-app/backend/pkg/logger"
	"github.com/lumeo-app/backend/validators"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connection
	client, err := config.InitDB(cfg)
	if err != nil {
		logger.Error.Fatalf("Failed to initialize database: %v", err)
	}
	defer config.CloseDB(client)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	router.SetupRoutes(e, client.Database(cfg.MongoDB), cfg)

	// Validator
	e.Validator = validators.NewValidator()

	e.Server.ReadTimeout = 15 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.IdleTimeout = 60 * time.Second

	// Start server
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			logger.Error.Fatalf("Server error: %v", err)
		}
	}()
	logger.Info.Printf("Server running on port %s", cfg.Port)

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error.Printf("Forced shutdown: %v", err)
	}

	logger.Info.Println("Server stopped gracefully")
}
