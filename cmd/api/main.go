package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/wolfman30/careflow-portal/cmd/mainconfig"
	"github.com/wolfman30/careflow-portal/internal/app/bootstrap"
	appconfig "github.com/wolfman30/careflow-portal/internal/config"
	"github.com/wolfman30/careflow-portal/pkg/logging"
)

func main() {
	// Load .env file when running locally
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting careflow portal API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()
	st, closeStore, err := bootstrap.Connect(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect data store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	ses, err := mainconfig.BuildSESClient(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		defer redisClient.Close()
	}

	portal, err := bootstrap.BuildPortal(cfg, logger, bootstrap.Deps{
		Store: st,
		Redis: redisClient,
		SES:   ses,
	})
	if err != nil {
		logger.Error("failed to build portal", "error", err)
		os.Exit(1)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      portal.Handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}
