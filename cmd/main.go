package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/printdesk/pd-backend/internal/config"
	"github.com/printdesk/pd-backend/internal/container"
	"github.com/printdesk/pd-backend/internal/logging"
	"github.com/printdesk/pd-backend/internal/middleware"
)

func main() {
	cfg := config.Load()

	if err := logging.Init(&cfg.Logging); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	c, err := container.New(*cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer c.Cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Settings changes are fanned out over Redis so every instance
	// picks them up without a restart.
	if err := c.Settings.Start(ctx); err != nil {
		log.Fatalf("Failed to start settings watcher: %v", err)
	}

	r := chi.NewMux()
	r.Use(middleware.NewCORSHandler(&c.Config.CORS))
	r.Use(middleware.RequestContext)
	r.Use(middleware.LoggingMiddleware)

	c.Server.RegisterRoutes(r, c.Authenticator.Middleware)

	addr := fmt.Sprintf("0.0.0.0:%s", c.Config.Server.Port)
	s := &http.Server{
		Handler: r,
		Addr:    addr,
	}

	go func() {
		logging.Info("Server starting", "addr", addr)
		if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logging.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		logging.Error("Graceful shutdown failed", "error", err)
	}
}
