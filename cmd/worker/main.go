package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/printdesk/pd-backend/internal/aws"
	"github.com/printdesk/pd-backend/internal/config"
	"github.com/printdesk/pd-backend/internal/logging"
	"github.com/printdesk/pd-backend/internal/queue"
)

func main() {
	cfg := config.Load()

	if err := logging.Init(&cfg.Logging); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	emailSvc, err := aws.NewSESService(context.Background(), cfg.AWS)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	worker := queue.NewWorker(&cfg.Redis, emailSvc)

	log.Println("Starting queue worker...")
	if err := worker.Start(); err != nil {
		log.Fatalf("Worker failed to start: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Println("Shutting down queue worker...")
	worker.Close()
}
