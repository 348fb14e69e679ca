package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/pavitra93/menulink/shared/config"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found, using environment variables")
	}

	cfg := config.GetHandoffConfig()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database connection
	db, err := config.ConnectDatabase()
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	ledger := NewGormLedger(db)

	notifier := NewNotifier(cfg.NotifyEndpoint, nil)

	consumer := NewHandoffConsumer(cfg.KafkaBroker, cfg.HandoffTopic, cfg.ConsumerGroup, ledger, notifier, cfg.RetryBaseDelay)
	defer consumer.Close()
	go consumer.Run(ctx)

	worker := NewRetryWorker(ledger, notifier, cfg.MaxRetries, cfg.BatchSize, cfg.CheckInterval, cfg.RetryBaseDelay)
	go worker.Run(ctx)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: newRouter(notifier, worker),
	}

	go func() {
		logrus.Infof("Handoff service starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start handoff service:", err)
		}
	}()

	<-ctx.Done()
	logrus.Info("Shutting down handoff service...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("Handoff service shutdown failed: %v", err)
	}
}
