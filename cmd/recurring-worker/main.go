package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/finboard/finboard-api/internal/config"
	"github.com/finboard/finboard-api/internal/database"
	"github.com/finboard/finboard-api/internal/events"
	"github.com/finboard/finboard-api/internal/services"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	if cfg.Environment == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	log := logrus.WithField("component", "recurring-worker")

	log.Info("Starting recurring-worker")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DatabaseURL, cfg.DBMaxConnections, cfg.DBConnectionTimeout)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Materialized transactions are announced on the broker like any other
	// ledger write; without a broker the worker still posts them.
	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			log.WithError(err).Warn("Event broker unavailable, continuing without events")
		} else {
			defer client.Close()
			publisher = client
		}
	}

	ledger := services.NewLedgerService(pool, publisher)
	processor := services.NewRecurringProcessor(database.NewRecurringRepo(pool), ledger)

	log.WithField("interval", cfg.RecurringInterval).Info("Recurring processor configured")

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		// Run once at startup, then on every tick
		runProcessor(ctx, processor, log, time.Now())

		ticker := time.NewTicker(cfg.RecurringInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case now := <-ticker.C:
				runProcessor(ctx, processor, log, now)
			}
		}
	})

	if err := group.Wait(); err != nil && err != context.Canceled {
		log.Fatalf("Worker stopped: %v", err)
	}
	log.Info("Recurring-worker shutdown complete")
}

func runProcessor(ctx context.Context, processor *services.RecurringProcessor, log *logrus.Entry, now time.Time) {
	created, err := processor.ProcessDue(ctx, now)
	if err != nil {
		log.WithError(err).Error("Processing failed")
		return
	}
	log.WithField("transactions_created", created).Info("Processing complete")
}
