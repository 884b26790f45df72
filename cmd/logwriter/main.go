package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/smukkama/smartclass/internal/aggregation"
	"github.com/smukkama/smartclass/internal/database"
	"github.com/smukkama/smartclass/internal/queue"
	"github.com/smukkama/smartclass/pkg/config"
)

const (
	batchSize     = 100
	flushInterval = 5 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := config.NewLogger(&cfg.Logging, "logwriter", "")
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	fmt.Println("Starting Reading Log Writer...")
	db, err := database.Connect(cfg.Database.ConnectionString(), logger.Named("database"))
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := db.RunMigrations(ctx, "migrations"); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	consumer := queue.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents, "logwriter-group")
	defer consumer.Close()

	batchWriter := queue.NewBatchWriter(consumer, db, batchSize, flushInterval, logger.Named("writer"))
	if err := batchWriter.Start(ctx); err != nil {
		logger.Fatal("failed to start batch writer", zap.Error(err))
	}

	rollups, err := aggregation.NewScheduler(db, cfg.Rollup.HourlySchedule, cfg.Rollup.DailySchedule, logger.Named("rollup"))
	if err != nil {
		logger.Fatal("failed to schedule rollups", zap.Error(err))
	}
	rollups.Start()

	go func() {
		ticker := time.NewTicker(60 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				stats := consumer.Stats()
				logger.Info("consumer statistics",
					zap.Int64("messages", stats.Messages),
					zap.Int64("bytes", stats.Bytes),
					zap.Int64("errors", stats.Errors),
					zap.Int64("lag", stats.Lag),
				)
			}
		}
	}()

	fmt.Println("\n✓ Reading Log Writer is running")
	fmt.Printf("✓ Consuming %s into PostgreSQL\n", cfg.Kafka.TopicEvents)
	fmt.Printf("✓ Batch size: %d messages | Flush interval: %s\n", batchSize, flushInterval)
	fmt.Printf("✓ Hourly rollup: %q | Daily report: %q\n", cfg.Rollup.HourlySchedule, cfg.Rollup.DailySchedule)
	fmt.Println("✓ Press Ctrl+C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\nShutting down gracefully...")
	batchWriter.Stop()
	rollups.Stop()
	logger.Info("log writer stopped")
}
