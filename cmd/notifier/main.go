package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/smukkama/smartclass/internal/notification"
	"github.com/smukkama/smartclass/internal/protocol"
	"github.com/smukkama/smartclass/internal/queue"
	"github.com/smukkama/smartclass/internal/settings"
	"github.com/smukkama/smartclass/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := config.NewLogger(&cfg.Logging, "notifier", "")
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	fmt.Println("Starting Alert Notifier...")

	// bot credentials saved on each classroom's dashboard live in Redis
	var lookup notification.SettingsLookup
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		lookup = func(ctx context.Context, deviceID string) (protocol.Settings, error) {
			return settings.NewRedisStore(client, deviceID).Load(ctx)
		}
	}

	email := notification.NewEmailNotifier(&cfg.SMTP, logger.Named("email"))
	if !email.Configured() {
		logger.Info("SMTP not configured, e-mail alerts will be logged only")
	}
	telegram := notification.NewTelegramNotifier(&cfg.Telegram, lookup, logger.Named("telegram"))

	consumer := queue.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicAlerts, "notifier-group")
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	forwarder := notification.NewForwarder(consumer, logger.Named("forwarder"), telegram, email)
	done := make(chan struct{})
	go func() {
		if err := forwarder.Run(ctx); err != nil {
			logger.Error("forwarder stopped", zap.Error(err))
		}
		close(done)
	}()

	fmt.Println("\n✓ Alert Notifier is running")
	fmt.Printf("✓ Consuming %s\n", cfg.Kafka.TopicAlerts)
	fmt.Println("✓ Press Ctrl+C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\nShutting down gracefully...")
	cancel()
	<-done
	logger.Info("notifier stopped")
}
