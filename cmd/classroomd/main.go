package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/smukkama/smartclass/internal/bell"
	"github.com/smukkama/smartclass/internal/classify"
	"github.com/smukkama/smartclass/internal/controller"
	"github.com/smukkama/smartclass/internal/hardware"
	"github.com/smukkama/smartclass/internal/mqtt"
	"github.com/smukkama/smartclass/internal/notification"
	"github.com/smukkama/smartclass/internal/queue"
	"github.com/smukkama/smartclass/internal/relay"
	"github.com/smukkama/smartclass/internal/server"
	"github.com/smukkama/smartclass/internal/settings"
	"github.com/smukkama/smartclass/internal/songs"
	"github.com/smukkama/smartclass/pkg/config"
)

const relayTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := config.NewLogger(&cfg.Logging, "classroomd", cfg.Device.ID)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	cfg.PrintConfig(logger)
	fmt.Println("Starting Smart Classroom controller...")

	catalog, err := songs.ByName(cfg.Device.Catalog)
	if err != nil {
		logger.Fatal("failed to load song catalog", zap.Error(err))
	}

	bells, err := buildTimetable(cfg, catalog)
	if err != nil {
		logger.Fatal("failed to build bell timetable", zap.Error(err))
	}

	if !cfg.Device.Simulate {
		logger.Fatal("no hardware driver is available on this build, set DEVICE_SIMULATE=true")
	}
	devices := controller.Devices{
		Sampler: hardware.NewSensors(time.Now().UnixNano(), cfg.Device.HasSmoke),
		Pins:    hardware.NewPins(logger.Named("pins")),
		Buzzer:  hardware.NewBuzzer(logger.Named("buzzer")),
		Radio:   hardware.NewRadio(),
		Catalog: catalog,
	}

	ctrl, err := controller.New(devices, controllerOptions(cfg, bells), logger.Named("controller"))
	if err != nil {
		logger.Fatal("failed to create controller", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore := openSettingsStore(ctx, cfg, logger)
	defer closeStore()

	sinks, closeSinks := buildSinks(cfg, store, logger)
	defer closeSinks()

	loopDone := make(chan error, 1)
	go func() {
		loopDone <- ctrl.Run(ctx)
	}()

	events := relay.New(relayTimeout, logger.Named("relay"), sinks...)
	relayDone := make(chan struct{})
	go func() {
		events.Run(ctx, ctrl.Events())
		close(relayDone)
	}()

	srv := server.NewServer(&cfg.HTTP, ctrl, catalog, store, logger.Named("http"))
	restart := make(chan struct{}, 1)
	srv.OnSave(func() {
		select {
		case restart <- struct{}{}:
		default:
		}
	})
	if err := srv.Start(); err != nil {
		logger.Fatal("failed to start HTTP server", zap.Error(err))
	}

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				logger.Info("relay statistics",
					zap.Any("sinks", events.Stats()),
					zap.Uint64("dropped_events", ctrl.Dropped()),
				)
			}
		}
	}()

	fmt.Println("\n✓ Smart Classroom controller is running")
	fmt.Printf("✓ Dashboard listening on %s\n", srv.Addr())
	fmt.Printf("✓ Relaying events to %d sink(s)\n", len(sinks))
	fmt.Println("✓ Press Ctrl+C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		fmt.Println("\nShutting down gracefully...")
	case <-restart:
		// the supervisor brings the process back up with the new settings
		logger.Info("settings saved, restarting")
	case err := <-loopDone:
		logger.Error("controller loop exited", zap.Error(err))
		loopDone <- err
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Warn("HTTP server did not stop cleanly", zap.Error(err))
	}

	cancel()
	// Run silences the buzzer on its way out
	if err := <-loopDone; err != nil {
		logger.Warn("controller loop returned an error", zap.Error(err))
	}
	<-relayDone
	logger.Info("controller stopped")
}

func buildTimetable(cfg *config.Config, catalog *songs.Catalog) (*bell.Timetable, error) {
	if !cfg.Device.HasBell {
		return nil, nil
	}
	raw, err := config.ParseTimetable(cfg.Bells.Timetable)
	if err != nil {
		return nil, err
	}
	entries := make([]bell.Entry, 0, len(raw))
	for _, e := range raw {
		entries = append(entries, bell.Entry{Spec: e.Spec, SongID: e.SongID})
	}
	return bell.NewTimetable(entries, catalog.Has)
}

func controllerOptions(cfg *config.Config, bells *bell.Timetable) controller.Options {
	t := cfg.Thresholds
	return controller.Options{
		DeviceID:    cfg.Device.ID,
		HasSmoke:    cfg.Device.HasSmoke,
		HasBell:     cfg.Device.HasBell,
		Terminology: cfg.Device.Terminology,
		Thresholds: classify.Thresholds{
			TempMin:            t.TempMin,
			TempMax:            t.TempMax,
			TempDangerLow:      t.TempDangerLow,
			TempDangerHigh:     t.TempDangerHigh,
			HumidityMin:        t.HumidityMin,
			HumidityMax:        t.HumidityMax,
			HumidityDangerLow:  t.HumidityDangerL,
			HumidityDangerHigh: t.HumidityDangerH,
			SoundMax:           t.SoundMax,
			SoundDanger:        t.SoundDanger,
			GasWarn:            t.GasWarn,
			GasDanger:          t.GasDanger,
			SmokeWarn:          t.SmokeWarn,
			SmokeAlarm:         t.SmokeAlarm,
		},
		SampleInterval: cfg.Scheduler.SampleInterval,
		PassInterval:   cfg.Scheduler.PassInterval,
		TempoBase:      cfg.Scheduler.TempoBase,
		QuickTone:      cfg.Scheduler.QuickToneDuration,
		ScanTimeout:    cfg.Scheduler.ScanTimeout,
		AlertHold:      cfg.Scheduler.AlertHold,
		FanHysteresis:  cfg.Scheduler.FanHysteresis,
		InboxSize:      cfg.Scheduler.InboxSize,
		OutboxSize:     cfg.Scheduler.OutboxSize,
		HistorySize:    cfg.History.Size,
		Bells:          bells,
		StartupChime:   true,
	}
}

// openSettingsStore prefers Redis and falls back to memory when Redis is
// disabled or unreachable at boot
func openSettingsStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (settings.Store, func()) {
	if !cfg.Redis.Enabled {
		return settings.NewMemoryStore(), func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("Redis unreachable, settings will not survive a restart", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		client.Close()
		return settings.NewMemoryStore(), func() {}
	}

	logger.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr))
	return settings.NewRedisStore(client, cfg.Device.ID), func() { client.Close() }
}

// buildSinks wires the configured outbound channels. With Kafka enabled the
// notifier service owns Telegram and e-mail delivery.
func buildSinks(cfg *config.Config, store settings.Store, logger *zap.Logger) ([]relay.Sink, func()) {
	var sinks []relay.Sink
	var closers []func()

	if cfg.Kafka.Enabled {
		for _, topic := range []string{cfg.Kafka.TopicEvents, cfg.Kafka.TopicAlerts} {
			if err := queue.CreateTopic(cfg.Kafka.Brokers, topic, 1, 1, logger); err != nil {
				logger.Warn("failed to create topic", zap.String("topic", topic), zap.Error(err))
			}
		}
		eventsProducer := queue.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents)
		alertsProducer := queue.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicAlerts)
		closers = append(closers, func() {
			eventsProducer.Close()
			alertsProducer.Close()
		})
		sinks = append(sinks, relay.NewKafkaSink(eventsProducer, alertsProducer))
		logger.Info("Kafka producers initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
	}

	if cfg.MQTT.Enabled {
		client, err := mqtt.Connect(&cfg.MQTT, logger.Named("mqtt"))
		if err != nil {
			logger.Warn("MQTT disabled for this run", zap.Error(err))
		} else {
			closers = append(closers, func() { client.Disconnect(250) })
			sinks = append(sinks, mqtt.NewPublisher(client, cfg.MQTT.TopicPrefix, cfg.Device.ID, logger.Named("mqtt")))
		}
	}

	if !cfg.Kafka.Enabled {
		sinks = append(sinks,
			notification.NewTelegramNotifier(&cfg.Telegram, notification.StoreLookup(store), logger.Named("telegram")),
			notification.NewEmailNotifier(&cfg.SMTP, logger.Named("email")),
		)
	}

	return sinks, func() {
		for _, c := range closers {
			c()
		}
	}
}
