package config

import (
	"fmt"
	"os"
	"strings"

	zaplogfmt "github.com/jsternberg/zap-logfmt"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggingConfig selects the log encoding and minimum level
type LoggingConfig struct {
	Format string `env:"LOG_FORMAT" env-default:"console"`
	Level  string `env:"LOG_LEVEL" env-default:"info"`
}

var logLevels = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
}

// ValidateLogging normalises cfg in place
func ValidateLogging(cfg *LoggingConfig) error {
	cfg.Format = strings.ToLower(cfg.Format)
	switch cfg.Format {
	case "json", "console", "logfmt":
	default:
		return fmt.Errorf("log format must be 'json', 'console', or 'logfmt', got '%s'", cfg.Format)
	}

	cfg.Level = strings.ToLower(cfg.Level)
	if _, ok := logLevels[cfg.Level]; !ok {
		return fmt.Errorf("log level must be one of: debug, info, warn, error, got '%s'", cfg.Level)
	}
	return nil
}

// NewLogger builds the process logger. Every entry carries the service name
// and the classroom it reports for, so logs from several appliances can be
// shipped to one place.
func NewLogger(cfg *LoggingConfig, service, deviceID string) (*zap.Logger, error) {
	return newLogger(cfg, zapcore.Lock(os.Stdout), deviceFields(service, deviceID)...)
}

func deviceFields(service, deviceID string) []zap.Field {
	fields := []zap.Field{zap.String("service", service)}
	if deviceID != "" {
		fields = append(fields, zap.String("device_id", deviceID))
	}
	return fields
}

func newLogger(cfg *LoggingConfig, out zapcore.WriteSyncer, fields ...zap.Field) (*zap.Logger, error) {
	level, ok := logLevels[strings.ToLower(cfg.Level)]
	if !ok {
		level = zapcore.InfoLevel
	}

	enc := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "component",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var encoder zapcore.Encoder
	switch strings.ToLower(cfg.Format) {
	case "logfmt":
		encoder = zaplogfmt.NewEncoder(enc)
	case "json":
		encoder = zapcore.NewJSONEncoder(enc)
	case "console", "":
		enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		encoder = zapcore.NewConsoleEncoder(enc)
	default:
		return nil, fmt.Errorf("unknown log format: %s", cfg.Format)
	}

	core := zapcore.NewCore(encoder, out, level)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)).With(fields...), nil
}

// PrintConfig logs the effective configuration without secrets
func (c *Config) PrintConfig(logger *zap.Logger) {
	logger.Info("configuration loaded",
		zap.Bool("has_smoke", c.Device.HasSmoke),
		zap.Bool("has_bell", c.Device.HasBell),
		zap.String("song_catalog", c.Device.Catalog),
		zap.String("terminology", c.Device.Terminology),
		zap.Bool("simulate", c.Device.Simulate),
		zap.Duration("sample_interval", c.Scheduler.SampleInterval),
		zap.Duration("pass_interval", c.Scheduler.PassInterval),
		zap.String("http_addr", c.HTTP.Addr),
		zap.Bool("redis_enabled", c.Redis.Enabled),
		zap.Bool("kafka_enabled", c.Kafka.Enabled),
		zap.Bool("mqtt_enabled", c.MQTT.Enabled),
		zap.Bool("telegram_configured", c.Telegram.BotToken != ""),
		zap.String("log_format", c.Logging.Format),
		zap.String("log_level", c.Logging.Level),
	)
}
