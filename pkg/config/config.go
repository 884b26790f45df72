package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Device     DeviceConfig
	Scheduler  SchedulerConfig
	Thresholds ThresholdConfig
	HTTP       HTTPConfig
	History    HistoryConfig
	Bells      BellConfig
	Redis      RedisConfig
	Kafka      KafkaConfig
	MQTT       MQTTConfig
	Database   DatabaseConfig
	Rollup     RollupConfig
	Telegram   TelegramConfig
	SMTP       SMTPConfig
	Logging    LoggingConfig
}

// DeviceConfig describes which dashboard variant this appliance runs
type DeviceConfig struct {
	ID          string `env:"DEVICE_ID" env-default:"classroom-1"`
	HasSmoke    bool   `env:"DEVICE_HAS_SMOKE" env-default:"false"`
	HasBell     bool   `env:"DEVICE_HAS_BELL" env-default:"false"`
	Catalog     string `env:"DEVICE_SONG_CATALOG" env-default:"base"`
	Terminology string `env:"DEVICE_TERMINOLOGY" env-default:"mood"`
	Simulate    bool   `env:"DEVICE_SIMULATE" env-default:"true"`
}

type SchedulerConfig struct {
	SampleInterval    time.Duration `env:"SAMPLE_INTERVAL" env-default:"2s"`
	PassInterval      time.Duration `env:"PASS_INTERVAL" env-default:"5ms"`
	TempoBase         time.Duration `env:"TEMPO_BASE" env-default:"1s"`
	QuickToneDuration time.Duration `env:"QUICK_TONE_DURATION" env-default:"200ms"`
	ScanTimeout       time.Duration `env:"SCAN_TIMEOUT" env-default:"20s"`
	AlertHold         time.Duration `env:"ALERT_HOLD" env-default:"10s"`
	FanHysteresis     float64       `env:"FAN_HYSTERESIS" env-default:"1.0"`
	InboxSize         int           `env:"INBOX_SIZE" env-default:"16"`
	OutboxSize        int           `env:"OUTBOX_SIZE" env-default:"256"`
}

// ThresholdConfig overrides the classification bands
type ThresholdConfig struct {
	TempMin         float64 `env:"THRESHOLD_TEMP_MIN" env-default:"18"`
	TempMax         float64 `env:"THRESHOLD_TEMP_MAX" env-default:"30"`
	TempDangerLow   float64 `env:"THRESHOLD_TEMP_DANGER_LOW" env-default:"10"`
	TempDangerHigh  float64 `env:"THRESHOLD_TEMP_DANGER_HIGH" env-default:"38"`
	HumidityMin     float64 `env:"THRESHOLD_HUMIDITY_MIN" env-default:"40"`
	HumidityMax     float64 `env:"THRESHOLD_HUMIDITY_MAX" env-default:"60"`
	HumidityDangerL float64 `env:"THRESHOLD_HUMIDITY_DANGER_LOW" env-default:"20"`
	HumidityDangerH float64 `env:"THRESHOLD_HUMIDITY_DANGER_HIGH" env-default:"85"`
	SoundMax        float64 `env:"THRESHOLD_SOUND_MAX" env-default:"55"`
	SoundDanger     float64 `env:"THRESHOLD_SOUND_DANGER" env-default:"85"`
	GasWarn         int     `env:"THRESHOLD_GAS_WARN" env-default:"1000"`
	GasDanger       int     `env:"THRESHOLD_GAS_DANGER" env-default:"2000"`
	SmokeWarn       int     `env:"THRESHOLD_SMOKE_WARN" env-default:"1000"`
	SmokeAlarm      int     `env:"THRESHOLD_SMOKE_ALARM" env-default:"2000"`
}

type HTTPConfig struct {
	Addr           string        `env:"HTTP_ADDR" env-default:":8080"`
	ReadTimeout    time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"5s"`
	WriteTimeout   time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"10s"`
	CommandTimeout time.Duration `env:"HTTP_COMMAND_TIMEOUT" env-default:"2s"`
	RestartOnSave  bool          `env:"HTTP_RESTART_ON_SAVE" env-default:"true"`
}

type HistoryConfig struct {
	Size int `env:"HISTORY_SIZE" env-default:"1800"`
}

// BellConfig holds the school bell timetable as "cron=songID" pairs separated by ';'
type BellConfig struct {
	Timetable string `env:"BELL_TIMETABLE" env-default:"0 7 * * 1-5=25;0 10 * * 1-5=26;0 14 * * 1-5=27"`
}

type RedisConfig struct {
	Enabled  bool   `env:"REDIS_ENABLED" env-default:"false"`
	Addr     string `env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" env-default:"0"`
}

type KafkaConfig struct {
	Enabled     bool     `env:"KAFKA_ENABLED" env-default:"false"`
	Brokers     []string `env:"KAFKA_BROKERS" env-default:"localhost:9092" env-separator:","`
	TopicEvents string   `env:"KAFKA_TOPIC_EVENTS" env-default:"classroom.events"`
	TopicAlerts string   `env:"KAFKA_TOPIC_ALERTS" env-default:"classroom.alerts"`
}

type MQTTConfig struct {
	Enabled     bool   `env:"MQTT_ENABLED" env-default:"false"`
	Broker      string `env:"MQTT_BROKER" env-default:"tcp://localhost:1883"`
	ClientID    string `env:"MQTT_CLIENT_ID" env-default:"smartclass"`
	Username    string `env:"MQTT_USERNAME"`
	Password    string `env:"MQTT_PASSWORD"`
	TopicPrefix string `env:"MQTT_TOPIC" env-default:"classroom/{device_id}"`
}

type DatabaseConfig struct {
	Host     string `env:"DB_HOST" env-default:"localhost"`
	Port     int    `env:"DB_PORT" env-default:"5432"`
	User     string `env:"DB_USER" env-default:"classroom_user"`
	Password string `env:"DB_PASSWORD" env-default:"classroom_pass"`
	DBName   string `env:"DB_NAME" env-default:"classroom_db"`
	SSLMode  string `env:"DB_SSLMODE" env-default:"disable"`
}

func (d DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// RollupConfig holds the cron schedules of the reading log rollups
type RollupConfig struct {
	HourlySchedule string `env:"ROLLUP_HOURLY_SCHEDULE" env-default:"5 * * * *"`
	DailySchedule  string `env:"ROLLUP_DAILY_SCHEDULE" env-default:"10 0 * * *"`
}

// TelegramConfig is the fallback bot identity used when no settings were saved
type TelegramConfig struct {
	BotToken string `env:"TELEGRAM_BOT_TOKEN"`
	ChatID   string `env:"TELEGRAM_CHAT_ID"`
	APIBase  string `env:"TELEGRAM_API_BASE" env-default:"https://api.telegram.org"`
}

type SMTPConfig struct {
	Host     string `env:"SMTP_HOST" env-default:"smtp.gmail.com"`
	Port     int    `env:"SMTP_PORT" env-default:"587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM" env-default:"smartclass@example.com"`
	To       string `env:"SMTP_TO" env-default:"admin@example.com"`
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not present)
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks cross-field constraints that env tags cannot express
func (c *Config) Validate() error {
	c.Device.Catalog = strings.ToLower(c.Device.Catalog)
	if c.Device.Catalog != "base" && c.Device.Catalog != "extended" {
		return fmt.Errorf("song catalog must be 'base' or 'extended', got: %s", c.Device.Catalog)
	}

	c.Device.Terminology = strings.ToLower(c.Device.Terminology)
	if c.Device.Terminology != "mood" && c.Device.Terminology != "health" {
		return fmt.Errorf("terminology must be 'mood' or 'health', got: %s", c.Device.Terminology)
	}

	if c.Scheduler.SampleInterval < 100*time.Millisecond {
		return fmt.Errorf("sample interval must be at least 100ms")
	}
	if c.Scheduler.PassInterval <= 0 || c.Scheduler.PassInterval > c.Scheduler.SampleInterval {
		return fmt.Errorf("pass interval must be positive and not exceed the sample interval")
	}
	if c.Scheduler.TempoBase <= 0 {
		return fmt.Errorf("tempo base must be positive")
	}
	if c.Scheduler.ScanTimeout <= 0 {
		return fmt.Errorf("scan timeout must be positive")
	}
	if c.Scheduler.InboxSize < 1 || c.Scheduler.OutboxSize < 1 {
		return fmt.Errorf("inbox and outbox sizes must be at least 1")
	}

	t := c.Thresholds
	if t.TempMin >= t.TempMax || t.TempDangerLow > t.TempMin || t.TempDangerHigh < t.TempMax {
		return fmt.Errorf("temperature thresholds must satisfy dangerLow <= min < max <= dangerHigh")
	}
	if t.HumidityMin >= t.HumidityMax || t.HumidityDangerL > t.HumidityMin || t.HumidityDangerH < t.HumidityMax {
		return fmt.Errorf("humidity thresholds must satisfy dangerLow <= min < max <= dangerHigh")
	}
	if t.SoundDanger < t.SoundMax || t.GasDanger < t.GasWarn || t.SmokeAlarm < t.SmokeWarn {
		return fmt.Errorf("danger thresholds must not be below warning thresholds")
	}

	if c.History.Size < 1 {
		return fmt.Errorf("history size must be at least 1")
	}

	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka is enabled but no brokers are configured")
	}

	if _, err := ParseTimetable(c.Bells.Timetable); err != nil {
		return fmt.Errorf("invalid bell timetable: %w", err)
	}

	return ValidateLogging(&c.Logging)
}

// BellEntry is one raw timetable row before cron parsing
type BellEntry struct {
	Spec   string
	SongID int
}

// ParseTimetable splits "spec=id;spec=id" into entries. Cron syntax is checked by the bell package.
func ParseTimetable(raw string) ([]BellEntry, error) {
	var entries []BellEntry
	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		idx := strings.LastIndex(part, "=")
		if idx <= 0 {
			return nil, fmt.Errorf("entry %q must look like 'cron=songID'", part)
		}

		songID, err := strconv.Atoi(strings.TrimSpace(part[idx+1:]))
		if err != nil {
			return nil, fmt.Errorf("entry %q has invalid song id: %w", part, err)
		}

		entries = append(entries, BellEntry{
			Spec:   strings.TrimSpace(part[:idx]),
			SongID: songID,
		})
	}
	return entries, nil
}
