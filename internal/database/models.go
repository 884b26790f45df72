package database

import (
	"time"
)

// Reading is one archived sensor sample with the actuator state at that time
type Reading struct {
	ID          int64
	DeviceID    string
	RecordedAt  time.Time
	Temperature float64
	Humidity    float64
	Gas         int
	Smoke       *int
	Sound       float64
	Level       string
	Mood        string
	Fan         bool
	Lamp        bool
	ReceivedAt  time.Time
}

// AlertLog is one latched alert, open until the metric returns to normal
type AlertLog struct {
	AlertID     int64
	DeviceID    string
	Metric      string
	BreachValue float64
	Text        string
	StartTime   time.Time
	EndTime     *time.Time
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

const (
	AlertStatusActive  = "ACTIVE"
	AlertStatusCleared = "CLEARED"
)

// ConfigChange records a settings save. Secrets are never stored here.
type ConfigChange struct {
	ID       int64
	DeviceID string
	SSID     string
	ChatID   string
	SavedAt  time.Time
}
