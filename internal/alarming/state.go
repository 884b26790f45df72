package alarming

import "time"

// AlarmState is the latch state of one metric
type AlarmState struct {
	Status          string    `json:"status"` // CLEAR, PENDING_ALARM, ALARMING
	BreachStartTime time.Time `json:"breach_start_time"`
	LastChecked     time.Time `json:"last_checked"`
	BreachValue     float64   `json:"breach_value"`
	Text            string    `json:"text,omitempty"`
}

const (
	AlarmStateClear   = "CLEAR"
	AlarmStatePending = "PENDING_ALARM"
	AlarmStateActive  = "ALARMING"
)

// TransitionType distinguishes raised from cleared alerts
type TransitionType string

const (
	AlertRaised  TransitionType = "alert"
	AlertCleared TransitionType = "alert_cleared"
)

// Transition is emitted when a metric enters or leaves ALARMING
type Transition struct {
	Type        TransitionType `json:"type"`
	Metric      string         `json:"metric"`
	Value       float64        `json:"value"`
	Text        string         `json:"text"`
	BreachStart time.Time      `json:"breach_start"`
	At          time.Time      `json:"at"`
}
