package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventKind identifies what an Event carries
type EventKind string

const (
	EventReading       EventKind = "reading"
	EventAlert         EventKind = "alert"
	EventAlertCleared  EventKind = "alert_cleared"
	EventConfigChanged EventKind = "config_changed"
)

// Event is the envelope for everything the controller reports outward
type Event struct {
	ID       string          `json:"id"`
	Kind     EventKind       `json:"kind"`
	DeviceID string          `json:"device_id"`
	At       time.Time       `json:"at"`
	Payload  json.RawMessage `json:"payload"`
}

// ReadingPayload is published after every successful sample
type ReadingPayload struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Gas         int     `json:"gas"`
	Smoke       *int    `json:"smoke,omitempty"`
	Sound       float64 `json:"sound"`
	Level       string  `json:"level"`
	Mood        string  `json:"mood"`
	Fan         bool    `json:"fan"`
	Lamp        bool    `json:"lamp"`
}

// AlertPayload is published when a metric enters or leaves the alarming state
type AlertPayload struct {
	Metric      string    `json:"metric"`
	Value       float64   `json:"value"`
	Text        string    `json:"text"`
	BreachStart time.Time `json:"breach_start"`
}

// ConfigPayload is published when settings were saved
type ConfigPayload struct {
	Settings Settings `json:"settings"`
}

// NewEvent wraps payload in an envelope with a fresh id
func NewEvent(kind EventKind, deviceID string, at time.Time, payload interface{}) (*Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", kind, err)
	}

	return &Event{
		ID:       uuid.NewString(),
		Kind:     kind,
		DeviceID: deviceID,
		At:       at,
		Payload:  raw,
	}, nil
}

// EncodeEvent encodes an Event to JSON
func EncodeEvent(ev *Event) ([]byte, error) {
	return json.Marshal(ev)
}

// DecodeEvent decodes JSON to Event
func DecodeEvent(data []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("invalid event: %w", err)
	}
	if ev.Kind == "" {
		return nil, fmt.Errorf("event kind is required")
	}
	return &ev, nil
}

// Reading decodes the payload of a reading event
func (e *Event) Reading() (*ReadingPayload, error) {
	if e.Kind != EventReading {
		return nil, fmt.Errorf("event %s is %s, not %s", e.ID, e.Kind, EventReading)
	}
	var p ReadingPayload
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return nil, fmt.Errorf("invalid reading payload: %w", err)
	}
	return &p, nil
}

// Alert decodes the payload of an alert or alert_cleared event
func (e *Event) Alert() (*AlertPayload, error) {
	if e.Kind != EventAlert && e.Kind != EventAlertCleared {
		return nil, fmt.Errorf("event %s is %s, not an alert", e.ID, e.Kind)
	}
	var p AlertPayload
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return nil, fmt.Errorf("invalid alert payload: %w", err)
	}
	return &p, nil
}

// Config decodes the payload of a config_changed event
func (e *Event) Config() (*ConfigPayload, error) {
	if e.Kind != EventConfigChanged {
		return nil, fmt.Errorf("event %s is %s, not %s", e.ID, e.Kind, EventConfigChanged)
	}
	var p ConfigPayload
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return nil, fmt.Errorf("invalid config payload: %w", err)
	}
	return &p, nil
}
