package sensor

import (
	"context"
	"fmt"
	"math"
	"time"
)

// Snapshot is one complete set of readings. Smoke is only meaningful on
// variants that carry the MQ-2 sensor.
type Snapshot struct {
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	Gas         int       `json:"gas"`
	Smoke       int       `json:"smoke"`
	Sound       float64   `json:"sound"`
	Timestamp   time.Time `json:"timestamp"`
}

// Sampler reads the physical (or simulated) sensors
type Sampler interface {
	Sample(ctx context.Context) (Snapshot, error)
}

var (
	ErrSensorFault = &FaultError{msg: "sensor fault"}
)

// FaultError reports a failed or implausible sensor read
type FaultError struct {
	msg    string
	Sensor string
}

func (e *FaultError) Error() string {
	if e.Sensor == "" {
		return e.msg
	}
	return fmt.Sprintf("%s: %s", e.msg, e.Sensor)
}

// Is makes every FaultError match ErrSensorFault
func (e *FaultError) Is(target error) bool {
	_, ok := target.(*FaultError)
	return ok
}

// NewFault creates a fault for the named sensor
func NewFault(sensor string) *FaultError {
	return &FaultError{msg: ErrSensorFault.msg, Sensor: sensor}
}

// Validate rejects readings no working sensor can produce
func (s Snapshot) Validate() error {
	switch {
	case math.IsNaN(s.Temperature) || math.IsInf(s.Temperature, 0):
		return NewFault("temperature")
	case math.IsNaN(s.Humidity) || math.IsInf(s.Humidity, 0) || s.Humidity < 0 || s.Humidity > 100:
		return NewFault("humidity")
	case math.IsNaN(s.Sound) || math.IsInf(s.Sound, 0) || s.Sound < 0:
		return NewFault("sound")
	case s.Gas < 0:
		return NewFault("gas")
	case s.Smoke < 0:
		return NewFault("smoke")
	}
	return nil
}
