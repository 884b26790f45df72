package actuator

import (
	"fmt"

	"go.uber.org/zap"
)

// Actuator names accepted by the bank
const (
	Fan      = "fan"
	Lamp     = "lamp"
	AIAuto   = "ai"
	BellAuto = "bell"
)

// Relay pins on the controller board
const (
	PinFan  = 26
	PinLamp = 27
)

// State is the full actuator state
type State struct {
	Fan      bool `json:"fan"`
	Lamp     bool `json:"lamp"`
	AIAuto   bool `json:"ai"`
	BellAuto bool `json:"bell"`
}

// PinDriver switches a digital output
type PinDriver interface {
	SetPin(pin int, on bool)
}

var (
	ErrUnknownActuator = &ActuatorError{"unknown actuator"}
)

// ActuatorError represents a rejected actuator change
type ActuatorError struct {
	msg string
}

func (e *ActuatorError) Error() string {
	return e.msg
}

// Bank owns the actuator state and mirrors fan and lamp onto pins.
// It is owned by the scheduler loop and is not safe for concurrent use.
type Bank struct {
	state   State
	pins    PinDriver
	hasBell bool
	logger  *zap.Logger
}

// NewBank creates a bank with everything off except AI auto mode
func NewBank(pins PinDriver, hasBell bool, logger *zap.Logger) *Bank {
	b := &Bank{
		state:   State{AIAuto: true},
		pins:    pins,
		hasBell: hasBell,
		logger:  logger,
	}
	b.pins.SetPin(PinFan, false)
	b.pins.SetPin(PinLamp, false)
	return b
}

// Toggle flips name and returns its new value
func (b *Bank) Toggle(name string) (bool, error) {
	current, err := b.get(name)
	if err != nil {
		return false, err
	}
	if err := b.Set(name, !current); err != nil {
		return false, err
	}
	return !current, nil
}

// Set forces name to on. Setting the current value is a no-op.
func (b *Bank) Set(name string, on bool) error {
	current, err := b.get(name)
	if err != nil {
		return err
	}
	if current == on {
		return nil
	}

	switch name {
	case Fan:
		b.state.Fan = on
		b.pins.SetPin(PinFan, on)
	case Lamp:
		b.state.Lamp = on
		b.pins.SetPin(PinLamp, on)
	case AIAuto:
		b.state.AIAuto = on
	case BellAuto:
		b.state.BellAuto = on
	}

	b.logger.Debug("actuator changed", zap.String("actuator", name), zap.Bool("on", on))
	return nil
}

// SetAuto switches one of the automatic modes
func (b *Bank) SetAuto(name string, on bool) error {
	if name != AIAuto && name != BellAuto {
		return fmt.Errorf("%w: %s is not an automatic mode", ErrUnknownActuator, name)
	}
	return b.Set(name, on)
}

// State returns a copy of the current state
func (b *Bank) State() State {
	return b.state
}

// HasBell reports whether this variant drives a school bell
func (b *Bank) HasBell() bool {
	return b.hasBell
}

func (b *Bank) get(name string) (bool, error) {
	switch name {
	case Fan:
		return b.state.Fan, nil
	case Lamp:
		return b.state.Lamp, nil
	case AIAuto:
		return b.state.AIAuto, nil
	case BellAuto:
		if b.hasBell {
			return b.state.BellAuto, nil
		}
	}
	return false, fmt.Errorf("%w: %s", ErrUnknownActuator, name)
}
