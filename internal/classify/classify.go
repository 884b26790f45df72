package classify

import (
	"fmt"
	"math"

	"github.com/smukkama/smartclass/internal/sensor"
)

// Level orders classification severity
type Level int

const (
	Normal Level = iota
	Warning
	Danger
)

// MarshalText encodes the level by name
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l Level) String() string {
	switch l {
	case Normal:
		return "normal"
	case Warning:
		return "warning"
	case Danger:
		return "danger"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// Metric names, in evaluation order
const (
	MetricTemperature = "temperature"
	MetricHumidity    = "humidity"
	MetricSound       = "sound"
	MetricGas         = "gas"
	MetricSmoke       = "smoke"
)

// Thresholds are the band edges. Normal bands are inclusive.
type Thresholds struct {
	TempMin            float64
	TempMax            float64
	TempDangerLow      float64
	TempDangerHigh     float64
	HumidityMin        float64
	HumidityMax        float64
	HumidityDangerLow  float64
	HumidityDangerHigh float64
	SoundMax           float64
	SoundDanger        float64
	GasWarn            int
	GasDanger          int
	SmokeWarn          int
	SmokeAlarm         int
}

// DefaultThresholds returns the classroom comfort bands
func DefaultThresholds() Thresholds {
	return Thresholds{
		TempMin:            18,
		TempMax:            30,
		TempDangerLow:      10,
		TempDangerHigh:     38,
		HumidityMin:        40,
		HumidityMax:        60,
		HumidityDangerLow:  20,
		HumidityDangerHigh: 85,
		SoundMax:           55,
		SoundDanger:        85,
		GasWarn:            1000,
		GasDanger:          2000,
		SmokeWarn:          1000,
		SmokeAlarm:         2000,
	}
}

// Violation is one metric outside its normal band
type Violation struct {
	Metric string  `json:"metric"`
	Level  Level   `json:"level"`
	Value  float64 `json:"value"`
	Text   string  `json:"text"`
}

// Result is the classification of one snapshot
type Result struct {
	Label      Level
	Mood       string
	Violations []Violation
}

const (
	moodNormal  = "Comfortable"
	invalidText = "sensor reading invalid"
)

// Classify is pure and total. Metrics are checked in a fixed order; the worst
// level wins and among equal levels the first metric supplies the mood.
func Classify(snap sensor.Snapshot, th Thresholds, hasSmoke bool) Result {
	res := Result{Label: Normal, Mood: moodNormal}

	add := func(v Violation) {
		res.Violations = append(res.Violations, v)
		if v.Level > res.Label {
			res.Label = v.Level
			res.Mood = v.Text
		}
	}

	if v, ok := temperature(snap.Temperature, th); ok {
		add(v)
	}
	if v, ok := humidity(snap.Humidity, th); ok {
		add(v)
	}
	if v, ok := sound(snap.Sound, th); ok {
		add(v)
	}
	if v, ok := gas(snap.Gas, th); ok {
		add(v)
	}
	if hasSmoke {
		if v, ok := smoke(snap.Smoke, th); ok {
			add(v)
		}
	}

	return res
}

func invalid(metric string, value float64) (Violation, bool) {
	return Violation{Metric: metric, Level: Warning, Value: value, Text: invalidText}, true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func temperature(v float64, th Thresholds) (Violation, bool) {
	switch {
	case !finite(v):
		return invalid(MetricTemperature, v)
	case v > th.TempDangerHigh:
		return Violation{MetricTemperature, Danger, v, "Danger: classroom far too hot"}, true
	case v < th.TempDangerLow:
		return Violation{MetricTemperature, Danger, v, "Danger: classroom far too cold"}, true
	case v > th.TempMax:
		return Violation{MetricTemperature, Warning, v, "Too warm"}, true
	case v < th.TempMin:
		return Violation{MetricTemperature, Warning, v, "Too cold"}, true
	}
	return Violation{}, false
}

func humidity(v float64, th Thresholds) (Violation, bool) {
	switch {
	case !finite(v):
		return invalid(MetricHumidity, v)
	case v > th.HumidityDangerHigh:
		return Violation{MetricHumidity, Danger, v, "Danger: air far too humid"}, true
	case v < th.HumidityDangerLow:
		return Violation{MetricHumidity, Danger, v, "Danger: air far too dry"}, true
	case v > th.HumidityMax:
		return Violation{MetricHumidity, Warning, v, "Humid"}, true
	case v < th.HumidityMin:
		return Violation{MetricHumidity, Warning, v, "Dry air"}, true
	}
	return Violation{}, false
}

func sound(v float64, th Thresholds) (Violation, bool) {
	switch {
	case !finite(v):
		return invalid(MetricSound, v)
	case v > th.SoundDanger:
		return Violation{MetricSound, Danger, v, "Danger: extremely loud"}, true
	case v > th.SoundMax:
		return Violation{MetricSound, Warning, v, "Noisy"}, true
	}
	return Violation{}, false
}

func gas(v int, th Thresholds) (Violation, bool) {
	switch {
	case v >= th.GasDanger:
		return Violation{MetricGas, Danger, float64(v), "Danger: poor air quality"}, true
	case v >= th.GasWarn:
		return Violation{MetricGas, Warning, float64(v), "Stuffy air"}, true
	}
	return Violation{}, false
}

func smoke(v int, th Thresholds) (Violation, bool) {
	switch {
	case v > th.SmokeAlarm:
		return Violation{MetricSmoke, Danger, float64(v), "Danger: smoke detected"}, true
	case v > th.SmokeWarn:
		return Violation{MetricSmoke, Warning, float64(v), "Smoke traces"}, true
	}
	return Violation{}, false
}

// Worst returns the highest level among violations of metric, Normal if none
func (r Result) Worst(metric string) Level {
	level := Normal
	for _, v := range r.Violations {
		if v.Metric == metric && v.Level > level {
			level = v.Level
		}
	}
	return level
}

// Status is the short AI line shown below the mood
func (r Result) Status() string {
	switch r.Label {
	case Danger:
		return "AI: danger, acting"
	case Warning:
		return "AI: needs attention"
	default:
		return "AI: optimal"
	}
}
