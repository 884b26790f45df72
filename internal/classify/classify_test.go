package classify

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smukkama/smartclass/internal/sensor"
)

func comfortable() sensor.Snapshot {
	return sensor.Snapshot{Temperature: 24, Humidity: 50, Gas: 400, Smoke: 100, Sound: 40}
}

func TestClassify_Bands(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name   string
		mutate func(*sensor.Snapshot)
		want   Level
		metric string
	}{
		{"comfortable", func(s *sensor.Snapshot) {}, Normal, ""},
		{"temp at upper edge", func(s *sensor.Snapshot) { s.Temperature = 30 }, Normal, ""},
		{"temp at lower edge", func(s *sensor.Snapshot) { s.Temperature = 18 }, Normal, ""},
		{"warm", func(s *sensor.Snapshot) { s.Temperature = 35 }, Warning, MetricTemperature},
		{"cool", func(s *sensor.Snapshot) { s.Temperature = 15 }, Warning, MetricTemperature},
		{"hot", func(s *sensor.Snapshot) { s.Temperature = 39 }, Danger, MetricTemperature},
		{"freezing", func(s *sensor.Snapshot) { s.Temperature = 5 }, Danger, MetricTemperature},
		{"humid", func(s *sensor.Snapshot) { s.Humidity = 70 }, Warning, MetricHumidity},
		{"very dry", func(s *sensor.Snapshot) { s.Humidity = 10 }, Danger, MetricHumidity},
		{"sound at edge", func(s *sensor.Snapshot) { s.Sound = 55 }, Normal, ""},
		{"noisy", func(s *sensor.Snapshot) { s.Sound = 70 }, Warning, MetricSound},
		{"deafening", func(s *sensor.Snapshot) { s.Sound = 90 }, Danger, MetricSound},
		{"gas just below warn", func(s *sensor.Snapshot) { s.Gas = 999 }, Normal, ""},
		{"gas at warn", func(s *sensor.Snapshot) { s.Gas = 1000 }, Warning, MetricGas},
		{"gas at danger", func(s *sensor.Snapshot) { s.Gas = 2000 }, Danger, MetricGas},
		{"smoke at warn edge", func(s *sensor.Snapshot) { s.Smoke = 1000 }, Normal, ""},
		{"smoke traces", func(s *sensor.Snapshot) { s.Smoke = 1500 }, Warning, MetricSmoke},
		{"smoke alarm", func(s *sensor.Snapshot) { s.Smoke = 2001 }, Danger, MetricSmoke},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := comfortable()
			tt.mutate(&snap)
			res := Classify(snap, th, true)
			assert.Equal(t, tt.want, res.Label)
			if tt.metric != "" {
				assert.Equal(t, tt.want, res.Worst(tt.metric))
			} else {
				assert.Empty(t, res.Violations)
				assert.Equal(t, "Comfortable", res.Mood)
			}
		})
	}
}

func TestClassify_Temperature35IsNotNormal(t *testing.T) {
	snap := comfortable()
	snap.Temperature = 35
	assert.NotEqual(t, Normal, Classify(snap, DefaultThresholds(), false).Label)
}

func TestClassify_SmokeDangerWinsOverBenignReadings(t *testing.T) {
	snap := comfortable()
	snap.Smoke = 2500

	res := Classify(snap, DefaultThresholds(), true)
	assert.Equal(t, Danger, res.Label)
	assert.Equal(t, "Danger: smoke detected", res.Mood)

	// an earlier warning must not mask the later danger
	snap.Temperature = 33
	res = Classify(snap, DefaultThresholds(), true)
	assert.Equal(t, Danger, res.Label)
	assert.Equal(t, "Danger: smoke detected", res.Mood)
	assert.Len(t, res.Violations, 2)
}

func TestClassify_SmokeIgnoredWithoutSensor(t *testing.T) {
	snap := comfortable()
	snap.Smoke = 5000
	assert.Equal(t, Normal, Classify(snap, DefaultThresholds(), false).Label)
}

func TestClassify_FirstMetricWinsTies(t *testing.T) {
	snap := comfortable()
	snap.Temperature = 33
	snap.Sound = 70
	res := Classify(snap, DefaultThresholds(), true)
	assert.Equal(t, Warning, res.Label)
	assert.Equal(t, "Too warm", res.Mood)

	snap.Temperature = 40
	snap.Gas = 2500
	res = Classify(snap, DefaultThresholds(), true)
	assert.Equal(t, Danger, res.Label)
	assert.Equal(t, "Danger: classroom far too hot", res.Mood)
}

func TestClassify_TotalOverNonFinite(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		snap := sensor.Snapshot{Temperature: v, Humidity: v, Sound: v}
		res := Classify(snap, DefaultThresholds(), true)
		assert.Equal(t, Warning, res.Label)
		assert.Equal(t, "sensor reading invalid", res.Mood)
		assert.Len(t, res.Violations, 3)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	snap := sensor.Snapshot{Temperature: 31.5, Humidity: 88, Gas: 1200, Smoke: 1800, Sound: 60}
	first := Classify(snap, DefaultThresholds(), true)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Classify(snap, DefaultThresholds(), true))
	}
}

func TestResult_Status(t *testing.T) {
	assert.Equal(t, "AI: optimal", Result{Label: Normal}.Status())
	assert.Equal(t, "AI: needs attention", Result{Label: Warning}.Status())
	assert.Equal(t, "AI: danger, acting", Result{Label: Danger}.Status())
}

func TestLevel_MarshalText(t *testing.T) {
	b, err := json.Marshal(Violation{Metric: MetricGas, Level: Danger, Value: 2100})
	require.NoError(t, err)
	assert.JSONEq(t, `{"metric":"gas","level":"danger","value":2100,"text":""}`, string(b))
}
