package hardware

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/smukkama/smartclass/internal/sensor"
	"github.com/smukkama/smartclass/internal/wifi"
)

// Pins logs relay changes and remembers the last level of each pin
type Pins struct {
	levels map[int]bool
	logger *zap.Logger
}

// NewPins creates a simulated GPIO bank
func NewPins(logger *zap.Logger) *Pins {
	return &Pins{levels: make(map[int]bool), logger: logger}
}

func (p *Pins) SetPin(pin int, on bool) {
	p.levels[pin] = on
	p.logger.Debug("pin set", zap.Int("pin", pin), zap.Bool("on", on))
}

// Level returns the last written level of pin
func (p *Pins) Level(pin int) bool {
	return p.levels[pin]
}

// Buzzer is a simulated piezo buzzer
type Buzzer struct {
	freq   int
	tones  int
	logger *zap.Logger
}

// NewBuzzer creates a silent buzzer
func NewBuzzer(logger *zap.Logger) *Buzzer {
	return &Buzzer{logger: logger}
}

func (b *Buzzer) Emit(freq int) {
	if freq == b.freq {
		return
	}
	b.freq = freq
	b.logger.Debug("buzzer", zap.Int("freq_hz", freq))
}

func (b *Buzzer) Tone(freq int, d time.Duration) {
	b.tones++
	b.logger.Debug("buzzer tone", zap.Int("freq_hz", freq), zap.Duration("duration", d))
}

// Frequency returns the frequency currently held, 0 when silent
func (b *Buzzer) Frequency() int {
	return b.freq
}

// Tones returns how many one-shot tones were played
func (b *Buzzer) Tones() int {
	return b.tones
}

// Radio is a simulated WiFi radio whose scans finish after ScanDuration
type Radio struct {
	ScanDuration time.Duration
	Networks     []wifi.Network
	Now          func() time.Time

	startedAt time.Time
	scanning  bool
}

var ErrRadioIdle = errors.New("no scan in progress")

// NewRadio creates a radio that sees a few classroom networks
func NewRadio() *Radio {
	return &Radio{
		ScanDuration: 3 * time.Second,
		Networks: []wifi.Network{
			{SSID: "Sekolah-Guru", RSSI: -48},
			{SSID: "Sekolah-Siswa", RSSI: -55},
			{SSID: "Lab-Komputer", RSSI: -67},
			{SSID: "Perpustakaan", RSSI: -80},
		},
		Now: time.Now,
	}
}

func (r *Radio) StartScan() error {
	r.startedAt = r.Now()
	r.scanning = true
	return nil
}

func (r *Radio) ScanResult() ([]wifi.Network, bool, error) {
	if !r.scanning {
		return nil, true, ErrRadioIdle
	}
	if r.Now().Sub(r.startedAt) < r.ScanDuration {
		return nil, false, nil
	}
	r.scanning = false
	return append([]wifi.Network(nil), r.Networks...), true, nil
}

// Sensors produces a slow random walk around classroom conditions. HasSmoke
// adds an MQ-2 reading; FaultRate is the chance in [0,1) a read fails.
type Sensors struct {
	HasSmoke  bool
	FaultRate float64

	rng  *rand.Rand
	last sensor.Snapshot
}

// NewSensors creates simulated sensors seeded for reproducible runs
func NewSensors(seed int64, hasSmoke bool) *Sensors {
	return &Sensors{
		HasSmoke: hasSmoke,
		rng:      rand.New(rand.NewSource(seed)),
		last: sensor.Snapshot{
			Temperature: 26,
			Humidity:    55,
			Gas:         450,
			Smoke:       200,
			Sound:       45,
		},
	}
}

func (s *Sensors) Sample(ctx context.Context) (sensor.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return sensor.Snapshot{}, err
	}
	if s.FaultRate > 0 && s.rng.Float64() < s.FaultRate {
		return sensor.Snapshot{}, sensor.NewFault("dht11")
	}

	n := s.last
	n.Temperature = clamp(n.Temperature+s.rng.NormFloat64()*0.2, 12, 40)
	n.Humidity = clamp(n.Humidity+s.rng.NormFloat64()*0.5, 15, 95)
	n.Gas = int(clamp(float64(n.Gas)+s.rng.NormFloat64()*15, 100, 3000))
	n.Sound = clamp(n.Sound+s.rng.NormFloat64()*3, 30, 95)
	if s.HasSmoke {
		n.Smoke = int(clamp(float64(n.Smoke)+s.rng.NormFloat64()*10, 50, 3000))
	} else {
		n.Smoke = 0
	}
	n.Timestamp = time.Time{}

	n.Temperature = math.Round(n.Temperature*10) / 10
	n.Humidity = math.Round(n.Humidity)
	n.Sound = math.Round(n.Sound*10) / 10

	s.last = n
	return n, nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
