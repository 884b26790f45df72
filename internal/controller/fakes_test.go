package controller

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smukkama/smartclass/internal/bell"
	"github.com/smukkama/smartclass/internal/melody"
	"github.com/smukkama/smartclass/internal/sensor"
	"github.com/smukkama/smartclass/internal/songs"
	"github.com/smukkama/smartclass/internal/wifi"
)

// Monday morning
var t0 = time.Date(2026, 3, 2, 7, 59, 0, 0, time.UTC)

type fakeSampler struct {
	snap sensor.Snapshot
	err  error
}

func (s *fakeSampler) Sample(ctx context.Context) (sensor.Snapshot, error) {
	if s.err != nil {
		return sensor.Snapshot{}, s.err
	}
	return s.snap, nil
}

type fakePins struct {
	levels map[int]bool
}

func (p *fakePins) SetPin(pin int, on bool) {
	if p.levels == nil {
		p.levels = make(map[int]bool)
	}
	p.levels[pin] = on
}

type fakeBuzzer struct {
	emitted []int
	tones   []int
}

func (b *fakeBuzzer) Emit(freq int)                  { b.emitted = append(b.emitted, freq) }
func (b *fakeBuzzer) Tone(freq int, d time.Duration) { b.tones = append(b.tones, freq) }

func (b *fakeBuzzer) last() int {
	if len(b.emitted) == 0 {
		return -1
	}
	return b.emitted[len(b.emitted)-1]
}

type fakeRadio struct {
	starts   int
	networks []wifi.Network
	done     bool
	err      error
}

func (r *fakeRadio) StartScan() error {
	r.starts++
	return nil
}

func (r *fakeRadio) ScanResult() ([]wifi.Network, bool, error) {
	return r.networks, r.done, r.err
}

type rig struct {
	c       *Controller
	sampler *fakeSampler
	pins    *fakePins
	buzzer  *fakeBuzzer
	radio   *fakeRadio
}

func comfortable() sensor.Snapshot {
	return sensor.Snapshot{Temperature: 24, Humidity: 50, Gas: 400, Smoke: 150, Sound: 40}
}

func newRig(t *testing.T, catalog melody.Catalog, opts Options) *rig {
	t.Helper()

	r := &rig{
		sampler: &fakeSampler{snap: comfortable()},
		pins:    &fakePins{},
		buzzer:  &fakeBuzzer{},
		radio:   &fakeRadio{},
	}
	if catalog == nil {
		catalog = songs.Base()
	}
	if opts.Clock == nil {
		opts.Clock = func() time.Time { return t0 }
	}

	c, err := New(Devices{
		Sampler: r.sampler,
		Pins:    r.pins,
		Buzzer:  r.buzzer,
		Radio:   r.radio,
		Catalog: catalog,
	}, opts, zap.NewNop())
	require.NoError(t, err)
	r.c = c
	return r
}

func schoolBells(t *testing.T) *bell.Timetable {
	t.Helper()
	tt, err := bell.NewTimetable([]bell.Entry{
		{Spec: "0 8 * * 1-5", SongID: songs.BellLessonStart},
		{Spec: "0 10 * * 1-5", SongID: songs.BellBreak},
	}, nil)
	require.NoError(t, err)
	return tt
}

// drain empties the outbox without blocking
func drain(c *Controller) []string {
	var kinds []string
	for {
		select {
		case ev := <-c.Events():
			kinds = append(kinds, string(ev.Kind))
		default:
			return kinds
		}
	}
}
