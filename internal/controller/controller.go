package controller

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/smukkama/smartclass/internal/actuator"
	"github.com/smukkama/smartclass/internal/alarming"
	"github.com/smukkama/smartclass/internal/bell"
	"github.com/smukkama/smartclass/internal/buffer"
	"github.com/smukkama/smartclass/internal/classify"
	"github.com/smukkama/smartclass/internal/melody"
	"github.com/smukkama/smartclass/internal/protocol"
	"github.com/smukkama/smartclass/internal/sensor"
	"github.com/smukkama/smartclass/internal/timer"
	"github.com/smukkama/smartclass/internal/wifi"
)

// Song ids with a fixed meaning when the catalog is large enough
const (
	songAlertStinger = 33
	songStartupChime = 36

	fallbackAlertFreq = 2000
)

// Capabilities describe the device variant
type Capabilities struct {
	HasSmoke        bool
	HasBell         bool
	SongCatalogSize int
	Terminology     string
}

// Options configure a Controller. Zero values fall back to defaults.
type Options struct {
	DeviceID       string
	HasSmoke       bool
	HasBell        bool
	Terminology    string
	Thresholds     classify.Thresholds
	SampleInterval time.Duration
	PassInterval   time.Duration
	TempoBase      time.Duration
	QuickTone      time.Duration
	ScanTimeout    time.Duration
	AlertHold      time.Duration
	FanHysteresis  float64
	InboxSize      int
	OutboxSize     int
	HistorySize    int
	Bells          *bell.Timetable
	StartupChime   bool
	Clock          func() time.Time
}

// Devices are the hardware collaborators
type Devices struct {
	Sampler sensor.Sampler
	Pins    actuator.PinDriver
	Buzzer  melody.ToneOutput
	Radio   wifi.Radio
	Catalog melody.Catalog
}

// Record is one history row kept for the CSV export
type Record struct {
	Snapshot sensor.Snapshot
	Level    classify.Level
	Mood     string
	Fan      bool
	Lamp     bool
}

// Reply is the outcome of one command
type Reply struct {
	Err  error
	Scan *wifi.Status
}

type request struct {
	ctx   context.Context
	cmd   protocol.Command
	reply chan Reply
}

// Controller owns all device state. Only the goroutine running Run touches
// it; other goroutines use Submit, Status, Events and History.
type Controller struct {
	opts   Options
	caps   Capabilities
	logger *zap.Logger
	clock  func() time.Time

	feed     *sensor.Feed
	bank     *actuator.Bank
	player   *melody.Sequencer
	scanner  *wifi.Scanner
	latch    *alarming.Latch
	timers   *timer.Queue
	catalog  melody.Catalog
	bells    *bell.Timetable
	nextRing bell.Ring

	result    classify.Result
	hasResult bool
	history   *buffer.Ring[Record]
	inbox     chan request
	wake      chan struct{}
	outbox    chan *protocol.Event
	dropped   atomic.Uint64
	status    atomic.Pointer[Status]
	done      chan struct{}
	passes    uint64
}

// New wires a controller. It does not start the loop.
func New(devices Devices, opts Options, logger *zap.Logger) (*Controller, error) {
	if devices.Sampler == nil || devices.Pins == nil || devices.Buzzer == nil || devices.Radio == nil || devices.Catalog == nil {
		return nil, fmt.Errorf("all devices are required")
	}
	opts = withDefaults(opts)
	if opts.Terminology != protocol.TermMood && opts.Terminology != protocol.TermHealth {
		return nil, fmt.Errorf("unknown terminology: %s", opts.Terminology)
	}

	c := &Controller{
		opts:   opts,
		logger: logger,
		clock:  opts.Clock,
		caps: Capabilities{
			HasSmoke:        opts.HasSmoke,
			HasBell:         opts.HasBell,
			SongCatalogSize: devices.Catalog.Size(),
			Terminology:     opts.Terminology,
		},
		feed:    sensor.NewFeed(devices.Sampler, logger.Named("sensor")),
		bank:    actuator.NewBank(devices.Pins, opts.HasBell, logger.Named("actuator")),
		scanner: wifi.NewScanner(devices.Radio, opts.ScanTimeout, logger.Named("wifi")),
		latch:   alarming.NewLatch(opts.AlertHold, logger.Named("alarming")),
		timers:  timer.NewQueue(),
		catalog: devices.Catalog,
		bells:   opts.Bells,
		history: buffer.New[Record](opts.HistorySize, logger.Named("history")),
		inbox:   make(chan request, opts.InboxSize),
		wake:    make(chan struct{}, 1),
		outbox:  make(chan *protocol.Event, opts.OutboxSize),
		done:    make(chan struct{}),
		player: melody.NewSequencer(devices.Catalog, devices.Buzzer, melody.Options{
			Base:      opts.TempoBase,
			QuickTone: opts.QuickTone,
		}, logger.Named("melody")),
	}

	now := c.clock()
	c.timers.Schedule(timerSample, now)
	c.scheduleBell(now)
	c.publish(now)
	return c, nil
}

func withDefaults(opts Options) Options {
	if opts.DeviceID == "" {
		opts.DeviceID = "classroom-1"
	}
	if opts.Terminology == "" {
		opts.Terminology = protocol.TermMood
	}
	if opts.Thresholds == (classify.Thresholds{}) {
		opts.Thresholds = classify.DefaultThresholds()
	}
	if opts.SampleInterval <= 0 {
		opts.SampleInterval = 2 * time.Second
	}
	if opts.PassInterval <= 0 {
		opts.PassInterval = 5 * time.Millisecond
	}
	if opts.ScanTimeout <= 0 {
		opts.ScanTimeout = wifi.DefaultTimeout
	}
	if opts.AlertHold <= 0 {
		opts.AlertHold = alarming.DefaultHold
	}
	if opts.FanHysteresis <= 0 {
		opts.FanHysteresis = 1
	}
	if opts.InboxSize < 1 {
		opts.InboxSize = 16
	}
	if opts.OutboxSize < 1 {
		opts.OutboxSize = 256
	}
	if opts.HistorySize < 1 {
		opts.HistorySize = 1800
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return opts
}

// Capabilities returns the device variant
func (c *Controller) Capabilities() Capabilities {
	return c.caps
}

// Submit queues cmd for the loop and waits for its reply. A command whose
// ctx is done before the loop reaches it is discarded, not run.
func (c *Controller) Submit(ctx context.Context, cmd protocol.Command) (Reply, error) {
	req := request{ctx: ctx, cmd: cmd, reply: make(chan Reply, 1)}

	select {
	case c.inbox <- req:
	case <-c.done:
		return Reply{}, ErrStopped
	case <-ctx.Done():
		return Reply{}, fmt.Errorf("failed to queue %s: %w", cmd.Type, ctx.Err())
	}

	select {
	case c.wake <- struct{}{}:
	default:
	}

	select {
	case r := <-req.reply:
		return r, nil
	case <-c.done:
		return Reply{}, ErrStopped
	case <-ctx.Done():
		return Reply{}, fmt.Errorf("failed to wait for %s: %w", cmd.Type, ctx.Err())
	}
}

// Status returns the snapshot published after the latest pass
func (c *Controller) Status() *Status {
	return c.status.Load()
}

// Events is the outbound event stream. Events are dropped when nobody drains it.
func (c *Controller) Events() <-chan *protocol.Event {
	return c.outbox
}

// Dropped returns how many events were discarded because the outbox was full
func (c *Controller) Dropped() uint64 {
	return c.dropped.Load()
}

// History returns the retained readings, oldest first
func (c *Controller) History() []Record {
	return c.history.Snapshot()
}

func (c *Controller) emit(kind protocol.EventKind, at time.Time, payload interface{}) {
	ev, err := protocol.NewEvent(kind, c.opts.DeviceID, at, payload)
	if err != nil {
		c.logger.Error("failed to build event", zap.String("kind", string(kind)), zap.Error(err))
		return
	}

	select {
	case c.outbox <- ev:
	default:
		n := c.dropped.Add(1)
		if n == 1 || n%100 == 0 {
			c.logger.Warn("event outbox full, dropping events",
				zap.String("kind", string(kind)),
				zap.Uint64("dropped_total", n),
			)
		}
	}
}
