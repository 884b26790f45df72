package controller

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/smukkama/smartclass/internal/actuator"
	"github.com/smukkama/smartclass/internal/alarming"
	"github.com/smukkama/smartclass/internal/classify"
	"github.com/smukkama/smartclass/internal/protocol"
)

// Deadline ids in the timer queue
const (
	timerSample = "sample"
	timerBell   = "bell"
	timerScan   = "scan_timeout"
)

// Run drives passes until ctx is cancelled. It is the only goroutine that
// may touch controller state.
func (c *Controller) Run(ctx context.Context) error {
	defer close(c.done)

	if c.opts.StartupChime && c.caps.SongCatalogSize > songStartupChime {
		if err := c.player.Play(songStartupChime, c.clock()); err != nil {
			c.logger.Warn("failed to play startup chime", zap.Error(err))
		}
	}

	ticker := time.NewTicker(c.opts.PassInterval)
	defer ticker.Stop()

	c.logger.Info("controller loop started",
		zap.Duration("pass_interval", c.opts.PassInterval),
		zap.Duration("sample_interval", c.opts.SampleInterval),
		zap.Int("songs", c.caps.SongCatalogSize),
	)

	for {
		c.Pass(ctx, c.clock())

		select {
		case <-ctx.Done():
			c.player.Stop()
			c.logger.Info("controller loop stopped",
				zap.Uint64("passes", c.passes),
				zap.Uint64("dropped_events", c.dropped.Load()),
			)
			return nil
		case <-ticker.C:
		case <-c.wake:
		}
	}
}

// Pass runs one scheduler iteration: due timers, melody tick, at most one
// pending request, then a fresh status snapshot. It never blocks.
func (c *Controller) Pass(ctx context.Context, now time.Time) {
	c.passes++

	for _, id := range c.timers.Due(now) {
		switch id {
		case timerSample:
			c.sample(ctx, now)
			c.timers.Schedule(timerSample, now.Add(c.opts.SampleInterval))
		case timerBell:
			c.ringBell(now)
			c.scheduleBell(now)
		case timerScan:
			c.scanner.CheckTimeout(now)
		}
	}

	c.player.Tick(now)

	select {
	case req := <-c.inbox:
		c.serve(req, now)
	default:
	}

	c.publish(now)
}

func (c *Controller) serve(req request, now time.Time) {
	if err := req.ctx.Err(); err != nil {
		c.logger.Debug("discarding abandoned command", zap.String("command", string(req.cmd.Type)), zap.Error(err))
		req.reply <- Reply{Err: err}
		return
	}
	req.reply <- c.Dispatch(req.cmd, now)
}

func (c *Controller) sample(ctx context.Context, now time.Time) {
	if !c.feed.Refresh(ctx, now) {
		return
	}

	snap, _ := c.feed.Current()
	prev := c.result.Label
	hadResult := c.hasResult
	c.result = classify.Classify(snap, c.opts.Thresholds, c.caps.HasSmoke)
	c.hasResult = true

	if c.bank.State().AIAuto {
		c.autoFan(snap.Temperature)
		if c.result.Label == classify.Danger && (!hadResult || prev != classify.Danger) {
			c.playAlertStinger(now)
		}
	}

	state := c.bank.State()
	c.history.Add(Record{
		Snapshot: snap,
		Level:    c.result.Label,
		Mood:     c.result.Mood,
		Fan:      state.Fan,
		Lamp:     state.Lamp,
	})

	reading := protocol.ReadingPayload{
		Temperature: snap.Temperature,
		Humidity:    snap.Humidity,
		Gas:         snap.Gas,
		Sound:       snap.Sound,
		Level:       c.result.Label.String(),
		Mood:        c.result.Mood,
		Fan:         state.Fan,
		Lamp:        state.Lamp,
	}
	if c.caps.HasSmoke {
		smoke := snap.Smoke
		reading.Smoke = &smoke
	}
	c.emit(protocol.EventReading, now, reading)

	for _, tr := range c.latch.Observe(c.result, now) {
		kind := protocol.EventAlert
		if tr.Type == alarming.AlertCleared {
			kind = protocol.EventAlertCleared
		}
		c.emit(kind, now, protocol.AlertPayload{
			Metric:      tr.Metric,
			Value:       tr.Value,
			Text:        tr.Text,
			BreachStart: tr.BreachStart,
		})
	}
}

// autoFan switches the fan with hysteresis around the upper comfort edge
func (c *Controller) autoFan(temp float64) {
	var err error
	switch {
	case temp > c.opts.Thresholds.TempMax:
		err = c.bank.Set(actuator.Fan, true)
	case temp < c.opts.Thresholds.TempMax-c.opts.FanHysteresis:
		err = c.bank.Set(actuator.Fan, false)
	}
	if err != nil {
		c.logger.Error("failed to drive fan", zap.Error(err))
	}
}

func (c *Controller) playAlertStinger(now time.Time) {
	if c.caps.SongCatalogSize > songAlertStinger {
		if err := c.player.Play(songAlertStinger, now); err != nil {
			c.logger.Warn("failed to play alert stinger", zap.Error(err))
		}
		return
	}
	c.player.Tone(fallbackAlertFreq)
}

func (c *Controller) scheduleBell(now time.Time) {
	if !c.caps.HasBell || c.bells == nil {
		return
	}

	ring, ok := c.bells.Next(now)
	if !ok {
		return
	}
	c.nextRing = ring
	c.timers.Schedule(timerBell, ring.At)
	c.logger.Debug("next bell scheduled", zap.Time("at", ring.At), zap.Int("song_id", ring.SongID))
}

func (c *Controller) ringBell(now time.Time) {
	if !c.bank.State().BellAuto {
		return
	}

	if err := c.player.Play(c.nextRing.SongID, now); err != nil {
		c.logger.Warn("failed to ring bell", zap.Int("song_id", c.nextRing.SongID), zap.Error(err))
		return
	}
	c.logger.Info("bell rang", zap.String("schedule", c.nextRing.Spec), zap.Int("song_id", c.nextRing.SongID))
}
