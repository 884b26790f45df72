package controller

import (
	"time"

	"github.com/smukkama/smartclass/internal/actuator"
	"github.com/smukkama/smartclass/internal/classify"
	"github.com/smukkama/smartclass/internal/protocol"
	"github.com/smukkama/smartclass/internal/sensor"
	"github.com/smukkama/smartclass/internal/wifi"
)

const (
	moodWaiting  = "Waiting for sensors"
	statusStale  = "AI: sensor offline, showing last reading"
	statusManual = "AI: manual mode"
)

// Status is an immutable view of the controller after one pass
type Status struct {
	At         time.Time
	Snapshot   sensor.Snapshot
	HasReading bool
	Stale      bool
	Result     classify.Result
	Actuators  actuator.State
	Playing    bool
	SongID     int
	SongName   string
	Scan       wifi.Phase
	Alerts     []string
	NextBell   time.Time
}

func (c *Controller) publish(now time.Time) {
	snap, has := c.feed.Current()
	pb := c.player.Playback()

	st := &Status{
		At:         now,
		Snapshot:   snap,
		HasReading: has,
		Stale:      c.feed.Stale(),
		Result:     c.result,
		Actuators:  c.bank.State(),
		Playing:    pb.Playing,
		SongID:     pb.SongID,
		SongName:   c.player.SongName(),
		Scan:       c.scanner.Phase(),
		Alerts:     c.latch.Active(),
	}
	if c.timers.Pending(timerBell) {
		st.NextBell = c.nextRing.At
	}
	c.status.Store(st)
}

// Data renders the /data document for the given variant
func (s *Status) Data(caps Capabilities) protocol.Data {
	d := protocol.Data{
		Temperature: s.Snapshot.Temperature,
		Humidity:    s.Snapshot.Humidity,
		Gas:         s.Snapshot.Gas,
		Sound:       s.Snapshot.Sound,
		AI:          s.Actuators.AIAuto,
		AIStatus:    s.aiStatus(),
		Level:       s.Result.Label.String(),
		Fan:         s.Actuators.Fan,
		Lamp:        s.Actuators.Lamp,
		Playing:     s.Playing,
		Song:        s.SongName,
		Stale:       s.Stale,
		Time:        s.At.Format(protocol.ClockFormat),
	}

	mood := s.Result.Mood
	if !s.HasReading {
		mood = moodWaiting
	}

	if caps.HasSmoke {
		smoke := s.Snapshot.Smoke
		d.Smoke = &smoke
	}
	if caps.Terminology == protocol.TermHealth {
		auto := s.Actuators.AIAuto
		d.Health = &mood
		d.Auto = &auto
	} else {
		d.Mood = &mood
	}
	if caps.HasBell {
		b := s.Actuators.BellAuto
		d.Bell = &b
	}
	return d
}

func (s *Status) aiStatus() string {
	switch {
	case s.Stale:
		return statusStale
	case !s.Actuators.AIAuto:
		return statusManual
	default:
		return s.Result.Status()
	}
}
