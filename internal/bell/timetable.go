package bell

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Ring is one scheduled bell
type Ring struct {
	At     time.Time
	SongID int
	Spec   string
}

type entry struct {
	spec     string
	songID   int
	schedule cron.Schedule
}

// Timetable computes upcoming bell rings from cron expressions. It only
// parses and evaluates schedules; firing is left to the scheduler loop.
type Timetable struct {
	entries []entry
}

// Entry pairs a five-field cron expression with the song it rings
type Entry struct {
	Spec   string
	SongID int
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// NewTimetable parses every entry. validSong rejects ids the catalog cannot play.
func NewTimetable(entries []Entry, validSong func(int) bool) (*Timetable, error) {
	tt := &Timetable{}
	for _, e := range entries {
		schedule, err := parser.Parse(e.Spec)
		if err != nil {
			return nil, fmt.Errorf("failed to parse bell schedule %q: %w", e.Spec, err)
		}
		if validSong != nil && !validSong(e.SongID) {
			return nil, fmt.Errorf("bell schedule %q rings unknown song %d", e.Spec, e.SongID)
		}
		tt.entries = append(tt.entries, entry{spec: e.Spec, songID: e.SongID, schedule: schedule})
	}
	return tt, nil
}

// Next returns the earliest ring strictly after now. Entries due at the same
// instant resolve to the first one listed.
func (tt *Timetable) Next(now time.Time) (Ring, bool) {
	var best Ring
	found := false
	for _, e := range tt.entries {
		at := e.schedule.Next(now)
		if at.IsZero() {
			continue
		}
		if !found || at.Before(best.At) {
			best = Ring{At: at, SongID: e.songID, Spec: e.spec}
			found = true
		}
	}
	return best, found
}

// Len returns the number of entries
func (tt *Timetable) Len() int {
	return len(tt.entries)
}
