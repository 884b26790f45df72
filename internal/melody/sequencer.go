package melody

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultBase is the length of a whole note; a code of 4 lasts Base/4
	DefaultBase = time.Second
	// DefaultQuickTone is the length of a one-shot tone
	DefaultQuickTone = 200 * time.Millisecond

	quarterNote = 4
)

// Note is a frequency in Hz (0 is a rest) and a duration code
type Note struct {
	Freq int
	Code int
}

// Song is a named, ordered list of notes
type Song struct {
	Name  string
	Notes []Note
}

// Catalog resolves song ids. Valid ids are 0 to Size()-1.
type Catalog interface {
	Size() int
	Song(id int) (Song, bool)
}

// ToneOutput drives the buzzer. Emit holds a frequency until the next call;
// 0 means silence.
type ToneOutput interface {
	Emit(freq int)
	Tone(freq int, d time.Duration)
}

// Playback is the sequencer position. It is the zero value when no song is
// loaded, including after the last note has finished.
type Playback struct {
	SongID    int
	HasSong   bool
	NoteIndex int
	NoteStart time.Time
	Playing   bool
}

var (
	ErrUnknownSong = &SongError{"unknown song"}
)

// SongError represents a rejected playback request
type SongError struct {
	msg string
}

func (e *SongError) Error() string {
	return e.msg
}

// Options tune the sequencer timing
type Options struct {
	Base      time.Duration
	QuickTone time.Duration
}

// Sequencer plays one song at a time without blocking. It is driven by Tick
// from the scheduler loop and is not safe for concurrent use.
type Sequencer struct {
	catalog   Catalog
	out       ToneOutput
	base      time.Duration
	quickTone time.Duration
	logger    *zap.Logger

	playback Playback
	song     Song
}

// NewSequencer creates a sequencer writing to out
func NewSequencer(catalog Catalog, out ToneOutput, opts Options, logger *zap.Logger) *Sequencer {
	if opts.Base <= 0 {
		opts.Base = DefaultBase
	}
	if opts.QuickTone <= 0 {
		opts.QuickTone = DefaultQuickTone
	}

	return &Sequencer{
		catalog:   catalog,
		out:       out,
		base:      opts.Base,
		quickTone: opts.QuickTone,
		logger:    logger,
	}
}

// Play starts song id from its first note, replacing anything already playing
func (s *Sequencer) Play(id int, now time.Time) error {
	song, ok := s.catalog.Song(id)
	if !ok {
		return fmt.Errorf("%w: id %d (catalog has %d)", ErrUnknownSong, id, s.catalog.Size())
	}

	if len(song.Notes) == 0 {
		s.logger.Warn("song has no notes, not starting", zap.Int("song_id", id))
		s.Stop()
		return nil
	}

	if s.playback.Playing {
		s.logger.Debug("preempting song",
			zap.Int("old_song_id", s.playback.SongID),
			zap.Int("new_song_id", id),
		)
	}

	s.song = song
	s.playback = Playback{
		SongID:    id,
		HasSong:   true,
		NoteIndex: 0,
		NoteStart: now,
		Playing:   true,
	}
	s.out.Emit(song.Notes[0].Freq)
	return nil
}

// Stop silences the buzzer and forgets the current song
func (s *Sequencer) Stop() {
	s.playback = Playback{}
	s.song = Song{}
	s.out.Emit(0)
}

// Tick advances at most one note. It returns true when the song just ended.
func (s *Sequencer) Tick(now time.Time) bool {
	if !s.playback.Playing {
		return false
	}

	current := s.song.Notes[s.playback.NoteIndex]
	if now.Sub(s.playback.NoteStart) < s.NoteDuration(current.Code) {
		return false
	}

	next := s.playback.NoteIndex + 1
	if next >= len(s.song.Notes) {
		s.playback = Playback{}
		s.song = Song{}
		s.out.Emit(0)
		return true
	}

	s.playback.NoteIndex = next
	s.playback.NoteStart = now
	s.out.Emit(s.song.Notes[next].Freq)
	return false
}

// Tone plays a short one-shot tone after stopping any song
func (s *Sequencer) Tone(freq int) {
	s.Stop()
	s.out.Tone(freq, s.quickTone)
}

// NoteDuration converts a duration code to wall time. Codes <= 0 count as quarter notes.
func (s *Sequencer) NoteDuration(code int) time.Duration {
	if code <= 0 {
		code = quarterNote
	}
	return s.base / time.Duration(code)
}

// Playback returns a copy of the current position
func (s *Sequencer) Playback() Playback {
	return s.playback
}

// SongName returns the name of the song being played, empty when idle
func (s *Sequencer) SongName() string {
	if !s.playback.Playing {
		return ""
	}
	return s.song.Name
}
