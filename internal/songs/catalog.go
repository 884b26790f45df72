package songs

import (
	"fmt"

	"github.com/smukkama/smartclass/internal/melody"
)

// Well-known ids in the extended catalog
const (
	BellLessonStart = 25
	BellBreak       = 26
	BellEndOfDay    = 27
	AlertStinger    = 33
	SuccessStinger  = 34
	ErrorStinger    = 35
	StartupChime    = 36
)

// Catalog is an immutable, indexed song list
type Catalog struct {
	songs []melody.Song
}

// Entry is the listing form used by the dashboard
type Entry struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Notes int    `json:"notes"`
}

// Base returns the 25-song firmware library
func Base() *Catalog {
	return &Catalog{songs: firmware}
}

// Extended returns the firmware library followed by bells, extra tunes and stingers
func Extended() *Catalog {
	all := make([]melody.Song, 0, len(firmware)+len(extras))
	all = append(all, firmware...)
	all = append(all, extras...)
	return &Catalog{songs: all}
}

// ByName picks a catalog by its configuration name
func ByName(name string) (*Catalog, error) {
	switch name {
	case "base", "":
		return Base(), nil
	case "extended":
		return Extended(), nil
	default:
		return nil, fmt.Errorf("unknown song catalog: %s", name)
	}
}

func (c *Catalog) Size() int {
	return len(c.songs)
}

func (c *Catalog) Song(id int) (melody.Song, bool) {
	if id < 0 || id >= len(c.songs) {
		return melody.Song{}, false
	}
	return c.songs[id], true
}

// Has reports whether id is inside the catalog
func (c *Catalog) Has(id int) bool {
	return id >= 0 && id < len(c.songs)
}

// List returns every song in id order
func (c *Catalog) List() []Entry {
	entries := make([]Entry, len(c.songs))
	for i, s := range c.songs {
		entries[i] = Entry{ID: i, Name: s.Name, Notes: len(s.Notes)}
	}
	return entries
}

// score zips parallel frequency and duration-code tables into notes
func score(name string, freqs, codes []int) melody.Song {
	if len(freqs) != len(codes) {
		panic(fmt.Sprintf("song %q has %d notes but %d durations", name, len(freqs), len(codes)))
	}

	notes := make([]melody.Note, len(freqs))
	for i := range freqs {
		notes[i] = melody.Note{Freq: freqs[i], Code: codes[i]}
	}
	return melody.Song{Name: name, Notes: notes}
}
