// Package song binds a chord progression and a tempo to a strumming pattern.
package song

import (
	"errors"
	"fmt"

	"strum-trainer/pattern"
)

// maxRepeat bounds Section.Repeat
const maxRepeat = 10

// Section is a named part of a song played with one chord per bar
type Section struct {
	Name   string
	Chords []string
	Repeat int // times the section is played in a row, 0 means once
}

func (s Section) times() int {
	if s.Repeat < 1 {
		return 1
	}
	return s.Repeat
}

// Bars is the number of bars the section lasts including repeats
func (s Section) Bars() int {
	return len(s.Chords) * s.times()
}

// Song is a practice piece: a pattern, a target tempo and its sections in order
type Song struct {
	ID        string
	Title     string
	Artist    string
	PatternID string
	BPM       int
	Sections  []Section
	Notes     string
}

// Pattern returns the schedule the song is strummed with
func (s *Song) Pattern() (*pattern.Schedule, bool) {
	return pattern.Lookup(s.PatternID)
}

// Bars is the length of one pass through every section
func (s *Song) Bars() int {
	n := 0
	for _, sec := range s.Sections {
		n += sec.Bars()
	}
	return n
}

// Progression flattens the sections into one chord per bar
func (s *Song) Progression() []string {
	out := make([]string, 0, s.Bars())
	for _, sec := range s.Sections {
		for r := 0; r < sec.times(); r++ {
			out = append(out, sec.Chords...)
		}
	}
	return out
}

// SectionForBar locates bar within the song, wrapping after the last section.
// It returns the section index and the chord for that bar; ok is false for a
// song without bars.
func (s *Song) SectionForBar(bar uint64) (index int, chord string, ok bool) {
	total := s.Bars()
	if total == 0 {
		return 0, "", false
	}
	pos := int(bar % uint64(total))
	for i, sec := range s.Sections {
		n := sec.Bars()
		if pos < n {
			return i, sec.Chords[pos%len(sec.Chords)], true
		}
		pos -= n
	}
	return 0, "", false
}

// ChordForBar returns the chord played in bar, "" for an empty song
func (s *Song) ChordForBar(bar uint64) string {
	_, chord, _ := s.SectionForBar(bar)
	return chord
}

// Validate checks that the song can drive a session
func (s *Song) Validate() error {
	if s.ID == "" {
		return errors.New("song without id")
	}
	if _, ok := s.Pattern(); !ok {
		return fmt.Errorf("song %s: unknown pattern %q", s.ID, s.PatternID)
	}
	if s.BPM < 1 {
		return fmt.Errorf("song %s: bpm must be positive, got %d", s.ID, s.BPM)
	}
	if len(s.Sections) == 0 {
		return fmt.Errorf("song %s: no sections", s.ID)
	}
	for i, sec := range s.Sections {
		if sec.Name == "" {
			return fmt.Errorf("song %s: section %d has no name", s.ID, i+1)
		}
		if len(sec.Chords) == 0 {
			return fmt.Errorf("song %s: section %s has no chords", s.ID, sec.Name)
		}
		if sec.Repeat < 0 || sec.Repeat > maxRepeat {
			return fmt.Errorf("song %s: section %s repeat %d outside [0,%d]", s.ID, sec.Name, sec.Repeat, maxRepeat)
		}
	}
	return nil
}
