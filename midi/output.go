package midi

import (
	"fmt"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"

	"strum-trainer/config"
	"strum-trainer/debug"
	"strum-trainer/pattern"
	"strum-trainer/session"
)

// Strum shape
const (
	stringDelay  = 10 * time.Millisecond // between strings of one strum
	strumRing    = 400 * time.Millisecond
	clickRing    = 50 * time.Millisecond
	accentBoost  = 0.3
	downbeatGain = 1.1
	beatGain     = 1.2
)

// openStrings is standard tuning E2 A2 D3 G3 B3 E4, strummed when no voicing is known
var openStrings = []uint8{40, 45, 50, 55, 59, 64}

// Renderer plays metronome clicks and strums as MIDI notes on an external
// synth. It implements session.AudioRenderer; every call returns at once and
// later notes are sent from timers.
type Renderer struct {
	mu      sync.Mutex // serialises sends; strum timers fire concurrently
	send    func(gomidi.Message) error
	out     config.OutputConfig
	vol     config.VolumeConfig
	voicing func(chord string) []uint8

	after func(d time.Duration, f func())
}

var (
	_ session.AudioRenderer = (*Renderer)(nil)
	_ session.VolumeControl = (*Renderer)(nil)
)

// NewRenderer wraps a send function. voicing maps chord names to notes and may be nil.
func NewRenderer(send func(gomidi.Message) error, out config.OutputConfig, vol config.VolumeConfig, voicing func(string) []uint8) *Renderer {
	return &Renderer{
		send:    send,
		out:     out,
		vol:     vol,
		voicing: voicing,
		after: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
}

// OpenRenderer opens the configured output port and selects the strum program
func OpenRenderer(cfg *config.Config) (*Renderer, error) {
	port, err := FindOut(cfg.Output.PortName)
	if err != nil {
		return nil, err
	}
	send, err := gomidi.SendTo(port)
	if err != nil {
		return nil, fmt.Errorf("open output %s: %w", port.String(), err)
	}
	r := NewRenderer(send, cfg.Output, cfg.Volume, cfg.Voicing)
	r.emit(gomidi.ProgramChange(channel(cfg.Output.StrumChannel), cfg.Output.StrumProgram))
	debug.Log("midi", "output %s", port.String())
	return r, nil
}

// SetVolume replaces the mixer levels
func (r *Renderer) SetVolume(vol config.VolumeConfig) {
	r.mu.Lock()
	r.vol = vol
	r.mu.Unlock()
}

// PlayClick sounds the metronome
func (r *Renderer) PlayClick(kind session.ClickKind) {
	r.mu.Lock()
	vol := r.vol
	r.mu.Unlock()
	if !vol.ClickEnabled {
		return
	}

	note, gain := r.out.ClickLow, beatGain
	if kind == session.ClickDownbeat {
		note, gain = r.out.ClickHigh, downbeatGain
	}
	ch := channel(r.out.ClickChannel)
	vel := velocity(vol.Click * vol.Master * gain)

	r.emit(gomidi.NoteOn(ch, note, vel))
	r.after(clickRing, func() { r.emit(gomidi.NoteOff(ch, note)) })
}

// PlayStrum rolls the chord across the strings, low to high on a downstroke
func (r *Renderer) PlayStrum(dir pattern.Direction, accent float64, technique pattern.Technique, chord string) {
	if dir == pattern.Rest {
		return
	}
	r.mu.Lock()
	vol := r.vol
	r.mu.Unlock()
	if !vol.StrumEnabled {
		return
	}

	notes := r.notesFor(chord)
	if dir == pattern.Up {
		notes = reversed(notes)
	}
	ch := channel(r.out.StrumChannel)
	vel := velocity(vol.Strum * vol.Master * (1 + accent*accentBoost) * technique.Volume())

	for i, n := range notes {
		n := n
		if i == 0 {
			r.emit(gomidi.NoteOn(ch, n, vel))
		} else {
			r.after(time.Duration(i)*stringDelay, func() { r.emit(gomidi.NoteOn(ch, n, vel)) })
		}
		r.after(strumRing+time.Duration(i)*stringDelay, func() { r.emit(gomidi.NoteOff(ch, n)) })
	}
}

func (r *Renderer) notesFor(chord string) []uint8 {
	if chord != "" && r.voicing != nil {
		if v := r.voicing(chord); len(v) > 0 {
			return append([]uint8(nil), v...)
		}
	}
	return append([]uint8(nil), openStrings...)
}

func (r *Renderer) emit(msg gomidi.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.send == nil {
		return
	}
	if err := r.send(msg); err != nil {
		debug.Log("midi", "send %s: %v", msg, err)
	}
}

// channel converts a 1-16 config channel to the 0-15 wire value
func channel(c uint8) uint8 {
	if c == 0 {
		return 0
	}
	return (c - 1) & 0x0F
}

// velocity maps a [0,1] level onto 1-127
func velocity(level float64) uint8 {
	v := int(level*127 + 0.5)
	if v < 1 {
		return 1
	}
	if v > 127 {
		return 127
	}
	return uint8(v)
}

func reversed(in []uint8) []uint8 {
	out := make([]uint8, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}
