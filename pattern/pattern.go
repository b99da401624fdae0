package pattern

import (
	"fmt"
	"math"
)

// Direction is the strum direction of a step
type Direction int

const (
	Down Direction = iota
	Up
	Rest
)

func (d Direction) String() string {
	switch d {
	case Down:
		return "D"
	case Up:
		return "U"
	default:
		return "-"
	}
}

// ParseDirection accepts the short forms used in pattern files ("D", "U", "-").
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "D", "d":
		return Down, nil
	case "U", "u":
		return Up, nil
	case "-", "":
		return Rest, nil
	}
	return Rest, fmt.Errorf("unknown direction %q", s)
}

// Technique only changes playback volume
type Technique int

const (
	Open Technique = iota
	Mute
	Palm
	Ghost
)

var techniqueNames = [...]string{"open", "mute", "palm", "ghost"}

func (t Technique) String() string {
	if t < 0 || int(t) >= len(techniqueNames) {
		return "open"
	}
	return techniqueNames[t]
}

// Volume returns the playback multiplier for the technique
func (t Technique) Volume() float64 {
	switch t {
	case Mute:
		return 0.2
	case Palm:
		return 0.5
	case Ghost:
		return 0.3
	default:
		return 1.0
	}
}

// Step is one scheduled strum inside a bar. T is the position in the bar in [0,1).
type Step struct {
	T         float64
	Dir       Direction
	Accent    float64
	Technique Technique
}

// TimeSignature is beats per bar over the beat unit
type TimeSignature struct {
	Beats int
	Unit  int
}

func (ts TimeSignature) String() string {
	return fmt.Sprintf("%d/%d", ts.Beats, ts.Unit)
}

// Schedule is a strumming pattern: the steps of one bar plus its tempo range.
// A Schedule is never mutated after construction; sessions swap it wholesale.
type Schedule struct {
	ID          string
	Name        string
	TimeSig     TimeSignature
	StepsPerBar int
	Steps       []Step
	BPMDefault  int
	BPMMin      int
	BPMMax      int
	Notes       string
}

// StepsPerBeat derives the scheduler subdivision from the bar layout
func (s *Schedule) StepsPerBeat() int {
	if s.TimeSig.Beats <= 0 {
		return 1
	}
	spb := s.StepsPerBar / s.TimeSig.Beats
	if spb < 1 {
		return 1
	}
	return spb
}

// BarDuration returns the length of one bar in seconds at bpm
func (s *Schedule) BarDuration(bpm int) float64 {
	if bpm <= 0 {
		return 0
	}
	return 60.0 / float64(bpm) * float64(s.TimeSig.Beats)
}

// BarStep maps a free-running step counter onto the bar
func (s *Schedule) BarStep(stepIndex uint64) int {
	if s.StepsPerBar <= 0 {
		return 0
	}
	return int(stepIndex % uint64(s.StepsPerBar))
}

// Bar returns which bar a free-running step counter falls in
func (s *Schedule) Bar(stepIndex uint64) uint64 {
	if s.StepsPerBar <= 0 {
		return 0
	}
	return stepIndex / uint64(s.StepsPerBar)
}

// StepAt returns the step for a free-running counter. The bool is false when the
// bar has fewer steps than StepsPerBar and this slot is empty.
func (s *Schedule) StepAt(stepIndex uint64) (Step, bool) {
	i := s.BarStep(stepIndex)
	if i >= len(s.Steps) {
		return Step{}, false
	}
	return s.Steps[i], true
}

// NextStepDuration is the real time from bar step i to the following step,
// wrapping at the end of the bar. A single-step pattern waits a full bar.
func (s *Schedule) NextStepDuration(barStep int, bpm int) float64 {
	n := len(s.Steps)
	if n == 0 || barStep < 0 || barStep >= n {
		return 0
	}
	cur := s.Steps[barStep]
	next := s.Steps[(barStep+1)%n]
	delta := math.Mod(next.T-cur.T, 1.0)
	if delta < 0 {
		delta += 1.0
	}
	if delta == 0 {
		delta = 1.0
	}
	return delta * s.BarDuration(bpm)
}

// IsDownbeat reports whether the bar step starts the bar
func (s *Schedule) IsDownbeat(barStep int) bool {
	return barStep == 0
}

// IsBeat reports whether the bar step lands on a beat boundary
func (s *Schedule) IsBeat(barStep int) bool {
	return barStep%s.StepsPerBeat() == 0
}

// ClampBPM keeps bpm inside the pattern's range
func (s *Schedule) ClampBPM(bpm int) int {
	if s.BPMMin > 0 && bpm < s.BPMMin {
		bpm = s.BPMMin
	}
	if s.BPMMax > 0 && bpm > s.BPMMax {
		bpm = s.BPMMax
	}
	return bpm
}

// Validate checks the invariants a schedule needs before it can drive a session
func (s *Schedule) Validate() error {
	if s.StepsPerBar < 1 {
		return fmt.Errorf("pattern %s: steps per bar must be positive, got %d", s.ID, s.StepsPerBar)
	}
	if s.TimeSig.Beats < 1 || s.TimeSig.Unit < 1 {
		return fmt.Errorf("pattern %s: invalid time signature %s", s.ID, s.TimeSig)
	}
	if s.BPMMin > s.BPMMax {
		return fmt.Errorf("pattern %s: bpm min %d above max %d", s.ID, s.BPMMin, s.BPMMax)
	}
	if s.BPMDefault < s.BPMMin || s.BPMDefault > s.BPMMax {
		return fmt.Errorf("pattern %s: default bpm %d outside [%d,%d]", s.ID, s.BPMDefault, s.BPMMin, s.BPMMax)
	}
	prev := -1.0
	for i, st := range s.Steps {
		if st.T < 0 || st.T >= 1 {
			return fmt.Errorf("pattern %s: step %d t=%.3f outside [0,1)", s.ID, i+1, st.T)
		}
		if st.T <= prev {
			return fmt.Errorf("pattern %s: step %d t=%.3f not after previous step", s.ID, i+1, st.T)
		}
		if st.Accent < 0 || st.Accent > 1 {
			return fmt.Errorf("pattern %s: step %d accent %.2f outside [0,1]", s.ID, i+1, st.Accent)
		}
		prev = st.T
	}
	return nil
}
