package evaluate

import (
	"fmt"
	"math"
	"sync"
)

// Coaching thresholds on mean absolute deviation
const (
	TightMs     = 20.0
	NeedsWorkMs = 50.0
)

// Verdict summarises a run of results
type Verdict int

const (
	VerdictNone Verdict = iota
	VerdictTight
	VerdictOK
	VerdictRushing
	VerdictDragging
)

func (v Verdict) String() string {
	switch v {
	case VerdictTight:
		return "tight"
	case VerdictOK:
		return "ok"
	case VerdictRushing:
		return "rushing"
	case VerdictDragging:
		return "dragging"
	}
	return "-"
}

// Hint is a one-line coaching message for the verdict
func (v Verdict) Hint() string {
	switch v {
	case VerdictTight:
		return "Great timing, try nudging the tempo up."
	case VerdictOK:
		return "Solid. Keep the strumming hand moving on the rests."
	case VerdictRushing:
		return "You are ahead of the click. Relax and let the beat come to you."
	case VerdictDragging:
		return "You are behind the click. Slow the tempo down until it locks in."
	}
	return "Tap along to get timing feedback."
}

// Summary is a snapshot of Stats
type Summary struct {
	Steps        int
	Hits         int
	Misses       int
	MeanDevMs    float64
	MeanAbsDevMs float64
	Last         *StepResult
	Verdict      Verdict
}

func (s Summary) String() string {
	return fmt.Sprintf("steps=%d hits=%d mean=%+.1fms abs=%.1fms %s",
		s.Steps, s.Hits, s.MeanDevMs, s.MeanAbsDevMs, s.Verdict)
}

// Stats accumulates results over a practice run
type Stats struct {
	mu     sync.Mutex
	steps  int
	hits   int
	sum    float64
	absSum float64
	last   StepResult
}

// NewStats creates an empty accumulator
func NewStats() *Stats {
	return &Stats{}
}

// Record counts one scheduled step and its optional result
func (s *Stats) Record(r StepResult, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.steps++
	if !ok {
		return
	}
	s.hits++
	s.sum += r.DeviationMs
	s.absSum += math.Abs(r.DeviationMs)
	s.last = r
}

// Reset clears all counters
func (s *Stats) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.steps, s.hits = 0, 0
	s.sum, s.absSum = 0, 0
	s.last = StepResult{}
}

// Summary returns the current snapshot
func (s *Stats) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := Summary{Steps: s.steps, Hits: s.hits, Misses: s.steps - s.hits}
	if s.hits == 0 {
		return sum
	}
	last := s.last
	sum.Last = &last
	sum.MeanDevMs = s.sum / float64(s.hits)
	sum.MeanAbsDevMs = s.absSum / float64(s.hits)
	sum.Verdict = verdict(sum.MeanDevMs, sum.MeanAbsDevMs)
	return sum
}

func verdict(mean, meanAbs float64) Verdict {
	switch {
	case meanAbs < TightMs:
		return VerdictTight
	case meanAbs <= NeedsWorkMs:
		return VerdictOK
	case mean < 0:
		return VerdictRushing
	default:
		return VerdictDragging
	}
}
