// Package evaluate pairs detected onsets with scheduled steps and measures
// how far off each one was.
package evaluate

import "sync"

// StepResult is the timing of one onset against the step it was paired with.
// Negative DeviationMs means early.
type StepResult struct {
	StepIndex   uint64
	DeviationMs float64
}

// Evaluator matches onsets to steps strictly first-in first-out. AddOnset and
// AddStep may be called from different goroutines.
type Evaluator struct {
	mu     sync.Mutex
	onsets []float64
}

// New creates an empty evaluator
func New() *Evaluator {
	return &Evaluator{}
}

// Reset drops every pending onset
func (e *Evaluator) Reset() {
	e.mu.Lock()
	e.onsets = nil
	e.mu.Unlock()
}

// AddOnset queues an onset timestamp in seconds
func (e *Evaluator) AddOnset(timestamp float64) {
	e.mu.Lock()
	e.onsets = append(e.onsets, timestamp)
	e.mu.Unlock()
}

// AddStep pairs a scheduled step with the oldest pending onset. It returns
// false without waiting when nothing is queued; that step is never revisited.
func (e *Evaluator) AddStep(stepIndex uint64, timestamp float64) (StepResult, bool) {
	e.mu.Lock()
	if len(e.onsets) == 0 {
		e.mu.Unlock()
		return StepResult{}, false
	}
	onset := e.onsets[0]
	e.onsets = e.onsets[1:]
	if len(e.onsets) == 0 {
		e.onsets = nil // release the backing array
	}
	e.mu.Unlock()

	return StepResult{
		StepIndex:   stepIndex,
		DeviationMs: (onset - timestamp) * 1000.0,
	}, true
}

// Pending returns how many onsets are waiting for a step
func (e *Evaluator) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.onsets)
}
