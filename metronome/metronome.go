// Package metronome is the free-running beat clock. A Scheduler owns one
// goroutine that fires a callback for every step at a cadence set by the
// tempo, optionally overridden one interval at a time for uneven patterns.
package metronome

import (
	"math"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"strum-trainer/debug"
)

// Tempo bounds
const (
	MinBPM = 30
	MaxBPM = 300
)

// spinMargin is how early the loop wakes before a step to finish by polling
const spinMargin = time.Millisecond

// stopTimeout bounds how long Stop waits for the loop goroutine
const stopTimeout = time.Second

var epoch = time.Now()

// Now returns seconds on the monotonic clock. Every timestamp in the trainer
// (ticks and onsets) comes from here so they can be compared directly.
func Now() float64 {
	return time.Since(epoch).Seconds()
}

// Callback receives each step on the scheduler goroutine
type Callback func(timestamp float64, step uint64)

// Scheduler is the metronome. All setters are safe to call from any goroutine.
type Scheduler struct {
	bpm          atomic.Int64
	stepsPerBeat atomic.Int64
	running      atomic.Bool
	step         atomic.Uint64
	override     atomic.Uint64 // float64 bits, 0 = none
	callback     atomic.Pointer[Callback]
	wake         chan struct{} // cut a sleep short when the tempo changes

	// lifecycle only, never touched by the loop
	mu   sync.Mutex
	quit chan struct{}
	done chan struct{}

	now func() float64
}

// New creates a stopped scheduler
func New(bpm, stepsPerBeat int) *Scheduler {
	s := &Scheduler{now: Now, wake: make(chan struct{}, 1)}
	s.bpm.Store(int64(clampBPM(bpm)))
	s.SetStepsPerBeat(stepsPerBeat)
	return s
}

func clampBPM(bpm int) int {
	if bpm < MinBPM {
		return MinBPM
	}
	if bpm > MaxBPM {
		return MaxBPM
	}
	return bpm
}

// SetBPM clamps to [MinBPM, MaxBPM]. A running loop resynchronises on its next
// iteration: the following step is one new interval from that moment.
func (s *Scheduler) SetBPM(bpm int) {
	bpm = clampBPM(bpm)
	if old := s.bpm.Swap(int64(bpm)); old != int64(bpm) {
		debug.Log("metronome", "bpm %d -> %d", old, bpm)
		s.interrupt()
	}
}

// interrupt wakes the loop so it recomputes its interval now
func (s *Scheduler) interrupt() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// BPM returns the effective tempo
func (s *Scheduler) BPM() int {
	return int(s.bpm.Load())
}

// SetStepsPerBeat sets the subdivision used for the uniform interval
func (s *Scheduler) SetStepsPerBeat(n int) {
	if n < 1 {
		n = 1
	}
	if old := s.stepsPerBeat.Swap(int64(n)); old != int64(n) {
		s.interrupt()
	}
}

// StepsPerBeat returns the current subdivision
func (s *Scheduler) StepsPerBeat() int {
	return int(s.stepsPerBeat.Load())
}

// SetCallback replaces the step sink. Set it before Start.
func (s *Scheduler) SetCallback(cb Callback) {
	if cb == nil {
		s.callback.Store(nil)
		return
	}
	s.callback.Store(&cb)
}

// SetStepDuration overrides the wait before the next step only. Callbacks use
// it to place uneven steps; the tempo itself is untouched.
func (s *Scheduler) SetStepDuration(seconds float64) {
	if seconds <= 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return
	}
	s.override.Store(math.Float64bits(seconds))
}

// Interval is the uniform step length at the current tempo, in seconds
func (s *Scheduler) Interval() float64 {
	return interval(int(s.bpm.Load()), int(s.stepsPerBeat.Load()))
}

func interval(bpm, stepsPerBeat int) float64 {
	return 60.0 / float64(bpm) / float64(stepsPerBeat)
}

// Start launches the loop goroutine from step 0. No-op when already running.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running.Load() {
		return
	}
	s.step.Store(0)
	s.override.Store(0)
	select {
	case <-s.wake:
	default:
	}
	s.quit = make(chan struct{})
	s.done = make(chan struct{})
	s.running.Store(true)

	go s.run(s.quit, s.done)
	debug.Log("metronome", "started bpm=%d spb=%d", s.BPM(), s.StepsPerBeat())
}

// Stop ends the loop and waits briefly for it to exit. Idempotent.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running.Load() {
		return
	}
	s.running.Store(false)
	close(s.quit)

	select {
	case <-s.done:
	case <-time.After(stopTimeout):
		debug.Log("metronome", "loop did not exit within %s", stopTimeout)
	}
	debug.Log("metronome", "stopped at step %d", s.step.Load())
}

// Pause is Stop. Starting again begins at step 0.
func (s *Scheduler) Pause() {
	s.Stop()
}

// Reset rewinds the step counter without stopping
func (s *Scheduler) Reset() {
	s.step.Store(0)
}

// IsRunning reports whether the loop is active
func (s *Scheduler) IsRunning() bool {
	return s.running.Load()
}

// CurrentStep returns the index of the next step to fire
func (s *Scheduler) CurrentStep() uint64 {
	return s.step.Load()
}

// run is the timing loop. next advances by a fixed increment per step so OS
// jitter does not accumulate; a late wake fires immediately and catches up.
func (s *Scheduler) run(quit <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	lastBPM := int(s.bpm.Load())
	lastSPB := int(s.stepsPerBeat.Load())
	stepDuration := interval(lastBPM, lastSPB)
	next := s.now()

	for {
		select {
		case <-quit:
			return
		default:
		}
		current := s.now()

		bpm, spb := int(s.bpm.Load()), int(s.stepsPerBeat.Load())
		if bpm != lastBPM || spb != lastSPB {
			lastBPM, lastSPB = bpm, spb
			stepDuration = interval(bpm, spb)
			next = current + stepDuration
		}

		if current >= next {
			step := s.step.Add(1) - 1
			s.fire(current, step)

			// a Stop that timed out during the callback may already have
			// started a new loop; its override is not ours to consume
			select {
			case <-quit:
				return
			default:
			}

			d := stepDuration
			if bits := s.override.Swap(0); bits != 0 {
				d = math.Float64frombits(bits)
			}
			next += d
		}

		wait := next - s.now() - spinMargin.Seconds()
		if wait <= 0 {
			runtime.Gosched()
			continue
		}
		timer.Reset(time.Duration(wait * float64(time.Second)))
		select {
		case <-quit:
			return
		case <-s.wake:
			timer.Stop()
		case <-timer.C:
		}
	}
}

// fire invokes the callback; a panicking callback is logged and ticking continues
func (s *Scheduler) fire(ts float64, step uint64) {
	cb := s.callback.Load()
	if cb == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			debug.Log("metronome", "callback panic at step %d: %v", step, r)
		}
	}()
	(*cb)(ts, step)
}
