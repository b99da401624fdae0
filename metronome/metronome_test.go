package metronome

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tick struct {
	ts   float64
	step uint64
}

// collect installs a callback that forwards ticks to a buffered channel
func collect(s *Scheduler, buf int) <-chan tick {
	ch := make(chan tick, buf)
	s.SetCallback(func(ts float64, step uint64) {
		select {
		case ch <- tick{ts, step}:
		default:
		}
	})
	return ch
}

func waitTicks(t *testing.T, ch <-chan tick, n int, timeout time.Duration) []tick {
	t.Helper()
	var out []tick
	deadline := time.After(timeout)
	for len(out) < n {
		select {
		case tk := <-ch:
			out = append(out, tk)
		case <-deadline:
			t.Fatalf("got %d ticks before timeout, wanted %d", len(out), n)
		}
	}
	return out
}

func TestSetBPMClamps(t *testing.T) {
	cases := []struct{ in, want int }{
		{-10, 30}, {0, 30}, {29, 30}, {30, 30}, {120, 120}, {300, 300}, {301, 300}, {10000, 300},
	}
	s := New(120, 2)
	for _, tc := range cases {
		s.SetBPM(tc.in)
		assert.Equal(t, tc.want, s.BPM(), "SetBPM(%d)", tc.in)
	}
	assert.Equal(t, 30, New(5, 1).BPM())
}

func TestIntervalUsesStepsPerBeat(t *testing.T) {
	s := New(120, 4)
	assert.InDelta(t, 0.125, s.Interval(), 1e-9)

	s.SetStepsPerBeat(0)
	assert.Equal(t, 1, s.StepsPerBeat())
	assert.InDelta(t, 0.5, s.Interval(), 1e-9)
}

func TestFirstStepFiresImmediately(t *testing.T) {
	s := New(30, 1)
	ch := collect(s, 4)

	start := Now()
	s.Start()
	defer s.Stop()

	got := waitTicks(t, ch, 1, 500*time.Millisecond)
	assert.Equal(t, uint64(0), got[0].step)
	assert.Less(t, got[0].ts-start, 0.05)
}

func TestCadenceIsDriftFree(t *testing.T) {
	s := New(240, 2) // 125ms per step
	ch := collect(s, 16)

	s.Start()
	got := waitTicks(t, ch, 8, 3*time.Second)
	s.Stop()

	expected := s.Interval()
	for i := 1; i < len(got); i++ {
		assert.Equal(t, got[i-1].step+1, got[i].step)
		assert.InDelta(t, expected, got[i].ts-got[i-1].ts, 0.015, "interval %d", i)
	}
	// No accumulated drift across the whole run either.
	total := got[len(got)-1].ts - got[0].ts
	assert.InDelta(t, expected*float64(len(got)-1), total, 0.015)
}

func TestStepDurationOverrideIsOneShot(t *testing.T) {
	barDuration := 0.25
	durations := []float64{0.4 * barDuration, 0.6 * barDuration, 0.2 * barDuration, 0.8 * barDuration}

	s := New(300, 1) // uniform 200ms, never matches the overrides
	ch := make(chan tick, 16)
	s.SetCallback(func(ts float64, step uint64) {
		if step < uint64(len(durations)) {
			s.SetStepDuration(durations[step])
		}
		ch <- tick{ts, step}
	})

	s.Start()
	got := waitTicks(t, ch, len(durations)+2, 3*time.Second)
	s.Stop()

	for i, want := range durations {
		assert.InDelta(t, want, got[i+1].ts-got[i].ts, 0.015, "step %d", i)
	}
	// Without a fresh override the loop falls back to the uniform interval.
	last := len(durations)
	assert.InDelta(t, s.Interval(), got[last+1].ts-got[last].ts, 0.015)
}

func TestSetStepDurationIgnoresInvalid(t *testing.T) {
	s := New(120, 1)
	s.SetStepDuration(0)
	s.SetStepDuration(-1)
	assert.Zero(t, s.override.Load())
	s.SetStepDuration(0.3)
	assert.NotZero(t, s.override.Load())
}

func TestTempoChangeResynchronises(t *testing.T) {
	s := New(30, 1) // 2s per step
	ch := collect(s, 8)

	s.Start()
	defer s.Stop()
	first := waitTicks(t, ch, 1, 500*time.Millisecond)[0]

	changed := Now()
	s.SetBPM(300) // 200ms per step
	second := waitTicks(t, ch, 1, time.Second)[0]

	assert.Equal(t, first.step+1, second.step)
	assert.InDelta(t, 0.2, second.ts-changed, 0.05)
}

func TestStartStopLifecycle(t *testing.T) {
	s := New(300, 4)
	ch := collect(s, 64)

	assert.False(t, s.IsRunning())
	s.Stop() // stop before start is a no-op

	s.Start()
	s.Start() // already running
	assert.True(t, s.IsRunning())
	waitTicks(t, ch, 3, time.Second)

	s.Pause()
	assert.False(t, s.IsRunning())
	s.Stop()
	assert.GreaterOrEqual(t, s.CurrentStep(), uint64(3))

	// drain and restart: counter starts over
	for len(ch) > 0 {
		<-ch
	}
	s.Start()
	defer s.Stop()
	got := waitTicks(t, ch, 1, time.Second)
	assert.Equal(t, uint64(0), got[0].step)
}

func TestResetRewindsWhileRunning(t *testing.T) {
	s := New(300, 4) // 50ms
	ch := collect(s, 64)

	s.Start()
	defer s.Stop()
	waitTicks(t, ch, 4, time.Second)

	s.Reset()
	for {
		tk := waitTicks(t, ch, 1, time.Second)[0]
		if tk.step <= 1 {
			break
		}
	}
	assert.True(t, s.IsRunning())
}

func TestCallbackPanicDoesNotStopLoop(t *testing.T) {
	s := New(300, 4)
	ch := make(chan uint64, 16)
	s.SetCallback(func(ts float64, step uint64) {
		ch <- step
		if step == 1 {
			panic("boom")
		}
	})

	s.Start()
	defer s.Stop()

	seen := map[uint64]bool{}
	deadline := time.After(2 * time.Second)
	for len(seen) < 4 {
		select {
		case step := <-ch:
			seen[step] = true
		case <-deadline:
			t.Fatalf("loop stalled after panic, saw %v", seen)
		}
	}
	assert.True(t, seen[2])
}

func TestReplaceCallback(t *testing.T) {
	s := New(300, 4)
	old := collect(s, 64)
	replacement := collect(s, 64)

	s.Start()
	waitTicks(t, replacement, 2, time.Second)
	s.Stop()

	assert.Empty(t, old)
}

func TestNilCallbackStillTicks(t *testing.T) {
	s := New(300, 4)
	s.SetCallback(nil)
	s.Start()
	require.Eventually(t, func() bool { return s.CurrentStep() >= 2 }, time.Second, 5*time.Millisecond)
	s.Stop()
}

func TestStalledLoopLeavesOverrideAfterStop(t *testing.T) {
	s := New(120, 1)
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	s.SetCallback(func(ts float64, step uint64) {
		once.Do(func() {
			close(entered)
			<-release
		})
	})

	s.Start()
	<-entered
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	// callback still blocked: Stop gives up after stopTimeout
	s.Stop()
	assert.False(t, s.IsRunning())

	// an override set for the next run must survive the old loop's exit
	s.SetStepDuration(0.5)
	close(release)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stalled loop did not exit after release")
	}
	assert.Equal(t, math.Float64bits(0.5), s.override.Load())
}
