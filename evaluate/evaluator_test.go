package evaluate

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepMatchingIsFIFO(t *testing.T) {
	ev := New()
	ev.Reset()
	ev.AddOnset(1.0)
	ev.AddOnset(2.0)

	first, ok := ev.AddStep(0, 1.05)
	require.True(t, ok)
	assert.Equal(t, uint64(0), first.StepIndex)
	assert.InDelta(t, -50.0, first.DeviationMs, 1)

	second, ok := ev.AddStep(1, 2.02)
	require.True(t, ok)
	assert.Equal(t, uint64(1), second.StepIndex)
	assert.InDelta(t, -20.0, second.DeviationMs, 1)

	_, ok = ev.AddStep(2, 3.0)
	assert.False(t, ok)
}

func TestLateOnsetIsPositive(t *testing.T) {
	ev := New()
	ev.AddOnset(4.030)
	r, ok := ev.AddStep(7, 4.0)
	require.True(t, ok)
	assert.InDelta(t, 30.0, r.DeviationMs, 1e-6)
}

func TestOnsetsPairInArrivalOrderNotByTime(t *testing.T) {
	ev := New()
	ev.AddOnset(5.0)
	ev.AddOnset(1.0)

	r, ok := ev.AddStep(0, 1.0)
	require.True(t, ok)
	assert.InDelta(t, 4000.0, r.DeviationMs, 1e-6)
}

func TestNoDeduplication(t *testing.T) {
	ev := New()
	ev.AddOnset(1.0)
	ev.AddOnset(1.0)
	assert.Equal(t, 2, ev.Pending())
}

func TestResetEmptiesQueue(t *testing.T) {
	ev := New()
	for i := 0; i < 5; i++ {
		ev.AddOnset(float64(i))
	}
	ev.Reset()
	assert.Equal(t, 0, ev.Pending())

	for i := 0; i < 3; i++ {
		_, ok := ev.AddStep(uint64(i), float64(i))
		assert.False(t, ok)
	}

	ev.AddOnset(10.0)
	_, ok := ev.AddStep(3, 10.0)
	assert.True(t, ok)
}

func TestConcurrentOnsetsAndSteps(t *testing.T) {
	for _, n := range []int{1, 100, 5000} {
		ev := New()
		var wg sync.WaitGroup
		var matched int

		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < n; i++ {
				ev.AddOnset(0.1 * float64(i))
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < n; i++ {
				if _, ok := ev.AddStep(uint64(i), 0.1*float64(i)); ok {
					matched++
				}
			}
		}()
		wg.Wait()

		// every onset is either consumed or still queued, never both or lost
		assert.Equal(t, n, matched+ev.Pending(), "n=%d", n)

		// the queue drains in order and then reports empty
		pending := ev.Pending()
		for i := 0; i < pending; i++ {
			_, ok := ev.AddStep(0, 0)
			require.True(t, ok)
		}
		_, ok := ev.AddStep(0, 0)
		assert.False(t, ok)

		ev.Reset()
		ev.AddOnset(1)
		assert.Equal(t, 1, ev.Pending())
	}
}
