//go:build unix

package metronome

import (
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cpuSeconds(t *testing.T) float64 {
	t.Helper()
	var ru syscall.Rusage
	require.NoError(t, syscall.Getrusage(syscall.RUSAGE_SELF, &ru))
	tv := func(v syscall.Timeval) float64 {
		return float64(v.Sec) + float64(v.Usec)/1e6
	}
	return tv(ru.Utime) + tv(ru.Stime)
}

func TestLoopSleepsInsteadOfSpinning(t *testing.T) {
	s := New(300, 2)
	s.SetBPM(600) // clamps to 300, still 100ms steps
	ch := collect(s, 32)

	startCPU := cpuSeconds(t)
	startWall := time.Now()

	s.Start()
	got := waitTicks(t, ch, 8, 3*time.Second)
	s.Stop()

	cpu := cpuSeconds(t) - startCPU
	wall := time.Since(startWall).Seconds()
	assert.Less(t, cpu/wall, 0.8)

	for i := 1; i < len(got); i++ {
		assert.InDelta(t, s.Interval(), got[i].ts-got[i-1].ts, 0.015)
	}
}
