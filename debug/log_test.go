package debug

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogWritesCategoryLines(t *testing.T) {
	var buf bytes.Buffer
	EnableTo(&buf)
	defer Disable()

	Log("metronome", "bpm=%d", 120)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Debug logging started")
	assert.Contains(t, lines[1], "metronome")
	assert.Contains(t, lines[1], "bpm=120")
}

func TestLogIsSilentWhenDisabled(t *testing.T) {
	var buf bytes.Buffer
	EnableTo(&buf)
	Disable()
	buf.Reset()

	Log("tick", "ignored")
	LogEvery(1, "tick", "ignored too")

	assert.Empty(t, buf.String())
	assert.False(t, Enabled())
}

func TestLogEveryThrottles(t *testing.T) {
	var buf bytes.Buffer
	EnableTo(&buf)
	defer Disable()
	buf.Reset()

	for i := 0; i < 10; i++ {
		LogEvery(5, "throttle", "step %d", i)
	}

	assert.Equal(t, 2, strings.Count(buf.String(), "throttle"))
}

func TestLogEveryWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "debug.log")
	require.NoError(t, Enable(path))

	for i := 0; i < 4; i++ {
		LogEvery(2, "eval", "dev=%d", i)
	}
	Disable()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "eval"))
	assert.Contains(t, string(data), "count=4")
}
