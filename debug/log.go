package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	out     io.Writer
	closer  io.Closer
	mu      sync.Mutex
	enabled bool
)

// Enable starts debug logging to path, truncating any previous log.
// The parent directory is created if needed.
func Enable(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("open debug log: %w", err)
	}
	enableTo(f, f)
	return nil
}

// EnableTo routes debug logging to w. Used by tests and by `taptest`, which
// logs straight to the terminal.
func EnableTo(w io.Writer) {
	enableTo(w, nil)
}

func enableTo(w io.Writer, c io.Closer) {
	mu.Lock()
	defer mu.Unlock()

	if closer != nil {
		closer.Close()
	}
	out = w
	closer = c
	enabled = true
	counters = make(map[string]int)

	// Write directly (can't call Log - we hold the mutex)
	writeLine("debug", "=== Debug logging started ===")
}

// Disable stops debug logging
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	if closer != nil {
		closer.Close()
		closer = nil
	}
	out = nil
	enabled = false
}

// Enabled reports whether logging is on.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// Log writes a message to the debug log
func Log(category, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if !enabled || out == nil {
		return
	}
	writeLine(category, fmt.Sprintf(format, args...))
	flush()
}

func writeLine(category, msg string) {
	ts := time.Now().Format("15:04:05.000")
	fmt.Fprintf(out, "[%s] %-10s %s\n", ts, category, msg)
}

// flush syncs a file log so lines survive a crash
func flush() {
	if f, ok := out.(*os.File); ok {
		f.Sync()
	}
}

// LogEvery logs only every N calls. It is meant for the timing loop, so it
// never calls Sync on a file log.
var counters = make(map[string]int)

func LogEvery(n int, category, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if !enabled || out == nil {
		return
	}
	key := category + format
	counters[key]++
	count := counters[key]

	if n <= 1 || count%n == 0 {
		writeLine(category, fmt.Sprintf(format+" (every %d, count=%d)", append(args, n, count)...))
	}
}
