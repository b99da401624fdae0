package config

import (
	"sync"
	"time"

	"github.com/bep/debounce"

	"strum-trainer/debug"
)

// Saver batches config writes. Holding +/- to sweep the tempo produces one
// write after the keys go quiet instead of one per step.
type Saver struct {
	mu        sync.Mutex
	cfg       *Config
	path      string
	debounced func(f func())
}

// NewSaver wraps cfg; writes go to path after `after` of inactivity
func NewSaver(cfg *Config, path string, after time.Duration) *Saver {
	return &Saver{
		cfg:       cfg,
		path:      path,
		debounced: debounce.New(after),
	}
}

// Update mutates the config under the saver's lock and schedules a write
func (s *Saver) Update(fn func(c *Config)) {
	s.mu.Lock()
	fn(s.cfg)
	s.mu.Unlock()

	s.debounced(func() {
		if err := s.Flush(); err != nil {
			debug.Log("config", "save failed: %v", err)
		}
	})
}

// Flush writes the config immediately
func (s *Saver) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.SaveTo(s.path)
}

// Config returns a copy of the current config
func (s *Saver) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.cfg
}
