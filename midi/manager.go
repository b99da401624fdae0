package midi

import (
	"context"
	"strings"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"

	"strum-trainer/debug"
)

// DeviceManager handles hot-plug detection of tap inputs whose port name
// contains a configured substring
type DeviceManager struct {
	match       string
	note        int
	controllers map[string]Controller
	mu          sync.RWMutex
	events      chan DeviceEvent
	pollRate    time.Duration

	// port access, swapped out in tests
	listPorts func() ([]string, error)
	open      func(name string, note int) (Controller, error)
}

// NewDeviceManager watches for input ports matching match (case-insensitive)
func NewDeviceManager(match string, note int) *DeviceManager {
	return &DeviceManager{
		match:       strings.ToLower(match),
		note:        note,
		controllers: make(map[string]Controller),
		events:      make(chan DeviceEvent, 16),
		pollRate:    time.Second,
		listPorts:   InPortNames,
		open:        openTapInput,
	}
}

func openTapInput(name string, note int) (Controller, error) {
	in, err := gomidi.FindInPort(name)
	if err != nil {
		return nil, err
	}
	return NewTapInput(name, in, note)
}

// Events returns a channel of device connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Controllers returns a snapshot of connected controllers
func (dm *DeviceManager) Controllers() map[string]Controller {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	copy := make(map[string]Controller, len(dm.controllers))
	for k, v := range dm.controllers {
		copy[k] = v
	}
	return copy
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	// Initial scan
	dm.scan()

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan()
		}
	}
}

func (dm *DeviceManager) scan() {
	names, err := dm.listPorts()
	if err != nil {
		// driver hung or missing - try again next poll
		debug.Log("midi", "port scan: %v", err)
		return
	}

	seen := make(map[string]bool)
	for _, name := range names {
		if !dm.matches(name) {
			continue
		}
		seen[name] = true

		dm.mu.RLock()
		_, exists := dm.controllers[name]
		dm.mu.RUnlock()
		if exists {
			continue
		}

		c, err := dm.open(name, dm.note)
		if err != nil {
			debug.Log("midi", "open %s: %v", name, err)
			continue
		}

		dm.mu.Lock()
		dm.controllers[name] = c
		dm.mu.Unlock()

		debug.Log("midi", "tap input connected: %s", name)
		dm.events <- DeviceEvent{Type: DeviceConnected, Controller: c, ID: name}
	}

	// Check for disconnects
	dm.mu.Lock()
	var toRemove []string
	for id := range dm.controllers {
		if !seen[id] {
			toRemove = append(toRemove, id)
		}
	}
	for _, id := range toRemove {
		dm.controllers[id].Close()
		delete(dm.controllers, id)
	}
	dm.mu.Unlock()

	for _, id := range toRemove {
		debug.Log("midi", "tap input gone: %s", id)
		dm.events <- DeviceEvent{Type: DeviceDisconnected, ID: id}
	}
}

func (dm *DeviceManager) matches(name string) bool {
	if dm.match == "" {
		return false
	}
	return strings.Contains(strings.ToLower(name), dm.match)
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, c := range dm.controllers {
		c.Close()
	}
	dm.controllers = make(map[string]Controller)
}
