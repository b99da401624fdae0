package midi

import (
	"fmt"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"strum-trainer/metronome"
)

// AnyNote disables the note filter on a TapInput
const AnyNote = -1

// TapInput turns note-ons from a keyboard, drum pad or pickup trigger into taps
type TapInput struct {
	id       string
	inPort   drivers.In
	stopFunc func()
	note     int
	now      func() float64

	mu      sync.RWMutex // guards closed against in-flight driver callbacks
	closed  bool
	tapChan chan Tap
}

// NewTapInput opens inPort and listens for note-ons. note filters to a single
// key; AnyNote accepts all.
func NewTapInput(id string, inPort drivers.In, note int) (*TapInput, error) {
	ti := newTapInput(id, note)
	ti.inPort = inPort

	if inPort != nil {
		stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
			ti.handle(msg)
		})
		if err != nil {
			return nil, fmt.Errorf("open input %s: %w", id, err)
		}
		ti.stopFunc = stop
	}

	return ti, nil
}

func newTapInput(id string, note int) *TapInput {
	return &TapInput{
		id:      id,
		note:    note,
		now:     metronome.Now,
		tapChan: make(chan Tap, 32),
	}
}

// handle runs on the driver's callback goroutine; the timestamp is taken first
func (ti *TapInput) handle(msg gomidi.Message) {
	ts := ti.now()
	var channel, note, velocity uint8
	if !msg.GetNoteOn(&channel, &note, &velocity) || velocity == 0 {
		return
	}
	if ti.note != AnyNote && int(note) != ti.note {
		return
	}

	ti.mu.RLock()
	defer ti.mu.RUnlock()
	if ti.closed {
		return
	}
	select {
	case ti.tapChan <- Tap{Timestamp: ts, Note: note, Velocity: velocity, Channel: channel}:
	default:
	}
}

func (ti *TapInput) ID() string {
	return ti.id
}

func (ti *TapInput) Taps() <-chan Tap {
	return ti.tapChan
}

func (ti *TapInput) Close() error {
	if ti.stopFunc != nil {
		ti.stopFunc()
	}

	ti.mu.Lock()
	defer ti.mu.Unlock()
	if !ti.closed {
		ti.closed = true
		close(ti.tapChan)
	}
	return nil
}
