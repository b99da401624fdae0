package midi

// Tap is one onset reported by a MIDI input, stamped on arrival with
// metronome.Now so it can be compared against scheduled steps.
type Tap struct {
	Timestamp float64
	Note      uint8
	Velocity  uint8
	Channel   uint8
}

// DeviceEvent is emitted when tap inputs connect/disconnect
type DeviceEvent struct {
	Type       DeviceEventType
	Controller Controller
	ID         string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

func (t DeviceEventType) String() string {
	if t == DeviceConnected {
		return "connected"
	}
	return "disconnected"
}
