package midi

// Controller is the interface for MIDI inputs used as onset sources
type Controller interface {
	ID() string

	// Onsets from the device; closed by Close
	Taps() <-chan Tap

	// Lifecycle
	Close() error
}
