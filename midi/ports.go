package midi

import (
	"errors"
	"fmt"
	"strings"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// scanTimeout bounds port enumeration; CoreMIDI can hang
const scanTimeout = 3 * time.Second

// ErrScanTimeout is returned when the MIDI driver does not answer
var ErrScanTimeout = errors.New("midi port scan timed out")

// Ports is a snapshot of the system's MIDI ports
type Ports struct {
	In  []string
	Out []string
}

// ListPorts enumerates input and output ports with a timeout
func ListPorts() (Ports, error) {
	type result struct {
		ins  []drivers.In
		outs []drivers.Out
	}
	ch := make(chan result, 1)
	go func() {
		ch <- result{ins: gomidi.GetInPorts(), outs: gomidi.GetOutPorts()}
	}()

	select {
	case r := <-ch:
		var p Ports
		for _, in := range r.ins {
			p.In = append(p.In, in.String())
		}
		for _, out := range r.outs {
			p.Out = append(p.Out, out.String())
		}
		return p, nil
	case <-time.After(scanTimeout):
		return Ports{}, ErrScanTimeout
	}
}

// InPortNames lists input port names
func InPortNames() ([]string, error) {
	p, err := ListPorts()
	return p.In, err
}

// FindOut returns the first output port whose name contains match
// (case-insensitive), or the first port when match is empty
func FindOut(match string) (drivers.Out, error) {
	outs := gomidi.GetOutPorts()
	if len(outs) == 0 {
		return nil, errors.New("no MIDI output ports")
	}
	if match == "" {
		return outs[0], nil
	}
	want := strings.ToLower(match)
	for _, out := range outs {
		if strings.Contains(strings.ToLower(out.String()), want) {
			return out, nil
		}
	}
	return nil, fmt.Errorf("no MIDI output matching %q", match)
}

// Close releases the MIDI driver
func Close() {
	gomidi.CloseDriver()
}
