// Package midiport finds MIDI ports by configured name, falling back
// to the first available port the way hardware setups usually want.
package midiport

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

func FindInput(name string) (drivers.In, error) {
	if name != "" {
		if in, err := midi.FindInPort(name); err == nil {
			return in, nil
		}
	}
	in, err := midi.InPort(0)
	if err != nil {
		return nil, fmt.Errorf("no MIDI input ports available: %w", err)
	}
	if name != "" {
		fmt.Printf("'%v' not found, using: %v\n", name, in.String())
	}
	return in, nil
}

func FindOutput(name string) (drivers.Out, error) {
	if name != "" {
		if out, err := midi.FindOutPort(name); err == nil {
			return out, nil
		}
	}
	out, err := midi.OutPort(0)
	if err != nil {
		return nil, fmt.Errorf("no MIDI output ports available: %w", err)
	}
	if name != "" {
		fmt.Printf("'%v' not found, using: %v\n", name, out.String())
	}
	return out, nil
}
