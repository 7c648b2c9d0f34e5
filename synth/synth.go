// Package synth is the sound-output boundary. The core talks to an
// Output; whether that is a real MIDI port or a terminal is decided
// once at startup.
package synth

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"github.com/jsphweid/orchid/theory"
)

// Param names for SetParam.
const (
	ParamVolume     = "volume"
	ParamReverb     = "reverb"
	ParamModulation = "modulation"
)

// Controller numbers behind the params, plus all-notes-off.
const (
	ccModulation  = 1
	ccVolume      = 7
	ccReverbSend  = 91
	ccAllNotesOff = 123
)

type Output interface {
	NoteOn(channel, note, velocity uint8)
	NoteOff(channel, note uint8)
	ProgramSelect(channel, program uint8)
	AllNotesOff(channel uint8)
	SetParam(channel uint8, param string, value uint8)
}

// PortOutput sends to a real MIDI output port.
type PortOutput struct {
	out drivers.Out
}

func NewPortOutput(out drivers.Out) *PortOutput {
	return &PortOutput{out: out}
}

func (p *PortOutput) send(msg midi.Message) {
	if err := p.out.Send(msg); err != nil {
		fmt.Printf("midi send failed: %v\n", err)
	}
}

func (p *PortOutput) NoteOn(channel, note, velocity uint8) {
	p.send(midi.NoteOn(channel, note, velocity))
}

func (p *PortOutput) NoteOff(channel, note uint8) {
	p.send(midi.NoteOff(channel, note))
}

func (p *PortOutput) ProgramSelect(channel, program uint8) {
	p.send(midi.ProgramChange(channel, program))
}

func (p *PortOutput) AllNotesOff(channel uint8) {
	p.send(midi.ControlChange(channel, ccAllNotesOff, 0))
}

func (p *PortOutput) SetParam(channel uint8, param string, value uint8) {
	switch param {
	case ParamVolume:
		p.send(midi.ControlChange(channel, ccVolume, value))
	case ParamReverb:
		p.send(midi.ControlChange(channel, ccReverbSend, value))
	case ParamModulation:
		p.send(midi.ControlChange(channel, ccModulation, value))
	}
}

// LogOutput prints instead of sounding. Used when no output port is
// available and in tests.
type LogOutput struct {
	Quiet bool
}

func NewLogOutput() *LogOutput {
	return &LogOutput{}
}

func (l *LogOutput) NoteOn(channel, note, velocity uint8) {
	if !l.Quiet {
		fmt.Printf("  [ch %2d] on  %v vel=%v\n", channel, theory.NoteName(note), velocity)
	}
}

func (l *LogOutput) NoteOff(channel, note uint8) {
	if !l.Quiet {
		fmt.Printf("  [ch %2d] off %v\n", channel, theory.NoteName(note))
	}
}

func (l *LogOutput) ProgramSelect(channel, program uint8) {
	if !l.Quiet {
		fmt.Printf("  [ch %2d] program %v\n", channel, program)
	}
}

func (l *LogOutput) AllNotesOff(channel uint8) {}

func (l *LogOutput) SetParam(channel uint8, param string, value uint8) {}
