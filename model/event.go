package model

type Notes = []uint8

type EventKind uint8

const (
	NoteOn EventKind = iota
	NoteOff
)

// ChordNote is one voice of a generated chord.
type ChordNote struct {
	Note     uint8
	Velocity uint8
}

// LoopEvent is one recorded MIDI event, immutable once recorded.
// Offset is seconds from loop start.
type LoopEvent struct {
	Offset   float64
	Kind     EventKind
	Channel  uint8
	Note     uint8
	Velocity uint8
	Program  uint8
}
