package theory

import "fmt"

var NoteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var NoteNamesFlat = [12]string{"C", "Db", "D", "Eb", "E", "F", "Gb", "G", "Ab", "A", "Bb", "B"}

// ChordIntervals maps a chord type to its semitone offsets from the root.
// First offset is always 0 and offsets strictly increase.
var ChordIntervals = map[string][]int{
	"major": {0, 4, 7},
	"minor": {0, 3, 7},
	"sus2":  {0, 2, 7},
	"sus4":  {0, 5, 7},
	"dim":   {0, 3, 6},
	"aug":   {0, 4, 8},
	"dom7":  {0, 4, 7, 10},
	"maj7":  {0, 4, 7, 11},
	"min7":  {0, 3, 7, 10},
	"dim7":  {0, 3, 6, 9},
	"aug7":  {0, 4, 8, 10},
	"add9":  {0, 4, 7, 14},
	"min9":  {0, 3, 7, 10, 14},
	"maj9":  {0, 4, 7, 11, 14},
	"power": {0, 7},
	"6":     {0, 4, 7, 9},
	"min6":  {0, 3, 7, 9},
	"9":     {0, 4, 7, 10, 14},
	"11":    {0, 4, 7, 10, 14, 17},
	"13":    {0, 4, 7, 10, 14, 21},
}

// chordDisplay maps a chord type to its suffix in chord symbols.
var chordDisplay = map[string]string{
	"major": "", "minor": "m", "sus2": "sus2", "sus4": "sus4",
	"dim": "dim", "aug": "aug", "dom7": "7", "maj7": "maj7",
	"min7": "m7", "dim7": "dim7", "aug7": "aug7", "add9": "add9",
	"min9": "m9", "maj9": "maj9", "power": "5", "6": "6",
	"min6": "m6", "9": "9", "11": "11", "13": "13",
}

// Scales holds the semitone patterns recognized by key mode.
var Scales = map[string][]int{
	"major":      {0, 2, 4, 5, 7, 9, 11},
	"minor":      {0, 2, 3, 5, 7, 8, 10},
	"dorian":     {0, 2, 3, 5, 7, 9, 10},
	"mixolydian": {0, 2, 4, 5, 7, 9, 10},
	"phrygian":   {0, 1, 3, 5, 7, 8, 10},
}

// Diatonic chord qualities by scale degree (I-VII).
var MajorDiatonic = [7]string{"major", "minor", "minor", "major", "major", "minor", "dim"}
var MinorDiatonic = [7]string{"minor", "dim", "major", "minor", "minor", "major", "major"}

func IsChordType(chordType string) bool {
	_, ok := ChordIntervals[chordType]
	return ok
}

func IsScale(scaleName string) bool {
	_, ok := Scales[scaleName]
	return ok
}

// Intervals returns the offsets for chordType, falling back to major
// so callers always get a playable chord.
func Intervals(chordType string) []int {
	if ivs, ok := ChordIntervals[chordType]; ok {
		return ivs
	}
	return ChordIntervals["major"]
}

// ChordName renders a chord symbol like "Cmaj7" or "F#m/1st".
func ChordName(rootPitchClass int, chordType string, inversion int) string {
	suffix, ok := chordDisplay[chordType]
	if !ok {
		suffix = chordType
	}
	name := NoteNames[rootPitchClass%12] + suffix
	switch inversion {
	case 1:
		name += "/1st"
	case 2:
		name += "/2nd"
	case 3:
		name += "/3rd"
	}
	return name
}

// NoteName renders a note like "C4" (middle C = C4 per GM convention).
func NoteName(note uint8) string {
	return fmt.Sprintf("%v%v", NoteNames[note%12], int(note)/12-1)
}
