// Package instrument holds the curated General MIDI bank a single
// knob sweeps through.
package instrument

import "github.com/jsphweid/orchid/util"

type Instrument struct {
	Program uint8
	Name    string
}

var List = []Instrument{
	{0, "Acoustic Grand Piano"},
	{4, "Electric Piano"},
	{19, "Organ"},
	{48, "Strings Ensemble"},
	{89, "Synth Pad"},
	{80, "Synth Lead"},
	{25, "Acoustic Guitar"},
	{27, "Electric Guitar Clean"},
	{30, "Electric Guitar Distorted"},
	{32, "Acoustic Bass"},
	{36, "Slap Bass"},
	{56, "Trumpet"},
	{65, "Saxophone"},
	{73, "Flute"},
	{52, "Choir Aahs"},
	{61, "Brass Section"},
}

// IndexForCC maps a controller value 0-127 onto the bank.
func IndexForCC(value uint8) int {
	idx := int(value) * len(List) / 128
	return util.Min(idx, len(List)-1)
}

func Get(index int) Instrument {
	return List[util.Clamp(index, 0, len(List)-1)]
}

func Program(index int) uint8 {
	return Get(index).Program
}
