// Package config loads the instrument's JSON configuration, filling in
// defaults for anything the file leaves out. The core packages never
// touch files themselves; they take values from here at construction.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

type Config struct {
	MIDI  MIDI  `json:"midi"`
	Chord Chord `json:"chord"`
	Serve Serve `json:"serve"`
}

type MIDI struct {
	DeviceName string      `json:"deviceName"`
	CCMap      []CCBinding `json:"ccMap"`
}

// CCBinding maps one controller number to an action. Value is only
// meaningful for chordType buttons.
type CCBinding struct {
	CC     uint8  `json:"cc"`
	Action string `json:"action"`
	Value  string `json:"value,omitempty"`
}

// Actions a CCBinding may name.
const (
	ActionChordType     = "chordType"
	ActionInversion     = "inversion"
	ActionSpread        = "spread"
	ActionVolume        = "volume"
	ActionReverb        = "reverb"
	ActionInstrument    = "instrument"
	ActionLoopRecord    = "loopRecord"
	ActionLoopPlayPause = "loopPlayPause"
	ActionLoopUndo      = "loopUndo"
	ActionLoopClear     = "loopClear"
)

type Chord struct {
	DefaultType   string `json:"defaultType"`
	DefaultOctave int    `json:"defaultOctave"`
	VoiceLeading  bool   `json:"voiceLeading"`
	KeyMode       string `json:"keyMode,omitempty"`
	KeyRoot       int    `json:"keyRoot,omitempty"`
}

type Serve struct {
	Addr string `json:"addr"`
}

// Default mirrors the MPK Mini Play layout: bank A buttons pick chord
// types, bank A knobs shape the voicing, bank B pads drive the looper.
func Default() *Config {
	return &Config{
		MIDI: MIDI{
			DeviceName: "MPK Mini Play",
			CCMap: []CCBinding{
				{CC: 20, Action: ActionChordType, Value: "major"},
				{CC: 21, Action: ActionChordType, Value: "minor"},
				{CC: 22, Action: ActionChordType, Value: "sus2"},
				{CC: 23, Action: ActionChordType, Value: "sus4"},
				{CC: 24, Action: ActionChordType, Value: "dim"},
				{CC: 25, Action: ActionChordType, Value: "aug"},
				{CC: 26, Action: ActionChordType, Value: "dom7"},
				{CC: 27, Action: ActionChordType, Value: "maj7"},
				{CC: 70, Action: ActionInversion},
				{CC: 71, Action: ActionSpread},
				{CC: 72, Action: ActionVolume},
				{CC: 73, Action: ActionReverb},
				{CC: 74, Action: ActionInstrument},
				{CC: 105, Action: ActionLoopRecord},
				{CC: 106, Action: ActionLoopPlayPause},
				{CC: 107, Action: ActionLoopUndo},
				{CC: 108, Action: ActionLoopClear},
			},
		},
		Chord: Chord{
			DefaultType:   "major",
			DefaultOctave: 4,
			VoiceLeading:  true,
		},
		Serve: Serve{
			Addr: ":8123",
		},
	}
}

// Path resolves the config file location: explicit arg, then the
// ORCHID_CONFIG environment variable, then ./config.json.
func Path(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if p := os.Getenv("ORCHID_CONFIG"); p != "" {
		return p
	}
	return "./config.json"
}

// Load reads the config at path, decoding over defaults so missing
// keys keep their default values. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		fmt.Printf("No config at %v, using defaults\n", path)
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(cfg); err != nil {
		return nil, fmt.Errorf("could not parse config %v: %w", path, err)
	}
	return cfg, nil
}

// FindAction looks up what a CC number is bound to.
func (c *Config) FindAction(cc uint8) (action string, value string, ok bool) {
	for _, b := range c.MIDI.CCMap {
		if b.CC == cc {
			return b.Action, b.Value, true
		}
	}
	return "", "", false
}
