package model

// EngineStatus is a read-only snapshot of the chord engine for
// displays and the status endpoint.
type EngineStatus struct {
	ChordName    string   `json:"chordName"`
	ChordType    string   `json:"chordType"`
	Inversion    int      `json:"inversion"`
	Spread       float64  `json:"spread"`
	Notes        Notes    `json:"notes"`
	NoteNames    []string `json:"noteNames"`
	KeyMode      string   `json:"keyMode,omitempty"`
	KeyRoot      string   `json:"keyRoot,omitempty"`
	VoiceLeading bool     `json:"voiceLeading"`
}

// LooperStatus mirrors the recorder for the same consumers.
type LooperStatus struct {
	State      string  `json:"state"`
	NumLayers  int     `json:"numLayers"`
	LoopLength float64 `json:"loopLengthSeconds"`
}
