// Package engine turns single played notes into full chord voicings.
// An Engine is one performer's session: it owns the chord type,
// inversion, spread and key-mode settings and the voicing state the
// resolver leads from.
package engine

import (
	"sort"
	"sync"

	"github.com/jsphweid/orchid/config"
	"github.com/jsphweid/orchid/model"
	"github.com/jsphweid/orchid/theory"
	"github.com/jsphweid/orchid/util"
	"github.com/jsphweid/orchid/voicelead"
)

type Engine struct {
	mu sync.Mutex

	rootNote     int // -1 until a note is played
	chordType    string
	inversion    int
	spread       float64
	voiceLeading bool
	anchorOctave int
	velocity     uint8

	keyMode string // "" = free chromatic mode
	keyRoot int

	lastVoicing    []int
	currentVoicing []int
}

func New(cfg config.Chord) *Engine {
	e := &Engine{
		rootNote:     -1,
		chordType:    cfg.DefaultType,
		anchorOctave: cfg.DefaultOctave,
		voiceLeading: cfg.VoiceLeading,
		velocity:     100,
	}
	if !theory.IsChordType(e.chordType) {
		e.chordType = "major"
	}
	if e.anchorOctave <= 0 {
		e.anchorOctave = 4
	}
	if cfg.KeyMode != "" && theory.IsScale(cfg.KeyMode) {
		e.keyMode = cfg.KeyMode
		e.keyRoot = ((cfg.KeyRoot%12)+12)%12
	}
	return e
}

// SetChordType accepts only vocabulary members; anything else is a
// no-op and reports false.
func (e *Engine) SetChordType(chordType string) bool {
	if !theory.IsChordType(chordType) {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.chordType = chordType
	return true
}

// SetInversion maps a controller value 0-127 to inversion 0-3.
func (e *Engine) SetInversion(ccValue uint8) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.inversion = util.Min(int(ccValue)/32, 3)
}

// SetSpread maps a controller value 0-127 to spread 0.0-1.0.
func (e *Engine) SetSpread(ccValue uint8) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.spread = float64(ccValue) / 127.0
}

// SetKeyMode enables diatonic chord generation; an unrecognized scale
// name is rejected.
func (e *Engine) SetKeyMode(keyRoot int, scaleName string) bool {
	if !theory.IsScale(scaleName) {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.keyMode = scaleName
	e.keyRoot = ((keyRoot%12)+12)%12
	return true
}

func (e *Engine) ClearKeyMode() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.keyMode = ""
	e.keyRoot = 0
}

func (e *Engine) SetVoiceLeading(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.voiceLeading = enabled
}

// GenerateChord builds the voicing for a played note. Output notes are
// always clamped to 0-127; input is taken as-is.
func (e *Engine) GenerateChord(midiNote, velocity uint8) []model.ChordNote {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rootNote = int(midiNote)
	e.velocity = velocity
	return e.generate()
}

// Regenerate replays the current chord with the latest settings, for
// control changes arriving while a chord is held. Nil when nothing is
// sounding.
func (e *Engine) Regenerate() []model.ChordNote {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.rootNote < 0 || len(e.currentVoicing) == 0 {
		return nil
	}
	return e.generate()
}

func (e *Engine) generate() []model.ChordNote {
	root := e.rootNote
	rootPC := root % 12

	intervals := theory.Intervals(e.effectiveChordType(rootPC))

	pitchClasses := make([]int, 0, len(intervals))
	for _, iv := range intervals {
		pitchClasses = append(pitchClasses, (rootPC+iv)%12)
	}

	var notes []int
	if e.voiceLeading && len(e.lastVoicing) > 0 {
		notes = voicelead.Resolve(e.lastVoicing, pitchClasses, e.anchorOctave)
	} else {
		// First chord: build around the played note's octave.
		for _, pc := range pitchClasses {
			note := (root/12)*12 + pc
			for note < root-6 {
				note += 12
			}
			for note > root+18 {
				note -= 12
			}
			notes = append(notes, note)
		}
		sort.Ints(notes)
	}

	if e.inversion > 0 {
		notes = voicelead.ApplyInversion(notes, e.inversion)
	}
	if e.spread > 0.05 {
		notes = voicelead.ApplySpread(notes, e.spread)
	}

	clamped := make([]int, 0, len(notes))
	chord := make([]model.ChordNote, 0, len(notes))
	for _, n := range notes {
		n = util.Clamp(n, 0, 127)
		clamped = append(clamped, n)
		chord = append(chord, model.ChordNote{Note: uint8(n), Velocity: e.velocity})
	}
	e.lastVoicing = clamped
	e.currentVoicing = clamped
	return chord
}

// StopChord returns the sounding notes and clears them.
func (e *Engine) StopChord() model.Notes {
	e.mu.Lock()
	defer e.mu.Unlock()
	notes := make(model.Notes, 0, len(e.currentVoicing))
	for _, n := range e.currentVoicing {
		notes = append(notes, uint8(n))
	}
	e.currentVoicing = nil
	return notes
}

// effectiveChordType is the configured type, or the diatonic quality
// for the root when key mode is on. Callers hold e.mu.
func (e *Engine) effectiveChordType(rootPC int) string {
	if e.keyMode == "" {
		return e.chordType
	}
	return e.diatonicChordType(rootPC)
}

// diatonicChordType maps a root pitch class to the chord quality of
// its scale degree. Non-scale roots borrow the nearest degree by
// circular distance, first occurrence winning ties.
func (e *Engine) diatonicChordType(rootPC int) string {
	scale := theory.Scales[e.keyMode]
	interval := ((rootPC-e.keyRoot)%12+12)%12

	degree := -1
	for i, s := range scale {
		if s == interval {
			degree = i
			break
		}
	}
	if degree < 0 {
		best := 12
		for i, s := range scale {
			d := util.Min(util.Abs(s-interval), 12-util.Abs(s-interval))
			if d < best {
				best = d
				degree = i
			}
		}
	}

	if e.keyMode == "minor" {
		return theory.MinorDiatonic[degree%7]
	}
	return theory.MajorDiatonic[degree%7]
}

// ChordName renders the current chord symbol, e.g. "Cmaj7" or "Dm/1st".
func (e *Engine) ChordName() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.chordName()
}

func (e *Engine) chordName() string {
	if e.rootNote < 0 {
		return ""
	}
	rootPC := e.rootNote % 12
	return theory.ChordName(rootPC, e.effectiveChordType(rootPC), e.inversion)
}

// Status snapshots the engine for displays and the status endpoint.
func (e *Engine) Status() model.EngineStatus {
	e.mu.Lock()
	defer e.mu.Unlock()

	notes := make(model.Notes, 0, len(e.currentVoicing))
	names := make([]string, 0, len(e.currentVoicing))
	for _, n := range e.currentVoicing {
		notes = append(notes, uint8(n))
		names = append(names, theory.NoteName(uint8(n)))
	}

	s := model.EngineStatus{
		ChordName:    e.chordName(),
		ChordType:    e.chordType,
		Inversion:    e.inversion,
		Spread:       e.spread,
		Notes:        notes,
		NoteNames:    names,
		KeyMode:      e.keyMode,
		VoiceLeading: e.voiceLeading,
	}
	if e.keyMode != "" {
		s.KeyRoot = theory.NoteNames[e.keyRoot]
	}
	return s
}
