package looper

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jsphweid/orchid/model"
)

type outCall struct {
	kind    string // "on", "off", "program", "allOff"
	channel uint8
	note    uint8
	at      time.Time
}

// fakeOutput records every dispatch with its wall-clock time.
type fakeOutput struct {
	mu    sync.Mutex
	calls []outCall
}

func (f *fakeOutput) add(kind string, channel, note uint8) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, outCall{kind: kind, channel: channel, note: note, at: time.Now()})
}

func (f *fakeOutput) NoteOn(channel, note, velocity uint8) { f.add("on", channel, note) }
func (f *fakeOutput) NoteOff(channel, note uint8)          { f.add("off", channel, note) }
func (f *fakeOutput) ProgramSelect(channel, program uint8) { f.add("program", channel, program) }
func (f *fakeOutput) AllNotesOff(channel uint8)            { f.add("allOff", channel, 0) }
func (f *fakeOutput) SetParam(ch uint8, p string, v uint8) {}

func (f *fakeOutput) snapshot() []outCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]outCall(nil), f.calls...)
}

func (f *fakeOutput) noteOns(note uint8) []outCall {
	var res []outCall
	for _, c := range f.snapshot() {
		if c.kind == "on" && c.note == note {
			res = append(res, c)
		}
	}
	return res
}

func TestRecordEventIgnoredWhileNoLayerIsOpen(t *testing.T) {
	l := New(&fakeOutput{})
	l.RecordEvent(model.NoteOn, LiveChannel, 60, 100, 0)
	assert.Empty(t, l.Layers())
	assert.Equal(t, Idle, l.State())
}

func TestEmptyTakeIsDiscarded(t *testing.T) {
	assert := assert.New(t)
	l := New(&fakeOutput{})
	assert.Equal(Recording, l.ToggleRecord(0))
	time.Sleep(20 * time.Millisecond)
	assert.Equal(Playing, l.ToggleRecord(0))
	assert.Empty(l.Layers())
	l.ClearAll()
}

func TestRecordSealPlaybackUndoScenario(t *testing.T) {
	assert := assert.New(t)
	out := &fakeOutput{}
	l := New(out)

	assert.Equal(Recording, l.ToggleRecord(4))
	time.Sleep(10 * time.Millisecond)
	l.RecordEvent(model.NoteOn, LiveChannel, 60, 100, 4)
	time.Sleep(100 * time.Millisecond)
	l.RecordEvent(model.NoteOn, LiveChannel, 64, 100, 4)
	time.Sleep(40 * time.Millisecond)

	assert.Equal(Playing, l.ToggleRecord(4))
	loopLength := l.LoopLength()
	assert.Greater(loopLength, 100*time.Millisecond)
	assert.Len(l.Layers(), 1)
	assert.Equal(uint8(4), l.Layers()[0].Program)

	// Let it play for a bit over two loop periods.
	time.Sleep(2*loopLength + 50*time.Millisecond)

	first := out.noteOns(60)
	second := out.noteOns(64)
	assert.GreaterOrEqual(len(first), 2)
	assert.GreaterOrEqual(len(second), 2)

	// The two notes re-emit with their recorded spacing, and the loop
	// period separates replays of the same note.
	spacing := second[0].at.Sub(first[0].at)
	assert.InDelta(100, float64(spacing.Milliseconds()), 50)
	period := first[1].at.Sub(first[0].at)
	assert.InDelta(float64(loopLength.Milliseconds()), float64(period.Milliseconds()), 60)

	// Layers play on a pool channel, not the live channel.
	assert.Equal(uint8(1), first[0].channel)

	assert.Equal(Idle, l.UndoLayer())
	assert.Empty(l.Layers())
	assert.Equal(time.Duration(0), l.LoopLength())

	// Stopping silenced every playback channel including drums.
	silenced := make(map[uint8]bool)
	for _, c := range out.snapshot() {
		if c.kind == "allOff" {
			silenced[c.channel] = true
		}
	}
	for _, ch := range layerChannels {
		assert.True(silenced[ch], "channel %v", ch)
	}
	assert.True(silenced[DrumChannel])

	// No more playback after stopping.
	n := len(out.snapshot())
	time.Sleep(loopLength + 20*time.Millisecond)
	assert.Len(out.snapshot(), n)
}

func TestLayerProgramIsPrimedOnPlayback(t *testing.T) {
	assert := assert.New(t)
	out := &fakeOutput{}
	l := New(out)

	l.ToggleRecord(19)
	l.RecordEvent(model.NoteOn, LiveChannel, 55, 90, 19)
	time.Sleep(60 * time.Millisecond)
	l.ToggleRecord(19)
	time.Sleep(30 * time.Millisecond)
	l.ClearAll()

	var primed bool
	for _, c := range out.snapshot() {
		if c.kind == "program" && c.channel == 1 && c.note == 19 {
			primed = true
		}
	}
	assert.True(primed)
}

func TestEventProgramChangeIsIssuedBeforeItsNote(t *testing.T) {
	assert := assert.New(t)
	out := &fakeOutput{}
	l := New(out)

	// One take, two notes recorded under different instruments.
	l.ToggleRecord(0)
	l.RecordEvent(model.NoteOn, LiveChannel, 60, 100, 0)
	time.Sleep(60 * time.Millisecond)
	l.RecordEvent(model.NoteOn, LiveChannel, 64, 100, 19)
	time.Sleep(20 * time.Millisecond)
	l.ToggleRecord(0)

	time.Sleep(l.LoopLength() + 40*time.Millisecond)
	l.ClearAll()

	primed, changed, noteOn := -1, -1, -1
	for i, c := range out.snapshot() {
		switch {
		case c.kind == "program" && c.channel == 1 && c.note == 0 && primed < 0:
			primed = i
		case c.kind == "program" && c.channel == 1 && c.note == 19 && changed < 0:
			changed = i
		case c.kind == "on" && c.note == 64 && noteOn < 0:
			noteOn = i
		}
	}
	assert.GreaterOrEqual(primed, 0)
	assert.GreaterOrEqual(changed, 0)
	assert.GreaterOrEqual(noteOn, 0)

	// Iteration-start priming first, then the switch to the second
	// note's program lands before that note sounds.
	assert.Less(primed, changed)
	assert.Less(changed, noteOn)
}

func TestOverdubAddsSecondLayerOnOwnChannel(t *testing.T) {
	assert := assert.New(t)
	out := &fakeOutput{}
	l := New(out)

	l.ToggleRecord(0)
	l.RecordEvent(model.NoteOn, LiveChannel, 60, 100, 0)
	time.Sleep(80 * time.Millisecond)
	assert.Equal(Playing, l.ToggleRecord(0))

	assert.Equal(Overdubbing, l.ToggleRecord(4))
	time.Sleep(10 * time.Millisecond)
	l.RecordEvent(model.NoteOn, LiveChannel, 72, 100, 4)
	assert.Equal(Playing, l.ToggleRecord(4))

	layers := l.Layers()
	assert.Len(layers, 2)
	// Overdub offsets stay within the loop period.
	for _, ev := range layers[1].Events {
		assert.Less(ev.Offset, l.LoopLength().Seconds())
	}

	time.Sleep(2*l.LoopLength() + 50*time.Millisecond)
	overdub := out.noteOns(72)
	assert.NotEmpty(overdub)
	assert.Equal(uint8(2), overdub[0].channel)

	l.ClearAll()
}

func TestPauseStopsPlaybackAndSealsOpenLayer(t *testing.T) {
	assert := assert.New(t)
	out := &fakeOutput{}
	l := New(out)

	l.ToggleRecord(0)
	l.RecordEvent(model.NoteOn, LiveChannel, 60, 100, 0)
	time.Sleep(60 * time.Millisecond)
	l.ToggleRecord(0)

	assert.Equal(Overdubbing, l.ToggleRecord(0))
	l.RecordEvent(model.NoteOn, LiveChannel, 67, 100, 0)
	assert.Equal(Paused, l.TogglePlayPause())
	assert.Len(l.Layers(), 2) // the open overdub layer was sealed

	n := len(out.snapshot())
	time.Sleep(100 * time.Millisecond)
	assert.Len(out.snapshot(), n)

	assert.Equal(Playing, l.TogglePlayPause())
	l.ClearAll()
}

func TestRecordToggleWhilePausedResumesAsOverdub(t *testing.T) {
	assert := assert.New(t)
	l := New(&fakeOutput{})

	l.ToggleRecord(0)
	l.RecordEvent(model.NoteOn, LiveChannel, 60, 100, 0)
	time.Sleep(50 * time.Millisecond)
	l.ToggleRecord(0)
	l.TogglePlayPause()
	assert.Equal(Paused, l.State())

	assert.Equal(Overdubbing, l.ToggleRecord(0))
	assert.True(l.IsRecording())
	l.ClearAll()
}

func TestClearWhileOverdubbingDiscardsEverything(t *testing.T) {
	assert := assert.New(t)
	l := New(&fakeOutput{})

	l.ToggleRecord(0)
	l.RecordEvent(model.NoteOn, LiveChannel, 60, 100, 0)
	time.Sleep(50 * time.Millisecond)
	l.ToggleRecord(0)
	l.ToggleRecord(0)
	l.RecordEvent(model.NoteOn, LiveChannel, 64, 100, 0)
	assert.Equal(Overdubbing, l.State())

	assert.Equal(Idle, l.ClearAll())
	assert.Empty(l.Layers())
	assert.Equal(time.Duration(0), l.LoopLength())
	assert.False(l.IsRecording())
}

func TestUndoLeavesRemainingLayersPlaying(t *testing.T) {
	assert := assert.New(t)
	l := New(&fakeOutput{})

	l.ToggleRecord(0)
	l.RecordEvent(model.NoteOn, LiveChannel, 60, 100, 0)
	time.Sleep(50 * time.Millisecond)
	l.ToggleRecord(0)
	l.ToggleRecord(0)
	l.RecordEvent(model.NoteOn, LiveChannel, 64, 100, 0)
	l.ToggleRecord(0)
	assert.Len(l.Layers(), 2)

	assert.Equal(Playing, l.UndoLayer())
	assert.Len(l.Layers(), 1)
	l.ClearAll()
}
