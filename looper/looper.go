// Package looper records timestamped note events into layers and
// replays them on a loop, with overdubbing. One record-toggle input
// drives the whole take lifecycle; a background scheduler goroutine
// owns playback.
package looper

import (
	"fmt"
	"log"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jsphweid/orchid/model"
	"github.com/jsphweid/orchid/synth"
)

type State string

const (
	Idle        State = "idle"
	Recording   State = "recording"
	Playing     State = "playing"
	Paused      State = "paused"
	Overdubbing State = "overdubbing"
)

// Playback channel allocation: 0 is the live channel, 9 is drums, the
// pool in between carries loop layers.
const (
	LiveChannel uint8 = 0
	DrumChannel uint8 = 9
)

var layerChannels = []uint8{1, 2, 3, 4, 5, 6, 7, 8}

// How long stopping playback waits for the scheduler before declaring
// it stuck.
const schedulerJoinTimeout = 2 * time.Second

// Layer is one recorded take. Sealed layers are immutable; only
// whole-layer removal (undo/clear) touches them afterwards.
type Layer struct {
	ID      string
	Program uint8
	Events  []model.LoopEvent
}

func newLayer(program uint8) *Layer {
	return &Layer{ID: uuid.NewString(), Program: program}
}

type Looper struct {
	out synth.Output

	mu          sync.Mutex
	state       State
	layers      []*Layer
	loopLength  time.Duration // fixed by the first completed take
	recordStart time.Time
	current     *Layer

	// snapshot holds an immutable copy of layers for the scheduler,
	// so playback dispatch never contends with the control path.
	snapshot atomic.Value // []*Layer

	stopC chan struct{}
	doneC chan struct{}
}

func New(out synth.Output) *Looper {
	l := &Looper{out: out, state: Idle}
	l.snapshot.Store([]*Layer(nil))
	return l
}

// ToggleRecord is the single record input. currentProgram tags the
// opened layer with the instrument active when recording begins.
func (l *Looper) ToggleRecord(currentProgram uint8) State {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch l.state {
	case Idle:
		l.openLayer(currentProgram)
		l.state = Recording

	case Recording:
		l.sealLayer()
		l.loopLength = time.Since(l.recordStart)
		fmt.Printf("Loop recorded (%.1fs)\n", l.loopLength.Seconds())
		l.startScheduler()
		l.state = Playing

	case Playing:
		l.openLayer(currentProgram)
		l.state = Overdubbing

	case Overdubbing:
		l.sealLayer()
		l.state = Playing

	case Paused:
		l.openLayer(currentProgram)
		l.startScheduler()
		l.state = Overdubbing
	}
	return l.state
}

// TogglePlayPause pauses or resumes playback. Pausing seals any open
// overdub layer so played notes are never lost.
func (l *Looper) TogglePlayPause() State {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch l.state {
	case Playing, Overdubbing:
		if l.state == Overdubbing {
			l.sealLayer()
		}
		l.stopScheduler()
		l.state = Paused

	case Paused:
		l.startScheduler()
		l.state = Playing
	}
	return l.state
}

// UndoLayer drops the most recent sealed layer. When none remain the
// looper resets completely.
func (l *Looper) UndoLayer() State {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.layers) == 0 {
		return l.state
	}
	l.layers = l.layers[:len(l.layers)-1]
	l.publishLayers()
	fmt.Printf("Undo layer (%v remaining)\n", len(l.layers))

	if len(l.layers) == 0 {
		l.stopScheduler()
		l.loopLength = 0
		l.current = nil
		l.state = Idle
	}
	return l.state
}

// ClearAll discards every layer, including any in-progress take.
func (l *Looper) ClearAll() State {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.stopScheduler()
	l.current = nil
	l.layers = nil
	l.publishLayers()
	l.loopLength = 0
	l.state = Idle
	fmt.Println("Loop cleared")
	return l.state
}

// RecordEvent appends to the open layer; a no-op while none is open.
// Timestamps wrap modulo the loop length once it is fixed, so overdub
// events land at their phase within the loop.
func (l *Looper) RecordEvent(kind model.EventKind, channel, note, velocity, program uint8) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.current == nil {
		return
	}
	t := time.Since(l.recordStart).Seconds()
	if l.loopLength > 0 {
		t = math.Mod(t, l.loopLength.Seconds())
	}
	l.current.Events = append(l.current.Events, model.LoopEvent{
		Offset:   t,
		Kind:     kind,
		Channel:  channel,
		Note:     note,
		Velocity: velocity,
		Program:  program,
	})
}

func (l *Looper) IsRecording() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state == Recording || l.state == Overdubbing
}

func (l *Looper) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Layers returns the sealed layers as of now.
func (l *Looper) Layers() []*Layer {
	return l.snapshot.Load().([]*Layer)
}

// LoopLength is the fixed loop duration, zero until the first take
// completes.
func (l *Looper) LoopLength() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loopLength
}

func (l *Looper) Status() model.LooperStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	return model.LooperStatus{
		State:      string(l.state),
		NumLayers:  len(l.layers),
		LoopLength: l.loopLength.Seconds(),
	}
}

// Close stops playback and silences everything; layers are kept.
func (l *Looper) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.current = nil
	l.stopScheduler()
	if l.state == Playing || l.state == Overdubbing || l.state == Recording {
		l.state = Paused
	}
}

// --- internal, callers hold l.mu ---

func (l *Looper) openLayer(program uint8) {
	l.current = newLayer(program)
	l.recordStart = time.Now()
}

// sealLayer moves the open layer into the layer list. A take with no
// events is discarded, never appended.
func (l *Looper) sealLayer() {
	if l.current != nil && len(l.current.Events) > 0 {
		l.layers = append(l.layers, l.current)
		l.publishLayers()
	}
	l.current = nil
}

func (l *Looper) publishLayers() {
	l.snapshot.Store(append([]*Layer(nil), l.layers...))
}

func (l *Looper) startScheduler() {
	if l.stopC != nil || l.loopLength <= 0 {
		return
	}
	l.stopC = make(chan struct{})
	l.doneC = make(chan struct{})
	go l.playbackLoop(l.loopLength, l.stopC, l.doneC)
}

// stopScheduler joins the playback goroutine with a bounded wait. An
// unresponsive scheduler can keep emitting stray notes, so exceeding
// the bound is logged as an operational failure, not retried.
func (l *Looper) stopScheduler() {
	if l.stopC == nil {
		l.silenceAll()
		return
	}
	close(l.stopC)
	select {
	case <-l.doneC:
	case <-time.After(schedulerJoinTimeout):
		log.Printf("looper: scheduler did not stop within %v, abandoning it", schedulerJoinTimeout)
	}
	l.stopC = nil
	l.doneC = nil
	l.silenceAll()
}

// silenceAll sends all-notes-off on every channel playback can use.
func (l *Looper) silenceAll() {
	for _, ch := range layerChannels {
		l.out.AllNotesOff(ch)
	}
	l.out.AllNotesOff(DrumChannel)
}

// --- scheduler goroutine ---

type scheduledEvent struct {
	at      time.Duration
	channel uint8
	event   model.LoopEvent
}

// playbackLoop replays the merged layers forever until stopped. It
// never takes l.mu: the layer list arrives through the atomic
// snapshot, so dispatch cannot block the control path.
func (l *Looper) playbackLoop(loopLength time.Duration, stopC <-chan struct{}, doneC chan<- struct{}) {
	defer close(doneC)
	defer l.silenceAll()

	for {
		select {
		case <-stopC:
			return
		default:
		}

		loopStart := time.Now()
		layers := l.snapshot.Load().([]*Layer)

		events, channelProgram := mergeLayers(layers)

		// Prime each layer channel with its layer's program.
		for ch, program := range channelProgram {
			l.out.ProgramSelect(ch, program)
		}

		for _, se := range events {
			if !l.waitUntil(loopStart.Add(se.at), stopC) {
				return
			}

			ev := se.event
			if ev.Channel != DrumChannel && ev.Program != channelProgram[se.channel] {
				l.out.ProgramSelect(se.channel, ev.Program)
				channelProgram[se.channel] = ev.Program
			}
			switch ev.Kind {
			case model.NoteOn:
				l.out.NoteOn(se.channel, ev.Note, ev.Velocity)
			case model.NoteOff:
				l.out.NoteOff(se.channel, ev.Note)
			}
		}

		// Pad out the remainder of the loop period.
		if !l.waitUntil(loopStart.Add(loopLength), stopC) {
			return
		}
		if len(events) > 0 {
			l.silenceAll()
		}
	}
}

// mergeLayers flattens the layers into one timestamp-ascending event
// list. Each layer plays on its own channel from the pool, cycling
// when layers outnumber channels; drum events always stay on the drum
// channel. Ties keep per-layer recording order.
func mergeLayers(layers []*Layer) ([]scheduledEvent, map[uint8]uint8) {
	var events []scheduledEvent
	channelProgram := make(map[uint8]uint8)

	for i, layer := range layers {
		ch := layerChannels[i%len(layerChannels)]
		if _, ok := channelProgram[ch]; !ok {
			channelProgram[ch] = layer.Program
		}
		for _, ev := range layer.Events {
			playCh := ch
			if ev.Channel == DrumChannel {
				playCh = DrumChannel
			}
			events = append(events, scheduledEvent{
				at:      time.Duration(ev.Offset * float64(time.Second)),
				channel: playCh,
				event:   ev,
			})
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].at < events[j].at
	})
	return events, channelProgram
}

// waitUntil sleeps until target unless cancelled. Reports false on
// cancellation; the caller must bail out (cleanup runs via defer).
func (l *Looper) waitUntil(target time.Time, stopC <-chan struct{}) bool {
	d := time.Until(target)
	if d <= 0 {
		select {
		case <-stopC:
			return false
		default:
			return true
		}
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-stopC:
		return false
	case <-timer.C:
		return true
	}
}
