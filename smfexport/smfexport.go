// Package smfexport renders recorded loop layers to a Standard MIDI
// File so a loop can leave the instrument.
package smfexport

import (
	"io"
	"sort"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/jsphweid/orchid/looper"
	"github.com/jsphweid/orchid/model"
)

const (
	ticksPerQuarter = 960
	exportTempo     = 120.0
)

// Render builds an SMF with one track per layer. Event offsets are
// wall-clock seconds; they are written against a fixed 120 BPM tempo
// so DAWs place them at the recorded times.
func Render(layers []*looper.Layer) *smf.SMF {
	var res smf.SMF
	clock := smf.MetricTicks(ticksPerQuarter)
	res.TimeFormat = clock

	for i, layer := range layers {
		ch := uint8(i%8 + 1)

		events := append([]model.LoopEvent(nil), layer.Events...)
		sort.SliceStable(events, func(a, b int) bool {
			return events[a].Offset < events[b].Offset
		})

		var tr smf.Track
		tr.Add(0, smf.MetaTempo(exportTempo))
		tr.Add(0, midi.ProgramChange(ch, layer.Program))

		var lastTicks uint32
		for _, ev := range events {
			abs := clock.Ticks(exportTempo, time.Duration(ev.Offset*float64(time.Second)))
			delta := abs - lastTicks
			lastTicks = abs

			playCh := ch
			if ev.Channel == looper.DrumChannel {
				playCh = looper.DrumChannel
			}
			switch ev.Kind {
			case model.NoteOn:
				tr.Add(delta, midi.NoteOn(playCh, ev.Note, ev.Velocity))
			case model.NoteOff:
				tr.Add(delta, midi.NoteOff(playCh, ev.Note))
			}
		}
		tr.Close(0)
		res.Add(tr)
	}

	return &res
}

// Write renders layers and writes the file to w.
func Write(w io.Writer, layers []*looper.Layer) error {
	_, err := Render(layers).WriteTo(w)
	return err
}
