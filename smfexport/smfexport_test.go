package smfexport

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jsphweid/orchid/looper"
	"github.com/jsphweid/orchid/model"
)

func testLayers() []*looper.Layer {
	return []*looper.Layer{
		{
			ID:      "a",
			Program: 0,
			Events: []model.LoopEvent{
				{Offset: 0.0, Kind: model.NoteOn, Channel: 0, Note: 60, Velocity: 100, Program: 0},
				{Offset: 0.5, Kind: model.NoteOff, Channel: 0, Note: 60, Program: 0},
			},
		},
		{
			ID:      "b",
			Program: 32,
			Events: []model.LoopEvent{
				{Offset: 0.25, Kind: model.NoteOn, Channel: 0, Note: 36, Velocity: 90, Program: 32},
				{Offset: 0.75, Kind: model.NoteOff, Channel: 0, Note: 36, Program: 32},
			},
		},
	}
}

func TestRenderProducesOneTrackPerLayer(t *testing.T) {
	assert := assert.New(t)
	s := Render(testLayers())
	assert.Len(s.Tracks, 2)
	for _, tr := range s.Tracks {
		// tempo + program change + note pair + end-of-track
		assert.GreaterOrEqual(len(tr), 5)
	}
}

func TestRenderEmptyLayerListIsValid(t *testing.T) {
	s := Render(nil)
	assert.Empty(t, s.Tracks)
}

func TestWriteEmitsSMFBytes(t *testing.T) {
	assert := assert.New(t)
	var buf bytes.Buffer
	err := Write(&buf, testLayers())
	assert.NoError(err)
	assert.Greater(buf.Len(), 0)
	assert.Equal("MThd", string(buf.Bytes()[:4]))
}
