package theory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChordIntervalsAreWellFormed(t *testing.T) {
	assert := assert.New(t)
	for name, ivs := range ChordIntervals {
		assert.NotEmpty(ivs, name)
		assert.Equal(0, ivs[0], name)
		for i := 1; i < len(ivs); i++ {
			assert.Greater(ivs[i], ivs[i-1], name)
		}
	}
}

func TestScalesHaveSevenDegrees(t *testing.T) {
	assert := assert.New(t)
	for name, scale := range Scales {
		assert.Len(scale, 7, name)
		assert.Equal(0, scale[0], name)
	}
}

func TestIntervalsFallsBackToMajor(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(ChordIntervals["major"], Intervals("nonsense"))
	assert.Equal(ChordIntervals["min7"], Intervals("min7"))
}

func TestChordName(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("C", ChordName(0, "major", 0))
	assert.Equal("Am", ChordName(9, "minor", 0))
	assert.Equal("Cmaj7", ChordName(0, "maj7", 0))
	assert.Equal("F#7/1st", ChordName(6, "dom7", 1))
	assert.Equal("G5/3rd", ChordName(7, "power", 3))
}

func TestNoteName(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("C4", NoteName(60))
	assert.Equal("A#3", NoteName(58))
	assert.Equal("C-1", NoteName(0))
	assert.Equal("G9", NoteName(127))
}
