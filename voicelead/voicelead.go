// Package voicelead picks octaves for a new chord's pitch classes so
// that the transition from the previous voicing moves each voice as
// little as possible.
package voicelead

import (
	"math"
	"sort"

	"github.com/jsphweid/orchid/util"
)

// Candidate register limits. Candidates outside this window are never
// considered; the anchor octave is the fallback when a pitch class has
// no candidate inside it.
const (
	lowestCandidate  = 24
	highestCandidate = 96
)

// Resolve returns MIDI notes for pitchClasses (0-11, in chord-tone
// order) minimizing total absolute movement from previous. An empty
// previous voicing places the chord around anchorOctave instead.
func Resolve(previous []int, pitchClasses []int, anchorOctave int) []int {
	if len(pitchClasses) == 0 {
		return nil
	}
	if len(previous) == 0 {
		return placeInOctave(pitchClasses, anchorOctave)
	}

	var sum int
	for _, n := range previous {
		sum += n
	}
	center := float64(sum) / float64(len(previous))
	centerOctave := int(center) / 12

	// Candidates for each pitch class within one octave of the
	// previous voicing's center.
	candidates := make([][]int, 0, len(pitchClasses))
	for _, pc := range pitchClasses {
		var cands []int
		for oct := util.Max(0, centerOctave-1); oct <= util.Min(9, centerOctave+1); oct++ {
			note := oct*12 + pc
			if note >= lowestCandidate && note <= highestCandidate {
				cands = append(cands, note)
			}
		}
		if len(cands) == 0 {
			cands = []int{anchorOctave*12 + pc}
		}
		candidates = append(candidates, cands)
	}

	if len(pitchClasses) == len(previous) && len(previous) <= 4 {
		return matchVoices(previous, candidates)
	}
	return greedyPlace(previous, candidates, center)
}

// placeInOctave is the first-chord voicing: every pitch class in the
// given octave, shifted into [36,84].
func placeInOctave(pitchClasses []int, octave int) []int {
	notes := make([]int, 0, len(pitchClasses))
	for _, pc := range pitchClasses {
		note := octave*12 + pc
		for note < 36 {
			note += 12
		}
		for note > 84 {
			note -= 12
		}
		notes = append(notes, note)
	}
	sort.Ints(notes)
	return notes
}

// matchVoices finds the minimum-movement pairing of previous notes to
// new tones by trying every permutation (at most 24 for 4 voices).
// Ties keep the first permutation found.
func matchVoices(previous []int, candidates [][]int) []int {
	n := len(previous)
	var best []int
	bestCost := math.MaxInt

	for _, perm := range permutations(n) {
		voicing := make([]int, 0, n)
		cost := 0
		for i, j := range perm {
			nearest := nearestCandidate(candidates[j], previous[i])
			voicing = append(voicing, nearest)
			cost += util.Abs(nearest - previous[i])
		}
		if cost < bestCost {
			bestCost = cost
			best = voicing
		}
	}

	sort.Ints(best)
	return best
}

// nearestCandidate returns the candidate closest to prev, keeping the
// first on ties (candidates ascend, so the lower note wins).
func nearestCandidate(candidates []int, prev int) int {
	nearest := candidates[0]
	for _, c := range candidates[1:] {
		if util.Abs(c-prev) < util.Abs(nearest-prev) {
			nearest = c
		}
	}
	return nearest
}

// greedyPlace handles unequal voice counts (and >4 voices). Tones are
// processed in chord-tone order: while unused previous notes remain,
// the globally nearest (candidate, previous note) pair wins and
// consumes that previous note; afterwards tones land on the candidate
// nearest the previous voicing's center. A tone whose candidates never
// qualify takes the middle candidate.
func greedyPlace(previous []int, candidates [][]int, center float64) []int {
	result := make([]int, 0, len(candidates))
	usedPrev := make(map[int]bool)

	for _, cands := range candidates {
		bestNote := -1
		bestPrevIdx := -1
		bestDist := math.Inf(1)
		for _, c := range cands {
			for i, p := range previous {
				if usedPrev[i] {
					continue
				}
				if d := math.Abs(float64(c - p)); d < bestDist {
					bestDist = d
					bestNote = c
					bestPrevIdx = i
				}
			}
			if len(usedPrev) >= len(previous) {
				if d := math.Abs(float64(c) - center); d < bestDist {
					bestDist = d
					bestNote = c
					bestPrevIdx = -1
				}
			}
		}
		if bestNote < 0 {
			result = append(result, cands[len(cands)/2])
			continue
		}
		result = append(result, bestNote)
		if bestPrevIdx >= 0 {
			usedPrev[bestPrevIdx] = true
		}
	}

	sort.Ints(result)
	return result
}

// permutations enumerates all orderings of 0..n-1 in lexicographic
// order so that cost ties resolve the same way every call.
func permutations(n int) [][]int {
	base := make([]int, n)
	for i := range base {
		base[i] = i
	}
	var res [][]int
	var rec func(cur []int, rest []int)
	rec = func(cur []int, rest []int) {
		if len(rest) == 0 {
			res = append(res, append([]int(nil), cur...))
			return
		}
		for i, v := range rest {
			next := make([]int, 0, len(rest)-1)
			next = append(next, rest[:i]...)
			next = append(next, rest[i+1:]...)
			rec(append(cur, v), next)
		}
	}
	rec(nil, base)
	return res
}

// ApplyInversion moves the lowest note up an octave, inversion times,
// capped at one less than the voice count.
func ApplyInversion(notes []int, inversion int) []int {
	if len(notes) == 0 || inversion <= 0 {
		return notes
	}
	result := append([]int(nil), notes...)
	sort.Ints(result)
	for i := 0; i < util.Min(inversion, len(result)-1); i++ {
		result[0] += 12
		sort.Ints(result)
	}
	return result
}

// ApplySpread widens the voicing upward: the lowest note stays put and
// the note at position i moves up by floor(spread*i*6) semitones.
func ApplySpread(notes []int, spread float64) []int {
	if len(notes) <= 1 || spread <= 0 {
		return notes
	}
	result := make([]int, 0, len(notes))
	result = append(result, notes[0])
	for i, note := range notes[1:] {
		offset := int(spread * float64(i+1) * 6)
		result = append(result, util.Clamp(note+offset, 0, 127))
	}
	return result
}
