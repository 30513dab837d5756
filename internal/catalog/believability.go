package catalog

import "math/rand/v2"

// believabilityRange is an inclusive [lo, hi] score range for a tone.
type believabilityRange struct {
	lo, hi int
}

// Believability ranges per canonical tone. Used only as a fallback when a
// seed record carries no explicit rating.
var believabilityRanges = map[string]believabilityRange{
	ToneBelievable: {70, 100},
	ToneAbsurd:     {1, 30},
	ToneDramatic:   {40, 60},
	ToneMysterious: {50, 70},
	ToneTechnical:  {45, 65},
	ToneDetailed:   {35, 55},
}

// defaultRange covers unrecognized tones.
var defaultRange = believabilityRange{30, 70}

// EstimateBelievability draws a uniform random score from the tone's range,
// inclusive of both endpoints. The tone must already be canonical.
func EstimateBelievability(tone string) int {
	r, ok := believabilityRanges[tone]
	if !ok {
		r = defaultRange
	}
	return r.lo + rand.IntN(r.hi-r.lo+1)
}
