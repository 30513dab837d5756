package catalog

import "strings"

// Canonical tone tokens.
const (
	ToneBelievable = "believable"
	ToneAbsurd     = "absurd"
	ToneDramatic   = "dramatic"
	ToneMysterious = "mysterious"
	ToneTechnical  = "technical"
	ToneDetailed   = "detailed"
)

// Canonical length tokens.
const (
	LengthShort  = "short"
	LengthMedium = "medium"
	LengthLong   = "long"
)

// toneLabels maps the UI display labels to canonical tone tokens.
var toneLabels = map[string]string{
	"believable":       ToneBelievable,
	"absurd":           ToneAbsurd,
	"dramatic":         ToneDramatic,
	"mysterious":       ToneMysterious,
	"technical jargon": ToneTechnical,
	"overly detailed":  ToneDetailed,
}

// lengthLabels maps the UI display labels to canonical length tokens.
var lengthLabels = map[string]string{
	"quick one-liner": LengthShort,
	"short paragraph": LengthMedium,
	"elaborate story": LengthLong,
}

// NormalizeTone maps a display label ("Technical Jargon") or an already
// canonical token ("technical") to the canonical tone. Unknown input is
// lowercased and returned as-is; this function never fails.
func NormalizeTone(input string) string {
	key := strings.ToLower(strings.TrimSpace(input))
	if canonical, ok := toneLabels[key]; ok {
		return canonical
	}
	return key
}

// NormalizeLength maps a display label ("Quick one-liner") or an already
// canonical token ("short") to the canonical length. Unknown input is
// lowercased and returned as-is.
func NormalizeLength(input string) string {
	key := strings.ToLower(strings.TrimSpace(input))
	if canonical, ok := lengthLabels[key]; ok {
		return canonical
	}
	return key
}
