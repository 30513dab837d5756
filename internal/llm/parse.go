package llm

import (
	"regexp"
	"strconv"
	"strings"
)

// believabilityRe matches the marker line the model is instructed to emit.
var believabilityRe = regexp.MustCompile(`(?i)BELIEVABILITY:\s*(\d+)`)

// ParseBelievability splits the believability marker off a generated text.
// It returns the excuse body with the marker removed and the parsed rating,
// clamped to [0,100]. When no marker is present the body is returned
// unchanged with fallback as the rating.
func ParseBelievability(text string, fallback int) (string, int) {
	rating := fallback

	if m := believabilityRe.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			rating = n
		}
	}

	if rating < 0 {
		rating = 0
	} else if rating > 100 {
		rating = 100
	}

	body := believabilityRe.ReplaceAllString(text, "")
	return strings.TrimSpace(body), rating
}
