package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseBelievability(t *testing.T) {
	body, rating := ParseBelievability("My car broke down. BELIEVABILITY: 72", 50)
	assert.Equal(t, "My car broke down.", body)
	assert.Equal(t, 72, rating)
}

func TestParseBelievability_CaseInsensitive(t *testing.T) {
	body, rating := ParseBelievability("I swear.\n\nbelievability: 33", 50)
	assert.Equal(t, "I swear.", body)
	assert.Equal(t, 33, rating)
}

func TestParseBelievability_MissingMarkerUsesFallback(t *testing.T) {
	body, rating := ParseBelievability("No marker here.", 50)
	assert.Equal(t, "No marker here.", body)
	assert.Equal(t, 50, rating)

	_, rating = ParseBelievability("Ultimate excuse body.", 0)
	assert.Equal(t, 0, rating)
}

func TestParseBelievability_ClampsAbove100(t *testing.T) {
	_, rating := ParseBelievability("Sure. BELIEVABILITY: 250", 50)
	assert.Equal(t, 100, rating)
}

func TestParseBelievability_WhitespaceVariants(t *testing.T) {
	body, rating := ParseBelievability("Done.  BELIEVABILITY:   8  ", 50)
	assert.Equal(t, "Done.", body)
	assert.Equal(t, 8, rating)
}
