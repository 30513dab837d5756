// Package search provides full-text search over generated excuses using Bleve.
// It supports fuzzy matching on excuse text plus exact filtering on the
// canonical tone and length values.
package search

import (
	"github.com/alibiapp/alibi-server/internal/domain"
)

// SearchDocument is the document structure for the Bleve index. One document
// per persisted excuse.
type SearchDocument struct {
	ID            string `json:"id"`
	Situation     string `json:"situation"`
	Tone          string `json:"tone"`
	Length        string `json:"length"`
	Excuse        string `json:"excuse"`
	Believability int    `json:"believability"`
	CreatedAt     int64  `json:"created_at"` // Unix millis
}

// ToMap converts the document to a map with lowercase field names.
// This ensures field names match the Bleve index mapping.
// Bleve by default uses Go struct field names (capitalized), but our
// mapping uses lowercase names, so we convert explicitly.
func (d *SearchDocument) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"id":            d.ID,
		"situation":     d.Situation,
		"tone":          d.Tone,
		"length":        d.Length,
		"excuse":        d.Excuse,
		"excuse_exact":  d.Excuse,
		"believability": d.Believability,
		"created_at":    d.CreatedAt,
	}
}

// ExcuseToSearchDocument converts a domain Excuse to a SearchDocument.
func ExcuseToSearchDocument(e *domain.Excuse) *SearchDocument {
	return &SearchDocument{
		ID:            e.ID,
		Situation:     e.Situation,
		Tone:          e.Tone,
		Length:        e.Length,
		Excuse:        e.Excuse,
		Believability: e.BelievabilityRating,
		CreatedAt:     e.CreatedAt.UnixMilli(),
	}
}
