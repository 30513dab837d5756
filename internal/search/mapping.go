package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for excuse documents.
//
// The mapping is designed with these priorities:
//  1. Fast full-text search on excuse text with English stemming
//  2. Situation text is also searchable, at lower boost
//  3. Exact keyword matching for tone and length filters
//  4. Numeric fields for believability ranges and recency sorting
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	// --- Text fields (full-text searchable) ---

	// Excuse text - primary search target
	excuseFieldMapping := bleve.NewTextFieldMapping()
	excuseFieldMapping.Analyzer = en.AnalyzerName
	excuseFieldMapping.Store = true
	excuseFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("excuse", excuseFieldMapping)

	// Unstemmed copy of the excuse text. The fuzzy and prefix clauses are
	// term-level (unanalyzed), so they must run against whole lowercase words;
	// the stemmed field would put "elevator" in the index as "elev", out of
	// edit-distance reach of any real typo.
	excuseExactFieldMapping := bleve.NewTextFieldMapping()
	excuseExactFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("excuse_exact", excuseExactFieldMapping)

	// Situation - searchable text
	situationFieldMapping := bleve.NewTextFieldMapping()
	situationFieldMapping.Analyzer = en.AnalyzerName
	situationFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("situation", situationFieldMapping)

	// --- Keyword fields (exact match) ---

	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	// Tone and length hold canonical values, keyword analyzer keeps the
	// multi-word ones ("very believable") intact.
	toneFieldMapping := bleve.NewTextFieldMapping()
	toneFieldMapping.Analyzer = keyword.Name
	toneFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("tone", toneFieldMapping)

	lengthFieldMapping := bleve.NewTextFieldMapping()
	lengthFieldMapping.Analyzer = keyword.Name
	lengthFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("length", lengthFieldMapping)

	// --- Numeric fields (range queries, sorting) ---

	believabilityFieldMapping := bleve.NewNumericFieldMapping()
	believabilityFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("believability", believabilityFieldMapping)

	createdAtFieldMapping := bleve.NewNumericFieldMapping()
	createdAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("created_at", createdAtFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
