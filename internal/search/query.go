package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// SearchParams configures a search query.
type SearchParams struct {
	Query string // User's search query

	// Filters; canonical values, exact match
	Tone   string
	Length string

	// Pagination
	Limit  int
	Offset int

	// Believability range filter (0 = unbounded)
	MinBelievability int
	MaxBelievability int

	// Options
	Highlight bool // Include match highlighting
}

// DefaultSearchParams returns sensible defaults.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		Limit:     20,
		Offset:    0,
		Highlight: true,
	}
}

// SearchResult represents the search results.
type SearchResult struct {
	Query  string      `json:"query"`
	Total  uint64      `json:"total"`
	TookMs int64       `json:"took_ms"`
	Hits   []SearchHit `json:"hits"`
}

// SearchHit represents a single search result.
type SearchHit struct {
	ID            string            `json:"id"`
	Score         float64           `json:"score"`
	Situation     string            `json:"situation"`
	Tone          string            `json:"tone"`
	Length        string            `json:"length"`
	Excuse        string            `json:"excuse"`
	Believability int               `json:"believability"`
	Highlights    map[string]string `json:"highlights,omitempty"`
}

// Search executes a search query.
func (s *SearchIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	searchQuery := buildSearchQuery(params)

	searchRequest := bleve.NewSearchRequestOptions(searchQuery, params.Limit, params.Offset, false)
	searchRequest.SortBy([]string{"-_score", "-created_at"})

	if params.Highlight {
		searchRequest.Highlight = bleve.NewHighlight()
		searchRequest.Highlight.AddField("excuse")
	}

	searchRequest.Fields = []string{
		"id", "situation", "tone", "length", "excuse", "believability",
	}

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &SearchResult{
		Query:  params.Query,
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]SearchHit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		searchHit := SearchHit{
			ID:    hit.ID,
			Score: hit.Score,
		}

		if v, ok := hit.Fields["situation"].(string); ok {
			searchHit.Situation = v
		}
		if v, ok := hit.Fields["tone"].(string); ok {
			searchHit.Tone = v
		}
		if v, ok := hit.Fields["length"].(string); ok {
			searchHit.Length = v
		}
		if v, ok := hit.Fields["excuse"].(string); ok {
			searchHit.Excuse = v
		}
		if v, ok := hit.Fields["believability"].(float64); ok {
			searchHit.Believability = int(v)
		}

		if len(hit.Fragments) > 0 {
			searchHit.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					searchHit.Highlights[field] = fragments[0]
				}
			}
		}

		result.Hits = append(result.Hits, searchHit)
	}

	return result, nil
}

// buildSearchQuery constructs the Bleve query from params.
func buildSearchQuery(params SearchParams) query.Query {
	var queries []query.Query

	// Main text query: excuse text is the primary target, situation matches
	// at lower boost, with fuzzy matching for typo tolerance.
	if params.Query != "" {
		textQueries := []query.Query{}

		excuseMatch := bleve.NewMatchQuery(params.Query)
		excuseMatch.SetField("excuse")
		excuseMatch.SetBoost(3.0)
		textQueries = append(textQueries, excuseMatch)

		situationMatch := bleve.NewMatchQuery(params.Query)
		situationMatch.SetField("situation")
		situationMatch.SetBoost(1.5)
		textQueries = append(textQueries, situationMatch)

		// Fuzzy and prefix clauses are term-level and skip analysis, so they
		// target the unstemmed companion field.
		fuzzyQuery := bleve.NewFuzzyQuery(strings.ToLower(params.Query))
		fuzzyQuery.SetFuzziness(1)
		fuzzyQuery.SetField("excuse_exact")
		fuzzyQuery.SetBoost(0.8)
		textQueries = append(textQueries, fuzzyQuery)

		// Prefix query for autocomplete (minimum 2 chars)
		if len(params.Query) >= 2 {
			prefixQuery := bleve.NewPrefixQuery(strings.ToLower(params.Query))
			prefixQuery.SetField("excuse_exact")
			prefixQuery.SetBoost(0.5)
			textQueries = append(textQueries, prefixQuery)
		}

		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	// Tone filter (exact match on canonical value)
	if params.Tone != "" {
		tq := bleve.NewTermQuery(params.Tone)
		tq.SetField("tone")
		queries = append(queries, tq)
	}

	// Length filter
	if params.Length != "" {
		lq := bleve.NewTermQuery(params.Length)
		lq.SetField("length")
		queries = append(queries, lq)
	}

	// Believability range filter
	if params.MinBelievability > 0 || params.MaxBelievability > 0 {
		min := float64(params.MinBelievability)
		max := float64(params.MaxBelievability)
		if params.MaxBelievability == 0 {
			max = 100
		}
		rangeQuery := bleve.NewNumericRangeQuery(&min, &max)
		rangeQuery.SetField("believability")
		queries = append(queries, rangeQuery)
	}

	// Combine all queries with AND
	if len(queries) == 0 {
		return bleve.NewMatchAllQuery()
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}
