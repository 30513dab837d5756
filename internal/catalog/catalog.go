// Package catalog holds the embedded excuse catalog: loading, tone/length
// normalization, believability estimation, and random selection.
//
// The catalog is built once at startup from ordered data sources and is
// immutable afterwards, so it is safe for unsynchronized concurrent reads.
// Excuses produced by the remote generator are persisted separately and are
// never merged back into the catalog.
package catalog

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"sort"
)

//go:embed data/*.json
var seedFS embed.FS

// ErrNoExcuses is returned by Select when the situation has no records.
// Tone/length mismatches never produce this error; they fall back to the
// situation's full list instead.
var ErrNoExcuses = errors.New("no excuses for situation")

// Record is one catalog excuse. Tone and length are canonical tokens and the
// believability rating is always populated (estimated at load time when the
// source omits it, so a record keeps a stable score for the process lifetime).
type Record struct {
	Excuse              string `json:"excuse"`
	Tone                string `json:"tone"`
	Length              string `json:"length"`
	BelievabilityRating int    `json:"believabilityRating"`
}

// rawRecord mirrors the source JSON, where tone/length are display labels and
// the rating may be absent.
type rawRecord struct {
	Excuse              string `json:"excuse"`
	Tone                string `json:"tone"`
	Length              string `json:"length"`
	BelievabilityRating *int   `json:"believabilityRating"`
}

// Source is one ordered situation->records blob. Earlier sources win: a later
// source is only consulted for situations the earlier ones left empty.
type Source struct {
	Name string
	Raw  []byte
}

// FileSource reads a source from disk.
func FileSource(path string) (Source, error) {
	raw, err := os.ReadFile(path) //#nosec G304 -- catalog path comes from config
	if err != nil {
		return Source{}, fmt.Errorf("read catalog source: %w", err)
	}
	return Source{Name: path, Raw: raw}, nil
}

// EmbeddedSources returns the sources compiled into the binary: the master
// file first (wins when populated), then the per-situation seed files.
func EmbeddedSources() []Source {
	names := []string{
		"data/master-excuses.json",
		"data/late-to-work.json",
		"data/missed-deadline.json",
		"data/forgot-birthday.json",
	}
	sources := make([]Source, 0, len(names))
	for _, name := range names {
		raw, err := seedFS.ReadFile(name)
		if err != nil {
			// Embedded files are part of the build; a miss is a programmer error.
			panic(fmt.Sprintf("embedded catalog source %s: %v", name, err))
		}
		sources = append(sources, Source{Name: name, Raw: raw})
	}
	return sources
}

// Catalog is the immutable situation->records mapping.
type Catalog struct {
	situations map[string][]Record
}

// Stats summarizes the loaded catalog, mirroring the app's import-status view.
type Stats struct {
	TotalSituations int            `json:"totalSituations"`
	TotalExcuses    int            `json:"totalExcuses"`
	Situations      []string       `json:"situations"`
	BySituation     map[string]int `json:"excusesBySituation"`
}

// Load builds a catalog from the given sources in precedence order.
//
// Each source maps a situation name to either a single record object or an
// array of records; a lone object is treated as a one-element array. The
// first source yielding at least one valid record for a situation wins.
// Malformed values are skipped with a warning. No situation key is kept with
// an empty record list.
func Load(logger *slog.Logger, sources ...Source) (*Catalog, error) {
	situations := make(map[string][]Record)

	for _, src := range sources {
		var blob map[string]json.RawMessage
		if err := json.Unmarshal(src.Raw, &blob); err != nil {
			return nil, fmt.Errorf("parse catalog source %s: %w", src.Name, err)
		}

		for situation, raw := range blob {
			if len(situations[situation]) > 0 {
				continue // already resolved by an earlier source
			}

			records, err := parseRecords(raw)
			if err != nil {
				logger.Warn("skipping malformed catalog entry",
					"source", src.Name,
					"situation", situation,
					"error", err,
				)
				continue
			}
			if len(records) == 0 {
				continue
			}
			situations[situation] = records
		}
	}

	total := 0
	for _, records := range situations {
		total += len(records)
	}
	logger.Info("excuse catalog loaded",
		"situations", len(situations),
		"excuses", total,
		"sources", len(sources),
	)

	return &Catalog{situations: situations}, nil
}

// parseRecords decodes a situation value as either an array of records or a
// single record object, normalizes labels, and fills in missing ratings.
func parseRecords(raw json.RawMessage) ([]Record, error) {
	var rawRecords []rawRecord
	if err := json.Unmarshal(raw, &rawRecords); err != nil {
		// Not an array; try a lone object.
		var single rawRecord
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil, errors.New("value is neither a record nor an array of records")
		}
		rawRecords = []rawRecord{single}
	}

	records := make([]Record, 0, len(rawRecords))
	for _, rr := range rawRecords {
		if rr.Excuse == "" {
			continue
		}
		rec := Record{
			Excuse: rr.Excuse,
			Tone:   NormalizeTone(rr.Tone),
			Length: NormalizeLength(rr.Length),
		}
		if rr.BelievabilityRating != nil {
			rec.BelievabilityRating = *rr.BelievabilityRating
		} else {
			rec.BelievabilityRating = EstimateBelievability(rec.Tone)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Select picks a random excuse for the situation, preferring records that
// match the requested tone and length.
//
// Tone and length are optional; empty strings match everything. When the
// filters leave no candidates, the full unfiltered list for the situation is
// used instead, so Select only fails when the situation itself is unknown.
func (c *Catalog) Select(situation, tone, length string) (Record, error) {
	all, ok := c.situations[situation]
	if !ok || len(all) == 0 {
		return Record{}, fmt.Errorf("%w: %s", ErrNoExcuses, situation)
	}

	candidates := all
	if tone != "" {
		candidates = filter(candidates, func(r Record) bool {
			return r.Tone == NormalizeTone(tone)
		})
	}
	if length != "" {
		candidates = filter(candidates, func(r Record) bool {
			return r.Length == NormalizeLength(length)
		})
	}

	// Fallback-to-unfiltered: a tone/length miss never hides the situation.
	if len(candidates) == 0 {
		candidates = all
	}

	return candidates[rand.IntN(len(candidates))], nil
}

// HasSituation reports whether the catalog has records for the situation.
func (c *Catalog) HasSituation(situation string) bool {
	return len(c.situations[situation]) > 0
}

// Stats returns totals per situation with a sorted situation list.
func (c *Catalog) Stats() Stats {
	stats := Stats{
		TotalSituations: len(c.situations),
		Situations:      make([]string, 0, len(c.situations)),
		BySituation:     make(map[string]int, len(c.situations)),
	}
	for situation, records := range c.situations {
		stats.Situations = append(stats.Situations, situation)
		stats.BySituation[situation] = len(records)
		stats.TotalExcuses += len(records)
	}
	sort.Strings(stats.Situations)
	return stats
}

func filter(records []Record, keep func(Record) bool) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
