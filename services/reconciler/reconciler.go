// Package reconciler merges the API-derived launch table with the
// scraped launch table and computes agreement metrics between their
// overlapping fields.
package reconciler

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"spacey-pipeline/services/collector"
	"spacey-pipeline/services/webscraper"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("services/reconciler")

// DefaultToleranceKg is how far apart the two sources' payload masses
// may be and still count as agreeing.
const DefaultToleranceKg = 50.0

// MergedRow is a LaunchRecord joined with the matching scraped fields.
// The scraped pointers are nil on unmatched rows.
type MergedRow struct {
	collector.LaunchRecord

	ScrapedCustomer *string
	ScrapedMassKg   float64 // NaN when unmatched or unparsed
	ScrapedSite     *string
	ScrapedBooster  *string

	// DiffKg is API mass minus scraped mass: positive when the API
	// reports the heavier payload. NaN when either side is missing.
	DiffKg float64
	// WithinTolerance is nil (not false) when either mass is missing.
	WithinTolerance *bool
	// LandingSuccess tests whether the outcome string starts with the
	// literal token "True". The outcome is a "<bool> <type>" composite
	// assembled by the collector, so this is a fixed-format parse, not
	// a general boolean one.
	LandingSuccess bool
	Year           int
}

type Stats struct {
	ApiRows     int
	ScrapedRows int
	Matched     int // api rows with at least one scraped match
	Fanout      int // extra output rows from non-unique (date, orbit) keys
}

// Reconcile left-joins the launch records with the scraped rows on
// exact (date, orbit). Every LaunchRecord appears at least once; keys
// matching several scraped rows fan out into several merged rows, which
// the caller can observe through Stats.Fanout.
func Reconcile(ctx context.Context, api []collector.LaunchRecord, scraped []webscraper.ScrapedRow, toleranceKg float64) ([]MergedRow, Stats) {
	_, span := tracer.Start(ctx, "Reconcile")
	defer span.End()

	stats := Stats{ApiRows: len(api), ScrapedRows: len(scraped)}

	index := map[string][]webscraper.ScrapedRow{}
	for _, row := range scraped {
		if row.Date == nil {
			continue
		}
		index[joinKey(*row.Date, row.Orbit)] = append(index[joinKey(*row.Date, row.Orbit)], row)
	}

	var out []MergedRow
	for _, record := range api {
		var matches []webscraper.ScrapedRow
		if record.Orbit != nil {
			matches = index[joinKey(record.Date, *record.Orbit)]
		}

		if len(matches) == 0 {
			out = append(out, mergeRow(record, nil, toleranceKg))
			continue
		}

		stats.Matched++
		stats.Fanout += len(matches) - 1
		for i := range matches {
			out = append(out, mergeRow(record, &matches[i], toleranceKg))
		}
	}

	span.SetAttributes(
		attribute.Int("api_rows", stats.ApiRows),
		attribute.Int("matched", stats.Matched),
		attribute.Int("fanout", stats.Fanout),
	)
	return out, stats
}

func joinKey(date time.Time, orbit string) string {
	return fmt.Sprintf("%s\x00%s", date.Format(time.DateOnly), orbit)
}

func mergeRow(record collector.LaunchRecord, match *webscraper.ScrapedRow, toleranceKg float64) MergedRow {
	row := MergedRow{
		LaunchRecord:   record,
		ScrapedMassKg:  math.NaN(),
		DiffKg:         math.NaN(),
		LandingSuccess: strings.HasPrefix(record.Outcome, "True"),
		Year:           record.Date.Year(),
	}

	if match != nil {
		row.ScrapedCustomer = &match.Customer
		row.ScrapedMassKg = match.MassKg
		row.ScrapedSite = &match.LaunchSite
		row.ScrapedBooster = &match.BoosterVersion
	}

	if !math.IsNaN(record.PayloadMass) && !math.IsNaN(row.ScrapedMassKg) {
		row.DiffKg = record.PayloadMass - row.ScrapedMassKg
		within := math.Abs(row.DiffKg) <= toleranceKg
		row.WithinTolerance = &within
	}

	return row
}
