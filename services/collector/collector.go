// Package collector flattens raw launch records into one row per
// flight and derives the dataset-level feature columns.
package collector

import (
	"context"
	"fmt"
	"math"
	"time"

	"spacey-pipeline/lib/spacexapi"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("services/collector")

// DefaultCutoff is the snapshot boundary of the dataset: launches after
// this date are excluded so the output is reproducible against the
// historical revision of the sources.
var DefaultCutoff = time.Date(2020, 11, 13, 0, 0, 0, 0, time.UTC)

// LaunchRecord is one flattened flight. Immutable once built; the
// renumbering and imputation passes in DeriveFeatures build new slices
// rather than patching rows in place. Nullable columns are pointers,
// except PayloadMass which uses NaN as its missing marker so the mean
// imputation can propagate "unknown" arithmetically.
type LaunchRecord struct {
	FlightNumber   int64
	Date           time.Time // calendar date, UTC midnight
	BoosterVersion *string
	PayloadMass    float64 // kg, NaN when unknown
	Orbit          *string
	LaunchSite     *string
	Outcome        string // "<landing_success> <landing_type>"
	Flights        *int64
	GridFins       *bool
	Reused         *bool
	Legs           *bool
	LandingPad     *string
	Block          *int64
	ReusedCount    *int64
	Serial         *string
	Longitude      *float64
	Latitude       *float64
}

// EntityResolver resolves entity ids to their records. The second
// return is false when the entity could not be resolved; dependent
// columns then stay null.
type EntityResolver interface {
	Rocket(ctx context.Context, id string) (spacexapi.Rocket, bool)
	Launchpad(ctx context.Context, id string) (spacexapi.Launchpad, bool)
	Payload(ctx context.Context, id string) (spacexapi.Payload, bool)
	Core(ctx context.Context, id string) (spacexapi.Core, bool)
}

// FlattenStats counts the rows dropped by each structural filter and
// the entity lookups that came back unresolved. Drops are silent by
// contract, so the counts are the only record of them.
type FlattenStats struct {
	Total        int
	Kept         int
	MultiCore    int
	MultiPayload int
	BadDate      int
	AfterCutoff  int
	EntityMisses int
}

// Flatten builds one LaunchRecord per raw launch that passes the
// structural filters: exactly one core, exactly one payload, a
// parseable date on or before the cutoff.
func Flatten(ctx context.Context, launches []spacexapi.RawLaunch, resolver EntityResolver, cutoff time.Time) ([]LaunchRecord, FlattenStats) {
	ctx, span := tracer.Start(ctx, "Flatten")
	defer span.End()

	stats := FlattenStats{Total: len(launches)}
	records := make([]LaunchRecord, 0, len(launches))

	for _, launch := range launches {
		if len(launch.Cores) != 1 {
			stats.MultiCore++
			continue
		}
		if len(launch.Payloads) != 1 {
			stats.MultiPayload++
			continue
		}

		date, err := truncateDate(launch.DateUtc)
		if err != nil {
			stats.BadDate++
			continue
		}
		if date.After(cutoff) {
			stats.AfterCutoff++
			continue
		}

		records = append(records, buildRecord(ctx, launch, date, resolver, &stats))
	}

	stats.Kept = len(records)
	span.SetAttributes(
		attribute.Int("total", stats.Total),
		attribute.Int("kept", stats.Kept),
		attribute.Int("entity_misses", stats.EntityMisses),
	)
	return records, stats
}

func buildRecord(ctx context.Context, launch spacexapi.RawLaunch, date time.Time, resolver EntityResolver, stats *FlattenStats) LaunchRecord {
	core := launch.Cores[0]

	record := LaunchRecord{
		FlightNumber: launch.FlightNumber,
		Date:         date,
		PayloadMass:  math.NaN(),
		Outcome:      fmt.Sprintf("%s %s", fmtNullableBool(core.LandingSuccess), fmtNullableString(core.LandingType)),
		Flights:      core.Flight,
		GridFins:     core.Gridfins,
		Reused:       core.Reused,
		Legs:         core.Legs,
		LandingPad:   core.Landpad,
	}

	if rocket, ok := resolver.Rocket(ctx, launch.Rocket); ok {
		record.BoosterVersion = &rocket.Name
	} else {
		stats.EntityMisses++
	}

	if pad, ok := resolver.Launchpad(ctx, launch.Launchpad); ok {
		record.LaunchSite = &pad.Name
		record.Latitude = &pad.Latitude
		record.Longitude = &pad.Longitude
	} else {
		stats.EntityMisses++
	}

	if payload, ok := resolver.Payload(ctx, launch.Payloads[0]); ok {
		if payload.MassKg != nil {
			record.PayloadMass = *payload.MassKg
		}
		record.Orbit = payload.Orbit
	} else {
		stats.EntityMisses++
	}

	// block/reuse-count/serial come from the core entity, everything
	// else core-related comes from the per-launch core object above
	if resolved, ok := resolver.Core(ctx, core.Core); ok {
		record.Block = resolved.Block
		record.ReusedCount = &resolved.ReuseCount
		record.Serial = &resolved.Serial
	} else {
		stats.EntityMisses++
	}

	return record
}

// truncateDate drops the time-of-day and zone from an RFC 3339
// timestamp, leaving a UTC calendar date.
func truncateDate(dateUtc string) (time.Time, error) {
	parsed, err := time.Parse(time.RFC3339, dateUtc)
	if err != nil {
		return time.Time{}, err
	}
	parsed = parsed.UTC()
	return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC), nil
}

func fmtNullableBool(b *bool) string {
	if b == nil {
		return "None"
	}
	if *b {
		return "True"
	}
	return "False"
}

func fmtNullableString(s *string) string {
	if s == nil {
		return "None"
	}
	return *s
}
