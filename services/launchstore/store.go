// Package launchstore persists the pipeline's tables to a disposable
// sqlite database so ad-hoc aggregate queries can run over them. The
// store is a scratch sink: the queries are read-only projections and
// not part of the pipeline's correctness contract.
package launchstore

import (
	"context"
	"database/sql"
	"math"
	"time"

	"spacey-pipeline/services/collector"
	"spacey-pipeline/services/launchstore/db"
	"spacey-pipeline/services/reconciler"
	"spacey-pipeline/services/webscraper"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

// Open opens (creating when needed) the scratch database at path and
// applies the schema. Use ":memory:" for tests.
func Open(path string) (Store, error) {
	sqlite, err := sql.Open("sqlite", path)
	if err != nil {
		return Store{}, err
	}
	_, err = sqlite.Exec(db.Schema)
	if err != nil {
		sqlite.Close()
		return Store{}, err
	}
	return Store{db: sqlite}, nil
}

func (s Store) Close() error {
	return s.db.Close()
}

// Replace rewrites all three tables from the given slices in one
// transaction, so a rerun over the same snapshot leaves identical
// contents.
func (s Store) Replace(ctx context.Context, api []collector.LaunchRecord, scraped []webscraper.ScrapedRow, merged []reconciler.MergedRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"launches_api", "launches_scraped", "launches_merged"} {
		_, err = tx.ExecContext(ctx, "DELETE FROM "+table)
		if err != nil {
			return err
		}
	}

	for _, r := range api {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO launches_api (
				flight_number, date, booster_version, payload_mass, orbit,
				launch_site, outcome, flights, grid_fins, reused, legs,
				landing_pad, block, reused_count, serial, longitude, latitude
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.FlightNumber, r.Date.Format(time.DateOnly), nullString(r.BoosterVersion),
			nullFloat(r.PayloadMass), nullString(r.Orbit), nullString(r.LaunchSite),
			r.Outcome, nullInt(r.Flights), nullBool(r.GridFins), nullBool(r.Reused),
			nullBool(r.Legs), nullString(r.LandingPad), nullInt(r.Block),
			nullInt(r.ReusedCount), nullString(r.Serial),
			nullFloatPtr(r.Longitude), nullFloatPtr(r.Latitude),
		)
		if err != nil {
			return err
		}
	}

	for _, r := range scraped {
		var date any
		if r.Date != nil {
			date = r.Date.Format(time.DateOnly)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO launches_scraped (
				flight_number, date, time, booster_version, launch_site,
				payload, payload_mass_raw, payload_mass_kg, orbit, customer,
				launch_outcome, landing_status
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.FlightNumber, date, r.Time, r.BoosterVersion, r.LaunchSite,
			r.Payload, r.MassRaw, nullFloat(r.MassKg), r.Orbit, r.Customer,
			r.LaunchOutcome, r.LandingStatus,
		)
		if err != nil {
			return err
		}
	}

	for _, r := range merged {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO launches_merged (
				flight_number, date, booster_version, payload_mass, orbit,
				launch_site, outcome, flights, grid_fins, reused, legs,
				landing_pad, block, reused_count, serial, longitude, latitude,
				scraped_customer, scraped_mass_kg, scraped_site, scraped_booster,
				payload_diff_kg, payload_within_tolerance, landing_success, year
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.FlightNumber, r.Date.Format(time.DateOnly), nullString(r.BoosterVersion),
			nullFloat(r.PayloadMass), nullString(r.Orbit), nullString(r.LaunchSite),
			r.Outcome, nullInt(r.Flights), nullBool(r.GridFins), nullBool(r.Reused),
			nullBool(r.Legs), nullString(r.LandingPad), nullInt(r.Block),
			nullInt(r.ReusedCount), nullString(r.Serial),
			nullFloatPtr(r.Longitude), nullFloatPtr(r.Latitude),
			nullString(r.ScrapedCustomer), nullFloat(r.ScrapedMassKg),
			nullString(r.ScrapedSite), nullString(r.ScrapedBooster),
			nullFloat(r.DiffKg), nullBool(r.WithinTolerance), r.LandingSuccess, r.Year,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullInt(i *int64) any {
	if i == nil {
		return nil
	}
	return *i
}

func nullBool(b *bool) any {
	if b == nil {
		return nil
	}
	return *b
}

// NaN is the in-memory missing marker; it becomes NULL in the store
func nullFloat(f float64) any {
	if math.IsNaN(f) {
		return nil
	}
	return f
}

func nullFloatPtr(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}
