package launchstore

import (
	"context"
	"database/sql"
	"math"
	"testing"
	"time"

	"spacey-pipeline/lib/telemetry"
	"spacey-pipeline/services/collector"
	"spacey-pipeline/services/reconciler"
	"spacey-pipeline/services/webscraper"

	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func mergedRow(flight int64, site, orbit, outcome string, massKg float64, customer *string) reconciler.MergedRow {
	row := reconciler.MergedRow{
		LaunchRecord: collector.LaunchRecord{
			FlightNumber: flight,
			Date:         time.Date(2018, 1, int(flight), 0, 0, 0, 0, time.UTC),
			Orbit:        &orbit,
			LaunchSite:   &site,
			PayloadMass:  massKg,
			Outcome:      outcome,
		},
		ScrapedCustomer: customer,
		ScrapedMassKg:   math.NaN(),
		DiffKg:          math.NaN(),
		Year:            2018,
	}
	return row
}

func setupStore(t *testing.T) (Store, context.Context) {
	cleanup := telemetry.SetupForTesting("test:launchstore")
	t.Cleanup(cleanup)

	store, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	t.Cleanup(cancel)

	merged := []reconciler.MergedRow{
		mergedRow(1, "CCSFS", "LEO", "True ASDS", 1000, ptr("NASA")),
		mergedRow(2, "CCSFS", "LEO", "False ASDS", 2000, ptr("NASA")),
		mergedRow(3, "CCSFS", "GTO", "True ASDS", 3000, ptr("SES")),
		mergedRow(4, "VAFB", "SSO", "None None", math.NaN(), nil),
	}

	err = store.Replace(ctx, nil, []webscraper.ScrapedRow{
		{FlightNumber: 1, Orbit: "LEO", MassKg: 1000},
	}, merged)
	require.NoError(t, err)

	return store, ctx
}

func TestLaunchesByOrbit(t *testing.T) {
	store, ctx := setupStore(t)

	counts, err := store.LaunchesByOrbit(ctx)
	require.NoError(t, err)
	require.Len(t, counts, 3)
	require.Equal(t, "LEO", counts[0].Orbit.String)
	require.Equal(t, int64(2), counts[0].Launches)
}

func TestLandingSuccessRateBySite(t *testing.T) {
	store, ctx := setupStore(t)

	rates, err := store.LandingSuccessRateBySite(ctx, 3)
	require.NoError(t, err)
	// VAFB has only one launch, filtered by the sample-size floor
	require.Len(t, rates, 1)
	require.Equal(t, "CCSFS", rates[0].Site.String)
	require.InDelta(t, 2.0/3.0, rates[0].SuccessRate.Float64, 0.0001)
	require.Equal(t, int64(3), rates[0].N)
}

func TestAvgPayloadBySite(t *testing.T) {
	store, ctx := setupStore(t)

	payloads, err := store.AvgPayloadBySite(ctx)
	require.NoError(t, err)
	require.Len(t, payloads, 2)
	require.Equal(t, "CCSFS", payloads[0].Site.String)
	require.InDelta(t, 2000.0, payloads[0].AvgPayloadKg.Float64, 0.0001)

	// the NaN payload mass was stored as NULL, so the aggregate is NULL
	require.Equal(t, "VAFB", payloads[1].Site.String)
	require.False(t, payloads[1].AvgPayloadKg.Valid)
}

func TestTopCustomers(t *testing.T) {
	store, ctx := setupStore(t)

	customers, err := store.TopCustomers(ctx, 10)
	require.NoError(t, err)
	require.Len(t, customers, 3)
	require.Equal(t, "NASA", customers[0].Customer)
	require.Equal(t, int64(2), customers[0].Launches)

	var names []string
	for _, c := range customers {
		names = append(names, c.Customer)
	}
	require.Contains(t, names, "Unknown")
}

func TestReplaceWritesAllTables(t *testing.T) {
	store, ctx := setupStore(t)

	api := []collector.LaunchRecord{
		{
			FlightNumber:   1,
			Date:           time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC),
			BoosterVersion: ptr("Falcon 9"),
			PayloadMass:    1000,
			Orbit:          ptr("LEO"),
			GridFins:       ptr(true),
			Outcome:        "True ASDS",
		},
		{
			FlightNumber: 2,
			Date:         time.Date(2018, 1, 2, 0, 0, 0, 0, time.UTC),
			PayloadMass:  math.NaN(),
			Outcome:      "None None",
		},
	}
	scraped := []webscraper.ScrapedRow{
		{FlightNumber: 1, Orbit: "LEO", MassKg: 1000},
		{FlightNumber: 2, Orbit: "GTO", MassKg: math.NaN()},
	}
	require.NoError(t, store.Replace(ctx, api, scraped, nil))

	var apiRows, scrapedRows, mergedRows int64
	require.NoError(t, store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM launches_api").Scan(&apiRows))
	require.NoError(t, store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM launches_scraped").Scan(&scrapedRows))
	require.NoError(t, store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM launches_merged").Scan(&mergedRows))
	require.Equal(t, int64(2), apiRows)
	require.Equal(t, int64(2), scrapedRows)
	require.Equal(t, int64(0), mergedRows)

	// nullable columns survive the round trip: present values intact,
	// NaN/nil stored as NULL
	var booster sql.NullString
	var mass sql.NullFloat64
	var gridFins sql.NullBool
	require.NoError(t, store.db.QueryRowContext(ctx,
		"SELECT booster_version, payload_mass, grid_fins FROM launches_api WHERE flight_number = 1").
		Scan(&booster, &mass, &gridFins))
	require.Equal(t, "Falcon 9", booster.String)
	require.Equal(t, 1000.0, mass.Float64)
	require.True(t, gridFins.Bool)

	require.NoError(t, store.db.QueryRowContext(ctx,
		"SELECT booster_version, payload_mass, grid_fins FROM launches_api WHERE flight_number = 2").
		Scan(&booster, &mass, &gridFins))
	require.False(t, booster.Valid)
	require.False(t, mass.Valid)
	require.False(t, gridFins.Valid)

	var scrapedDate sql.NullString
	var scrapedMass sql.NullFloat64
	require.NoError(t, store.db.QueryRowContext(ctx,
		"SELECT date, payload_mass_kg FROM launches_scraped WHERE flight_number = 2").
		Scan(&scrapedDate, &scrapedMass))
	require.False(t, scrapedDate.Valid)
	require.False(t, scrapedMass.Valid)
}

func TestReplaceIsIdempotent(t *testing.T) {
	store, ctx := setupStore(t)

	// replacing with the same rows twice leaves the same contents
	merged := []reconciler.MergedRow{
		mergedRow(1, "CCSFS", "LEO", "True ASDS", 1000, ptr("NASA")),
	}
	require.NoError(t, store.Replace(ctx, nil, nil, merged))
	require.NoError(t, store.Replace(ctx, nil, nil, merged))

	counts, err := store.LaunchesByOrbit(ctx)
	require.NoError(t, err)
	require.Len(t, counts, 1)
	require.Equal(t, int64(1), counts[0].Launches)
}
