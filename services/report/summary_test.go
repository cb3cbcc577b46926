package report

import (
	"bytes"
	"database/sql"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"spacey-pipeline/services/collector"
	"spacey-pipeline/services/launchstore"
	"spacey-pipeline/services/reconciler"
	"spacey-pipeline/services/webscraper"
)

func TestWriteLaunchSummary(t *testing.T) {
	var buf bytes.Buffer
	err := WriteLaunchSummary(&buf, testLaunchRecords(), collector.FlattenStats{
		Total:        5,
		Kept:         2,
		MultiCore:    2,
		MultiPayload: 1,
	})
	require.NoError(t, err)

	out := buf.String()
	require.Contains(t, out, "# Launch records")
	require.Contains(t, out, "Shape: 2 rows x 17 columns")
	require.Contains(t, out, "Date range: 2010-06-04 to 2012-05-22")
	require.Contains(t, out, "## Head")
	require.Contains(t, out, "## Missing values")
	require.Contains(t, out, "## Numeric summary")
	require.Contains(t, out, "## Value counts: Orbit")
	require.Contains(t, out, "## Flattening")
	require.Contains(t, out, "dropped: multiple cores")
}

func TestWriteScrapeSummary(t *testing.T) {
	var buf bytes.Buffer
	err := WriteScrapeSummary(&buf, testScrapedRows(), webscraper.ExtractStats{
		Tables: 3, Rows: 2, SkippedRows: 4, BadDates: 1,
	})
	require.NoError(t, err)

	out := buf.String()
	require.Contains(t, out, "# Scraped launches")
	require.Contains(t, out, "Shape: 2 rows x 12 columns")
	require.Contains(t, out, "Tables scanned: 3, rows extracted: 2, rows skipped: 4, unparseable dates: 1")
}

func TestWriteMergedSummary(t *testing.T) {
	records := testLaunchRecords()
	rows := []reconciler.MergedRow{
		{
			LaunchRecord:    records[1],
			ScrapedCustomer: ptr("NASA(COTS)"),
			ScrapedMassKg:   500,
			DiffKg:          25,
			WithinTolerance: ptr(true),
			LandingSuccess:  true,
			Year:            2012,
		},
		{
			LaunchRecord:  records[0],
			ScrapedMassKg: math.NaN(),
			DiffKg:        math.NaN(),
			Year:          2010,
		},
	}
	analysis := Analysis{
		ByOrbit: []launchstore.OrbitCount{
			{Orbit: sql.NullString{String: "LEO", Valid: true}, Launches: 2},
		},
		SuccessRates: []launchstore.SiteSuccessRate{
			{
				Site:        sql.NullString{String: "CCSFS SLC 40", Valid: true},
				SuccessRate: sql.NullFloat64{Float64: 0.5, Valid: true},
				N:           2,
			},
		},
		AvgPayload: []launchstore.SitePayload{
			{Site: sql.NullString{String: "CCSFS SLC 40", Valid: true}, N: 2},
		},
		TopCustomers: []launchstore.CustomerCount{
			{Customer: "NASA(COTS)", Launches: 1},
			{Customer: "Unknown", Launches: 1},
		},
	}

	var buf bytes.Buffer
	err := WriteMergedSummary(&buf, rows, reconciler.Stats{
		ApiRows: 2, ScrapedRows: 2, Matched: 1, Fanout: 0,
	}, analysis)
	require.NoError(t, err)

	out := buf.String()
	require.Contains(t, out, "# Reconciled launches")
	require.Contains(t, out, "Join: 2 api rows, 2 scraped rows, 1 matched, 0 fanout rows")
	require.Contains(t, out, "## Launches by orbit")
	require.Contains(t, out, "0.500")
	// the avg payload for the site was NULL and renders as missing
	require.Contains(t, out, "(missing)")
	require.Contains(t, out, "Unknown")
}

func TestSummaryDeterministic(t *testing.T) {
	var first, second bytes.Buffer
	stats := collector.FlattenStats{Total: 2, Kept: 2}
	require.NoError(t, WriteLaunchSummary(&first, testLaunchRecords(), stats))
	require.NoError(t, WriteLaunchSummary(&second, testLaunchRecords(), stats))
	require.Equal(t, first.String(), second.String())
}

func TestWriteLaunchSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	err := WriteLaunchSummary(&buf, nil, collector.FlattenStats{})
	require.NoError(t, err)
	require.Contains(t, buf.String(), "Shape: 0 rows x 17 columns")
	require.Contains(t, buf.String(), "Date range: no dates")
	require.False(t, strings.Contains(buf.String(), "NaN"))
}
