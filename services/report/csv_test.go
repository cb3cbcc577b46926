package report

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"spacey-pipeline/services/collector"
	"spacey-pipeline/services/reconciler"
	"spacey-pipeline/services/webscraper"
)

func ptr[T any](v T) *T {
	return &v
}

func testLaunchRecords() []collector.LaunchRecord {
	return []collector.LaunchRecord{
		{
			FlightNumber:   1,
			Date:           time.Date(2010, 6, 4, 0, 0, 0, 0, time.UTC),
			BoosterVersion: ptr("Falcon 9"),
			PayloadMass:    math.NaN(),
			Orbit:          ptr("LEO"),
			LaunchSite:     ptr("CCSFS SLC 40"),
			Outcome:        "None None",
			Flights:        ptr(int64(1)),
			GridFins:       ptr(false),
			Reused:         ptr(false),
			Legs:           ptr(false),
			Block:          ptr(int64(1)),
			ReusedCount:    ptr(int64(0)),
			Serial:         ptr("B0003"),
			Longitude:      ptr(-80.577366),
			Latitude:       ptr(28.5618571),
		},
		{
			FlightNumber:   2,
			Date:           time.Date(2012, 5, 22, 0, 0, 0, 0, time.UTC),
			BoosterVersion: ptr("Falcon 9"),
			PayloadMass:    525,
			Orbit:          ptr("LEO"),
			LaunchSite:     ptr("CCSFS SLC 40"),
			Outcome:        "True ASDS",
			Flights:        ptr(int64(2)),
			GridFins:       ptr(true),
			Reused:         ptr(true),
			Legs:           ptr(true),
			LandingPad:     ptr("OCISLY"),
			Block:          ptr(int64(5)),
			ReusedCount:    ptr(int64(3)),
			Serial:         ptr("B1049"),
			Longitude:      ptr(-80.577366),
			Latitude:       ptr(28.5618571),
		},
	}
}

func TestWriteLaunchesCsv(t *testing.T) {
	records := testLaunchRecords()

	var buf bytes.Buffer
	err := WriteLaunchesCsv(&buf, records)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	require.Equal(t,
		"FlightNumber,Date,BoosterVersion,PayloadMass,Orbit,LaunchSite,Outcome,Flights,GridFins,Reused,Legs,LandingPad,Block,ReusedCount,Serial,Longitude,Latitude",
		lines[0])
	// NaN payload mass and missing landing pad serialize as empty cells
	require.Equal(t,
		"1,2010-06-04,Falcon 9,,LEO,CCSFS SLC 40,None None,1,False,False,False,,1,0,B0003,-80.577366,28.5618571",
		lines[1])
	require.Equal(t,
		"2,2012-05-22,Falcon 9,525,LEO,CCSFS SLC 40,True ASDS,2,True,True,True,OCISLY,5,3,B1049,-80.577366,28.5618571",
		lines[2])
}

func TestWriteLaunchesCsvDeterministic(t *testing.T) {
	records := testLaunchRecords()

	var first, second bytes.Buffer
	require.NoError(t, WriteLaunchesCsv(&first, records))
	require.NoError(t, WriteLaunchesCsv(&second, records))
	require.Equal(t, first.Bytes(), second.Bytes())
}

func TestLaunchesCsvRoundTrip(t *testing.T) {
	records := testLaunchRecords()

	var buf bytes.Buffer
	require.NoError(t, WriteLaunchesCsv(&buf, records))

	got, err := ReadLaunchesCsv(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// NaN never compares equal, so check it separately
	require.True(t, math.IsNaN(got[0].PayloadMass))
	got[0].PayloadMass = 0
	records[0].PayloadMass = 0
	require.Equal(t, records, got)
}

func TestReadLaunchesCsvRejectsWrongHeader(t *testing.T) {
	_, err := ReadLaunchesCsv(strings.NewReader("Nope,Columns\n1,2\n"))
	require.Error(t, err)
}

func testScrapedRows() []webscraper.ScrapedRow {
	return []webscraper.ScrapedRow{
		{
			FlightNumber:   1,
			Date:           ptr(time.Date(2010, 6, 4, 0, 0, 0, 0, time.UTC)),
			Time:           "18:45",
			BoosterVersion: "F9 v1.0B0003.1",
			LaunchSite:     "CCAFS",
			Payload:        "Dragon demo flight C1",
			MassRaw:        "0",
			MassKg:         math.NaN(),
			Orbit:          "LEO",
			Customer:       "SpaceX",
			LaunchOutcome:  "Success",
			LandingStatus:  "Failure",
		},
		{
			FlightNumber:   2,
			Time:           "07:44",
			BoosterVersion: "F9 v1.0B0005.1",
			LaunchSite:     "CCAFS",
			Payload:        "SpaceX CRS-1",
			MassRaw:        "525 kg",
			MassKg:         525,
			Orbit:          "LEO (ISS)",
			Customer:       "NASA(COTS)",
			LaunchOutcome:  "Success",
			LandingStatus:  "No attempt",
		},
	}
}

func TestScrapedCsvRoundTrip(t *testing.T) {
	rows := testScrapedRows()

	var buf bytes.Buffer
	require.NoError(t, WriteScrapedCsv(&buf, rows))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Equal(t,
		"Flight No.,Launch site,Payload,Payload mass,Orbit,Customer,Launch outcome,Version Booster,Booster landing,Date,Time,Payload mass (kg)",
		lines[0])

	got, err := ReadScrapedCsv(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)

	require.True(t, math.IsNaN(got[0].MassKg))
	got[0].MassKg = 0
	rows[0].MassKg = 0
	require.Equal(t, rows, got)
	// the second row had no parsed date and must read back as nil
	require.Nil(t, got[1].Date)
}

func TestWriteMergedCsv(t *testing.T) {
	records := testLaunchRecords()
	rows := []reconciler.MergedRow{
		{
			LaunchRecord:    records[1],
			ScrapedCustomer: ptr("NASA(COTS)"),
			ScrapedMassKg:   500,
			ScrapedSite:     ptr("CCAFS"),
			ScrapedBooster:  ptr("F9 v1.0B0005.1"),
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

	var buf bytes.Buffer
	require.NoError(t, WriteMergedCsv(&buf, rows))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	require.True(t, strings.HasSuffix(lines[0],
		"Customer,Payload mass (kg),Launch site,Version Booster,payload_diff_kg,payload_within_tolerance,LandingSuccess,Year"))
	require.True(t, strings.HasSuffix(lines[1], "NASA(COTS),500,CCAFS,F9 v1.0B0005.1,25,True,True,2012"))
	// unmatched row: scraped columns and the tolerance flag stay empty
	require.True(t, strings.HasSuffix(lines[2], ",,,,,,False,2010"))
}
