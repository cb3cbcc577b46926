// Package report writes the pipeline's durable artifacts: CSV tables
// and markdown summaries. Cell formatting is deterministic so the same
// snapshot always produces byte-identical tables.
package report

import (
	"math"
	"strconv"
	"time"

	"spacey-pipeline/services/collector"
	"spacey-pipeline/services/reconciler"
	"spacey-pipeline/services/webscraper"
)

// frame is a fully formatted table: one header plus string cells, the
// shared shape behind both the CSV writer and the summary renderer.
// Missing values are empty cells.
type frame struct {
	columns []string
	rows    [][]string
	// column names eligible for the numeric describe section
	numericCols []string
	// column names eligible for value-count sections
	categoricalCols []string
}

var launchColumns = []string{
	"FlightNumber", "Date", "BoosterVersion", "PayloadMass", "Orbit",
	"LaunchSite", "Outcome", "Flights", "GridFins", "Reused", "Legs",
	"LandingPad", "Block", "ReusedCount", "Serial", "Longitude", "Latitude",
}

func launchFrame(records []collector.LaunchRecord) frame {
	f := frame{
		columns:         launchColumns,
		numericCols:     []string{"FlightNumber", "PayloadMass", "Flights", "Block", "ReusedCount", "Longitude", "Latitude"},
		categoricalCols: []string{"Orbit", "LaunchSite", "Outcome", "BoosterVersion"},
	}
	for _, r := range records {
		f.rows = append(f.rows, launchCells(r))
	}
	return f
}

func launchCells(r collector.LaunchRecord) []string {
	return []string{
		strconv.FormatInt(r.FlightNumber, 10),
		r.Date.Format(time.DateOnly),
		stringCell(r.BoosterVersion),
		floatCell(r.PayloadMass),
		stringCell(r.Orbit),
		stringCell(r.LaunchSite),
		r.Outcome,
		intCell(r.Flights),
		boolCell(r.GridFins),
		boolCell(r.Reused),
		boolCell(r.Legs),
		stringCell(r.LandingPad),
		intCell(r.Block),
		intCell(r.ReusedCount),
		stringCell(r.Serial),
		floatPtrCell(r.Longitude),
		floatPtrCell(r.Latitude),
	}
}

var scrapedColumns = []string{
	"Flight No.", "Launch site", "Payload", "Payload mass", "Orbit",
	"Customer", "Launch outcome", "Version Booster", "Booster landing",
	"Date", "Time", "Payload mass (kg)",
}

func scrapedFrame(rows []webscraper.ScrapedRow) frame {
	f := frame{
		columns:         scrapedColumns,
		numericCols:     []string{"Flight No.", "Payload mass (kg)"},
		categoricalCols: []string{"Orbit", "Launch site", "Launch outcome", "Version Booster"},
	}
	for _, r := range rows {
		f.rows = append(f.rows, scrapedCells(r))
	}
	return f
}

func scrapedCells(r webscraper.ScrapedRow) []string {
	date := ""
	if r.Date != nil {
		date = r.Date.Format(time.DateOnly)
	}
	return []string{
		strconv.FormatInt(r.FlightNumber, 10),
		r.LaunchSite,
		r.Payload,
		r.MassRaw,
		r.Orbit,
		r.Customer,
		r.LaunchOutcome,
		r.BoosterVersion,
		r.LandingStatus,
		date,
		r.Time,
		floatCell(r.MassKg),
	}
}

var mergedColumns = append(append([]string{}, launchColumns...),
	"Customer", "Payload mass (kg)", "Launch site", "Version Booster",
	"payload_diff_kg", "payload_within_tolerance", "LandingSuccess", "Year",
)

func mergedFrame(rows []reconciler.MergedRow) frame {
	f := frame{
		columns:         mergedColumns,
		numericCols:     []string{"FlightNumber", "PayloadMass", "Payload mass (kg)", "payload_diff_kg", "Year"},
		categoricalCols: []string{"Orbit", "LaunchSite", "Outcome", "Customer"},
	}
	for _, r := range rows {
		cells := launchCells(r.LaunchRecord)
		cells = append(cells,
			stringCell(r.ScrapedCustomer),
			floatCell(r.ScrapedMassKg),
			stringCell(r.ScrapedSite),
			stringCell(r.ScrapedBooster),
			floatCell(r.DiffKg),
			boolCell(r.WithinTolerance),
			boolValue(r.LandingSuccess),
			strconv.Itoa(r.Year),
		)
		f.rows = append(f.rows, cells)
	}
	return f
}

func stringCell(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intCell(i *int64) string {
	if i == nil {
		return ""
	}
	return strconv.FormatInt(*i, 10)
}

func boolCell(b *bool) string {
	if b == nil {
		return ""
	}
	return boolValue(*b)
}

// the dataset convention for booleans is the capitalized form
func boolValue(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func floatCell(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func floatPtrCell(f *float64) string {
	if f == nil {
		return ""
	}
	return floatCell(*f)
}
