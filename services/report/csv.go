package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"spacey-pipeline/services/collector"
	"spacey-pipeline/services/reconciler"
	"spacey-pipeline/services/webscraper"
)

// WriteLaunchesCsv writes the flattened launch table. Columns follow
// launchColumns exactly, no index column, missing values as empty cells.
func WriteLaunchesCsv(w io.Writer, records []collector.LaunchRecord) error {
	return writeFrame(w, launchFrame(records))
}

// WriteScrapedCsv writes the scraped wikitable rows.
func WriteScrapedCsv(w io.Writer, rows []webscraper.ScrapedRow) error {
	return writeFrame(w, scrapedFrame(rows))
}

// WriteMergedCsv writes the reconciled table.
func WriteMergedCsv(w io.Writer, rows []reconciler.MergedRow) error {
	return writeFrame(w, mergedFrame(rows))
}

func writeFrame(w io.Writer, f frame) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(f.columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, row := range f.rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadLaunchesCsv reads back a table written by WriteLaunchesCsv, so the
// analyze stage can run standalone from a previous collect run.
func ReadLaunchesCsv(r io.Reader) ([]collector.LaunchRecord, error) {
	rows, err := readFrame(r, launchColumns)
	if err != nil {
		return nil, err
	}
	var records []collector.LaunchRecord
	for i, cells := range rows {
		rec, err := parseLaunchCells(cells)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// ReadScrapedCsv reads back a table written by WriteScrapedCsv.
func ReadScrapedCsv(r io.Reader) ([]webscraper.ScrapedRow, error) {
	rows, err := readFrame(r, scrapedColumns)
	if err != nil {
		return nil, err
	}
	var records []webscraper.ScrapedRow
	for i, cells := range rows {
		rec, err := parseScrapedCells(cells)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func readFrame(r io.Reader, want []string) ([][]string, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if len(header) != len(want) {
		return nil, fmt.Errorf("expected %d columns, got %d", len(want), len(header))
	}
	for i, col := range want {
		if header[i] != col {
			return nil, fmt.Errorf("column %d: expected %q, got %q", i, col, header[i])
		}
	}
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}
	return rows, nil
}

func parseLaunchCells(cells []string) (collector.LaunchRecord, error) {
	var rec collector.LaunchRecord
	var err error
	if rec.FlightNumber, err = strconv.ParseInt(cells[0], 10, 64); err != nil {
		return rec, fmt.Errorf("FlightNumber: %w", err)
	}
	if rec.Date, err = time.ParseInLocation(time.DateOnly, cells[1], time.UTC); err != nil {
		return rec, fmt.Errorf("Date: %w", err)
	}
	rec.BoosterVersion = parseStringCell(cells[2])
	if rec.PayloadMass, err = parseFloatCell(cells[3]); err != nil {
		return rec, fmt.Errorf("PayloadMass: %w", err)
	}
	rec.Orbit = parseStringCell(cells[4])
	rec.LaunchSite = parseStringCell(cells[5])
	rec.Outcome = cells[6]
	if rec.Flights, err = parseIntCell(cells[7]); err != nil {
		return rec, fmt.Errorf("Flights: %w", err)
	}
	if rec.GridFins, err = parseBoolCell(cells[8]); err != nil {
		return rec, fmt.Errorf("GridFins: %w", err)
	}
	if rec.Reused, err = parseBoolCell(cells[9]); err != nil {
		return rec, fmt.Errorf("Reused: %w", err)
	}
	if rec.Legs, err = parseBoolCell(cells[10]); err != nil {
		return rec, fmt.Errorf("Legs: %w", err)
	}
	rec.LandingPad = parseStringCell(cells[11])
	if rec.Block, err = parseIntCell(cells[12]); err != nil {
		return rec, fmt.Errorf("Block: %w", err)
	}
	if rec.ReusedCount, err = parseIntCell(cells[13]); err != nil {
		return rec, fmt.Errorf("ReusedCount: %w", err)
	}
	rec.Serial = parseStringCell(cells[14])
	if rec.Longitude, err = parseFloatPtrCell(cells[15]); err != nil {
		return rec, fmt.Errorf("Longitude: %w", err)
	}
	if rec.Latitude, err = parseFloatPtrCell(cells[16]); err != nil {
		return rec, fmt.Errorf("Latitude: %w", err)
	}
	return rec, nil
}

func parseScrapedCells(cells []string) (webscraper.ScrapedRow, error) {
	var rec webscraper.ScrapedRow
	var err error
	if rec.FlightNumber, err = strconv.ParseInt(cells[0], 10, 64); err != nil {
		return rec, fmt.Errorf("Flight No.: %w", err)
	}
	rec.LaunchSite = cells[1]
	rec.Payload = cells[2]
	rec.MassRaw = cells[3]
	rec.Orbit = cells[4]
	rec.Customer = cells[5]
	rec.LaunchOutcome = cells[6]
	rec.BoosterVersion = cells[7]
	rec.LandingStatus = cells[8]
	if cells[9] != "" {
		date, err := time.ParseInLocation(time.DateOnly, cells[9], time.UTC)
		if err != nil {
			return rec, fmt.Errorf("Date: %w", err)
		}
		rec.Date = &date
	}
	rec.Time = cells[10]
	if rec.MassKg, err = parseFloatCell(cells[11]); err != nil {
		return rec, fmt.Errorf("Payload mass (kg): %w", err)
	}
	return rec, nil
}

func parseStringCell(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func parseIntCell(s string) (*int64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func parseBoolCell(s string) (*bool, error) {
	switch s {
	case "":
		return nil, nil
	case "True":
		v := true
		return &v, nil
	case "False":
		v := false
		return &v, nil
	default:
		return nil, fmt.Errorf("invalid boolean cell %q", s)
	}
}

func parseFloatCell(s string) (float64, error) {
	if s == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

func parseFloatPtrCell(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
