package webscraper

import (
	"context"
	"strconv"
	"strings"
	"time"

	"spacey-pipeline/lib/htmlutil"
	"spacey-pipeline/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
)

// ScrapedRow is one flight parsed out of a launch-list table.
type ScrapedRow struct {
	FlightNumber   int64
	Date           *time.Time // nil when the date text did not parse
	Time           string
	BoosterVersion string
	LaunchSite     string
	Payload        string
	MassRaw        string  // cleaned cell text, e.g. "15,600 kg"
	MassKg         float64 // parsed from MassRaw, NaN when absent
	Orbit          string
	Customer       string
	LaunchOutcome  string
	LandingStatus  string
}

type ExtractStats struct {
	Tables      int
	Rows        int
	SkippedRows int // rows without a numeric header or with too few cells
	BadDates    int
}

// launch rows live in the collapsible plainrowheaders tables; the
// summary tables at the top of the page use different classes
const launchTableSelector = "table.wikitable.plainrowheaders.collapsible"

// a launch row carries nine positional cells
const launchRowCells = 9

// ExtractRows walks every launch table and extracts one ScrapedRow per
// table row whose header is a numeric flight number. Rows failing the
// structural preconditions are skipped and counted, never errors.
func ExtractRows(ctx context.Context, doc *goquery.Document) ([]ScrapedRow, ExtractStats) {
	_, span := tracer.Start(ctx, "ExtractRows")
	defer span.End()

	var rows []ScrapedRow
	var stats ExtractStats

	doc.Find(launchTableSelector).Each(func(_ int, table *goquery.Selection) {
		stats.Tables++
		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			th := tr.Find("th").First()
			if th.Length() == 0 {
				return
			}
			header := strings.TrimSpace(htmlutil.GetText(th.Nodes[0]))
			if !textutil.IsDigits(header) {
				return
			}
			cells := tr.Find("td")
			if cells.Length() < launchRowCells {
				stats.SkippedRows++
				return
			}

			flightNumber, err := strconv.ParseInt(header, 10, 64)
			if err != nil {
				stats.SkippedRows++
				return
			}

			row := extractRow(flightNumber, cells)
			if row.Date == nil {
				stats.BadDates++
			}
			rows = append(rows, row)
		})
	})

	stats.Rows = len(rows)
	span.SetAttributes(
		attribute.Int("tables", stats.Tables),
		attribute.Int("rows", stats.Rows),
		attribute.Int("skipped", stats.SkippedRows),
	)
	return rows, stats
}

func extractRow(flightNumber int64, cells *goquery.Selection) ScrapedRow {
	dateText, timeText := dateTime(cells.Eq(0))
	massRaw := cleanMass(cells.Eq(4))

	return ScrapedRow{
		FlightNumber:   flightNumber,
		Date:           parseDate(dateText),
		Time:           timeText,
		BoosterVersion: boosterVersion(cells.Eq(1)),
		LaunchSite:     anchorOrText(cells.Eq(2)),
		Payload:        cellText(cells.Eq(3)),
		MassRaw:        massRaw,
		MassKg:         ParseMassKg(massRaw),
		Orbit:          anchorOrText(cells.Eq(5)),
		Customer:       cellText(cells.Eq(6)),
		LaunchOutcome:  firstFragment(cells.Eq(7)),
		LandingStatus:  firstFragment(cells.Eq(8)),
	}
}

// dateTime takes the first two text fragments of the date cell; the
// date fragment loses its trailing comma.
func dateTime(cell *goquery.Selection) (string, string) {
	fragments := htmlutil.TextFragments(cell)
	date, timeOfDay := "", ""
	if len(fragments) > 0 {
		date = strings.Trim(strings.TrimSpace(fragments[0]), ",")
	}
	if len(fragments) > 1 {
		timeOfDay = strings.TrimSpace(fragments[1])
	}
	return date, timeOfDay
}

// boosterVersion joins every other text fragment of the cell except the
// last; the skipped fragments are the citation markers interleaved with
// the version text. An empty result falls back to the cell's first link
// text.
func boosterVersion(cell *goquery.Selection) string {
	fragments := htmlutil.TextFragments(cell)
	var kept []string
	for i, f := range fragments {
		if i%2 == 0 {
			kept = append(kept, f)
		}
	}
	if len(kept) > 0 {
		kept = kept[:len(kept)-1]
	}
	out := strings.TrimSpace(strings.Join(kept, ""))
	if out == "" {
		out = htmlutil.FirstAnchorText(cell)
	}
	return out
}

// cleanMass normalizes the mass cell's text (NFKD plus trim), then
// truncates it right after the first "kg". An empty cell becomes the
// literal "0", matching the source dataset's convention.
func cleanMass(cell *goquery.Selection) string {
	mass := textutil.NormalizeCompat(htmlutil.GetText(cell.Nodes[0]))
	if mass == "" {
		return "0"
	}
	if idx := strings.Index(mass, "kg"); idx != -1 {
		return mass[:idx+2]
	}
	return mass
}

func anchorOrText(cell *goquery.Selection) string {
	if text := htmlutil.FirstAnchorText(cell); text != "" {
		return text
	}
	return cellText(cell)
}

// cellText joins the trimmed text fragments of the cell with no
// separator, the way the source dataset flattened multi-link cells.
func cellText(cell *goquery.Selection) string {
	var b strings.Builder
	for _, f := range htmlutil.TextFragments(cell) {
		b.WriteString(strings.TrimSpace(f))
	}
	return b.String()
}

func firstFragment(cell *goquery.Selection) string {
	fragments := htmlutil.TextFragments(cell)
	if len(fragments) == 0 {
		return ""
	}
	return strings.TrimSpace(fragments[0])
}

// the page writes dates like "4 June 2010"
const pageDateLayout = "2 January 2006"

func parseDate(text string) *time.Time {
	parsed, err := time.Parse(pageDateLayout, text)
	if err != nil {
		return nil
	}
	date := time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
	return &date
}
