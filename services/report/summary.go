package report

import (
	"database/sql"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"

	"spacey-pipeline/services/collector"
	"spacey-pipeline/services/launchstore"
	"spacey-pipeline/services/reconciler"
	"spacey-pipeline/services/webscraper"
)

const (
	headRows        = 5
	topValueCounts  = 10
	missingCellText = "(missing)"
)

// Analysis carries the aggregate query results rendered into the
// merged-table summary.
type Analysis struct {
	ByOrbit      []launchstore.OrbitCount
	SuccessRates []launchstore.SiteSuccessRate
	AvgPayload   []launchstore.SitePayload
	TopCustomers []launchstore.CustomerCount
}

// WriteLaunchSummary renders a markdown report over the flattened
// launch table: shape, date range, a head preview, missing-value
// counts, numeric describe and value counts, plus the drop tally from
// flattening.
func WriteLaunchSummary(w io.Writer, records []collector.LaunchRecord, stats collector.FlattenStats) error {
	f := launchFrame(records)
	if err := writeHeader(w, "Launch records", f); err != nil {
		return err
	}
	if err := writeDateRange(w, f.columnCells("Date")); err != nil {
		return err
	}
	if err := writeFrameSections(w, f); err != nil {
		return err
	}

	t := newMarkdownTable()
	t.AppendHeader(table.Row{"Stage", "Rows"})
	t.AppendRow(table.Row{"fetched", stats.Total})
	t.AppendRow(table.Row{"dropped: multiple cores", stats.MultiCore})
	t.AppendRow(table.Row{"dropped: multiple payloads", stats.MultiPayload})
	t.AppendRow(table.Row{"dropped: unparseable date", stats.BadDate})
	t.AppendRow(table.Row{"dropped: after cutoff", stats.AfterCutoff})
	t.AppendRow(table.Row{"kept", stats.Kept})
	if err := writeSection(w, "Flattening", t); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Entity lookups that resolved to nothing: %d\n", stats.EntityMisses)
	return err
}

// WriteScrapeSummary renders a markdown report over the scraped rows.
func WriteScrapeSummary(w io.Writer, rows []webscraper.ScrapedRow, stats webscraper.ExtractStats) error {
	f := scrapedFrame(rows)
	if err := writeHeader(w, "Scraped launches", f); err != nil {
		return err
	}
	if err := writeDateRange(w, f.columnCells("Date")); err != nil {
		return err
	}
	if err := writeFrameSections(w, f); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w,
		"Tables scanned: %d, rows extracted: %d, rows skipped: %d, unparseable dates: %d\n",
		stats.Tables, stats.Rows, stats.SkippedRows, stats.BadDates)
	return err
}

// WriteMergedSummary renders a markdown report over the reconciled
// table, including the aggregate query results.
func WriteMergedSummary(w io.Writer, rows []reconciler.MergedRow, stats reconciler.Stats, analysis Analysis) error {
	f := mergedFrame(rows)
	if err := writeHeader(w, "Reconciled launches", f); err != nil {
		return err
	}
	if err := writeDateRange(w, f.columnCells("Date")); err != nil {
		return err
	}
	if err := writeFrameSections(w, f); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w,
		"Join: %d api rows, %d scraped rows, %d matched, %d fanout rows\n\n",
		stats.ApiRows, stats.ScrapedRows, stats.Matched, stats.Fanout); err != nil {
		return err
	}

	t := newMarkdownTable()
	t.AppendHeader(table.Row{"Orbit", "Launches"})
	for _, r := range analysis.ByOrbit {
		t.AppendRow(table.Row{nullStringCell(r.Orbit), r.Launches})
	}
	if err := writeSection(w, "Launches by orbit", t); err != nil {
		return err
	}

	t = newMarkdownTable()
	t.AppendHeader(table.Row{"Site", "Landing success rate", "N"})
	for _, r := range analysis.SuccessRates {
		rate := missingCellText
		if r.SuccessRate.Valid {
			rate = strconv.FormatFloat(r.SuccessRate.Float64, 'f', 3, 64)
		}
		t.AppendRow(table.Row{nullStringCell(r.Site), rate, r.N})
	}
	if err := writeSection(w, "Landing success rate by site", t); err != nil {
		return err
	}

	t = newMarkdownTable()
	t.AppendHeader(table.Row{"Site", "Avg payload (kg)", "N"})
	for _, r := range analysis.AvgPayload {
		avg := missingCellText
		if r.AvgPayloadKg.Valid {
			avg = strconv.FormatFloat(r.AvgPayloadKg.Float64, 'f', 2, 64)
		}
		t.AppendRow(table.Row{nullStringCell(r.Site), avg, r.N})
	}
	if err := writeSection(w, "Average payload by site", t); err != nil {
		return err
	}

	t = newMarkdownTable()
	t.AppendHeader(table.Row{"Customer", "Launches"})
	for _, r := range analysis.TopCustomers {
		t.AppendRow(table.Row{r.Customer, r.Launches})
	}
	return writeSection(w, "Top customers", t)
}

func writeHeader(w io.Writer, title string, f frame) error {
	_, err := fmt.Fprintf(w, "# %s\n\nShape: %d rows x %d columns\n\n",
		title, len(f.rows), len(f.columns))
	return err
}

func writeDateRange(w io.Writer, dates []string) error {
	var min, max string
	for _, d := range dates {
		if d == "" {
			continue
		}
		if min == "" || d < min {
			min = d
		}
		if d > max {
			max = d
		}
	}
	if min == "" {
		_, err := fmt.Fprint(w, "Date range: no dates\n\n")
		return err
	}
	_, err := fmt.Fprintf(w, "Date range: %s to %s\n\n", min, max)
	return err
}

// writeFrameSections renders the sections every table shares: head,
// missing-value counts, numeric describe and top value counts.
func writeFrameSections(w io.Writer, f frame) error {
	t := newMarkdownTable()
	t.AppendHeader(rowOf(f.columns))
	for i, row := range f.rows {
		if i >= headRows {
			break
		}
		t.AppendRow(rowOf(row))
	}
	if err := writeSection(w, "Head", t); err != nil {
		return err
	}

	t = newMarkdownTable()
	t.AppendHeader(table.Row{"Column", "Missing"})
	for _, col := range f.columns {
		t.AppendRow(table.Row{col, f.missingCount(col)})
	}
	if err := writeSection(w, "Missing values", t); err != nil {
		return err
	}

	t = newMarkdownTable()
	t.AppendHeader(table.Row{"Column", "Count", "Mean", "Std", "Min", "25%", "50%", "75%", "Max"})
	for _, col := range f.numericCols {
		d := describeColumn(col, f.columnFloats(col))
		t.AppendRow(table.Row{
			d.Column, d.Count,
			statCell(d.Mean), statCell(d.Std), statCell(d.Min),
			statCell(d.P25), statCell(d.P50), statCell(d.P75), statCell(d.Max),
		})
	}
	if err := writeSection(w, "Numeric summary", t); err != nil {
		return err
	}

	for _, col := range f.categoricalCols {
		t = newMarkdownTable()
		t.AppendHeader(table.Row{col, "Count"})
		for _, vc := range countValues(f.columnCells(col), topValueCounts) {
			value := vc.Value
			if value == "" {
				value = missingCellText
			}
			t.AppendRow(table.Row{value, vc.Count})
		}
		if err := writeSection(w, "Value counts: "+col, t); err != nil {
			return err
		}
	}
	return nil
}

func writeSection(w io.Writer, title string, t table.Writer) error {
	_, err := fmt.Fprintf(w, "## %s\n\n%s\n\n", title, t.RenderMarkdown())
	return err
}

func newMarkdownTable() table.Writer {
	return table.NewWriter()
}

func rowOf(cells []string) table.Row {
	row := make(table.Row, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	return row
}

func statCell(v float64) string {
	if math.IsNaN(v) {
		return missingCellText
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}

func nullStringCell(s sql.NullString) string {
	if !s.Valid {
		return missingCellText
	}
	return s.String
}
