package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"spacey-pipeline/lib/serviceutil"
	"spacey-pipeline/services/report"
	"spacey-pipeline/services/webscraper"
)

func init() {
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrapes the launch wikitables and writes the scraped table.",
	Args:  cobra.MaximumNArgs(0),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			serviceutil.Fatal("read config", err)
		}
		_, err = runScrape(cmd.Context(), cfg)
		if err != nil {
			serviceutil.Fatal("scrape", err)
		}
	},
}

func runScrape(ctx context.Context, cfg Config) ([]webscraper.ScrapedRow, error) {
	doc, err := webscraper.FetchPage(ctx, cfg.Page)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}

	rows, stats := webscraper.ExtractRows(ctx, doc)
	slog.InfoContext(ctx, "extracted launch rows",
		"tables", stats.Tables,
		"rows", stats.Rows,
		"skipped", stats.SkippedRows,
		"bad_dates", stats.BadDates)

	err = cfg.writeArtifact("scraped.csv", func(w io.Writer) error {
		return report.WriteScrapedCsv(w, rows)
	})
	if err != nil {
		return nil, err
	}
	err = cfg.writeArtifact("scraped.md", func(w io.Writer) error {
		return report.WriteScrapeSummary(w, rows, stats)
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}
