package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"spacey-pipeline/lib/serviceutil"
	"spacey-pipeline/services/collector"
	"spacey-pipeline/services/launchstore"
	"spacey-pipeline/services/reconciler"
	"spacey-pipeline/services/report"
	"spacey-pipeline/services/webscraper"
)

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Reconciles previously written tables and runs the aggregate queries.",
	Args:  cobra.MaximumNArgs(0),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			serviceutil.Fatal("read config", err)
		}

		records, err := readLaunchArtifact(cfg)
		if err != nil {
			serviceutil.Fatal("read launches.csv", err)
		}
		rows, err := readScrapedArtifact(cfg)
		if err != nil {
			serviceutil.Fatal("read scraped.csv", err)
		}

		err = runAnalyze(cmd.Context(), cfg, records, rows)
		if err != nil {
			serviceutil.Fatal("analyze", err)
		}
	},
}

func readLaunchArtifact(cfg Config) ([]collector.LaunchRecord, error) {
	f, err := cfg.openArtifact("launches.csv")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return report.ReadLaunchesCsv(f)
}

func readScrapedArtifact(cfg Config) ([]webscraper.ScrapedRow, error) {
	f, err := cfg.openArtifact("scraped.csv")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return report.ReadScrapedCsv(f)
}

func runAnalyze(ctx context.Context, cfg Config, records []collector.LaunchRecord, rows []webscraper.ScrapedRow) error {
	merged, stats := reconciler.Reconcile(ctx, records, rows, cfg.ToleranceKg)
	slog.InfoContext(ctx, "reconciled launches",
		"api_rows", stats.ApiRows,
		"scraped_rows", stats.ScrapedRows,
		"matched", stats.Matched,
		"fanout", stats.Fanout)

	store, err := launchstore.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	err = store.Replace(ctx, records, rows, merged)
	if err != nil {
		return fmt.Errorf("loading store: %w", err)
	}

	var analysis report.Analysis
	analysis.ByOrbit, err = store.LaunchesByOrbit(ctx)
	if err != nil {
		return fmt.Errorf("launches by orbit: %w", err)
	}
	analysis.SuccessRates, err = store.LandingSuccessRateBySite(ctx, cfg.MinSiteSamples)
	if err != nil {
		return fmt.Errorf("landing success rate by site: %w", err)
	}
	analysis.AvgPayload, err = store.AvgPayloadBySite(ctx)
	if err != nil {
		return fmt.Errorf("avg payload by site: %w", err)
	}
	analysis.TopCustomers, err = store.TopCustomers(ctx, cfg.TopCustomers)
	if err != nil {
		return fmt.Errorf("top customers: %w", err)
	}

	err = cfg.writeArtifact("merged.csv", func(w io.Writer) error {
		return report.WriteMergedCsv(w, merged)
	})
	if err != nil {
		return err
	}
	return cfg.writeArtifact("summary.md", func(w io.Writer) error {
		return report.WriteMergedSummary(w, merged, stats, analysis)
	})
}
