package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"spacey-pipeline/lib/serviceutil"
	"spacey-pipeline/lib/spacexapi"
	"spacey-pipeline/services/collector"
	"spacey-pipeline/services/report"
)

func init() {
	rootCmd.AddCommand(collectCmd)
}

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Fetches launches from the REST API and writes the flattened table.",
	Args:  cobra.MaximumNArgs(0),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			serviceutil.Fatal("read config", err)
		}
		_, err = runCollect(cmd.Context(), cfg)
		if err != nil {
			serviceutil.Fatal("collect", err)
		}
	},
}

func runCollect(ctx context.Context, cfg Config) ([]collector.LaunchRecord, error) {
	cutoff, err := cfg.cutoffTime()
	if err != nil {
		return nil, err
	}

	client := spacexapi.NewClient(cfg.Api)
	launches, err := client.FetchLaunches(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching launches: %w", err)
	}
	slog.InfoContext(ctx, "fetched launches", "count", len(launches))

	cache := spacexapi.NewCache(client, spacexapi.CacheOptions{
		Throttle: time.Duration(cfg.ThrottleMs) * time.Millisecond,
	})
	records, stats := collector.Flatten(ctx, launches, cache, cutoff)
	records = collector.DeriveFeatures(records, cfg.ExcludeFamily)
	slog.InfoContext(ctx, "flattened launches",
		"kept", len(records),
		"entity_fetches", cache.Fetches(),
		"entity_misses", cache.Misses())

	err = cfg.writeArtifact("launches.csv", func(w io.Writer) error {
		return report.WriteLaunchesCsv(w, records)
	})
	if err != nil {
		return nil, err
	}
	err = cfg.writeArtifact("launches.md", func(w io.Writer) error {
		return report.WriteLaunchSummary(w, records, stats)
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}
