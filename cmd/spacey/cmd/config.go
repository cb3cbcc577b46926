package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"spacey-pipeline/lib/configutil"
	"spacey-pipeline/lib/spacexapi"
	"spacey-pipeline/services/collector"
	"spacey-pipeline/services/reconciler"
	"spacey-pipeline/services/webscraper"
)

type Config struct {
	Api  spacexapi.Options      `json:"api"`
	Page webscraper.PageOptions `json:"page"`
	// pause between entity fetches, in milliseconds
	ThrottleMs int `json:"throttle_ms"`
	// keep launches up to and including this date (YYYY-MM-DD)
	Cutoff string `json:"cutoff"`
	// booster family dropped before feature derivation
	ExcludeFamily string `json:"exclude_family"`
	// payload mass agreement threshold between the two sources
	ToleranceKg float64 `json:"tolerance_kg"`
	// minimum launches a site needs to appear in the success-rate query
	MinSiteSamples int64  `json:"min_site_samples"`
	TopCustomers   int64  `json:"top_customers"`
	Database       string `json:"database"`
	OutputDir      string `json:"output_dir"`
}

func loadConfig() (Config, error) {
	cfg, err := configutil.ReadConfig[Config]("spacey.json5")
	if os.IsNotExist(err) {
		// everything has a default, a missing config file is fine
		cfg = Config{}
	} else if err != nil {
		return cfg, err
	}

	if cfg.ExcludeFamily == "" {
		cfg.ExcludeFamily = collector.NonTargetFamily
	}
	if cfg.ToleranceKg == 0 {
		cfg.ToleranceKg = reconciler.DefaultToleranceKg
	}
	if cfg.MinSiteSamples == 0 {
		cfg.MinSiteSamples = 3
	}
	if cfg.TopCustomers == 0 {
		cfg.TopCustomers = 10
	}
	if cfg.Database == "" {
		cfg.Database = "spacey.db"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "out"
	}
	return cfg, nil
}

func (c Config) cutoffTime() (time.Time, error) {
	if c.Cutoff == "" {
		return collector.DefaultCutoff, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, c.Cutoff, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid cutoff %q: %w", c.Cutoff, err)
	}
	return t, nil
}

func (c Config) writeArtifact(name string, write func(io.Writer) error) error {
	err := os.MkdirAll(c.OutputDir, 0o755)
	if err != nil {
		return err
	}

	path := filepath.Join(c.OutputDir, name)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	err = write(f)
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

func (c Config) openArtifact(name string) (*os.File, error) {
	return os.Open(filepath.Join(c.OutputDir, name))
}
