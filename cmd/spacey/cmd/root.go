package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"spacey-pipeline/lib/serviceutil"
	"spacey-pipeline/lib/telemetry"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "spacey",
	Short: "spacey collects, scrapes and reconciles SpaceX launch data.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(verbose)

		err := telemetry.SetupFromEnv(cmd.Context(), "spacey")
		// no telemetry.json5 means the otel globals stay no-ops
		if err != nil && !os.IsNotExist(err) {
			serviceutil.Fatal("setup telemetry", err)
		}
		telemetry.InstrumentPerfStats(cmd.Context())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		telemetry.Shutdown(context.Background())
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose logging/instrumentation.")
}

func Execute() {
	ctx := serviceutil.SignalContext()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
