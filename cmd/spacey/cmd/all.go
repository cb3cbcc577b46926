package cmd

import (
	"github.com/spf13/cobra"

	"spacey-pipeline/lib/serviceutil"
)

func init() {
	rootCmd.AddCommand(allCmd)
}

var allCmd = &cobra.Command{
	Use:   "all",
	Short: "Runs collect, scrape and analyze in one go.",
	Args:  cobra.MaximumNArgs(0),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			serviceutil.Fatal("read config", err)
		}

		records, err := runCollect(cmd.Context(), cfg)
		if err != nil {
			serviceutil.Fatal("collect", err)
		}
		rows, err := runScrape(cmd.Context(), cfg)
		if err != nil {
			serviceutil.Fatal("scrape", err)
		}
		err = runAnalyze(cmd.Context(), cfg, records, rows)
		if err != nil {
			serviceutil.Fatal("analyze", err)
		}
	},
}
