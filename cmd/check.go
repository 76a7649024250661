package cmd

import (
	"fmt"

	"github.com/Rana718/riskgen/internal/config"
	"github.com/Rana718/riskgen/internal/export"
	"github.com/Rana718/riskgen/internal/verify"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [dir]",
	Short: "Verify an exported dataset",
	Long: `
Load the six CSV tables from a directory and check them for broken keys,
out-of-range values, inconsistent defaults, wrong ECL arithmetic and
irregular payment schedules. The directory defaults to the configured
output directory. Exits non-zero when any violation is found.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if err := applyFlags(cmd.Flags(), cfg); err != nil {
			return err
		}

		dir := cfg.OutputDir
		if len(args) == 1 {
			dir = args[0]
		}
		return check(dir, cfg)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	addDatasetFlags(checkCmd.Flags())
}

func check(dir string, cfg *config.Config) error {
	if !quiet {
		color.Cyan("🔍 Checking %s...", dir)
	}

	ds, err := export.Load(dir)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	if err := reportViolations(verify.Check(ds, verify.OptionsFromConfig(cfg))); err != nil {
		return err
	}

	color.Green("✅ %s loans and %s payments checked, no violations",
		humanize.Comma(int64(len(ds.Loans))), humanize.Comma(int64(len(ds.Payments))))
	return nil
}
