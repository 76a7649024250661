package cmd

import (
	"fmt"

	"github.com/Rana718/riskgen/internal/config"
	"github.com/Rana718/riskgen/internal/export"
	"github.com/Rana718/riskgen/internal/seeder"
	"github.com/Rana718/riskgen/internal/utils"
	"github.com/Rana718/riskgen/internal/verify"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a mock loan portfolio",
	Long: `
Generate a synthetic loan portfolio and export it as six CSV tables.
Values come from riskgen.config.json, RISKGEN_* environment variables and
the flags below, in increasing order of precedence.

Examples:
  riskgen generate
  riskgen generate --rows 5000 --seed 42 --out data
  riskgen generate --stage-weights 0.6,0.3,0.1 --verify`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

type generateOptions struct {
	force  bool
	verify bool
	quiet  bool
}

func init() {
	rootCmd.AddCommand(generateCmd)

	addDatasetFlags(generateCmd.Flags())
	addGenerateFlags(generateCmd.Flags())
}

func addGenerateFlags(fs *pflag.FlagSet) {
	fs.IntP("rows", "n", 0, "Number of loans to generate (default 1000)")
	fs.StringP("out", "o", "", "Output directory (default \"data\")")
	fs.Int64("seed", 0, "Random seed for a reproducible run")
	fs.Float64("missed-prob", 0, "Probability that an installment is missed (default 0.1)")
	fs.Float64Slice("stage-weights", nil, "Weights of ECL stages 1,2,3 (default 0.7,0.2,0.1)")
	fs.Bool("timestamped", false, "Write into a fresh export_<timestamp>_csv directory")
	fs.Bool("verify", false, "Check the generated data before writing it")
	fs.BoolP("force", "f", false, "Overwrite existing files without asking")
}

// addDatasetFlags registers the flags that change what a valid dataset
// looks like, shared by generate and check.
func addDatasetFlags(fs *pflag.FlagSet) {
	fs.String("catalog", "", "YAML file with the value sets to sample from")
	fs.Int("installments", 0, "Installments per loan (default 5)")
	fs.Int("default-threshold", 0, "Days past due above which a loan defaults (default 90)")
}

// applyFlags copies every flag the user set onto cfg. Flags left at their
// zero default never override the config file or environment.
func applyFlags(fs *pflag.FlagSet, cfg *config.Config) error {
	if fs.Changed("rows") {
		cfg.Rows, _ = fs.GetInt("rows")
	}
	if fs.Changed("out") {
		cfg.OutputDir, _ = fs.GetString("out")
	}
	if fs.Changed("seed") {
		seed, _ := fs.GetInt64("seed")
		cfg.Seed = &seed
	}
	if fs.Changed("catalog") {
		path, _ := fs.GetString("catalog")
		catalog, err := config.LoadCatalog(path)
		if err != nil {
			return err
		}
		cfg.CatalogPath = path
		cfg.Catalog = catalog
	}
	if fs.Changed("installments") {
		cfg.Schedule.Installments, _ = fs.GetInt("installments")
	}
	if fs.Changed("missed-prob") {
		cfg.Schedule.MissedProbability, _ = fs.GetFloat64("missed-prob")
	}
	if fs.Changed("default-threshold") {
		cfg.Default.Threshold, _ = fs.GetInt("default-threshold")
	}
	if fs.Changed("stage-weights") {
		cfg.Stages.Weights, _ = fs.GetFloat64Slice("stage-weights")
	}
	if fs.Changed("timestamped") {
		cfg.Timestamped, _ = fs.GetBool("timestamped")
	}
	return nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := applyFlags(cmd.Flags(), cfg); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	force, _ := cmd.Flags().GetBool("force")
	verifyData, _ := cmd.Flags().GetBool("verify")

	input := utils.NewInputUtils(cmd.InOrStdin(), cmd.OutOrStdout())
	return generate(cfg, generateOptions{force: force, verify: verifyData, quiet: quiet}, input)
}

func generate(cfg *config.Config, opts generateOptions, input *utils.InputUtils) error {
	if !cfg.Timestamped {
		if existing := export.Existing(cfg.OutputDir); len(existing) > 0 {
			color.Yellow("⚠️  %d artifact(s) already exist in %s", len(existing), cfg.OutputDir)
			choice := input.GetUserChoice([]string{"overwrite", "timestamp", "cancel"},
				"Overwrite them, write a timestamped export, or cancel?", opts.force)
			switch choice {
			case "timestamp":
				cfg.Timestamped = true
			case "cancel":
				color.Yellow("Generation cancelled")
				return nil
			}
		}
	}

	s, err := seeder.NewSeeder(cfg, seeder.WithProgress(!opts.quiet))
	if err != nil {
		return err
	}

	portfolio, err := s.Seed()
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}
	ds := portfolio.Dataset()

	if opts.verify {
		if err := reportViolations(verify.Check(ds, verify.OptionsFromConfig(cfg))); err != nil {
			return err
		}
		if !opts.quiet {
			color.Green("✅ Every property holds")
		}
	}

	if err := cfg.EnsureOutputDir(); err != nil {
		return err
	}

	res, err := export.NewWriter(cfg.OutputDir, cfg.Timestamped).Write(ds)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	printSummary(res)
	return nil
}

func printSummary(res *export.Result) {
	color.Green("✅ Export completed: %s", res.Dir)
	fmt.Println()
	for _, a := range export.Artifacts {
		fmt.Printf("   %-30s %10s rows\n", a.File, humanize.Comma(int64(res.Rows[a.Table])))
	}
}

// maxReported caps how many violations are printed.
const maxReported = 20

func reportViolations(violations []verify.Violation) error {
	if len(violations) == 0 {
		return nil
	}

	for i, v := range violations {
		if i == maxReported {
			color.Red("   ... and %s more", humanize.Comma(int64(len(violations)-maxReported)))
			break
		}
		color.Red("   ✗ %s", v)
	}
	return fmt.Errorf("%s violation(s) found", humanize.Comma(int64(len(violations))))
}
