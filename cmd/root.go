package cmd

import (
	"fmt"
	"strings"

	"github.com/Rana718/riskgen/internal/config"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	quiet   bool
	Version = "1.0.0"
)

// envKeys are bound explicitly so they reach Unmarshal even when the config
// file does not mention them.
var envKeys = []string{"rows", "output_dir", "timestamped", "seed", "catalog_path"}

func showBanner() {
	greenColor := color.New(color.FgGreen, color.Bold)

	banner := []string{
		"╔══════════════════════════════════════════════════╗",
		"║   ██████╗ ██╗███████╗██╗  ██╗ ██████╗ ███████╗   ║",
		"║   ██╔══██╗██║██╔════╝██║ ██╔╝██╔════╝ ██╔════╝   ║",
		"║   ██████╔╝██║███████╗█████╔╝ ██║  ███╗█████╗     ║",
		"║   ██╔══██╗██║╚════██║██╔═██╗ ██║   ██║██╔══╝     ║",
		"║   ██║  ██║██║███████║██║  ██╗╚██████╔╝███████╗   ║",
		"║   ╚═╝  ╚═╝╚═╝╚══════╝╚═╝  ╚═╝ ╚═════╝ ╚══════╝   ║",
		"║                                                  ║",
		"║      📊 Mock Loan Portfolio Credit Risk Data     ║",
		"╚══════════════════════════════════════════════════╝",
	}

	for _, line := range banner {
		greenColor.Println(line)
	}

	fmt.Print("                 ")
	color.New(color.FgCyan, color.Bold).Print("Version: ")
	color.New(color.FgYellow, color.Bold).Printf("%s\n", Version)
}

var rootCmd = &cobra.Command{
	Use:   "riskgen",
	Short: "Generate mock loan portfolio credit risk datasets",
	Long: `
riskgen builds a synthetic loan portfolio and writes it as six linked CSV tables:

- loan_master_table.csv         loan terms, grade and risk score
- customer_demographics.csv     region, country, segment and industry
- exposure_data.csv             exposure at default and collateral
- default_delinquency_data.csv  days past due, defaults and recoveries
- ecl_table.csv                 IFRS 9 stage, PD, LGD and expected loss
- payment_history.csv           scheduled and actual installments`,
	SilenceUsage:  true,
	SilenceErrors: true,

	RunE: func(cmd *cobra.Command, args []string) error {
		showVersion, _ := cmd.Flags().GetBool("version")
		if showVersion {
			fmt.Printf("riskgen version %s\n", Version)
			return nil
		}

		showBanner()
		fmt.Println()
		return cmd.Help()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./"+config.FileName+")")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress progress output")

	rootCmd.Flags().BoolP("version", "v", false, "Show CLI version")
}

func initConfig() {
	if err := godotenv.Load(); err != nil {
		godotenv.Load(".env")
		godotenv.Load(".env.local")
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("json")
		viper.SetConfigName(strings.TrimSuffix(config.FileName, ".json"))
	}

	viper.SetEnvPrefix("riskgen")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	for _, key := range envKeys {
		viper.BindEnv(key)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			color.Yellow("⚠️  Could not read config: %v", err)
		}
	}
}
