package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ErrInvalidConfig is wrapped by every configuration error.
var ErrInvalidConfig = errors.New("invalid configuration")

// FileName is the config file looked up in the working directory.
const FileName = "riskgen.config.json"

type Config struct {
	Version     string   `json:"version" mapstructure:"version"`
	Rows        int      `json:"rows" mapstructure:"rows"`
	OutputDir   string   `json:"output_dir" mapstructure:"output_dir"`
	Timestamped bool     `json:"timestamped" mapstructure:"timestamped"`
	Seed        *int64   `json:"seed,omitempty" mapstructure:"seed"`
	CatalogPath string   `json:"catalog_path,omitempty" mapstructure:"catalog_path"`
	IDs         IDs      `json:"ids" mapstructure:"ids"`
	Ranges      Ranges   `json:"ranges" mapstructure:"ranges"`
	Windows     Windows  `json:"windows" mapstructure:"windows"`
	Schedule    Schedule `json:"schedule" mapstructure:"schedule"`
	Default     Default  `json:"default" mapstructure:"default"`
	Stages      Stages   `json:"stages" mapstructure:"stages"`

	Catalog Catalog `json:"-" mapstructure:"-"`
}

type IDs struct {
	LoanPrefix     string `json:"loan_prefix" mapstructure:"loan_prefix"`
	LoanBase       int    `json:"loan_base" mapstructure:"loan_base"`
	CustomerPrefix string `json:"customer_prefix" mapstructure:"customer_prefix"`
	CustomerBase   int    `json:"customer_base" mapstructure:"customer_base"`
	Width          int    `json:"width,omitempty" mapstructure:"width"` // zero pads to the digits of the base
}

// Range is a closed numeric interval sampled uniformly.
type Range struct {
	Min float64 `json:"min" mapstructure:"min"`
	Max float64 `json:"max" mapstructure:"max"`
}

func (r Range) IsZero() bool { return r == Range{} }

type Ranges struct {
	LoanAmount         Range `json:"loan_amount" mapstructure:"loan_amount"`
	InterestRate       Range `json:"interest_rate" mapstructure:"interest_rate"`
	RiskScore          Range `json:"risk_score" mapstructure:"risk_score"`
	MaturityDays       Range `json:"maturity_days" mapstructure:"maturity_days"`
	EADCurrent         Range `json:"ead_current" mapstructure:"ead_current"`
	EADUplift          Range `json:"ead_uplift" mapstructure:"ead_uplift"`
	CollateralFactor   Range `json:"collateral_factor" mapstructure:"collateral_factor"`
	UtilizationRate    Range `json:"utilization_rate" mapstructure:"utilization_rate"`
	PD                 Range `json:"pd" mapstructure:"pd"`
	LGD                Range `json:"lgd" mapstructure:"lgd"`
	LifetimeMultiplier Range `json:"lifetime_multiplier" mapstructure:"lifetime_multiplier"`
}

// Windows bound the historical dates, counted back from the run date.
type Windows struct {
	OriginationFromYears int `json:"origination_from_years" mapstructure:"origination_from_years"`
	OriginationToYears   int `json:"origination_to_years" mapstructure:"origination_to_years"`
	DefaultLookbackDays  int `json:"default_lookback_days" mapstructure:"default_lookback_days"`
}

type Schedule struct {
	Installments      int     `json:"installments" mapstructure:"installments"`
	IntervalDays      int     `json:"interval_days" mapstructure:"interval_days"`
	MissedProbability float64 `json:"missed_probability" mapstructure:"missed_probability"`
}

type Default struct {
	Threshold int `json:"threshold" mapstructure:"threshold"` // Days_Past_Due strictly above this is a default
}

type Stages struct {
	Weights []float64 `json:"weights" mapstructure:"weights"`
}

// DefaultConfig returns a configuration with every default applied.
func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg, nil)
	cfg.Catalog = DefaultCatalog()
	return cfg
}

// Load reads the configuration from the global viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom unmarshals v, fills unset fields with defaults and resolves the catalog.
func LoadFrom(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg, v)

	if cfg.CatalogPath != "" {
		cat, err := LoadCatalog(cfg.CatalogPath)
		if err != nil {
			return nil, err
		}
		cfg.Catalog = cat
	} else {
		cfg.Catalog = DefaultCatalog()
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config, v *viper.Viper) {
	isSet := func(key string) bool { return v != nil && v.IsSet(key) }

	if cfg.Version == "" {
		cfg.Version = "1"
	}
	if cfg.Rows == 0 && !isSet("rows") {
		cfg.Rows = 1000
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "data"
	}

	if cfg.IDs.LoanPrefix == "" {
		cfg.IDs.LoanPrefix = "LN"
	}
	if cfg.IDs.LoanBase == 0 {
		cfg.IDs.LoanBase = 100000
	}
	if cfg.IDs.CustomerPrefix == "" {
		cfg.IDs.CustomerPrefix = "CUST"
	}
	if cfg.IDs.CustomerBase == 0 {
		cfg.IDs.CustomerBase = 1000
	}

	r := &cfg.Ranges
	defaultRange(&r.LoanAmount, 5000, 500000)
	defaultRange(&r.InterestRate, 2.5, 15.0)
	defaultRange(&r.RiskScore, 300, 850)
	defaultRange(&r.MaturityDays, 365, 3650)
	defaultRange(&r.EADCurrent, 1000, 500000)
	defaultRange(&r.EADUplift, 100, 10000)
	defaultRange(&r.CollateralFactor, 0.5, 1.5)
	defaultRange(&r.UtilizationRate, 0.2, 1.0)
	defaultRange(&r.PD, 0.01, 0.5)
	defaultRange(&r.LGD, 0.1, 0.9)
	defaultRange(&r.LifetimeMultiplier, 1.5, 3.0)

	if cfg.Windows.OriginationFromYears == 0 {
		cfg.Windows.OriginationFromYears = 5
	}
	if cfg.Windows.OriginationToYears == 0 && !isSet("windows.origination_to_years") {
		cfg.Windows.OriginationToYears = 1
	}
	if cfg.Windows.DefaultLookbackDays == 0 {
		cfg.Windows.DefaultLookbackDays = 365
	}

	if cfg.Schedule.Installments == 0 {
		cfg.Schedule.Installments = 5
	}
	if cfg.Schedule.IntervalDays == 0 {
		cfg.Schedule.IntervalDays = 30
	}
	if cfg.Schedule.MissedProbability == 0 && !isSet("schedule.missed_probability") {
		cfg.Schedule.MissedProbability = 0.10
	}

	if cfg.Default.Threshold == 0 && !isSet("default.threshold") {
		cfg.Default.Threshold = 90
	}

	if len(cfg.Stages.Weights) == 0 {
		cfg.Stages.Weights = []float64{0.7, 0.2, 0.1}
	}
}

func defaultRange(r *Range, min, max float64) {
	if r.IsZero() {
		*r = Range{Min: min, Max: max}
	}
}

// Validate reports the first configuration error found. Generation must not
// start on a configuration that fails validation.
func (c *Config) Validate() error {
	if c.Rows <= 0 {
		return fmt.Errorf("%w: rows must be positive, got %d", ErrInvalidConfig, c.Rows)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("%w: output_dir cannot be empty", ErrInvalidConfig)
	}
	if c.IDs.LoanPrefix == c.IDs.CustomerPrefix {
		return fmt.Errorf("%w: loan and customer id prefixes must differ", ErrInvalidConfig)
	}
	if c.IDs.LoanBase < 0 || c.IDs.CustomerBase < 0 || c.IDs.Width < 0 {
		return fmt.Errorf("%w: id bases and width cannot be negative", ErrInvalidConfig)
	}

	ranges := []struct {
		name  string
		r     Range
		upper float64 // 0 means unbounded
	}{
		{"loan_amount", c.Ranges.LoanAmount, 0},
		{"interest_rate", c.Ranges.InterestRate, 100},
		{"risk_score", c.Ranges.RiskScore, 0},
		{"maturity_days", c.Ranges.MaturityDays, 0},
		{"ead_current", c.Ranges.EADCurrent, 0},
		{"ead_uplift", c.Ranges.EADUplift, 0},
		{"collateral_factor", c.Ranges.CollateralFactor, 0},
		{"utilization_rate", c.Ranges.UtilizationRate, 1},
		{"pd", c.Ranges.PD, 1},
		{"lgd", c.Ranges.LGD, 1},
		{"lifetime_multiplier", c.Ranges.LifetimeMultiplier, 0},
	}
	for _, rg := range ranges {
		if rg.r.Min < 0 || rg.r.Max < rg.r.Min {
			return fmt.Errorf("%w: ranges.%s must satisfy 0 <= min <= max, got [%g, %g]", ErrInvalidConfig, rg.name, rg.r.Min, rg.r.Max)
		}
		if rg.upper > 0 && rg.r.Max > rg.upper {
			return fmt.Errorf("%w: ranges.%s max cannot exceed %g", ErrInvalidConfig, rg.name, rg.upper)
		}
	}
	if c.Ranges.MaturityDays.Min < 1 {
		return fmt.Errorf("%w: ranges.maturity_days min must be at least one day", ErrInvalidConfig)
	}
	if c.Ranges.LifetimeMultiplier.Min < 1 {
		return fmt.Errorf("%w: ranges.lifetime_multiplier min must be at least 1", ErrInvalidConfig)
	}

	if c.Windows.OriginationFromYears < c.Windows.OriginationToYears || c.Windows.OriginationToYears < 0 {
		return fmt.Errorf("%w: origination window [%d, %d] years back is inverted", ErrInvalidConfig, c.Windows.OriginationFromYears, c.Windows.OriginationToYears)
	}
	if c.Windows.DefaultLookbackDays < 0 {
		return fmt.Errorf("%w: default_lookback_days cannot be negative", ErrInvalidConfig)
	}

	if c.Schedule.Installments <= 0 {
		return fmt.Errorf("%w: installments must be positive, got %d", ErrInvalidConfig, c.Schedule.Installments)
	}
	if c.Schedule.IntervalDays <= 0 {
		return fmt.Errorf("%w: interval_days must be positive, got %d", ErrInvalidConfig, c.Schedule.IntervalDays)
	}
	if c.Schedule.MissedProbability < 0 || c.Schedule.MissedProbability > 1 {
		return fmt.Errorf("%w: missed_probability must be within [0, 1], got %g", ErrInvalidConfig, c.Schedule.MissedProbability)
	}

	if c.Default.Threshold < 0 {
		return fmt.Errorf("%w: default threshold cannot be negative", ErrInvalidConfig)
	}

	if len(c.Stages.Weights) != 3 {
		return fmt.Errorf("%w: stages.weights needs exactly 3 values, got %d", ErrInvalidConfig, len(c.Stages.Weights))
	}
	var total float64
	for _, w := range c.Stages.Weights {
		if w < 0 {
			return fmt.Errorf("%w: stages.weights cannot contain negative weight %g", ErrInvalidConfig, w)
		}
		total += w
	}
	if total <= 0 {
		return fmt.Errorf("%w: stages.weights must sum to a positive value", ErrInvalidConfig)
	}

	return c.Catalog.Validate()
}

// EnsureOutputDir creates the output directory.
func (c *Config) EnsureOutputDir() error {
	if err := os.MkdirAll(c.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", c.OutputDir, err)
	}
	return nil
}

// IsInitialized reports whether a config file exists in dir.
func IsInitialized(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, FileName))
	return err == nil
}
