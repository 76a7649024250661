package cmd

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/Rana718/riskgen/internal/config"
	"github.com/Rana718/riskgen/internal/export"
	"github.com/Rana718/riskgen/internal/utils"
	"github.com/Rana718/riskgen/template"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("generate", pflag.ContinueOnError)
	addDatasetFlags(fs)
	addGenerateFlags(fs)
	return fs
}

func testConfig(t *testing.T, rows int) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Rows = rows
	cfg.OutputDir = t.TempDir()
	seed := int64(7)
	cfg.Seed = &seed
	return cfg
}

func answer(s string) *utils.InputUtils {
	return utils.NewInputUtils(strings.NewReader(s), &strings.Builder{})
}

func TestApplyFlagsOnlyOverridesChangedFlags(t *testing.T) {
	cfg := config.DefaultConfig()
	if err := applyFlags(newFlagSet(), cfg); err != nil {
		t.Fatalf("applyFlags failed: %v", err)
	}
	if cfg.Seed != nil || cfg.Rows != 1000 || cfg.Schedule.MissedProbability != 0.10 {
		t.Errorf("unset flags changed the config: %+v", cfg)
	}

	fs := newFlagSet()
	err := fs.Parse([]string{
		"--rows", "25", "--out", "build", "--seed", "0",
		"--installments", "12", "--missed-prob", "0", "--default-threshold", "60",
		"--stage-weights", "0.5,0.3,0.2", "--timestamped",
	})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if err := applyFlags(fs, cfg); err != nil {
		t.Fatalf("applyFlags failed: %v", err)
	}

	if cfg.Rows != 25 || cfg.OutputDir != "build" || !cfg.Timestamped {
		t.Errorf("rows/out/timestamped not applied: %d %s %v", cfg.Rows, cfg.OutputDir, cfg.Timestamped)
	}
	if cfg.Seed == nil || *cfg.Seed != 0 {
		t.Errorf("explicit zero seed not applied: %v", cfg.Seed)
	}
	if cfg.Schedule.Installments != 12 || cfg.Schedule.MissedProbability != 0 || cfg.Default.Threshold != 60 {
		t.Errorf("schedule not applied: %+v %+v", cfg.Schedule, cfg.Default)
	}
	if want := []float64{0.5, 0.3, 0.2}; !reflect.DeepEqual(cfg.Stages.Weights, want) {
		t.Errorf("stage weights = %v, want %v", cfg.Stages.Weights, want)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("config no longer valid: %v", err)
	}
}

func TestApplyFlagsLoadsCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content := "product_types: [Overdraft]\nsegments: [Private]\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write catalog: %v", err)
	}

	cfg := config.DefaultConfig()
	fs := newFlagSet()
	if err := fs.Parse([]string{"--catalog", path}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if err := applyFlags(fs, cfg); err != nil {
		t.Fatalf("applyFlags failed: %v", err)
	}
	if cfg.CatalogPath != path || !reflect.DeepEqual(cfg.Catalog.ProductTypes, []string{"Overdraft"}) {
		t.Errorf("catalog not applied: %s %v", cfg.CatalogPath, cfg.Catalog.ProductTypes)
	}

	fs = newFlagSet()
	if err := fs.Parse([]string{"--catalog", filepath.Join(t.TempDir(), "missing.yaml")}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if err := applyFlags(fs, config.DefaultConfig()); err == nil {
		t.Error("Expected an error for a missing catalog")
	}
}

func TestGenerateThenCheck(t *testing.T) {
	cfg := testConfig(t, 40)

	if err := generate(cfg, generateOptions{verify: true, quiet: true}, answer("")); err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if got := export.Existing(cfg.OutputDir); len(got) != len(export.Artifacts) {
		t.Fatalf("found %d artifacts, want %d", len(got), len(export.Artifacts))
	}

	ds, err := export.Load(cfg.OutputDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(ds.Loans) != 40 || len(ds.Payments) != 200 {
		t.Errorf("loaded %d loans and %d payments", len(ds.Loans), len(ds.Payments))
	}

	if err := check(cfg.OutputDir, cfg); err != nil {
		t.Errorf("check on fresh export failed: %v", err)
	}
}

func TestCheckReportsViolations(t *testing.T) {
	cfg := testConfig(t, 10)
	if err := generate(cfg, generateOptions{quiet: true}, answer("")); err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	ds, err := export.Load(cfg.OutputDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	ds.Payments = ds.Payments[1:]
	if _, err := export.NewWriter(cfg.OutputDir, false).Write(ds); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	err = check(cfg.OutputDir, cfg)
	if err == nil || !strings.Contains(err.Error(), "violation") {
		t.Errorf("Expected violations, got %v", err)
	}
}

func TestCheckMissingDirectory(t *testing.T) {
	cfg := config.DefaultConfig()
	if err := check(filepath.Join(t.TempDir(), "nope"), cfg); err == nil {
		t.Error("Expected an error for a missing directory")
	}
}

func TestGenerateWithExistingOutput(t *testing.T) {
	tests := []struct {
		name        string
		answer      string
		force       bool
		wantSubdirs int
		wantChanged bool
	}{
		{"cancel keeps files", "cancel\n", false, 0, false},
		{"overwrite replaces files", "overwrite\n", false, 0, true},
		{"force overwrites without asking", "", true, 0, true},
		{"timestamp writes a new directory", "timestamp\n", false, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t, 5)
			if err := generate(cfg, generateOptions{quiet: true}, answer("")); err != nil {
				t.Fatalf("first generate failed: %v", err)
			}
			loanFile := filepath.Join(cfg.OutputDir, export.LoanMaster.File)
			before, err := os.ReadFile(loanFile)
			if err != nil {
				t.Fatalf("Failed to read artifact: %v", err)
			}

			second := *cfg
			seed := int64(8)
			second.Seed = &seed
			opts := generateOptions{quiet: true, force: tt.force}
			if err := generate(&second, opts, answer(tt.answer)); err != nil {
				t.Fatalf("second generate failed: %v", err)
			}

			after, err := os.ReadFile(loanFile)
			if err != nil {
				t.Fatalf("Failed to read artifact: %v", err)
			}
			if changed := string(before) != string(after); changed != tt.wantChanged {
				t.Errorf("loan file changed = %v, want %v", changed, tt.wantChanged)
			}

			subdirs, _ := filepath.Glob(filepath.Join(cfg.OutputDir, "export_*_csv"))
			if len(subdirs) != tt.wantSubdirs {
				t.Errorf("found %d timestamped directories, want %d", len(subdirs), tt.wantSubdirs)
			}
		})
	}
}

func TestGenerateRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t, 5)
	cfg.Stages.Weights = []float64{1, 1}
	if err := generate(cfg, generateOptions{quiet: true}, answer("")); err == nil {
		t.Error("Expected an invalid config error")
	}
	if got := export.Existing(cfg.OutputDir); len(got) != 0 {
		t.Errorf("files written for an invalid config: %v", got)
	}
}

func TestInitializeProject(t *testing.T) {
	dir := t.TempDir()
	if err := initializeProject(dir, false, answer("")); err != nil {
		t.Fatalf("initializeProject failed: %v", err)
	}

	for _, name := range []string{config.FileName, template.CatalogFile, ".env"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s not created: %v", name, err)
		}
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(dir, config.FileName))
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("Failed to read generated config: %v", err)
	}
	v.Set("catalog_path", filepath.Join(dir, template.CatalogFile))
	cfg, err := config.LoadFrom(v)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("generated config is invalid: %v", err)
	}
	if !reflect.DeepEqual(cfg.Catalog, config.DefaultCatalog()) {
		t.Errorf("generated catalog differs from the default")
	}
}

func TestInitializeProjectKeepsExistingConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, config.FileName)
	if err := os.WriteFile(path, []byte(`{"rows": 3}`), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	if err := initializeProject(dir, false, answer("n\n")); err != nil {
		t.Fatalf("initializeProject failed: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != `{"rows": 3}` {
		t.Errorf("existing config overwritten: %s", data)
	}

	if err := initializeProject(dir, true, answer("")); err != nil {
		t.Fatalf("forced initializeProject failed: %v", err)
	}
	data, _ = os.ReadFile(path)
	if !strings.Contains(string(data), `"rows": 1000`) {
		t.Errorf("forced init did not rewrite config: %s", data)
	}
}

func TestHandleEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("OTHER=1"), 0644); err != nil {
		t.Fatalf("Failed to write .env: %v", err)
	}

	if err := handleEnvFile(path, "# RISKGEN_ROWS=1000\n"); err != nil {
		t.Fatalf("handleEnvFile failed: %v", err)
	}
	if err := handleEnvFile(path, "# RISKGEN_ROWS=1000\n"); err != nil {
		t.Fatalf("second handleEnvFile failed: %v", err)
	}

	data, _ := os.ReadFile(path)
	want := "OTHER=1\n\n# Added by riskgen\n# RISKGEN_ROWS=1000\n"
	if string(data) != want {
		t.Errorf(".env = %q, want %q", data, want)
	}
}
