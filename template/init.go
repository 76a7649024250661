package template

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Rana718/riskgen/internal/config"
)

// CatalogFile is the catalog written next to the config by init.
const CatalogFile = "catalog.yaml"

type ProjectTemplate struct {
	Config  *config.Config
	Catalog config.Catalog
}

func NewProjectTemplate() *ProjectTemplate {
	cfg := config.DefaultConfig()
	cfg.CatalogPath = CatalogFile
	return &ProjectTemplate{Config: cfg, Catalog: config.DefaultCatalog()}
}

func (pt *ProjectTemplate) GetRiskgenConfig() (string, error) {
	data, err := json.MarshalIndent(pt.Config, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to render config: %w", err)
	}
	return string(data) + "\n", nil
}

func (pt *ProjectTemplate) GetCatalog() (string, error) {
	data, err := pt.Catalog.Marshal()
	if err != nil {
		return "", fmt.Errorf("failed to render catalog: %w", err)
	}
	return "# Value sets sampled by riskgen generate\n" + string(data), nil
}

// GetEnvTemplate lists the environment overrides, commented out.
func (pt *ProjectTemplate) GetEnvTemplate() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# RISKGEN_ROWS=%d\n", pt.Config.Rows)
	fmt.Fprintf(&b, "# RISKGEN_OUTPUT_DIR=%s\n", pt.Config.OutputDir)
	b.WriteString("# RISKGEN_SEED=42\n")
	return b.String()
}

func (pt *ProjectTemplate) GetDirectoryStructure() []string {
	return []string{pt.Config.OutputDir}
}
