package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Catalog holds the enumerated value sets the generator samples from.
type Catalog struct {
	ProductTypes []string            `yaml:"product_types"`
	CreditGrades []string            `yaml:"credit_grades"`
	Regions      []string            `yaml:"regions"`
	Countries    map[string][]string `yaml:"countries"`
	Segments     []string            `yaml:"segments"`
	Industries   []string            `yaml:"industries"`
	DaysPastDue  []int               `yaml:"days_past_due"`
}

// DefaultCatalog returns the built-in value sets.
func DefaultCatalog() Catalog {
	return Catalog{
		ProductTypes: []string{"Mortgage", "Auto Loan", "Personal Loan", "Business Loan", "Credit Card"},
		CreditGrades: []string{"AAA", "AA", "A", "BBB", "BB", "B", "CCC", "CC", "C", "D"},
		Regions:      []string{"North America", "Europe", "Asia", "South America", "Africa"},
		Countries: map[string][]string{
			"North America": {"USA", "Canada"},
			"Europe":        {"UK", "Germany", "France"},
			"Asia":          {"India", "China", "Japan"},
			"South America": {"Brazil", "Argentina"},
			"Africa":        {"South Africa", "Nigeria"},
		},
		Segments:    []string{"Retail", "SME", "Corporate"},
		Industries:  []string{"Manufacturing", "Finance", "Healthcare", "Retail", "Technology", "Logistics"},
		DaysPastDue: []int{0, 30, 60, 90, 120},
	}
}

// LoadCatalog reads a YAML catalog. Sets missing from the file keep their
// built-in values; a file that names regions must also supply their countries.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}

	var file Catalog
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Catalog{}, fmt.Errorf("%w: malformed catalog %s: %v", ErrInvalidConfig, path, err)
	}

	cat := DefaultCatalog()
	if len(file.ProductTypes) > 0 {
		cat.ProductTypes = file.ProductTypes
	}
	if len(file.CreditGrades) > 0 {
		cat.CreditGrades = file.CreditGrades
	}
	if len(file.Regions) > 0 || len(file.Countries) > 0 {
		cat.Regions = file.Regions
		cat.Countries = file.Countries
	}
	if len(file.Segments) > 0 {
		cat.Segments = file.Segments
	}
	if len(file.Industries) > 0 {
		cat.Industries = file.Industries
	}
	if len(file.DaysPastDue) > 0 {
		cat.DaysPastDue = file.DaysPastDue
	}
	return cat, nil
}

// Marshal renders the catalog as YAML.
func (c Catalog) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Validate reports malformed sets and an inconsistent region to country mapping.
func (c Catalog) Validate() error {
	sets := []struct {
		name   string
		values []string
	}{
		{"product_types", c.ProductTypes},
		{"credit_grades", c.CreditGrades},
		{"regions", c.Regions},
		{"segments", c.Segments},
		{"industries", c.Industries},
	}
	for _, s := range sets {
		if err := validateSet(s.name, s.values); err != nil {
			return err
		}
	}

	for _, region := range c.Regions {
		if err := validateSet("countries."+region, c.Countries[region]); err != nil {
			return err
		}
	}
	for region := range c.Countries {
		if !contains(c.Regions, region) {
			return fmt.Errorf("%w: countries listed for unknown region %q", ErrInvalidConfig, region)
		}
	}

	if len(c.DaysPastDue) == 0 {
		return fmt.Errorf("%w: days_past_due cannot be empty", ErrInvalidConfig)
	}
	for _, d := range c.DaysPastDue {
		if d < 0 {
			return fmt.Errorf("%w: days_past_due contains negative value %d", ErrInvalidConfig, d)
		}
	}
	return nil
}

// CountryInRegion reports whether country is allowed for region.
func (c Catalog) CountryInRegion(region, country string) bool {
	return contains(c.Countries[region], country)
}

func validateSet(name string, values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("%w: %s cannot be empty", ErrInvalidConfig, name)
	}
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if v == "" {
			return fmt.Errorf("%w: %s contains an empty value", ErrInvalidConfig, name)
		}
		if seen[v] {
			return fmt.Errorf("%w: %s contains duplicate value %q", ErrInvalidConfig, name, v)
		}
		seen[v] = true
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
