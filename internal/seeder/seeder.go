package seeder

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/Rana718/riskgen/internal/config"
	"github.com/Rana718/riskgen/internal/types"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

type Seeder struct {
	config    *config.Config
	generator *DataGenerator
	graph     *DependencyGraph
	today     types.Date
	progress  bool
}

type Option func(*options)

type options struct {
	source   rand.Source
	today    types.Date
	progress bool
}

// WithSource sets the random source. Without it the source is seeded from
// the config seed, or from the clock when no seed is configured.
func WithSource(src rand.Source) Option {
	return func(o *options) { o.source = src }
}

// WithToday fixes the reference date that historical windows count back from.
func WithToday(d types.Date) Option {
	return func(o *options) { o.today = d }
}

// WithProgress prints a line per table as it is built.
func WithProgress(on bool) Option {
	return func(o *options) { o.progress = on }
}

// NewSeeder validates cfg and prepares a generator for it.
func NewSeeder(cfg *config.Config, opts ...Option) (*Seeder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.source == nil {
		seed := time.Now().UnixNano()
		if cfg.Seed != nil {
			seed = *cfg.Seed
		}
		o.source = rand.NewSource(seed)
	}
	if o.today.IsZero() {
		o.today = types.Today()
	}

	s := &Seeder{
		config:    cfg,
		generator: NewDataGenerator(o.source),
		graph:     NewDependencyGraph(),
		today:     o.today,
		progress:  o.progress,
	}
	s.registerTables()
	return s, nil
}

func (s *Seeder) registerTables() {
	s.graph.AddTable(&TableInfo{Name: TableLoans, Build: s.buildLoan})
	s.graph.AddTable(&TableInfo{Name: TableCustomers, Dependencies: []string{TableLoans}, Build: s.buildCustomer})
	s.graph.AddTable(&TableInfo{Name: TableExposures, Dependencies: []string{TableLoans}, Build: s.buildExposure})
	s.graph.AddTable(&TableInfo{Name: TableDelinquency, Dependencies: []string{TableLoans, TableExposures}, Build: s.buildDelinquency})
	s.graph.AddTable(&TableInfo{Name: TableECL, Dependencies: []string{TableLoans, TableExposures}, Build: s.buildECL})
	s.graph.AddTable(&TableInfo{Name: TablePayments, Dependencies: []string{TableLoans}, Build: s.buildPayments})
}

// Seed generates a complete portfolio. Tables are built one at a time in
// dependency order, each over every loan record.
func (s *Seeder) Seed() (*types.Portfolio, error) {
	order, err := s.graph.BuildOrder()
	if err != nil {
		return nil, fmt.Errorf("failed to build table order: %w", err)
	}

	ids := NewIdentifiers(s.config.IDs, s.config.Rows)
	records := make([]types.LoanRecord, s.config.Rows)
	for i := range records {
		records[i].Loan.LoanID = ids.LoanIDs[i]
		records[i].Loan.CustomerID = ids.CustomerIDs[i]
	}

	if s.progress {
		color.Cyan("🌱 Generating %s loans as of %s", humanize.Comma(int64(s.config.Rows)), s.today)
		color.Cyan("📋 Build order: %s", strings.Join(order, " → "))
	}

	for _, name := range order {
		table := s.graph.Table(name)
		if s.progress {
			color.Cyan("  📝 Building %s...", name)
		}
		for i := range records {
			table.Build(&records[i])
		}
	}

	for i := range records {
		checkRecord(&records[i])
	}

	return &types.Portfolio{Records: records}, nil
}
