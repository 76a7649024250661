package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Rana718/riskgen/internal/types"
	"github.com/shopspring/decimal"
)

// Load reads the six artifacts in dir back into a dataset.
func Load(dir string) (types.Dataset, error) {
	var ds types.Dataset

	for _, a := range Artifacts {
		path := filepath.Join(dir, a.File)
		if err := loadArtifact(path, a, &ds); err != nil {
			return types.Dataset{}, &ArtifactError{Artifact: a, Path: path, Err: err}
		}
	}
	return ds, nil
}

func loadArtifact(path string, a Artifact, ds *types.Dataset) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = len(a.Columns)

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	if strings.Join(header, ",") != strings.Join(a.Columns, ",") {
		return fmt.Errorf("unexpected header %v, want %v", header, a.Columns)
	}

	lineNum := 1
	for {
		lineNum++
		row, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNum, err)
		}
		p := &rowParser{row: row}
		if err := parseRow(a, p, ds); err != nil {
			return fmt.Errorf("line %d: %w", lineNum, err)
		}
		if p.err != nil {
			return fmt.Errorf("line %d: %w", lineNum, p.err)
		}
	}
}

func parseRow(a Artifact, p *rowParser, ds *types.Dataset) error {
	switch a.Table {
	case LoanMaster.Table:
		ds.Loans = append(ds.Loans, types.Loan{
			LoanID:          p.str(0),
			CustomerID:      p.str(1),
			OriginationDate: p.date(2),
			MaturityDate:    p.date(3),
			LoanAmount:      p.dec(4),
			InterestRate:    p.dec(5),
			ProductType:     p.str(6),
			CreditGrade:     p.str(7),
			RiskScore:       p.int(8),
		})
	case Customers.Table:
		ds.Customers = append(ds.Customers, types.Customer{
			CustomerID: p.str(0),
			Region:     p.str(1),
			Segment:    p.str(2),
			Industry:   p.str(3),
			Country:    p.str(4),
		})
	case Exposures.Table:
		ds.Exposures = append(ds.Exposures, types.Exposure{
			LoanID:          p.str(0),
			EADCurrent:      p.dec(1),
			EADProjected:    p.dec(2),
			CollateralValue: p.dec(3),
			UtilizationRate: p.dec(4),
		})
	case Delinquency.Table:
		ds.Delinquencies = append(ds.Delinquencies, types.Delinquency{
			LoanID:         p.str(0),
			DaysPastDue:    p.int(1),
			DefaultFlag:    p.flag(2),
			DefaultDate:    p.nullDate(3),
			RecoveryAmount: p.dec(4),
			RecoveryDate:   p.nullDate(5),
		})
	case ECL.Table:
		ds.ECLs = append(ds.ECLs, types.ECL{
			LoanID:      p.str(0),
			Stage:       p.int(1),
			ECL12M:      p.dec(2),
			LifetimeECL: p.dec(3),
			PD:          p.dec(4),
			LGD:         p.dec(5),
		})
	case Payments.Table:
		ds.Payments = append(ds.Payments, types.Payment{
			LoanID:           p.str(0),
			PaymentDate:      p.date(1),
			ScheduledPayment: p.dec(2),
			ActualPayment:    p.dec(3),
			Missed:           p.flag(4),
		})
	default:
		return fmt.Errorf("unknown table %s", a.Table)
	}
	return nil
}

// rowParser converts cells, keeping the first error so a row can be read
// field by field and checked once.
type rowParser struct {
	row []string
	err error
}

func (p *rowParser) fail(col int, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("column %d: %w", col+1, err)
	}
}

func (p *rowParser) str(col int) string {
	return strings.TrimSpace(p.row[col])
}

func (p *rowParser) int(col int) int {
	v, err := strconv.Atoi(p.str(col))
	if err != nil {
		p.fail(col, err)
	}
	return v
}

func (p *rowParser) dec(col int) decimal.Decimal {
	v, err := decimal.NewFromString(p.str(col))
	if err != nil {
		p.fail(col, err)
	}
	return v
}

func (p *rowParser) date(col int) types.Date {
	v, err := types.ParseDate(p.str(col))
	if err != nil {
		p.fail(col, err)
	}
	return v
}

func (p *rowParser) nullDate(col int) types.NullDate {
	v, err := types.ParseNullDate(p.str(col))
	if err != nil {
		p.fail(col, err)
	}
	return v
}

func (p *rowParser) flag(col int) bool {
	switch p.str(col) {
	case "1":
		return true
	case "0":
		return false
	}
	p.fail(col, fmt.Errorf("invalid flag %q", p.str(col)))
	return false
}
