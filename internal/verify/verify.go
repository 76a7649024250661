// Package verify checks a generated dataset for internal consistency: the
// bounds and derivations of each table and the keys shared between tables.
package verify

import (
	"fmt"
	"sort"

	"github.com/Rana718/riskgen/internal/config"
	"github.com/Rana718/riskgen/internal/types"
	"github.com/shopspring/decimal"
)

// Violation is one broken rule on one row.
type Violation struct {
	Table string
	Key   string
	Rule  string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s[%s]: %s", v.Table, v.Key, v.Rule)
}

// Options carries the parameters the dataset was generated with.
type Options struct {
	Installments     int
	IntervalDays     int
	DefaultThreshold int
	MaturityDays     config.Range
	CollateralFactor config.Range
	Catalog          *config.Catalog // nil skips the region/country check
}

func OptionsFromConfig(cfg *config.Config) Options {
	cat := cfg.Catalog
	return Options{
		Installments:     cfg.Schedule.Installments,
		IntervalDays:     cfg.Schedule.IntervalDays,
		DefaultThreshold: cfg.Default.Threshold,
		MaturityDays:     cfg.Ranges.MaturityDays,
		CollateralFactor: cfg.Ranges.CollateralFactor,
		Catalog:          &cat,
	}
}

type checker struct {
	opts       Options
	violations []Violation
}

func (c *checker) fail(table, key, format string, args ...any) {
	c.violations = append(c.violations, Violation{Table: table, Key: key, Rule: fmt.Sprintf(format, args...)})
}

// Check returns every violation found in ds, in table order.
func Check(ds types.Dataset, opts Options) []Violation {
	c := &checker{opts: opts}

	loans := c.checkLoans(ds.Loans)
	c.checkCustomers(ds.Customers, ds.Loans)
	exposures := c.checkExposures(ds.Exposures, loans)
	c.checkDelinquencies(ds.Delinquencies, loans, exposures)
	c.checkECLs(ds.ECLs, loans, exposures)
	c.checkPayments(ds.Payments, loans)

	return c.violations
}

func (c *checker) checkLoans(rows []types.Loan) map[string]types.Loan {
	const table = "loan_master"
	loans := make(map[string]types.Loan, len(rows))
	for _, l := range rows {
		if _, dup := loans[l.LoanID]; dup {
			c.fail(table, l.LoanID, "duplicate Loan_ID")
		}
		loans[l.LoanID] = l

		if !l.MaturityDate.After(l.OriginationDate) {
			c.fail(table, l.LoanID, "Maturity_Date %s not after Origination_Date %s", l.MaturityDate, l.OriginationDate)
		}
		gap := l.MaturityDate.Sub(l.OriginationDate)
		if r := c.opts.MaturityDays; !r.IsZero() && (float64(gap) < r.Min || float64(gap) > r.Max) {
			c.fail(table, l.LoanID, "term of %d days outside [%g, %g]", gap, r.Min, r.Max)
		}
		if l.LoanAmount.IsNegative() {
			c.fail(table, l.LoanID, "negative Loan_Amount %s", l.LoanAmount)
		}
		if l.InterestRate.IsNegative() {
			c.fail(table, l.LoanID, "negative Interest_Rate %s", l.InterestRate)
		}
	}
	return loans
}

func (c *checker) checkCustomers(rows []types.Customer, loans []types.Loan) {
	const table = "customer_demographics"
	referenced := make(map[string]bool, len(loans))
	for _, l := range loans {
		referenced[l.CustomerID] = true
	}

	seen := make(map[string]bool, len(rows))
	for _, cu := range rows {
		if seen[cu.CustomerID] {
			c.fail(table, cu.CustomerID, "duplicate Customer_ID")
		}
		seen[cu.CustomerID] = true
		if !referenced[cu.CustomerID] {
			c.fail(table, cu.CustomerID, "Customer_ID not referenced by any loan")
		}
		if c.opts.Catalog != nil && !c.opts.Catalog.CountryInRegion(cu.Region, cu.Country) {
			c.fail(table, cu.CustomerID, "Country %q not in Region %q", cu.Country, cu.Region)
		}
	}
	for _, id := range sortedKeys(referenced) {
		if !seen[id] {
			c.fail(table, id, "Customer_ID referenced by a loan but missing")
		}
	}
}

func (c *checker) checkExposures(rows []types.Exposure, loans map[string]types.Loan) map[string]types.Exposure {
	const table = "exposure"
	exposures := make(map[string]types.Exposure, len(rows))
	for _, e := range rows {
		oneToOne(c, table, e.LoanID, loans, exposures)
		exposures[e.LoanID] = e

		if e.EADCurrent.IsNegative() {
			c.fail(table, e.LoanID, "negative EAD_Current %s", e.EADCurrent)
		}
		if e.EADProjected.LessThan(e.EADCurrent) {
			c.fail(table, e.LoanID, "EAD_Projected %s below EAD_Current %s", e.EADProjected, e.EADCurrent)
		}
		if r := c.opts.CollateralFactor; !r.IsZero() {
			lo := e.EADCurrent.Mul(decimal.NewFromFloat(r.Min))
			hi := e.EADCurrent.Mul(decimal.NewFromFloat(r.Max))
			if e.CollateralValue.LessThan(lo) || e.CollateralValue.GreaterThan(hi) {
				c.fail(table, e.LoanID, "Collateral_Value %s outside [%s, %s]", e.CollateralValue, lo, hi)
			}
		}
	}
	missing(c, table, loans, exposures)
	return exposures
}

func (c *checker) checkDelinquencies(rows []types.Delinquency, loans map[string]types.Loan, exposures map[string]types.Exposure) {
	const table = "default_delinquency"
	seen := make(map[string]types.Delinquency, len(rows))
	for _, d := range rows {
		oneToOne(c, table, d.LoanID, loans, seen)
		seen[d.LoanID] = d

		wantDefault := d.DaysPastDue > c.opts.DefaultThreshold
		if d.DefaultFlag != wantDefault {
			c.fail(table, d.LoanID, "Default_Flag %s with Days_Past_Due %d", types.Flag(d.DefaultFlag), d.DaysPastDue)
		}
		if d.DefaultDate.Valid != d.DefaultFlag {
			c.fail(table, d.LoanID, "Default_Date presence does not match Default_Flag")
		}
		if d.RecoveryDate.Valid != d.DefaultDate.Valid {
			c.fail(table, d.LoanID, "Recovery_Date presence does not match Default_Date")
		}
		if d.DefaultDate.Valid && d.RecoveryDate.Valid && d.RecoveryDate.Date.Before(d.DefaultDate.Date) {
			c.fail(table, d.LoanID, "Recovery_Date %s before Default_Date %s", d.RecoveryDate, d.DefaultDate)
		}

		if !d.DefaultFlag {
			if !d.RecoveryAmount.IsZero() {
				c.fail(table, d.LoanID, "Recovery_Amount %s on a loan not in default", d.RecoveryAmount)
			}
			continue
		}
		if d.RecoveryAmount.IsNegative() {
			c.fail(table, d.LoanID, "negative Recovery_Amount %s", d.RecoveryAmount)
		}
		if e, ok := exposures[d.LoanID]; ok && d.RecoveryAmount.GreaterThan(e.EADCurrent) {
			c.fail(table, d.LoanID, "Recovery_Amount %s above EAD_Current %s", d.RecoveryAmount, e.EADCurrent)
		}
	}
	missing(c, table, loans, seen)
}

func (c *checker) checkECLs(rows []types.ECL, loans map[string]types.Loan, exposures map[string]types.Exposure) {
	const table = "ecl"
	seen := make(map[string]types.ECL, len(rows))
	for _, e := range rows {
		oneToOne(c, table, e.LoanID, loans, seen)
		seen[e.LoanID] = e

		if e.Stage < 1 || e.Stage > 3 {
			c.fail(table, e.LoanID, "Stage %d outside 1..3", e.Stage)
		}
		if ex, ok := exposures[e.LoanID]; ok {
			want := ex.EADCurrent.Mul(e.PD).Mul(e.LGD).Round(types.MoneyPlaces)
			if !e.ECL12M.Equal(want) {
				c.fail(table, e.LoanID, "12M_ECL %s, want EAD×PD×LGD = %s", e.ECL12M, want)
			}
		}
		if e.LifetimeECL.LessThan(e.ECL12M) {
			c.fail(table, e.LoanID, "Lifetime_ECL %s below 12M_ECL %s", e.LifetimeECL, e.ECL12M)
		}
	}
	missing(c, table, loans, seen)
}

func (c *checker) checkPayments(rows []types.Payment, loans map[string]types.Loan) {
	const table = "payment_history"
	if c.opts.Installments <= 0 {
		return
	}
	byLoan := make(map[string][]types.Payment, len(loans))
	for _, p := range rows {
		if _, ok := loans[p.LoanID]; !ok {
			c.fail(table, p.LoanID, "Loan_ID not in loan_master")
			continue
		}
		byLoan[p.LoanID] = append(byLoan[p.LoanID], p)
	}

	n := decimal.NewFromInt(int64(c.opts.Installments))
	for _, id := range sortedKeys(loans) {
		payments := byLoan[id]
		if len(payments) != c.opts.Installments {
			c.fail(table, id, "%d payments, want %d", len(payments), c.opts.Installments)
		}
		sort.SliceStable(payments, func(i, j int) bool {
			return payments[i].PaymentDate.Before(payments[j].PaymentDate)
		})

		loan := loans[id]
		scheduled := loan.LoanAmount.Div(n).Round(types.MoneyPlaces)
		for k, p := range payments {
			if want := loan.OriginationDate.Add(c.opts.IntervalDays * k); !p.PaymentDate.Equal(want) {
				c.fail(table, id, "installment %d dated %s, want %s", k, p.PaymentDate, want)
			}
			if !p.ScheduledPayment.Equal(scheduled) {
				c.fail(table, id, "Scheduled_Payment %s, want %s", p.ScheduledPayment, scheduled)
			}
			if p.Missed != p.ActualPayment.IsZero() {
				c.fail(table, id, "Missed_Payment_Flag %s with Actual_Payment %s", types.Flag(p.Missed), p.ActualPayment)
			}
			if !p.ActualPayment.IsZero() && !p.ActualPayment.Equal(p.ScheduledPayment) {
				c.fail(table, id, "Actual_Payment %s is neither 0 nor Scheduled_Payment", p.ActualPayment)
			}
		}
	}
}

// oneToOne flags rows whose Loan_ID is unknown or repeated.
func oneToOne[T any](c *checker, table, id string, loans map[string]types.Loan, seen map[string]T) {
	if _, ok := loans[id]; !ok {
		c.fail(table, id, "Loan_ID not in loan_master")
	}
	if _, dup := seen[id]; dup {
		c.fail(table, id, "duplicate Loan_ID")
	}
}

// missing flags loans that have no row in present.
func missing[T any](c *checker, table string, loans map[string]types.Loan, present map[string]T) {
	for _, id := range sortedKeys(loans) {
		if _, ok := present[id]; !ok {
			c.fail(table, id, "missing row for loan")
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
