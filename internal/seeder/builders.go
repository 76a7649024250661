package seeder

import (
	"fmt"

	"github.com/Rana718/riskgen/internal/types"
	"github.com/shopspring/decimal"
)

func (s *Seeder) buildLoan(rec *types.LoanRecord) {
	r := s.config.Ranges
	w := s.config.Windows
	cat := s.config.Catalog

	origination := s.generator.Date(s.today.AddYears(-w.OriginationFromYears), s.today.AddYears(-w.OriginationToYears))
	term := s.generator.Between(int(r.MaturityDays.Min), int(r.MaturityDays.Max))

	rec.Loan.OriginationDate = origination
	rec.Loan.MaturityDate = origination.Add(term)
	rec.Loan.LoanAmount = s.generator.Amount(r.LoanAmount, types.MoneyPlaces)
	rec.Loan.InterestRate = s.generator.Amount(r.InterestRate, types.RatePlaces)
	rec.Loan.ProductType = s.generator.Choice(cat.ProductTypes)
	rec.Loan.CreditGrade = s.generator.Choice(cat.CreditGrades)
	rec.Loan.RiskScore = int(s.generator.Amount(r.RiskScore, 0).IntPart())
}

func (s *Seeder) buildCustomer(rec *types.LoanRecord) {
	cat := s.config.Catalog

	region := s.generator.Choice(cat.Regions)
	rec.Customer = types.Customer{
		CustomerID: rec.Loan.CustomerID,
		Region:     region,
		Segment:    s.generator.Choice(cat.Segments),
		Industry:   s.generator.Choice(cat.Industries),
		Country:    s.generator.Choice(cat.Countries[region]),
	}
}

func (s *Seeder) buildExposure(rec *types.LoanRecord) {
	r := s.config.Ranges

	ead := s.generator.Amount(r.EADCurrent, types.MoneyPlaces)
	rec.Exposure = types.Exposure{
		LoanID:          rec.Loan.LoanID,
		EADCurrent:      ead,
		EADProjected:    ead.Add(s.generator.Amount(r.EADUplift, types.MoneyPlaces)),
		CollateralValue: s.generator.Scale(ead, r.CollateralFactor, types.MoneyPlaces),
		UtilizationRate: s.generator.Amount(r.UtilizationRate, types.UtilizationPlaces),
	}
}

func (s *Seeder) buildDelinquency(rec *types.LoanRecord) {
	dpd := s.generator.ChoiceInt(s.config.Catalog.DaysPastDue)
	d := types.Delinquency{
		LoanID:         rec.Loan.LoanID,
		DaysPastDue:    dpd,
		DefaultFlag:    dpd > s.config.Default.Threshold,
		RecoveryAmount: decimal.Zero,
	}

	if d.DefaultFlag {
		defaulted := s.generator.Date(s.today.Add(-s.config.Windows.DefaultLookbackDays), s.today)
		d.DefaultDate = types.Some(defaulted)
		d.RecoveryAmount = s.generator.UpTo(rec.Exposure.EADCurrent, types.MoneyPlaces)
		d.RecoveryDate = types.Some(s.generator.Date(defaulted, s.today))
	}

	rec.Delinquency = d
}

func (s *Seeder) buildECL(rec *types.LoanRecord) {
	r := s.config.Ranges

	stage := s.generator.Weighted(s.config.Stages.Weights) + 1
	pd := s.generator.Amount(r.PD, types.PDPlaces)
	lgd := s.generator.Amount(r.LGD, types.LGDPlaces)
	ecl12 := rec.Exposure.EADCurrent.Mul(pd).Mul(lgd).Round(types.MoneyPlaces)

	rec.ECL = types.ECL{
		LoanID:      rec.Loan.LoanID,
		Stage:       stage,
		ECL12M:      ecl12,
		LifetimeECL: s.generator.Scale(ecl12, r.LifetimeMultiplier, types.MoneyPlaces),
		PD:          pd,
		LGD:         lgd,
	}
}

func (s *Seeder) buildPayments(rec *types.LoanRecord) {
	sch := s.config.Schedule
	scheduled := ScheduledPayment(rec.Loan.LoanAmount, sch.Installments)

	payments := make([]types.Payment, sch.Installments)
	for k := range payments {
		actual := scheduled
		if s.generator.Chance(sch.MissedProbability) {
			actual = decimal.Zero
		}
		payments[k] = types.Payment{
			LoanID:           rec.Loan.LoanID,
			PaymentDate:      rec.Loan.OriginationDate.Add(sch.IntervalDays * k),
			ScheduledPayment: scheduled,
			ActualPayment:    actual,
			Missed:           actual.IsZero(),
		}
	}
	rec.Payments = payments
}

// ScheduledPayment splits amount evenly over the installments, rounded to cents.
func ScheduledPayment(amount decimal.Decimal, installments int) decimal.Decimal {
	return amount.Div(decimal.NewFromInt(int64(installments))).Round(types.MoneyPlaces)
}

// mustHold panics on a derived value outside its domain. Such a value means a
// builder is wrong, not that the run hit a recoverable condition.
func mustHold(ok bool, format string, args ...any) {
	if !ok {
		panic(fmt.Sprintf("seeder: "+format, args...))
	}
}

func checkRecord(rec *types.LoanRecord) {
	id := rec.Loan.LoanID
	mustHold(!rec.Loan.LoanAmount.IsNegative(), "%s: negative loan amount %s", id, rec.Loan.LoanAmount)
	mustHold(rec.Loan.MaturityDate.After(rec.Loan.OriginationDate), "%s: maturity not after origination", id)
	mustHold(!rec.Exposure.EADCurrent.IsNegative(), "%s: negative EAD", id)
	mustHold(rec.Exposure.EADProjected.GreaterThanOrEqual(rec.Exposure.EADCurrent), "%s: projected EAD below current", id)
	mustHold(!rec.Delinquency.RecoveryAmount.IsNegative(), "%s: negative recovery", id)
	mustHold(!rec.ECL.ECL12M.IsNegative(), "%s: negative 12M ECL", id)
	mustHold(rec.ECL.LifetimeECL.GreaterThanOrEqual(rec.ECL.ECL12M), "%s: lifetime ECL below 12M ECL", id)
	for _, p := range rec.Payments {
		mustHold(!p.ScheduledPayment.IsNegative(), "%s: negative scheduled payment", id)
	}
}
