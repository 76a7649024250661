package types

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Column headers, in export order.
var (
	LoanColumns        = []string{"Loan_ID", "Customer_ID", "Origination_Date", "Maturity_Date", "Loan_Amount", "Interest_Rate", "Product_Type", "Credit_Grade", "Risk_Score"}
	CustomerColumns    = []string{"Customer_ID", "Region", "Segment", "Industry", "Country"}
	ExposureColumns    = []string{"Loan_ID", "EAD_Current", "EAD_Projected", "Collateral_Value", "Utilization_Rate"}
	DelinquencyColumns = []string{"Loan_ID", "Days_Past_Due", "Default_Flag", "Default_Date", "Recovery_Amount", "Recovery_Date"}
	ECLColumns         = []string{"Loan_ID", "Stage", "12M_ECL", "Lifetime_ECL", "PD", "LGD"}
	PaymentColumns     = []string{"Loan_ID", "Payment_Date", "Scheduled_Payment", "Actual_Payment", "Missed_Payment_Flag"}
)

// Decimal places used when a value is written out.
const (
	MoneyPlaces       = 2
	RatePlaces        = 2
	PDPlaces          = 4
	LGDPlaces         = 2
	UtilizationPlaces = 2
)

type Loan struct {
	LoanID          string
	CustomerID      string
	OriginationDate Date
	MaturityDate    Date
	LoanAmount      decimal.Decimal
	InterestRate    decimal.Decimal
	ProductType     string
	CreditGrade     string
	RiskScore       int
}

func (l Loan) Record() []string {
	return []string{
		l.LoanID,
		l.CustomerID,
		l.OriginationDate.String(),
		l.MaturityDate.String(),
		l.LoanAmount.StringFixed(MoneyPlaces),
		l.InterestRate.StringFixed(RatePlaces),
		l.ProductType,
		l.CreditGrade,
		strconv.Itoa(l.RiskScore),
	}
}

type Customer struct {
	CustomerID string
	Region     string
	Segment    string
	Industry   string
	Country    string
}

func (c Customer) Record() []string {
	return []string{c.CustomerID, c.Region, c.Segment, c.Industry, c.Country}
}

type Exposure struct {
	LoanID          string
	EADCurrent      decimal.Decimal
	EADProjected    decimal.Decimal
	CollateralValue decimal.Decimal
	UtilizationRate decimal.Decimal
}

func (e Exposure) Record() []string {
	return []string{
		e.LoanID,
		e.EADCurrent.StringFixed(MoneyPlaces),
		e.EADProjected.StringFixed(MoneyPlaces),
		e.CollateralValue.StringFixed(MoneyPlaces),
		e.UtilizationRate.StringFixed(UtilizationPlaces),
	}
}

// Delinquency is the default and delinquency status of one loan.
// DefaultDate and RecoveryDate are present only when DefaultFlag is set.
type Delinquency struct {
	LoanID         string
	DaysPastDue    int
	DefaultFlag    bool
	DefaultDate    NullDate
	RecoveryAmount decimal.Decimal
	RecoveryDate   NullDate
}

func (d Delinquency) Record() []string {
	return []string{
		d.LoanID,
		strconv.Itoa(d.DaysPastDue),
		Flag(d.DefaultFlag),
		d.DefaultDate.String(),
		d.RecoveryAmount.StringFixed(MoneyPlaces),
		d.RecoveryDate.String(),
	}
}

// ECL holds the IFRS 9 style expected credit loss figures of one loan.
type ECL struct {
	LoanID      string
	Stage       int
	ECL12M      decimal.Decimal
	LifetimeECL decimal.Decimal
	PD          decimal.Decimal
	LGD         decimal.Decimal
}

func (e ECL) Record() []string {
	return []string{
		e.LoanID,
		strconv.Itoa(e.Stage),
		e.ECL12M.StringFixed(MoneyPlaces),
		e.LifetimeECL.StringFixed(MoneyPlaces),
		e.PD.StringFixed(PDPlaces),
		e.LGD.StringFixed(LGDPlaces),
	}
}

type Payment struct {
	LoanID           string
	PaymentDate      Date
	ScheduledPayment decimal.Decimal
	ActualPayment    decimal.Decimal
	Missed           bool
}

func (p Payment) Record() []string {
	return []string{
		p.LoanID,
		p.PaymentDate.String(),
		p.ScheduledPayment.StringFixed(MoneyPlaces),
		p.ActualPayment.StringFixed(MoneyPlaces),
		Flag(p.Missed),
	}
}

// Flag renders a boolean as the 0/1 used by the flag columns.
func Flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// LoanRecord carries every row generated for a single loan.
type LoanRecord struct {
	Loan        Loan
	Customer    Customer
	Exposure    Exposure
	Delinquency Delinquency
	ECL         ECL
	Payments    []Payment
}

// Portfolio is a generated dataset, one record per loan in Loan_ID order.
type Portfolio struct {
	Records []LoanRecord
}

// Dataset flattens the portfolio into its six tables.
func (p *Portfolio) Dataset() Dataset {
	n := len(p.Records)
	ds := Dataset{
		Loans:         make([]Loan, 0, n),
		Customers:     make([]Customer, 0, n),
		Exposures:     make([]Exposure, 0, n),
		Delinquencies: make([]Delinquency, 0, n),
		ECLs:          make([]ECL, 0, n),
	}
	for _, r := range p.Records {
		ds.Loans = append(ds.Loans, r.Loan)
		ds.Customers = append(ds.Customers, r.Customer)
		ds.Exposures = append(ds.Exposures, r.Exposure)
		ds.Delinquencies = append(ds.Delinquencies, r.Delinquency)
		ds.ECLs = append(ds.ECLs, r.ECL)
		ds.Payments = append(ds.Payments, r.Payments...)
	}
	return ds
}

// Dataset is the tabular form of a portfolio, as written to and read from disk.
type Dataset struct {
	Loans         []Loan
	Customers     []Customer
	Exposures     []Exposure
	Delinquencies []Delinquency
	ECLs          []ECL
	Payments      []Payment
}
