package export

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/Rana718/riskgen/internal/types"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sampleDataset() types.Dataset {
	orig := types.MustParseDate("2023-03-15")
	return types.Dataset{
		Loans: []types.Loan{
			{LoanID: "LN100000", CustomerID: "CUST1000", OriginationDate: orig, MaturityDate: orig.Add(400), LoanAmount: dec("10000.00"), InterestRate: dec("7.25"), ProductType: "Auto Loan", CreditGrade: "BB", RiskScore: 610},
		},
		Customers: []types.Customer{
			{CustomerID: "CUST1000", Region: "South America", Segment: "SME", Industry: "Logistics", Country: "Brazil"},
		},
		Exposures: []types.Exposure{
			{LoanID: "LN100000", EADCurrent: dec("8000.00"), EADProjected: dec("8500.50"), CollateralValue: dec("6000.00"), UtilizationRate: dec("0.75")},
		},
		Delinquencies: []types.Delinquency{
			{LoanID: "LN100000", DaysPastDue: 120, DefaultFlag: true, DefaultDate: types.Some(types.MustParseDate("2025-01-02")), RecoveryAmount: dec("1234.50"), RecoveryDate: types.Some(types.MustParseDate("2025-02-03"))},
		},
		ECLs: []types.ECL{
			{LoanID: "LN100000", Stage: 2, ECL12M: dec("240.00"), LifetimeECL: dec("600.00"), PD: dec("0.1000"), LGD: dec("0.30")},
		},
		Payments: []types.Payment{
			{LoanID: "LN100000", PaymentDate: orig, ScheduledPayment: dec("2000.00"), ActualPayment: dec("2000.00")},
			{LoanID: "LN100000", PaymentDate: orig.Add(30), ScheduledPayment: dec("2000.00"), ActualPayment: decimal.Zero, Missed: true},
		},
	}
}

func TestWriteProducesSixArtifacts(t *testing.T) {
	dir := t.TempDir()
	res, err := NewWriter(dir, false).Write(sampleDataset())
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if res.Dir != dir {
		t.Errorf("Dir = %s, want %s", res.Dir, dir)
	}
	if len(res.Files) != 6 {
		t.Fatalf("wrote %d files, want 6", len(res.Files))
	}
	if res.Rows[Payments.Table] != 2 {
		t.Errorf("payment rows = %d, want 2", res.Rows[Payments.Table])
	}

	data, err := os.ReadFile(filepath.Join(dir, "default_delinquency_data.csv"))
	if err != nil {
		t.Fatalf("Failed to read artifact: %v", err)
	}
	want := "Loan_ID,Days_Past_Due,Default_Flag,Default_Date,Recovery_Amount,Recovery_Date\n" +
		"LN100000,120,1,2025-01-02,1234.50,2025-02-03\n"
	if string(data) != want {
		t.Errorf("delinquency artifact =\n%s\nwant\n%s", data, want)
	}

	data, err = os.ReadFile(filepath.Join(dir, "ecl_table.csv"))
	if err != nil {
		t.Fatalf("Failed to read artifact: %v", err)
	}
	if !strings.HasPrefix(string(data), "Loan_ID,Stage,12M_ECL,Lifetime_ECL,PD,LGD\nLN100000,2,240.00,600.00,0.1000,0.30\n") {
		t.Errorf("unexpected ecl artifact:\n%s", data)
	}
}

func TestWriteTimestamped(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, true)
	w.now = func() time.Time { return time.Date(2025, 6, 30, 14, 5, 9, 0, time.UTC) }

	res, err := w.Write(sampleDataset())
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	want := filepath.Join(dir, "export_2025-06-30_14-05-09_csv")
	if res.Dir != want {
		t.Errorf("Dir = %s, want %s", res.Dir, want)
	}
	if _, err := os.Stat(filepath.Join(want, "loan_master_table.csv")); err != nil {
		t.Errorf("loan master not written: %v", err)
	}
}

func TestWriteReportsFailingArtifact(t *testing.T) {
	dir := t.TempDir()
	// A directory where the customer file should go makes its create fail.
	if err := os.Mkdir(filepath.Join(dir, Customers.File), 0755); err != nil {
		t.Fatalf("Failed to create blocking directory: %v", err)
	}

	_, err := NewWriter(dir, false).Write(sampleDataset())
	var artErr *ArtifactError
	if !errors.As(err, &artErr) {
		t.Fatalf("Expected *ArtifactError, got %v", err)
	}
	if artErr.Artifact.Table != Customers.Table {
		t.Errorf("failing artifact = %s, want %s", artErr.Artifact.Table, Customers.Table)
	}
	if !strings.Contains(err.Error(), Customers.File) {
		t.Errorf("error %q does not name the file", err)
	}
}

func TestLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	want := sampleDataset()
	if _, err := NewWriter(dir, false).Write(want); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	got, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Compare through the rendered records so decimal scale does not matter.
	if !reflect.DeepEqual(collect(got.Loans), collect(want.Loans)) {
		t.Errorf("loans = %v, want %v", collect(got.Loans), collect(want.Loans))
	}
	if !reflect.DeepEqual(collect(got.Delinquencies), collect(want.Delinquencies)) {
		t.Errorf("delinquencies = %v, want %v", collect(got.Delinquencies), collect(want.Delinquencies))
	}
	if !reflect.DeepEqual(collect(got.Payments), collect(want.Payments)) {
		t.Errorf("payments = %v, want %v", collect(got.Payments), collect(want.Payments))
	}
	if len(got.Customers) != 1 || len(got.Exposures) != 1 || len(got.ECLs) != 1 {
		t.Errorf("unexpected table sizes %d/%d/%d", len(got.Customers), len(got.Exposures), len(got.ECLs))
	}
}

func TestLoadRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{"wrong header", LoanMaster.File, "Loan_ID,Customer_ID\n", "wrong number of fields"},
		{"renamed column", Customers.File, "Customer_ID,Region,Segment,Sector,Country\n", "unexpected header"},
		{"bad amount", Exposures.File, "Loan_ID,EAD_Current,EAD_Projected,Collateral_Value,Utilization_Rate\nLN1,abc,1,1,0.5\n", "line 2: column 2"},
		{"bad flag", Payments.File, "Loan_ID,Payment_Date,Scheduled_Payment,Actual_Payment,Missed_Payment_Flag\nLN1,2024-01-01,1,1,yes\n", "invalid flag"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if _, err := NewWriter(dir, false).Write(sampleDataset()); err != nil {
				t.Fatalf("Write failed: %v", err)
			}
			if err := os.WriteFile(filepath.Join(dir, tt.file), []byte(tt.content), 0644); err != nil {
				t.Fatalf("Failed to overwrite artifact: %v", err)
			}

			_, err := Load(dir)
			var artErr *ArtifactError
			if !errors.As(err, &artErr) || artErr.Artifact.File != tt.file {
				t.Fatalf("Expected *ArtifactError for %s, got %v", tt.file, err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadMissingArtifact(t *testing.T) {
	dir := t.TempDir()
	if _, err := NewWriter(dir, false).Write(sampleDataset()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := os.Remove(filepath.Join(dir, ECL.File)); err != nil {
		t.Fatalf("Failed to remove artifact: %v", err)
	}

	_, err := Load(dir)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected a not-exist error, got %v", err)
	}
}

func TestExisting(t *testing.T) {
	dir := t.TempDir()
	if got := Existing(dir); len(got) != 0 {
		t.Errorf("Existing on empty dir = %v", got)
	}
	if err := os.WriteFile(filepath.Join(dir, ECL.File), []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	got := Existing(dir)
	if len(got) != 1 || filepath.Base(got[0]) != ECL.File {
		t.Errorf("Existing = %v, want only %s", got, ECL.File)
	}
}
