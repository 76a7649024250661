package seeder

import "github.com/Rana718/riskgen/internal/types"

// Table names, as used in the dependency graph and progress output.
const (
	TableLoans       = "loan_master"
	TableCustomers   = "customer_demographics"
	TableExposures   = "exposure"
	TableDelinquency = "default_delinquency"
	TableECL         = "ecl"
	TablePayments    = "payment_history"
)

// TableInfo describes one table builder. Build fills the table's slot of a
// single loan record, reading only the slots of the tables in Dependencies.
type TableInfo struct {
	Name         string
	Dependencies []string
	Build        func(rec *types.LoanRecord)
}
