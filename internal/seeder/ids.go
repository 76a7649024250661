package seeder

import (
	"fmt"
	"strconv"

	"github.com/Rana718/riskgen/internal/config"
)

// Identifiers are the key sequences shared by every table. LoanIDs[i] and
// CustomerIDs[i] belong to the same loan.
type Identifiers struct {
	LoanIDs     []string
	CustomerIDs []string
}

// NewIdentifiers numbers n loans and customers sequentially from their bases.
func NewIdentifiers(ids config.IDs, n int) Identifiers {
	return Identifiers{
		LoanIDs:     sequence(ids.LoanPrefix, ids.LoanBase, ids.Width, n),
		CustomerIDs: sequence(ids.CustomerPrefix, ids.CustomerBase, ids.Width, n),
	}
}

func sequence(prefix string, base, width, n int) []string {
	if width == 0 {
		width = len(strconv.Itoa(base))
	}
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s%0*d", prefix, width, base+i)
	}
	return out
}
