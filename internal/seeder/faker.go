package seeder

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/Rana718/riskgen/internal/config"
	"github.com/Rana718/riskgen/internal/types"
	"github.com/shopspring/decimal"
)

// DataGenerator draws sample values from a single random source. Every value
// is produced by exactly one call, so a seeded source yields the same dataset.
type DataGenerator struct {
	rand *rand.Rand
}

func NewDataGenerator(src rand.Source) *DataGenerator {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &DataGenerator{rand: rand.New(src)}
}

// Between returns a uniform integer in [lo, hi].
func (g *DataGenerator) Between(lo, hi int) int {
	if hi < lo {
		panic(fmt.Sprintf("seeder: empty integer range [%d, %d]", lo, hi))
	}
	return lo + g.rand.Intn(hi-lo+1)
}

// Uniform returns a float in [r.Min, r.Max).
func (g *DataGenerator) Uniform(r config.Range) float64 {
	return r.Min + g.rand.Float64()*(r.Max-r.Min)
}

// Amount returns a uniform value in r rounded to places, kept inside r.
func (g *DataGenerator) Amount(r config.Range, places int32) decimal.Decimal {
	lo := decimal.NewFromFloat(r.Min).RoundCeil(places)
	hi := decimal.NewFromFloat(r.Max).RoundFloor(places)
	return clamp(decimal.NewFromFloat(g.Uniform(r)).Round(places), lo, hi)
}

// Scale multiplies base by a uniform factor from r, rounded to places and kept
// within [base*r.Min, base*r.Max].
func (g *DataGenerator) Scale(base decimal.Decimal, r config.Range, places int32) decimal.Decimal {
	lo := base.Mul(decimal.NewFromFloat(r.Min)).RoundCeil(places)
	hi := base.Mul(decimal.NewFromFloat(r.Max)).RoundFloor(places)
	factor := decimal.NewFromFloat(g.Uniform(r))
	return clamp(base.Mul(factor).Round(places), lo, hi)
}

// UpTo returns a uniform amount in [0, max] rounded to places.
func (g *DataGenerator) UpTo(max decimal.Decimal, places int32) decimal.Decimal {
	f := decimal.NewFromFloat(g.rand.Float64())
	return clamp(max.Mul(f).Round(places), decimal.Zero, max)
}

// Date returns a uniform date in [from, to].
func (g *DataGenerator) Date(from, to types.Date) types.Date {
	return from.Add(g.Between(0, to.Sub(from)))
}

// Choice picks a value uniformly.
func (g *DataGenerator) Choice(values []string) string {
	return values[g.rand.Intn(len(values))]
}

// ChoiceInt picks an integer value uniformly.
func (g *DataGenerator) ChoiceInt(values []int) int {
	return values[g.rand.Intn(len(values))]
}

// Weighted returns an index drawn with probability proportional to its weight.
func (g *DataGenerator) Weighted(weights []float64) int {
	var total float64
	for _, w := range weights {
		total += w
	}
	x := g.rand.Float64() * total
	last := 0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		if x < w {
			return i
		}
		x -= w
		last = i
	}
	return last
}

// Chance reports true with probability p.
func (g *DataGenerator) Chance(p float64) bool {
	return g.rand.Float64() < p
}

func clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	if lo.GreaterThan(hi) {
		return v
	}
	if v.LessThan(lo) {
		return lo
	}
	if v.GreaterThan(hi) {
		return hi
	}
	return v
}
