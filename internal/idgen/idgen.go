// Package idgen allocates random numeric identifiers from a bounded range.
package idgen

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/Domenick1991/airline/internal/domain"
)

// Range is the closed interval [Min, Max] and how many samples to try.
type Range struct {
	Min      int
	Max      int
	Attempts int
}

var (
	FlightNumbers = Range{Min: 0, Max: domain.MaxFlightNumber, Attempts: 20000}
	AircraftIDs   = Range{Min: 1000, Max: 9999, Attempts: 5000}
)

// TakenFunc reports whether a candidate is already in use.
type TakenFunc func(ctx context.Context, n int) (bool, error)

type Generator struct {
	intN func(n int) int
}

func New() *Generator {
	return &Generator{intN: rand.IntN}
}

// NewWithSource uses intN in place of the default random source.
func NewWithSource(intN func(n int) int) *Generator {
	return &Generator{intN: intN}
}

// Allocate samples uniformly from r until taken reports a free number.
// It returns domain.ErrExhaustedRange after r.Attempts misses.
func (g *Generator) Allocate(ctx context.Context, r Range, taken TakenFunc) (int, error) {
	span := r.Max - r.Min + 1
	for i := 0; i < r.Attempts; i++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		n := r.Min + g.intN(span)
		used, err := taken(ctx, n)
		if err != nil {
			return 0, err
		}
		if !used {
			return n, nil
		}
	}
	return 0, fmt.Errorf("%w: no free number in %d..%d after %d attempts", domain.ErrExhaustedRange, r.Min, r.Max, r.Attempts)
}
