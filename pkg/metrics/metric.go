package metrics

import (
	"fmt"

	"github.com/Rodgta01/RouteStorm/pkg"
	da "github.com/Rodgta01/RouteStorm/pkg/datastructure"
)

// Metric is the weather-adjusted cost matrix the solver searches over, plus
// the fair-weather matrix and per-stop factors it was derived from. matrices
// are flattened row-major, adjusted[i*n+j] = base[i*n+j] * policy factor.
type Metric struct {
	n        int
	adjusted []float64
	base     []float64
	factors  []float64
	policy   pkg.PenaltyPolicy

	missingObservations []string
	fallbackPairs       int
}

func NewMetric(n int, adjusted, base, factors []float64, policy pkg.PenaltyPolicy,
	missingObservations []string, fallbackPairs int) *Metric {
	return &Metric{
		n:                   n,
		adjusted:            adjusted,
		base:                base,
		factors:             factors,
		policy:              policy,
		missingObservations: missingObservations,
		fallbackPairs:       fallbackPairs,
	}
}

func (met *Metric) Dim() int {
	return met.n
}

// Cost. adjusted minutes for the directed hop i -> j.
func (met *Metric) Cost(i, j int) float64 {
	return met.adjusted[i*met.n+j]
}

// BaseCost. fair-weather minutes for the directed hop i -> j.
func (met *Metric) BaseCost(i, j int) float64 {
	return met.base[i*met.n+j]
}

// Factor. slowdown factor attached to stop i.
func (met *Metric) Factor(i int) float64 {
	return met.factors[i]
}

func (met *Metric) GetFactors() []float64 {
	factors := make([]float64, len(met.factors))
	copy(factors, met.factors)
	return factors
}

func (met *Metric) GetPenaltyPolicy() pkg.PenaltyPolicy {
	return met.policy
}

func (met *Metric) GetMissingObservations() []string {
	return met.missingObservations
}

func (met *Metric) GetFallbackPairs() int {
	return met.fallbackPairs
}

// TourCost sums adjusted minutes along the order, plus the closing hop back
// to the first stop when closed.
func (met *Metric) TourCost(order da.Tour, closed bool) float64 {
	return met.tourCost(order, closed, met.Cost)
}

// BaseTourCost is TourCost over the fair-weather matrix.
func (met *Metric) BaseTourCost(order da.Tour, closed bool) float64 {
	return met.tourCost(order, closed, met.BaseCost)
}

func (met *Metric) tourCost(order da.Tour, closed bool, cost func(i, j int) float64) float64 {
	total := 0.0
	for i := 0; i+1 < len(order); i++ {
		total += cost(order[i], order[i+1])
	}
	if closed && len(order) > 1 {
		total += cost(order[len(order)-1], order[0])
	}
	return total
}

// Validate checks the shape invariants the builder must uphold.
func (met *Metric) Validate() error {
	if len(met.adjusted) != met.n*met.n || len(met.base) != met.n*met.n {
		return fmt.Errorf("matrix size mismatch: n=%d adjusted=%d base=%d",
			met.n, len(met.adjusted), len(met.base))
	}
	if len(met.factors) != met.n {
		return fmt.Errorf("factor vector size mismatch: n=%d factors=%d", met.n, len(met.factors))
	}
	for i := 0; i < met.n; i++ {
		if met.adjusted[i*met.n+i] != 0 || met.base[i*met.n+i] != 0 {
			return fmt.Errorf("diagonal entry %d is not zero", i)
		}
		if met.factors[i] < 1.0 {
			return fmt.Errorf("factor %d below 1.0: %f", i, met.factors[i])
		}
	}
	for idx, v := range met.adjusted {
		if v < 0 {
			return fmt.Errorf("negative adjusted cost at %d: %f", idx, v)
		}
	}
	return nil
}
