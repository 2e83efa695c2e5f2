package customizer

import (
	"context"
	"math"

	"github.com/Rodgta01/RouteStorm/pkg"
	"github.com/Rodgta01/RouteStorm/pkg/concurrent"
	"github.com/Rodgta01/RouteStorm/pkg/costfunction"
	da "github.com/Rodgta01/RouteStorm/pkg/datastructure"
	"github.com/Rodgta01/RouteStorm/pkg/geo"
	"github.com/Rodgta01/RouteStorm/pkg/metrics"
	"github.com/Rodgta01/RouteStorm/pkg/util"
	"github.com/Rodgta01/RouteStorm/pkg/weather"
	"go.uber.org/zap"
)

const (
	CUSTOMIZER_WORKER = 8
)

// Customizer turns a stop list plus live weather into the adjusted cost
// matrix the solver searches over. base rows come from the travel time
// function, then each directed edge is scaled by the slowdown factor the
// penalty policy picks from its endpoints.
type Customizer struct {
	logger       *zap.Logger
	timeFunction costfunction.TravelTimeFunction
	riskModel    *weather.RiskModel
	policy       pkg.PenaltyPolicy
}

func NewCustomizer(timeFunction costfunction.TravelTimeFunction, riskModel *weather.RiskModel,
	policy pkg.PenaltyPolicy, logger *zap.Logger) *Customizer {
	return &Customizer{
		logger:       logger,
		timeFunction: timeFunction,
		riskModel:    riskModel,
		policy:       policy,
	}
}

func (c *Customizer) GetPenaltyPolicy() pkg.PenaltyPolicy {
	return c.policy
}

// ValidateStops rejects inputs the matrix cannot be built from. everything
// past this point degrades instead of failing.
func ValidateStops(stops []da.Stop) error {
	if len(stops) < pkg.MIN_STOPS {
		return util.WrapErrorf(nil, util.ErrBadParamInput,
			"need at least %d stops, got %d", pkg.MIN_STOPS, len(stops))
	}

	seen := make(map[string]struct{}, len(stops))
	for i, stop := range stops {
		if stop.GetID() == "" {
			return util.WrapErrorf(nil, util.ErrBadParamInput, "stop %d has an empty id", i)
		}
		if _, ok := seen[stop.GetID()]; ok {
			return util.WrapErrorf(nil, util.ErrBadParamInput, "duplicate stop id %q", stop.GetID())
		}
		seen[stop.GetID()] = struct{}{}

		if stop.GetLat() < -90 || stop.GetLat() > 90 {
			return util.WrapErrorf(nil, util.ErrBadParamInput,
				"stop %q latitude %f out of range", stop.GetID(), stop.GetLat())
		}
		if stop.GetLon() < -180 || stop.GetLon() > 180 {
			return util.WrapErrorf(nil, util.ErrBadParamInput,
				"stop %q longitude %f out of range", stop.GetID(), stop.GetLon())
		}
	}
	return nil
}

type baseRowJob struct {
	row int
}

type baseRowRes struct {
	row    int
	values []float64
}

// BuildMetric builds the base matrix in parallel (one worker job per row),
// computes per stop slowdown factors and applies the penalty policy.
func (c *Customizer) BuildMetric(ctx context.Context, stops []da.Stop,
	observations map[string]da.WeatherObservation) (*metrics.Metric, error) {

	if err := ValidateStops(stops); err != nil {
		return nil, err
	}

	n := len(stops)

	if err := c.timeFunction.Prepare(ctx, stops); err != nil {
		return nil, util.WrapErrorf(err, util.ErrInternalServerError,
			"preparing travel time function %s", c.timeFunction.Name())
	}

	base := make([]float64, n*n)

	buildBaseRow := func(job baseRowJob) baseRowRes {
		i := job.row
		values := make([]float64, n)
		if util.StopConcurrentOperation(ctx) {
			return baseRowRes{row: i, values: values}
		}
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			minutes := c.timeFunction.TravelTime(i, j)
			if minutes < 0 || math.IsNaN(minutes) || math.IsInf(minutes, 0) {
				minutes = pkg.INF_WEIGHT
			}
			values[j] = minutes
		}
		return baseRowRes{row: i, values: values}
	}

	workers := concurrent.NewWorkerPool[baseRowJob, baseRowRes](CUSTOMIZER_WORKER, n)

	for i := 0; i < n; i++ {
		workers.AddJob(baseRowJob{row: i})
	}

	workers.Close()
	workers.Start(buildBaseRow)
	workers.Wait()

	for res := range workers.CollectResults() {
		copy(base[res.row*n:(res.row+1)*n], res.values)
	}

	if err := ctx.Err(); err != nil {
		return nil, util.WrapErrorf(err, util.ErrInternalServerError, "matrix build canceled")
	}

	c.warnZeroBaseEdges(stops, base)

	factors, missing := c.buildFactors(stops, observations)

	adjusted := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			adjusted[i*n+j] = base[i*n+j] * c.edgeFactor(factors, i, j)
		}
	}

	fallbackPairs := 0
	if reporter, ok := c.timeFunction.(costfunction.FallbackReporter); ok {
		fallbackPairs = reporter.FallbackPairs()
	}

	met := metrics.NewMetric(n, adjusted, base, factors, c.policy, missing, fallbackPairs)
	if err := met.Validate(); err != nil {
		return nil, util.WrapErrorf(err, util.ErrInternalServerError, "metric invariant violated")
	}

	c.debugAdjustedMatrix(met)

	c.logger.Sugar().Infof("built %dx%d cost matrix, policy=%s, missing observations=%d, road fallbacks=%d",
		n, n, c.policy, len(missing), fallbackPairs)

	return met, nil
}

func (c *Customizer) debugAdjustedMatrix(met *metrics.Metric) {
	if pkg.DEBUG {
		for i := 0; i < met.Dim(); i++ {
			for j := 0; j < met.Dim(); j++ {
				if met.Cost(i, j) < met.BaseCost(i, j) {
					c.logger.Sugar().Panicf("adjusted cost below base at %d,%d", i, j)
				}
			}
		}
	}
}

// buildFactors walks stops in order so the missing list stays deterministic.
func (c *Customizer) buildFactors(stops []da.Stop,
	observations map[string]da.WeatherObservation) ([]float64, []string) {
	factors := make([]float64, len(stops))
	missing := make([]string, 0)

	for i, stop := range stops {
		obs, ok := observations[stop.GetID()]
		if !ok {
			factors[i] = 1.0
			missing = append(missing, stop.GetID())
			continue
		}
		factors[i] = c.riskModel.SlowdownFactor(&obs)
	}
	return factors, missing
}

// edgeFactor picks the multiplier for the directed edge i -> j. whatever the
// policy combines, the edge multiplier never exceeds the model cap.
func (c *Customizer) edgeFactor(factors []float64, i, j int) float64 {
	var factor float64
	switch c.policy {
	case pkg.PENALTY_ORIGIN:
		factor = factors[i]
	case pkg.PENALTY_MAX:
		factor = math.Max(factors[i], factors[j])
	case pkg.PENALTY_BOTH:
		factor = factors[i] * factors[j]
	default:
		factor = factors[j]
	}

	if maxFactor := c.riskModel.GetMaxFactor(); factor > maxFactor {
		factor = maxFactor
	}
	return factor
}

func (c *Customizer) warnZeroBaseEdges(stops []da.Stop, base []float64) {
	n := len(stops)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if base[i*n+j] > 0 && base[j*n+i] > 0 {
				continue
			}
			coincident := geo.Coincident(stops[i].ToGeoCoordinate(), stops[j].ToGeoCoordinate())
			if !coincident {
				c.logger.Warn("zero travel time between distinct stops",
					zap.String("from", stops[i].GetID()), zap.String("to", stops[j].GetID()))
			}
		}
	}
}
