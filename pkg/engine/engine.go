package engine

import (
	"context"
	"time"

	"github.com/Rodgta01/RouteStorm/pkg/customizer"
	da "github.com/Rodgta01/RouteStorm/pkg/datastructure"
	"github.com/Rodgta01/RouteStorm/pkg/engine/solver"
	"github.com/Rodgta01/RouteStorm/pkg/geo"
	"github.com/Rodgta01/RouteStorm/pkg/metrics"
	"github.com/Rodgta01/RouteStorm/pkg/util"
	"go.uber.org/zap"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
)

// PlanOptions shape one planning call. position 0 of the produced order is
// always the requested start stop, open or closed.
type PlanOptions struct {
	startIndex int
	closed     bool
	budget     solver.Budget
	restarts   int
	seed       uint64
	progress   solver.ProgressFunc
}

func NewPlanOptions(startIndex int, closed bool, budget solver.Budget, restarts int, seed uint64) PlanOptions {
	if restarts < 0 {
		restarts = 0
	}
	return PlanOptions{
		startIndex: startIndex,
		closed:     closed,
		budget:     budget,
		restarts:   restarts,
		seed:       seed,
	}
}

func DefaultPlanOptions() PlanOptions {
	return NewPlanOptions(0, false, solver.UnlimitedBudget(), 0, 0)
}

// SetProgressFunc streams sweep events from the primary run. perturbed
// restarts run concurrently and stay silent.
func (o *PlanOptions) SetProgressFunc(fn solver.ProgressFunc) {
	o.progress = fn
}

func (o PlanOptions) GetStartIndex() int {
	return o.startIndex
}

func (o PlanOptions) IsClosed() bool {
	return o.closed
}

func (o PlanOptions) GetBudget() solver.Budget {
	return o.budget
}

func (o PlanOptions) GetRestarts() int {
	return o.restarts
}

func (o PlanOptions) GetSeed() uint64 {
	return o.seed
}

// Engine plans weather-aware tours: build the adjusted matrix, construct a
// nearest neighbor order, then improve it, optionally from several perturbed
// starting orders in parallel.
type Engine struct {
	logger     *zap.Logger
	customizer *customizer.Customizer
}

func NewEngine(customizer *customizer.Customizer, logger *zap.Logger) *Engine {
	return &Engine{
		logger:     logger,
		customizer: customizer,
	}
}

func (e *Engine) GetCustomizer() *customizer.Customizer {
	return e.customizer
}

type runResult struct {
	order da.Tour
	stats solver.SearchStats
}

func (e *Engine) Plan(ctx context.Context, stops []da.Stop,
	observations map[string]da.WeatherObservation, opts PlanOptions) (*da.RouteResult, error) {

	met, err := e.customizer.BuildMetric(ctx, stops, observations)
	if err != nil {
		return nil, err
	}

	n := met.Dim()
	if opts.startIndex < 0 || opts.startIndex >= n {
		return nil, util.WrapErrorf(nil, util.ErrBadParamInput,
			"start index %d outside [0,%d)", opts.startIndex, n)
	}

	planStart := time.Now()

	base := solver.ConstructNearestNeighbor(met, opts.startIndex)
	initialCost := met.TourCost(base, opts.closed)

	runs := opts.restarts + 1
	results := make([]runResult, runs)

	g, gctx := errgroup.WithContext(ctx)
	for r := 0; r < runs; r++ {
		r := r
		g.Go(func() error {
			runTour := base
			if r > 0 {
				runTour = perturb(base, opts.seed, r)
			}

			imp := solver.NewImprover(e.logger)
			if r == 0 && opts.progress != nil {
				imp.SetProgressFunc(opts.progress)
			}

			order, stats := imp.Improve(gctx, met, runTour, opts.closed, opts.budget)
			results[r] = runResult{order: order, stats: stats}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, util.WrapErrorf(err, util.ErrInternalServerError, "improvement runs failed")
	}

	// lowest final cost wins, earlier run wins ties so restarts stay reproducible
	best := 0
	for r := 1; r < runs; r++ {
		if da.Lt(results[r].stats.GetFinalCost(), results[best].stats.GetFinalCost()) {
			best = r
		}
	}

	order := results[best].order
	stats := results[best].stats

	result := e.buildResult(stops, met, order, opts, initialCost)
	result.SetSearchStats(stats.GetPasses(), stats.GetMoves(), opts.restarts,
		stats.IsConverged(), time.Since(planStart))
	result.SetDegradation(met.GetFactors(), met.GetMissingObservations(), met.GetFallbackPairs())

	e.logger.Sugar().Infof("planned tour over %d stops: %f -> %f minutes, passes=%d, moves=%d, converged=%v",
		n, initialCost, stats.GetFinalCost(), stats.GetPasses(), stats.GetMoves(), stats.IsConverged())

	return result, nil
}

func (e *Engine) buildResult(stops []da.Stop, met *metrics.Metric, order da.Tour,
	opts PlanOptions, initialCost float64) *da.RouteResult {

	stopIDs := make([]string, len(order))
	for i, idx := range order {
		stopIDs[i] = stops[idx].GetID()
	}

	legCount := len(order) - 1
	if opts.closed {
		legCount++
	}

	legs := make([]da.RouteLeg, 0, legCount)
	for i := 0; i < legCount; i++ {
		from := order[i]
		to := order[(i+1)%len(order)]

		baseMinutes := met.BaseCost(from, to)
		minutes := met.Cost(from, to)
		factor := 1.0
		if baseMinutes > 0 {
			factor = minutes / baseMinutes
		}

		bearing := geo.BearingTo(stops[from].GetLat(), stops[from].GetLon(),
			stops[to].GetLat(), stops[to].GetLon())

		legs = append(legs, da.NewRouteLeg(stops[from].GetID(), stops[to].GetID(),
			baseMinutes, minutes, factor, bearing))
	}

	return da.NewRouteResult(order, stopIDs, legs,
		met.TourCost(order, opts.closed), met.BaseTourCost(order, opts.closed),
		initialCost, opts.closed, e.customizer.GetPenaltyPolicy())
}

// perturb kicks the base order with a few seeded segment reversals, never
// touching position 0. same seed, same kicks.
func perturb(base da.Tour, seed uint64, run int) da.Tour {
	order := base.Clone()
	n := len(order)
	if n < 4 {
		return order
	}

	rng := rand.New(rand.NewSource(seed + uint64(run)))
	kicks := 2 + rng.Intn(2)
	for i := 0; i < kicks; i++ {
		a := 1 + rng.Intn(n-1)
		b := 1 + rng.Intn(n-1)
		if a > b {
			a, b = b, a
		}
		if a == b {
			continue
		}
		reversed := util.ReverseG(order[a : b+1])
		copy(order[a:b+1], reversed)
	}
	return order
}
