package solver

import (
	"context"
	"time"

	da "github.com/Rodgta01/RouteStorm/pkg/datastructure"
	"github.com/Rodgta01/RouteStorm/pkg/util"
	"go.uber.org/zap"
)

// Budget bounds one improvement run. zero values mean unlimited. both limits
// are checked at the start of every sweep, so a finished sweep is never
// rolled back and the best order found so far is always returned.
type Budget struct {
	maxPasses   int
	maxDuration time.Duration
}

func NewBudget(maxPasses int, maxDuration time.Duration) Budget {
	return Budget{
		maxPasses:   maxPasses,
		maxDuration: maxDuration,
	}
}

func UnlimitedBudget() Budget {
	return Budget{}
}

func (b Budget) GetMaxPasses() int {
	return b.maxPasses
}

func (b Budget) GetMaxDuration() time.Duration {
	return b.maxDuration
}

type SearchStats struct {
	passes      int
	moves       int
	converged   bool
	elapsed     time.Duration
	initialCost float64
	finalCost   float64
}

func (s SearchStats) GetPasses() int {
	return s.passes
}

func (s SearchStats) GetMoves() int {
	return s.moves
}

// IsConverged reports whether the search proved local optimality instead of
// stopping on an exhausted budget.
func (s SearchStats) IsConverged() bool {
	return s.converged
}

func (s SearchStats) GetElapsed() time.Duration {
	return s.elapsed
}

func (s SearchStats) GetInitialCost() float64 {
	return s.initialCost
}

func (s SearchStats) GetFinalCost() float64 {
	return s.finalCost
}

// Improver runs 2-opt and or-opt sweeps until the tour is locally optimal
// for both neighborhoods or the budget runs out. only strictly improving
// moves are accepted, which is what guarantees termination: the cost drops
// by more than the comparison epsilon on every accepted move.
type Improver struct {
	logger   *zap.Logger
	progress ProgressFunc
}

func NewImprover(logger *zap.Logger) *Improver {
	return &Improver{logger: logger}
}

// SetProgressFunc registers a callback fired after each neighborhood sweep.
func (imp *Improver) SetProgressFunc(fn ProgressFunc) {
	imp.progress = fn
}

func (imp *Improver) emit(pass, moves int, cost float64, neighborhood string) {
	if imp.progress == nil {
		return
	}
	imp.progress(NewProgressEvent(pass, moves, cost, neighborhood))
}

func (imp *Improver) Improve(ctx context.Context, m Matrix, initial da.Tour, closed bool,
	budget Budget) (da.Tour, SearchStats) {

	order := initial.Clone()
	px := newTourPrefixes(m, order, closed)

	initialCost := px.totalCost()
	start := time.Now()

	var deadline time.Time
	if budget.maxDuration > 0 {
		deadline = start.Add(budget.maxDuration)
	}

	stopNow := func() bool {
		if util.StopConcurrentOperation(ctx) {
			return true
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			return true
		}
		return false
	}

	passes := 0
	moves := 0
	converged := false

	for {
		if budget.maxPasses > 0 && passes >= budget.maxPasses {
			break
		}
		if stopNow() {
			break
		}

		passMoves := imp.twoOptScan(px, stopNow)
		imp.emit(passes+1, moves+passMoves, px.totalCost(), NEIGHBORHOOD_TWO_OPT)

		passMoves += imp.orOptScan(px, stopNow)
		moves += passMoves
		imp.emit(passes+1, moves, px.totalCost(), NEIGHBORHOOD_OR_OPT)

		passes++

		if passMoves == 0 {
			// a sweep cut short by the budget proves nothing
			if !stopNow() {
				converged = true
			}
			break
		}
	}

	stats := SearchStats{
		passes:      passes,
		moves:       moves,
		converged:   converged,
		elapsed:     time.Since(start),
		initialCost: initialCost,
		finalCost:   px.totalCost(),
	}

	imp.logger.Sugar().Debugf("improvement done: passes=%d moves=%d converged=%v cost %f -> %f",
		stats.passes, stats.moves, stats.converged, stats.initialCost, stats.finalCost)

	return order, stats
}
