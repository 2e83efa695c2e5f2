package datastructure

import (
	"time"

	"github.com/Rodgta01/RouteStorm/pkg"
)

// RouteLeg is one directed hop of the final tour.
type RouteLeg struct {
	fromID      string
	toID        string
	baseMinutes float64
	minutes     float64
	factor      float64
	bearing     float64
}

func NewRouteLeg(fromID, toID string, baseMinutes, minutes, factor, bearing float64) RouteLeg {
	return RouteLeg{
		fromID:      fromID,
		toID:        toID,
		baseMinutes: baseMinutes,
		minutes:     minutes,
		factor:      factor,
		bearing:     bearing,
	}
}

func (l RouteLeg) GetFromID() string {
	return l.fromID
}

func (l RouteLeg) GetToID() string {
	return l.toID
}

func (l RouteLeg) GetBaseMinutes() float64 {
	return l.baseMinutes
}

func (l RouteLeg) GetMinutes() float64 {
	return l.minutes
}

func (l RouteLeg) GetFactor() float64 {
	return l.factor
}

func (l RouteLeg) GetBearing() float64 {
	return l.bearing
}

// RouteResult is a finished plan plus everything the caller needs to judge it.
type RouteResult struct {
	order          Tour
	stopIDs        []string
	legs           []RouteLeg
	totalMinutes   float64
	baseMinutes    float64
	initialMinutes float64
	closed         bool
	policy         pkg.PenaltyPolicy

	passes    int
	moves     int
	restarts  int
	converged bool
	elapsed   time.Duration

	factors             []float64
	missingObservations []string
	roadFallbackPairs   int
}

func NewRouteResult(order Tour, stopIDs []string, legs []RouteLeg,
	totalMinutes, baseMinutes, initialMinutes float64, closed bool, policy pkg.PenaltyPolicy) *RouteResult {
	return &RouteResult{
		order:          order,
		stopIDs:        stopIDs,
		legs:           legs,
		totalMinutes:   totalMinutes,
		baseMinutes:    baseMinutes,
		initialMinutes: initialMinutes,
		closed:         closed,
		policy:         policy,
	}
}

func (r *RouteResult) SetSearchStats(passes, moves, restarts int, converged bool, elapsed time.Duration) {
	r.passes = passes
	r.moves = moves
	r.restarts = restarts
	r.converged = converged
	r.elapsed = elapsed
}

func (r *RouteResult) SetDegradation(factors []float64, missingObservations []string, roadFallbackPairs int) {
	r.factors = factors
	r.missingObservations = missingObservations
	r.roadFallbackPairs = roadFallbackPairs
}

func (r *RouteResult) GetOrder() Tour {
	return r.order
}

func (r *RouteResult) GetStopIDs() []string {
	return r.stopIDs
}

func (r *RouteResult) GetLegs() []RouteLeg {
	return r.legs
}

func (r *RouteResult) GetTotalMinutes() float64 {
	return r.totalMinutes
}

func (r *RouteResult) GetBaseMinutes() float64 {
	return r.baseMinutes
}

func (r *RouteResult) GetInitialMinutes() float64 {
	return r.initialMinutes
}

func (r *RouteResult) IsClosed() bool {
	return r.closed
}

func (r *RouteResult) GetPenaltyPolicy() pkg.PenaltyPolicy {
	return r.policy
}

func (r *RouteResult) GetPasses() int {
	return r.passes
}

func (r *RouteResult) GetMoves() int {
	return r.moves
}

func (r *RouteResult) GetRestarts() int {
	return r.restarts
}

func (r *RouteResult) IsConverged() bool {
	return r.converged
}

func (r *RouteResult) GetElapsed() time.Duration {
	return r.elapsed
}

func (r *RouteResult) GetFactors() []float64 {
	return r.factors
}

func (r *RouteResult) GetMissingObservations() []string {
	return r.missingObservations
}

func (r *RouteResult) GetRoadFallbackPairs() int {
	return r.roadFallbackPairs
}
