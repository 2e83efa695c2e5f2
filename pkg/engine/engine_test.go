package engine

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/Rodgta01/RouteStorm/pkg"
	"github.com/Rodgta01/RouteStorm/pkg/costfunction"
	"github.com/Rodgta01/RouteStorm/pkg/customizer"
	da "github.com/Rodgta01/RouteStorm/pkg/datastructure"
	"github.com/Rodgta01/RouteStorm/pkg/engine/solver"
	"github.com/Rodgta01/RouteStorm/pkg/util"
	"github.com/Rodgta01/RouteStorm/pkg/weather"
	"go.uber.org/zap"
)

// a one degree square on the equator, corners in boundary order. every side
// is a great-circle degree, about 111.195 km or 190.62 minutes at 35 km/h.
func squareStops() []da.Stop {
	return []da.Stop{
		da.NewStop("sw", "South West", 0, 0, time.Time{}),
		da.NewStop("se", "South East", 0, 1, time.Time{}),
		da.NewStop("ne", "North East", 1, 1, time.Time{}),
		da.NewStop("nw", "North West", 1, 0, time.Time{}),
	}
}

func newTestEngine(policy pkg.PenaltyPolicy) *Engine {
	cust := customizer.NewCustomizer(costfunction.NewHaversineTimeFunction(35.0),
		weather.NewDefaultRiskModel(), policy, zap.NewNop())
	return NewEngine(cust, zap.NewNop())
}

func stormObservation(stopID string) da.WeatherObservation {
	// 1.2 * 1.5 * 1.05 * 1.1 = 2.079
	return da.NewWeatherObservation(stopID, 6.0, 1.5, 35.0, 55.0, time.Now().UTC(), "test")
}

func TestPlanSquareTour(t *testing.T) {
	eng := newTestEngine(pkg.PENALTY_DESTINATION)

	result, err := eng.Plan(context.Background(), squareStops(), nil,
		NewPlanOptions(0, true, solver.UnlimitedBudget(), 0, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	order := result.GetOrder()
	if !order.IsPermutation(4) || order[0] != 0 {
		t.Fatalf("bad order %v", order)
	}

	// the boundary in either direction is the only optimal closed tour
	clockwise := da.Tour{0, 1, 2, 3}
	counter := da.Tour{0, 3, 2, 1}
	if !reflect.DeepEqual(order, clockwise) && !reflect.DeepEqual(order, counter) {
		t.Errorf("order %v does not walk the square boundary", order)
	}

	side := util.KmToMinutes(111.195, 35.0)
	if math.Abs(result.GetTotalMinutes()-4*side) > 0.5 {
		t.Errorf("total %f minutes, want about %f", result.GetTotalMinutes(), 4*side)
	}
	if !da.Eq(result.GetTotalMinutes(), result.GetBaseMinutes()) {
		t.Errorf("fair weather plan: total %f != base %f",
			result.GetTotalMinutes(), result.GetBaseMinutes())
	}
	if da.Gt(result.GetTotalMinutes(), result.GetInitialMinutes()) {
		t.Errorf("improvement raised cost %f -> %f",
			result.GetInitialMinutes(), result.GetTotalMinutes())
	}

	if len(result.GetLegs()) != 4 {
		t.Fatalf("closed tour over 4 stops has %d legs, want 4", len(result.GetLegs()))
	}
	legs := result.GetLegs()
	for i, leg := range legs {
		next := legs[(i+1)%len(legs)]
		if leg.GetToID() != next.GetFromID() {
			t.Errorf("leg %d ends at %s, next starts at %s", i, leg.GetToID(), next.GetFromID())
		}
	}
	if legs[len(legs)-1].GetToID() != "sw" {
		t.Errorf("closed tour must return to sw, ends at %s", legs[len(legs)-1].GetToID())
	}

	if !result.IsConverged() {
		t.Error("unlimited budget should converge")
	}
	if len(result.GetMissingObservations()) != 4 {
		t.Errorf("missing observations %v, want all four stops", result.GetMissingObservations())
	}
	for i, factor := range result.GetFactors() {
		if !da.Eq(factor, 1.0) {
			t.Errorf("factor %d = %f without weather", i, factor)
		}
	}
}

func TestPlanOpenTour(t *testing.T) {
	eng := newTestEngine(pkg.PENALTY_DESTINATION)

	result, err := eng.Plan(context.Background(), squareStops(), nil,
		NewPlanOptions(2, false, solver.UnlimitedBudget(), 0, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.GetOrder()[0] != 2 {
		t.Errorf("order starts at %d, want 2", result.GetOrder()[0])
	}
	if len(result.GetLegs()) != 3 {
		t.Errorf("open tour over 4 stops has %d legs, want 3", len(result.GetLegs()))
	}
	if result.GetStopIDs()[0] != "ne" {
		t.Errorf("first stop id %s, want ne", result.GetStopIDs()[0])
	}
}

func TestPlanStormPenalty(t *testing.T) {
	stops := squareStops()

	dry, err := newTestEngine(pkg.PENALTY_DESTINATION).Plan(context.Background(), stops, nil,
		NewPlanOptions(0, true, solver.UnlimitedBudget(), 0, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	obs := map[string]da.WeatherObservation{"ne": stormObservation("ne")}
	wet, err := newTestEngine(pkg.PENALTY_DESTINATION).Plan(context.Background(), stops, obs,
		NewPlanOptions(0, true, solver.UnlimitedBudget(), 0, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// weather can only make the best achievable tour worse
	if !da.Gt(wet.GetTotalMinutes(), dry.GetTotalMinutes()) {
		t.Errorf("storm plan %f not above fair plan %f",
			wet.GetTotalMinutes(), dry.GetTotalMinutes())
	}

	if factor := wet.GetFactors()[2]; !da.Eq(factor, 1.2*1.5*1.05*1.1) {
		t.Errorf("ne factor %f, want 2.079", factor)
	}
	if missing := wet.GetMissingObservations(); len(missing) != 3 {
		t.Errorf("missing observations %v, want the three dry stops", missing)
	}

	// exactly one leg enters the storm corner and carries its factor
	stormLegs := 0
	for _, leg := range wet.GetLegs() {
		if leg.GetToID() == "ne" {
			stormLegs++
			if !da.Eq(leg.GetFactor(), 1.2*1.5*1.05*1.1) {
				t.Errorf("leg into ne has factor %f", leg.GetFactor())
			}
			if !da.Eq(leg.GetMinutes(), leg.GetBaseMinutes()*leg.GetFactor()) {
				t.Errorf("leg minutes %f != base %f * factor %f",
					leg.GetMinutes(), leg.GetBaseMinutes(), leg.GetFactor())
			}
		}
	}
	if stormLegs != 1 {
		t.Errorf("%d legs into ne, want 1", stormLegs)
	}
}

func TestPlanDeterminismWithRestarts(t *testing.T) {
	stops := squareStops()
	opts := NewPlanOptions(0, true, solver.UnlimitedBudget(), 3, 42)

	first, err := newTestEngine(pkg.PENALTY_DESTINATION).Plan(context.Background(), stops, nil, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := newTestEngine(pkg.PENALTY_DESTINATION).Plan(context.Background(), stops, nil, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(first.GetOrder(), second.GetOrder()) {
		t.Errorf("same seed diverged: %v vs %v", first.GetOrder(), second.GetOrder())
	}
	if !da.Eq(first.GetTotalMinutes(), second.GetTotalMinutes()) {
		t.Errorf("same seed diverged on cost: %f vs %f",
			first.GetTotalMinutes(), second.GetTotalMinutes())
	}
	if first.GetRestarts() != 3 {
		t.Errorf("restarts %d, want 3", first.GetRestarts())
	}
}

func TestPlanProgressCallback(t *testing.T) {
	eng := newTestEngine(pkg.PENALTY_DESTINATION)

	var events []solver.ProgressEvent
	opts := NewPlanOptions(0, true, solver.UnlimitedBudget(), 0, 0)
	opts.SetProgressFunc(func(ev solver.ProgressEvent) {
		events = append(events, ev)
	})

	result, err := eng.Plan(context.Background(), squareStops(), nil, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(events) == 0 {
		t.Fatal("no progress events")
	}
	last := events[len(events)-1]
	if !da.Eq(last.GetCost(), result.GetTotalMinutes()) {
		t.Errorf("last event cost %f, plan cost %f", last.GetCost(), result.GetTotalMinutes())
	}
}

func TestPlanRejectsBadInput(t *testing.T) {
	eng := newTestEngine(pkg.PENALTY_DESTINATION)

	testCases := []struct {
		name  string
		stops []da.Stop
		opts  PlanOptions
	}{
		{
			name:  "start index out of range",
			stops: squareStops(),
			opts:  NewPlanOptions(4, true, solver.UnlimitedBudget(), 0, 0),
		},
		{
			name:  "negative start index",
			stops: squareStops(),
			opts:  NewPlanOptions(-1, true, solver.UnlimitedBudget(), 0, 0),
		},
		{
			name:  "single stop",
			stops: squareStops()[:1],
			opts:  DefaultPlanOptions(),
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := eng.Plan(context.Background(), tt.stops, nil, tt.opts)
			if err == nil {
				t.Fatal("expected an error")
			}
			var domainErr *util.Error
			if !errors.As(err, &domainErr) || !errors.Is(domainErr.Code(), util.ErrBadParamInput) {
				t.Errorf("expected a bad param error, got %v", err)
			}
		})
	}
}

func TestPlanBudgetExhaustion(t *testing.T) {
	eng := newTestEngine(pkg.PENALTY_DESTINATION)

	result, err := eng.Plan(context.Background(), squareStops(), nil,
		NewPlanOptions(0, true, solver.NewBudget(0, time.Nanosecond), 0, 0))
	if err != nil {
		t.Fatalf("budget exhaustion must degrade, not fail: %v", err)
	}

	if result.IsConverged() {
		t.Error("an expired budget must not claim convergence")
	}
	if !result.GetOrder().IsPermutation(4) {
		t.Errorf("bad order %v", result.GetOrder())
	}
	// the nearest neighbor construction still stands
	if !da.Eq(result.GetTotalMinutes(), result.GetInitialMinutes()) {
		t.Errorf("no sweeps ran but cost moved %f -> %f",
			result.GetInitialMinutes(), result.GetTotalMinutes())
	}
}
