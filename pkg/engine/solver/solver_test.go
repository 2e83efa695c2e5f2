package solver

import (
	"context"
	"math"
	"reflect"
	"testing"
	"time"

	da "github.com/Rodgta01/RouteStorm/pkg/datastructure"
	"go.uber.org/zap"
)

type tableMatrix [][]float64

func (m tableMatrix) Dim() int {
	return len(m)
}

func (m tableMatrix) Cost(i, j int) float64 {
	return m[i][j]
}

func euclidMatrix(points [][2]float64) tableMatrix {
	n := len(points)
	m := make(tableMatrix, n)
	for i := 0; i < n; i++ {
		m[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			dx := points[i][0] - points[j][0]
			dy := points[i][1] - points[j][1]
			m[i][j] = math.Sqrt(dx*dx + dy*dy)
		}
	}
	return m
}

// four stops on the x axis at 0, 1, -2 and 3. nearest neighbor from stop 0
// greedily walks [0 1 3 2] for 8.0, the best order from stop 0 is [0 2 1 3]
// for 7.0 and only an or-opt relocation can get there.
func lineMatrix() tableMatrix {
	return euclidMatrix([][2]float64{{0, 0}, {1, 0}, {-2, 0}, {3, 0}})
}

func unitSquareMatrix() tableMatrix {
	return euclidMatrix([][2]float64{{0, 0}, {1, 0}, {0, 1}, {1, 1}})
}

func TestConstructNearestNeighbor(t *testing.T) {
	testCases := []struct {
		name     string
		m        tableMatrix
		start    int
		expected da.Tour
	}{
		{
			name:     "greedy walk on the line instance",
			m:        lineMatrix(),
			start:    0,
			expected: da.Tour{0, 1, 3, 2},
		},
		{
			name:     "cost tie keeps the lowest index",
			m:        euclidMatrix([][2]float64{{0, 0}, {1, 0}, {-1, 0}}),
			start:    0,
			expected: da.Tour{0, 1, 2},
		},
		{
			name:     "start somewhere in the middle",
			m:        lineMatrix(),
			start:    2,
			expected: da.Tour{2, 0, 1, 3},
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			got := ConstructNearestNeighbor(tt.m, tt.start)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("got %v, want %v", got, tt.expected)
			}
			if !got.IsPermutation(tt.m.Dim()) {
				t.Errorf("%v is not a permutation", got)
			}
		})
	}
}

func TestImproveSquarePerimeter(t *testing.T) {
	m := unitSquareMatrix()
	imp := NewImprover(zap.NewNop())

	// a crossing order over the square, optimum is the 4.0 perimeter
	initial := da.Tour{0, 3, 1, 2}

	order, stats := imp.Improve(context.Background(), m, initial, true, UnlimitedBudget())

	cost := newTourPrefixes(m, order, true).totalCost()
	if !da.Eq(cost, 4.0) {
		t.Errorf("closed tour cost %f, want 4.0", cost)
	}
	if !da.Eq(stats.GetFinalCost(), cost) {
		t.Errorf("stats final cost %f does not match tour cost %f", stats.GetFinalCost(), cost)
	}
	if !order.IsPermutation(4) {
		t.Errorf("%v is not a permutation", order)
	}
	if order[0] != 0 {
		t.Errorf("start moved to %d", order[0])
	}
	if !stats.IsConverged() {
		t.Error("unlimited budget should converge")
	}
}

func TestImproveRelocatesDetour(t *testing.T) {
	m := lineMatrix()
	imp := NewImprover(zap.NewNop())

	initial := ConstructNearestNeighbor(m, 0)
	initialCost := newTourPrefixes(m, initial, false).totalCost()
	if !da.Eq(initialCost, 8.0) {
		t.Fatalf("nearest neighbor cost %f, want 8.0", initialCost)
	}

	order, stats := imp.Improve(context.Background(), m, initial, false, UnlimitedBudget())

	if !da.Eq(stats.GetFinalCost(), 7.0) {
		t.Errorf("final cost %f, want 7.0", stats.GetFinalCost())
	}
	if want := (da.Tour{0, 2, 1, 3}); !reflect.DeepEqual(order, want) {
		t.Errorf("got %v, want %v", order, want)
	}
	if stats.GetMoves() == 0 {
		t.Error("expected at least one accepted move")
	}
	if !reflect.DeepEqual(initial, da.Tour{0, 1, 3, 2}) {
		t.Errorf("improve mutated its input: %v", initial)
	}
}

func TestImproveMaxPassesBudget(t *testing.T) {
	m := lineMatrix()
	imp := NewImprover(zap.NewNop())
	initial := ConstructNearestNeighbor(m, 0)

	order, stats := imp.Improve(context.Background(), m, initial, false, NewBudget(1, 0))

	if stats.GetPasses() != 1 {
		t.Errorf("passes %d, want 1", stats.GetPasses())
	}
	if stats.IsConverged() {
		t.Error("a cut off search must not claim convergence")
	}
	// the single pass already finds the relocation
	if !da.Eq(stats.GetFinalCost(), 7.0) {
		t.Errorf("final cost %f, want 7.0", stats.GetFinalCost())
	}
	if !order.IsPermutation(m.Dim()) {
		t.Errorf("%v is not a permutation", order)
	}
}

func TestImproveExpiredDeadline(t *testing.T) {
	m := lineMatrix()
	imp := NewImprover(zap.NewNop())
	initial := ConstructNearestNeighbor(m, 0)

	order, stats := imp.Improve(context.Background(), m, initial, false, NewBudget(0, time.Nanosecond))

	if stats.GetPasses() != 0 || stats.GetMoves() != 0 {
		t.Errorf("expired deadline ran passes=%d moves=%d", stats.GetPasses(), stats.GetMoves())
	}
	if stats.IsConverged() {
		t.Error("expired deadline must not claim convergence")
	}
	if !reflect.DeepEqual(order, initial) {
		t.Errorf("order changed to %v", order)
	}
	if !da.Eq(stats.GetFinalCost(), stats.GetInitialCost()) {
		t.Errorf("cost changed %f -> %f", stats.GetInitialCost(), stats.GetFinalCost())
	}
}

func TestImproveCanceledContext(t *testing.T) {
	m := lineMatrix()
	imp := NewImprover(zap.NewNop())
	initial := ConstructNearestNeighbor(m, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	order, stats := imp.Improve(ctx, m, initial, false, UnlimitedBudget())

	if stats.GetMoves() != 0 || stats.IsConverged() {
		t.Errorf("canceled context ran moves=%d converged=%v", stats.GetMoves(), stats.IsConverged())
	}
	if !reflect.DeepEqual(order, initial) {
		t.Errorf("order changed to %v", order)
	}
}

func TestImproveDeterminism(t *testing.T) {
	m := asymmetricMatrix()
	initial := ConstructNearestNeighbor(m, 0)

	first, firstStats := NewImprover(zap.NewNop()).Improve(context.Background(), m, initial, true, UnlimitedBudget())
	second, secondStats := NewImprover(zap.NewNop()).Improve(context.Background(), m, initial, true, UnlimitedBudget())

	if !reflect.DeepEqual(first, second) {
		t.Errorf("two identical runs diverged: %v vs %v", first, second)
	}
	if firstStats.GetMoves() != secondStats.GetMoves() || firstStats.GetPasses() != secondStats.GetPasses() {
		t.Errorf("stats diverged: %+v vs %+v", firstStats, secondStats)
	}
}

// asymmetricMatrix. 5 stops where cost(i,j) != cost(j,i) on most pairs.
func asymmetricMatrix() tableMatrix {
	return tableMatrix{
		{0, 4, 9, 5, 8},
		{6, 0, 3, 7, 2},
		{5, 8, 0, 4, 9},
		{9, 2, 6, 0, 3},
		{3, 7, 4, 8, 0},
	}
}

func TestImproveMonotoneOnAsymmetric(t *testing.T) {
	m := asymmetricMatrix()
	imp := NewImprover(zap.NewNop())

	for _, closed := range []bool{false, true} {
		for start := 0; start < m.Dim(); start++ {
			initial := ConstructNearestNeighbor(m, start)
			initialCost := newTourPrefixes(m, initial, closed).totalCost()

			order, stats := imp.Improve(context.Background(), m, initial, closed, UnlimitedBudget())

			if !order.IsPermutation(m.Dim()) {
				t.Fatalf("start %d closed %v: %v is not a permutation", start, closed, order)
			}
			if order[0] != start {
				t.Errorf("start %d closed %v: start moved to %d", start, closed, order[0])
			}
			if da.Gt(stats.GetFinalCost(), initialCost) {
				t.Errorf("start %d closed %v: cost rose %f -> %f",
					start, closed, initialCost, stats.GetFinalCost())
			}
			recomputed := newTourPrefixes(m, order, closed).totalCost()
			if !da.Eq(stats.GetFinalCost(), recomputed) {
				t.Errorf("start %d closed %v: claimed %f, recomputed %f",
					start, closed, stats.GetFinalCost(), recomputed)
			}
			if !stats.IsConverged() {
				t.Errorf("start %d closed %v: unlimited budget should converge", start, closed)
			}
		}
	}
}

// reversal deltas must account for direction flips, on an asymmetric matrix
// the reversed segment does not cost what it cost forward.
func TestTwoOptDeltaMatchesRecomputation(t *testing.T) {
	m := asymmetricMatrix()
	n := m.Dim()

	for _, closed := range []bool{false, true} {
		order := da.Tour{0, 1, 2, 3, 4}
		px := newTourPrefixes(m, order, closed)
		before := px.totalCost()

		for i := 1; i < n-1; i++ {
			for k := i + 1; k <= n-1; k++ {
				delta := twoOptDelta(px, i, k)

				trial := order.Clone()
				reverseSegment(trial, i, k)
				after := newTourPrefixes(m, trial, closed).totalCost()

				if !da.Eq(before+delta, after) {
					t.Errorf("closed %v reverse [%d,%d]: delta %f, recomputation %f",
						closed, i, k, delta, after-before)
				}
			}
		}
	}
}

func TestTourPrefixes(t *testing.T) {
	m := tableMatrix{
		{0, 1, 7},
		{2, 0, 3},
		{5, 4, 0},
	}
	order := da.Tour{0, 1, 2}

	px := newTourPrefixes(m, order, false)

	if !da.Eq(px.segmentForward(0, 2), 1+3) {
		t.Errorf("forward segment %f, want 4", px.segmentForward(0, 2))
	}
	if !da.Eq(px.segmentBackward(0, 2), 4+2) {
		t.Errorf("backward segment %f, want 6", px.segmentBackward(0, 2))
	}
	if !da.Eq(px.totalCost(), 4) {
		t.Errorf("open total %f, want 4", px.totalCost())
	}

	pxClosed := newTourPrefixes(m, order, true)
	if !da.Eq(pxClosed.totalCost(), 4+5) {
		t.Errorf("closed total %f, want 9", pxClosed.totalCost())
	}
}

func TestImproveProgressEvents(t *testing.T) {
	m := lineMatrix()
	imp := NewImprover(zap.NewNop())

	var events []ProgressEvent
	imp.SetProgressFunc(func(ev ProgressEvent) {
		events = append(events, ev)
	})

	initial := ConstructNearestNeighbor(m, 0)
	_, stats := imp.Improve(context.Background(), m, initial, false, UnlimitedBudget())

	if len(events) != stats.GetPasses()*2 {
		t.Fatalf("got %d events for %d passes", len(events), stats.GetPasses())
	}
	if events[0].GetNeighborhood() != NEIGHBORHOOD_TWO_OPT ||
		events[1].GetNeighborhood() != NEIGHBORHOOD_OR_OPT {
		t.Errorf("unexpected neighborhood order: %s then %s",
			events[0].GetNeighborhood(), events[1].GetNeighborhood())
	}
	last := events[len(events)-1]
	if !da.Eq(last.GetCost(), stats.GetFinalCost()) {
		t.Errorf("last event cost %f, final cost %f", last.GetCost(), stats.GetFinalCost())
	}
}
