package solver

import (
	da "github.com/Rodgta01/RouteStorm/pkg/datastructure"
)

/*
tourPrefixes caches directional running sums over the current order:

	forward[p]  = cost of walking order[0] -> order[1] -> ... -> order[p]
	backward[p] = cost of walking order[p] -> order[p-1] -> ... -> order[0]

a 2-opt reversal flips the travel direction of every edge inside the
segment, and on an asymmetric matrix the flipped edges cost differently.
the two sums give any segment's forward and reversed traversal cost in
O(1), so move deltas stay constant time. the sums are rebuilt in O(n)
after every accepted move.
*/
type tourPrefixes struct {
	m        Matrix
	order    da.Tour
	closed   bool
	forward  []float64
	backward []float64
}

func newTourPrefixes(m Matrix, order da.Tour, closed bool) *tourPrefixes {
	px := &tourPrefixes{
		m:        m,
		order:    order,
		closed:   closed,
		forward:  make([]float64, len(order)),
		backward: make([]float64, len(order)),
	}
	px.rebuild()
	return px
}

func (px *tourPrefixes) rebuild() {
	px.forward[0] = 0
	px.backward[0] = 0
	for p := 1; p < len(px.order); p++ {
		px.forward[p] = px.forward[p-1] + px.m.Cost(px.order[p-1], px.order[p])
		px.backward[p] = px.backward[p-1] + px.m.Cost(px.order[p], px.order[p-1])
	}
}

// segmentForward. cost of order[i] -> ... -> order[k] as currently directed.
func (px *tourPrefixes) segmentForward(i, k int) float64 {
	return px.forward[k] - px.forward[i]
}

// segmentBackward. cost of order[k] -> ... -> order[i], the reversed walk.
func (px *tourPrefixes) segmentBackward(i, k int) float64 {
	return px.backward[k] - px.backward[i]
}

func (px *tourPrefixes) totalCost() float64 {
	n := len(px.order)
	total := px.forward[n-1]
	if px.closed && n > 1 {
		total += px.m.Cost(px.order[n-1], px.order[0])
	}
	return total
}

func reverseSegment(order da.Tour, i, k int) {
	for l, r := i, k; l < r; l, r = l+1, r-1 {
		order[l], order[r] = order[r], order[l]
	}
}
