package solver

import (
	da "github.com/Rodgta01/RouteStorm/pkg/datastructure"
)

/*
twoOptDelta. cost change from reversing order[i..k] in place.

the reversed segment swaps its forward traversal for the backward one, and
the two boundary edges are re-pointed at the segment's new endpoints. when
k is the last position of a closed tour the right boundary is the wrap edge
back to order[0]. position 0 is pinned to the requested start, callers keep
i >= 1.
*/
func twoOptDelta(px *tourPrefixes, i, k int) float64 {
	order := px.order
	m := px.m
	n := len(order)

	delta := px.segmentBackward(i, k) - px.segmentForward(i, k)

	delta += m.Cost(order[i-1], order[k]) - m.Cost(order[i-1], order[i])

	if k < n-1 {
		delta += m.Cost(order[i], order[k+1]) - m.Cost(order[k], order[k+1])
	} else if px.closed {
		delta += m.Cost(order[i], order[0]) - m.Cost(order[n-1], order[0])
	}

	return delta
}

// twoOptScan applies strictly improving reversals until a clean sweep finds
// none. first improvement wins, the sweep restarts after every accepted move
// so deltas are always computed against fresh prefix sums.
func (imp *Improver) twoOptScan(px *tourPrefixes, stopNow func() bool) int {
	order := px.order
	n := len(order)
	if n < 3 {
		return 0
	}

	moves := 0
	for {
		if stopNow() {
			return moves
		}

		improved := false
		for i := 1; i < n-1 && !improved; i++ {
			for k := i + 1; k <= n-1; k++ {
				if da.Lt(twoOptDelta(px, i, k), 0) {
					reverseSegment(order, i, k)
					px.rebuild()
					moves++
					improved = true
					break
				}
			}
		}

		if !improved {
			return moves
		}
	}
}
