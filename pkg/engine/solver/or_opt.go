package solver

import (
	da "github.com/Rodgta01/RouteStorm/pkg/datastructure"
	"github.com/Rodgta01/RouteStorm/pkg/util"
)

/*
orOptScan relocates chains of 1..3 consecutive stops into a cheaper gap,
keeping chain orientation. the chain never contains position 0, so the
requested start stays pinned. for closed tours the wrap edge counts as a
gap, for open tours the chain may also be appended after the last stop.
*/
func (imp *Improver) orOptScan(px *tourPrefixes, stopNow func() bool) int {
	order := px.order
	m := px.m
	n := len(order)
	if n < 3 {
		return 0
	}

	moves := 0
	maxChain := util.MinInt(OR_OPT_MAX_CHAIN, n-2)

	for {
		if stopNow() {
			return moves
		}

		improved := false
		for length := 1; length <= maxChain && !improved; length++ {
			for p := 1; p+length <= n && !improved; p++ {
				head := order[p]
				tail := order[p+length-1]
				prevStop := order[p-1]

				nextStop := -1
				if p+length <= n-1 {
					nextStop = order[p+length]
				} else if px.closed {
					nextStop = order[0]
				}

				removeGain := m.Cost(prevStop, head)
				if nextStop >= 0 {
					removeGain += m.Cost(tail, nextStop)
					removeGain -= m.Cost(prevStop, nextStop)
				}

				for q := 0; q <= n-1; q++ {
					qn := q + 1
					if px.closed {
						qn = (q + 1) % n
					} else if q == n-1 {
						// append gap after the last stop
						qn = -1
					}

					if inChain(q, p, length) || (qn >= 0 && inChain(qn, p, length)) {
						continue
					}

					var insertCost float64
					if qn == -1 {
						insertCost = m.Cost(order[n-1], head)
					} else {
						insertCost = m.Cost(order[q], head) + m.Cost(tail, order[qn]) -
							m.Cost(order[q], order[qn])
					}

					if da.Lt(insertCost-removeGain, 0) {
						applyOrOpt(order, p, length, q)
						px.rebuild()
						moves++
						improved = true
						break
					}
				}
			}
		}

		if !improved {
			return moves
		}
	}
}

func inChain(pos, p, length int) bool {
	return pos >= p && pos <= p+length-1
}

// applyOrOpt splices the chain out and reinserts it right after the gap's
// left element. the left element is outside the chain, so looking its value
// up after removal is always valid.
func applyOrOpt(order da.Tour, p, length, q int) {
	n := len(order)

	chain := make(da.Tour, length)
	copy(chain, order[p:p+length])

	rest := make(da.Tour, 0, n-length)
	rest = append(rest, order[:p]...)
	rest = append(rest, order[p+length:]...)

	pos := rest.IndexOf(order[q])

	newOrder := make(da.Tour, 0, n)
	newOrder = append(newOrder, rest[:pos+1]...)
	newOrder = append(newOrder, chain...)
	newOrder = append(newOrder, rest[pos+1:]...)

	copy(order, newOrder)
}
