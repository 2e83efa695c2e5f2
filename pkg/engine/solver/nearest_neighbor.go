package solver

import (
	"math"

	da "github.com/Rodgta01/RouteStorm/pkg/datastructure"
)

// ConstructNearestNeighbor builds the starting order greedily: from the
// current stop always drive to the cheapest unvisited one. the strict
// less-than keeps the lowest index on cost ties, which keeps construction
// deterministic.
func ConstructNearestNeighbor(m Matrix, start int) da.Tour {
	n := m.Dim()
	order := make(da.Tour, 0, n)
	visited := make([]bool, n)

	current := start
	order = append(order, current)
	visited[current] = true

	for len(order) < n {
		next := -1
		best := math.Inf(1)
		for cand := 0; cand < n; cand++ {
			if visited[cand] {
				continue
			}
			if c := m.Cost(current, cand); c < best {
				best = c
				next = cand
			}
		}
		order = append(order, next)
		visited[next] = true
		current = next
	}

	return order
}
