// Package roadnet talks to external routing backends for road travel times.
// backends are optional, the planner falls back to haversine estimates for
// any pair a backend cannot answer.
package roadnet

import (
	"context"

	"github.com/Rodgta01/RouteStorm/pkg/geo"
)

// DistanceSource answers an all-pairs duration table over the given
// coordinates. entry [i][j] is road seconds from i to j, nil when the
// backend has no route for that pair. the matrix need not be symmetric.
type DistanceSource interface {
	Name() string
	Durations(ctx context.Context, coords []geo.Coordinate) ([][]*float64, error)
}
