package costfunction

import (
	"context"

	da "github.com/Rodgta01/RouteStorm/pkg/datastructure"
)

// TravelTimeFunction yields fair-weather travel minutes between stops.
// Prepare binds the function to a stop set, TravelTime answers by index so
// implementations can precompute whole tables. implementations must be safe
// for concurrent TravelTime calls after Prepare returned.
type TravelTimeFunction interface {
	Name() string
	Prepare(ctx context.Context, stops []da.Stop) error
	TravelTime(from, to int) float64
}

// FallbackReporter is implemented by functions that can degrade per pair and
// want the degradation surfaced in plan metadata.
type FallbackReporter interface {
	FallbackPairs() int
}
