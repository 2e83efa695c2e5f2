package weather

import (
	"context"

	da "github.com/Rodgta01/RouteStorm/pkg/datastructure"
)

// Provider fetches the hourly observation closest to a stop's planned visit.
// (nil, nil) means the provider has nothing for that stop, which is not an
// error: the stop simply keeps factor 1.0.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, stop da.Stop) (*da.WeatherObservation, error)
}

// StaticProvider serves a fixed observation set, keyed by stop id. used by the
// cli when the caller supplies an observations file, and by tests.
type StaticProvider struct {
	observations map[string]da.WeatherObservation
}

func NewStaticProvider(observations map[string]da.WeatherObservation) *StaticProvider {
	return &StaticProvider{observations: observations}
}

func (p *StaticProvider) Name() string {
	return "static"
}

func (p *StaticProvider) Fetch(_ context.Context, stop da.Stop) (*da.WeatherObservation, error) {
	obs, ok := p.observations[stop.GetID()]
	if !ok {
		return nil, nil
	}
	return &obs, nil
}
