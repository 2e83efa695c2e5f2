package weather

import (
	"context"

	"github.com/Rodgta01/RouteStorm/pkg/concurrent"
	da "github.com/Rodgta01/RouteStorm/pkg/datastructure"
	"go.uber.org/zap"
)

const (
	FETCH_WORKER = 8
)

// Service collects one observation per stop from the configured provider.
// a failed or empty fetch leaves the stop without an observation, planning
// continues with factor 1.0 for it.
type Service struct {
	log      *zap.Logger
	provider Provider
}

func NewService(log *zap.Logger, provider Provider) *Service {
	return &Service{
		log:      log,
		provider: provider,
	}
}

func (s *Service) GetProviderName() string {
	return s.provider.Name()
}

type fetchResult struct {
	stopID string
	obs    *da.WeatherObservation
	err    error
}

func (s *Service) CollectObservations(ctx context.Context, stops []da.Stop) map[string]da.WeatherObservation {
	observations := make(map[string]da.WeatherObservation, len(stops))
	if len(stops) == 0 {
		return observations
	}

	// unscheduled stops borrow the first stop's hour, matching how a courier
	// plans a single departure for the whole run.
	fallbackWhen := stops[0].GetWhen()

	fetchObservation := func(stop da.Stop) fetchResult {
		if err := ctx.Err(); err != nil {
			return fetchResult{stopID: stop.GetID(), err: err}
		}
		if !stop.HasWhen() && !fallbackWhen.IsZero() {
			stop = da.NewStop(stop.GetID(), stop.GetName(), stop.GetLat(), stop.GetLon(), fallbackWhen)
		}
		obs, err := s.provider.Fetch(ctx, stop)
		return fetchResult{stopID: stop.GetID(), obs: obs, err: err}
	}

	workers := concurrent.NewWorkerPool[da.Stop, fetchResult](FETCH_WORKER, len(stops))

	for _, stop := range stops {
		workers.AddJob(stop)
	}

	workers.Close()
	workers.Start(fetchObservation)
	workers.Wait()

	for res := range workers.CollectResults() {
		if res.err != nil {
			s.log.Warn("weather fetch failed, stop keeps factor 1.0",
				zap.String("stop", res.stopID), zap.String("provider", s.provider.Name()), zap.Error(res.err))
			continue
		}
		if res.obs == nil {
			continue
		}
		observations[res.stopID] = *res.obs
	}

	return observations
}
