package usecases

import (
	"context"

	da "github.com/Rodgta01/RouteStorm/pkg/datastructure"
	"github.com/Rodgta01/RouteStorm/pkg/spatialindex"
	"github.com/Rodgta01/RouteStorm/pkg/store"
)

type WeatherCollector interface {
	GetProviderName() string
	CollectObservations(ctx context.Context, stops []da.Stop) map[string]da.WeatherObservation
}

type SpatialIndex interface {
	NearestStop(lat, lon, maxRadiusKm float64) (spatialindex.StopEntry, float64, bool)
}

type PlanArchive interface {
	ArchivePlan(ctx context.Context, result *da.RouteResult, geometry string) (string, error)
	ListPlans(ctx context.Context, limit int) ([]store.ArchivedPlan, error)
}
