package controllers

import (
	"context"

	da "github.com/Rodgta01/RouteStorm/pkg/datastructure"
	"github.com/Rodgta01/RouteStorm/pkg/engine"
	"github.com/Rodgta01/RouteStorm/pkg/spatialindex"
	"github.com/Rodgta01/RouteStorm/pkg/store"
)

type PlanningService interface {
	PlanTour(ctx context.Context, stops []da.Stop, observations map[string]da.WeatherObservation,
		policyName string, opts engine.PlanOptions) (*da.RouteResult, string, error)
	ListPlans(ctx context.Context, limit int) ([]store.ArchivedPlan, error)
}

type StopService interface {
	NearestStop(lat, lon, maxRadiusKm float64) (spatialindex.StopEntry, float64, error)
}
