package usecases

import (
	"context"

	"github.com/Rodgta01/RouteStorm/pkg"
	"github.com/Rodgta01/RouteStorm/pkg/costfunction"
	"github.com/Rodgta01/RouteStorm/pkg/customizer"
	da "github.com/Rodgta01/RouteStorm/pkg/datastructure"
	"github.com/Rodgta01/RouteStorm/pkg/engine"
	"github.com/Rodgta01/RouteStorm/pkg/geo"
	"github.com/Rodgta01/RouteStorm/pkg/store"
	"github.com/Rodgta01/RouteStorm/pkg/util"
	"github.com/Rodgta01/RouteStorm/pkg/weather"
	"go.uber.org/zap"
)

// PlanningService glues the planning pipeline together: resolve observations,
// build the adjusted metric and search, encode the geometry, archive the
// outcome. obsStore and archive may be nil, the service degrades to fetching
// weather per request and skipping persistence.
type PlanningService struct {
	log            *zap.Logger
	timeFunction   costfunction.TravelTimeFunction
	riskModel      *weather.RiskModel
	weatherService WeatherCollector
	obsStore       *store.ObservationStore
	archive        PlanArchive
}

func NewPlanningService(log *zap.Logger, timeFunction costfunction.TravelTimeFunction,
	riskModel *weather.RiskModel, weatherService WeatherCollector,
	obsStore *store.ObservationStore, archive PlanArchive) *PlanningService {
	return &PlanningService{
		log:            log,
		timeFunction:   timeFunction,
		riskModel:      riskModel,
		weatherService: weatherService,
		obsStore:       obsStore,
		archive:        archive,
	}
}

func (ps *PlanningService) PlanTour(ctx context.Context, stops []da.Stop,
	observations map[string]da.WeatherObservation, policyName string,
	opts engine.PlanOptions) (*da.RouteResult, string, error) {

	if len(observations) == 0 {
		observations = ps.resolveObservations(ctx, stops)
	}

	policy := pkg.GetPenaltyPolicy(policyName)
	cust := customizer.NewCustomizer(ps.timeFunction, ps.riskModel, policy, ps.log)
	eng := engine.NewEngine(cust, ps.log)

	result, err := eng.Plan(ctx, stops, observations, opts)
	if err != nil {
		return nil, "", err
	}

	geometry := tourGeometry(stops, result)

	if ps.archive != nil {
		// persistence is best effort, a dead archive must not fail the plan
		if id, err := ps.archive.ArchivePlan(ctx, result, geometry); err != nil {
			ps.log.Warn("failed to archive plan", zap.Error(err))
		} else {
			ps.log.Info("archived plan", zap.String("plan_id", id))
		}
	}

	return result, geometry, nil
}

func (ps *PlanningService) ListPlans(ctx context.Context, limit int) ([]store.ArchivedPlan, error) {
	if ps.archive == nil {
		return nil, util.WrapErrorf(nil, util.ErrNotFound, "plan archive is not configured")
	}
	return ps.archive.ListPlans(ctx, limit)
}

// resolveObservations prefers the refreshed store, then fetches the rest from
// the provider. stops that stay unresolved keep factor 1.0 downstream.
func (ps *PlanningService) resolveObservations(ctx context.Context,
	stops []da.Stop) map[string]da.WeatherObservation {

	observations := make(map[string]da.WeatherObservation, len(stops))

	missing := make([]da.Stop, 0, len(stops))
	for _, stop := range stops {
		if ps.obsStore != nil {
			if obs, err := ps.obsStore.Latest(stop.GetID()); err == nil {
				observations[stop.GetID()] = obs
				continue
			}
		}
		missing = append(missing, stop)
	}

	if len(missing) > 0 && ps.weatherService != nil {
		fetched := ps.weatherService.CollectObservations(ctx, missing)
		for stopID, obs := range fetched {
			observations[stopID] = obs
		}
		if ps.obsStore != nil {
			ps.obsStore.SaveAll(fetched)
		}
	}

	return observations
}

func tourGeometry(stops []da.Stop, result *da.RouteResult) string {
	order := result.GetOrder()
	coords := make([]geo.Coordinate, 0, len(order)+1)
	for _, idx := range order {
		coords = append(coords, stops[idx].ToGeoCoordinate())
	}
	if result.IsClosed() && len(order) > 0 {
		coords = append(coords, stops[order[0]].ToGeoCoordinate())
	}
	return geo.PolylineFromCoords(coords)
}
