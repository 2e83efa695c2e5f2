package usecases

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Rodgta01/RouteStorm/pkg"
	"github.com/Rodgta01/RouteStorm/pkg/costfunction"
	da "github.com/Rodgta01/RouteStorm/pkg/datastructure"
	"github.com/Rodgta01/RouteStorm/pkg/engine"
	"github.com/Rodgta01/RouteStorm/pkg/geo"
	"github.com/Rodgta01/RouteStorm/pkg/spatialindex"
	"github.com/Rodgta01/RouteStorm/pkg/store"
	"github.com/Rodgta01/RouteStorm/pkg/util"
	"github.com/Rodgta01/RouteStorm/pkg/weather"
	"go.uber.org/zap"
)

type stubCollector struct {
	mu      sync.Mutex
	fetched [][]string
	serve   map[string]da.WeatherObservation
}

func (c *stubCollector) GetProviderName() string {
	return "stub"
}

func (c *stubCollector) CollectObservations(_ context.Context,
	stops []da.Stop) map[string]da.WeatherObservation {
	ids := make([]string, 0, len(stops))
	out := make(map[string]da.WeatherObservation, len(stops))
	for _, stop := range stops {
		ids = append(ids, stop.GetID())
		if obs, ok := c.serve[stop.GetID()]; ok {
			out[stop.GetID()] = obs
		}
	}
	c.mu.Lock()
	c.fetched = append(c.fetched, ids)
	c.mu.Unlock()
	return out
}

type stubArchive struct {
	plans []store.ArchivedPlan
	fail  bool
}

func (a *stubArchive) ArchivePlan(_ context.Context, result *da.RouteResult,
	geometry string) (string, error) {
	if a.fail {
		return "", errors.New("archive down")
	}
	a.plans = append(a.plans, store.ArchivedPlan{
		ID:           "plan-1",
		StopCount:    len(result.GetOrder()),
		Closed:       result.IsClosed(),
		TotalMinutes: result.GetTotalMinutes(),
		Geometry:     geometry,
	})
	return "plan-1", nil
}

func (a *stubArchive) ListPlans(_ context.Context, _ int) ([]store.ArchivedPlan, error) {
	return a.plans, nil
}

func planTestStops() []da.Stop {
	return []da.Stop{
		da.NewStop("depot", "Depot", 41.1176, -85.0689, time.Time{}),
		da.NewStop("stop-a", "Stop A", 41.1802, -84.9960, time.Time{}),
		da.NewStop("stop-b", "Stop B", 41.0953, -85.1394, time.Time{}),
	}
}

func newPlanningService(collector WeatherCollector, obsStore *store.ObservationStore,
	archive PlanArchive) *PlanningService {
	return NewPlanningService(zap.NewNop(), costfunction.NewHaversineTimeFunction(35.0),
		weather.NewDefaultRiskModel(), collector, obsStore, archive)
}

func TestPlanTourWithInlineObservations(t *testing.T) {
	collector := &stubCollector{}
	service := newPlanningService(collector, nil, nil)

	obs := map[string]da.WeatherObservation{
		"depot": da.NewWeatherObservation("depot", 6.0, 0, 0, 0, time.Now().UTC(), "request"),
	}

	result, geometry, err := service.PlanTour(context.Background(), planTestStops(), obs,
		"destination", engine.DefaultPlanOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(collector.fetched) != 0 {
		t.Errorf("inline observations must short circuit fetching, provider saw %v", collector.fetched)
	}
	if result.GetPenaltyPolicy() != pkg.PENALTY_DESTINATION {
		t.Errorf("policy %s, want destination", result.GetPenaltyPolicy())
	}
	if !da.Eq(result.GetFactors()[0], 1.2) {
		t.Errorf("depot factor %f, want 1.2 from heavy rain", result.GetFactors()[0])
	}

	coords, err := geo.CoordsFromPolyline(geometry)
	if err != nil {
		t.Fatalf("geometry does not decode: %v", err)
	}
	if len(coords) != 3 {
		t.Errorf("open tour geometry has %d points, want 3", len(coords))
	}
}

func TestPlanTourResolvesFromStoreThenProvider(t *testing.T) {
	obsStore := store.NewObservationStore(0, 0)
	obsStore.Save(da.NewWeatherObservation("depot", 1.0, 0, 0, 0, time.Now().UTC(), "refresh"))

	collector := &stubCollector{serve: map[string]da.WeatherObservation{
		"stop-a": da.NewWeatherObservation("stop-a", 0, 1.5, 0, 0, time.Now().UTC(), "stub"),
	}}
	service := newPlanningService(collector, obsStore, nil)

	result, _, err := service.PlanTour(context.Background(), planTestStops(), nil,
		"", engine.DefaultPlanOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// only the stops the store could not answer go to the provider
	if len(collector.fetched) != 1 {
		t.Fatalf("provider called %d times, want 1", len(collector.fetched))
	}
	if got := collector.fetched[0]; len(got) != 2 || got[0] != "stop-a" || got[1] != "stop-b" {
		t.Errorf("provider fetched %v, want [stop-a stop-b]", got)
	}

	// fetched observations are stored for the next request
	if _, err := obsStore.Latest("stop-a"); err != nil {
		t.Errorf("fetched observation was not saved: %v", err)
	}

	// depot keeps the stored reading, stop-b stays dry and is reported missing
	if missing := result.GetMissingObservations(); len(missing) != 1 || missing[0] != "stop-b" {
		t.Errorf("missing observations %v, want [stop-b]", missing)
	}
	if !da.Eq(result.GetFactors()[1], 1.5) {
		t.Errorf("stop-a factor %f, want 1.5 from heavy snow", result.GetFactors()[1])
	}
}

func TestPlanTourArchivesBestEffort(t *testing.T) {
	archive := &stubArchive{}
	service := newPlanningService(&stubCollector{}, nil, archive)

	opts := engine.NewPlanOptions(0, true, engine.DefaultPlanOptions().GetBudget(), 0, 0)
	result, geometry, err := service.PlanTour(context.Background(), planTestStops(), nil, "", opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(archive.plans) != 1 {
		t.Fatalf("archived %d plans, want 1", len(archive.plans))
	}
	if archive.plans[0].Geometry != geometry {
		t.Error("archived geometry differs from the returned one")
	}

	// closed geometry repeats the first stop
	coords, err := geo.CoordsFromPolyline(geometry)
	if err != nil {
		t.Fatalf("geometry does not decode: %v", err)
	}
	if len(coords) != 4 {
		t.Errorf("closed tour geometry has %d points, want 4", len(coords))
	}
	if coords[0] != coords[len(coords)-1] {
		t.Error("closed geometry must end where it starts")
	}

	if !result.IsClosed() {
		t.Error("plan lost the closed flag")
	}

	// a dead archive degrades to an unarchived plan
	archive.fail = true
	if _, _, err := service.PlanTour(context.Background(), planTestStops(), nil, "", opts); err != nil {
		t.Errorf("archive failure must not fail the plan: %v", err)
	}
}

func TestListPlansWithoutArchive(t *testing.T) {
	service := newPlanningService(&stubCollector{}, nil, nil)

	_, err := service.ListPlans(context.Background(), 10)
	if err == nil {
		t.Fatal("expected an error")
	}
	var domainErr *util.Error
	if !errors.As(err, &domainErr) || !errors.Is(domainErr.Code(), util.ErrNotFound) {
		t.Errorf("expected a not found error, got %v", err)
	}
}

func TestStopServiceNearest(t *testing.T) {
	index := &stubIndex{}
	service := NewStopService(zap.NewNop(), index)

	_, _, err := service.NearestStop(41.1, -85.0, 5.0)
	if err == nil {
		t.Fatal("expected an error on a miss")
	}
	var domainErr *util.Error
	if !errors.As(err, &domainErr) || !errors.Is(domainErr.Code(), util.ErrNotFound) {
		t.Errorf("expected a not found error, got %v", err)
	}
}

type stubIndex struct{}

func (s *stubIndex) NearestStop(lat, lon, maxRadiusKm float64) (spatialindex.StopEntry, float64, bool) {
	return spatialindex.StopEntry{}, 0, false
}
