package weather

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	da "github.com/Rodgta01/RouteStorm/pkg/datastructure"
	"go.uber.org/zap"
)

type recordingProvider struct {
	mu    sync.Mutex
	whens map[string]time.Time
	fail  map[string]bool
}

func (p *recordingProvider) Name() string {
	return "recording"
}

func (p *recordingProvider) Fetch(_ context.Context, stop da.Stop) (*da.WeatherObservation, error) {
	p.mu.Lock()
	p.whens[stop.GetID()] = stop.GetWhen()
	p.mu.Unlock()

	if p.fail[stop.GetID()] {
		return nil, errors.New("upstream down")
	}
	obs := da.NewWeatherObservation(stop.GetID(), 1.0, 0, 0, 0, stop.GetWhen(), p.Name())
	return &obs, nil
}

func TestCollectObservations(t *testing.T) {
	departure := time.Date(2025, 11, 10, 8, 0, 0, 0, time.UTC)
	stops := []da.Stop{
		da.NewStop("depot", "Depot", 41.1176, -85.0689, departure),
		da.NewStop("stop-a", "Stop A", 41.1802, -84.9960, departure.Add(15*time.Minute)),
		da.NewStop("stop-b", "Stop B", 41.0953, -85.1394, time.Time{}),
		da.NewStop("stop-c", "Stop C", 41.2281, -85.0111, time.Time{}),
	}

	provider := &recordingProvider{
		whens: make(map[string]time.Time),
		fail:  map[string]bool{"stop-c": true},
	}
	service := NewService(zap.NewNop(), provider)

	observations := service.CollectObservations(context.Background(), stops)

	if len(observations) != 3 {
		t.Fatalf("got %d observations, want 3", len(observations))
	}
	if _, ok := observations["stop-c"]; ok {
		t.Error("failed fetch must leave the stop without an observation")
	}
	if obs := observations["depot"]; obs.GetSource() != "recording" {
		t.Errorf("unexpected source %s", obs.GetSource())
	}

	// scheduled stops keep their own hour
	if got := provider.whens["stop-a"]; !got.Equal(departure.Add(15 * time.Minute)) {
		t.Errorf("stop-a fetched for %v", got)
	}
	// unscheduled stops borrow the first stop's hour
	if got := provider.whens["stop-b"]; !got.Equal(departure) {
		t.Errorf("stop-b fetched for %v, want the depot departure", got)
	}
}

func TestCollectObservationsEmpty(t *testing.T) {
	service := NewService(zap.NewNop(), NewStaticProvider(nil))

	observations := service.CollectObservations(context.Background(), nil)
	if len(observations) != 0 {
		t.Errorf("got %d observations, want none", len(observations))
	}
}

func TestStaticProvider(t *testing.T) {
	obs := da.NewWeatherObservation("depot", 2.0, 0, 0, 0, time.Now().UTC(), "file")
	provider := NewStaticProvider(map[string]da.WeatherObservation{"depot": obs})

	got, err := provider.Fetch(context.Background(), da.NewStop("depot", "Depot", 0, 0, time.Time{}))
	if err != nil || got == nil {
		t.Fatalf("fetch: obs=%v err=%v", got, err)
	}
	if got.GetPrecipitationMM() != 2.0 {
		t.Errorf("precipitation %f, want 2.0", got.GetPrecipitationMM())
	}

	missing, err := provider.Fetch(context.Background(), da.NewStop("ghost", "Ghost", 0, 0, time.Time{}))
	if err != nil || missing != nil {
		t.Errorf("absent stop: obs=%v err=%v, want nil and nil", missing, err)
	}
}
