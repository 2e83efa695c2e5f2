package scheduler

import (
	"context"
	"time"

	da "github.com/Rodgta01/RouteStorm/pkg/datastructure"
	"github.com/Rodgta01/RouteStorm/pkg/store"
	"github.com/Rodgta01/RouteStorm/pkg/weather"
	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

const (
	DEFAULT_REFRESH_MINUTES = 15
	REFRESH_TIMEOUT         = 30 * time.Second
)

// Scheduler refreshes weather observations for a fixed stop roster into the
// observation store, so planning requests read fresh data without waiting on
// the provider.
type Scheduler struct {
	log       *zap.Logger
	scheduler *gocron.Scheduler
	service   *weather.Service
	obsStore  *store.ObservationStore
	stops     []da.Stop
	interval  time.Duration
}

func New(log *zap.Logger, service *weather.Service, obsStore *store.ObservationStore,
	stops []da.Stop, interval time.Duration) *Scheduler {
	return &Scheduler{
		log:       log,
		scheduler: gocron.NewScheduler(time.UTC),
		service:   service,
		obsStore:  obsStore,
		stops:     stops,
		interval:  interval,
	}
}

func (s *Scheduler) Start() error {
	if len(s.stops) == 0 {
		s.log.Info("no stops configured, weather refresh disabled")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = DEFAULT_REFRESH_MINUTES
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(s.refresh)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.log.Sugar().Infof("weather refresh scheduled every %d minutes for %d stops",
		minutes, len(s.stops))
	return nil
}

func (s *Scheduler) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), REFRESH_TIMEOUT)
	defer cancel()

	observations := s.service.CollectObservations(ctx, s.stops)
	s.obsStore.SaveAll(observations)

	s.log.Sugar().Infof("weather refresh stored %d/%d observations",
		len(observations), len(s.stops))
}

func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
