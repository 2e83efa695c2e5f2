package store

import (
	"sync"
	"time"

	da "github.com/Rodgta01/RouteStorm/pkg/datastructure"
	"github.com/Rodgta01/RouteStorm/pkg/util"
)

// ObservationStore keeps a time-ordered observation history per stop so
// planning can run against the freshest fetched weather without calling the
// provider on every request. safe for concurrent use.
type ObservationStore struct {
	mu sync.RWMutex

	data map[string][]da.WeatherObservation

	maxHistory int
	maxAge     time.Duration
}

// NewObservationStore creates a store that keeps at most maxHistory
// observations per stop (<= 0 means unlimited) and drops observations older
// than maxAge (0 means keep forever).
func NewObservationStore(maxHistory int, maxAge time.Duration) *ObservationStore {
	return &ObservationStore{
		data:       make(map[string][]da.WeatherObservation),
		maxHistory: maxHistory,
		maxAge:     maxAge,
	}
}

func (s *ObservationStore) Save(obs da.WeatherObservation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := obs.GetStopID()
	history := append(s.data[key], obs)

	if s.maxHistory > 0 && len(history) > s.maxHistory {
		history = history[len(history)-s.maxHistory:]
	}

	if s.maxAge > 0 {
		cutoff := time.Now().Add(-s.maxAge)
		i := 0
		for ; i < len(history); i++ {
			if !history[i].GetObservedAt().Before(cutoff) {
				break
			}
		}
		if i > 0 {
			history = history[i:]
		}
	}

	s.data[key] = history
}

func (s *ObservationStore) SaveAll(observations map[string]da.WeatherObservation) {
	for _, obs := range observations {
		s.Save(obs)
	}
}

// Latest returns the most recent observation for a stop.
func (s *ObservationStore) Latest(stopID string) (da.WeatherObservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[stopID]
	if !ok || len(history) == 0 {
		return da.WeatherObservation{}, util.WrapErrorf(nil, util.ErrNotFound,
			"no observation for stop %s", stopID)
	}
	return history[len(history)-1], nil
}

// Snapshot returns the latest observation per stop, in the map shape the
// planner consumes.
func (s *ObservationStore) Snapshot() map[string]da.WeatherObservation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]da.WeatherObservation, len(s.data))
	for stopID, history := range s.data {
		if len(history) == 0 {
			continue
		}
		out[stopID] = history[len(history)-1]
	}
	return out
}

// Range returns observations for a stop with observedAt in [from, to].
func (s *ObservationStore) Range(stopID string, from, to time.Time) ([]da.WeatherObservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[stopID]
	if !ok || len(history) == 0 {
		return nil, util.WrapErrorf(nil, util.ErrNotFound,
			"no observation for stop %s", stopID)
	}

	var result []da.WeatherObservation
	for _, obs := range history {
		at := obs.GetObservedAt()
		if !at.Before(from) && !at.After(to) {
			result = append(result, obs)
		}
	}
	if len(result) == 0 {
		return nil, util.WrapErrorf(nil, util.ErrNotFound,
			"no observation for stop %s in range", stopID)
	}
	return result, nil
}
