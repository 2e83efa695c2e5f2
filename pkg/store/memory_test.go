package store

import (
	"errors"
	"testing"
	"time"

	da "github.com/Rodgta01/RouteStorm/pkg/datastructure"
	"github.com/Rodgta01/RouteStorm/pkg/util"
	"github.com/stretchr/testify/require"
)

func obsAt(stopID string, precipitationMM float64, at time.Time) da.WeatherObservation {
	return da.NewWeatherObservation(stopID, precipitationMM, 0, 0, 0, at, "test")
}

func TestObservationStoreLatest(t *testing.T) {
	store := NewObservationStore(0, 0)
	now := time.Now().UTC()

	store.Save(obsAt("depot", 1.0, now.Add(-2*time.Hour)))
	store.Save(obsAt("depot", 2.0, now.Add(-1*time.Hour)))
	store.Save(obsAt("stop-a", 3.0, now))

	latest, err := store.Latest("depot")
	require.NoError(t, err)
	require.Equal(t, 2.0, latest.GetPrecipitationMM())

	_, err = store.Latest("ghost")
	require.Error(t, err)
	var domainErr *util.Error
	require.True(t, errors.As(err, &domainErr))
	require.Equal(t, util.ErrNotFound, domainErr.Code())
}

func TestObservationStoreHistoryRetention(t *testing.T) {
	store := NewObservationStore(2, 0)
	now := time.Now().UTC()

	for i := 0; i < 5; i++ {
		store.Save(obsAt("depot", float64(i), now.Add(time.Duration(i)*time.Minute)))
	}

	history, err := store.Range("depot", now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, 3.0, history[0].GetPrecipitationMM())
	require.Equal(t, 4.0, history[1].GetPrecipitationMM())
}

func TestObservationStoreAgeRetention(t *testing.T) {
	store := NewObservationStore(0, time.Hour)
	now := time.Now().UTC()

	store.Save(obsAt("depot", 1.0, now.Add(-3*time.Hour)))
	store.Save(obsAt("depot", 2.0, now))

	history, err := store.Range("depot", now.Add(-24*time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, 2.0, history[0].GetPrecipitationMM())
}

func TestObservationStoreSnapshot(t *testing.T) {
	store := NewObservationStore(0, 0)
	now := time.Now().UTC()

	store.SaveAll(map[string]da.WeatherObservation{
		"depot":  obsAt("depot", 1.0, now.Add(-time.Hour)),
		"stop-a": obsAt("stop-a", 2.0, now),
	})
	store.Save(obsAt("depot", 5.0, now))

	snapshot := store.Snapshot()
	require.Len(t, snapshot, 2)
	require.Equal(t, 5.0, snapshot["depot"].GetPrecipitationMM())
	require.Equal(t, 2.0, snapshot["stop-a"].GetPrecipitationMM())
}

func TestObservationStoreRangeWindow(t *testing.T) {
	store := NewObservationStore(0, 0)
	base := time.Date(2025, 11, 10, 8, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		store.Save(obsAt("depot", float64(i), base.Add(time.Duration(i)*time.Hour)))
	}

	// [09:00, 10:00] keeps the two middle readings, bounds inclusive
	window, err := store.Range("depot", base.Add(time.Hour), base.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, window, 2)
	require.Equal(t, 1.0, window[0].GetPrecipitationMM())
	require.Equal(t, 2.0, window[1].GetPrecipitationMM())

	_, err = store.Range("depot", base.Add(10*time.Hour), base.Add(11*time.Hour))
	require.Error(t, err)
}
