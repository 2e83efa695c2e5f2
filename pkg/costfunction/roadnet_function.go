package costfunction

import (
	"context"
	"sync/atomic"

	da "github.com/Rodgta01/RouteStorm/pkg/datastructure"
	"github.com/Rodgta01/RouteStorm/pkg/roadnet"
	"github.com/Rodgta01/RouteStorm/pkg/util"
	"go.uber.org/zap"
)

// RoadNetworkTimeFunction asks a routing backend for an all-pairs duration
// table and falls back to haversine minutes for every pair the backend
// cannot answer. a dead backend degrades the whole matrix, never the plan.
type RoadNetworkTimeFunction struct {
	log      *zap.Logger
	source   roadnet.DistanceSource
	fallback *HaversineTimeFunction

	table         [][]*float64
	fallbackPairs atomic.Int64
}

func NewRoadNetworkTimeFunction(log *zap.Logger, source roadnet.DistanceSource,
	fallbackSpeedKmh float64) *RoadNetworkTimeFunction {
	return &RoadNetworkTimeFunction{
		log:      log,
		source:   source,
		fallback: NewHaversineTimeFunction(fallbackSpeedKmh),
	}
}

func (tf *RoadNetworkTimeFunction) Name() string {
	return "road_network"
}

func (tf *RoadNetworkTimeFunction) Prepare(ctx context.Context, stops []da.Stop) error {
	if err := tf.fallback.Prepare(ctx, stops); err != nil {
		return err
	}
	tf.table = nil
	tf.fallbackPairs.Store(0)

	table, err := tf.source.Durations(ctx, da.StopCoordinates(stops))
	if err != nil {
		tf.log.Warn("road network backend unavailable, using haversine estimates",
			zap.String("source", tf.source.Name()), zap.Error(err))
		return nil
	}
	tf.table = table
	return nil
}

func (tf *RoadNetworkTimeFunction) TravelTime(from, to int) float64 {
	if tf.table != nil {
		if seconds := tf.table[from][to]; seconds != nil {
			return util.SecondsToMinutes(*seconds)
		}
	}
	if from != to {
		tf.fallbackPairs.Add(1)
	}
	return tf.fallback.TravelTime(from, to)
}

func (tf *RoadNetworkTimeFunction) FallbackPairs() int {
	return int(tf.fallbackPairs.Load())
}
