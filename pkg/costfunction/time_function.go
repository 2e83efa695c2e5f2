package costfunction

import (
	"context"

	"github.com/Rodgta01/RouteStorm/pkg"
	da "github.com/Rodgta01/RouteStorm/pkg/datastructure"
	"github.com/Rodgta01/RouteStorm/pkg/geo"
	"github.com/Rodgta01/RouteStorm/pkg/util"
)

// HaversineTimeFunction estimates minutes as great-circle km over an assumed
// driving speed.
type HaversineTimeFunction struct {
	speedKmh float64
	coords   []geo.Coordinate
}

func NewHaversineTimeFunction(speedKmh float64) *HaversineTimeFunction {
	if speedKmh <= 0 {
		speedKmh = pkg.ASSUMED_SPEED_KMH
	}
	return &HaversineTimeFunction{speedKmh: speedKmh}
}

func (tf *HaversineTimeFunction) Name() string {
	return "haversine"
}

func (tf *HaversineTimeFunction) GetSpeedKmh() float64 {
	return tf.speedKmh
}

func (tf *HaversineTimeFunction) Prepare(_ context.Context, stops []da.Stop) error {
	tf.coords = da.StopCoordinates(stops)
	return nil
}

func (tf *HaversineTimeFunction) TravelTime(from, to int) float64 {
	a := tf.coords[from]
	b := tf.coords[to]
	km := geo.CalculateHaversineDistance(a.GetLat(), a.GetLon(), b.GetLat(), b.GetLon())
	return util.KmToMinutes(km, tf.speedKmh)
}
