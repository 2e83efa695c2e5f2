package datastructure

import (
	"time"

	"github.com/Rodgta01/RouteStorm/pkg/geo"
)

// Stop is one visit the tour must make.
type Stop struct {
	id   string
	name string
	lat  float64
	lon  float64
	when time.Time
}

func NewStop(id, name string, lat, lon float64, when time.Time) Stop {
	return Stop{
		id:   id,
		name: name,
		lat:  lat,
		lon:  lon,
		when: when,
	}
}

func (s Stop) GetID() string {
	return s.id
}

func (s Stop) GetName() string {
	return s.name
}

func (s Stop) GetLat() float64 {
	return s.lat
}

func (s Stop) GetLon() float64 {
	return s.lon
}

// GetWhen. planned visit hour. zero value means the caller never scheduled it.
func (s Stop) GetWhen() time.Time {
	return s.when
}

func (s Stop) HasWhen() bool {
	return !s.when.IsZero()
}

func (s Stop) ToGeoCoordinate() geo.Coordinate {
	return geo.NewCoordinate(s.lat, s.lon)
}

func StopCoordinates(stops []Stop) []geo.Coordinate {
	coords := make([]geo.Coordinate, len(stops))
	for i, s := range stops {
		coords[i] = s.ToGeoCoordinate()
	}
	return coords
}
