package geo

import (
	"github.com/golang/geo/s2"
)

const coincidentToleranceMeter = 0.5

// PointDistanceMeters. geodesic distance between two coordinates on the s2 sphere.
func PointDistanceMeters(pointA, pointB Coordinate) float64 {
	aS2 := s2.LatLngFromDegrees(pointA.Lat, pointA.Lon)
	bS2 := s2.LatLngFromDegrees(pointB.Lat, pointB.Lon)
	return aS2.Distance(bS2).Radians() * earthRadiusKM * 1000.0
}

// Coincident reports whether two stops sit on the same physical location.
// zero-cost edges between them are legal, distinct stops must keep positive cost.
func Coincident(pointA, pointB Coordinate) bool {
	return PointDistanceMeters(pointA, pointB) < coincidentToleranceMeter
}
