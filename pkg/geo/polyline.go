package geo

import (
	"github.com/twpayne/go-polyline"
)

// PolylineFromCoords. encode route shape as a google polyline string.
func PolylineFromCoords(coords []Coordinate) string {
	buf := make([][]float64, len(coords))
	for i, c := range coords {
		buf[i] = []float64{c.GetLat(), c.GetLon()}
	}
	return string(polyline.EncodeCoords(buf))
}

func CoordsFromPolyline(encoded string) ([]Coordinate, error) {
	decoded, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, err
	}
	coords := make([]Coordinate, len(decoded))
	for i, c := range decoded {
		coords[i] = NewCoordinate(c[0], c[1])
	}
	return coords, nil
}
