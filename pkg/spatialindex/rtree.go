package spatialindex

import (
	"math"

	da "github.com/Rodgta01/RouteStorm/pkg/datastructure"
	"github.com/Rodgta01/RouteStorm/pkg/geo"
	"github.com/tidwall/rtree"
	"go.uber.org/zap"
)

type Rtree struct {
	tr *rtree.RTreeG[StopEntry]
}

// nearest stop queries resolve a raw coordinate (for example a courier gps
// fix) to the closest known stop before planning.
type StopEntry struct {
	stopIndex int
	stop      da.Stop
}

func (se StopEntry) GetStopIndex() int {
	return se.stopIndex
}

func (se StopEntry) GetStop() da.Stop {
	return se.stop
}

func newStopEntry(stopIndex int, stop da.Stop) StopEntry {
	return StopEntry{
		stopIndex: stopIndex,
		stop:      stop,
	}
}

func NewRtree() *Rtree {
	var tr rtree.RTreeG[StopEntry]
	return &Rtree{
		tr: &tr,
	}
}

// Build. build r-tree, with each leaf having bounding box with radius boundingBoxRadius (in km)
func (rt *Rtree) Build(stops []da.Stop, boundingBoxRadius float64, log *zap.Logger) {
	log.Info("Building R-tree spatial index...", zap.Int("stops", len(stops)))
	for i, stop := range stops {
		lowerLat, lowerLon := geo.GetDestinationPoint(stop.GetLat(), stop.GetLon(), 225, boundingBoxRadius)
		upperLat, upperLon := geo.GetDestinationPoint(stop.GetLat(), stop.GetLon(), 45, boundingBoxRadius)

		rt.tr.Insert([2]float64{lowerLon, lowerLat}, [2]float64{upperLon, upperLat},
			newStopEntry(i, stop))
	}
	log.Info("R-tree spatial index built.")
}

// SearchWithinRadius search for all stops within radius (in km) from the query point (qLat, qLon)
func (rt *Rtree) SearchWithinRadius(qLat, qLon, radius float64) []StopEntry {
	lowerLat, lowerLon := geo.GetDestinationPoint(qLat, qLon, 225, radius)
	upperLat, upperLon := geo.GetDestinationPoint(qLat, qLon, 45, radius)

	results := make([]StopEntry, 0, 10)
	rt.tr.Search([2]float64{lowerLon, lowerLat}, [2]float64{upperLon, upperLat},
		func(min, max [2]float64, data StopEntry) bool {
			results = append(results, data)
			return true
		})
	return results
}

// NearestStop finds the closest stop to (qLat, qLon) within maxRadius km,
// widening the search window until something is hit. the bounding box search
// overshoots, so candidates are re-ranked by haversine distance.
func (rt *Rtree) NearestStop(qLat, qLon, maxRadius float64) (StopEntry, float64, bool) {
	for radius := 1.0; ; radius *= 2 {
		if radius > maxRadius {
			radius = maxRadius
		}

		candidates := rt.SearchWithinRadius(qLat, qLon, radius)
		if len(candidates) > 0 {
			best := candidates[0]
			bestDist := math.Inf(1)
			for _, cand := range candidates {
				dist := geo.CalculateHaversineDistance(qLat, qLon,
					cand.GetStop().GetLat(), cand.GetStop().GetLon())
				if dist < bestDist {
					bestDist = dist
					best = cand
				}
			}
			if bestDist <= maxRadius {
				return best, bestDist, true
			}
		}

		if radius >= maxRadius {
			return StopEntry{}, 0, false
		}
	}
}
