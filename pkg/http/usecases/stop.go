package usecases

import (
	"github.com/Rodgta01/RouteStorm/pkg/spatialindex"
	"github.com/Rodgta01/RouteStorm/pkg/util"
	"go.uber.org/zap"
)

type StopService struct {
	log   *zap.Logger
	index SpatialIndex
}

func NewStopService(log *zap.Logger, index SpatialIndex) *StopService {
	return &StopService{
		log:   log,
		index: index,
	}
}

func (ss *StopService) NearestStop(lat, lon, maxRadiusKm float64) (spatialindex.StopEntry, float64, error) {
	entry, distKm, ok := ss.index.NearestStop(lat, lon, maxRadiusKm)
	if !ok {
		return spatialindex.StopEntry{}, 0, util.WrapErrorf(nil, util.ErrNotFound,
			"no stop within %.1f km of %f,%f", maxRadiusKm, lat, lon)
	}
	return entry, distKm, nil
}
