package controllers

import (
	"time"

	da "github.com/Rodgta01/RouteStorm/pkg/datastructure"
	"github.com/Rodgta01/RouteStorm/pkg/engine/solver"
	"github.com/Rodgta01/RouteStorm/pkg/spatialindex"
	"github.com/Rodgta01/RouteStorm/pkg/util"
)

type stopRequest struct {
	ID   string  `json:"id" validate:"required"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat" validate:"required,min=-90,max=90"`
	Lon  float64 `json:"lon" validate:"required,min=-180,max=180"`
	When string  `json:"when,omitempty"`
}

func (s stopRequest) ToDataStop() (da.Stop, error) {
	var when time.Time
	if s.When != "" {
		parsed, err := da.ParseStopWhen(s.When)
		if err != nil {
			return da.Stop{}, util.WrapErrorf(err, util.ErrBadParamInput,
				"stop %s has malformed when %q", s.ID, s.When)
		}
		when = parsed
	}
	return da.NewStop(s.ID, s.Name, s.Lat, s.Lon, when), nil
}

type observationRequest struct {
	StopID          string  `json:"stop_id" validate:"required"`
	PrecipitationMM float64 `json:"precipitation_mm" validate:"min=0"`
	SnowfallCM      float64 `json:"snowfall_cm" validate:"min=0"`
	WindSpeedKmh    float64 `json:"wind_speed_kmh" validate:"min=0"`
	WindGustKmh     float64 `json:"wind_gust_kmh" validate:"min=0"`
}

func (o observationRequest) ToDataObservation() da.WeatherObservation {
	return da.NewWeatherObservation(o.StopID, o.PrecipitationMM, o.SnowfallCM,
		o.WindSpeedKmh, o.WindGustKmh, time.Now().UTC(), "request")
}

type planRouteRequest struct {
	Stops         []stopRequest        `json:"stops" validate:"required,min=2,dive"`
	Observations  []observationRequest `json:"observations,omitempty" validate:"omitempty,dive"`
	StartIndex    int                  `json:"start_index" validate:"min=0"`
	Closed        bool                 `json:"closed"`
	Policy        string               `json:"policy,omitempty"`
	Restarts      int                  `json:"restarts" validate:"min=0,max=16"`
	Seed          int64                `json:"seed" validate:"min=0"`
	MaxPasses     int                  `json:"max_passes" validate:"min=0"`
	MaxDurationMs int64                `json:"max_duration_ms" validate:"min=0"`
}

func (r planRouteRequest) ToDataStops() ([]da.Stop, error) {
	stops := make([]da.Stop, 0, len(r.Stops))
	for _, s := range r.Stops {
		stop, err := s.ToDataStop()
		if err != nil {
			return nil, err
		}
		stops = append(stops, stop)
	}
	return stops, nil
}

func (r planRouteRequest) ToDataObservations() map[string]da.WeatherObservation {
	if len(r.Observations) == 0 {
		return nil
	}
	observations := make(map[string]da.WeatherObservation, len(r.Observations))
	for _, o := range r.Observations {
		observations[o.StopID] = o.ToDataObservation()
	}
	return observations
}

type routeLegResponse struct {
	From        string  `json:"from"`
	To          string  `json:"to"`
	BaseMinutes float64 `json:"base_minutes"`
	Minutes     float64 `json:"minutes"`
	Factor      float64 `json:"factor"`
	Bearing     float64 `json:"bearing"`
}

type planRouteResponse struct {
	Order               []int              `json:"order"`
	StopIDs             []string           `json:"stop_ids"`
	Legs                []routeLegResponse `json:"legs"`
	TotalMinutes        float64            `json:"total_minutes"`
	BaseMinutes         float64            `json:"base_minutes"`
	InitialMinutes      float64            `json:"initial_minutes"`
	Closed              bool               `json:"closed"`
	Policy              string             `json:"policy"`
	Geometry            string             `json:"geometry"`
	Passes              int                `json:"passes"`
	Moves               int                `json:"moves"`
	Restarts            int                `json:"restarts"`
	Converged           bool               `json:"converged"`
	ElapsedMs           int64              `json:"elapsed_ms"`
	Factors             []float64          `json:"factors"`
	MissingObservations []string           `json:"missing_observations,omitempty"`
	RoadFallbackPairs   int                `json:"road_fallback_pairs,omitempty"`
}

func NewPlanRouteResponse(result *da.RouteResult, geometry string) planRouteResponse {
	legs := make([]routeLegResponse, 0, len(result.GetLegs()))
	for _, leg := range result.GetLegs() {
		legs = append(legs, routeLegResponse{
			From:        leg.GetFromID(),
			To:          leg.GetToID(),
			BaseMinutes: leg.GetBaseMinutes(),
			Minutes:     leg.GetMinutes(),
			Factor:      leg.GetFactor(),
			Bearing:     leg.GetBearing(),
		})
	}

	return planRouteResponse{
		Order:               result.GetOrder(),
		StopIDs:             result.GetStopIDs(),
		Legs:                legs,
		TotalMinutes:        result.GetTotalMinutes(),
		BaseMinutes:         result.GetBaseMinutes(),
		InitialMinutes:      result.GetInitialMinutes(),
		Closed:              result.IsClosed(),
		Policy:              result.GetPenaltyPolicy().String(),
		Geometry:            geometry,
		Passes:              result.GetPasses(),
		Moves:               result.GetMoves(),
		Restarts:            result.GetRestarts(),
		Converged:           result.IsConverged(),
		ElapsedMs:           result.GetElapsed().Milliseconds(),
		Factors:             result.GetFactors(),
		MissingObservations: result.GetMissingObservations(),
		RoadFallbackPairs:   result.GetRoadFallbackPairs(),
	}
}

type nearestStopResponse struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	DistanceKm float64 `json:"distance_km"`
}

func NewNearestStopResponse(entry spatialindex.StopEntry, distanceKm float64) nearestStopResponse {
	stop := entry.GetStop()
	return nearestStopResponse{
		ID:         stop.GetID(),
		Name:       stop.GetName(),
		Lat:        stop.GetLat(),
		Lon:        stop.GetLon(),
		DistanceKm: distanceKm,
	}
}

type progressResponse struct {
	Pass         int     `json:"pass"`
	Moves        int     `json:"moves"`
	Cost         float64 `json:"cost"`
	Neighborhood string  `json:"neighborhood"`
}

func NewProgressResponse(ev solver.ProgressEvent) progressResponse {
	return progressResponse{
		Pass:         ev.GetPass(),
		Moves:        ev.GetMoves(),
		Cost:         ev.GetCost(),
		Neighborhood: ev.GetNeighborhood(),
	}
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
