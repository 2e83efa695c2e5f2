package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	nethttp "net/http"
	"os"
	"time"

	"github.com/Rodgta01/RouteStorm/pkg"
	"github.com/Rodgta01/RouteStorm/pkg/costfunction"
	"github.com/Rodgta01/RouteStorm/pkg/customizer"
	da "github.com/Rodgta01/RouteStorm/pkg/datastructure"
	"github.com/Rodgta01/RouteStorm/pkg/engine"
	"github.com/Rodgta01/RouteStorm/pkg/engine/solver"
	"github.com/Rodgta01/RouteStorm/pkg/logger"
	"github.com/Rodgta01/RouteStorm/pkg/roadnet"
	"github.com/Rodgta01/RouteStorm/pkg/util"
	"github.com/Rodgta01/RouteStorm/pkg/weather"
	"go.uber.org/zap"
)

var (
	stopsFile        = flag.String("stops", "./data/stops.json", "stop file (.json or .json.bz2)")
	observationsFile = flag.String("observations", "", "static observations file, empty fetches from open-meteo")
	startIndex       = flag.Int("start", 0, "index of the starting stop")
	closed           = flag.Bool("closed", true, "return to the starting stop")
	policy           = flag.String("policy", "", "penalty policy: destination, origin, max or both")
	restarts         = flag.Int("restarts", pkg.DEFAULT_SOLVER_RESTARTS, "number of perturbed restarts")
	seed             = flag.Int64("seed", 0, "seed for perturbed restarts")
	maxPasses        = flag.Int("max_passes", 0, "improvement pass budget, 0 means unlimited")
	maxDuration      = flag.Duration("max_duration", 10*time.Second, "improvement wall clock budget, 0 means unlimited")
	speedKmh         = flag.Float64("speed_kmh", pkg.ASSUMED_SPEED_KMH, "assumed driving speed in km/h")
	osrmURL          = flag.String("osrm_url", "", "osrm table service base url, empty means haversine travel times")
	jsonOut          = flag.Bool("json", false, "emit the plan as json instead of the console report")
)

type observationRecord struct {
	StopID          string  `json:"stop_id"`
	PrecipitationMM float64 `json:"precipitation_mm"`
	SnowfallCM      float64 `json:"snowfall_cm"`
	WindSpeedKmh    float64 `json:"wind_speed_kmh"`
	WindGustKmh     float64 `json:"wind_gust_kmh"`
}

func main() {
	flag.Parse()
	log, err := logger.New()
	if err != nil {
		panic(err)
	}

	stops, err := da.ReadStops(*stopsFile)
	if err != nil {
		panic(err)
	}

	ctx := context.Background()

	observations, err := loadObservations(ctx, log, stops)
	if err != nil {
		panic(err)
	}

	var timeFunction costfunction.TravelTimeFunction = costfunction.NewHaversineTimeFunction(*speedKmh)
	if *osrmURL != "" {
		source := roadnet.NewOSRMTableSource(log, &nethttp.Client{Timeout: 30 * time.Second}, *osrmURL)
		timeFunction = costfunction.NewRoadNetworkTimeFunction(log, source, *speedKmh)
	}

	cust := customizer.NewCustomizer(timeFunction, weather.NewDefaultRiskModel(),
		pkg.GetPenaltyPolicy(*policy), log)
	eng := engine.NewEngine(cust, log)

	opts := engine.NewPlanOptions(*startIndex, *closed,
		solver.NewBudget(*maxPasses, *maxDuration), *restarts, uint64(*seed))

	result, err := eng.Plan(ctx, stops, observations, opts)
	if err != nil {
		panic(err)
	}

	if *jsonOut {
		if err := printJSON(stops, result); err != nil {
			panic(err)
		}
		return
	}
	printResult(stops, result)
}

type planReport struct {
	Order               []int     `json:"order"`
	Names               []string  `json:"names"`
	TotalMinutes        float64   `json:"total_minutes"`
	BaseMinutes         float64   `json:"base_minutes"`
	InitialMinutes      float64   `json:"initial_minutes"`
	Closed              bool      `json:"closed"`
	Policy              string    `json:"policy"`
	Converged           bool      `json:"converged"`
	Passes              int       `json:"passes"`
	Moves               int       `json:"moves"`
	Factors             []float64 `json:"factors"`
	MissingObservations []string  `json:"missing_observations,omitempty"`
}

func printJSON(stops []da.Stop, result *da.RouteResult) error {
	names := make([]string, 0, len(result.GetOrder()))
	for _, idx := range result.GetOrder() {
		names = append(names, stops[idx].GetName())
	}

	report := planReport{
		Order:               result.GetOrder(),
		Names:               names,
		TotalMinutes:        result.GetTotalMinutes(),
		BaseMinutes:         result.GetBaseMinutes(),
		InitialMinutes:      result.GetInitialMinutes(),
		Closed:              result.IsClosed(),
		Policy:              result.GetPenaltyPolicy().String(),
		Converged:           result.IsConverged(),
		Passes:              result.GetPasses(),
		Moves:               result.GetMoves(),
		Factors:             result.GetFactors(),
		MissingObservations: result.GetMissingObservations(),
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

func loadObservations(ctx context.Context, log *zap.Logger, stops []da.Stop) (map[string]da.WeatherObservation, error) {
	if *observationsFile == "" {
		provider, err := weather.NewOpenMeteoProvider(log, &nethttp.Client{Timeout: 20 * time.Second})
		if err != nil {
			return nil, err
		}
		return weather.NewService(log, provider).CollectObservations(ctx, stops), nil
	}

	f, err := os.Open(*observationsFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []observationRecord
	if err := json.NewDecoder(f).Decode(&records); err != nil {
		return nil, err
	}

	observations := make(map[string]da.WeatherObservation, len(records))
	for _, rec := range records {
		observations[rec.StopID] = da.NewWeatherObservation(rec.StopID, rec.PrecipitationMM,
			rec.SnowfallCM, rec.WindSpeedKmh, rec.WindGustKmh, time.Now().UTC(), "file")
	}
	return observations, nil
}

func printResult(stops []da.Stop, result *da.RouteResult) {
	fmt.Println("Visit order:")
	for _, idx := range result.GetOrder() {
		fmt.Println(idx, stops[idx].GetName())
	}
	if result.IsClosed() && len(result.GetOrder()) > 0 {
		first := result.GetOrder()[0]
		fmt.Println(first, stops[first].GetName())
	}

	fmt.Printf("Total travel time (weather-adjusted): %.1f min\n", result.GetTotalMinutes())

	factors := result.GetFactors()
	rounded := make([]float64, len(factors))
	for i, f := range factors {
		rounded[i] = util.RoundFloat(f, 2)
	}
	fmt.Println("Node weather factors:", rounded)

	if missing := result.GetMissingObservations(); len(missing) > 0 {
		fmt.Println("Stops without weather data:", missing)
	}
}
