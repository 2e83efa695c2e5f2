package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/Rodgta01/RouteStorm/pkg"
	"github.com/Rodgta01/RouteStorm/pkg/concurrent"
	"github.com/Rodgta01/RouteStorm/pkg/costfunction"
	"github.com/Rodgta01/RouteStorm/pkg/customizer"
	da "github.com/Rodgta01/RouteStorm/pkg/datastructure"
	"github.com/Rodgta01/RouteStorm/pkg/engine"
	"github.com/Rodgta01/RouteStorm/pkg/engine/solver"
	log "github.com/Rodgta01/RouteStorm/pkg/logger"
	"github.com/Rodgta01/RouteStorm/pkg/weather"
)

var (
	stopCount = flag.Int("n", 64, "stops per instance")
	instances = flag.Int("instances", 20, "number of random instances")
	seed      = flag.Int64("seed", 42, "instance generator seed")
	closed    = flag.Bool("closed", true, "benchmark closed tours")
	restarts  = flag.Int("restarts", 0, "perturbed restarts per instance")
	outFile   = flag.String("out", "solverbench.csv", "csv output file")
	dumpStops = flag.String("dump_stops", "./data/bench_stops.json.bz2", "write the first instance's stops here, empty disables")
)

// instances are scattered around the corn belt, roughly the area the sample
// roster lives in.
const (
	centerLat = 41.1
	centerLon = -85.0
	spreadDeg = 0.8
)

type benchParam struct {
	instance int
	stops    []da.Stop
	obs      map[string]da.WeatherObservation
}

func generateInstance(rd *rand.Rand, instance, n int) benchParam {
	stops := make([]da.Stop, 0, n)
	obs := make(map[string]da.WeatherObservation, n)

	for i := 0; i < n; i++ {
		id := fmt.Sprintf("i%d-s%d", instance, i)
		lat := centerLat + (rd.Float64()-0.5)*spreadDeg
		lon := centerLon + (rd.Float64()-0.5)*spreadDeg
		stops = append(stops, da.NewStop(id, id, lat, lon, time.Time{}))

		// a third of the stops sit in some kind of weather
		switch rd.Intn(3) {
		case 0:
			obs[id] = da.NewWeatherObservation(id, rd.Float64()*8.0, 0,
				rd.Float64()*40.0, rd.Float64()*60.0, time.Now().UTC(), "bench")
		}
	}

	return benchParam{instance: instance, stops: stops, obs: obs}
}

func main() {
	flag.Parse()
	logger, err := log.New()
	if err != nil {
		panic(err)
	}

	rd := rand.New(rand.NewSource(*seed))
	params := make([]benchParam, 0, *instances)
	for i := 0; i < *instances; i++ {
		params = append(params, generateInstance(rd, i, *stopCount))
	}

	if *dumpStops != "" && len(params) > 0 {
		if err := da.WriteStops(*dumpStops, params[0].stops); err != nil {
			panic(err)
		}
	}

	fout, err := os.Create(*outFile)
	if err != nil {
		panic(err)
	}
	defer fout.Close()

	runInstance := func(p benchParam) []string {
		cust := customizer.NewCustomizer(
			costfunction.NewHaversineTimeFunction(pkg.ASSUMED_SPEED_KMH),
			weather.NewDefaultRiskModel(), pkg.PENALTY_DESTINATION, logger)
		eng := engine.NewEngine(cust, logger)

		opts := engine.NewPlanOptions(0, *closed, solver.UnlimitedBudget(), *restarts, uint64(*seed))

		start := time.Now()
		result, err := eng.Plan(context.Background(), p.stops, p.obs, opts)
		if err != nil {
			panic(err)
		}
		elapsed := time.Since(start)

		improvementPct := 0.0
		if result.GetInitialMinutes() > 0 {
			improvementPct = (result.GetInitialMinutes() - result.GetTotalMinutes()) /
				result.GetInitialMinutes() * 100.0
		}

		logger.Sugar().Infof("instance %d: %.1f -> %.1f min (%.1f%%), passes=%d, moves=%d",
			p.instance, result.GetInitialMinutes(), result.GetTotalMinutes(), improvementPct,
			result.GetPasses(), result.GetMoves())

		return []string{
			strconv.Itoa(p.instance),
			strconv.Itoa(len(p.stops)),
			strconv.FormatFloat(result.GetInitialMinutes(), 'f', 3, 64),
			strconv.FormatFloat(result.GetTotalMinutes(), 'f', 3, 64),
			strconv.FormatFloat(improvementPct, 'f', 2, 64),
			strconv.Itoa(result.GetPasses()),
			strconv.Itoa(result.GetMoves()),
			strconv.FormatBool(result.IsConverged()),
			strconv.FormatInt(elapsed.Milliseconds(), 10),
		}
	}

	workers := concurrent.NewWorkerPool[benchParam, []string](8, *instances)
	for _, p := range params {
		workers.AddJob(p)
	}
	workers.Close()
	workers.Start(runInstance)
	workers.Wait()

	writer := csv.NewWriter(fout)
	defer writer.Flush()

	if err := writer.Write([]string{"instance", "n", "initial_min", "final_min",
		"improvement_pct", "passes", "moves", "converged", "elapsed_ms"}); err != nil {
		panic(err)
	}
	for row := range workers.CollectResults() {
		if err := writer.Write(row); err != nil {
			panic(err)
		}
	}
}
