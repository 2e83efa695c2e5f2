package main

import (
	"context"
	"flag"
	nethttp "net/http"
	"time"

	"github.com/Rodgta01/RouteStorm/pkg"
	"github.com/Rodgta01/RouteStorm/pkg/costfunction"
	"github.com/Rodgta01/RouteStorm/pkg/datastructure"
	"github.com/Rodgta01/RouteStorm/pkg/http"
	"github.com/Rodgta01/RouteStorm/pkg/http/usecases"
	"github.com/Rodgta01/RouteStorm/pkg/logger"
	"github.com/Rodgta01/RouteStorm/pkg/roadnet"
	"github.com/Rodgta01/RouteStorm/pkg/scheduler"
	"github.com/Rodgta01/RouteStorm/pkg/spatialindex"
	"github.com/Rodgta01/RouteStorm/pkg/store"
	"github.com/Rodgta01/RouteStorm/pkg/util"
	"github.com/Rodgta01/RouteStorm/pkg/weather"
	"go.uber.org/zap"
)

var (
	stopsFile             = flag.String("stops", "./data/stops.json", "stop roster file (.json or .json.bz2) for the spatial index and weather refresh")
	osrmURL               = flag.String("osrm_url", "", "osrm table service base url, empty means haversine travel times")
	postgresDSN           = flag.String("postgres_dsn", "", "postgres dsn for the plan archive, empty disables archiving")
	refreshMinutes        = flag.Int("refresh_minutes", 15, "weather refresh interval in minutes")
	speedKmh              = flag.Float64("speed_kmh", pkg.ASSUMED_SPEED_KMH, "assumed driving speed in km/h for haversine travel times")
	leafBoundingBoxRadius = flag.Float64("leaf_bounding_box_radius", 0.05, "leaf node (r-tree) bounding box radius in km")
	useRateLimit          = flag.Bool("use_rate_limit", false, "enable per client rate limiting")
)

func main() {
	flag.Parse()
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}

	if err := util.ReadConfig(); err != nil {
		logger.Sugar().Warnf("config file not loaded, using defaults: %v", err)
	}

	stops, err := datastructure.ReadStops(*stopsFile)
	if err != nil {
		logger.Sugar().Warnf("stop roster not loaded, nearest stop lookups and weather refresh disabled: %v", err)
	}

	rtree := spatialindex.NewRtree()
	rtree.Build(stops, *leafBoundingBoxRadius, logger)

	provider, err := weather.NewOpenMeteoProvider(logger, &nethttp.Client{Timeout: 10 * time.Second})
	if err != nil {
		panic(err)
	}
	weatherService := weather.NewService(logger, provider)

	obsStore := store.NewObservationStore(24, 6*time.Hour)

	var timeFunction costfunction.TravelTimeFunction = costfunction.NewHaversineTimeFunction(*speedKmh)
	if *osrmURL != "" {
		source := roadnet.NewOSRMTableSource(logger, &nethttp.Client{Timeout: 30 * time.Second}, *osrmURL)
		timeFunction = costfunction.NewRoadNetworkTimeFunction(logger, source, *speedKmh)
	}

	riskModel := weather.NewRiskModel(weather.RiskConfigFromViper())

	var archive usecases.PlanArchive
	if *postgresDSN != "" {
		planArchive, err := store.NewPlanArchive(*postgresDSN)
		if err != nil {
			panic(err)
		}
		if err := planArchive.Migrate(context.Background()); err != nil {
			panic(err)
		}
		defer planArchive.Close()
		archive = planArchive
	}

	api := http.NewServer(logger)

	planningService := usecases.NewPlanningService(logger, timeFunction, riskModel,
		weatherService, obsStore, archive)
	stopService := usecases.NewStopService(logger, rtree)

	refresher := scheduler.New(logger, weatherService, obsStore, stops,
		time.Duration(*refreshMinutes)*time.Minute)
	if err := refresher.Start(); err != nil {
		panic(err)
	}

	ctx, cleanup, err := NewContext()
	if err != nil {
		panic(err)
	}
	api.Use(ctx,
		logger, *useRateLimit, planningService, stopService)

	signal := http.GracefulShutdown()

	refresher.Stop()
	logger.Info("RouteStorm Planning Server Stopped", zap.String("signal", signal.String()))
	cleanup()
}

func NewContext() (context.Context, func(), error) {
	ctx, cancel := context.WithCancel(context.Background())
	cb := func() {
		cancel()
	}

	return ctx, cb, nil
}
