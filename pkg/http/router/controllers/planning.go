package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/julienschmidt/httprouter"
	"github.com/Rodgta01/RouteStorm/pkg/engine"
	"github.com/Rodgta01/RouteStorm/pkg/engine/solver"
	helper "github.com/Rodgta01/RouteStorm/pkg/http/router/routerhelper"
	"go.uber.org/zap"
)

const (
	DEFAULT_NEAREST_STOP_RADIUS_KM = 5.0
	DEFAULT_PLAN_LIST_LIMIT        = 50
)

type planningAPI struct {
	planningService PlanningService
	stopService     StopService
	log             *zap.Logger
}

func New(planningService PlanningService, stopService StopService, log *zap.Logger) *planningAPI {
	return &planningAPI{
		planningService: planningService,
		stopService:     stopService,
		log:             log,
	}
}

func (api *planningAPI) Routes(group *helper.RouteGroup) {
	group.POST("/planRoute", api.planRoute)
	group.GET("/nearestStop", api.nearestStop)
	group.GET("/plans", api.listPlans)
}

func (api *planningAPI) planRoute(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var (
		request planRouteRequest
		err     error
	)

	err = json.NewDecoder(r.Body).Decode(&request)
	if err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := r.Body.Close(); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}

	validate := validator.New()
	if err := validate.Struct(request); err != nil {
		english := en.New()
		uni := ut.New(english, english)
		trans, _ := uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, trans)
		vv := translateError(err, trans)
		vvString := []string{}
		for _, v := range vv {
			vvString = append(vvString, v.Error())
		}
		api.BadRequestResponse(w, r, fmt.Errorf("validation error: %v", vvString))
		return
	}

	stops, err := request.ToDataStops()
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	budget := solver.NewBudget(request.MaxPasses,
		time.Duration(request.MaxDurationMs)*time.Millisecond)
	opts := engine.NewPlanOptions(request.StartIndex, request.Closed, budget,
		request.Restarts, uint64(request.Seed))

	result, geometry, err := api.planningService.PlanTour(r.Context(), stops,
		request.ToDataObservations(), request.Policy, opts)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewPlanRouteResponse(result, geometry)}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *planningAPI) nearestStop(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var (
		lat, lon, radius float64
		err              error
	)

	query := r.URL.Query()

	lat, err = strconv.ParseFloat(query.Get("lat"), 64)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("lat is required and must be a valid float"))
		return
	}
	lon, err = strconv.ParseFloat(query.Get("lon"), 64)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("lon is required and must be a valid float"))
		return
	}
	radius = DEFAULT_NEAREST_STOP_RADIUS_KM
	if raw := query.Get("radius_km"); raw != "" {
		radius, err = strconv.ParseFloat(raw, 64)
		if err != nil || radius <= 0 {
			api.BadRequestResponse(w, r, errors.New("radius_km must be a positive float"))
			return
		}
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		api.BadRequestResponse(w, r, errors.New("lat/lon outside valid range"))
		return
	}

	entry, distKm, err := api.stopService.NearestStop(lat, lon, radius)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewNearestStopResponse(entry, distKm)}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *planningAPI) listPlans(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	limit := DEFAULT_PLAN_LIST_LIMIT

	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			api.BadRequestResponse(w, r, errors.New("limit must be a positive int"))
			return
		}
		limit = parsed
	}

	plans, err := api.planningService.ListPlans(r.Context(), limit)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": plans}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}
