package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	da "github.com/Rodgta01/RouteStorm/pkg/datastructure"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const (
	openMeteoBaseURL    = "https://api.open-meteo.com/v1/forecast"
	openMeteoHourLayout = "2006-01-02T15:04"
	openMeteoCacheSize  = 4096
)

var (
	errRateLimited = errors.New("rate limited")
	errServerError = errors.New("server error")
	errUnexpected  = errors.New("unexpected status code")
	errCircuitOpen = errors.New("circuit breaker open")
)

// BackoffConfig controls the retry schedule for upstream calls.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// OpenMeteoProvider pulls hourly precipitation/snowfall/wind readings from the
// open-meteo forecast api. responses are cached per coordinate and hour so a
// matrix rebuild does not hammer the upstream.
type OpenMeteoProvider struct {
	log     *zap.Logger
	client  *http.Client
	baseURL string
	backoff BackoffConfig
	circuit *gobreaker.CircuitBreaker
	cache   *lru.Cache[string, da.WeatherObservation]
	nowFn   func() time.Time
}

func NewOpenMeteoProvider(log *zap.Logger, client *http.Client) (*OpenMeteoProvider, error) {
	cache, err := lru.New[string, da.WeatherObservation](openMeteoCacheSize)
	if err != nil {
		return nil, err
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openmeteo",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &OpenMeteoProvider{
		log:     log,
		client:  client,
		baseURL: openMeteoBaseURL,
		backoff: BackoffConfig{
			MaxRetries:      3,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		},
		circuit: cb,
		cache:   cache,
		nowFn:   time.Now,
	}, nil
}

// SetBaseURL. test hook for pointing the provider at a local stub.
func (p *OpenMeteoProvider) SetBaseURL(baseURL string) {
	p.baseURL = baseURL
}

func (p *OpenMeteoProvider) Name() string {
	return "openmeteo"
}

func (p *OpenMeteoProvider) Fetch(ctx context.Context, stop da.Stop) (*da.WeatherObservation, error) {
	when := stop.GetWhen()
	if !stop.HasWhen() {
		when = p.nowFn()
	}
	when = when.UTC().Truncate(time.Hour)
	target := when.Format(openMeteoHourLayout)

	cacheKey := fmt.Sprintf("%.4f,%.4f@%s", stop.GetLat(), stop.GetLon(), target)
	if cached, ok := p.cache.Get(cacheKey); ok {
		obs := cached
		return &obs, nil
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", stop.GetLat()))
		values.Set("longitude", fmt.Sprintf("%f", stop.GetLon()))
		values.Set("hourly", "precipitation,snowfall,wind_speed_10m,wind_gusts_10m")
		values.Set("start_date", when.Format("2006-01-02"))
		values.Set("end_date", when.Format("2006-01-02"))
		values.Set("timezone", "UTC")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		return req, nil
	}

	resp, err := p.doRequestWithResilience(ctx, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		Hourly struct {
			Time          []string  `json:"time"`
			Precipitation []float64 `json:"precipitation"`
			Snowfall      []float64 `json:"snowfall"`
			WindSpeed10M  []float64 `json:"wind_speed_10m"`
			WindGusts10M  []float64 `json:"wind_gusts_10m"`
		} `json:"hourly"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	idx := -1
	for i, ts := range payload.Hourly.Time {
		if ts == target {
			idx = i
			break
		}
	}
	if idx == -1 {
		p.log.Debug("requested hour outside forecast window",
			zap.String("stop", stop.GetID()), zap.String("hour", target))
		return nil, nil
	}

	obs := da.NewWeatherObservation(
		stop.GetID(),
		floatAt(payload.Hourly.Precipitation, idx),
		floatAt(payload.Hourly.Snowfall, idx),
		floatAt(payload.Hourly.WindSpeed10M, idx),
		floatAt(payload.Hourly.WindGusts10M, idx),
		when,
		p.Name(),
	)

	p.cache.Add(cacheKey, obs)
	return &obs, nil
}

// floatAt. absent arrays mean the field contributes nothing.
func floatAt(values []float64, idx int) float64 {
	if idx < 0 || idx >= len(values) {
		return 0
	}
	return values[idx]
}

// doRequestWithResilience executes the request with retries, exponential
// backoff and a circuit breaker around the upstream.
func (p *OpenMeteoProvider) doRequestWithResilience(ctx context.Context,
	buildRequest func() (*http.Request, error)) (*http.Response, error) {

	var attempt int
	var lastErr error

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		req, err := buildRequest()
		if err != nil {
			return nil, err
		}

		req = req.WithContext(ctx)

		result, err := p.circuit.Execute(func() (interface{}, error) {
			resp, execErr := p.client.Do(req)
			if execErr != nil {
				return nil, execErr
			}

			if resp.StatusCode == http.StatusTooManyRequests {
				resp.Body.Close()
				return nil, errRateLimited
			}
			if resp.StatusCode >= 500 {
				resp.Body.Close()
				return nil, errServerError
			}
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				resp.Body.Close()
				return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
			}

			return resp, nil
		})

		if err == nil {
			resp, ok := result.(*http.Response)
			if !ok {
				return nil, fmt.Errorf("unexpected result type from circuit breaker")
			}
			return resp, nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}

		lastErr = err
		if attempt >= p.backoff.MaxRetries {
			return nil, lastErr
		}

		delay := p.backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if delay > p.backoff.MaxInterval && p.backoff.MaxInterval > 0 {
			delay = p.backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		attempt++
	}
}
