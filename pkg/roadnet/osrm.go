package roadnet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Rodgta01/RouteStorm/pkg/geo"
	"go.uber.org/zap"
)

const (
	osrmDefaultProfile = "driving"
)

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}

// OSRMTableSource queries an osrm table endpoint for asymmetric all-pairs
// durations. safe for concurrent use.
type OSRMTableSource struct {
	log     *zap.Logger
	client  *http.Client
	baseURL string
	profile string
}

func NewOSRMTableSource(log *zap.Logger, client *http.Client, baseURL string) *OSRMTableSource {
	return &OSRMTableSource{
		log:     log,
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		profile: osrmDefaultProfile,
	}
}

func (o *OSRMTableSource) Name() string {
	return "osrm"
}

type tableResponse struct {
	Code      string       `json:"code"`
	Message   string       `json:"message"`
	Durations [][]*float64 `json:"durations"`
}

func (o *OSRMTableSource) Durations(ctx context.Context, coords []geo.Coordinate) ([][]*float64, error) {
	if len(coords) == 0 {
		return [][]*float64{}, nil
	}

	endpoint := fmt.Sprintf("%s/table/v1/%s/%s?annotations=duration",
		o.baseURL, o.profile, encodeCoordinatePath(coords))

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("table request failed: %w", err)
	}
	defer resp.Body.Close()

	var tr tableResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("decode table response: %w", err)
	}

	if tr.Code != "Ok" {
		return nil, fmt.Errorf("table service returned %s: %s", tr.Code, tr.Message)
	}

	if len(tr.Durations) != len(coords) {
		return nil, fmt.Errorf("table rows do not match coordinates: rows=%d coordinates=%d",
			len(tr.Durations), len(coords))
	}
	for i, row := range tr.Durations {
		if len(row) != len(coords) {
			return nil, fmt.Errorf("table row %d has %d columns, want %d", i, len(row), len(coords))
		}
	}

	return tr.Durations, nil
}

// osrm wants lon,lat pairs joined by semicolons.
func encodeCoordinatePath(coords []geo.Coordinate) string {
	var sb strings.Builder
	for i, c := range coords {
		if i > 0 {
			sb.WriteByte(';')
		}
		sb.WriteString(strconv.FormatFloat(c.GetLon(), 'f', 6, 64))
		sb.WriteByte(',')
		sb.WriteString(strconv.FormatFloat(c.GetLat(), 'f', 6, 64))
	}
	return sb.String()
}

// doWithRetry retries transient failures (network errors, 5xx responses)
// using exponential backoff while respecting context cancellation.
func (o *OSRMTableSource) doWithRetry(
	ctx context.Context,
	makeReq func() (*http.Request, error),
) (*http.Response, error) {
	const maxAttempts = 4
	backoff := 200 * time.Millisecond

	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := makeReq()
		if err != nil {
			return nil, fmt.Errorf("make request: %w", err)
		}

		resp, err := o.do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		retry := false
		var he *httpStatusError
		if errors.As(err, &he) {
			switch he.Code {
			case 429, 500, 502, 503, 504:
				retry = true
			}
		}

		var netErr net.Error
		if !retry && errors.As(err, &netErr) {
			retry = true
		}

		if !retry || attempt == maxAttempts {
			return nil, lastErr
		}

		o.log.Debug("retrying table request", zap.Int("attempt", attempt), zap.Error(err))

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
	}

	return nil, lastErr
}

func (o *OSRMTableSource) do(req *http.Request) (*http.Response, error) {
	resp, err := o.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &httpStatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}
	return resp, nil
}
