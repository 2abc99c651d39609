package openmeteo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/flood-hotspot-service/internal/domain"
	"github.com/couchcryptid/flood-hotspot-service/internal/observability"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	// DefaultBaseURL is the public Open-Meteo API root.
	DefaultBaseURL = "https://api.open-meteo.com/v1"

	userAgent    = "flood-hotspot-service/1.0"
	maxBodyBytes = 2 << 20
)

// ErrUnexpectedStatus is returned for any non-2xx provider response.
var ErrUnexpectedStatus = errors.New("unexpected forecast status")

// Client implements domain.Forecaster using the Open-Meteo forecast API.
//
// Every call sends exactly one request. The circuit breaker tracks provider
// health for logs and metrics and never refuses a request.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.TwoStepCircuitBreaker
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an Open-Meteo client. timeout bounds each request end to end.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		breaker: newBreaker(metrics, logger),
		metrics: metrics,
		logger:  logger,
	}
}

func newBreaker(metrics *observability.Metrics, logger *slog.Logger) *gobreaker.TwoStepCircuitBreaker {
	return gobreaker.NewTwoStepCircuitBreaker(gobreaker.Settings{
		Name:        "openmeteo",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("forecast circuit breaker state change",
				"breaker", name, "from", from.String(), "to", to.String())
			if metrics != nil {
				metrics.ForecastBreakerOpen.Set(boolGauge(to == gobreaker.StateOpen))
			}
		},
	})
}

// State reports the provider breaker state.
func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// HourlyRain returns the hourly rain series (mm) for the next day at the given point.
// Missing hours are reported as zero.
func (c *Client) HourlyRain(ctx context.Context, at domain.Coordinates) ([]float64, error) {
	ctx, span := otel.Tracer("openmeteo").Start(ctx, "openmeteo.HourlyRain")
	defer span.End()
	span.SetAttributes(
		attribute.Float64("geo.lat", at.Lat),
		attribute.Float64("geo.lon", at.Lon),
	)

	params := url.Values{
		"latitude":      {strconv.FormatFloat(at.Lat, 'f', -1, 64)},
		"longitude":     {strconv.FormatFloat(at.Lon, 'f', -1, 64)},
		"hourly":        {"rain"},
		"forecast_days": {"1"},
	}

	// While open (or half-open with its trial request in flight) Allow refuses; the
	// request is still sent, its outcome just goes unrecorded.
	done, allowErr := c.breaker.Allow()
	span.SetAttributes(attribute.String("breaker.state", c.breaker.State().String()))

	start := time.Now()
	hourly, err := c.doRequest(ctx, c.baseURL+"/forecast?"+params.Encode())
	if c.metrics != nil {
		c.metrics.ForecastAPIDuration.Observe(time.Since(start).Seconds())
	}
	if allowErr == nil {
		done(err == nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("forecast.hours", len(hourly)))
	return hourly, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) ([]float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("forecast request: %w", err)
	}
	defer resp.Body.Close()

	body := io.LimitReader(resp.Body, maxBodyBytes)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnexpectedStatus, resp.StatusCode, snippet)
	}

	var payload response
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	hourly := make([]float64, len(payload.Hourly.Rain))
	for i, mm := range payload.Hourly.Rain {
		if mm != nil {
			hourly[i] = *mm
		}
	}
	return hourly, nil
}

// Open-Meteo API response types.

type response struct {
	Hourly hourly `json:"hourly"`
}

type hourly struct {
	Time []string   `json:"time"`
	Rain []*float64 `json:"rain"`
}
