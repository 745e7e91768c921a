// Package vital provides a client for the Vital API v2 timeseries endpoints.
package vital

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/ako1983/public-ai-engineering-interview/internal/biometrics"
	"github.com/ako1983/public-ai-engineering-interview/internal/sources"
	"github.com/ako1983/public-ai-engineering-interview/pkg/circuitbreaker"
)

// DefaultBaseURL is the Vital production API endpoint
const DefaultBaseURL = "https://api.tryvital.io"

// timeseries resource names per metric
var resourceNames = map[biometrics.MetricKind]string{
	biometrics.MetricHeartRate: "heartrate",
	biometrics.MetricHRV:       "hrv",
	biometrics.MetricGlucose:   "glucose",
}

// Config holds Vital client configuration
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// DefaultConfig returns client defaults; the API key must still be set
func DefaultConfig() Config {
	return Config{
		BaseURL: DefaultBaseURL,
		Timeout: 10 * time.Second,
	}
}

// Client fetches wearable timeseries data from the Vital API.
// Calls run through a circuit breaker so a degraded upstream fails fast.
// Satisfies sources.SampleSource.
type Client struct {
	config  Config
	http    *http.Client
	breaker *circuitbreaker.CircuitBreaker
	logger  *zap.Logger
	tracer  trace.Tracer
}

// NewClient creates a new Vital client
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("vital API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	breaker, err := circuitbreaker.New(circuitbreaker.DefaultConfig("vital-api"), logger)
	if err != nil {
		return nil, err
	}

	return &Client{
		config:  cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		breaker: breaker,
		logger:  logger,
		tracer:  otel.Tracer("vital-client"),
	}, nil
}

// timeseriesPoint is one entry in a Vital timeseries response
type timeseriesPoint struct {
	Timestamp string  `json:"timestamp"`
	Value     float64 `json:"value"`
}

// Samples fetches raw samples for one user and metric within [start, end)
func (c *Client) Samples(ctx context.Context, userID string, metric biometrics.MetricKind, start, end time.Time) ([]biometrics.Sample, error) {
	resource, ok := resourceNames[metric]
	if !ok {
		return nil, fmt.Errorf("no vital resource for metric %q", metric)
	}

	ctx, span := c.tracer.Start(ctx, "vital_timeseries",
		trace.WithAttributes(
			attribute.String("user_id", userID),
			attribute.String("resource", resource),
		))
	defer span.End()

	endpoint := fmt.Sprintf("%s/v2/timeseries/%s/%s?%s",
		c.config.BaseURL,
		url.PathEscape(userID),
		resource,
		url.Values{
			"start_date": {start.UTC().Format(time.RFC3339)},
			"end_date":   {end.UTC().Format(time.RFC3339)},
		}.Encode(),
	)

	result, err := c.breaker.Execute(ctx, func() (interface{}, error) {
		return c.fetch(ctx, endpoint, userID)
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	points := result.([]timeseriesPoint)
	samples := make([]biometrics.Sample, 0, len(points))
	for _, p := range points {
		ts, err := time.Parse(time.RFC3339, p.Timestamp)
		if err != nil {
			c.logger.Debug("skipping point with bad timestamp",
				zap.String("timestamp", p.Timestamp))
			continue
		}
		samples = append(samples, biometrics.Sample{Timestamp: ts.UTC(), Value: p.Value})
	}

	span.SetAttributes(attribute.Int("count", len(samples)))
	return samples, nil
}

// fetch performs a single HTTP round trip
func (c *Client) fetch(ctx context.Context, endpoint, userID string) ([]timeseriesPoint, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("x-vital-api-key", c.config.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vital request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("vital user %s: %w", userID, sources.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("vital returned %d: %s", resp.StatusCode, body)
	}

	var points []timeseriesPoint
	if err := json.NewDecoder(resp.Body).Decode(&points); err != nil {
		return nil, fmt.Errorf("failed to decode timeseries: %w", err)
	}
	return points, nil
}

// BreakerState exposes the circuit state for health reporting
func (c *Client) BreakerState() circuitbreaker.State {
	return c.breaker.GetState()
}
