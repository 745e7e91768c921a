package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/ako1983/public-ai-engineering-interview/internal/api/middleware"
	"github.com/ako1983/public-ai-engineering-interview/internal/biometrics"
	"github.com/ako1983/public-ai-engineering-interview/internal/observability/metrics"
	"github.com/ako1983/public-ai-engineering-interview/internal/sources"
)

const (
	defaultInsightDays = 7
	maxInsightDays     = 90
)

// BiometricsHandler handles wearable insight endpoints
type BiometricsHandler struct {
	source  sources.SampleSource
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewBiometricsHandler creates a new handler
func NewBiometricsHandler(source sources.SampleSource, m *metrics.Metrics, logger *zap.Logger) *BiometricsHandler {
	return &BiometricsHandler{
		source:  source,
		metrics: m,
		logger:  logger,
	}
}

// Routes returns the handler routes
func (h *BiometricsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{metric}/insights", h.GetInsights)
	return r
}

// InsightsResponse is the response body for a biometric insight query
type InsightsResponse struct {
	UserID string `json:"userId"`
	Days   int    `json:"days"`
	*biometrics.Summary
}

// GetInsights handles GET /users/{id}/biometrics/{metric}/insights
func (h *BiometricsHandler) GetInsights(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tracer := otel.Tracer("biometrics-handler")
	ctx, span := tracer.Start(ctx, "build_biometric_insights")
	defer span.End()

	userID := chi.URLParam(r, "id")
	metric, ok := parseMetric(chi.URLParam(r, "metric"))
	if !ok {
		jsonError(w, "unknown metric", http.StatusBadRequest)
		return
	}

	days := defaultInsightDays
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxInsightDays {
			jsonError(w, "days must be between 1 and 90", http.StatusBadRequest)
			return
		}
		days = n
	}

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("metric", string(metric)),
		attribute.Int("days", days),
	)

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)

	raw, err := h.source.Samples(ctx, userID, metric, start, end)
	if err != nil {
		if errors.Is(err, sources.ErrNotFound) {
			jsonError(w, "user not found", http.StatusNotFound)
			return
		}
		h.logger.Error("sample load failed",
			zap.String("user_id", userID),
			zap.String("metric", string(metric)),
			zap.String("request_id", middleware.GetRequestID(ctx)),
			zap.Error(err))
		h.metrics.SummariesFailed.Inc()
		jsonError(w, "failed to load samples", http.StatusInternalServerError)
		return
	}

	began := time.Now()
	cfg := biometrics.DefaultAnalysisConfig(metric)
	cfg.Windows.Window = time.Duration(days) * 24 * time.Hour
	summary := biometrics.Analyze(metric, raw, cfg)

	h.metrics.SummariesBuilt.Inc()
	h.metrics.AnalysisDuration.WithLabelValues("biometric_insights").Observe(time.Since(began).Seconds())

	resp := InsightsResponse{
		UserID:  userID,
		Days:    days,
		Summary: summary,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func parseMetric(s string) (biometrics.MetricKind, bool) {
	switch biometrics.MetricKind(s) {
	case biometrics.MetricHeartRate, biometrics.MetricHRV, biometrics.MetricGlucose:
		return biometrics.MetricKind(s), true
	}
	return "", false
}
