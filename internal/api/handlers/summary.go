// Package handlers provides HTTP handlers for the insights API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/ako1983/public-ai-engineering-interview/internal/api/middleware"
	"github.com/ako1983/public-ai-engineering-interview/internal/emr"
	"github.com/ako1983/public-ai-engineering-interview/internal/fhir/r4"
	"github.com/ako1983/public-ai-engineering-interview/internal/observability/metrics"
	"github.com/ako1983/public-ai-engineering-interview/internal/sources"
)

// SummaryHandler handles patient summary endpoints
type SummaryHandler struct {
	source  sources.BundleSource
	config  emr.SummaryConfig
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewSummaryHandler creates a new handler
func NewSummaryHandler(source sources.BundleSource, cfg emr.SummaryConfig, m *metrics.Metrics, logger *zap.Logger) *SummaryHandler {
	return &SummaryHandler{
		source:  source,
		config:  cfg,
		metrics: m,
		logger:  logger,
	}
}

// Routes returns the handler routes
func (h *SummaryHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{id}/summary", h.GetSummary)
	return r
}

// SummaryResponse is the response body for a patient summary
type SummaryResponse struct {
	*emr.PatientSummary
	SkippedEntries int `json:"skippedEntries"`
}

// GetSummary handles GET /patients/{id}/summary
func (h *SummaryHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tracer := otel.Tracer("summary-handler")
	ctx, span := tracer.Start(ctx, "build_patient_summary")
	defer span.End()

	patientID := chi.URLParam(r, "id")
	span.SetAttributes(attribute.String("patient_id", patientID))

	raw, err := h.source.Bundle(ctx, patientID)
	if err != nil {
		if errors.Is(err, sources.ErrNotFound) {
			jsonError(w, "patient not found", http.StatusNotFound)
			return
		}
		h.logger.Error("bundle load failed",
			zap.String("patient_id", patientID),
			zap.String("request_id", middleware.GetRequestID(ctx)),
			zap.Error(err))
		h.metrics.SummariesFailed.Inc()
		jsonError(w, "failed to load patient record", http.StatusInternalServerError)
		return
	}

	start := time.Now()
	bundle, err := r4.ParseBundle(raw)
	if err != nil {
		var malformed *r4.MalformedInputError
		if errors.As(err, &malformed) {
			jsonError(w, malformed.Error(), http.StatusUnprocessableEntity)
			return
		}
		h.metrics.SummariesFailed.Inc()
		jsonError(w, "failed to parse bundle", http.StatusInternalServerError)
		return
	}

	idx := emr.BuildIndex(bundle)
	summary := emr.Summarize(idx, h.config)

	h.metrics.BundlesIndexed.Inc()
	h.metrics.EntriesSkipped.Add(float64(idx.Skipped()))
	h.metrics.SummariesBuilt.Inc()
	h.metrics.AnalysisDuration.WithLabelValues("patient_summary").Observe(time.Since(start).Seconds())

	if idx.Skipped() > 0 {
		h.logger.Warn("bundle entries skipped",
			zap.String("patient_id", patientID),
			zap.Int("skipped", idx.Skipped()))
	}

	if summary.PatientID == "" {
		summary.PatientID = patientID
	}
	resp := SummaryResponse{PatientSummary: summary, SkippedEntries: idx.Skipped()}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func jsonError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
