package biometrics

import "time"

// Summary bundles the trend and, for glucose, the pattern analysis of one
// metric feed. It is the biometric counterpart of emr.PatientSummary.
type Summary struct {
	Metric      MetricKind     `json:"metric"`
	Trend       TrendResult    `json:"trend"`
	Pattern     *PatternResult `json:"pattern,omitempty"`
	GeneratedAt time.Time      `json:"generatedAt"`
}

// AnalysisConfig bundles the per-call configuration for a full analysis pass.
type AnalysisConfig struct {
	Normalize  NormalizeConfig
	Windows    WindowConfig
	Thresholds Thresholds
}

// DefaultAnalysisConfig returns the standard configuration for a metric.
func DefaultAnalysisConfig(metric MetricKind) AnalysisConfig {
	cfg := AnalysisConfig{
		Normalize: DefaultNormalizeConfig(metric),
		Windows:   DefaultWindowConfig(metric),
	}
	if metric == MetricGlucose {
		cfg.Thresholds = DefaultGlucoseThresholds()
	}
	return cfg
}

// Analyze normalizes a raw sample feed and runs the analyzers appropriate to
// the metric: trend for every metric, patterns for glucose only.
func Analyze(metric MetricKind, raw []Sample, cfg AnalysisConfig) *Summary {
	series := Normalize(metric, raw, cfg.Normalize)

	summary := &Summary{
		Metric:      metric,
		Trend:       AnalyzeTrend(series, cfg.Windows),
		GeneratedAt: time.Now().UTC(),
	}
	if metric == MetricGlucose {
		pattern := AnalyzePattern(series, cfg.Thresholds)
		summary.Pattern = &pattern
	}
	return summary
}
