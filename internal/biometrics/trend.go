package biometrics

import (
	"fmt"
	"math"
	"time"
)

// TrendDirection is the directional classification of a series.
type TrendDirection string

const (
	TrendIncreasing       TrendDirection = "increasing"
	TrendDecreasing       TrendDirection = "decreasing"
	TrendStable           TrendDirection = "stable"
	TrendInsufficientData TrendDirection = "insufficient_data"
)

// WindowConfig parametrizes trend analysis.
type WindowConfig struct {
	// Window is the requested analysis span; segments shorter than this
	// report proportionally lower confidence.
	Window time.Duration
	// RelativeThreshold is the minimum relative change between baseline and
	// recent means before a direction is called.
	RelativeThreshold float64
	// ExpectedInterval is the nominal sampling spacing; sparser segments
	// report proportionally lower confidence.
	ExpectedInterval time.Duration
	// MinValue and MaxValue bound physiologically plausible readings;
	// samples outside are counted as anomalies, never folded into the means.
	MinValue float64
	MaxValue float64
}

// DefaultWindowConfig returns per-metric trend parameters.
func DefaultWindowConfig(metric MetricKind) WindowConfig {
	cfg := WindowConfig{
		Window:            7 * 24 * time.Hour,
		RelativeThreshold: 0.05,
		ExpectedInterval:  5 * time.Minute,
	}
	switch metric {
	case MetricHeartRate:
		cfg.MinValue, cfg.MaxValue = 30, 220
	case MetricHRV:
		cfg.MinValue, cfg.MaxValue = 5, 300
	case MetricGlucose:
		cfg.MinValue, cfg.MaxValue = 20, 600
	}
	return cfg
}

// TrendResult describes the directional trend of a normalized series.
type TrendResult struct {
	Direction TrendDirection `json:"direction"`
	// Magnitude is the recent-vs-baseline mean difference normalized by the
	// baseline mean.
	Magnitude  float64 `json:"magnitude"`
	Confidence float64 `json:"confidence"`
	Window     string  `json:"window"`
	Anomalies  int     `json:"anomalies"`
}

// AnalyzeTrend computes the directional trend over the most recent unbroken
// segment of a normalized series. Fewer than two samples in that segment
// yield the insufficient_data terminal state rather than a numeric guess.
func AnalyzeTrend(series Series, cfg WindowConfig) TrendResult {
	if cfg.RelativeThreshold <= 0 {
		cfg.RelativeThreshold = 0.05
	}

	anomalies := countAnomalies(series.Samples, cfg)

	// Out-of-bound readings are surfaced through the anomaly count and kept
	// out of the means rather than folded in silently.
	segment := inBounds(series.LastSegment(), cfg)
	if len(segment) < 2 {
		return TrendResult{
			Direction: TrendInsufficientData,
			Window:    describeWindow(segment),
			Anomalies: anomalies,
		}
	}

	// Baseline = first third, recent = last third. With very short segments
	// the thirds shrink to a single sample each, which is still a valid
	// (low-confidence) comparison.
	third := len(segment) / 3
	if third < 1 {
		third = 1
	}
	baseline := mean(segment[:third])
	recent := mean(segment[len(segment)-third:])

	result := TrendResult{
		Direction:  TrendStable,
		Window:     describeWindow(segment),
		Confidence: confidence(segment, cfg),
		Anomalies:  anomalies,
	}
	if baseline != 0 {
		result.Magnitude = (recent - baseline) / math.Abs(baseline)
	} else if recent != 0 {
		result.Magnitude = 1
	}

	switch {
	case result.Magnitude > cfg.RelativeThreshold:
		result.Direction = TrendIncreasing
	case result.Magnitude < -cfg.RelativeThreshold:
		result.Direction = TrendDecreasing
	}
	return result
}

// confidence scales with sample density relative to the expected sampling
// rate and with segment span relative to the requested window, so short or
// sparse segments never report a false full-confidence trend.
func confidence(segment []Sample, cfg WindowConfig) float64 {
	span := Span(segment)
	if span <= 0 {
		return 0
	}

	density := 1.0
	if cfg.ExpectedInterval > 0 {
		expected := float64(span/cfg.ExpectedInterval) + 1
		density = float64(len(segment)) / expected
		if density > 1 {
			density = 1
		}
	}

	coverage := 1.0
	if cfg.Window > 0 {
		coverage = float64(span) / float64(cfg.Window)
		if coverage > 1 {
			coverage = 1
		}
	}

	return density * coverage
}

func inBounds(samples []Sample, cfg WindowConfig) []Sample {
	if cfg.MinValue == 0 && cfg.MaxValue == 0 {
		return samples
	}
	out := make([]Sample, 0, len(samples))
	for _, s := range samples {
		if s.Value >= cfg.MinValue && s.Value <= cfg.MaxValue {
			out = append(out, s)
		}
	}
	return out
}

func countAnomalies(samples []Sample, cfg WindowConfig) int {
	if cfg.MinValue == 0 && cfg.MaxValue == 0 {
		return 0
	}
	n := 0
	for _, s := range samples {
		if s.Value < cfg.MinValue || s.Value > cfg.MaxValue {
			n++
		}
	}
	return n
}

func describeWindow(segment []Sample) string {
	if len(segment) == 0 {
		return "empty"
	}
	return fmt.Sprintf("%s to %s (%d samples)",
		segment[0].Timestamp.Format(time.RFC3339),
		segment[len(segment)-1].Timestamp.Format(time.RFC3339),
		len(segment))
}
