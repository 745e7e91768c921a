package biometrics

import (
	"math"
	"sort"
	"time"
)

// NormalizeConfig controls series normalization.
type NormalizeConfig struct {
	// MaxGap is the largest tolerated spacing between adjacent samples.
	// Anything wider breaks the series into independent segments.
	MaxGap time.Duration
}

// DefaultNormalizeConfig returns per-metric gap tolerances: CGM feeds sample
// every few minutes, wearable heart data more loosely.
func DefaultNormalizeConfig(metric MetricKind) NormalizeConfig {
	switch metric {
	case MetricGlucose:
		return NormalizeConfig{MaxGap: 15 * time.Minute}
	default:
		return NormalizeConfig{MaxGap: 30 * time.Minute}
	}
}

// Normalize converts a raw, possibly unordered and noisy sample sequence into
// a canonical series. Non-finite values are dropped, timestamps are forced to
// UTC and sorted ascending, and duplicate timestamps are averaged rather than
// last-write-wins to avoid instrument-jitter bias.
func Normalize(metric MetricKind, raw []Sample, cfg NormalizeConfig) Series {
	if cfg.MaxGap <= 0 {
		cfg = DefaultNormalizeConfig(metric)
	}

	clean := make([]Sample, 0, len(raw))
	for _, s := range raw {
		if math.IsNaN(s.Value) || math.IsInf(s.Value, 0) {
			continue
		}
		clean = append(clean, Sample{Timestamp: s.Timestamp.UTC(), Value: s.Value})
	}
	sort.SliceStable(clean, func(i, j int) bool {
		return clean[i].Timestamp.Before(clean[j].Timestamp)
	})

	// Collapse duplicate timestamps by averaging.
	samples := make([]Sample, 0, len(clean))
	for i := 0; i < len(clean); {
		j := i + 1
		sum := clean[i].Value
		for j < len(clean) && clean[j].Timestamp.Equal(clean[i].Timestamp) {
			sum += clean[j].Value
			j++
		}
		samples = append(samples, Sample{
			Timestamp: clean[i].Timestamp,
			Value:     sum / float64(j-i),
		})
		i = j
	}

	series := Series{Metric: metric, Samples: samples}
	if len(samples) == 0 {
		return series
	}

	start := 0
	for i := 1; i < len(samples); i++ {
		if samples[i].Timestamp.Sub(samples[i-1].Timestamp) > cfg.MaxGap {
			series.Segments = append(series.Segments, Segment{Start: start, End: i})
			start = i
		}
	}
	series.Segments = append(series.Segments, Segment{Start: start, End: len(samples)})
	return series
}
