// Package biometrics analyzes wearable time series: normalization, trend
// detection over heart-rate/HRV feeds, and pattern detection over glucose
// feeds. All functions are pure computations over in-memory samples plus
// explicit configuration.
package biometrics

import "time"

// MetricKind identifies the biometric signal a series carries.
type MetricKind string

const (
	MetricHeartRate MetricKind = "heart_rate"
	MetricHRV       MetricKind = "hrv"
	MetricGlucose   MetricKind = "glucose"
)

// Sample is one biometric measurement. Timestamps are UTC instants.
type Sample struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// Segment is a half-open index range [Start, End) into a normalized series
// whose adjacent samples sit within the configured gap tolerance.
type Segment struct {
	Start int
	End   int
}

// Series is a normalized biometric sequence: strictly ascending UTC
// timestamps, duplicates averaged away, and large sampling gaps recorded as
// segment boundaries so analysis never bridges missing data.
type Series struct {
	Metric   MetricKind
	Samples  []Sample
	Segments []Segment
}

// Len returns the number of samples.
func (s *Series) Len() int {
	return len(s.Samples)
}

// LastSegment returns the most recent unbroken segment, which trend analysis
// operates on. An empty series has no segments.
func (s *Series) LastSegment() []Sample {
	if len(s.Segments) == 0 {
		return nil
	}
	seg := s.Segments[len(s.Segments)-1]
	return s.Samples[seg.Start:seg.End]
}

// Span returns the duration covered by a sample window.
func Span(samples []Sample) time.Duration {
	if len(samples) < 2 {
		return 0
	}
	return samples[len(samples)-1].Timestamp.Sub(samples[0].Timestamp)
}

func mean(samples []Sample) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range samples {
		sum += s.Value
	}
	return sum / float64(len(samples))
}
