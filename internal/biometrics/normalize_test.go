package biometrics

import (
	"math"
	"testing"
	"time"
)

func at(t time.Time, offset time.Duration, v float64) Sample {
	return Sample{Timestamp: t.Add(offset), Value: v}
}

var t0 = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

func TestNormalizeAveragesDuplicateTimestamps(t *testing.T) {
	raw := []Sample{
		at(t0, 0, 60),
		at(t0, 0, 64),
		at(t0, time.Minute, 70),
	}
	series := Normalize(MetricHeartRate, raw, NormalizeConfig{})

	if series.Len() != 2 {
		t.Fatalf("samples = %d, want 2", series.Len())
	}
	if got := series.Samples[0].Value; got != 62 {
		t.Fatalf("duplicate timestamp value = %v, want 62 (average)", got)
	}
}

func TestNormalizeSortsAndDropsNonFinite(t *testing.T) {
	raw := []Sample{
		at(t0, 10*time.Minute, 80),
		at(t0, 0, math.NaN()),
		at(t0, 5*time.Minute, math.Inf(1)),
		at(t0, 2*time.Minute, 72),
	}
	series := Normalize(MetricHeartRate, raw, NormalizeConfig{})

	if series.Len() != 2 {
		t.Fatalf("samples = %d, want 2 after dropping non-finite", series.Len())
	}
	for i := 1; i < series.Len(); i++ {
		if !series.Samples[i-1].Timestamp.Before(series.Samples[i].Timestamp) {
			t.Fatal("timestamps not strictly increasing")
		}
	}
}

func TestNormalizeConvertsToUTC(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	raw := []Sample{{Timestamp: time.Date(2024, 6, 1, 8, 0, 0, 0, est), Value: 70}}
	series := Normalize(MetricHeartRate, raw, NormalizeConfig{})

	got := series.Samples[0].Timestamp
	if got.Location() != time.UTC || got.Hour() != 13 {
		t.Fatalf("timestamp = %v, want 13:00 UTC", got)
	}
}

func TestNormalizeSegmentsOnLargeGaps(t *testing.T) {
	raw := []Sample{
		at(t0, 0, 70),
		at(t0, 5*time.Minute, 71),
		// 2h hole: trend must not bridge across it.
		at(t0, 2*time.Hour, 90),
		at(t0, 2*time.Hour+5*time.Minute, 91),
	}
	series := Normalize(MetricHeartRate, raw, NormalizeConfig{MaxGap: 30 * time.Minute})

	if len(series.Segments) != 2 {
		t.Fatalf("segments = %d, want 2", len(series.Segments))
	}
	last := series.LastSegment()
	if len(last) != 2 || last[0].Value != 90 {
		t.Fatalf("last segment = %+v, want the post-gap pair", last)
	}
}

func TestNormalizeEmptyInput(t *testing.T) {
	series := Normalize(MetricGlucose, nil, NormalizeConfig{})
	if series.Len() != 0 || len(series.Segments) != 0 {
		t.Fatalf("empty input produced %+v", series)
	}
	if series.LastSegment() != nil {
		t.Fatal("empty series has a last segment")
	}
}
