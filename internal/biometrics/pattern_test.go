package biometrics

import (
	"testing"
	"time"
)

// glucoseDay builds a 24h series with samples spaced evenly, all in range
// except where overridden.
func glucoseSeries(spacing time.Duration, values ...float64) Series {
	raw := make([]Sample, 0, len(values))
	for i, v := range values {
		raw = append(raw, at(t0, time.Duration(i)*spacing, v))
	}
	return Normalize(MetricGlucose, raw, NormalizeConfig{MaxGap: 2 * spacing})
}

func TestAnalyzePatternTimeInRange(t *testing.T) {
	// 20 samples over 24h, 4 below 70 mg/dL: 80% of sample-time in range.
	values := make([]float64, 20)
	for i := range values {
		values[i] = 110
	}
	for _, i := range []int{3, 4, 5, 6} {
		values[i] = 62
	}
	series := glucoseSeries(75*time.Minute, values...)

	th := DefaultGlucoseThresholds()
	th.ModerateTIR = 85 // crossed by this series
	got := AnalyzePattern(series, th)

	if got.TimeInRangePercent < 75 || got.TimeInRangePercent > 85 {
		t.Fatalf("time in range = %v%%, want about 80%%", got.TimeInRangePercent)
	}
	if severityRank[got.Severity] < severityRank[SeverityModerate] {
		t.Fatalf("severity = %s, want at least moderate below the TIR threshold", got.Severity)
	}
	if got.HypoEpisodes != 1 {
		t.Errorf("hypo episodes = %d, want 1 contiguous run", got.HypoEpisodes)
	}
}

func TestAnalyzePatternInsufficientData(t *testing.T) {
	got := AnalyzePattern(glucoseSeries(5*time.Minute, 100, 105, 110), DefaultGlucoseThresholds())
	if got.Severity != SeverityNone {
		t.Fatalf("severity = %s, want none below minimum sample count", got.Severity)
	}
	if len(got.Patterns) != 0 || got.TimeInRangePercent != 0 {
		t.Fatalf("short series produced numeric guesses: %+v", got)
	}
}

func TestAnalyzePatternNocturnalDip(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	var raw []Sample
	for day := 0; day < 3; day++ {
		d := base.AddDate(0, 0, day)
		// Two consecutive low readings at 02:00 and 02:10 each night.
		raw = append(raw,
			Sample{Timestamp: d.Add(2 * time.Hour), Value: 58},
			Sample{Timestamp: d.Add(2*time.Hour + 10*time.Minute), Value: 60},
			// Daytime in-range readings.
			Sample{Timestamp: d.Add(10 * time.Hour), Value: 100},
			Sample{Timestamp: d.Add(10*time.Hour + 10*time.Minute), Value: 105},
		)
	}
	series := Normalize(MetricGlucose, raw, NormalizeConfig{MaxGap: 15 * time.Minute})
	got := AnalyzePattern(series, DefaultGlucoseThresholds())

	if !hasPattern(got, PatternNocturnalDip) {
		t.Fatalf("nocturnal dip not detected: %+v", got)
	}
}

func TestAnalyzePatternPostprandialSpikeRequiresMarkers(t *testing.T) {
	meal := t0.Add(30 * time.Minute)
	raw := []Sample{
		at(t0, 0, 95),
		at(t0, 20*time.Minute, 100),
		at(t0, 50*time.Minute, 175),
		at(t0, 70*time.Minute, 120),
		at(t0, 90*time.Minute, 105),
	}
	series := Normalize(MetricGlucose, raw, NormalizeConfig{MaxGap: time.Hour})

	// No markers supplied: the detector is skipped, not guessed.
	noMarkers := AnalyzePattern(series, DefaultGlucoseThresholds())
	if hasPattern(noMarkers, PatternPostprandialSpike) {
		t.Fatal("spike reported without meal markers")
	}

	th := DefaultGlucoseThresholds()
	th.MealMarkers = []time.Time{meal}
	withMarkers := AnalyzePattern(series, th)
	if !hasPattern(withMarkers, PatternPostprandialSpike) {
		t.Fatalf("spike not detected with markers: %+v", withMarkers)
	}
}

func TestAnalyzePatternDawnPhenomenon(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	var raw []Sample
	for day := 0; day < 2; day++ {
		d := base.AddDate(0, 0, day)
		raw = append(raw,
			Sample{Timestamp: d.Add(5 * time.Hour), Value: 195},
			Sample{Timestamp: d.Add(5*time.Hour + 10*time.Minute), Value: 200},
			Sample{Timestamp: d.Add(12 * time.Hour), Value: 110},
			Sample{Timestamp: d.Add(12*time.Hour + 10*time.Minute), Value: 108},
		)
	}
	series := Normalize(MetricGlucose, raw, NormalizeConfig{MaxGap: 15 * time.Minute})
	got := AnalyzePattern(series, DefaultGlucoseThresholds())

	if !hasPattern(got, PatternDawnPhenomenon) {
		t.Fatalf("dawn phenomenon not detected: %+v", got)
	}
	if got.HyperEpisodes < 2 {
		t.Errorf("hyper episodes = %d, want at least 2", got.HyperEpisodes)
	}
}

func hasPattern(r PatternResult, name string) bool {
	for _, p := range r.Patterns {
		if p == name {
			return true
		}
	}
	return false
}
