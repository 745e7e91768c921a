package biometrics

import (
	"sort"
	"time"
)

// Severity grades a pattern analysis result.
type Severity string

const (
	SeverityNone     Severity = "none"
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// Named glucose patterns produced by the detectors.
const (
	PatternNocturnalDip      = "nocturnal_dip"
	PatternPostprandialSpike = "postprandial_spike"
	PatternDawnPhenomenon    = "dawn_phenomenon"
)

// minPatternSamples is the minimum series size before range metrics are
// computed; below it the analysis reports the terminal none state.
const minPatternSamples = 4

// Thresholds defines the clinical boundaries and detector parameters for
// pattern analysis. Callers supply it per call; nothing here is global.
type Thresholds struct {
	// Low and High bound the clinical in-range band (mg/dL for glucose).
	Low  float64
	High float64

	// OvernightStartHour and OvernightEndHour delimit the overnight window
	// (UTC hours) used by the nocturnal-dip detector.
	OvernightStartHour int
	OvernightEndHour   int

	// DawnStartHour and DawnEndHour delimit the early-morning window used by
	// the dawn-phenomenon detector.
	DawnStartHour int
	DawnEndHour   int

	// MealMarkers are meal-adjacent instants supplied by the caller. The
	// postprandial-spike detector is skipped, not guessed, when empty.
	MealMarkers []time.Time
	// SpikeDelta is the rise above the pre-meal reading that counts as a
	// spike, within SpikeWindow after a marker.
	SpikeDelta  float64
	SpikeWindow time.Duration

	// ModerateTIR and SevereTIR band severity by time-in-range percent:
	// below ModerateTIR is at least moderate, below SevereTIR severe.
	ModerateTIR float64
	SevereTIR   float64
}

// DefaultGlucoseThresholds returns the standard CGM configuration:
// 70-180 mg/dL in-range, 70% time-in-range consensus target.
func DefaultGlucoseThresholds() Thresholds {
	return Thresholds{
		Low:                70,
		High:               180,
		OvernightStartHour: 0,
		OvernightEndHour:   6,
		DawnStartHour:      4,
		DawnEndHour:        8,
		SpikeDelta:         50,
		SpikeWindow:        2 * time.Hour,
		ModerateTIR:        70,
		SevereTIR:          50,
	}
}

// PatternResult holds range-adherence metrics and named patterns for a
// normalized glucose series.
type PatternResult struct {
	TimeInRangePercent float64  `json:"timeInRangePercent"`
	Patterns           []string `json:"patterns"`
	Severity           Severity `json:"severity"`
	HypoEpisodes       int      `json:"hypoEpisodes"`
	HyperEpisodes      int      `json:"hyperEpisodes"`
	Samples            int      `json:"samples"`
}

// AnalyzePattern computes time-in-range and named patterns over a normalized
// series. Fewer than four samples yield the none terminal state.
func AnalyzePattern(series Series, th Thresholds) PatternResult {
	result := PatternResult{Severity: SeverityNone, Patterns: []string{}, Samples: series.Len()}
	if series.Len() < minPatternSamples {
		return result
	}

	result.TimeInRangePercent = timeInRange(series, th)
	result.HypoEpisodes = countEpisodes(series, func(v float64) bool { return v < th.Low })
	result.HyperEpisodes = countEpisodes(series, func(v float64) bool { return v > th.High })

	if detectNocturnalDip(series, th) {
		result.Patterns = append(result.Patterns, PatternNocturnalDip)
	}
	if detectDawnPhenomenon(series, th) {
		result.Patterns = append(result.Patterns, PatternDawnPhenomenon)
	}
	if len(th.MealMarkers) > 0 && detectPostprandialSpike(series, th) {
		result.Patterns = append(result.Patterns, PatternPostprandialSpike)
	}
	sort.Strings(result.Patterns)

	result.Severity = grade(result, th)
	return result
}

// timeInRange computes the fraction of sample-time, not sample-count, spent
// within [low, high], so uneven sampling does not bias the metric. Each
// inter-sample interval inside a segment is attributed to its earlier sample.
func timeInRange(series Series, th Thresholds) float64 {
	var total, within time.Duration
	for _, seg := range series.Segments {
		for i := seg.Start; i < seg.End-1; i++ {
			dt := series.Samples[i+1].Timestamp.Sub(series.Samples[i].Timestamp)
			total += dt
			v := series.Samples[i].Value
			if v >= th.Low && v <= th.High {
				within += dt
			}
		}
	}
	if total <= 0 {
		// Degenerate spacing: fall back to the sample-count fraction.
		n := 0
		for _, s := range series.Samples {
			if s.Value >= th.Low && s.Value <= th.High {
				n++
			}
		}
		return 100 * float64(n) / float64(len(series.Samples))
	}
	return 100 * float64(within) / float64(total)
}

// countEpisodes counts maximal contiguous runs matching the predicate.
// Segment boundaries end a run; missing data never joins two episodes.
func countEpisodes(series Series, match func(float64) bool) int {
	episodes := 0
	for _, seg := range series.Segments {
		inRun := false
		for i := seg.Start; i < seg.End; i++ {
			if match(series.Samples[i].Value) {
				if !inRun {
					episodes++
					inRun = true
				}
			} else {
				inRun = false
			}
		}
	}
	return episodes
}

// detectNocturnalDip triggers when a contiguous below-low run inside the
// overnight window recurs on at least two distinct days.
func detectNocturnalDip(series Series, th Thresholds) bool {
	days := make(map[string]bool)
	for _, seg := range series.Segments {
		for i := seg.Start; i < seg.End; i++ {
			s := series.Samples[i]
			if s.Value >= th.Low || !hourWithin(s.Timestamp, th.OvernightStartHour, th.OvernightEndHour) {
				continue
			}
			// Require a run of at least two consecutive low overnight samples.
			if i+1 < seg.End && series.Samples[i+1].Value < th.Low &&
				hourWithin(series.Samples[i+1].Timestamp, th.OvernightStartHour, th.OvernightEndHour) {
				days[s.Timestamp.Format("2006-01-02")] = true
			}
		}
	}
	return len(days) >= 2
}

// detectDawnPhenomenon triggers when above-high readings inside the
// early-morning window recur on at least two distinct days.
func detectDawnPhenomenon(series Series, th Thresholds) bool {
	if th.DawnStartHour == 0 && th.DawnEndHour == 0 {
		return false
	}
	days := make(map[string]bool)
	for _, s := range series.Samples {
		if s.Value > th.High && hourWithin(s.Timestamp, th.DawnStartHour, th.DawnEndHour) {
			days[s.Timestamp.Format("2006-01-02")] = true
		}
	}
	return len(days) >= 2
}

// detectPostprandialSpike triggers when any meal marker is followed, within
// the spike window, by a rise exceeding the configured delta over the last
// pre-meal reading.
func detectPostprandialSpike(series Series, th Thresholds) bool {
	if th.SpikeDelta <= 0 || th.SpikeWindow <= 0 {
		return false
	}
	for _, meal := range th.MealMarkers {
		baseline, ok := lastBefore(series.Samples, meal)
		if !ok {
			continue
		}
		deadline := meal.Add(th.SpikeWindow)
		for _, s := range series.Samples {
			if s.Timestamp.Before(meal) || s.Timestamp.After(deadline) {
				continue
			}
			if s.Value-baseline > th.SpikeDelta {
				return true
			}
		}
	}
	return false
}

func lastBefore(samples []Sample, t time.Time) (float64, bool) {
	for i := len(samples) - 1; i >= 0; i-- {
		if samples[i].Timestamp.Before(t) {
			return samples[i].Value, true
		}
	}
	return 0, false
}

func hourWithin(t time.Time, start, end int) bool {
	h := t.UTC().Hour()
	if start <= end {
		return h >= start && h < end
	}
	// Window wraps midnight, e.g. 22-6.
	return h >= start || h < end
}

// grade takes the worst of the time-in-range banding and the high-risk
// pattern count.
func grade(r PatternResult, th Thresholds) Severity {
	severity := SeverityNone

	switch {
	case th.SevereTIR > 0 && r.TimeInRangePercent < th.SevereTIR:
		severity = SeveritySevere
	case th.ModerateTIR > 0 && r.TimeInRangePercent < th.ModerateTIR:
		severity = SeverityModerate
	case r.HypoEpisodes > 0 || r.HyperEpisodes > 0:
		severity = SeverityMild
	}

	// Multiple high-risk patterns escalate regardless of time in range.
	switch {
	case len(r.Patterns) >= 2 && severity != SeveritySevere:
		severity = worse(severity, SeverityModerate)
	case len(r.Patterns) == 1:
		severity = worse(severity, SeverityMild)
	}
	return severity
}

var severityRank = map[Severity]int{
	SeverityNone:     0,
	SeverityMild:     1,
	SeverityModerate: 2,
	SeveritySevere:   3,
}

func worse(a, b Severity) Severity {
	if severityRank[a] >= severityRank[b] {
		return a
	}
	return b
}
