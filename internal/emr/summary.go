package emr

import "time"

// PatientSummary is the compact, queryable output of a full extraction pass.
// Immutable once produced; a fresh one is built per call.
type PatientSummary struct {
	PatientID         string             `json:"patientId,omitempty"`
	ChronicConditions []ChronicCondition `json:"chronicConditions"`
	VitalEvents       []VitalEvent       `json:"vitalEvents"`
	Medications       []Medication       `json:"medications"`
	GeneratedAt       time.Time          `json:"generatedAt"`
}

// SummaryConfig bundles the reference data a summarization pass consumes.
// All of it is caller-supplied; the extractors hold no globals.
type SummaryConfig struct {
	ChronicCodes        CodeSet
	Rules               []ClassificationRule
	MajorProcedureCodes CodeSet
	EventLimit          int // 0 = unbounded
}

// DefaultSummaryConfig returns the reference configuration used by the
// insights service.
func DefaultSummaryConfig() SummaryConfig {
	return SummaryConfig{
		ChronicCodes: DefaultChronicCodes(),
		Rules:        DefaultClassificationRules(nil),
		EventLimit:   0,
	}
}

// Summarize runs both extractors over an index and assembles the summary.
// An empty index yields an empty summary, never an error.
func Summarize(idx *ResourceIndex, cfg SummaryConfig) *PatientSummary {
	rules := cfg.Rules
	if rules == nil {
		rules = DefaultClassificationRules(cfg.MajorProcedureCodes)
	}
	codes := cfg.ChronicCodes
	if codes == nil {
		codes = DefaultChronicCodes()
	}

	return &PatientSummary{
		PatientID:         idx.PatientID(),
		ChronicConditions: ExtractChronicConditions(idx, codes),
		VitalEvents:       ExtractVitalEvents(idx, rules, cfg.EventLimit),
		Medications:       ExtractActiveMedications(idx),
		GeneratedAt:       time.Now().UTC(),
	}
}
