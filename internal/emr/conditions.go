package emr

import (
	"sort"
	"time"

	"github.com/ako1983/public-ai-engineering-interview/internal/fhir/r4"
)

// CodeSet is a reference set of clinically-chronic condition codes. It is
// configuration supplied by the caller, never baked into extraction logic,
// so tests can substitute their own sets.
type CodeSet map[string]struct{}

// NewCodeSet builds a code set from its members.
func NewCodeSet(codes ...string) CodeSet {
	s := make(CodeSet, len(codes))
	for _, c := range codes {
		s[c] = struct{}{}
	}
	return s
}

// Contains reports membership.
func (s CodeSet) Contains(code string) bool {
	_, ok := s[code]
	return ok
}

// DefaultChronicCodes returns the SNOMED codes treated as chronic in Synthea
// exports: diabetes, hypertension, heart disease, COPD, asthma, CKD, and
// related long-term conditions.
func DefaultChronicCodes() CodeSet {
	return NewCodeSet(
		"44054006",  // Diabetes mellitus type 2
		"46635009",  // Diabetes mellitus type 1
		"15777000",  // Prediabetes
		"38341003",  // Essential hypertension
		"53741008",  // Coronary heart disease
		"84114007",  // Heart failure
		"49436004",  // Atrial fibrillation
		"13645005",  // Chronic obstructive pulmonary disease
		"195967001", // Asthma
		"431855005", // Chronic kidney disease stage 1
		"431856006", // Chronic kidney disease stage 2
		"433144002", // Chronic kidney disease stage 3
		"431857002", // Chronic kidney disease stage 4
		"55822004",  // Hyperlipidemia
		"414545008", // Ischemic heart disease
		"271737000", // Anemia
		"69896004",  // Rheumatoid arthritis
		"35489007",  // Depressive disorder
	)
}

// ChronicCondition is a derived fact about an active, clinically-chronic
// condition. It is produced fresh per extraction call and never stored back
// on the resource.
type ChronicCondition struct {
	Code    string     `json:"code"`
	Display string     `json:"display"`
	Onset   *time.Time `json:"onset,omitempty"`
	Status  string     `json:"status"`
}

// ExtractChronicConditions derives the active chronic-condition list.
//
// A condition with an empty coding sequence is unclassifiable and skipped.
// Clinical status defaults to "unknown" when absent, and unknown is never
// treated as active. Duplicate codes keep the entry with the earliest
// parseable onset; when neither onset parses, the first encountered wins.
// Output is ordered by onset ascending, onset-less entries after dated ones,
// stable by original bundle order among ties.
func ExtractChronicConditions(idx *ResourceIndex, referenceCodes CodeSet) []ChronicCondition {
	type candidate struct {
		cond  ChronicCondition
		order int
	}
	best := make(map[string]candidate)
	var codes []string // preserves first-encounter order for stability

	for i, cond := range idx.Conditions() {
		code := cond.Code.FirstCode()
		if code == "" {
			continue
		}
		if cond.StatusCode() != r4.ClinicalStatusActive {
			continue
		}
		if !referenceCodes.Contains(code) {
			continue
		}

		display := cond.Code.DisplayText()
		entry := candidate{
			cond:  ChronicCondition{Code: code, Display: display, Status: r4.ClinicalStatusActive},
			order: i,
		}
		if onset, ok := cond.OnsetInstant(); ok {
			entry.cond.Onset = &onset
		}

		prev, seen := best[code]
		if !seen {
			best[code] = entry
			codes = append(codes, code)
			continue
		}
		// Earliest resolvable onset wins on duplicate code.
		if entry.cond.Onset != nil && (prev.cond.Onset == nil || entry.cond.Onset.Before(*prev.cond.Onset)) {
			entry.order = prev.order // keep original position for stable ordering
			best[code] = entry
		}
	}

	out := make([]ChronicCondition, 0, len(best))
	orders := make(map[string]int, len(best))
	for _, code := range codes {
		c := best[code]
		orders[code] = c.order
		out = append(out, c.cond)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.Onset != nil && b.Onset != nil:
			if a.Onset.Equal(*b.Onset) {
				return orders[a.Code] < orders[b.Code]
			}
			return a.Onset.Before(*b.Onset)
		case a.Onset != nil:
			return true
		case b.Onset != nil:
			return false
		default:
			return orders[a.Code] < orders[b.Code]
		}
	})
	return out
}
