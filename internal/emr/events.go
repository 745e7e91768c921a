package emr

import (
	"fmt"
	"sort"
	"time"

	"github.com/ako1983/public-ai-engineering-interview/internal/fhir/r4"
)

// Event kinds produced by the default classification rules.
const (
	EventEmergencyVisit  = "emergency_visit"
	EventHospitalization = "hospitalization"
	EventProcedure       = "procedure"
	EventMedicationStart = "medication_start"
)

// VitalEvent is a dated, significant clinical event derived from a bundle.
type VitalEvent struct {
	Kind        string    `json:"kind"`
	Occurred    time.Time `json:"occurred"`
	Description string    `json:"description"`
	SourceID    string    `json:"sourceId,omitempty"`
}

// ClassificationRule maps a resource kind plus an attribute predicate to an
// event kind and description. The rule table is the single point of truth for
// what counts as significant; extraction embeds no heuristics of its own.
type ClassificationRule struct {
	Kind      string
	Match     func(res *r4.Resource) bool
	EventKind string
	Describe  func(res *r4.Resource) string
}

// DefaultClassificationRules classifies emergency and urgent-care visits,
// inpatient admissions, major procedures, and medication starts.
// MajorProcedureCodes bounds which procedures are significant; an empty set
// admits every completed procedure.
func DefaultClassificationRules(majorProcedureCodes CodeSet) []ClassificationRule {
	return []ClassificationRule{
		{
			Kind: r4.KindEncounter,
			Match: func(res *r4.Resource) bool {
				class := res.Encounter.ClassCode()
				return class == r4.EncounterClassEmergency || class == r4.EncounterClassUrgentCare
			},
			EventKind: EventEmergencyVisit,
			Describe: func(res *r4.Resource) string {
				if d := res.Encounter.TypeDisplay(); d != "" {
					return fmt.Sprintf("Emergency visit: %s", d)
				}
				return "Emergency visit"
			},
		},
		{
			Kind: r4.KindEncounter,
			Match: func(res *r4.Resource) bool {
				return res.Encounter.ClassCode() == r4.EncounterClassInpatient
			},
			EventKind: EventHospitalization,
			Describe: func(res *r4.Resource) string {
				if d := res.Encounter.TypeDisplay(); d != "" {
					return fmt.Sprintf("Hospitalization: %s", d)
				}
				return "Hospitalization"
			},
		},
		{
			Kind: r4.KindProcedure,
			Match: func(res *r4.Resource) bool {
				if res.Procedure.Status != "" && res.Procedure.Status != "completed" {
					return false
				}
				if len(majorProcedureCodes) == 0 {
					return true
				}
				return majorProcedureCodes.Contains(res.Procedure.Code.FirstCode())
			},
			EventKind: EventProcedure,
			Describe: func(res *r4.Resource) string {
				if d := res.Procedure.Code.DisplayText(); d != "" {
					return fmt.Sprintf("Procedure: %s", d)
				}
				return "Procedure"
			},
		},
		{
			Kind: r4.KindMedicationRequest,
			Match: func(res *r4.Resource) bool {
				return res.MedicationRequest.Status == "active"
			},
			EventKind: EventMedicationStart,
			Describe: func(res *r4.Resource) string {
				if d := res.MedicationRequest.MedicationDisplay(); d != "" {
					return fmt.Sprintf("Started %s", d)
				}
				return "Started medication"
			},
		},
	}
}

// resolveInstant finds the best-available timestamp for a resource, trying in
// order: start of period, performed-period start, performed instant, authored
// on. Resources with none of these cannot be placed in time.
func resolveInstant(res *r4.Resource) (time.Time, bool) {
	switch res.Kind {
	case r4.KindEncounter:
		return res.Encounter.Period.StartInstant()
	case r4.KindProcedure:
		if t, ok := res.Procedure.PerformedPeriod.StartInstant(); ok {
			return t, ok
		}
		return r4.ParseInstant(res.Procedure.PerformedDateTime)
	case r4.KindMedicationRequest:
		return res.MedicationRequest.AuthoredInstant()
	}
	return time.Time{}, false
}

// ExtractVitalEvents derives the chronologically ordered list of significant
// events, optionally bounded to the most recent limit entries (0 means
// unbounded). Undateable resources are excluded: an event that cannot be
// placed in time cannot be reported as a dated event.
func ExtractVitalEvents(idx *ResourceIndex, rules []ClassificationRule, limit int) []VitalEvent {
	type dated struct {
		event VitalEvent
		order int
	}
	var events []dated
	order := 0

	// Scan resources in kind-then-bundle order; the first matching rule for a
	// resource wins, so a resource yields at most one event.
	for _, kind := range []string{r4.KindEncounter, r4.KindProcedure, r4.KindMedicationRequest} {
		for _, res := range idx.ByKind(kind) {
			order++
			for _, rule := range rules {
				if rule.Kind != kind || !rule.Match(res) {
					continue
				}
				occurred, ok := resolveInstant(res)
				if !ok {
					break
				}
				events = append(events, dated{
					event: VitalEvent{
						Kind:        rule.EventKind,
						Occurred:    occurred,
						Description: rule.Describe(res),
						SourceID:    res.ID,
					},
					order: order,
				})
				break
			}
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].event.Occurred.Equal(events[j].event.Occurred) {
			return events[i].order < events[j].order
		}
		return events[i].event.Occurred.Before(events[j].event.Occurred)
	})

	out := make([]VitalEvent, 0, len(events))
	for _, d := range events {
		out = append(out, d.event)
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:] // keep the most recent entries
	}
	return out
}
