package emr

import (
	"time"

	"github.com/ako1983/public-ai-engineering-interview/internal/fhir/r4"
)

// Medication is a derived fact about a currently prescribed medication.
type Medication struct {
	Code       string     `json:"code,omitempty"`
	Display    string     `json:"display"`
	Status     string     `json:"status"`
	Prescribed *time.Time `json:"prescribed,omitempty"`
}

// ExtractActiveMedications lists medications whose request status is active,
// in original bundle order. Requests without a display still resolve to the
// bare code; requests with neither are unclassifiable and skipped.
func ExtractActiveMedications(idx *ResourceIndex) []Medication {
	var out []Medication
	for _, res := range idx.ByKind(r4.KindMedicationRequest) {
		req := res.MedicationRequest
		if req.Status != "active" {
			continue
		}
		display := req.MedicationDisplay()
		code := req.MedicationCode()
		if display == "" {
			display = code
		}
		if display == "" {
			continue
		}
		med := Medication{Code: code, Display: display, Status: req.Status}
		if authored, ok := req.AuthoredInstant(); ok {
			med.Prescribed = &authored
		}
		out = append(out, med)
	}
	return out
}
