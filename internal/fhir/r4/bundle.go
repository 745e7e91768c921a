package r4

import (
	"encoding/json"
	"fmt"
)

// Resource kinds the engine understands. Entries of any other kind are kept
// raw and skipped by the index.
const (
	KindPatient           = "Patient"
	KindCondition         = "Condition"
	KindEncounter         = "Encounter"
	KindProcedure         = "Procedure"
	KindMedicationRequest = "MedicationRequest"
)

// Bundle represents a FHIR R4 Bundle in as-received entry order.
type Bundle struct {
	ResourceType string        `json:"resourceType"`
	ID           string        `json:"id,omitempty"`
	Type         string        `json:"type,omitempty"` // document | collection | transaction | ...
	Entry        []BundleEntry `json:"entry,omitempty"`
}

// BundleEntry holds one raw resource body plus its fullUrl.
type BundleEntry struct {
	FullURL  string          `json:"fullUrl,omitempty"`
	Resource json.RawMessage `json:"resource,omitempty"`
}

// Resource is the decoded polymorphic variant over the supported kinds.
// Exactly one of the pointer fields is non-nil for a recognized kind.
type Resource struct {
	Kind    string
	ID      string
	FullURL string

	Patient           *Patient
	Condition         *Condition
	Encounter         *Encounter
	Procedure         *Procedure
	MedicationRequest *MedicationRequest
}

// MalformedInputError reports structurally invalid input: a document that is
// not a bundle at all, or a resource body that cannot be decoded. Absent or
// partial optional fields never produce this error.
type MalformedInputError struct {
	Field   string
	Message string
	Cause   error
}

func (e *MalformedInputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed input: %s: %s (%s)", e.Field, e.Message, e.Cause.Error())
	}
	return fmt.Sprintf("malformed input: %s: %s", e.Field, e.Message)
}

func (e *MalformedInputError) Unwrap() error {
	return e.Cause
}

// ParseBundle decodes a raw clinical record bundle. An empty entry list is a
// valid bundle; only a document that is not a JSON object shaped like a
// bundle is rejected.
func ParseBundle(data []byte) (*Bundle, error) {
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, &MalformedInputError{Field: "Bundle", Message: "document is not a bundle object", Cause: err}
	}
	if b.ResourceType != "" && b.ResourceType != "Bundle" {
		return nil, &MalformedInputError{Field: "Bundle.resourceType", Message: fmt.Sprintf("expected Bundle, got %q", b.ResourceType)}
	}
	return &b, nil
}

// resourceProbe peeks at the discriminator fields of a raw resource body.
type resourceProbe struct {
	ResourceType string `json:"resourceType"`
	ID           string `json:"id"`
}

// DecodeResource decodes one bundle entry into its typed variant. Entries
// with no resource body or an unrecognized kind return (nil, nil): they are
// skipped, not errors. A body that claims a supported kind but does not
// decode is malformed.
func (e *BundleEntry) DecodeResource() (*Resource, error) {
	if len(e.Resource) == 0 {
		return nil, nil
	}

	var probe resourceProbe
	if err := json.Unmarshal(e.Resource, &probe); err != nil {
		return nil, &MalformedInputError{Field: "Bundle.entry.resource", Message: "resource body is not an object", Cause: err}
	}

	res := &Resource{Kind: probe.ResourceType, ID: probe.ID, FullURL: e.FullURL}
	var target any
	switch probe.ResourceType {
	case KindPatient:
		res.Patient = &Patient{}
		target = res.Patient
	case KindCondition:
		res.Condition = &Condition{}
		target = res.Condition
	case KindEncounter:
		res.Encounter = &Encounter{}
		target = res.Encounter
	case KindProcedure:
		res.Procedure = &Procedure{}
		target = res.Procedure
	case KindMedicationRequest:
		res.MedicationRequest = &MedicationRequest{}
		target = res.MedicationRequest
	default:
		return nil, nil
	}

	if err := json.Unmarshal(e.Resource, target); err != nil {
		return nil, &MalformedInputError{
			Field:   "Bundle.entry.resource",
			Message: fmt.Sprintf("cannot decode %s body", probe.ResourceType),
			Cause:   err,
		}
	}
	return res, nil
}
