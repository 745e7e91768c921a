// Package r4 provides FHIR R4 data structures for the health insights engine.
// Synthea exports R4 bundles, so the shapes here follow R4 rather than R5.
package r4

// Meta contains metadata about a resource.
type Meta struct {
	VersionID   string   `json:"versionId,omitempty"`
	LastUpdated string   `json:"lastUpdated,omitempty"`
	Source      string   `json:"source,omitempty"`
	Profile     []string `json:"profile,omitempty"`
}

// Coding represents a code from a terminology system.
type Coding struct {
	System  string `json:"system,omitempty"`
	Version string `json:"version,omitempty"`
	Code    string `json:"code,omitempty"`
	Display string `json:"display,omitempty"`
}

// CodeableConcept represents a concept with text and codings.
// The first coding is treated as canonical when several are present.
type CodeableConcept struct {
	Coding []Coding `json:"coding,omitempty"`
	Text   string   `json:"text,omitempty"`
}

// FirstCoding returns the canonical coding, or nil when none exist.
func (c *CodeableConcept) FirstCoding() *Coding {
	if c == nil || len(c.Coding) == 0 {
		return nil
	}
	return &c.Coding[0]
}

// FirstCode returns the canonical code string, or "" when uncoded.
func (c *CodeableConcept) FirstCode() string {
	if coding := c.FirstCoding(); coding != nil {
		return coding.Code
	}
	return ""
}

// DisplayText resolves a human-readable label: resource text first, then the
// canonical coding's display, then the bare code. Never empty for a coded
// concept.
func (c *CodeableConcept) DisplayText() string {
	if c == nil {
		return ""
	}
	if c.Text != "" {
		return c.Text
	}
	if coding := c.FirstCoding(); coding != nil {
		if coding.Display != "" {
			return coding.Display
		}
		return coding.Code
	}
	return ""
}

// Identifier represents a FHIR Identifier.
type Identifier struct {
	Use    string           `json:"use,omitempty"` // usual | official | temp | secondary | old
	Type   *CodeableConcept `json:"type,omitempty"`
	System string           `json:"system,omitempty"`
	Value  string           `json:"value,omitempty"`
}

// Reference represents a reference to another resource by opaque identifier.
type Reference struct {
	Reference string `json:"reference,omitempty"`
	Type      string `json:"type,omitempty"`
	Display   string `json:"display,omitempty"`
}

// TargetID returns the bare identifier from a reference string such as
// "Patient/123" or "urn:uuid:123".
func (r *Reference) TargetID() string {
	if r == nil {
		return ""
	}
	ref := r.Reference
	for i := len(ref) - 1; i >= 0; i-- {
		if ref[i] == '/' || ref[i] == ':' {
			return ref[i+1:]
		}
	}
	return ref
}

// Period represents a time period. Start and End stay strings because source
// documents mix date-only, offset, and Zulu notations; ParseInstant normalizes.
type Period struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// Quantity represents a measured amount.
type Quantity struct {
	Value  float64 `json:"value,omitempty"`
	Unit   string  `json:"unit,omitempty"`
	System string  `json:"system,omitempty"`
	Code   string  `json:"code,omitempty"`
}

// HumanName represents a human name.
type HumanName struct {
	Use    string   `json:"use,omitempty"` // usual | official | temp | nickname | anonymous | old | maiden
	Text   string   `json:"text,omitempty"`
	Family string   `json:"family,omitempty"`
	Given  []string `json:"given,omitempty"`
	Prefix []string `json:"prefix,omitempty"`
	Suffix []string `json:"suffix,omitempty"`
}

// Common code systems
const (
	SystemSNOMED         = "http://snomed.info/sct"
	SystemLOINC          = "http://loinc.org"
	SystemRxNorm         = "http://www.nlm.nih.gov/research/umls/rxnorm"
	SystemCondClinical   = "http://terminology.hl7.org/CodeSystem/condition-clinical"
	SystemActEncounter   = "http://terminology.hl7.org/CodeSystem/v3-ActCode"
	SystemEncounterClass = SystemActEncounter
)

// Condition clinical status codes
const (
	ClinicalStatusActive     = "active"
	ClinicalStatusRecurrence = "recurrence"
	ClinicalStatusRelapse    = "relapse"
	ClinicalStatusInactive   = "inactive"
	ClinicalStatusRemission  = "remission"
	ClinicalStatusResolved   = "resolved"
	ClinicalStatusUnknown    = "unknown"
)

// Encounter class codes (v3-ActCode)
const (
	EncounterClassAmbulatory = "AMB"
	EncounterClassEmergency  = "EMER"
	EncounterClassInpatient  = "IMP"
	EncounterClassUrgentCare = "UC"
	EncounterClassWellness   = "WELLNESS"
)
