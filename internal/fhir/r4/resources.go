package r4

import "time"

// Patient represents a FHIR R4 Patient resource. Only the fields the insights
// engine reads are modelled; everything is optional.
type Patient struct {
	ResourceType string       `json:"resourceType"`
	ID           string       `json:"id,omitempty"`
	Meta         *Meta        `json:"meta,omitempty"`
	Identifier   []Identifier `json:"identifier,omitempty"`
	Name         []HumanName  `json:"name,omitempty"`
	Gender       string       `json:"gender,omitempty"` // male | female | other | unknown
	BirthDate    string       `json:"birthDate,omitempty"`
}

// Condition represents a FHIR R4 Condition resource.
type Condition struct {
	ResourceType       string            `json:"resourceType"`
	ID                 string            `json:"id,omitempty"`
	Meta               *Meta             `json:"meta,omitempty"`
	ClinicalStatus     *CodeableConcept  `json:"clinicalStatus,omitempty"`
	VerificationStatus *CodeableConcept  `json:"verificationStatus,omitempty"`
	Category           []CodeableConcept `json:"category,omitempty"`
	Code               *CodeableConcept  `json:"code,omitempty"`
	Subject            *Reference        `json:"subject,omitempty"`
	Encounter          *Reference        `json:"encounter,omitempty"`
	OnsetDateTime      string            `json:"onsetDateTime,omitempty"`
	AbatementDateTime  string            `json:"abatementDateTime,omitempty"`
	RecordedDate       string            `json:"recordedDate,omitempty"`
}

// StatusCode returns the clinical status code, defaulting to "unknown" when
// the status coding is absent. Absence never means active.
func (c *Condition) StatusCode() string {
	if code := c.ClinicalStatus.FirstCode(); code != "" {
		return code
	}
	return ClinicalStatusUnknown
}

// OnsetInstant returns the normalized onset instant, when parseable.
func (c *Condition) OnsetInstant() (time.Time, bool) {
	return ParseInstant(c.OnsetDateTime)
}

// Encounter represents a FHIR R4 Encounter resource. Class is a bare Coding
// in R4, unlike most coded attributes.
type Encounter struct {
	ResourceType    string            `json:"resourceType"`
	ID              string            `json:"id,omitempty"`
	Meta            *Meta             `json:"meta,omitempty"`
	Status          string            `json:"status,omitempty"` // planned | arrived | in-progress | finished | cancelled
	Class           *Coding           `json:"class,omitempty"`
	Type            []CodeableConcept `json:"type,omitempty"`
	Subject         *Reference        `json:"subject,omitempty"`
	Period          *Period           `json:"period,omitempty"`
	ReasonCode      []CodeableConcept `json:"reasonCode,omitempty"`
	ServiceProvider *Reference        `json:"serviceProvider,omitempty"`
}

// ClassCode returns the encounter class code (AMB, EMER, IMP, ...), or "".
func (e *Encounter) ClassCode() string {
	if e.Class == nil {
		return ""
	}
	return e.Class.Code
}

// TypeDisplay returns a label for the encounter type, falling back through
// reason codes so emergency visits without a type still describe themselves.
func (e *Encounter) TypeDisplay() string {
	if len(e.Type) > 0 {
		if d := e.Type[0].DisplayText(); d != "" {
			return d
		}
	}
	if len(e.ReasonCode) > 0 {
		if d := e.ReasonCode[0].DisplayText(); d != "" {
			return d
		}
	}
	return ""
}

// Procedure represents a FHIR R4 Procedure resource.
type Procedure struct {
	ResourceType      string            `json:"resourceType"`
	ID                string            `json:"id,omitempty"`
	Meta              *Meta             `json:"meta,omitempty"`
	Status            string            `json:"status,omitempty"` // preparation | in-progress | completed | ...
	Code              *CodeableConcept  `json:"code,omitempty"`
	Subject           *Reference        `json:"subject,omitempty"`
	Encounter         *Reference        `json:"encounter,omitempty"`
	PerformedDateTime string            `json:"performedDateTime,omitempty"`
	PerformedPeriod   *Period           `json:"performedPeriod,omitempty"`
	ReasonReference   []Reference       `json:"reasonReference,omitempty"`
	ReasonCode        []CodeableConcept `json:"reasonCode,omitempty"`
}

// MedicationRequest represents a FHIR R4 MedicationRequest resource.
type MedicationRequest struct {
	ResourceType              string           `json:"resourceType"`
	ID                        string           `json:"id,omitempty"`
	Meta                      *Meta            `json:"meta,omitempty"`
	Status                    string           `json:"status,omitempty"` // active | on-hold | cancelled | completed | stopped | ...
	Intent                    string           `json:"intent,omitempty"`
	MedicationCodeableConcept *CodeableConcept `json:"medicationCodeableConcept,omitempty"`
	MedicationReference       *Reference       `json:"medicationReference,omitempty"`
	Subject                   *Reference       `json:"subject,omitempty"`
	Encounter                 *Reference       `json:"encounter,omitempty"`
	AuthoredOn                string           `json:"authoredOn,omitempty"`
	Requester                 *Reference       `json:"requester,omitempty"`
	ReasonReference           []Reference      `json:"reasonReference,omitempty"`
}

// MedicationDisplay returns the display name of the medication, falling back
// to the reference display and then the bare code.
func (m *MedicationRequest) MedicationDisplay() string {
	if d := m.MedicationCodeableConcept.DisplayText(); d != "" {
		return d
	}
	if m.MedicationReference != nil && m.MedicationReference.Display != "" {
		return m.MedicationReference.Display
	}
	return ""
}

// MedicationCode returns the canonical medication code (RxNorm for Synthea).
func (m *MedicationRequest) MedicationCode() string {
	return m.MedicationCodeableConcept.FirstCode()
}

// AuthoredInstant returns the normalized authoredOn instant, when parseable.
func (m *MedicationRequest) AuthoredInstant() (time.Time, bool) {
	return ParseInstant(m.AuthoredOn)
}
