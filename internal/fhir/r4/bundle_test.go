package r4

import "testing"

func TestParseBundleRejectsNonBundle(t *testing.T) {
	if _, err := ParseBundle([]byte(`[1,2,3]`)); err == nil {
		t.Fatal("expected error for non-object document")
	}
	if _, err := ParseBundle([]byte(`{"resourceType":"Patient"}`)); err == nil {
		t.Fatal("expected error for wrong resourceType")
	}

	_, err := ParseBundle([]byte(`"nope"`))
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := err.(*MalformedInputError); !ok {
		t.Fatalf("expected MalformedInputError, got %T", err)
	}
}

func TestParseBundleEmptyIsValid(t *testing.T) {
	b, err := ParseBundle([]byte(`{"resourceType":"Bundle","type":"collection"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(b.Entry) != 0 {
		t.Fatalf("expected no entries, got %d", len(b.Entry))
	}
}

func TestDecodeResourceSkipsUnknownAndEmpty(t *testing.T) {
	empty := BundleEntry{}
	if res, err := empty.DecodeResource(); err != nil || res != nil {
		t.Fatalf("empty entry: got (%v, %v), want (nil, nil)", res, err)
	}

	unknown := BundleEntry{Resource: []byte(`{"resourceType":"Observation","id":"o1"}`)}
	if res, err := unknown.DecodeResource(); err != nil || res != nil {
		t.Fatalf("unknown kind: got (%v, %v), want (nil, nil)", res, err)
	}
}

func TestDecodeResourceCondition(t *testing.T) {
	entry := BundleEntry{
		FullURL: "urn:uuid:c1",
		Resource: []byte(`{
			"resourceType": "Condition",
			"id": "c1",
			"clinicalStatus": {"coding": [{"system": "http://terminology.hl7.org/CodeSystem/condition-clinical", "code": "active"}]},
			"code": {"coding": [{"system": "http://snomed.info/sct", "code": "44054006", "display": "Diabetes"}]},
			"onsetDateTime": "2015-03-02T09:00:00-05:00"
		}`),
	}
	res, err := entry.DecodeResource()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Kind != KindCondition || res.Condition == nil {
		t.Fatalf("expected decoded Condition, got %+v", res)
	}
	if res.Condition.StatusCode() != ClinicalStatusActive {
		t.Errorf("status = %q, want active", res.Condition.StatusCode())
	}
	if got := res.Condition.Code.DisplayText(); got != "Diabetes" {
		t.Errorf("display = %q, want Diabetes", got)
	}
	onset, ok := res.Condition.OnsetInstant()
	if !ok || onset.Hour() != 14 {
		t.Errorf("onset = %v (%v), want 14:00 UTC", onset, ok)
	}
}

func TestConditionStatusDefaultsUnknown(t *testing.T) {
	c := &Condition{}
	if got := c.StatusCode(); got != ClinicalStatusUnknown {
		t.Fatalf("status = %q, want unknown", got)
	}
}

func TestCodeableConceptDisplayFallsBackToCode(t *testing.T) {
	cc := &CodeableConcept{Coding: []Coding{{Code: "12345"}}}
	if got := cc.DisplayText(); got != "12345" {
		t.Fatalf("display = %q, want bare code", got)
	}
}
