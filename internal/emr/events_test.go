package emr

import (
	"reflect"
	"testing"
	"time"
)

func TestExtractVitalEventsClassification(t *testing.T) {
	idx := BuildIndex(bundleOf(t,
		`{"resource":{"resourceType":"Encounter","id":"e1","status":"finished",
			"class":{"code":"EMER"},
			"type":[{"text":"Chest pain"}],
			"period":{"start":"2021-03-05T22:10:00Z"}}}`,
		`{"resource":{"resourceType":"Encounter","id":"e2","status":"finished",
			"class":{"code":"AMB"},
			"period":{"start":"2021-04-01T09:00:00Z"}}}`,
		`{"resource":{"resourceType":"Encounter","id":"e3","status":"finished",
			"class":{"code":"IMP"},
			"period":{"start":"2021-05-20"}}}`,
		`{"resource":{"resourceType":"Procedure","id":"pr1","status":"completed",
			"code":{"coding":[{"code":"80146002","display":"Appendectomy"}]},
			"performedPeriod":{"start":"2020-11-02T08:00:00-05:00"}}}`,
		`{"resource":{"resourceType":"MedicationRequest","id":"m1","status":"active",
			"medicationCodeableConcept":{"coding":[{"code":"314076","display":"Lisinopril 10 MG"}]},
			"authoredOn":"2022-01-15T10:00:00Z"}}`,
	))

	got := ExtractVitalEvents(idx, DefaultClassificationRules(nil), 0)
	if len(got) != 4 {
		t.Fatalf("events = %d, want 4 (ambulatory visit is not significant)", len(got))
	}

	wantKinds := []string{EventProcedure, EventEmergencyVisit, EventHospitalization, EventMedicationStart}
	for i, kind := range wantKinds {
		if got[i].Kind != kind {
			t.Errorf("position %d kind = %s, want %s", i, got[i].Kind, kind)
		}
	}
	if got[1].Description != "Emergency visit: Chest pain" {
		t.Errorf("description = %q", got[1].Description)
	}
	if got[0].SourceID != "pr1" {
		t.Errorf("source id = %q, want pr1", got[0].SourceID)
	}
	// Offset notation must land on the UTC instant.
	if want := time.Date(2020, 11, 2, 13, 0, 0, 0, time.UTC); !got[0].Occurred.Equal(want) {
		t.Errorf("procedure occurred = %v, want %v", got[0].Occurred, want)
	}
}

func TestExtractVitalEventsExcludesUndateable(t *testing.T) {
	idx := BuildIndex(bundleOf(t,
		`{"resource":{"resourceType":"Encounter","id":"e1","status":"finished","class":{"code":"EMER"}}}`,
	))
	if got := ExtractVitalEvents(idx, DefaultClassificationRules(nil), 0); len(got) != 0 {
		t.Fatalf("undateable resource reported as dated event: %+v", got)
	}
}

func TestExtractVitalEventsTimestampFallback(t *testing.T) {
	idx := BuildIndex(bundleOf(t,
		`{"resource":{"resourceType":"Procedure","id":"pr1","status":"completed",
			"code":{"coding":[{"code":"1","display":"Biopsy"}]},
			"performedDateTime":"2019-08-01T12:00:00Z"}}`,
	))
	got := ExtractVitalEvents(idx, DefaultClassificationRules(nil), 0)
	if len(got) != 1 {
		t.Fatalf("events = %d, want 1", len(got))
	}
	if got[0].Occurred.Hour() != 12 {
		t.Errorf("performedDateTime fallback not used: %v", got[0].Occurred)
	}
}

func TestExtractVitalEventsProcedureCodeSet(t *testing.T) {
	idx := BuildIndex(bundleOf(t,
		`{"resource":{"resourceType":"Procedure","id":"pr1","status":"completed",
			"code":{"coding":[{"code":"80146002","display":"Appendectomy"}]},
			"performedDateTime":"2019-08-01T12:00:00Z"}}`,
		`{"resource":{"resourceType":"Procedure","id":"pr2","status":"completed",
			"code":{"coding":[{"code":"not-major","display":"Ear check"}]},
			"performedDateTime":"2019-09-01T12:00:00Z"}}`,
	))
	rules := DefaultClassificationRules(NewCodeSet("80146002"))
	got := ExtractVitalEvents(idx, rules, 0)
	if len(got) != 1 || got[0].SourceID != "pr1" {
		t.Fatalf("code-set bounded rules returned %+v", got)
	}
}

func TestExtractVitalEventsLimitKeepsMostRecent(t *testing.T) {
	idx := BuildIndex(bundleOf(t,
		`{"resource":{"resourceType":"Encounter","id":"e1","status":"finished","class":{"code":"EMER"},"period":{"start":"2020-01-01T00:00:00Z"}}}`,
		`{"resource":{"resourceType":"Encounter","id":"e2","status":"finished","class":{"code":"EMER"},"period":{"start":"2021-01-01T00:00:00Z"}}}`,
		`{"resource":{"resourceType":"Encounter","id":"e3","status":"finished","class":{"code":"EMER"},"period":{"start":"2022-01-01T00:00:00Z"}}}`,
	))
	got := ExtractVitalEvents(idx, DefaultClassificationRules(nil), 2)
	if len(got) != 2 {
		t.Fatalf("events = %d, want 2", len(got))
	}
	if got[0].SourceID != "e2" || got[1].SourceID != "e3" {
		t.Fatalf("truncation kept %q, %q; want the most recent entries", got[0].SourceID, got[1].SourceID)
	}
}

func TestExtractVitalEventsIdempotent(t *testing.T) {
	idx := BuildIndex(bundleOf(t,
		`{"resource":{"resourceType":"Encounter","id":"e1","status":"finished","class":{"code":"IMP"},"period":{"start":"2021-05-20T00:00:00Z"}}}`,
	))
	rules := DefaultClassificationRules(nil)
	first := ExtractVitalEvents(idx, rules, 0)
	second := ExtractVitalEvents(idx, rules, 0)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated extraction differs:\n%+v\n%+v", first, second)
	}
}

func TestSummarizeEmptyBundle(t *testing.T) {
	summary := Summarize(BuildIndex(bundleOf(t)), DefaultSummaryConfig())
	if len(summary.ChronicConditions) != 0 || len(summary.VitalEvents) != 0 || len(summary.Medications) != 0 {
		t.Fatalf("empty bundle produced non-empty summary: %+v", summary)
	}
}
