// Package integration provides integration tests for the insights engine.
package integration

import (
	"os"
	"testing"
	"time"

	"github.com/ako1983/public-ai-engineering-interview/internal/emr"
	"github.com/ako1983/public-ai-engineering-interview/internal/fhir/r4"
)

func TestPatientSummaryFromSyntheaBundle(t *testing.T) {
	data, err := os.ReadFile("../fixtures/synthea_bundle.json")
	if err != nil {
		t.Skipf("fixture not found: %v", err)
	}

	bundle, err := r4.ParseBundle(data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	idx := emr.BuildIndex(bundle)

	if got := idx.PatientID(); got != "8c95253e-8ee8-9712-bc80-b5e622e1d99a" {
		t.Errorf("patient ID = %q", got)
	}
	if idx.Skipped() != 1 {
		t.Errorf("skipped = %d, want 1 (the condition with a numeric code)", idx.Skipped())
	}

	summary := emr.Summarize(idx, emr.DefaultSummaryConfig())

	// Only the active diabetes condition is chronic: hypertension is
	// resolved and sinusitis is not in the reference set.
	if len(summary.ChronicConditions) != 1 {
		t.Fatalf("chronic conditions = %d, want 1", len(summary.ChronicConditions))
	}
	diabetes := summary.ChronicConditions[0]
	if diabetes.Code != "44054006" {
		t.Errorf("chronic code = %q", diabetes.Code)
	}
	if diabetes.Status != "active" {
		t.Errorf("chronic status = %q", diabetes.Status)
	}
	if diabetes.Onset == nil {
		t.Fatal("expected parsed onset")
	}
	wantOnset := time.Date(2018, 3, 12, 13, 15, 0, 0, time.UTC)
	if !diabetes.Onset.Equal(wantOnset) {
		t.Errorf("onset = %v, want %v", diabetes.Onset, wantOnset)
	}

	// Medication start, emergency visit, hospitalization, procedure, in
	// chronological order. The wellness encounter and the stopped lisinopril
	// request yield nothing.
	wantEvents := []struct {
		kind     string
		occurred time.Time
	}{
		{emr.EventMedicationStart, time.Date(2018, 3, 12, 13, 45, 0, 0, time.UTC)},
		{emr.EventEmergencyVisit, time.Date(2021, 7, 5, 2, 41, 0, 0, time.UTC)},
		{emr.EventHospitalization, time.Date(2022, 1, 10, 8, 0, 0, 0, time.UTC)},
		{emr.EventProcedure, time.Date(2022, 1, 11, 9, 30, 0, 0, time.UTC)},
	}
	if len(summary.VitalEvents) != len(wantEvents) {
		t.Fatalf("events = %d, want %d: %+v", len(summary.VitalEvents), len(wantEvents), summary.VitalEvents)
	}
	for i, want := range wantEvents {
		got := summary.VitalEvents[i]
		if got.Kind != want.kind {
			t.Errorf("event[%d].Kind = %q, want %q", i, got.Kind, want.kind)
		}
		if !got.Occurred.Equal(want.occurred) {
			t.Errorf("event[%d].Occurred = %v, want %v", i, got.Occurred, want.occurred)
		}
		if got.Description == "" {
			t.Errorf("event[%d] missing description", i)
		}
	}

	if len(summary.Medications) != 1 {
		t.Fatalf("medications = %d, want 1", len(summary.Medications))
	}
	metformin := summary.Medications[0]
	if metformin.Code != "860975" {
		t.Errorf("medication code = %q", metformin.Code)
	}
	if metformin.Display == "" || metformin.Display == metformin.Code {
		t.Errorf("medication display = %q, want RxNorm display text", metformin.Display)
	}
}

func TestEventLimitKeepsMostRecent(t *testing.T) {
	data, err := os.ReadFile("../fixtures/synthea_bundle.json")
	if err != nil {
		t.Skipf("fixture not found: %v", err)
	}

	bundle, err := r4.ParseBundle(data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	cfg := emr.DefaultSummaryConfig()
	cfg.EventLimit = 2

	summary := emr.Summarize(emr.BuildIndex(bundle), cfg)
	if len(summary.VitalEvents) != 2 {
		t.Fatalf("events = %d, want 2", len(summary.VitalEvents))
	}
	if summary.VitalEvents[0].Kind != emr.EventHospitalization {
		t.Errorf("first kept event = %q, want hospitalization", summary.VitalEvents[0].Kind)
	}
	if summary.VitalEvents[1].Kind != emr.EventProcedure {
		t.Errorf("last kept event = %q, want procedure", summary.VitalEvents[1].Kind)
	}
}
