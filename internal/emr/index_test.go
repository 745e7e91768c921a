package emr

import (
	"encoding/json"
	"testing"

	"github.com/ako1983/public-ai-engineering-interview/internal/fhir/r4"
)

func bundleOf(t *testing.T, entries ...string) *r4.Bundle {
	t.Helper()
	b := &r4.Bundle{ResourceType: "Bundle", Type: "collection"}
	for _, e := range entries {
		var entry r4.BundleEntry
		if err := json.Unmarshal([]byte(e), &entry); err != nil {
			t.Fatalf("bad test entry: %v", err)
		}
		b.Entry = append(b.Entry, entry)
	}
	return b
}

func TestBuildIndexSkipsBrokenEntries(t *testing.T) {
	b := bundleOf(t,
		`{"fullUrl":"urn:uuid:p1","resource":{"resourceType":"Patient","id":"p1"}}`,
		`{"fullUrl":"urn:uuid:x"}`,
		`{"resource":{"resourceType":"Observation","id":"obs1"}}`,
		`{"resource":{"resourceType":"Condition","id":"c1"}}`,
	)
	idx := BuildIndex(b)

	if got := len(idx.ByKind(r4.KindPatient)); got != 1 {
		t.Fatalf("patients = %d, want 1", got)
	}
	if got := len(idx.ByKind(r4.KindCondition)); got != 1 {
		t.Fatalf("conditions = %d, want 1", got)
	}
	if got := idx.Skipped(); got != 2 {
		t.Errorf("skipped = %d, want 2", got)
	}
}

func TestIndexResolvesReferencesByIDAndFullURL(t *testing.T) {
	b := bundleOf(t,
		`{"fullUrl":"urn:uuid:abc-123","resource":{"resourceType":"Encounter","id":"e1","status":"finished"}}`,
	)
	idx := BuildIndex(b)

	for _, key := range []string{"e1", "urn:uuid:abc-123", "abc-123"} {
		res, ok := idx.ByID(key)
		if !ok || res.Encounter == nil {
			t.Errorf("ByID(%q) failed to resolve encounter", key)
		}
	}
	if _, ok := idx.ByID("missing"); ok {
		t.Error("ByID resolved a nonexistent id")
	}
}

func TestIndexPatientIDFallsBackToFullURL(t *testing.T) {
	b := bundleOf(t,
		`{"fullUrl":"urn:uuid:pat-9","resource":{"resourceType":"Patient"}}`,
	)
	if got := BuildIndex(b).PatientID(); got != "pat-9" {
		t.Fatalf("patient id = %q, want pat-9", got)
	}
}

func TestBuildIndexNilAndEmpty(t *testing.T) {
	for _, idx := range []*ResourceIndex{BuildIndex(nil), BuildIndex(&r4.Bundle{})} {
		if got := len(idx.ByKind(r4.KindCondition)); got != 0 {
			t.Fatalf("expected empty index, got %d conditions", got)
		}
	}
}
