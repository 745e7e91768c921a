// Package emr derives compact patient summaries from clinical record bundles.
// All functions are pure: they read an already-materialized bundle plus
// explicit configuration and perform no I/O.
package emr

import (
	"strings"

	"github.com/ako1983/public-ai-engineering-interview/internal/fhir/r4"
)

// ResourceIndex indexes a bundle by resource kind and by identifier.
// Built once per bundle and read-only afterwards.
type ResourceIndex struct {
	byKind  map[string][]*r4.Resource
	byID    map[string]*r4.Resource
	skipped int
}

// BuildIndex walks the bundle entries in order. Entries missing a resource
// body, of an unrecognized kind, or with an undecodable body are skipped and
// counted; they never fail the build.
func BuildIndex(bundle *r4.Bundle) *ResourceIndex {
	idx := &ResourceIndex{
		byKind: make(map[string][]*r4.Resource),
		byID:   make(map[string]*r4.Resource),
	}
	if bundle == nil {
		return idx
	}

	for i := range bundle.Entry {
		res, err := bundle.Entry[i].DecodeResource()
		if err != nil || res == nil {
			idx.skipped++
			continue
		}
		idx.byKind[res.Kind] = append(idx.byKind[res.Kind], res)
		if res.ID != "" {
			idx.byID[res.ID] = res
		}
		// Synthea cross-references use the entry fullUrl (urn:uuid:...), so
		// register it alongside the resource id.
		if res.FullURL != "" {
			idx.byID[res.FullURL] = res
			if id := strings.TrimPrefix(res.FullURL, "urn:uuid:"); id != res.FullURL {
				idx.byID[id] = res
			}
		}
	}
	return idx
}

// ByKind returns the resources of the given kind in original bundle order.
// Unknown kinds yield an empty slice.
func (x *ResourceIndex) ByKind(kind string) []*r4.Resource {
	return x.byKind[kind]
}

// ByID resolves a resource by identifier or fullUrl.
func (x *ResourceIndex) ByID(id string) (*r4.Resource, bool) {
	res, ok := x.byID[id]
	return res, ok
}

// Skipped reports how many entries were dropped during the build, for
// diagnostics only.
func (x *ResourceIndex) Skipped() int {
	return x.skipped
}

// Conditions returns the decoded Condition resources in bundle order.
func (x *ResourceIndex) Conditions() []*r4.Condition {
	entries := x.byKind[r4.KindCondition]
	out := make([]*r4.Condition, 0, len(entries))
	for _, res := range entries {
		out = append(out, res.Condition)
	}
	return out
}

// PatientID extracts the subject's identifier: the first Patient resource,
// falling back to the first entry's urn:uuid fullUrl as Synthea bundles allow.
func (x *ResourceIndex) PatientID() string {
	if patients := x.byKind[r4.KindPatient]; len(patients) > 0 {
		if patients[0].ID != "" {
			return patients[0].ID
		}
		if id := strings.TrimPrefix(patients[0].FullURL, "urn:uuid:"); id != "" {
			return id
		}
	}
	return ""
}
