// Package sources defines the contracts for loading patient bundles and
// wearable samples. Implementations live in subpackages and in
// infrastructure/postgres; the analysis core never sees these interfaces.
package sources

import (
	"context"
	"errors"
	"time"

	"github.com/ako1983/public-ai-engineering-interview/internal/biometrics"
)

// ErrNotFound is returned when no data exists for the requested subject.
var ErrNotFound = errors.New("not found")

// BundleSource loads the raw FHIR bundle for a patient.
type BundleSource interface {
	Bundle(ctx context.Context, patientID string) ([]byte, error)
}

// SampleSource loads raw samples for one user and metric over a time range.
type SampleSource interface {
	Samples(ctx context.Context, userID string, metric biometrics.MetricKind, start, end time.Time) ([]biometrics.Sample, error)
}
