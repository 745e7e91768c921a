// Package postgres provides PostgreSQL infrastructure components.
// Stores raw inputs only; summaries are always recomputed on read.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/ako1983/public-ai-engineering-interview/internal/sources"
)

// BundleStore persists raw FHIR bundle documents keyed by patient.
type BundleStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
	tracer trace.Tracer
}

// NewBundleStore creates a new bundle store
func NewBundleStore(pool *pgxpool.Pool, logger *zap.Logger) *BundleStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BundleStore{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("bundle-store"),
	}
}

// Save stores or replaces the bundle document for a patient
func (s *BundleStore) Save(ctx context.Context, patientID string, raw []byte) error {
	ctx, span := s.tracer.Start(ctx, "bundle_save",
		trace.WithAttributes(attribute.String("patient_id", patientID)))
	defer span.End()

	query := `
		INSERT INTO patient_bundles (patient_id, bundle, received_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (patient_id)
		DO UPDATE SET bundle = EXCLUDED.bundle, received_at = NOW()
	`

	if _, err := s.pool.Exec(ctx, query, patientID, raw); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to save bundle: %w", err)
	}

	s.logger.Debug("bundle saved",
		zap.String("patient_id", patientID),
		zap.Int("bytes", len(raw)))

	return nil
}

// Bundle returns the raw bundle document for a patient.
// Satisfies sources.BundleSource.
func (s *BundleStore) Bundle(ctx context.Context, patientID string) ([]byte, error) {
	ctx, span := s.tracer.Start(ctx, "bundle_load",
		trace.WithAttributes(attribute.String("patient_id", patientID)))
	defer span.End()

	var raw []byte
	err := s.pool.QueryRow(ctx,
		"SELECT bundle FROM patient_bundles WHERE patient_id = $1", patientID,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sources.ErrNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to load bundle: %w", err)
	}

	return raw, nil
}

// ListPatients returns the patient IDs with a stored bundle
func (s *BundleStore) ListPatients(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, "SELECT patient_id FROM patient_bundles ORDER BY patient_id")
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
