package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/ako1983/public-ai-engineering-interview/internal/biometrics"
)

// SampleStore persists raw wearable samples. The primary key on
// (user_id, metric, ts) makes replayed batches idempotent.
type SampleStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
	tracer trace.Tracer
}

// NewSampleStore creates a new sample store
func NewSampleStore(pool *pgxpool.Pool, logger *zap.Logger) *SampleStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SampleStore{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("sample-store"),
	}
}

// SaveBatch upserts a batch of samples for one user and metric.
// Returns the number of rows written.
func (s *SampleStore) SaveBatch(ctx context.Context, userID string, metric biometrics.MetricKind, samples []biometrics.Sample) (int64, error) {
	if len(samples) == 0 {
		return 0, nil
	}

	ctx, span := s.tracer.Start(ctx, "samples_save_batch",
		trace.WithAttributes(
			attribute.String("user_id", userID),
			attribute.String("metric", string(metric)),
			attribute.Int("count", len(samples)),
		))
	defer span.End()

	batch := &pgx.Batch{}
	query := `
		INSERT INTO wearable_samples (user_id, metric, ts, value)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, metric, ts)
		DO UPDATE SET value = EXCLUDED.value
	`
	for _, sample := range samples {
		batch.Queue(query, userID, string(metric), sample.Timestamp.UTC(), sample.Value)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	var written int64
	for range samples {
		tag, err := results.Exec()
		if err != nil {
			span.RecordError(err)
			return written, fmt.Errorf("failed to write sample batch: %w", err)
		}
		written += tag.RowsAffected()
	}

	s.logger.Debug("sample batch written",
		zap.String("user_id", userID),
		zap.String("metric", string(metric)),
		zap.Int64("rows", written))

	return written, nil
}

// Samples returns the raw samples for one user and metric within [start, end).
// Satisfies sources.SampleSource.
func (s *SampleStore) Samples(ctx context.Context, userID string, metric biometrics.MetricKind, start, end time.Time) ([]biometrics.Sample, error) {
	ctx, span := s.tracer.Start(ctx, "samples_load",
		trace.WithAttributes(
			attribute.String("user_id", userID),
			attribute.String("metric", string(metric)),
		))
	defer span.End()

	query := `
		SELECT ts, value
		FROM wearable_samples
		WHERE user_id = $1 AND metric = $2 AND ts >= $3 AND ts < $4
		ORDER BY ts ASC
	`

	rows, err := s.pool.Query(ctx, query, userID, string(metric), start.UTC(), end.UTC())
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var samples []biometrics.Sample
	for rows.Next() {
		var sample biometrics.Sample
		if err := rows.Scan(&sample.Timestamp, &sample.Value); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		samples = append(samples, sample)
	}

	span.SetAttributes(attribute.Int("count", len(samples)))
	return samples, rows.Err()
}
