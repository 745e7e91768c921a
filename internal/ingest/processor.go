// Package ingest processes raw wearable sample batches from Kafka.
// Batches are validated and persisted through a bounded worker pool; batches
// that cannot be decoded go to the dead letter topic instead of blocking the
// partition.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/ako1983/public-ai-engineering-interview/internal/biometrics"
	"github.com/ako1983/public-ai-engineering-interview/internal/infrastructure/redpanda"
	"github.com/ako1983/public-ai-engineering-interview/internal/observability/metrics"
	"github.com/ako1983/public-ai-engineering-interview/pkg/workerpool"
)

// SampleBatch is the message envelope on the raw samples topic
type SampleBatch struct {
	UserID  string        `json:"userId"`
	Metric  string        `json:"metric"`
	Samples []BatchSample `json:"samples"`
}

// BatchSample is one reading within a batch
type BatchSample struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// SampleWriter persists a validated batch
type SampleWriter interface {
	SaveBatch(ctx context.Context, userID string, metric biometrics.MetricKind, samples []biometrics.Sample) (int64, error)
}

// DeadLetterPublisher publishes undecodable batches
type DeadLetterPublisher interface {
	Publish(ctx context.Context, topic, key string, value []byte) error
}

// Processor validates and persists consumed sample batches
type Processor struct {
	store      SampleWriter
	deadLetter DeadLetterPublisher
	pool       *workerpool.Pool
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewProcessor creates a processor backed by the given worker pool config
func NewProcessor(store SampleWriter, deadLetter DeadLetterPublisher, poolCfg workerpool.Config, m *metrics.Metrics, logger *zap.Logger) (*Processor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Processor{
		store:      store,
		deadLetter: deadLetter,
		metrics:    m,
		logger:     logger,
	}

	pool, err := workerpool.New(poolCfg, p.persistTask, logger)
	if err != nil {
		return nil, err
	}
	p.pool = pool

	return p, nil
}

// Start launches the worker pool
func (p *Processor) Start() {
	p.pool.Start()
}

// Stop drains the worker pool
func (p *Processor) Stop() error {
	return p.pool.Stop()
}

// PoolStats exposes worker pool statistics for health reporting
func (p *Processor) PoolStats() workerpool.Stats {
	return p.pool.Stats()
}

// Handle is the consumer message handler. A nil return commits the offset;
// undecodable batches are dead-lettered and committed so they cannot wedge
// the partition, while persistence failures stay uncommitted for redelivery.
func (p *Processor) Handle(ctx context.Context, msg *redpanda.ConsumedMessage) error {
	p.metrics.KafkaBatchesConsumed.Inc()

	batch, err := decodeBatch(msg.Value)
	if err != nil {
		p.logger.Warn("dead-lettering undecodable batch",
			zap.String("topic", msg.Topic),
			zap.Int64("offset", msg.Offset),
			zap.Error(err))
		return p.sendToDeadLetter(ctx, msg, err)
	}

	samples, dropped := cleanSamples(batch.Samples)
	if dropped > 0 {
		p.metrics.SamplesDropped.Add(float64(dropped))
		p.logger.Debug("dropped invalid samples",
			zap.String("user_id", batch.UserID),
			zap.Int("dropped", dropped))
	}
	if len(samples) == 0 {
		return nil
	}

	task := &workerpool.Task{
		ID:      fmt.Sprintf("%s/%s/%d", batch.UserID, batch.Metric, msg.Offset),
		Payload: &persistPayload{batch: batch, samples: samples},
		Context: ctx,
	}

	result, err := p.pool.SubmitWait(ctx, task)
	if err != nil {
		return err
	}
	if !result.Success {
		return result.Error
	}

	p.metrics.SamplesIngested.Add(float64(len(samples)))
	return nil
}

type persistPayload struct {
	batch   *SampleBatch
	samples []biometrics.Sample
}

// persistTask is the worker function
func (p *Processor) persistTask(ctx context.Context, task *workerpool.Task) *workerpool.Result {
	payload := task.Payload.(*persistPayload)

	written, err := p.store.SaveBatch(ctx, payload.batch.UserID,
		biometrics.MetricKind(payload.batch.Metric), payload.samples)
	if err != nil {
		return &workerpool.Result{TaskID: task.ID, Success: false, Error: err}
	}

	return &workerpool.Result{TaskID: task.ID, Success: true, Data: written}
}

// sendToDeadLetter wraps the original payload with failure context
func (p *Processor) sendToDeadLetter(ctx context.Context, msg *redpanda.ConsumedMessage, cause error) error {
	envelope, err := json.Marshal(map[string]interface{}{
		"original_topic": msg.Topic,
		"partition":      msg.Partition,
		"offset":         msg.Offset,
		"payload":        json.RawMessage(wrapRaw(msg.Value)),
		"error":          cause.Error(),
		"received_at":    msg.Timestamp.UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode dead letter: %w", err)
	}

	if err := p.deadLetter.Publish(ctx, redpanda.TopicDeadLetter, string(msg.Key), envelope); err != nil {
		return fmt.Errorf("failed to publish dead letter: %w", err)
	}

	p.metrics.DeadLetterProduced.Inc()
	return nil
}

// wrapRaw keeps the original bytes intact when they are valid JSON and
// base64-wraps them in a JSON string otherwise.
func wrapRaw(raw []byte) []byte {
	if json.Valid(raw) {
		return raw
	}
	quoted, _ := json.Marshal(raw) // []byte marshals as base64 string
	return quoted
}

// decodeBatch parses and validates the envelope
func decodeBatch(raw []byte) (*SampleBatch, error) {
	var batch SampleBatch
	if err := json.Unmarshal(raw, &batch); err != nil {
		return nil, fmt.Errorf("invalid batch JSON: %w", err)
	}
	if batch.UserID == "" {
		return nil, fmt.Errorf("batch missing userId")
	}
	switch biometrics.MetricKind(batch.Metric) {
	case biometrics.MetricHeartRate, biometrics.MetricHRV, biometrics.MetricGlucose:
	default:
		return nil, fmt.Errorf("unknown metric %q", batch.Metric)
	}
	if len(batch.Samples) == 0 {
		return nil, fmt.Errorf("batch has no samples")
	}
	return &batch, nil
}

// cleanSamples converts batch samples, dropping non-finite values and
// zero timestamps
func cleanSamples(in []BatchSample) ([]biometrics.Sample, int) {
	out := make([]biometrics.Sample, 0, len(in))
	dropped := 0
	for _, s := range in {
		if s.Timestamp.IsZero() || math.IsNaN(s.Value) || math.IsInf(s.Value, 0) {
			dropped++
			continue
		}
		out = append(out, biometrics.Sample{Timestamp: s.Timestamp.UTC(), Value: s.Value})
	}
	return out, dropped
}
