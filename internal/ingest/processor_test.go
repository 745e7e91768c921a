package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ako1983/public-ai-engineering-interview/internal/biometrics"
	"github.com/ako1983/public-ai-engineering-interview/internal/infrastructure/redpanda"
	"github.com/ako1983/public-ai-engineering-interview/internal/observability/metrics"
	"github.com/ako1983/public-ai-engineering-interview/pkg/workerpool"
)

// Prometheus collectors register globally, so the package shares one set.
var testMetrics = metrics.New()

type memoryWriter struct {
	mu      sync.Mutex
	batches map[string][]biometrics.Sample
	fail    bool
}

func (w *memoryWriter) SaveBatch(ctx context.Context, userID string, metric biometrics.MetricKind, samples []biometrics.Sample) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fail {
		return 0, fmt.Errorf("store unavailable")
	}
	key := userID + "/" + string(metric)
	w.batches[key] = append(w.batches[key], samples...)
	return int64(len(samples)), nil
}

func (w *memoryWriter) samples(userID string, metric biometrics.MetricKind) []biometrics.Sample {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.batches[userID+"/"+string(metric)]
}

type recordingPublisher struct {
	mu        sync.Mutex
	published []publishedRecord
}

type publishedRecord struct {
	topic string
	key   string
	value []byte
}

func (p *recordingPublisher) Publish(ctx context.Context, topic, key string, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, publishedRecord{topic: topic, key: key, value: value})
	return nil
}

func newTestProcessor(t *testing.T, store SampleWriter, dlq DeadLetterPublisher) *Processor {
	t.Helper()
	cfg := workerpool.Config{
		Workers:                 2,
		QueueSize:               8,
		MaxRetries:              0,
		RetryDelay:              time.Millisecond,
		GracefulShutdownTimeout: time.Second,
	}
	p, err := NewProcessor(store, dlq, cfg, testMetrics, zap.NewNop())
	if err != nil {
		t.Fatalf("NewProcessor: %v", err)
	}
	p.Start()
	t.Cleanup(func() { p.Stop() })
	return p
}

func rawMessage(value []byte) *redpanda.ConsumedMessage {
	return &redpanda.ConsumedMessage{
		Topic:     redpanda.TopicSamplesRaw,
		Partition: 0,
		Offset:    42,
		Key:       []byte("user-1"),
		Value:     value,
		Timestamp: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestHandlePersistsValidBatch(t *testing.T) {
	store := &memoryWriter{batches: make(map[string][]biometrics.Sample)}
	dlq := &recordingPublisher{}
	p := newTestProcessor(t, store, dlq)

	batch := SampleBatch{
		UserID: "user-1",
		Metric: "glucose",
		Samples: []BatchSample{
			{Timestamp: time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC), Value: 110},
			{Timestamp: time.Date(2024, 6, 1, 8, 5, 0, 0, time.UTC), Value: 118},
		},
	}
	value, _ := json.Marshal(batch)

	if err := p.Handle(context.Background(), rawMessage(value)); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	got := store.samples("user-1", biometrics.MetricGlucose)
	if len(got) != 2 {
		t.Fatalf("persisted %d samples, want 2", len(got))
	}
	if got[0].Value != 110 || got[1].Value != 118 {
		t.Errorf("persisted values %v", got)
	}
	if len(dlq.published) != 0 {
		t.Errorf("unexpected dead letters: %d", len(dlq.published))
	}
}

func TestHandleDropsInvalidSamples(t *testing.T) {
	store := &memoryWriter{batches: make(map[string][]biometrics.Sample)}
	p := newTestProcessor(t, store, &recordingPublisher{})

	// Encoded by hand: NaN does not survive json.Marshal
	value := []byte(`{
		"userId": "user-2",
		"metric": "heart_rate",
		"samples": [
			{"timestamp": "2024-06-01T08:00:00Z", "value": 62},
			{"timestamp": "0001-01-01T00:00:00Z", "value": 70},
			{"timestamp": "2024-06-01T08:01:00Z", "value": 64}
		]
	}`)

	if err := p.Handle(context.Background(), rawMessage(value)); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	got := store.samples("user-2", biometrics.MetricHeartRate)
	if len(got) != 2 {
		t.Fatalf("persisted %d samples, want 2 (zero timestamp dropped)", len(got))
	}
}

func TestHandleDeadLettersUndecodableBatch(t *testing.T) {
	store := &memoryWriter{batches: make(map[string][]biometrics.Sample)}
	dlq := &recordingPublisher{}
	p := newTestProcessor(t, store, dlq)

	if err := p.Handle(context.Background(), rawMessage([]byte("not json at all"))); err != nil {
		t.Fatalf("Handle should commit dead-lettered batches, got %v", err)
	}

	if len(dlq.published) != 1 {
		t.Fatalf("dead letters = %d, want 1", len(dlq.published))
	}
	rec := dlq.published[0]
	if rec.topic != redpanda.TopicDeadLetter {
		t.Errorf("dead letter topic = %q", rec.topic)
	}

	var envelope map[string]interface{}
	if err := json.Unmarshal(rec.value, &envelope); err != nil {
		t.Fatalf("dead letter envelope is not JSON: %v", err)
	}
	if envelope["original_topic"] != redpanda.TopicSamplesRaw {
		t.Errorf("original_topic = %v", envelope["original_topic"])
	}
	if envelope["error"] == "" {
		t.Error("expected an error reason in the envelope")
	}
}

func TestHandleDeadLettersUnknownMetric(t *testing.T) {
	dlq := &recordingPublisher{}
	p := newTestProcessor(t, &memoryWriter{batches: make(map[string][]biometrics.Sample)}, dlq)

	value := []byte(`{"userId":"user-3","metric":"steps","samples":[{"timestamp":"2024-06-01T08:00:00Z","value":900}]}`)
	if err := p.Handle(context.Background(), rawMessage(value)); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(dlq.published) != 1 {
		t.Fatalf("dead letters = %d, want 1", len(dlq.published))
	}
}

func TestHandleReturnsErrorWhenStoreFails(t *testing.T) {
	store := &memoryWriter{batches: make(map[string][]biometrics.Sample), fail: true}
	p := newTestProcessor(t, store, &recordingPublisher{})

	batch := SampleBatch{
		UserID:  "user-4",
		Metric:  "hrv",
		Samples: []BatchSample{{Timestamp: time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC), Value: 45}},
	}
	value, _ := json.Marshal(batch)

	if err := p.Handle(context.Background(), rawMessage(value)); err == nil {
		t.Fatal("expected error so the offset stays uncommitted")
	}
}
