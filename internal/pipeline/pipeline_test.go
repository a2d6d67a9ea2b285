package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/astroweather-service/internal/domain"
	"github.com/couchcryptid/astroweather-service/internal/observability"
	"github.com/couchcryptid/astroweather-service/internal/pipeline"
	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

// mockExtractor hands out its batches once, then blocks until cancelled.
type mockExtractor struct {
	batches [][]domain.RawEvent
	errs    []error
	index   atomic.Int64
}

func (m *mockExtractor) ExtractBatch(ctx context.Context, _ int) ([]domain.RawEvent, error) {
	i := int(m.index.Add(1) - 1)
	if i < len(m.errs) && m.errs[i] != nil {
		return nil, m.errs[i]
	}
	if i >= len(m.batches) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return m.batches[i], nil
}

type mockTransformer struct {
	err    error
	reject map[string]bool // message keys to fail
}

func (m *mockTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	if m.err != nil {
		return domain.OutputEvent{}, m.err
	}
	if m.reject[string(raw.Key)] {
		return domain.OutputEvent{}, errors.New("bad query")
	}
	return domain.OutputEvent{Key: raw.Key, Value: raw.Value}, nil
}

type mockLoader struct {
	mu       sync.Mutex
	loaded   []domain.OutputEvent
	failures int
}

func (m *mockLoader) LoadBatch(_ context.Context, events []domain.OutputEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failures > 0 {
		m.failures--
		return errors.New("broker unavailable")
	}
	m.loaded = append(m.loaded, events...)
	return nil
}

func (m *mockLoader) Loaded() []domain.OutputEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.OutputEvent(nil), m.loaded...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func queryEvent(t *testing.T, location, date string) domain.RawEvent {
	t.Helper()
	data, err := json.Marshal(domain.Query{Location: location, Date: date})
	require.NoError(t, err)
	return domain.RawEvent{Key: []byte(location), Value: data}
}

func runFor(t *testing.T, p *pipeline.Pipeline, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	require.NoError(t, p.Run(ctx))
}

// --- Pipeline ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	raw := queryEvent(t, "Paris", "2024-03-01")
	ext := &mockExtractor{batches: [][]domain.RawEvent{{raw}}}
	ldr := &mockLoader{}
	metrics := observability.NewMetricsForTesting()

	p := pipeline.New(ext, &mockTransformer{}, ldr, discardLogger(), metrics, 10)
	runFor(t, p, 300*time.Millisecond)

	loaded := ldr.Loaded()
	require.Len(t, loaded, 1)
	assert.Equal(t, raw.Value, loaded[0].Value)
	assert.NoError(t, p.CheckReadiness(context.Background()))
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.MessagesConsumed), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.MessagesProduced), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.PipelineRunning), 0)
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	ldr := &mockLoader{}
	p := pipeline.New(&mockExtractor{}, &mockTransformer{}, ldr, discardLogger(), observability.NewMetricsForTesting(), 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, p.Run(ctx))
	assert.Empty(t, ldr.Loaded())
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_TransformErrorCommitsAndSkips(t *testing.T) {
	var commits atomic.Int32
	raw := queryEvent(t, "error", "2024-03-01")
	raw.Commit = func(context.Context) error {
		commits.Add(1)
		return nil
	}

	ext := &mockExtractor{batches: [][]domain.RawEvent{{raw}}}
	ldr := &mockLoader{}
	metrics := observability.NewMetricsForTesting()

	p := pipeline.New(ext, &mockTransformer{err: errors.New("bad query")}, ldr, discardLogger(), metrics, 10)
	runFor(t, p, 300*time.Millisecond)

	assert.Empty(t, ldr.Loaded())
	assert.Equal(t, int32(1), commits.Load())
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.TransformErrors), 0)
}

func TestPipeline_Run_CommitsAfterLoad(t *testing.T) {
	var commitCalled atomic.Bool
	raw := queryEvent(t, "Paris", "2024-03-01")
	raw.Topic = "weather-queries"
	raw.Commit = func(context.Context) error {
		commitCalled.Store(true)
		return nil
	}

	ext := &mockExtractor{batches: [][]domain.RawEvent{{raw}}}
	p := pipeline.New(ext, &mockTransformer{}, &mockLoader{}, discardLogger(), observability.NewMetricsForTesting(), 10)
	runFor(t, p, 300*time.Millisecond)

	assert.True(t, commitCalled.Load())
}

// commitLog records committed offsets in order.
type commitLog struct {
	mu      sync.Mutex
	offsets []int64
}

func (c *commitLog) track(raw domain.RawEvent) domain.RawEvent {
	raw.Commit = func(context.Context) error {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.offsets = append(c.offsets, raw.Offset)
		return nil
	}
	return raw
}

func (c *commitLog) Offsets() []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int64(nil), c.offsets...)
}

func TestPipeline_Run_RetriesFailedLoadWithoutRedelivery(t *testing.T) {
	var commits commitLog
	raw := queryEvent(t, "Paris", "2024-03-01")
	raw.Topic = "weather-queries"

	// Delivered once only; a failed load must be retried from memory.
	ext := &mockExtractor{batches: [][]domain.RawEvent{{commits.track(raw)}}}
	ldr := &mockLoader{failures: 2}

	p := pipeline.New(ext, &mockTransformer{}, ldr, discardLogger(), observability.NewMetricsForTesting(), 10)
	runFor(t, p, 2*time.Second)

	assert.Len(t, ldr.Loaded(), 1)
	assert.Equal(t, []int64{0}, commits.Offsets())
	assert.NoError(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_NoCommitWhileLoadFails(t *testing.T) {
	var commits commitLog
	valid := queryEvent(t, "Paris", "2024-03-01")
	valid.Topic, valid.Offset = "weather-queries", 0
	invalid := queryEvent(t, "error", "2024-03-01")
	invalid.Topic, invalid.Offset = "weather-queries", 1

	ext := &mockExtractor{batches: [][]domain.RawEvent{{commits.track(valid), commits.track(invalid)}}}
	ldr := &mockLoader{failures: 1000}
	tfm := &mockTransformer{reject: map[string]bool{"error": true}}

	p := pipeline.New(ext, tfm, ldr, discardLogger(), observability.NewMetricsForTesting(), 10)
	runFor(t, p, 500*time.Millisecond)

	assert.Empty(t, ldr.Loaded())
	assert.Empty(t, commits.Offsets(), "the skipped message must not commit past the unloaded one")
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_CommitsHighestOffsetPerPartition(t *testing.T) {
	var commits commitLog
	var batch []domain.RawEvent
	for i, loc := range []string{"Paris", "error", "Tokyo"} {
		raw := queryEvent(t, loc, "2024-03-01")
		raw.Topic, raw.Offset = "weather-queries", int64(i)
		batch = append(batch, commits.track(raw))
	}
	other := queryEvent(t, "Lima", "2024-03-01")
	other.Topic, other.Partition, other.Offset = "weather-queries", 1, 7
	batch = append(batch, commits.track(other))

	ext := &mockExtractor{batches: [][]domain.RawEvent{batch}}
	ldr := &mockLoader{failures: 1}
	tfm := &mockTransformer{reject: map[string]bool{"error": true}}

	p := pipeline.New(ext, tfm, ldr, discardLogger(), observability.NewMetricsForTesting(), 10)
	runFor(t, p, time.Second)

	assert.Len(t, ldr.Loaded(), 3)
	assert.Equal(t, []int64{2, 7}, commits.Offsets())
}

func TestPipeline_Run_ExtractErrorBacksOff(t *testing.T) {
	ext := &mockExtractor{
		errs:    []error{errors.New("broker down")},
		batches: [][]domain.RawEvent{nil, {queryEvent(t, "Paris", "2024-03-01")}},
	}
	ldr := &mockLoader{}

	p := pipeline.New(ext, &mockTransformer{}, ldr, discardLogger(), observability.NewMetricsForTesting(), 10)
	runFor(t, p, time.Second)

	assert.Len(t, ldr.Loaded(), 1)
}

// --- QueryTransformer ---

func fixedSynth() *domain.Synthesizer {
	return domain.NewSynthesizer(clockwork.NewFakeClockAt(time.Date(2025, time.July, 4, 12, 0, 0, 0, time.UTC)))
}

func TestQueryTransformer_Transform(t *testing.T) {
	synth := fixedSynth()
	metrics := observability.NewMetricsForTesting()
	tfm := pipeline.NewTransformer(synth, metrics, discardLogger())

	out, err := tfm.Transform(context.Background(), queryEvent(t, "Paris", "2024-03-01"))
	require.NoError(t, err)

	assert.Equal(t, []byte("paris|2024-03-01"), out.Key)
	assert.Equal(t, map[string]string{
		"condition":    "stormy",
		"seed":         "23852745",
		"generated_at": "2025-07-04T12:00:00Z",
	}, out.Headers)

	var report domain.WeatherReport
	require.NoError(t, json.Unmarshal(out.Value, &report))
	want, err := synth.GetWeatherData("Paris", time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	if diff := cmp.Diff(want, report); diff != "" {
		t.Fatalf("report mismatch (-want +got):\n%s", diff)
	}
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.ReportsGenerated.WithLabelValues("stormy")), 0)
}

func TestQueryTransformer_Rejections(t *testing.T) {
	tests := []struct {
		name string
		raw  domain.RawEvent
		kind string
	}{
		{"invalid json", domain.RawEvent{Value: []byte("not json{{{")}, ""},
		{"bad date", domain.RawEvent{Value: []byte(`{"location":"Paris","date":"tomorrow"}`)}, ""},
		{"empty location", domain.RawEvent{Value: []byte(`{"location":"  ","date":"2024-03-01"}`)}, "EmptyLocation"},
		{"reserved location", domain.RawEvent{Value: []byte(`{"location":"invalid","date":"2024-03-01"}`)}, "InvalidLocation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics := observability.NewMetricsForTesting()
			tfm := pipeline.NewTransformer(fixedSynth(), metrics, discardLogger())

			_, err := tfm.Transform(context.Background(), tt.raw)
			require.Error(t, err)
			if tt.kind != "" {
				assert.InDelta(t, 1, testutil.ToFloat64(metrics.ValidationFailures.WithLabelValues(tt.kind)), 0)
			}
		})
	}
}
