package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/astroweather-service/internal/domain"
	"github.com/couchcryptid/astroweather-service/internal/observability"
	"github.com/couchcryptid/storm-data-shared/retry"
)

// BatchExtractor reads up to batchSize query messages from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error)
}

// Transformer turns a query message into a serialized report.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error)
}

// BatchLoader writes serialized reports to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.OutputEvent) error
}

// Retry backoff for source and sink failures: doubles per attempt up to maxBackoff.
const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Pipeline answers streamed weather queries with synthesized reports.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
	batchSize   int
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		batchSize:   batchSize,
	}
}

// CheckReadiness returns nil once the pipeline has completed a batch cycle
// without a source or sink failure.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("query pipeline has not reached kafka yet")
	}
	return nil
}

// Run executes the batch loop until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	backoff := initialBackoff

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		default:
		}

		if !p.processBatch(ctx, &backoff) {
			return nil
		}
	}
}

// processBatch runs one extract-transform-load cycle. Returns false if the pipeline should stop.
func (p *Pipeline) processBatch(ctx context.Context, backoff *time.Duration) bool {
	start := time.Now()

	rawBatch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract batch failed", "error", err)
		return p.backoffOrStop(ctx, backoff)
	}

	if len(rawBatch) > 0 {
		p.metrics.MessagesConsumed.Add(float64(len(rawBatch)))
		p.metrics.BatchSize.Observe(float64(len(rawBatch)))

		if err := p.transformAndLoad(ctx, rawBatch, backoff); err != nil {
			// Only cancellation ends a load; the batch stays uncommitted.
			return false
		}
		p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
	}

	// A clean cycle, even an empty one, proves the broker is reachable.
	*backoff = initialBackoff
	p.ready.Store(true)
	return ctx.Err() == nil
}

// transformAndLoad answers each query in the batch, loads the reports, and
// commits the batch. Invalid queries are skipped but their offsets are only
// committed together with the rest of the batch, after the load succeeds.
func (p *Pipeline) transformAndLoad(ctx context.Context, rawBatch []domain.RawEvent, backoff *time.Duration) error {
	outBatch := make([]domain.OutputEvent, 0, len(rawBatch))

	for _, raw := range rawBatch {
		out, err := p.transformer.Transform(ctx, raw)
		if err != nil {
			p.logger.Warn("query rejected, skipping message",
				"error", err,
				"topic", raw.Topic,
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			p.metrics.TransformErrors.Inc()
			continue
		}
		outBatch = append(outBatch, out)
	}

	if len(outBatch) > 0 {
		if err := p.loadWithRetry(ctx, outBatch, backoff); err != nil {
			return err
		}
		p.metrics.MessagesProduced.Add(float64(len(outBatch)))
	}

	p.commitBatch(ctx, rawBatch)
	return nil
}

// loadWithRetry loads the batch, backing off between failed attempts, until it
// succeeds or ctx is cancelled. The source is not read again in between.
func (p *Pipeline) loadWithRetry(ctx context.Context, outBatch []domain.OutputEvent, backoff *time.Duration) error {
	for {
		err := p.loader.LoadBatch(ctx, outBatch)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		p.logger.Error("load batch failed", "error", err, "batch_size", len(outBatch), "retry_in", *backoff)
		if !p.backoffOrStop(ctx, backoff) {
			return ctx.Err()
		}
	}
}

// commitBatch commits the highest offset seen per partition. A consumer-group
// commit covers every earlier offset on that partition.
func (p *Pipeline) commitBatch(ctx context.Context, rawBatch []domain.RawEvent) {
	type partitionKey struct {
		topic     string
		partition int
	}
	latest := make(map[partitionKey]domain.RawEvent)
	order := make([]partitionKey, 0, 1)
	for _, raw := range rawBatch {
		k := partitionKey{raw.Topic, raw.Partition}
		prev, seen := latest[k]
		if !seen {
			order = append(order, k)
		}
		if !seen || raw.Offset > prev.Offset {
			latest[k] = raw
		}
	}
	for _, k := range order {
		p.commitOffset(ctx, latest[k])
	}
}

// backoffOrStop marks the pipeline unready, sleeps with the current backoff,
// and advances it. Returns false if the pipeline should stop.
func (p *Pipeline) backoffOrStop(ctx context.Context, backoff *time.Duration) bool {
	p.ready.Store(false)
	if ctx.Err() != nil {
		return false
	}
	if !retry.SleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = retry.NextBackoff(*backoff, maxBackoff)
	return true
}

// commitOffset commits the message offset if a commit function is available.
func (p *Pipeline) commitOffset(ctx context.Context, raw domain.RawEvent) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}
