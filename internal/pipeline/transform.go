package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/couchcryptid/astroweather-service/internal/domain"
	"github.com/couchcryptid/astroweather-service/internal/observability"
)

// QueryTransformer implements Transformer by synthesizing the report a query
// message asks for.
type QueryTransformer struct {
	synth   *domain.Synthesizer
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewTransformer creates a QueryTransformer that synthesizes with synth.
func NewTransformer(synth *domain.Synthesizer, metrics *observability.Metrics, logger *slog.Logger) *QueryTransformer {
	return &QueryTransformer{synth: synth, metrics: metrics, logger: logger}
}

func (t *QueryTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	location, date, err := domain.ParseQuery(raw)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	report, err := t.synth.GetWeatherData(location, date)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			t.metrics.ValidationFailures.WithLabelValues(string(verr.Kind)).Inc()
		}
		return domain.OutputEvent{}, err
	}
	t.metrics.ReportsGenerated.WithLabelValues(string(report.Condition)).Inc()

	out, err := domain.SerializeReport(report, date, t.synth.Now())
	if err != nil {
		return domain.OutputEvent{}, err
	}
	t.logger.Debug("report synthesized", "key", string(out.Key), "condition", report.Condition)
	return out, nil
}
