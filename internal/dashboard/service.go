// Package dashboard serves weather lookups and the guidance shown alongside them.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/astroweather-service/internal/domain"
	"github.com/couchcryptid/astroweather-service/internal/observability"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
)

// warmupLocation is synthesized at startup to confirm the generator is stable.
const warmupLocation = "Greenwich"

// Insights is a report plus the guidance sections derived from it. A section
// that could not be produced is absent and its error is listed in Errors.
type Insights struct {
	Report   domain.WeatherReport            `json:"report"`
	Clothing *domain.ClothingAndSafetyOutput `json:"clothing,omitempty"`
	Activity *domain.ActivityOutput          `json:"activity,omitempty"`
	Eco      *domain.EcoAwarenessOutput      `json:"eco,omitempty"`
	Errors   map[string]string               `json:"errors,omitempty"`
}

// Service looks up synthetic weather and gathers guidance for it.
type Service struct {
	advisor  domain.Advisor
	fallback domain.Advisor
	clock    clockwork.Clock
	synth    *domain.Synthesizer
	latency  time.Duration
	metrics  *observability.Metrics
	logger   *slog.Logger
	ready    atomic.Bool
}

// New creates a Service. fallback may be nil; when set it answers for any
// guidance call the advisor fails. latency delays every lookup to mimic a
// remote weather source. clock drives both the delay and the current year of
// every report.
func New(advisor, fallback domain.Advisor, clock clockwork.Clock, latency time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Service {
	return &Service{
		advisor:  advisor,
		fallback: fallback,
		clock:    clock,
		synth:    domain.NewSynthesizer(clock),
		latency:  latency,
		metrics:  metrics,
		logger:   logger,
	}
}

// Now returns the service clock's current time.
func (s *Service) Now() time.Time {
	return s.synth.Now()
}

// Advisor returns the advisor guidance requests are routed to, with fallback applied.
func (s *Service) Advisor() domain.Advisor {
	return fallbackAdvisor{s}
}

// Lookup waits out the simulated latency, then synthesizes the report for location and date.
func (s *Service) Lookup(ctx context.Context, location string, date time.Time) (domain.WeatherReport, error) {
	if s.latency > 0 {
		select {
		case <-ctx.Done():
			return domain.WeatherReport{}, ctx.Err()
		case <-s.clock.After(s.latency):
		}
	}

	start := time.Now()
	report, err := s.synth.GetWeatherData(location, date)
	s.metrics.LookupDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			s.metrics.ValidationFailures.WithLabelValues(string(verr.Kind)).Inc()
			s.logger.Info("weather query rejected", "location", location, "kind", verr.Kind)
		}
		return domain.WeatherReport{}, err
	}

	s.metrics.ReportsGenerated.WithLabelValues(string(report.Condition)).Inc()
	s.logger.Debug("weather report generated",
		"location", location,
		"date", domain.DayKey(date),
		"condition", report.Condition,
	)
	return report, nil
}

// Insights looks up the report and requests clothing, activity and eco guidance
// concurrently. Activity guidance is skipped when emotion is empty. Guidance
// failures are listed in Errors; only lookup errors and cancellation of ctx
// fail the call.
func (s *Service) Insights(ctx context.Context, location string, date time.Time, emotion string) (Insights, error) {
	report, err := s.Lookup(ctx, location, date)
	if err != nil {
		return Insights{}, err
	}

	out := Insights{Report: report}
	var (
		mu   sync.Mutex
		errs = map[string]string{}
	)
	// record keeps a section failure unless the caller has gone away.
	record := func(kind string, err error) error {
		if ctx.Err() != nil {
			return fmt.Errorf("%s guidance: %w", kind, ctx.Err())
		}
		mu.Lock()
		errs[kind] = err.Error()
		mu.Unlock()
		return nil
	}

	advisor := s.Advisor()
	var g errgroup.Group
	g.Go(func() error {
		res, err := advisor.ClothingAndSafety(ctx, report.ClothingInput())
		if err != nil {
			return record(domain.GuidanceClothing, err)
		}
		out.Clothing = &res
		return nil
	})
	if emotion != "" {
		g.Go(func() error {
			res, err := advisor.SuggestActivity(ctx, report.ActivityInput(emotion))
			if err != nil {
				return record(domain.GuidanceActivity, err)
			}
			out.Activity = &res
			return nil
		})
	}
	g.Go(func() error {
		res, err := advisor.EcoAwareness(ctx, report.EcoInput())
		if err != nil {
			return record(domain.GuidanceEco, err)
		}
		out.Eco = &res
		return nil
	})
	if err := g.Wait(); err != nil {
		return Insights{}, err
	}

	if len(errs) > 0 {
		out.Errors = errs
	}
	return out, nil
}

// Warmup synthesizes a reference report twice and checks the results agree and hold
// every report invariant. The service reports ready only after it passes.
func (s *Service) Warmup() error {
	now := s.synth.Now()
	first, err := s.synth.GetWeatherData(warmupLocation, now)
	if err != nil {
		return fmt.Errorf("warmup: %w", err)
	}
	second, err := s.synth.GetWeatherData(warmupLocation, now)
	if err != nil {
		return fmt.Errorf("warmup: %w", err)
	}
	if fields := differingFields(first, second); len(fields) > 0 {
		return fmt.Errorf("warmup: synthesis is not deterministic, fields %v differ", fields)
	}
	if err := domain.CheckReport(first, now.Year()); err != nil {
		return fmt.Errorf("warmup: %w", err)
	}

	s.ready.Store(true)
	s.logger.Info("dashboard ready", "location", warmupLocation, "condition", first.Condition)
	return nil
}

// CheckReadiness returns nil once Warmup has succeeded.
func (s *Service) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("dashboard warmup has not completed")
	}
	return nil
}

// differingFields names the report fields whose values differ between a and b.
func differingFields(a, b domain.WeatherReport) []string {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	var fields []string
	for i := range va.NumField() {
		if !reflect.DeepEqual(va.Field(i).Interface(), vb.Field(i).Interface()) {
			fields = append(fields, va.Type().Field(i).Name)
		}
	}
	return fields
}

// fallbackAdvisor tries the service's advisor first and the fallback on failure.
type fallbackAdvisor struct {
	s *Service
}

func (f fallbackAdvisor) ClothingAndSafety(ctx context.Context, in domain.ClothingAndSafetyInput) (domain.ClothingAndSafetyOutput, error) {
	return withFallback(ctx, f.s, domain.GuidanceClothing, in, domain.Advisor.ClothingAndSafety)
}

func (f fallbackAdvisor) SuggestActivity(ctx context.Context, in domain.ActivityInput) (domain.ActivityOutput, error) {
	return withFallback(ctx, f.s, domain.GuidanceActivity, in, domain.Advisor.SuggestActivity)
}

func (f fallbackAdvisor) EcoAwareness(ctx context.Context, in domain.EcoAwarenessInput) (domain.EcoAwarenessOutput, error) {
	return withFallback(ctx, f.s, domain.GuidanceEco, in, domain.Advisor.EcoAwareness)
}

func withFallback[I, O any](ctx context.Context, s *Service, kind string, in I, call func(domain.Advisor, context.Context, I) (O, error)) (O, error) {
	out, err := call(s.advisor, ctx, in)
	if err == nil || s.fallback == nil || ctx.Err() != nil {
		return out, err
	}

	s.logger.Warn("guidance failed, using fallback", "kind", kind, "error", err)
	s.metrics.GuidanceRequests.WithLabelValues(kind, "fallback").Inc()
	return call(s.fallback, ctx, in)
}
