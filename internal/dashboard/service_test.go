package dashboard_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/astroweather-service/internal/adapter/offline"
	"github.com/couchcryptid/astroweather-service/internal/dashboard"
	"github.com/couchcryptid/astroweather-service/internal/domain"
	"github.com/couchcryptid/astroweather-service/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDate = time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

// --- mocks ---

type mockAdvisor struct {
	err   error
	calls atomic.Int32
}

func (m *mockAdvisor) ClothingAndSafety(_ context.Context, _ domain.ClothingAndSafetyInput) (domain.ClothingAndSafetyOutput, error) {
	m.calls.Add(1)
	if m.err != nil {
		return domain.ClothingAndSafetyOutput{}, m.err
	}
	return domain.ClothingAndSafetyOutput{ClothingRecommendations: []string{"Raincoat"}}, nil
}

func (m *mockAdvisor) SuggestActivity(_ context.Context, in domain.ActivityInput) (domain.ActivityOutput, error) {
	m.calls.Add(1)
	if m.err != nil {
		return domain.ActivityOutput{}, m.err
	}
	return domain.ActivityOutput{SuggestedActivity: "Museum visit for " + in.Emotion}, nil
}

func (m *mockAdvisor) EcoAwareness(_ context.Context, in domain.EcoAwarenessInput) (domain.EcoAwarenessOutput, error) {
	m.calls.Add(1)
	if m.err != nil {
		return domain.EcoAwarenessOutput{}, m.err
	}
	return domain.EcoAwarenessOutput{Flora: "Flora of " + in.Location}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixedClock pins the historical series to 2025.
func fixedClock() *clockwork.FakeClock {
	return clockwork.NewFakeClockAt(time.Date(2025, time.July, 4, 12, 0, 0, 0, time.UTC))
}

func newService(advisor, fallback domain.Advisor, clock clockwork.Clock, latency time.Duration) (*dashboard.Service, *observability.Metrics) {
	metrics := observability.NewMetricsForTesting()
	return dashboard.New(advisor, fallback, clock, latency, metrics, discardLogger()), metrics
}

// --- Lookup ---

func TestLookup_ReturnsReport(t *testing.T) {
	svc, metrics := newService(&mockAdvisor{}, nil, fixedClock(), 0)

	report, err := svc.Lookup(context.Background(), "Paris", testDate)
	require.NoError(t, err)

	assert.Equal(t, "Paris", report.Location)
	assert.Equal(t, domain.ConditionStormy, report.Condition)
	assert.Equal(t, 27, report.Temperature)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.ReportsGenerated.WithLabelValues("stormy")), 0)
}

func TestLookup_ValidationFailureCounted(t *testing.T) {
	svc, metrics := newService(&mockAdvisor{}, nil, clockwork.NewRealClock(), 0)

	_, err := svc.Lookup(context.Background(), "95, 10", testDate)
	require.ErrorIs(t, err, domain.ErrInvalidCoordinates)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.ValidationFailures.WithLabelValues("InvalidCoordinates")), 0)
}

func TestLookup_WaitsForLatency(t *testing.T) {
	clock := fixedClock()
	svc, _ := newService(&mockAdvisor{}, nil, clock, 1500*time.Millisecond)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Lookup(context.Background(), "Paris", testDate)
		done <- err
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))

	select {
	case <-done:
		t.Fatal("lookup returned before latency elapsed")
	default:
	}

	clock.Advance(1500 * time.Millisecond)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-ctx.Done():
		t.Fatal("lookup did not return after latency elapsed")
	}
}

func TestLookup_CancelledDuringLatency(t *testing.T) {
	svc, _ := newService(&mockAdvisor{}, nil, clockwork.NewFakeClock(), time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Lookup(ctx, "Paris", testDate)
	require.ErrorIs(t, err, context.Canceled)
}

// --- Insights ---

func TestInsights_AllSections(t *testing.T) {
	advisor := &mockAdvisor{}
	svc, _ := newService(advisor, nil, fixedClock(), 0)

	got, err := svc.Insights(context.Background(), "Paris", testDate, "happy")
	require.NoError(t, err)

	require.NotNil(t, got.Clothing)
	require.NotNil(t, got.Activity)
	require.NotNil(t, got.Eco)
	assert.Equal(t, "Museum visit for happy", got.Activity.SuggestedActivity)
	assert.Equal(t, "Flora of Paris", got.Eco.Flora)
	assert.Empty(t, got.Errors)
	assert.Equal(t, int32(3), advisor.calls.Load())
}

func TestInsights_NoEmotionSkipsActivity(t *testing.T) {
	advisor := &mockAdvisor{}
	svc, _ := newService(advisor, nil, clockwork.NewRealClock(), 0)

	got, err := svc.Insights(context.Background(), "Paris", testDate, "")
	require.NoError(t, err)

	assert.Nil(t, got.Activity)
	assert.NotNil(t, got.Clothing)
	assert.Equal(t, int32(2), advisor.calls.Load())
}

func TestInsights_FallbackOnAdvisorError(t *testing.T) {
	svc, metrics := newService(&mockAdvisor{err: errors.New("quota exceeded")}, offline.New(), clockwork.NewRealClock(), 0)

	got, err := svc.Insights(context.Background(), "Paris", testDate, "calm")
	require.NoError(t, err)

	require.NotNil(t, got.Clothing)
	require.NotNil(t, got.Activity)
	require.NotNil(t, got.Eco)
	assert.NotEmpty(t, got.Clothing.ClothingRecommendations)
	assert.Empty(t, got.Errors)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.GuidanceRequests.WithLabelValues("eco", "fallback")), 0)
}

func TestInsights_ErrorsReportedPerSection(t *testing.T) {
	svc, _ := newService(&mockAdvisor{err: errors.New("quota exceeded")}, nil, clockwork.NewRealClock(), 0)

	got, err := svc.Insights(context.Background(), "Paris", testDate, "calm")
	require.NoError(t, err)

	assert.Equal(t, "Paris", got.Report.Location)
	assert.Nil(t, got.Clothing)
	assert.Equal(t, map[string]string{
		"clothing": "quota exceeded",
		"activity": "quota exceeded",
		"eco":      "quota exceeded",
	}, got.Errors)
}

func TestInsights_CancelledDuringGuidance(t *testing.T) {
	svc, _ := newService(&mockAdvisor{err: context.Canceled}, offline.New(), fixedClock(), 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Insights(ctx, "Paris", testDate, "calm")
	require.ErrorIs(t, err, context.Canceled)
}

func TestInsights_LookupErrorFailsCall(t *testing.T) {
	advisor := &mockAdvisor{}
	svc, _ := newService(advisor, nil, clockwork.NewRealClock(), 0)

	_, err := svc.Insights(context.Background(), "error", testDate, "happy")
	require.ErrorIs(t, err, domain.ErrInvalidLocation)
	assert.Zero(t, advisor.calls.Load())
}

// --- readiness ---

func TestReadiness_AfterWarmup(t *testing.T) {
	svc, _ := newService(&mockAdvisor{}, nil, fixedClock(), 0)

	require.Error(t, svc.CheckReadiness(context.Background()))
	require.NoError(t, svc.Warmup())
	assert.NoError(t, svc.CheckReadiness(context.Background()))
}

func TestService_ClockSetsReportYear(t *testing.T) {
	svc, _ := newService(&mockAdvisor{}, nil, fixedClock(), 0)

	report, err := svc.Lookup(context.Background(), "Paris", testDate)
	require.NoError(t, err)

	assert.Equal(t, 2025, report.HistoricalData[domain.HistoryYears-1].Year)
	assert.Equal(t, 2025, svc.Now().Year())
}
