package usecase

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"SilverFetch/internal/domain/models"
	"SilverFetch/internal/domain/repository"
	"SilverFetch/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

type nopMetrics struct{}

func (nopMetrics) RecordCycle(float64, int)      {}
func (nopMetrics) RecordSourceError(string)      {}
func (nopMetrics) RecordError(string)            {}
func (nopMetrics) RecordBlendedPrice(float64)    {}
func (nopMetrics) RecordSubscribers(int)         {}
func (nopMetrics) RecordBroadcast(int)           {}
func (nopMetrics) RecordLatency(string, float64) {}

type stubSource struct {
	name  string
	price float64
	err   error
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(ctx context.Context) (models.QuoteObservation, error) {
	if s.err != nil {
		return models.QuoteObservation{}, s.err
	}
	return models.QuoteObservation{
		Source:     s.name,
		Price:      s.price,
		Currency:   "USD",
		ObservedAt: time.Now(),
	}, nil
}

func TestBlendAveragesAndSpread(t *testing.T) {
	agg := NewAggregator([]repository.SourceAdapter{
		&stubSource{name: "a", price: 100},
		&stubSource{name: "b", price: 102},
	}, testLogger(t), nopMetrics{})

	quote, err := agg.Blend(context.Background())
	if err != nil {
		t.Fatalf("Blend: %v", err)
	}
	if quote.Average != 101 {
		t.Fatalf("average = %v, want 101", quote.Average)
	}
	if quote.SourceCount() != 2 {
		t.Fatalf("source count = %d, want 2", quote.SourceCount())
	}
	if quote.SpreadPct == nil {
		t.Fatalf("spread should be defined for two sources")
	}
	wantSpread := 2.0 / 101 * 100
	if math.Abs(*quote.SpreadPct-wantSpread) > 1e-9 {
		t.Fatalf("spread = %v, want %v", *quote.SpreadPct, wantSpread)
	}
	if quote.Confidence <= 0 || quote.Confidence > 1 {
		t.Fatalf("confidence = %v, want in (0,1]", quote.Confidence)
	}
}

func TestBlendSingleSourceNoSpread(t *testing.T) {
	agg := NewAggregator([]repository.SourceAdapter{
		&stubSource{name: "a", price: 48.5},
		&stubSource{name: "b", err: errors.New("timeout")},
	}, testLogger(t), nopMetrics{})

	quote, err := agg.Blend(context.Background())
	if err != nil {
		t.Fatalf("Blend: %v", err)
	}
	if quote.Average != 48.5 {
		t.Fatalf("average = %v, want 48.5", quote.Average)
	}
	if quote.SpreadPct != nil {
		t.Fatalf("spread should be nil for a single source, got %v", *quote.SpreadPct)
	}
	if quote.SourceCount() != 1 {
		t.Fatalf("source count = %d, want 1", quote.SourceCount())
	}
}

func TestBlendAllSourcesFailed(t *testing.T) {
	agg := NewAggregator([]repository.SourceAdapter{
		&stubSource{name: "a", err: errors.New("boom")},
		&stubSource{name: "b", err: errors.New("boom")},
	}, testLogger(t), nopMetrics{})

	_, err := agg.Blend(context.Background())
	if !errors.Is(err, repository.ErrAggregationFailed) {
		t.Fatalf("err = %v, want ErrAggregationFailed", err)
	}
}

func TestBlendChangePctAcrossCycles(t *testing.T) {
	src := &stubSource{name: "a", price: 100}
	agg := NewAggregator([]repository.SourceAdapter{src}, testLogger(t), nopMetrics{})

	first, err := agg.Blend(context.Background())
	if err != nil {
		t.Fatalf("first Blend: %v", err)
	}
	if first.ChangePct != 0 {
		t.Fatalf("first cycle change = %v, want 0", first.ChangePct)
	}

	src.price = 102
	second, err := agg.Blend(context.Background())
	if err != nil {
		t.Fatalf("second Blend: %v", err)
	}
	if math.Abs(second.ChangePct-2) > 1e-9 {
		t.Fatalf("change = %v, want 2", second.ChangePct)
	}
}

func TestBlendConfidenceShape(t *testing.T) {
	if got := blendConfidence(0, 0); got != 0 {
		t.Fatalf("zero sources confidence = %v, want 0", got)
	}
	// More sources, same spread: confidence rises.
	if blendConfidence(3, 1) <= blendConfidence(1, 1) {
		t.Fatalf("confidence should rise with source count")
	}
	// Same sources, wider spread: confidence falls.
	if blendConfidence(2, 5) >= blendConfidence(2, 1) {
		t.Fatalf("confidence should fall with spread")
	}
	if c := blendConfidence(10, 0); c <= 0 || c > 1 {
		t.Fatalf("confidence = %v, want in (0,1]", c)
	}
}
