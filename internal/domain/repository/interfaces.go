package repository

import (
	"context"
	"errors"

	"SilverFetch/internal/domain/models"
)

var (
	// ErrAggregationFailed is returned when every source adapter failed and no
	// blended quote can be produced. Callers must not substitute a default
	// price; they may reuse the previous cycle's quote and mark the snapshot
	// degraded.
	ErrAggregationFailed = errors.New("aggregation: no source succeeded")

	// ErrInsufficientHistory is returned when a timeframe's candle window is
	// too short to evaluate at all.
	ErrInsufficientHistory = errors.New("insufficient candle history")
)

// SourceAdapter fetches the current spot price from one provider. Adapters
// fail independently and share no state.
type SourceAdapter interface {
	Name() string
	Fetch(ctx context.Context) (models.QuoteObservation, error)
}

// CandleProvider supplies, per timeframe, an ordered candle sequence of at
// least n bars anchored at the current spot price, refreshed every cycle.
type CandleProvider interface {
	Candles(ctx context.Context, tf Timeframe, n int, spot float64) ([]models.Candle, error)
}

// NarrativeService produces the market summary for a snapshot. Callers bound
// it with a timeout and substitute a fallback narrative on error.
type NarrativeService interface {
	Summarize(ctx context.Context, req models.NarrativeRequest) (models.Narrative, error)
}

// SnapshotSink receives each published snapshot (Kafka topic, history store).
// Sinks are fire-and-forget relative to the broadcast path.
type SnapshotSink interface {
	Publish(ctx context.Context, snap *models.Snapshot) error
	Close() error
}

// Metrics records operational measurements.
type Metrics interface {
	RecordCycle(seconds float64, positions int)
	RecordSourceError(source string)
	RecordError(kind string)
	RecordBlendedPrice(price float64)
	RecordSubscribers(n int)
	RecordBroadcast(bytes int)
	RecordLatency(op string, seconds float64)
}
