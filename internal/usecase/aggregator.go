package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"SilverFetch/internal/domain/models"
	"SilverFetch/internal/domain/repository"
	"SilverFetch/pkg/logger"
)

// Aggregator queries every source adapter concurrently and blends the
// successful observations into one consensus quote.
type Aggregator struct {
	sources []repository.SourceAdapter
	log     *logger.Logger
	metrics repository.Metrics

	mu          sync.Mutex
	prevAverage float64
}

func NewAggregator(sources []repository.SourceAdapter, log *logger.Logger, metrics repository.Metrics) *Aggregator {
	return &Aggregator{sources: sources, log: log, metrics: metrics}
}

// Blend fetches all sources and produces a BlendedQuote. Adapters fail
// independently; a failed adapter is simply absent from this cycle's blend.
// Returns ErrAggregationFailed when no source succeeded. Callers must not
// substitute a default price on failure; reusing the previous cycle's quote
// with a degraded flag is the only permitted fallback.
func (a *Aggregator) Blend(ctx context.Context) (models.BlendedQuote, error) {
	start := time.Now()

	results := make([]models.QuoteObservation, len(a.sources))
	ok := make([]bool, len(a.sources))

	var wg sync.WaitGroup
	for i, src := range a.sources {
		wg.Add(1)
		go func(i int, src repository.SourceAdapter) {
			defer wg.Done()
			obs, err := src.Fetch(ctx)
			if err != nil {
				a.log.Warn("source fetch failed",
					logger.String("source", src.Name()),
					logger.Error(err))
				a.metrics.RecordSourceError(src.Name())
				return
			}
			results[i] = obs
			ok[i] = true
		}(i, src)
	}
	wg.Wait()

	var observations []models.QuoteObservation
	for i := range results {
		if ok[i] {
			observations = append(observations, results[i])
		}
	}
	a.metrics.RecordLatency("aggregate", time.Since(start).Seconds())

	if len(observations) == 0 {
		a.metrics.RecordError("aggregation_failed")
		return models.BlendedQuote{}, repository.ErrAggregationFailed
	}

	quote := blend(observations, time.Now())

	a.mu.Lock()
	if a.prevAverage > 0 {
		quote.ChangePct = (quote.Average - a.prevAverage) / a.prevAverage * 100
	}
	a.prevAverage = quote.Average
	a.mu.Unlock()

	a.metrics.RecordBlendedPrice(quote.Average)
	a.log.Debug("blended quote",
		logger.Float64("average", quote.Average),
		logger.Int("sources", quote.SourceCount()))
	return quote, nil
}

// blend computes the mean, spread, and confidence for a non-empty set of
// observations. Pure so it can be tested without adapters.
func blend(observations []models.QuoteObservation, now time.Time) models.BlendedQuote {
	var sum float64
	for _, obs := range observations {
		sum += obs.Price
	}
	avg := sum / float64(len(observations))

	quote := models.BlendedQuote{
		Average:   avg,
		Sources:   observations,
		Timestamp: now,
	}

	spread := 0.0
	if len(observations) >= 2 {
		prices := make([]float64, len(observations))
		for i, obs := range observations {
			prices[i] = obs.Price
		}
		sort.Float64s(prices)
		spread = (prices[len(prices)-1] - prices[0]) / avg * 100
		quote.SpreadPct = &spread
	}
	quote.Confidence = blendConfidence(len(observations), spread)
	return quote
}

// blendConfidence maps source count and spread to [0,1]. Monotonically
// increasing in count and decreasing in spread; exact shape is tunable policy.
func blendConfidence(count int, spreadPct float64) float64 {
	if count == 0 {
		return 0
	}
	if spreadPct < 0 {
		spreadPct = 0
	}
	countFactor := float64(count) / float64(count+1)
	return countFactor / (1 + spreadPct)
}
