package history

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"SilverFetch/internal/domain/models"
	"SilverFetch/internal/domain/repository"
	"SilverFetch/pkg/cache"
	"SilverFetch/pkg/logger"
)

// Provider synthesizes candle history anchored at the live spot price. No
// free feed offers deep per-timeframe silver OHLCV, so the window is
// generated: a ramp from a discounted base toward the anchor plus bounded
// noise, clamped to a plausible band. The most recent close always equals
// the anchor so indicators line up with the published price.
type Provider struct {
	cache cache.Service
	ttl   time.Duration
	log   *logger.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

func NewProvider(cacheSvc cache.Service, ttl time.Duration, log *logger.Logger) *Provider {
	return &Provider{
		cache: cacheSvc,
		ttl:   ttl,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		log:   log,
	}
}

// Candles returns n bars for the timeframe, newest last, with the final
// close equal to spot. Windows are cached for slightly less than one refresh
// interval so concurrent timeframe evaluations share one generation.
func (p *Provider) Candles(ctx context.Context, tf repository.Timeframe, n int, spot float64) ([]models.Candle, error) {
	if n <= 0 || spot <= 0 {
		return nil, repository.ErrInsufficientHistory
	}

	key := cache.GenerateKeyWithParams("candles", string(tf), n)
	if p.cache != nil {
		var cached []models.Candle
		if err := p.cache.Get(ctx, key, &cached); err == nil && len(cached) == n {
			return cached, nil
		}
	}

	p.mu.Lock()
	candles := generate(p.rng, spot, n, tf.Step(), time.Now().UTC())
	p.mu.Unlock()

	if p.cache != nil {
		if err := p.cache.Set(ctx, key, candles, p.ttl); err != nil {
			p.log.Warn("candle cache set failed", logger.Error(err))
		}
	}
	return candles, nil
}

// generate builds the synthetic window. Prices ramp from 85% of the anchor
// toward the anchor with per-bar noise of at most one dollar, clamped to
// [0.45, 1.30] of the anchor.
func generate(rng *rand.Rand, spot float64, n int, step time.Duration, now time.Time) []models.Candle {
	base := spot * 0.85
	lo, hi := spot*0.45, spot*1.30

	candles := make([]models.Candle, n)
	prevClose := base
	for i := 0; i < n; i++ {
		progress := 0.0
		if n > 1 {
			progress = float64(i) / float64(n-1)
		}
		noise := (rng.Float64() - 0.5) * 2
		price := base + (spot-base)*progress + noise
		if price < lo {
			price = lo
		}
		if price > hi {
			price = hi
		}
		if i == n-1 {
			price = spot
		}

		open := prevClose
		high := maxf(open, price) * (1 + rng.Float64()*0.02)
		low := minf(open, price) * (1 - rng.Float64()*0.02)

		candles[i] = models.Candle{
			Timestamp: now.Add(-time.Duration(n-1-i) * step),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     price,
			Volume:    1_000_000 + rng.Float64()*2_000_000,
		}
		prevClose = price
	}
	return candles
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
