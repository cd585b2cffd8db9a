package history

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"SilverFetch/internal/domain/repository"
	"SilverFetch/pkg/cache"
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

func TestGenerateShape(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	spot := 48.24

	candles := generate(rng, spot, 200, time.Hour, now)
	if len(candles) != 200 {
		t.Fatalf("expected 200 candles, got %d", len(candles))
	}
	if candles[len(candles)-1].Close != spot {
		t.Fatalf("last close %v, want anchor %v", candles[len(candles)-1].Close, spot)
	}
	if !candles[len(candles)-1].Timestamp.Equal(now) {
		t.Fatalf("last candle not at now")
	}

	for i, c := range candles {
		if c.High < c.Close || c.High < c.Open {
			t.Fatalf("candle %d: high below body", i)
		}
		if c.Low > c.Close || c.Low > c.Open {
			t.Fatalf("candle %d: low above body", i)
		}
		if c.Close < spot*0.45 || c.Close > spot*1.30 {
			t.Fatalf("candle %d: close %v outside clamp band", i, c.Close)
		}
		if c.Volume < 1_000_000 || c.Volume > 3_000_000 {
			t.Fatalf("candle %d: volume %v out of range", i, c.Volume)
		}
		if i > 0 {
			if !candles[i-1].Timestamp.Before(c.Timestamp) {
				t.Fatalf("candle %d: timestamps not strictly ascending", i)
			}
			if c.Open != candles[i-1].Close {
				t.Fatalf("candle %d: open does not continue previous close", i)
			}
		}
	}
}

func TestGenerateRampsTowardAnchor(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	candles := generate(rng, 50, 200, time.Hour, time.Now().UTC())

	firstQuarter, lastQuarter := 0.0, 0.0
	for i := 0; i < 50; i++ {
		firstQuarter += candles[i].Close
		lastQuarter += candles[150+i].Close
	}
	if firstQuarter >= lastQuarter {
		t.Fatalf("expected upward ramp toward anchor, first quarter mean %v >= last quarter mean %v",
			firstQuarter/50, lastQuarter/50)
	}
}

func TestProviderRejectsBadInput(t *testing.T) {
	p := NewProvider(nil, time.Minute, testLogger(t))
	if _, err := p.Candles(context.Background(), repository.TF1h, 0, 48); err == nil {
		t.Fatalf("expected error for zero window")
	}
	if _, err := p.Candles(context.Background(), repository.TF1h, 200, 0); err == nil {
		t.Fatalf("expected error for zero spot")
	}
}

func TestProviderServesCachedWindow(t *testing.T) {
	mc := cache.NewMemoryCache()
	defer mc.Close()

	p := NewProvider(mc, time.Minute, testLogger(t))
	first, err := p.Candles(context.Background(), repository.TF1h, 120, 48.24)
	if err != nil {
		t.Fatalf("cold candles: %v", err)
	}

	second, err := p.Candles(context.Background(), repository.TF1h, 120, 48.24)
	if err != nil {
		t.Fatalf("warm candles: %v", err)
	}
	if len(second) != len(first) {
		t.Fatalf("warm window %d bars, want %d", len(second), len(first))
	}
	for i := range first {
		if second[i].Close != first[i].Close {
			t.Fatalf("bar %d: warm close %v differs from cached %v", i, second[i].Close, first[i].Close)
		}
	}
}

func TestProviderWithoutCache(t *testing.T) {
	p := NewProvider(nil, time.Minute, testLogger(t))
	candles, err := p.Candles(context.Background(), repository.TF1h, 120, 48.24)
	if err != nil {
		t.Fatalf("candles: %v", err)
	}
	if len(candles) != 120 {
		t.Fatalf("expected 120 candles, got %d", len(candles))
	}
}
