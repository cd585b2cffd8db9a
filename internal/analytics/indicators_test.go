package analytics

import (
	"math"
	"testing"
	"time"

	"SilverFetch/internal/domain/models"
)

func candlesFromCloses(closes []float64) []models.Candle {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.Candle, len(closes))
	for i, c := range closes {
		out[i] = models.Candle{
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			Open:      c,
			High:      c + 0.5,
			Low:       c - 0.5,
			Close:     c,
			Volume:    1000,
		}
	}
	return out
}

func risingCloses(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 20 + float64(i)*0.25
	}
	return out
}

func TestComputeShortWindowAbstains(t *testing.T) {
	r := Compute(candlesFromCloses(risingCloses(10)))

	if r.Set.EMA12 != nil {
		t.Fatalf("EMA12 should be nil for 10 candles, got %v", *r.Set.EMA12)
	}
	if r.Set.RSI != nil {
		t.Fatalf("RSI should be nil for 10 candles")
	}
	if r.Set.SMA50 != nil || r.Set.SMA200 != nil {
		t.Fatalf("SMAs should be nil for 10 candles")
	}
	if r.Set.MACD != nil || r.Set.MACDSignal != nil {
		t.Fatalf("MACD should be nil for 10 candles")
	}
	if r.Set.ADX != nil {
		t.Fatalf("ADX should be nil for 10 candles")
	}
	if r.Set.Trend != 0 {
		t.Fatalf("trend should be undecidable for 10 candles, got %d", r.Set.Trend)
	}
}

func TestRSISaturatesOnMonotonicRise(t *testing.T) {
	r := Compute(candlesFromCloses(risingCloses(60)))
	if r.Set.RSI == nil {
		t.Fatalf("RSI should be defined for 60 candles")
	}
	if *r.Set.RSI != 100 {
		t.Fatalf("RSI on a monotonic rise = %v, want 100", *r.Set.RSI)
	}
}

func TestFlatWindowNeutralReadings(t *testing.T) {
	closes := make([]float64, 80)
	for i := range closes {
		closes[i] = 42
	}
	candles := candlesFromCloses(closes)
	for i := range candles {
		// Zero-range bars so stochastic and Bollinger degenerate cleanly.
		candles[i].High = 42
		candles[i].Low = 42
	}

	r := Compute(candles)
	if r.Set.RSI == nil || *r.Set.RSI != 50 {
		t.Fatalf("flat RSI = %v, want 50", r.Set.RSI)
	}
	if r.Set.StochK == nil || *r.Set.StochK != 50 {
		t.Fatalf("flat stochastic = %v, want midpoint 50", r.Set.StochK)
	}
	if r.Set.BBUpper == nil || r.Set.BBLower == nil {
		t.Fatalf("Bollinger bands should be defined")
	}
	if *r.Set.BBUpper != 42 || *r.Set.BBLower != 42 {
		t.Fatalf("flat Bollinger bands = %v / %v, want collapsed at 42", *r.Set.BBLower, *r.Set.BBUpper)
	}
	if r.Set.ATR == nil || *r.Set.ATR != 0 {
		t.Fatalf("flat ATR = %v, want 0", r.Set.ATR)
	}
	if r.Set.Trend != 0 {
		t.Fatalf("flat trend = %d, want 0", r.Set.Trend)
	}
}

func TestSMA50MatchesTrailingMean(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = float64(i + 1)
	}
	r := Compute(candlesFromCloses(closes))
	if r.Set.SMA50 == nil {
		t.Fatalf("SMA50 should be defined for 60 candles")
	}
	// Mean of 11..60.
	want := 35.5
	if math.Abs(*r.Set.SMA50-want) > 1e-9 {
		t.Fatalf("SMA50 = %v, want %v", *r.Set.SMA50, want)
	}
	if r.Set.SMA200 != nil {
		t.Fatalf("SMA200 should be nil for 60 candles")
	}
}

func TestTrendClassification(t *testing.T) {
	up := Compute(candlesFromCloses(risingCloses(80)))
	if up.Set.Trend != 1 {
		t.Fatalf("rising series trend = %d, want 1", up.Set.Trend)
	}

	falling := make([]float64, 80)
	for i := range falling {
		falling[i] = 60 - float64(i)*0.25
	}
	down := Compute(candlesFromCloses(falling))
	if down.Set.Trend != -1 {
		t.Fatalf("falling series trend = %d, want -1", down.Set.Trend)
	}
}

func TestSeriesAlignedWithCandles(t *testing.T) {
	candles := candlesFromCloses(risingCloses(60))
	r := Compute(candles)

	for name, series := range map[string][]float64{
		"ema12":    r.Series.EMA12,
		"ema26":    r.Series.EMA26,
		"sma50":    r.Series.SMA50,
		"bb_upper": r.Series.BBUpper,
		"bb_lower": r.Series.BBLower,
	} {
		if len(series) != len(candles) {
			t.Fatalf("%s series length %d, want %d", name, len(series), len(candles))
		}
	}
	if !math.IsNaN(r.Series.EMA12[0]) {
		t.Fatalf("EMA12 warmup should be NaN padded")
	}
	if math.IsNaN(r.Series.EMA12[len(candles)-1]) {
		t.Fatalf("EMA12 tail should be defined")
	}
}
