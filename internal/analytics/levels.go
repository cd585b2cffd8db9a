package analytics

import (
	"math"
	"sort"

	"SilverFetch/internal/domain/models"
)

// LevelConfig tunes swing detection and clustering.
type LevelConfig struct {
	// SwingWindow is the number of candles on each side a swing extremum must
	// dominate.
	SwingWindow int
	// ClusterTolerancePct merges swing points within this relative distance
	// of each other into one level.
	ClusterTolerancePct float64
	// MaxLevels bounds how many supports and resistances are retained for
	// presentation.
	MaxLevels int
}

// DefaultLevelConfig matches the tuning used in production.
func DefaultLevelConfig() LevelConfig {
	return LevelConfig{SwingWindow: 3, ClusterTolerancePct: 0.5, MaxLevels: 3}
}

// DetectLevels finds swing-based support and resistance levels relative to
// the current price. Supports are strictly below price, resistances strictly
// above, each sorted nearest-first and truncated to MaxLevels. A window with
// no local extrema yields empty sets.
func DetectLevels(candles []models.Candle, currentPrice float64, cfg LevelConfig) models.LevelSet {
	k := cfg.SwingWindow
	if k <= 0 {
		k = 3
	}

	var swingHighs, swingLows []float64
	for i := k; i < len(candles)-k; i++ {
		if isSwingHigh(candles, i, k) {
			swingHighs = append(swingHighs, candles[i].High)
		}
		if isSwingLow(candles, i, k) {
			swingLows = append(swingLows, candles[i].Low)
		}
	}

	levels := clusterLevels(append(swingHighs, swingLows...), cfg.ClusterTolerancePct)

	var supports, resistances []float64
	for _, lv := range levels {
		switch {
		case lv < currentPrice:
			supports = append(supports, lv)
		case lv > currentPrice:
			resistances = append(resistances, lv)
		}
	}

	// Nearest to current price first.
	sort.Sort(sort.Reverse(sort.Float64Slice(supports)))
	sort.Float64s(resistances)

	if cfg.MaxLevels > 0 {
		if len(supports) > cfg.MaxLevels {
			supports = supports[:cfg.MaxLevels]
		}
		if len(resistances) > cfg.MaxLevels {
			resistances = resistances[:cfg.MaxLevels]
		}
	}
	return models.LevelSet{Supports: supports, Resistances: resistances}
}

// isSwingHigh reports whether candle i's high strictly exceeds the highs of
// the k candles on each side.
func isSwingHigh(candles []models.Candle, i, k int) bool {
	h := candles[i].High
	for j := i - k; j <= i+k; j++ {
		if j == i {
			continue
		}
		if candles[j].High >= h {
			return false
		}
	}
	return true
}

func isSwingLow(candles []models.Candle, i, k int) bool {
	l := candles[i].Low
	for j := i - k; j <= i+k; j++ {
		if j == i {
			continue
		}
		if candles[j].Low <= l {
			return false
		}
	}
	return true
}

// clusterLevels merges raw swing points lying within tolerancePct of each
// other into one level positioned at their mean.
func clusterLevels(points []float64, tolerancePct float64) []float64 {
	if len(points) == 0 {
		return nil
	}
	if tolerancePct <= 0 {
		tolerancePct = 0.5
	}
	sorted := append([]float64(nil), points...)
	sort.Float64s(sorted)

	var out []float64
	clusterSum := sorted[0]
	clusterCount := 1
	anchor := sorted[0]
	for _, p := range sorted[1:] {
		if anchor > 0 && math.Abs(p-anchor)/anchor*100 <= tolerancePct {
			clusterSum += p
			clusterCount++
			continue
		}
		out = append(out, clusterSum/float64(clusterCount))
		clusterSum = p
		clusterCount = 1
		anchor = p
	}
	out = append(out, clusterSum/float64(clusterCount))
	return out
}
