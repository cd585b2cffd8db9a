package analytics

import (
	"math"
	"testing"

	"SilverFetch/internal/domain/models"
)

func flatBars(values []float64) []models.Candle {
	out := make([]models.Candle, len(values))
	for i, v := range values {
		out[i] = models.Candle{Open: v, High: v, Low: v, Close: v}
	}
	return out
}

func TestDetectLevelsSplitsAroundPrice(t *testing.T) {
	// One swing high at 30, one swing low at 20, price in between.
	values := []float64{25, 26, 27, 30, 27, 26, 25, 22, 20, 22, 25, 26, 25}
	cfg := LevelConfig{SwingWindow: 2, ClusterTolerancePct: 0.5, MaxLevels: 3}

	levels := DetectLevels(flatBars(values), 25, cfg)
	if len(levels.Supports) != 1 || levels.Supports[0] != 20 {
		t.Fatalf("supports = %v, want [20]", levels.Supports)
	}
	if len(levels.Resistances) != 1 || levels.Resistances[0] != 30 {
		t.Fatalf("resistances = %v, want [30]", levels.Resistances)
	}
}

func TestDetectLevelsFlatWindowEmpty(t *testing.T) {
	values := make([]float64, 50)
	for i := range values {
		values[i] = 25
	}
	levels := DetectLevels(flatBars(values), 25, DefaultLevelConfig())
	if len(levels.Supports) != 0 || len(levels.Resistances) != 0 {
		t.Fatalf("flat window should yield no levels, got %v / %v", levels.Supports, levels.Resistances)
	}
}

func TestDetectLevelsOrderedNearestFirstAndBounded(t *testing.T) {
	// Three separated swing lows below price, two swing highs above.
	values := []float64{
		24, 23, 18, 23, 24, // swing low 18
		25, 26, 32, 26, 25, // swing high 32
		24, 23, 20, 23, 24, // swing low 20
		25, 26, 35, 26, 25, // swing high 35
		24, 23, 22, 23, 24, // swing low 22
		25, 25, 25,
	}
	cfg := LevelConfig{SwingWindow: 2, ClusterTolerancePct: 0.5, MaxLevels: 2}

	levels := DetectLevels(flatBars(values), 25, cfg)
	if len(levels.Supports) != 2 {
		t.Fatalf("supports = %v, want 2 retained", levels.Supports)
	}
	if levels.Supports[0] != 22 || levels.Supports[1] != 20 {
		t.Fatalf("supports = %v, want nearest-first [22 20]", levels.Supports)
	}
	if len(levels.Resistances) != 2 || levels.Resistances[0] != 32 || levels.Resistances[1] != 35 {
		t.Fatalf("resistances = %v, want nearest-first [32 35]", levels.Resistances)
	}
}

func TestClusterLevelsMergesNearbyPoints(t *testing.T) {
	out := clusterLevels([]float64{30.0, 30.1, 20.0}, 0.5)
	if len(out) != 2 {
		t.Fatalf("clusters = %v, want 2", out)
	}
	if out[0] != 20 {
		t.Fatalf("first cluster = %v, want 20", out[0])
	}
	if math.Abs(out[1]-30.05) > 1e-9 {
		t.Fatalf("merged cluster = %v, want 30.05", out[1])
	}
}
