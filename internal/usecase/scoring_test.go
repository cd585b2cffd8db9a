package usecase

import (
	"math"
	"testing"

	"SilverFetch/internal/domain/models"
	"SilverFetch/pkg/config"
)

func testScoringConfig() config.ScoringConfig {
	var cfg config.ScoringConfig
	cfg.Weights.Trend = 3
	cfg.Weights.SMA50 = 2
	cfg.Weights.MACD = 2
	cfg.Weights.RSI = 2
	cfg.Weights.ADX = 1
	cfg.Weights.Bollinger = 1
	cfg.Weights.Volume = 1
	cfg.Weights.RiskReward = 2
	cfg.Thresholds.Strong = 0.55
	cfg.Thresholds.Plain = 0.35
	cfg.Thresholds.Weak = 0.15
	cfg.RSIBullish = 55
	cfg.RSIBearish = 45
	cfg.ADXTrending = 25
	cfg.RRAttractive = 1.5
	cfg.ATRStopMultiple = 1.5
	cfg.ATRLevelMaxMultiple = 3
	cfg.SwingWindow = 3
	cfg.ClusterTolerancePct = 0.5
	cfg.MaxLevels = 3
	return cfg
}

func f(v float64) *float64 { return &v }

// bullishSet votes positive on every weighted check.
func bullishSet() models.IndicatorSet {
	return models.IndicatorSet{
		Trend:       1,
		SMA50:       f(45),
		MACD:        f(0.3),
		MACDSignal:  f(0.1),
		RSI:         f(62),
		ADX:         f(30),
		BBUpper:     f(52),
		BBLower:     f(46),
		ATR:         f(0.8),
		VolumeRatio: f(2.0),
	}
}

func TestEvaluateStrongBuy(t *testing.T) {
	engine := NewScoringEngine(testScoringConfig())
	levels := models.LevelSet{Supports: []float64{45.5}, Resistances: []float64{52}}

	// Price at lower band so Bollinger also votes positive.
	ev := engine.Evaluate(46, bullishSet(), levels)
	if ev.MaxScore != 14 {
		t.Fatalf("max score = %v, want 14", ev.MaxScore)
	}
	if ev.Score <= 0 {
		t.Fatalf("score = %v, want positive", ev.Score)
	}
	if math.Abs(ev.Score) > ev.MaxScore {
		t.Fatalf("score %v exceeds max %v", ev.Score, ev.MaxScore)
	}
	if ev.Recommendation != RecStrongBuy {
		t.Fatalf("recommendation = %q, want %q", ev.Recommendation, RecStrongBuy)
	}
	if ev.Action != models.ActionBuy {
		t.Fatalf("action = %q, want BUY", ev.Action)
	}
	if ev.Confidence != "High" {
		t.Fatalf("confidence = %q, want High", ev.Confidence)
	}
	if len(ev.Reasons) == 0 || len(ev.Details) == 0 {
		t.Fatalf("expected reasons and details to be populated")
	}
}

func TestEvaluateEmptySetHolds(t *testing.T) {
	engine := NewScoringEngine(testScoringConfig())

	// No history at all: every indicator abstains, trend is neutral.
	ev := engine.Evaluate(48, models.IndicatorSet{}, models.LevelSet{})
	if ev.Score != 0 {
		t.Fatalf("score = %v, want 0 when all indicators abstain", ev.Score)
	}
	if ev.Recommendation != RecHold {
		t.Fatalf("recommendation = %q, want HOLD", ev.Recommendation)
	}
	if ev.Action != models.ActionHold {
		t.Fatalf("action = %q, want HOLD", ev.Action)
	}
	if ev.Entry != nil || ev.StopLoss != nil {
		t.Fatalf("HOLD must not carry a trade plan")
	}
	if ev.MaxScore != 14 {
		t.Fatalf("abstentions must not shrink max score, got %v", ev.MaxScore)
	}
}

func TestPlanStopsAtNearestSupport(t *testing.T) {
	engine := NewScoringEngine(testScoringConfig())
	ind := bullishSet()
	levels := models.LevelSet{Supports: []float64{47}, Resistances: []float64{52}}

	ev := engine.Evaluate(48, ind, levels)
	if ev.Action != models.ActionBuy {
		t.Fatalf("action = %q, want BUY", ev.Action)
	}
	if ev.StopLoss == nil || *ev.StopLoss != 47 {
		t.Fatalf("stop = %v, want nearest support 47", ev.StopLoss)
	}
	if *ev.Entry != 48 {
		t.Fatalf("entry = %v, want current price", *ev.Entry)
	}
	// Risk is 1, so targets ladder at 49, 50, 51.
	if *ev.TakeProfit1 != 49 || *ev.TakeProfit2 != 50 || *ev.TakeProfit3 != 51 {
		t.Fatalf("targets = %v/%v/%v, want 49/50/51", *ev.TakeProfit1, *ev.TakeProfit2, *ev.TakeProfit3)
	}
	// Headline ratio uses the middle target, so it is 2 by construction.
	if ev.RiskRewardRatio == nil || math.Abs(*ev.RiskRewardRatio-2) > 1e-9 {
		t.Fatalf("risk reward = %v, want 2", ev.RiskRewardRatio)
	}
}

func TestPlanFallsBackToATRStop(t *testing.T) {
	engine := NewScoringEngine(testScoringConfig())
	ind := bullishSet()
	ind.ATR = f(0.4)

	// Support exists but sits far beyond the ATR gate, so the stop is the
	// ATR multiple below entry instead.
	levels := models.LevelSet{Supports: []float64{40}, Resistances: []float64{52}}
	ev := engine.Evaluate(48, ind, levels)
	if ev.Action != models.ActionBuy {
		t.Fatalf("action = %q, want BUY", ev.Action)
	}
	wantStop := 48 - 1.5*0.4
	if ev.StopLoss == nil || math.Abs(*ev.StopLoss-wantStop) > 1e-9 {
		t.Fatalf("stop = %v, want ATR fallback %v", ev.StopLoss, wantStop)
	}
}

func TestPlanMetrics(t *testing.T) {
	riskPct, rewardPct, ratio := planMetrics(100, 95, 115)
	if riskPct != 5 {
		t.Fatalf("risk pct = %v, want 5", riskPct)
	}
	if rewardPct != 15 {
		t.Fatalf("reward pct = %v, want 15", rewardPct)
	}
	if ratio == nil || *ratio != 3 {
		t.Fatalf("ratio = %v, want 3", ratio)
	}

	_, _, zero := planMetrics(100, 100, 110)
	if zero != nil {
		t.Fatalf("zero risk must yield nil ratio, got %v", *zero)
	}
}

func TestRSIVoteExtremesInvert(t *testing.T) {
	engine := NewScoringEngine(testScoringConfig())

	oversold := engine.voteRSI(models.IndicatorSet{RSI: f(25)}, 2)
	if oversold.contribution != 2 {
		t.Fatalf("oversold contribution = %v, want +2", oversold.contribution)
	}
	overbought := engine.voteRSI(models.IndicatorSet{RSI: f(75)}, 2)
	if overbought.contribution != -2 {
		t.Fatalf("overbought contribution = %v, want -2", overbought.contribution)
	}
	momentum := engine.voteRSI(models.IndicatorSet{RSI: f(60)}, 2)
	if momentum.contribution != 2 {
		t.Fatalf("bullish momentum contribution = %v, want +2", momentum.contribution)
	}
	neutral := engine.voteRSI(models.IndicatorSet{RSI: f(50)}, 2)
	if neutral.contribution != 0 {
		t.Fatalf("neutral contribution = %v, want 0", neutral.contribution)
	}
}

func TestEvaluateBearishMirror(t *testing.T) {
	engine := NewScoringEngine(testScoringConfig())
	ind := models.IndicatorSet{
		Trend:       -1,
		SMA50:       f(50),
		MACD:        f(-0.3),
		MACDSignal:  f(-0.1),
		RSI:         f(38),
		ADX:         f(30),
		BBUpper:     f(49),
		BBLower:     f(44),
		ATR:         f(0.8),
		VolumeRatio: f(2.0),
	}
	levels := models.LevelSet{Supports: []float64{44}, Resistances: []float64{49.5}}

	ev := engine.Evaluate(49, ind, levels)
	if ev.Score >= 0 {
		t.Fatalf("score = %v, want negative", ev.Score)
	}
	if ev.Action != models.ActionSell {
		t.Fatalf("action = %q, want SELL", ev.Action)
	}
	if ev.StopLoss == nil || *ev.StopLoss != 49.5 {
		t.Fatalf("stop = %v, want nearest resistance 49.5", ev.StopLoss)
	}
	if *ev.TakeProfit1 >= 49 {
		t.Fatalf("short targets must sit below entry, tp1 = %v", *ev.TakeProfit1)
	}
}
