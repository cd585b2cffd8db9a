package usecase

import (
	"fmt"

	"SilverFetch/internal/domain/models"
	"SilverFetch/pkg/config"
)

// Recommendation labels, ordered by normalized score.
const (
	RecStrongBuy  = "STRONG BUY"
	RecBuy        = "BUY"
	RecWeakBuy    = "WEAK BUY"
	RecHold       = "HOLD"
	RecWeakSell   = "WEAK SELL"
	RecSell       = "SELL"
	RecStrongSell = "STRONG SELL"
)

// Evaluation is the scoring engine's output for one timeframe. Plan fields
// are nil when the action is HOLD or no stop could be placed.
type Evaluation struct {
	Score          float64
	MaxScore       float64
	Recommendation string
	Action         models.Action
	Confidence     string

	Entry           *float64
	StopLoss        *float64
	TakeProfit1     *float64
	TakeProfit2     *float64
	TakeProfit3     *float64
	RiskPct         *float64
	RewardPct       *float64
	RiskRewardRatio *float64

	Reasons []models.Reason
	Details []string
}

// ScoringEngine turns an indicator set and level set into a recommendation
// and trade plan. Pure: identical inputs always produce identical output.
type ScoringEngine struct {
	cfg config.ScoringConfig
}

func NewScoringEngine(cfg config.ScoringConfig) *ScoringEngine {
	return &ScoringEngine{cfg: cfg}
}

type vote struct {
	contribution float64
	reason       string
	tone         models.Tone
	detail       string
}

// Evaluate scores one timeframe. Every configured weight counts toward
// MaxScore whether or not its indicator voted; an indicator with
// insufficient history abstains (contributes zero) rather than voting.
func (e *ScoringEngine) Evaluate(price float64, ind models.IndicatorSet, levels models.LevelSet) Evaluation {
	w := e.cfg.Weights
	votes := []vote{
		e.voteTrend(ind, w.Trend),
		e.voteSMA50(price, ind, w.SMA50),
		e.voteMACD(ind, w.MACD),
		e.voteRSI(ind, w.RSI),
		e.voteADX(ind, w.ADX),
		e.voteBollinger(price, ind, w.Bollinger),
		e.voteVolume(ind, w.Volume),
		e.voteRiskReward(price, levels, w.RiskReward),
	}

	ev := Evaluation{MaxScore: e.cfg.MaxScore()}
	for _, v := range votes {
		ev.Score += v.contribution
		if v.reason != "" {
			ev.Reasons = append(ev.Reasons, models.Reason{Text: v.reason, Tone: v.tone})
		}
		if v.detail != "" {
			ev.Details = append(ev.Details, v.detail)
		}
	}

	normalized := 0.0
	if ev.MaxScore > 0 {
		normalized = ev.Score / ev.MaxScore
	}
	ev.Recommendation = e.recommend(normalized)
	ev.Action = actionFor(ev.Recommendation)
	ev.Confidence = e.confidence(normalized)

	if ev.Action != models.ActionHold {
		e.plan(&ev, price, ind, levels)
	}
	return ev
}

// recommend maps a normalized score in [-1,1] onto the recommendation scale.
func (e *ScoringEngine) recommend(normalized float64) string {
	t := e.cfg.Thresholds
	switch {
	case normalized >= t.Strong:
		return RecStrongBuy
	case normalized >= t.Plain:
		return RecBuy
	case normalized >= t.Weak:
		return RecWeakBuy
	case normalized <= -t.Strong:
		return RecStrongSell
	case normalized <= -t.Plain:
		return RecSell
	case normalized <= -t.Weak:
		return RecWeakSell
	default:
		return RecHold
	}
}

// confidence uses the same thresholds as the recommendation scale so the two
// labels shown to the user never disagree.
func (e *ScoringEngine) confidence(normalized float64) string {
	t := e.cfg.Thresholds
	abs := normalized
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= t.Strong:
		return "High"
	case abs >= t.Weak:
		return "Medium"
	default:
		return "Balanced"
	}
}

func actionFor(recommendation string) models.Action {
	switch recommendation {
	case RecStrongBuy, RecBuy, RecWeakBuy:
		return models.ActionBuy
	case RecStrongSell, RecSell, RecWeakSell:
		return models.ActionSell
	default:
		return models.ActionHold
	}
}

func (e *ScoringEngine) voteTrend(ind models.IndicatorSet, weight float64) vote {
	switch ind.Trend {
	case 1:
		return vote{
			contribution: weight,
			reason:       "Uptrend: fast average holding above slow average",
			tone:         models.TonePositive,
			detail:       "Trend: bullish (EMA21 > EMA55)",
		}
	case -1:
		return vote{
			contribution: -weight,
			reason:       "Downtrend: fast average holding below slow average",
			tone:         models.ToneNegative,
			detail:       "Trend: bearish (EMA21 < EMA55)",
		}
	default:
		return vote{
			reason: "Sideways market, no directional trend",
			tone:   models.ToneNeutral,
			detail: "Trend: neutral",
		}
	}
}

func (e *ScoringEngine) voteSMA50(price float64, ind models.IndicatorSet, weight float64) vote {
	if ind.SMA50 == nil {
		return vote{}
	}
	sma := *ind.SMA50
	detail := fmt.Sprintf("SMA50: %.2f", sma)
	if price > sma {
		return vote{
			contribution: weight,
			reason:       "Price above the 50-period average",
			tone:         models.TonePositive,
			detail:       detail,
		}
	}
	return vote{
		contribution: -weight,
		reason:       "Price below the 50-period average",
		tone:         models.ToneNegative,
		detail:       detail,
	}
}

func (e *ScoringEngine) voteMACD(ind models.IndicatorSet, weight float64) vote {
	if ind.MACD == nil || ind.MACDSignal == nil {
		return vote{}
	}
	macd, signal := *ind.MACD, *ind.MACDSignal
	detail := fmt.Sprintf("MACD: %.4f, signal: %.4f", macd, signal)
	if macd > signal {
		return vote{
			contribution: weight,
			reason:       "MACD above its signal line",
			tone:         models.TonePositive,
			detail:       detail,
		}
	}
	return vote{
		contribution: -weight,
		reason:       "MACD below its signal line",
		tone:         models.ToneNegative,
		detail:       detail,
	}
}

func (e *ScoringEngine) voteRSI(ind models.IndicatorSet, weight float64) vote {
	if ind.RSI == nil {
		return vote{}
	}
	rsi := *ind.RSI
	detail := fmt.Sprintf("RSI(14): %.1f", rsi)
	switch {
	case rsi <= 30:
		return vote{
			contribution: weight,
			reason:       "RSI oversold, bounce potential",
			tone:         models.TonePositive,
			detail:       detail,
		}
	case rsi >= 70:
		return vote{
			contribution: -weight,
			reason:       "RSI overbought, pullback risk",
			tone:         models.ToneNegative,
			detail:       detail,
		}
	case rsi >= e.cfg.RSIBullish:
		return vote{
			contribution: weight,
			reason:       "RSI shows bullish momentum",
			tone:         models.TonePositive,
			detail:       detail,
		}
	case rsi <= e.cfg.RSIBearish:
		return vote{
			contribution: -weight,
			reason:       "RSI shows bearish momentum",
			tone:         models.ToneNegative,
			detail:       detail,
		}
	default:
		return vote{
			reason: "RSI in neutral territory",
			tone:   models.ToneNeutral,
			detail: detail,
		}
	}
}

func (e *ScoringEngine) voteADX(ind models.IndicatorSet, weight float64) vote {
	if ind.ADX == nil {
		return vote{}
	}
	adx := *ind.ADX
	detail := fmt.Sprintf("ADX(14): %.1f", adx)
	if adx < e.cfg.ADXTrending || ind.Trend == 0 {
		return vote{
			reason: "No strong trend in force",
			tone:   models.ToneNeutral,
			detail: detail,
		}
	}
	if ind.Trend > 0 {
		return vote{
			contribution: weight,
			reason:       "Strong trend confirms the upside",
			tone:         models.TonePositive,
			detail:       detail,
		}
	}
	return vote{
		contribution: -weight,
		reason:       "Strong trend confirms the downside",
		tone:         models.ToneNegative,
		detail:       detail,
	}
}

func (e *ScoringEngine) voteBollinger(price float64, ind models.IndicatorSet, weight float64) vote {
	if ind.BBUpper == nil || ind.BBLower == nil {
		return vote{}
	}
	upper, lower := *ind.BBUpper, *ind.BBLower
	detail := fmt.Sprintf("Bollinger: %.2f / %.2f", lower, upper)
	switch {
	case price <= lower:
		return vote{
			contribution: weight,
			reason:       "Price at the lower Bollinger band",
			tone:         models.TonePositive,
			detail:       detail,
		}
	case price >= upper:
		return vote{
			contribution: -weight,
			reason:       "Price at the upper Bollinger band",
			tone:         models.ToneNegative,
			detail:       detail,
		}
	default:
		return vote{
			reason: "Price inside the Bollinger bands",
			tone:   models.ToneNeutral,
			detail: detail,
		}
	}
}

func (e *ScoringEngine) voteVolume(ind models.IndicatorSet, weight float64) vote {
	if ind.VolumeRatio == nil {
		return vote{}
	}
	ratio := *ind.VolumeRatio
	detail := fmt.Sprintf("Volume ratio: %.2fx", ratio)
	if ratio < 1.5 || ind.Trend == 0 {
		return vote{
			reason: "No unusual volume",
			tone:   models.ToneNeutral,
			detail: detail,
		}
	}
	if ind.Trend > 0 {
		return vote{
			contribution: weight,
			reason:       "Elevated volume backs the advance",
			tone:         models.TonePositive,
			detail:       detail,
		}
	}
	return vote{
		contribution: -weight,
		reason:       "Elevated volume backs the decline",
		tone:         models.ToneNegative,
		detail:       detail,
	}
}

// voteRiskReward compares the distance to the nearest resistance (reward for
// a long) against the distance to the nearest support (risk for a long).
func (e *ScoringEngine) voteRiskReward(price float64, levels models.LevelSet, weight float64) vote {
	if len(levels.Supports) == 0 || len(levels.Resistances) == 0 || price <= 0 {
		return vote{}
	}
	risk := price - levels.Supports[0]
	reward := levels.Resistances[0] - price
	if risk <= 0 {
		return vote{}
	}
	rr := reward / risk
	detail := fmt.Sprintf("Level R/R: %.2f", rr)
	switch {
	case rr >= e.cfg.RRAttractive:
		return vote{
			contribution: weight,
			reason:       "More room to the next resistance than to support",
			tone:         models.TonePositive,
			detail:       detail,
		}
	case rr <= 1/e.cfg.RRAttractive:
		return vote{
			contribution: -weight,
			reason:       "Next resistance is closer than support",
			tone:         models.ToneNegative,
			detail:       detail,
		}
	default:
		return vote{
			reason: "Balanced distance to nearby levels",
			tone:   models.ToneNeutral,
			detail: detail,
		}
	}
}

// plan fills in the trade plan. The stop is the nearest level on the risk
// side within ATRLevelMaxMultiple ATRs of entry, else an ATR-multiple offset.
// Take profits sit at 1x, 2x, and 3x the entry-to-stop distance, with the 2x
// target used for the headline risk:reward.
func (e *ScoringEngine) plan(ev *Evaluation, price float64, ind models.IndicatorSet, levels models.LevelSet) {
	var atr float64
	if ind.ATR != nil {
		atr = *ind.ATR
	}

	var stop float64
	switch ev.Action {
	case models.ActionBuy:
		if len(levels.Supports) > 0 && (atr <= 0 || price-levels.Supports[0] <= e.cfg.ATRLevelMaxMultiple*atr) {
			stop = levels.Supports[0]
		} else if atr > 0 {
			stop = price - e.cfg.ATRStopMultiple*atr
		}
	case models.ActionSell:
		if len(levels.Resistances) > 0 && (atr <= 0 || levels.Resistances[0]-price <= e.cfg.ATRLevelMaxMultiple*atr) {
			stop = levels.Resistances[0]
		} else if atr > 0 {
			stop = price + e.cfg.ATRStopMultiple*atr
		}
	}
	if stop <= 0 || stop == price {
		return
	}

	risk := price - stop
	if ev.Action == models.ActionSell {
		risk = stop - price
	}
	if risk <= 0 {
		return
	}

	dir := 1.0
	if ev.Action == models.ActionSell {
		dir = -1.0
	}
	tp1 := price + dir*risk
	tp2 := price + dir*2*risk
	tp3 := price + dir*3*risk

	riskPct, rewardPct, rr := planMetrics(price, stop, tp2)

	ev.Entry = &price
	ev.StopLoss = &stop
	ev.TakeProfit1 = &tp1
	ev.TakeProfit2 = &tp2
	ev.TakeProfit3 = &tp3
	ev.RiskPct = &riskPct
	ev.RewardPct = &rewardPct
	ev.RiskRewardRatio = rr
}

// planMetrics computes risk and reward percentages against the target, and
// their ratio. The ratio is nil, not infinite, when risk is zero.
func planMetrics(entry, stop, target float64) (riskPct, rewardPct float64, ratio *float64) {
	riskPct = abs(entry-stop) / entry * 100
	rewardPct = abs(target-entry) / entry * 100
	if riskPct > 0 {
		r := rewardPct / riskPct
		ratio = &r
	}
	return riskPct, rewardPct, ratio
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
