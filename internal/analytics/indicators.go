package analytics

import (
	"math"

	"SilverFetch/internal/domain/models"
)

// Standard lookbacks. These follow the conventional parameterization and are
// not configurable: scoring weights and thresholds are policy, lookbacks are
// part of the indicator definitions.
const (
	emaFastPeriod   = 12
	emaSlowPeriod   = 26
	macdSignalSpan  = 9
	smaMidPeriod    = 50
	smaLongPeriod   = 200
	rsiPeriod       = 14
	stochPeriod     = 14
	bollingerPeriod = 20
	bollingerDev    = 2.0
	atrPeriod       = 14
	adxPeriod       = 14
	volumePeriod    = 20
	trendFastSpan   = 21
	trendSlowSpan   = 55
)

// Result bundles the latest-candle indicator set with the per-candle series
// used for charting.
type Result struct {
	Set    models.IndicatorSet
	Series models.IndicatorSeries
}

// Compute evaluates the full indicator suite over an ascending candle window.
// It is a pure function: the same window always yields the same result.
// Indicators whose lookback exceeds the window are left nil in the set and
// NaN-padded in the series.
func Compute(candles []models.Candle) Result {
	n := len(candles)
	closes := make([]float64, n)
	highs := make([]float64, n)
	lows := make([]float64, n)
	volumes := make([]float64, n)
	for i, c := range candles {
		closes[i] = c.Close
		highs[i] = c.High
		lows[i] = c.Low
		volumes[i] = c.Volume
	}

	ema12 := emaSeries(closes, emaFastPeriod)
	ema26 := emaSeries(closes, emaSlowPeriod)
	sma50 := smaSeries(closes, smaMidPeriod)
	sma200 := smaSeries(closes, smaLongPeriod)
	rsi := rsiSeries(closes, rsiPeriod)
	macd, signal := macdSeries(closes)
	stoch := stochSeries(highs, lows, closes, stochPeriod)
	bbUpper, bbMiddle, bbLower := bollingerSeries(closes, bollingerPeriod, bollingerDev)
	atr := atrSeries(highs, lows, closes, atrPeriod)
	adx := adxSeries(highs, lows, closes, adxPeriod)
	volRatio := volumeRatioSeries(volumes, volumePeriod)

	set := models.IndicatorSet{
		EMA12:       last(ema12),
		EMA26:       last(ema26),
		SMA50:       last(sma50),
		SMA200:      last(sma200),
		RSI:         last(rsi),
		MACD:        last(macd),
		MACDSignal:  last(signal),
		StochK:      last(stoch),
		BBUpper:     last(bbUpper),
		BBMiddle:    last(bbMiddle),
		BBLower:     last(bbLower),
		ATR:         last(atr),
		ADX:         last(adx),
		Trend:       classifyTrend(closes),
		VolumeRatio: last(volRatio),
	}

	return Result{
		Set: set,
		Series: models.IndicatorSeries{
			EMA12:   ema12,
			EMA26:   ema26,
			SMA50:   sma50,
			BBUpper: bbUpper,
			BBLower: bbLower,
		},
	}
}

// last converts the tail of a NaN-padded series into a typed-optional value.
func last(series []float64) *float64 {
	if len(series) == 0 {
		return nil
	}
	v := series[len(series)-1]
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

// smaSeries returns the trailing-n arithmetic mean, NaN before index n-1.
func smaSeries(values []float64, period int) []float64 {
	out := nanSeries(len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// emaSeries returns recursive exponential smoothing with factor 2/(n+1),
// seeded by the SMA of the first n values.
func emaSeries(values []float64, period int) []float64 {
	out := nanSeries(len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	var seed float64
	for _, v := range values[:period] {
		seed += v
	}
	seed /= float64(period)
	out[period-1] = seed

	k := 2.0 / float64(period+1)
	prev := seed
	for i := period; i < len(values); i++ {
		prev = (values[i]-prev)*k + prev
		out[i] = prev
	}
	return out
}

// rsiSeries implements Wilder's RSI. When the smoothed loss is zero the value
// saturates at 100 (or 50 for a perfectly flat window).
func rsiSeries(closes []float64, period int) []float64 {
	out := nanSeries(len(closes))
	if len(closes) < period+1 {
		return out
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			avgGain += delta
		} else {
			avgLoss -= delta
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	for i := period + 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain > 0 {
			return 100
		}
		return 50
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// macdSeries returns the MACD line (EMA12 − EMA26) and its EMA9 signal line.
func macdSeries(closes []float64) (line, signal []float64) {
	n := len(closes)
	line = nanSeries(n)
	signal = nanSeries(n)

	fast := emaSeries(closes, emaFastPeriod)
	slow := emaSeries(closes, emaSlowPeriod)
	firstValid := -1
	for i := 0; i < n; i++ {
		if !math.IsNaN(fast[i]) && !math.IsNaN(slow[i]) {
			line[i] = fast[i] - slow[i]
			if firstValid < 0 {
				firstValid = i
			}
		}
	}
	if firstValid < 0 || n-firstValid < macdSignalSpan {
		return line, signal
	}

	// EMA of the MACD line, seeded by the SMA of its first 9 valid values.
	var seed float64
	for i := firstValid; i < firstValid+macdSignalSpan; i++ {
		seed += line[i]
	}
	seed /= float64(macdSignalSpan)
	idx := firstValid + macdSignalSpan - 1
	signal[idx] = seed

	k := 2.0 / float64(macdSignalSpan+1)
	prev := seed
	for i := idx + 1; i < n; i++ {
		prev = (line[i]-prev)*k + prev
		signal[i] = prev
	}
	return line, signal
}

// stochSeries computes the raw stochastic %K over the trailing period. A zero
// high-low range yields the midpoint 50.
func stochSeries(highs, lows, closes []float64, period int) []float64 {
	out := nanSeries(len(closes))
	if len(closes) < period {
		return out
	}
	for i := period - 1; i < len(closes); i++ {
		hh := highs[i]
		ll := lows[i]
		for j := i - period + 1; j < i; j++ {
			hh = math.Max(hh, highs[j])
			ll = math.Min(ll, lows[j])
		}
		if hh == ll {
			out[i] = 50
			continue
		}
		out[i] = (closes[i] - ll) / (hh - ll) * 100
	}
	return out
}

// bollingerSeries computes the middle SMA band with ±dev standard deviations.
func bollingerSeries(closes []float64, period int, dev float64) (upper, middle, lower []float64) {
	n := len(closes)
	upper = nanSeries(n)
	lower = nanSeries(n)
	middle = smaSeries(closes, period)
	if n < period {
		return upper, middle, lower
	}
	for i := period - 1; i < n; i++ {
		mean := middle[i]
		var variance float64
		for j := i - period + 1; j <= i; j++ {
			d := closes[j] - mean
			variance += d * d
		}
		sd := math.Sqrt(variance / float64(period))
		upper[i] = mean + dev*sd
		lower[i] = mean - dev*sd
	}
	return upper, middle, lower
}

// trueRange is max(high−low, |high−prevClose|, |low−prevClose|).
func trueRange(high, low, prevClose float64) float64 {
	tr := high - low
	tr = math.Max(tr, math.Abs(high-prevClose))
	return math.Max(tr, math.Abs(low-prevClose))
}

// atrSeries implements Wilder's smoothed average true range.
func atrSeries(highs, lows, closes []float64, period int) []float64 {
	out := nanSeries(len(closes))
	if len(closes) < period+1 {
		return out
	}
	var sum float64
	for i := 1; i <= period; i++ {
		sum += trueRange(highs[i], lows[i], closes[i-1])
	}
	prev := sum / float64(period)
	out[period] = prev
	for i := period + 1; i < len(closes); i++ {
		tr := trueRange(highs[i], lows[i], closes[i-1])
		prev = (prev*float64(period-1) + tr) / float64(period)
		out[i] = prev
	}
	return out
}

// adxSeries derives trend strength from Wilder-smoothed directional movement.
// The first defined value appears after 2×period candles.
func adxSeries(highs, lows, closes []float64, period int) []float64 {
	n := len(closes)
	out := nanSeries(n)
	if n < 2*period+1 {
		return out
	}

	// Wilder running sums of TR, +DM, −DM.
	var trSum, plusSum, minusSum float64
	for i := 1; i <= period; i++ {
		tr, plus, minus := directionalMovement(highs, lows, closes, i)
		trSum += tr
		plusSum += plus
		minusSum += minus
	}

	dx := nanSeries(n)
	dx[period] = dxValue(plusSum, minusSum, trSum)
	for i := period + 1; i < n; i++ {
		tr, plus, minus := directionalMovement(highs, lows, closes, i)
		trSum = trSum - trSum/float64(period) + tr
		plusSum = plusSum - plusSum/float64(period) + plus
		minusSum = minusSum - minusSum/float64(period) + minus
		dx[i] = dxValue(plusSum, minusSum, trSum)
	}

	// ADX = Wilder-smoothed DX.
	var seed float64
	for i := period; i < 2*period; i++ {
		seed += dx[i]
	}
	prev := seed / float64(period)
	out[2*period] = prev
	for i := 2*period + 1; i < n; i++ {
		prev = (prev*float64(period-1) + dx[i]) / float64(period)
		out[i] = prev
	}
	return out
}

func directionalMovement(highs, lows, closes []float64, i int) (tr, plusDM, minusDM float64) {
	up := highs[i] - highs[i-1]
	down := lows[i-1] - lows[i]
	if up > down && up > 0 {
		plusDM = up
	}
	if down > up && down > 0 {
		minusDM = down
	}
	return trueRange(highs[i], lows[i], closes[i-1]), plusDM, minusDM
}

func dxValue(plusSum, minusSum, trSum float64) float64 {
	if trSum == 0 {
		return 0
	}
	plusDI := 100 * plusSum / trSum
	minusDI := 100 * minusSum / trSum
	if plusDI+minusDI == 0 {
		return 0
	}
	return 100 * math.Abs(plusDI-minusDI) / (plusDI + minusDI)
}

// volumeRatioSeries is current volume over its trailing-n mean.
func volumeRatioSeries(volumes []float64, period int) []float64 {
	out := nanSeries(len(volumes))
	avg := smaSeries(volumes, period)
	for i := range volumes {
		if math.IsNaN(avg[i]) || avg[i] == 0 {
			continue
		}
		out[i] = volumes[i] / avg[i]
	}
	return out
}

// classifyTrend compares fast/slow EMAs with a 0.2% neutral band:
// +1 bullish, −1 bearish, 0 neutral or undecidable.
func classifyTrend(closes []float64) int {
	fast := emaSeries(closes, trendFastSpan)
	slow := emaSeries(closes, trendSlowSpan)
	f := last(fast)
	s := last(slow)
	if f == nil || s == nil {
		return 0
	}
	switch {
	case *f > *s*1.002:
		return 1
	case *f < *s*0.998:
		return -1
	default:
		return 0
	}
}

func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
