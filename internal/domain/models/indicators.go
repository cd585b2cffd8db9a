package models

// IndicatorSet holds the indicator values for the most recent candle of one
// timeframe. A nil pointer means the candle window was shorter than that
// indicator's lookback; scoring treats nil as an abstaining vote, never as a
// numeric value.
type IndicatorSet struct {
	EMA12       *float64 `json:"ema_12,omitempty"`
	EMA26       *float64 `json:"ema_26,omitempty"`
	SMA50       *float64 `json:"sma_50,omitempty"`
	SMA200      *float64 `json:"sma_200,omitempty"`
	RSI         *float64 `json:"rsi,omitempty"`
	MACD        *float64 `json:"macd,omitempty"`
	MACDSignal  *float64 `json:"macd_signal,omitempty"`
	StochK      *float64 `json:"stoch_k,omitempty"`
	BBUpper     *float64 `json:"bb_upper,omitempty"`
	BBMiddle    *float64 `json:"bb_middle,omitempty"`
	BBLower     *float64 `json:"bb_lower,omitempty"`
	ATR         *float64 `json:"atr,omitempty"`
	ADX         *float64 `json:"adx,omitempty"`
	Trend       int      `json:"trend"`
	VolumeRatio *float64 `json:"volume_ratio,omitempty"`
}

// IndicatorSeries carries per-candle indicator values aligned with the candle
// window, for charting. Slots before an indicator's lookback hold NaN.
type IndicatorSeries struct {
	EMA12   []float64
	EMA26   []float64
	SMA50   []float64
	BBUpper []float64
	BBLower []float64
}

// LevelSet holds detected support levels (below current price) and resistance
// levels (above it), each ordered nearest-first relative to current price.
type LevelSet struct {
	Supports    []float64 `json:"supports"`
	Resistances []float64 `json:"resistances"`
}

// ChartData is the trailing candle window with overlay series, shaped for the
// frontend chart. Overlay slots before an indicator's lookback are nil so the
// payload stays valid JSON; NaN never crosses the wire.
type ChartData struct {
	Timestamps []string   `json:"timestamps"`
	Close      []float64  `json:"close"`
	High       []float64  `json:"high"`
	Low        []float64  `json:"low"`
	Volume     []float64  `json:"volume"`
	EMA12      []*float64 `json:"ema_12"`
	EMA26      []*float64 `json:"ema_26"`
	SMA50      []*float64 `json:"sma_50"`
	BBUpper    []*float64 `json:"bb_upper"`
	BBLower    []*float64 `json:"bb_lower"`
}
