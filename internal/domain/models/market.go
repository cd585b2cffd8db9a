package models

import "time"

// Candle is one OHLCV bar for a timeframe. Candle series are append-only and
// ordered by ascending timestamp.
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// QuoteObservation is a single source's spot price reading. Observations are
// consumed by the aggregator and not retained individually.
type QuoteObservation struct {
	Source     string    `json:"source"`
	Price      float64   `json:"price"`
	Currency   string    `json:"currency"`
	ObservedAt time.Time `json:"observed_at"`
}

// BlendedQuote is the aggregator's consensus across successful observations.
// SpreadPct is nil when fewer than two sources succeeded. Confidence is in
// [0,1], rising with source count and falling with spread.
type BlendedQuote struct {
	Average    float64            `json:"average"`
	SpreadPct  *float64           `json:"spread_pct,omitempty"`
	ChangePct  float64            `json:"change_pct"`
	Confidence float64            `json:"confidence"`
	Sources    []QuoteObservation `json:"sources"`
	Timestamp  time.Time          `json:"timestamp"`
}

// SourceCount returns the number of observations that went into the blend.
func (q BlendedQuote) SourceCount() int { return len(q.Sources) }
