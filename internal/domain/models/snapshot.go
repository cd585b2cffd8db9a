package models

import "time"

// Sentiment is the fear/greed reading derived from the base timeframe.
type Sentiment struct {
	Value          int    `json:"value"`
	Classification string `json:"classification"`
	IsExtremeFear  bool   `json:"is_extreme_fear"`
	IsExtremeGreed bool   `json:"is_extreme_greed"`
}

// Narrative is the external summary attached to each snapshot. Status is "ok"
// for a live summary, "fallback" when the service timed out or errored, and
// "placeholder" when no API key is configured.
type Narrative struct {
	Status   string `json:"status"`
	Headline string `json:"headline"`
	Body     string `json:"body"`
}

// TimeframeSignal is the compact per-timeframe entry included in the
// narrative request context.
type TimeframeSignal struct {
	Score  float64 `json:"score"`
	Action Action  `json:"action"`
}

// NarrativeRequest is the snapshot-derived context sent to the narrative
// service.
type NarrativeRequest struct {
	Price      float64                    `json:"price"`
	ChangePct  float64                    `json:"change_pct"`
	SpreadPct  *float64                   `json:"spread_pct,omitempty"`
	BestSignal *TimeframeSignal           `json:"best_signal,omitempty"`
	Timeframes map[string]TimeframeSignal `json:"timeframes"`
	Supports   []float64                  `json:"supports,omitempty"`
	Resists    []float64                  `json:"resistances,omitempty"`
}

// Snapshot is the complete published state for one scheduler cycle. It is
// owned by the scheduler, replaced atomically, and read-only to consumers.
type Snapshot struct {
	Timestamp time.Time  `json:"timestamp"`
	Positions []Position `json:"positions"`
	Quote     BlendedQuote `json:"spot_prices"`
	Sentiment Sentiment  `json:"fear_greed"`
	Narrative Narrative  `json:"summary"`

	// Degraded is set when a non-fatal upstream failure was absorbed this
	// cycle (stale quote, narrative fallback).
	Degraded bool `json:"degraded"`
}

// BestPosition returns the position with the highest score, or nil when the
// snapshot has none.
func (s *Snapshot) BestPosition() *Position {
	if len(s.Positions) == 0 {
		return nil
	}
	best := 0
	for i := range s.Positions {
		if s.Positions[i].Score > s.Positions[best].Score {
			best = i
		}
	}
	return &s.Positions[best]
}
