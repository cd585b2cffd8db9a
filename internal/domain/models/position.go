package models

import "time"

// Action is the trade direction derived from the recommendation.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// Tone tags a scoring reason as supporting, opposing, or neutral.
type Tone string

const (
	TonePositive Tone = "positive"
	ToneNegative Tone = "negative"
	ToneNeutral  Tone = "neutral"
)

// Reason is one human-readable scoring contribution, carried for display only.
type Reason struct {
	Text string `json:"text"`
	Tone Tone   `json:"tone"`
}

// Position is the per-timeframe signal published each cycle. It is created
// fresh by the scheduler and never mutated; the next cycle's Position for the
// same timeframe supersedes it wholesale.
type Position struct {
	Timeframe     string    `json:"timeframe"`
	TimeframeName string    `json:"timeframe_name"`
	Timestamp     time.Time `json:"timestamp"`
	CurrentPrice  float64   `json:"current_price"`

	Recommendation string  `json:"recommendation"`
	Action         Action  `json:"action"`
	Confidence     string  `json:"confidence"`
	Score          float64 `json:"score"`
	MaxScore       float64 `json:"max_score"`

	Entry           *float64 `json:"entry,omitempty"`
	StopLoss        *float64 `json:"stop_loss,omitempty"`
	TakeProfit1     *float64 `json:"take_profit_1,omitempty"`
	TakeProfit2     *float64 `json:"take_profit_2,omitempty"`
	TakeProfit3     *float64 `json:"take_profit_3,omitempty"`
	RiskPct         *float64 `json:"risk_pct,omitempty"`
	RewardPct       *float64 `json:"reward_pct,omitempty"`
	RiskRewardRatio *float64 `json:"risk_reward_ratio,omitempty"`

	Indicators       IndicatorSet `json:"technical_indicators"`
	SupportLevels    []float64    `json:"support_levels"`
	ResistanceLevels []float64    `json:"resistance_levels"`
	Reasons          []Reason     `json:"reasons"`
	TechnicalDetails []string     `json:"technical_details"`

	FearGreedValue          float64 `json:"fear_greed_value"`
	FearGreedClassification string  `json:"fear_greed_classification"`

	Chart ChartData `json:"chart_data"`
}
