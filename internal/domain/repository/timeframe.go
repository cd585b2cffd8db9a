package repository

import "time"

// Timeframe identifies a candle granularity evaluated independently.
type Timeframe string

const (
	TF15m Timeframe = "15m"
	TF1h  Timeframe = "1h"
	TF4h  Timeframe = "4h"
	TF1d  Timeframe = "1d"
	TF1w  Timeframe = "1w"
)

// IsValidTimeframe returns true if tf is a supported timeframe.
func IsValidTimeframe(tf Timeframe) bool {
	switch tf {
	case TF15m, TF1h, TF4h, TF1d, TF1w:
		return true
	default:
		return false
	}
}

// DefaultTimeframe returns the base timeframe used for sentiment derivation.
func DefaultTimeframe() Timeframe { return TF1h }

// Step returns the candle interval for the timeframe.
func (tf Timeframe) Step() time.Duration {
	switch tf {
	case TF15m:
		return 15 * time.Minute
	case TF1h:
		return time.Hour
	case TF4h:
		return 4 * time.Hour
	case TF1d:
		return 24 * time.Hour
	case TF1w:
		return 7 * 24 * time.Hour
	default:
		return time.Hour
	}
}
