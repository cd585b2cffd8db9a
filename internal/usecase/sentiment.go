package usecase

import (
	"math"

	"SilverFetch/internal/domain/models"
)

// DeriveSentiment maps the base timeframe's RSI onto a 0-100 fear/greed
// reading. A nil RSI yields a neutral 50.
func DeriveSentiment(rsi *float64) models.Sentiment {
	value := 50
	if rsi != nil {
		value = int(math.Round(*rsi))
		if value < 0 {
			value = 0
		}
		if value > 100 {
			value = 100
		}
	}
	return models.Sentiment{
		Value:          value,
		Classification: classifySentiment(value),
		IsExtremeFear:  value <= 25,
		IsExtremeGreed: value >= 75,
	}
}

func classifySentiment(value int) string {
	switch {
	case value <= 30:
		return "Extreme Fear"
	case value <= 40:
		return "Fear"
	case value >= 70:
		return "Extreme Greed"
	case value >= 60:
		return "Greed"
	default:
		return "Neutral"
	}
}
