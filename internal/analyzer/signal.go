package analyzer

import (
	"math"

	"markovcast/pkg/model"
)

// SelectSignal picks the class with the highest confidence. Exact ties are
// resolved bullish first, then bearish.
func SelectSignal(up, down, flat float64) (model.Signal, float64) {
	best := math.Max(up, math.Max(down, flat))
	switch best {
	case up:
		return model.Bullish, up
	case down:
		return model.Bearish, down
	default:
		return model.Neutral, flat
	}
}

// StrengthScore maps the winning confidence (33.33..100) onto 0..100.
// The result is not clamped.
func StrengthScore(maxConfidence float64) float64 {
	return (maxConfidence - 33.33) / 66.67 * 100
}

// StrengthTier grades a strength score
func StrengthTier(score float64) model.Tier {
	switch {
	case score > 70:
		return model.Strong
	case score > 40:
		return model.Moderate
	default:
		return model.Weak
	}
}

// Recommend returns the suggested action for a signal and its strength
func Recommend(signal model.Signal, strength model.Tier) model.Action {
	actionable := strength == model.Strong || strength == model.Moderate
	switch {
	case signal == model.Bullish && actionable:
		return model.Buy
	case signal == model.Bearish && actionable:
		return model.Sell
	default:
		return model.Hold
	}
}
