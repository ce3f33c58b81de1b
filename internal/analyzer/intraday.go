package analyzer

import (
	"markovcast/pkg/model"
)

// MomentumWindow is the number of trailing movements inspected for momentum
const MomentumWindow = 5

// VolatilityBands holds the average-range thresholds, as percent of the mean close
type VolatilityBands struct {
	HighPct   float64
	MediumPct float64
}

// Momentum counts the run of identical non-flat movements at the end of the
// last MomentumWindow movements
func Momentum[T ~string](moves []T, flat T) model.Momentum {
	if len(moves) == 0 {
		return model.Momentum{Consecutive: 0, Direction: "Mixed", Tier: model.Weak}
	}

	tail := moves
	if len(tail) > MomentumWindow {
		tail = tail[len(tail)-MomentumWindow:]
	}

	consecutive := 1
	for i := len(tail) - 1; i > 0; i-- {
		if tail[i] == tail[i-1] && tail[i] != flat {
			consecutive++
		} else {
			break
		}
	}

	m := model.Momentum{Consecutive: consecutive, Direction: "Mixed"}
	if consecutive > 1 {
		m.Direction = string(tail[len(tail)-1])
	}

	switch {
	case consecutive >= 4:
		m.Tier = model.Strong
	case consecutive >= 2:
		m.Tier = model.Moderate
	default:
		m.Tier = model.Weak
	}
	return m
}

// AverageRange returns the mean high-low range of the candles
func AverageRange(candles []model.Candle) float64 {
	if len(candles) == 0 {
		return 0
	}
	var sum float64
	for _, c := range candles {
		sum += c.High - c.Low
	}
	return sum / float64(len(candles))
}

// AverageClose returns the mean close of the candles
func AverageClose(candles []model.Candle) float64 {
	if len(candles) == 0 {
		return 0
	}
	var sum float64
	for _, c := range candles {
		sum += c.Close
	}
	return sum / float64(len(candles))
}

// ClassifyVolatility grades a day's average range against its mean close
func ClassifyVolatility(candles []model.Candle, bands VolatilityBands) model.Volatility {
	atr := AverageRange(candles)
	meanClose := AverageClose(candles)

	v := model.Volatility{ATR: atr}
	switch {
	case atr > meanClose*bands.HighPct/100:
		v.Tier = model.HighVolatility
	case atr > meanClose*bands.MediumPct/100:
		v.Tier = model.MediumVolatility
	default:
		v.Tier = model.LowVolatility
	}
	return v
}
