package markov

import (
	"errors"
	"fmt"
	"time"

	"markovcast/internal/analyzer"
	"markovcast/pkg/model"
)

var (
	ErrInsufficientIntraday = errors.New("insufficient intraday data for prediction")
	ErrNoMatchingPatterns   = errors.New("no matching patterns found in trained model")
)

// PredictorConfig holds prediction settings
type PredictorConfig struct {
	MinCandles int
	Epsilon    float64
	Volatility analyzer.VolatilityBands
}

// Predictor matches a trading day against a trained model
type Predictor struct {
	config PredictorConfig
}

// NewPredictor creates a new predictor
func NewPredictor(cfg PredictorConfig) *Predictor {
	return &Predictor{config: cfg}
}

// Predict forecasts the direction of target from the candles of the trading
// day before it
func (p *Predictor) Predict(m *Model, previous model.TradingDay, target time.Time) (*model.Prediction, error) {
	n := len(previous.Candles)
	if n < p.config.MinCandles {
		return nil, fmt.Errorf("%w: %s has %d candles, need %d",
			ErrInsufficientIntraday, previous.Date.Format(model.DateLayout), n, p.config.MinCandles)
	}

	closes := make([]float64, n)
	for i, c := range previous.Candles {
		closes[i] = c.Close
	}
	moves := EncodeDay(closes, p.config.Epsilon)
	patterns := Windows(moves)

	var totalUp, totalDown, totalFlat float64
	matched := 0
	for _, pat := range patterns {
		d, ok := m.Lookup(pat)
		if !ok {
			continue
		}
		matched++
		totalUp += d.Up
		totalDown += d.Down
		totalFlat += d.Flat
	}

	if matched == 0 {
		return nil, ErrNoMatchingPatterns
	}

	total := totalUp + totalDown + totalFlat
	probs := model.Probabilities{
		Bullish: totalUp / total * 100,
		Bearish: totalDown / total * 100,
		Neutral: totalFlat / total * 100,
	}

	signal, confidence := analyzer.SelectSignal(probs.Bullish, probs.Bearish, probs.Neutral)
	score := analyzer.StrengthScore(confidence)
	strength := analyzer.StrengthTier(score)

	return &model.Prediction{
		TargetDate:       model.DateKey(target),
		PreviousDay:      previous.Date,
		PreviousCandles:  n,
		Signal:           signal,
		Confidence:       confidence,
		StrengthScore:    score,
		Strength:         strength,
		Probabilities:    probs,
		Momentum:         analyzer.Momentum(moves, Flat),
		Volatility:       analyzer.ClassifyVolatility(previous.Candles, p.config.Volatility),
		PatternsAnalyzed: len(patterns),
		PatternsMatched:  matched,
		MatchQuality:     float64(matched) / float64(len(patterns)) * 100,
		Action:           analyzer.Recommend(signal, strength),
	}, nil
}
