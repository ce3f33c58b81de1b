package model

import "time"

// Candle represents a single candlestick (OHLCV data)
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// TradingDay groups the intraday candles sharing one calendar date
type TradingDay struct {
	Date    time.Time `json:"date"` // midnight UTC of the calendar date
	Candles []Candle  `json:"candles"`
}

// DateKey returns the calendar date of t in its own location, at midnight UTC
func DateKey(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DateLayout is the YYYY-MM-DD format used for trading days
const DateLayout = "2006-01-02"

// Signal is the predicted direction for the next trading day
type Signal string

const (
	Bullish Signal = "BULLISH"
	Bearish Signal = "BEARISH"
	Neutral Signal = "NEUTRAL"
)

// Tier grades signal strength and momentum
type Tier string

const (
	Strong   Tier = "Strong"
	Moderate Tier = "Moderate"
	Weak     Tier = "Weak"
)

// VolatilityTier grades the average candle range of a day
type VolatilityTier string

const (
	HighVolatility   VolatilityTier = "High"
	MediumVolatility VolatilityTier = "Medium"
	LowVolatility    VolatilityTier = "Low"
)

// Action is the suggested trade for the predicted day
type Action string

const (
	Buy  Action = "BUY / LONG"
	Sell Action = "SELL / SHORT"
	Hold Action = "HOLD / WAIT"
)

// Probabilities holds the normalized confidence per class, in percent
type Probabilities struct {
	Bullish float64 `json:"bullish"`
	Bearish float64 `json:"bearish"`
	Neutral float64 `json:"neutral"`
}

// Momentum describes the run of identical moves at the end of a day
type Momentum struct {
	Consecutive int    `json:"consecutive"`
	Direction   string `json:"direction"` // UP, DOWN or Mixed
	Tier        Tier   `json:"tier"`
}

// Volatility describes the average candle range of a day
type Volatility struct {
	ATR  float64        `json:"atr"`
	Tier VolatilityTier `json:"tier"`
}

// Prediction is the outcome of matching one trading day against a trained model
type Prediction struct {
	TargetDate       time.Time     `json:"target_date"`
	PreviousDay      time.Time     `json:"previous_day"`
	PreviousCandles  int           `json:"previous_candles"`
	Signal           Signal        `json:"signal"`
	Confidence       float64       `json:"confidence"`
	StrengthScore    float64       `json:"strength_score"`
	Strength         Tier          `json:"strength"`
	Probabilities    Probabilities `json:"probabilities"`
	Momentum         Momentum      `json:"momentum"`
	Volatility       Volatility    `json:"volatility"`
	PatternsAnalyzed int           `json:"patterns_analyzed"`
	PatternsMatched  int           `json:"patterns_matched"`
	MatchQuality     float64       `json:"match_quality"` // percent
	Action           Action        `json:"action"`
}

// TrainingSummary describes the data a model was trained on
type TrainingSummary struct {
	Candles             int     `json:"candles"`
	TradingDays         int     `json:"trading_days"`
	UniquePatterns      int     `json:"unique_patterns"`
	AvgPatternFrequency float64 `json:"avg_pattern_frequency"`
}

// Report bundles everything written to a prediction transcript
type Report struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Summary     TrainingSummary `json:"summary"`
	Prediction  Prediction      `json:"prediction"`
}

// ScanResult represents the output of predicting a range of dates
type ScanResult struct {
	TotalScanned int               `json:"total_scanned"`
	Predicted    int               `json:"predicted"`
	Results      []Prediction      `json:"results"`
	Failures     map[string]string `json:"failures,omitempty"` // date -> reason
	ScanTime     time.Duration     `json:"scan_time"`
}
