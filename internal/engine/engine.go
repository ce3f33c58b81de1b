package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"markovcast/internal/dataset"
	"markovcast/internal/markov"
	"markovcast/pkg/model"
)

// Config holds the pipeline settings
type Config struct {
	Epsilon   float64
	Predictor markov.PredictorConfig
}

// Engine trains a model from a dataset and runs predictions against it
type Engine struct {
	config Config
	log    zerolog.Logger
	now    func() time.Time
}

// New creates a new engine
func New(cfg Config, log zerolog.Logger) *Engine {
	cfg.Predictor.Epsilon = cfg.Epsilon
	return &Engine{
		config: cfg,
		log:    log,
		now:    time.Now,
	}
}

// Session is a model trained once from the full history of a dataset
type Session struct {
	Dataset *dataset.Dataset
	Model   *markov.Model
	Summary model.TrainingSummary

	predictor *markov.Predictor
	epsilon   float64
	log       zerolog.Logger
	now       func() time.Time
}

// Train builds the transition model from every candle in ds
func (e *Engine) Train(ds *dataset.Dataset) (*Session, error) {
	m, err := markov.Train(ds.Closes(), e.config.Epsilon)
	if err != nil {
		return nil, fmt.Errorf("training model: %w", err)
	}

	s := &Session{
		Dataset: ds,
		Model:   m,
		Summary: model.TrainingSummary{
			Candles:             len(ds.Candles),
			TradingDays:         ds.DayCount(),
			UniquePatterns:      m.Len(),
			AvgPatternFrequency: m.AverageFrequency(),
		},
		predictor: markov.NewPredictor(e.config.Predictor),
		epsilon:   e.config.Epsilon,
		log:       e.log,
		now:       e.now,
	}

	e.log.Debug().
		Int("patterns", m.Len()).
		Str("observations", humanize.Comma(int64(m.Observations()))).
		Float64("epsilon", e.config.Epsilon).
		Msg("trained transition model")

	return s, nil
}

// Predict forecasts target from the trading day before it
func (s *Session) Predict(target time.Time) (*model.Report, error) {
	previous, err := s.Dataset.PreviousDay(target)
	if err != nil {
		return nil, err
	}

	s.log.Debug().
		Str("target", target.Format(model.DateLayout)).
		Str("previous", previous.Date.Format(model.DateLayout)).
		Int("candles", len(previous.Candles)).
		Msg("analyzing previous day")

	pred, err := s.predictor.Predict(s.Model, previous, target)
	if err != nil {
		return nil, err
	}

	return &model.Report{
		GeneratedAt: s.now(),
		Summary:     s.Summary,
		Prediction:  *pred,
	}, nil
}

// DayPatterns returns the distinct learned patterns formed by the candles of
// date, in model order
func (s *Session) DayPatterns(date time.Time) ([]markov.Pattern, error) {
	day, ok := s.Dataset.Day(date)
	if !ok {
		return nil, fmt.Errorf("%s: %w", model.DateKey(date).Format(model.DateLayout), dataset.ErrDateNotInDataset)
	}

	closes := make([]float64, len(day.Candles))
	for i, c := range day.Candles {
		closes[i] = c.Close
	}
	seen := make(map[markov.Pattern]bool)
	for _, p := range markov.Windows(markov.EncodeDay(closes, s.epsilon)) {
		seen[p] = true
	}

	var patterns []markov.Pattern
	for _, p := range s.Model.Patterns() {
		if seen[p] {
			patterns = append(patterns, p)
		}
	}
	return patterns, nil
}

// ProgressCallback is called with progress updates
type ProgressCallback func(scanned, total int)

// Scan predicts every trading day in [from, to]. Dates that cannot be
// predicted are recorded as failures instead of stopping the scan.
func (s *Session) Scan(ctx context.Context, from, to time.Time, progress ProgressCallback) (*model.ScanResult, error) {
	start := time.Now()
	from, to = model.DateKey(from), model.DateKey(to)
	if to.Before(from) {
		return nil, fmt.Errorf("scan range end %s is before start %s",
			to.Format(model.DateLayout), from.Format(model.DateLayout))
	}

	var dates []time.Time
	for _, d := range s.Dataset.Days() {
		if !d.Date.Before(from) && !d.Date.After(to) {
			dates = append(dates, d.Date)
		}
	}

	result := &model.ScanResult{
		TotalScanned: len(dates),
		Results:      []model.Prediction{},
		Failures:     make(map[string]string),
	}

	for i, d := range dates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rep, err := s.Predict(d)
		if err != nil {
			result.Failures[d.Format(model.DateLayout)] = err.Error()
		} else {
			result.Results = append(result.Results, rep.Prediction)
		}

		if progress != nil {
			progress(i+1, len(dates))
		}
	}

	result.Predicted = len(result.Results)
	result.ScanTime = time.Since(start)

	s.log.Info().
		Int("dates", result.TotalScanned).
		Int("predicted", result.Predicted).
		Int("failed", len(result.Failures)).
		Msg("scan finished")

	return result, nil
}
