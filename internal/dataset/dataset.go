package dataset

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"markovcast/pkg/model"
)

var (
	ErrDateNotInDataset = errors.New("date not in dataset")
	ErrNoPreviousDay    = errors.New("no previous day data available")
)

// Dataset is a chronologically ordered candle series grouped into trading days
type Dataset struct {
	Path     string
	Strategy string // delimiter strategy that parsed the file
	Candles  []model.Candle
	Dropped  int // rows removed for missing values
	Skipped  int // malformed lines skipped by the whitespace strategy

	days  []model.TradingDay
	index map[string]int
}

// New builds a dataset from candles, sorting them by time
func New(candles []model.Candle) *Dataset {
	sorted := make([]model.Candle, len(candles))
	copy(sorted, candles)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time.Before(sorted[j].Time)
	})

	ds := &Dataset{
		Candles: sorted,
		index:   make(map[string]int),
	}

	for _, c := range sorted {
		key := model.DateKey(c.Time)
		k := key.Format(model.DateLayout)
		i, ok := ds.index[k]
		if !ok {
			i = len(ds.days)
			ds.index[k] = i
			ds.days = append(ds.days, model.TradingDay{Date: key})
		}
		ds.days[i].Candles = append(ds.days[i].Candles, c)
	}

	return ds
}

// Closes returns the close prices in chronological order
func (d *Dataset) Closes() []float64 {
	closes := make([]float64, len(d.Candles))
	for i, c := range d.Candles {
		closes[i] = c.Close
	}
	return closes
}

// Days returns the distinct trading days in chronological order
func (d *Dataset) Days() []model.TradingDay {
	return d.days
}

// DayCount returns the number of distinct trading days
func (d *Dataset) DayCount() int {
	return len(d.days)
}

// FirstDate returns the earliest trading day, or the zero time for an empty dataset
func (d *Dataset) FirstDate() time.Time {
	if len(d.days) == 0 {
		return time.Time{}
	}
	return d.days[0].Date
}

// LastDate returns the latest trading day, or the zero time for an empty dataset
func (d *Dataset) LastDate() time.Time {
	if len(d.days) == 0 {
		return time.Time{}
	}
	return d.days[len(d.days)-1].Date
}

// Day returns the trading day for a calendar date
func (d *Dataset) Day(date time.Time) (model.TradingDay, bool) {
	i, ok := d.index[model.DateKey(date).Format(model.DateLayout)]
	if !ok {
		return model.TradingDay{}, false
	}
	return d.days[i], true
}

// PreviousDay returns the trading day immediately before date in the dataset
func (d *Dataset) PreviousDay(date time.Time) (model.TradingDay, error) {
	k := model.DateKey(date).Format(model.DateLayout)
	i, ok := d.index[k]
	if !ok {
		return model.TradingDay{}, fmt.Errorf("%s: %w", k, ErrDateNotInDataset)
	}
	if i == 0 {
		return model.TradingDay{}, fmt.Errorf("%s is the first available date: %w", k, ErrNoPreviousDay)
	}
	return d.days[i-1], nil
}
