package analyzer

import (
	"math"
	"testing"

	"markovcast/pkg/model"
)

type move string

const (
	up   move = "UP"
	down move = "DOWN"
	flat move = "FLAT"
)

func TestMomentum(t *testing.T) {
	tests := []struct {
		name        string
		moves       []move
		consecutive int
		direction   string
		tier        model.Tier
	}{
		{"four ups at the tail", []move{down, flat, up, up, up, up}, 4, "UP", model.Strong},
		{"whole window down", []move{up, up, down, down, down, down, down}, 5, "DOWN", model.Strong},
		{"two downs", []move{up, up, up, down, down}, 2, "DOWN", model.Moderate},
		{"three ups", []move{flat, down, up, up, up}, 3, "UP", model.Moderate},
		{"alternating", []move{up, down, up, down, up}, 1, "Mixed", model.Weak},
		{"flat run is not momentum", []move{up, up, flat, flat, flat}, 1, "Mixed", model.Weak},
		{"window caps the run", []move{up, up, up, up, up, up, up, up}, 5, "UP", model.Strong},
		{"shorter than window", []move{down, down}, 2, "DOWN", model.Moderate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Momentum(tt.moves, flat)
			if m.Consecutive != tt.consecutive {
				t.Errorf("Expected %d consecutive, got %d", tt.consecutive, m.Consecutive)
			}
			if m.Direction != tt.direction {
				t.Errorf("Expected direction %s, got %s", tt.direction, m.Direction)
			}
			if m.Tier != tt.tier {
				t.Errorf("Expected tier %s, got %s", tt.tier, m.Tier)
			}
		})
	}
}

func TestMomentumEmpty(t *testing.T) {
	m := Momentum([]move{}, flat)
	if m.Tier != model.Weak || m.Direction != "Mixed" {
		t.Errorf("Expected weak mixed momentum, got %+v", m)
	}
}

func TestAverageRange(t *testing.T) {
	candles := []model.Candle{
		{High: 101, Low: 99, Close: 100},
		{High: 102, Low: 101, Close: 101.5},
		{High: 100, Low: 97, Close: 98},
	}

	atr := AverageRange(candles)
	expected := 2.0
	if math.Abs(atr-expected) > 1e-9 {
		t.Errorf("Expected average range %f, got %f", expected, atr)
	}

	if AverageRange(nil) != 0 {
		t.Error("Expected zero range for no candles")
	}
}

func TestClassifyVolatility(t *testing.T) {
	bands := VolatilityBands{HighPct: 2.0, MediumPct: 1.0}

	tests := []struct {
		name string
		rng  float64 // high-low per candle, close fixed at 100
		tier model.VolatilityTier
	}{
		{"high", 2.5, model.HighVolatility},
		{"exactly two percent is medium", 2.0, model.MediumVolatility},
		{"medium", 1.5, model.MediumVolatility},
		{"exactly one percent is low", 1.0, model.LowVolatility},
		{"low", 0.3, model.LowVolatility},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candles := make([]model.Candle, 10)
			for i := range candles {
				candles[i] = model.Candle{High: 100 + tt.rng/2, Low: 100 - tt.rng/2, Close: 100}
			}
			v := ClassifyVolatility(candles, bands)
			if v.Tier != tt.tier {
				t.Errorf("Expected %s volatility, got %s (atr=%f)", tt.tier, v.Tier, v.ATR)
			}
		})
	}
}
