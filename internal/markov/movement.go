package markov

import (
	"fmt"
	"strings"
)

// Movement classifies one close-to-close change
type Movement string

const (
	Up   Movement = "UP"
	Down Movement = "DOWN"
	Flat Movement = "FLAT"
)

// Movements lists every symbol in evaluation order
var Movements = [...]Movement{Up, Down, Flat}

// Classify compares cur against prev. Changes within +/- epsilon are FLAT;
// with epsilon 0 only an exact tie is FLAT.
func Classify(prev, cur, epsilon float64) Movement {
	switch diff := cur - prev; {
	case diff > epsilon:
		return Up
	case diff < -epsilon:
		return Down
	default:
		return Flat
	}
}

// Encode converts N closes into N-1 movements
func Encode(closes []float64, epsilon float64) []Movement {
	if len(closes) < 2 {
		return nil
	}
	moves := make([]Movement, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		moves[i-1] = Classify(closes[i-1], closes[i], epsilon)
	}
	return moves
}

// EncodeDay converts a single day's closes into one movement per candle.
// The first candle has no predecessor within the day and is FLAT.
func EncodeDay(closes []float64, epsilon float64) []Movement {
	if len(closes) == 0 {
		return nil
	}
	return append([]Movement{Flat}, Encode(closes, epsilon)...)
}

// PatternLength is the lookback window of the chain
const PatternLength = 3

// Pattern is an ordered window of consecutive movements
type Pattern [PatternLength]Movement

func (p Pattern) String() string {
	return string(p[0]) + "-" + string(p[1]) + "-" + string(p[2])
}

// ParsePattern parses the "UP-UP-DOWN" form produced by String
func ParsePattern(s string) (Pattern, error) {
	parts := strings.Split(strings.ToUpper(strings.TrimSpace(s)), "-")
	if len(parts) != PatternLength {
		return Pattern{}, fmt.Errorf("pattern %q: expected %d movements", s, PatternLength)
	}
	var p Pattern
	for i, part := range parts {
		switch m := Movement(part); m {
		case Up, Down, Flat:
			p[i] = m
		default:
			return Pattern{}, fmt.Errorf("pattern %q: unknown movement %q", s, part)
		}
	}
	return p, nil
}

// Windows returns every pattern ending at index PatternLength-1 onwards
func Windows(moves []Movement) []Pattern {
	if len(moves) < PatternLength {
		return nil
	}
	patterns := make([]Pattern, 0, len(moves)-PatternLength+1)
	for i := PatternLength - 1; i < len(moves); i++ {
		patterns = append(patterns, Pattern{moves[i-2], moves[i-1], moves[i]})
	}
	return patterns
}
