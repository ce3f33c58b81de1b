package markov

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrInsufficientHistory = errors.New("need at least 4 rows of data")
	ErrEmptyModel          = errors.New("model training produced no patterns")
)

// MinHistory is the smallest close series that yields one pattern and its outcome
const MinHistory = PatternLength + 1

// Counts tallies the movements observed after a pattern
type Counts struct {
	Up   int `json:"up"`
	Down int `json:"down"`
	Flat int `json:"flat"`
}

// Add increments the counter for m
func (c *Counts) Add(m Movement) {
	switch m {
	case Up:
		c.Up++
	case Down:
		c.Down++
	default:
		c.Flat++
	}
}

// Get returns the count for m
func (c Counts) Get(m Movement) int {
	switch m {
	case Up:
		return c.Up
	case Down:
		return c.Down
	default:
		return c.Flat
	}
}

// Total returns the number of observations
func (c Counts) Total() int {
	return c.Up + c.Down + c.Flat
}

// Distribution returns the empirical probability of each next movement
func (c Counts) Distribution() Distribution {
	total := float64(c.Total())
	if total == 0 {
		return Distribution{}
	}
	return Distribution{
		Up:   float64(c.Up) / total,
		Down: float64(c.Down) / total,
		Flat: float64(c.Flat) / total,
	}
}

// Distribution is the probability of each movement following a pattern
type Distribution struct {
	Up   float64 `json:"up"`
	Down float64 `json:"down"`
	Flat float64 `json:"flat"`
}

// Get returns the probability of m
func (d Distribution) Get(m Movement) float64 {
	switch m {
	case Up:
		return d.Up
	case Down:
		return d.Down
	default:
		return d.Flat
	}
}

// Model maps each observed pattern to the distribution of the move that followed it.
// It is read-only once built.
type Model struct {
	counts      map[Pattern]Counts
	transitions map[Pattern]Distribution
}

// NewModel builds a model from raw counts. Patterns with no observations are
// left out.
func NewModel(counts map[Pattern]Counts) *Model {
	m := &Model{
		counts:      make(map[Pattern]Counts, len(counts)),
		transitions: make(map[Pattern]Distribution, len(counts)),
	}
	for p, c := range counts {
		if c.Total() == 0 {
			continue
		}
		m.counts[p] = c
		m.transitions[p] = c.Distribution()
	}
	return m
}

// Train builds the transition table from a full chronological close series.
// Every occurrence of a pattern carries equal weight.
func Train(closes []float64, epsilon float64) (*Model, error) {
	if len(closes) < MinHistory {
		return nil, fmt.Errorf("%w (got %d)", ErrInsufficientHistory, len(closes))
	}

	moves := Encode(closes, epsilon)

	counts := make(map[Pattern]Counts)
	for i := PatternLength; i < len(moves); i++ {
		p := Pattern{moves[i-3], moves[i-2], moves[i-1]}
		c := counts[p]
		c.Add(moves[i])
		counts[p] = c
	}

	m := NewModel(counts)
	if m.Len() == 0 {
		return nil, ErrEmptyModel
	}
	return m, nil
}

// Lookup returns the distribution following p, if p was observed
func (m *Model) Lookup(p Pattern) (Distribution, bool) {
	d, ok := m.transitions[p]
	return d, ok
}

// Count returns the raw outcome counts for p
func (m *Model) Count(p Pattern) Counts {
	return m.counts[p]
}

// Len returns the number of unique patterns
func (m *Model) Len() int {
	return len(m.transitions)
}

// Observations returns the total number of pattern/outcome pairs
func (m *Model) Observations() int {
	total := 0
	for _, c := range m.counts {
		total += c.Total()
	}
	return total
}

// AverageFrequency returns the mean number of observations per pattern
func (m *Model) AverageFrequency() float64 {
	if m.Len() == 0 {
		return 0
	}
	return float64(m.Observations()) / float64(m.Len())
}

// Patterns returns the observed patterns, most frequent first
func (m *Model) Patterns() []Pattern {
	patterns := make([]Pattern, 0, len(m.counts))
	for p := range m.counts {
		patterns = append(patterns, p)
	}
	sort.Slice(patterns, func(i, j int) bool {
		ci, cj := m.counts[patterns[i]].Total(), m.counts[patterns[j]].Total()
		if ci != cj {
			return ci > cj
		}
		return patterns[i].String() < patterns[j].String()
	})
	return patterns
}
