package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"markovcast/internal/markov"
	"markovcast/pkg/model"
)

func sampleReport(strength model.Tier) *model.Report {
	return &model.Report{
		GeneratedAt: time.Date(2024, 2, 1, 18, 30, 5, 0, time.UTC),
		Summary: model.TrainingSummary{
			Candles:             1250,
			TradingDays:         50,
			UniquePatterns:      27,
			AvgPatternFrequency: 46.185,
		},
		Prediction: model.Prediction{
			TargetDate:       time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC),
			PreviousDay:      time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			Signal:           model.Bullish,
			Confidence:       61.25,
			StrengthScore:    41.87,
			Strength:         strength,
			Probabilities:    model.Probabilities{Bullish: 61.25, Bearish: 30.5, Neutral: 8.25},
			Momentum:         model.Momentum{Consecutive: 3, Direction: "UP", Tier: model.Moderate},
			Volatility:       model.Volatility{ATR: 12.3456, Tier: model.HighVolatility},
			PatternsAnalyzed: 23,
			PatternsMatched:  20,
			MatchQuality:     20.0 / 23.0 * 100,
			Action:           model.Buy,
		},
	}
}

func TestRender(t *testing.T) {
	out := RenderString(sampleReport(model.Moderate))

	expected := []string{
		"MARKOV CHAIN INTRADAY PREDICTION SYSTEM - RESULTS",
		"Generated: 2024-02-01 18:30:05",
		"PREDICTION FOR: 2024-01-16",
		"BASED ON ANALYSIS OF: 2024-01-15",
		"Total Candles Analyzed: 1250",
		"Trading Days Covered: 50",
		"Unique Patterns Learned: 27",
		"Average Pattern Frequency: 46.2",
		"Primary Signal: BULLISH",
		"Confidence Level: 61.2%",
		"Signal Strength: Moderate (42/100)",
		"  • Bullish: 61.2%",
		"  • Bearish: 30.5%",
		"  • Neutral: 8.2%",
		"Momentum: Moderate",
		"  → 3 consecutive UP candles detected",
		"Volatility: High",
		"  → Average True Range: 12.35",
		"  → Implication: More volatile = less reliable",
		"Intraday Patterns Analyzed: 23",
		"Patterns Matched in Model: 20",
		"Match Quality: 87.0%",
		"Suggested Action: BUY / LONG",
		"Confidence in Signal: Moderate",
	}
	for _, line := range expected {
		assert.Contains(t, out, line+"\n")
	}
	assert.NotContains(t, out, "Warning")

	// sections appear in a fixed order
	order := []string{"TRAINING DATA SUMMARY", "MARKET TREND PREDICTION", "SUPPORTING INDICATORS", "PATTERN ANALYSIS", "RECOMMENDED ACTION"}
	last := -1
	for _, s := range order {
		idx := strings.Index(out, s)
		require.Greater(t, idx, last, s)
		last = idx
	}

	assert.True(t, strings.HasPrefix(out, strings.Repeat("=", 80)+"\n"))
	assert.True(t, strings.HasSuffix(out, strings.Repeat("=", 80)+"\n"))
}

func TestRenderWeakWarning(t *testing.T) {
	r := sampleReport(model.Weak)
	r.Prediction.Volatility.Tier = model.LowVolatility

	out := RenderString(r)
	assert.Contains(t, out, "⚠ Warning: Low confidence - consider waiting for stronger signal\n")
	assert.Contains(t, out, "Implication: Stable conditions")
}

func TestRenderDeterministic(t *testing.T) {
	a := RenderString(sampleReport(model.Strong))
	b := RenderString(sampleReport(model.Strong))
	assert.Equal(t, a, b)

	// only the generation line differs between runs
	r := sampleReport(model.Strong)
	r.GeneratedAt = r.GeneratedAt.Add(time.Hour)
	c := RenderString(r)

	var diff []string
	al, cl := strings.Split(a, "\n"), strings.Split(c, "\n")
	require.Equal(t, len(al), len(cl))
	for i := range al {
		if al[i] != cl[i] {
			diff = append(diff, cl[i])
		}
	}
	assert.Equal(t, []string{"Generated: 2024-02-01 19:30:05"}, diff)
}

func TestStoreSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "results")
	store := NewStore(dir, zerolog.Nop())
	r := sampleReport(model.Moderate)

	path, err := store.Save(r)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "prediction_2024-01-16_2024_02_01_183005.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, RenderString(r), string(data))
}

func TestStoreSaveJSON(t *testing.T) {
	dir := t.TempDir()
	r := sampleReport(model.Strong)

	path, err := NewStore(dir, zerolog.Nop()).SaveJSON(r)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "prediction_2024-01-16_2024_02_01_183005.json"), path)

	var printed bytes.Buffer
	require.NoError(t, WriteJSON(&printed, r))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, printed.String(), string(data))
}

func TestStoreSaveError(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	_, err := NewStore(filepath.Join(blocker, "results"), zerolog.Nop()).Save(sampleReport(model.Weak))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating results directory")
}

func TestRenderPatterns(t *testing.T) {
	upUpDown := markov.Pattern{markov.Up, markov.Up, markov.Down}
	allDown := markov.Pattern{markov.Down, markov.Down, markov.Down}
	allFlat := markov.Pattern{markov.Flat, markov.Flat, markov.Flat}
	m := markov.NewModel(map[markov.Pattern]markov.Counts{
		upUpDown: {Up: 3, Down: 1},
		allDown:  {Flat: 1},
		allFlat:  {Up: 1},
	})

	var buf bytes.Buffer
	require.NoError(t, RenderPatterns(&buf, m, m.Patterns()[:2]))
	out := buf.String()

	assert.Contains(t, out, "3 unique patterns, 6 observations")
	assert.Contains(t, out, "UP-UP-DOWN")
	assert.Contains(t, out, "75.0%")
	assert.Contains(t, out, "DOWN-DOWN-DOWN")
	assert.NotContains(t, out, "FLAT-FLAT-FLAT")
}

func TestRenderPatternDetail(t *testing.T) {
	upUpDown := markov.Pattern{markov.Up, markov.Up, markov.Down}
	m := markov.NewModel(map[markov.Pattern]markov.Counts{
		upUpDown: {Up: 3, Down: 1},
	})

	var buf bytes.Buffer
	require.NoError(t, RenderPatternDetail(&buf, m, upUpDown))
	out := buf.String()

	assert.Contains(t, out, "Pattern UP-UP-DOWN (4 observations)")
	// rows follow UP, DOWN, FLAT
	up, down, flat := strings.Index(out, "75.0%"), strings.Index(out, "25.0%"), strings.Index(out, " 0.0%")
	require.Greater(t, up, 0)
	assert.Less(t, up, down)
	assert.Less(t, down, flat)

	buf.Reset()
	require.NoError(t, RenderPatternDetail(&buf, m, markov.Pattern{markov.Flat, markov.Flat, markov.Flat}))
	assert.Contains(t, buf.String(), "FLAT-FLAT-FLAT was never observed")
}

func TestRenderScan(t *testing.T) {
	result := &model.ScanResult{
		TotalScanned: 3,
		Predicted:    1,
		Results:      []model.Prediction{sampleReport(model.Moderate).Prediction},
		Failures: map[string]string{
			"2024-01-18": "insufficient intraday data for prediction",
			"2024-01-15": "no previous day data available",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderScan(&buf, result))
	out := buf.String()

	assert.Contains(t, out, "2024-01-16")
	assert.Contains(t, out, "BUY / LONG")
	assert.Less(t, strings.Index(out, "2024-01-15:"), strings.Index(out, "2024-01-18:"))
	assert.Contains(t, out, "Predicted 1 of 3 dates")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleReport(model.Strong).Prediction))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "BULLISH", decoded["signal"])
	assert.Equal(t, "BUY / LONG", decoded["action"])
}
