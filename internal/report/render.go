package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"markovcast/pkg/model"
)

const (
	width         = 80
	GeneratedTime = "2006-01-02 15:04:05"
	title         = "MARKOV CHAIN INTRADAY PREDICTION SYSTEM - RESULTS"
)

var (
	heavyRule = strings.Repeat("=", width)
	lightRule = strings.Repeat("─", width)
)

// Render writes the prediction transcript. The output depends only on the
// report, so identical reports render byte-identical text.
func Render(w io.Writer, r *model.Report) error {
	bw := bufio.NewWriter(w)
	p := r.Prediction
	s := r.Summary

	fmt.Fprintln(bw, heavyRule)
	fmt.Fprintln(bw, title)
	fmt.Fprintln(bw, heavyRule)
	fmt.Fprintln(bw)
	fmt.Fprintf(bw, "Generated: %s\n\n", r.GeneratedAt.Format(GeneratedTime))

	fmt.Fprintf(bw, "PREDICTION FOR: %s\n", p.TargetDate.Format(model.DateLayout))
	fmt.Fprintf(bw, "BASED ON ANALYSIS OF: %s\n\n", p.PreviousDay.Format(model.DateLayout))

	section(bw, "TRAINING DATA SUMMARY")
	fmt.Fprintf(bw, "Total Candles Analyzed: %d\n", s.Candles)
	fmt.Fprintf(bw, "Trading Days Covered: %d\n", s.TradingDays)
	fmt.Fprintf(bw, "Unique Patterns Learned: %d\n", s.UniquePatterns)
	fmt.Fprintf(bw, "Average Pattern Frequency: %.1f\n\n", s.AvgPatternFrequency)

	section(bw, "MARKET TREND PREDICTION")
	fmt.Fprintf(bw, "\nPrimary Signal: %s\n", p.Signal)
	fmt.Fprintf(bw, "Confidence Level: %.1f%%\n", p.Confidence)
	fmt.Fprintf(bw, "Signal Strength: %s (%.0f/100)\n\n", p.Strength, p.StrengthScore)
	fmt.Fprintln(bw, "Probability Breakdown:")
	fmt.Fprintf(bw, "  • Bullish: %.1f%%\n", p.Probabilities.Bullish)
	fmt.Fprintf(bw, "  • Bearish: %.1f%%\n", p.Probabilities.Bearish)
	fmt.Fprintf(bw, "  • Neutral: %.1f%%\n\n", p.Probabilities.Neutral)

	section(bw, "SUPPORTING INDICATORS")
	fmt.Fprintf(bw, "\nMomentum: %s\n", p.Momentum.Tier)
	fmt.Fprintf(bw, "  → %d consecutive %s candles detected\n\n", p.Momentum.Consecutive, p.Momentum.Direction)
	fmt.Fprintf(bw, "Volatility: %s\n", p.Volatility.Tier)
	fmt.Fprintf(bw, "  → Average True Range: %.2f\n", p.Volatility.ATR)
	fmt.Fprintf(bw, "  → Implication: %s\n\n", implication(p.Volatility.Tier))

	section(bw, "PATTERN ANALYSIS")
	fmt.Fprintf(bw, "Intraday Patterns Analyzed: %d\n", p.PatternsAnalyzed)
	fmt.Fprintf(bw, "Patterns Matched in Model: %d\n", p.PatternsMatched)
	fmt.Fprintf(bw, "Match Quality: %.1f%%\n\n", p.MatchQuality)

	section(bw, "RECOMMENDED ACTION")
	fmt.Fprintf(bw, "\nSuggested Action: %s\n", p.Action)
	fmt.Fprintf(bw, "Confidence in Signal: %s\n", p.Strength)
	if p.Strength == model.Weak {
		fmt.Fprintln(bw, "⚠ Warning: Low confidence - consider waiting for stronger signal")
	}
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, heavyRule)

	return bw.Flush()
}

// RenderString renders the transcript into a string
func RenderString(r *model.Report) string {
	var sb strings.Builder
	_ = Render(&sb, r)
	return sb.String()
}

func section(w io.Writer, name string) {
	fmt.Fprintln(w, lightRule)
	fmt.Fprintln(w, name)
	fmt.Fprintln(w, lightRule)
}

func implication(tier model.VolatilityTier) string {
	if tier == model.HighVolatility {
		return "More volatile = less reliable"
	}
	return "Stable conditions"
}
