package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"markovcast/internal/markov"
	"markovcast/pkg/model"
)

// RenderPatterns prints the transition table rows for patterns, in the order
// given, under a summary of the whole model
func RenderPatterns(w io.Writer, m *markov.Model, patterns []markov.Pattern) error {
	fmt.Fprintf(w, "%d unique patterns, %s observations (avg %.1f per pattern)\n\n",
		m.Len(), humanize.Comma(int64(m.Observations())), m.AverageFrequency())

	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"Pattern", "Count", "Next UP", "Next DOWN", "Next FLAT"}),
	)
	for _, p := range patterns {
		d, _ := m.Lookup(p)
		table.Append([]string{
			p.String(),
			fmt.Sprintf("%d", m.Count(p).Total()),
			fmt.Sprintf("%.1f%%", d.Up*100),
			fmt.Sprintf("%.1f%%", d.Down*100),
			fmt.Sprintf("%.1f%%", d.Flat*100),
		})
	}
	return table.Render()
}

// RenderPatternDetail prints the observed outcomes of a single pattern
func RenderPatternDetail(w io.Writer, m *markov.Model, p markov.Pattern) error {
	d, ok := m.Lookup(p)
	if !ok {
		fmt.Fprintf(w, "Pattern %s was never observed in training data\n", p)
		return nil
	}
	counts := m.Count(p)

	fmt.Fprintf(w, "Pattern %s (%d observations)\n\n", p, counts.Total())
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"Next", "Count", "Probability"}),
	)
	for _, next := range markov.Movements {
		table.Append([]string{
			string(next),
			fmt.Sprintf("%d", counts.Get(next)),
			fmt.Sprintf("%.1f%%", d.Get(next)*100),
		})
	}
	return table.Render()
}

// RenderScan prints one row per predicted date followed by the skipped dates
func RenderScan(w io.Writer, result *model.ScanResult) error {
	if result.Predicted == 0 {
		fmt.Fprintln(w, "No dates could be predicted.")
	} else {
		table := tablewriter.NewTable(w,
			tablewriter.WithHeader([]string{"Date", "Based On", "Signal", "Conf", "Strength", "Momentum", "Volatility", "Match", "Action"}),
		)
		for _, p := range result.Results {
			table.Append([]string{
				p.TargetDate.Format(model.DateLayout),
				p.PreviousDay.Format(model.DateLayout),
				string(p.Signal),
				fmt.Sprintf("%.1f%%", p.Confidence),
				fmt.Sprintf("%s (%.0f)", p.Strength, p.StrengthScore),
				fmt.Sprintf("%s %d", p.Momentum.Tier, p.Momentum.Consecutive),
				string(p.Volatility.Tier),
				fmt.Sprintf("%d/%d", p.PatternsMatched, p.PatternsAnalyzed),
				string(p.Action),
			})
		}
		if err := table.Render(); err != nil {
			return err
		}
	}

	if len(result.Failures) > 0 {
		dates := make([]string, 0, len(result.Failures))
		for d := range result.Failures {
			dates = append(dates, d)
		}
		sort.Strings(dates)

		fmt.Fprintln(w, "\n--- Skipped Dates ---")
		for _, d := range dates {
			fmt.Fprintf(w, "  %s: %s\n", d, result.Failures[d])
		}
	}

	fmt.Fprintf(w, "\nPredicted %d of %d dates\n", result.Predicted, result.TotalScanned)
	return nil
}

// WriteJSON writes v as indented JSON
func WriteJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
