package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"markovcast/internal/markov"
	"markovcast/internal/report"
	"markovcast/pkg/model"
)

var (
	patternLimit int
	patternArg   string
	patternDay   string
	scanFrom     string
	scanTo       string
)

func newPatternsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Train on the data file and print the transition table",
		RunE:  runPatterns,
	}
	cmd.Flags().IntVar(&patternLimit, "limit", 0, "show only the N most frequent patterns (0 = all)")
	cmd.Flags().StringVar(&patternArg, "pattern", "", "show the outcomes of one pattern, e.g. UP-UP-DOWN")
	cmd.Flags().StringVar(&patternDay, "date", "", "only show patterns formed on this trading day (YYYY-MM-DD)")
	return cmd
}

func runPatterns(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}

	var single markov.Pattern
	if patternArg != "" {
		if single, err = markov.ParsePattern(patternArg); err != nil {
			return err
		}
	}

	session, err := a.train()
	if err != nil {
		return err
	}
	fmt.Fprintln(a.status)

	if patternArg != "" {
		if format == "json" {
			counts := session.Model.Count(single)
			d, _ := session.Model.Lookup(single)
			return report.WriteJSON(cmd.OutOrStdout(), newPatternRow(single, counts, d))
		}
		return report.RenderPatternDetail(cmd.OutOrStdout(), session.Model, single)
	}

	patterns := session.Model.Patterns()
	if patternDay != "" {
		date, err := parseDate(patternDay)
		if err != nil {
			return err
		}
		if patterns, err = session.DayPatterns(date); err != nil {
			return err
		}
	}
	if patternLimit > 0 && len(patterns) > patternLimit {
		patterns = patterns[:patternLimit]
	}

	if format == "json" {
		rows := make([]patternRow, 0, len(patterns))
		for _, p := range patterns {
			d, _ := session.Model.Lookup(p)
			rows = append(rows, newPatternRow(p, session.Model.Count(p), d))
		}
		return report.WriteJSON(cmd.OutOrStdout(), rows)
	}

	return report.RenderPatterns(cmd.OutOrStdout(), session.Model, patterns)
}

type patternRow struct {
	Pattern string  `json:"pattern"`
	Count   int     `json:"count"`
	Up      float64 `json:"up"`
	Down    float64 `json:"down"`
	Flat    float64 `json:"flat"`
}

func newPatternRow(p markov.Pattern, c markov.Counts, d markov.Distribution) patternRow {
	return patternRow{
		Pattern: p.String(),
		Count:   c.Total(),
		Up:      d.Up,
		Down:    d.Down,
		Flat:    d.Flat,
	}
}

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Predict every trading day in a date range",
		Long: `Scan trains once, then predicts each trading day between --from and --to
(inclusive). Dates that cannot be predicted are listed instead of aborting.`,
		RunE: runScan,
	}
	cmd.Flags().StringVar(&scanFrom, "from", "", "first date to predict (default: first date in data)")
	cmd.Flags().StringVar(&scanTo, "to", "", "last date to predict (default: last date in data)")
	return cmd
}

func runScan(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}

	session, err := a.train()
	if err != nil {
		return err
	}

	from, to := session.Dataset.FirstDate(), session.Dataset.LastDate()
	if scanFrom != "" {
		if from, err = parseDate(scanFrom); err != nil {
			return err
		}
	}
	if scanTo != "" {
		if to, err = parseDate(scanTo); err != nil {
			return err
		}
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Handle interrupt
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(cmd.ErrOrStderr(), "\nInterrupted. Stopping scan...")
			cancel()
		case <-ctx.Done():
		}
	}()

	fmt.Fprintf(a.status, "\nScanning %s to %s...\n\n", from.Format(model.DateLayout), to.Format(model.DateLayout))

	var bar *progressbar.ProgressBar
	result, err := session.Scan(ctx, from, to, func(scanned, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(cmd.ErrOrStderr()),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetDescription("Scanning"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "█",
					SaucerHead:    "█",
					SaucerPadding: "░",
					BarStart:      "[",
					BarEnd:        "]",
				}),
			)
		}
		bar.Set(scanned)
	})
	if bar != nil {
		bar.Finish()
		fmt.Fprintln(cmd.ErrOrStderr())
	}
	if err != nil {
		return fmt.Errorf("scanning: %w", err)
	}

	if format == "json" {
		return report.WriteJSON(cmd.OutOrStdout(), result)
	}
	return report.RenderScan(cmd.OutOrStdout(), result)
}
