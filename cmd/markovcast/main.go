package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"markovcast/internal/analyzer"
	"markovcast/internal/config"
	"markovcast/internal/dataset"
	"markovcast/internal/engine"
	"markovcast/internal/logger"
	"markovcast/internal/markov"
	"markovcast/internal/report"
	"markovcast/pkg/model"
)

var (
	cfgFile    string
	dataFile   string
	resultsDir string
	dateArg    string
	format     string
	epsilon    float64
	verbose    bool
)

var heavyRule = strings.Repeat("=", 80)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "markovcast",
		Short: "Markov chain next-day direction predictor for intraday candles",
		Long: `Markovcast trains a Markov chain on UP/DOWN/FLAT close-to-close movements
from a historical intraday file, then matches the movements of the trading day
before a chosen date against the trained patterns to predict its direction.

Examples:
  markovcast --data output_data/historical_data.txt
  markovcast --date 2024-01-16 --format json
  markovcast patterns --limit 10
  markovcast scan --from 2024-01-01 --to 2024-01-31`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runPredict,
	}

	// Flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "config.yaml", "config file path")
	pf.StringVar(&dataFile, "data", "", "historical data file (overrides config)")
	pf.Float64Var(&epsilon, "epsilon", 0, "treat close changes within +/- epsilon as FLAT (overrides config)")
	pf.StringVar(&format, "format", "text", "output format: text, json (predictions are saved in the same format)")
	pf.BoolVar(&verbose, "verbose", false, "show debug logs")

	rootCmd.Flags().StringVar(&resultsDir, "results", "", "results directory (overrides config)")
	rootCmd.Flags().StringVar(&dateArg, "date", "", "date to predict (YYYY-MM-DD); prompts when empty")

	rootCmd.AddCommand(newPatternsCmd(), newScanCmd())
	return rootCmd
}

// app holds everything built from configuration
type app struct {
	cfg    *config.Config
	log    zerolog.Logger
	engine *engine.Engine
	status io.Writer
}

func setup(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	// Override config with CLI flags
	if dataFile != "" {
		cfg.Data.File = dataFile
	}
	if resultsDir != "" {
		cfg.Report.Dir = resultsDir
	}
	if cmd.Flags().Changed("epsilon") {
		cfg.Model.FlatEpsilon = epsilon
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	if format != "text" && format != "json" {
		return nil, fmt.Errorf("unknown format %q (want text or json)", format)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	// JSON goes to stdout alone; progress lines move to stderr
	status := cmd.OutOrStdout()
	if format == "json" {
		status = cmd.ErrOrStderr()
	}

	eng := engine.New(engine.Config{
		Epsilon: cfg.Model.FlatEpsilon,
		Predictor: markov.PredictorConfig{
			MinCandles: cfg.Predictor.MinDayCandles,
			Volatility: analyzer.VolatilityBands{
				HighPct:   cfg.Predictor.HighVolatilityPct,
				MediumPct: cfg.Predictor.MediumVolatilityPct,
			},
		},
	}, log)

	return &app{cfg: cfg, log: log, engine: eng, status: status}, nil
}

// train loads the data file and builds the model, printing progress
func (a *app) train() (*engine.Session, error) {
	fmt.Fprintln(a.status, heavyRule)
	fmt.Fprintln(a.status, "MARKOV CHAIN INTRADAY PREDICTION SYSTEM")
	fmt.Fprintln(a.status, heavyRule)

	fmt.Fprintln(a.status, "\nLOADING DATA...")
	ds, err := dataset.NewLoader(a.log).Load(a.cfg.Data.File)
	if err != nil {
		return nil, fmt.Errorf("could not load data: %w", err)
	}
	fmt.Fprintf(a.status, "✓ Loaded %s candles covering %d trading days\n",
		humanize.Comma(int64(len(ds.Candles))), ds.DayCount())

	fmt.Fprintln(a.status, "\nTRAINING MARKOV MODEL...")
	session, err := a.engine.Train(ds)
	if err != nil {
		return nil, fmt.Errorf("model training failed: %w", err)
	}
	fmt.Fprintf(a.status, "✓ Trained on %d unique patterns\n", session.Summary.UniquePatterns)
	fmt.Fprintf(a.status, "✓ Average pattern frequency: %.1f\n", session.Summary.AvgPatternFrequency)

	return session, nil
}

func runPredict(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}

	session, err := a.train()
	if err != nil {
		return err
	}

	fmt.Fprintln(a.status, "\n"+heavyRule)
	fmt.Fprintln(a.status, "DATE SELECTION")
	fmt.Fprintln(a.status, heavyRule)
	fmt.Fprintf(a.status, "\nAvailable dates: %s to %s\n",
		session.Dataset.FirstDate().Format(model.DateLayout),
		session.Dataset.LastDate().Format(model.DateLayout))

	input := dateArg
	if input == "" {
		input, err = prompt(cmd.InOrStdin(), a.status, "\nEnter date to predict (YYYY-MM-DD): ")
		if err != nil {
			return err
		}
	}
	target, err := parseDate(input)
	if err != nil {
		return err
	}

	rep, err := session.Predict(target)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.status, "\n✓ Analyzing %d intraday candles from %s\n\n",
		rep.Prediction.PreviousCandles, rep.Prediction.PreviousDay.Format(model.DateLayout))

	store := report.NewStore(a.cfg.Report.Dir, a.log)
	var path string
	if format == "json" {
		if err := report.WriteJSON(cmd.OutOrStdout(), rep); err != nil {
			return err
		}
		path, err = store.SaveJSON(rep)
	} else {
		if err := report.Render(cmd.OutOrStdout(), rep); err != nil {
			return err
		}
		path, err = store.Save(rep)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.status, "\n✓ Prediction results saved to: %s\n", path)
	return nil
}

func prompt(in io.Reader, out io.Writer, question string) (string, error) {
	fmt.Fprint(out, question)
	sc := bufio.NewScanner(in)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", fmt.Errorf("reading date: %w", err)
		}
		return "", errors.New("no date entered")
	}
	return strings.TrimSpace(sc.Text()), nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(model.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format %q (want YYYY-MM-DD)", s)
	}
	return t, nil
}
