package dataset

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"markovcast/pkg/model"
)

var (
	ErrFileNotFound  = errors.New("data file not found")
	ErrUnparseable   = errors.New("could not parse data file with any delimiter")
	ErrMissingClose  = errors.New("'Close' column not found in data")
	ErrMissingColumn = errors.New("required column not found in data")
)

// timeLayouts are tried in order when parsing the Date column
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

var missingValues = map[string]bool{
	"":     true,
	"nan":  true,
	"na":   true,
	"n/a":  true,
	"null": true,
	"none": true,
	"nat":  true,
	"<na>": true,
}

// table is a parsed delimited file before schema validation
type table struct {
	strategy string
	header   []string
	rows     [][]string
	lines    []int
	skipped  int
}

// strategy parses raw file content into a table
type strategy struct {
	name  string
	parse func(data []byte) (*table, error)
}

// Loader reads OHLCV history from delimited text files
type Loader struct {
	log        zerolog.Logger
	strategies []strategy
}

// NewLoader creates a new loader
func NewLoader(log zerolog.Logger) *Loader {
	return &Loader{
		log: log,
		strategies: []strategy{
			{name: "tab", parse: delimited("tab", '\t')},
			{name: "comma", parse: delimited("comma", ',')},
			{name: "whitespace", parse: whitespace},
		},
	}
}

// Load reads, validates and orders the candles in path
func (l *Loader) Load(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at '%s'", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("reading data file: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	var tbl *table
	for _, s := range l.strategies {
		t, err := s.parse(data)
		if err != nil {
			l.log.Debug().Str("strategy", s.name).Err(err).Msg("delimiter strategy failed")
			continue
		}
		tbl = t
		break
	}
	if tbl == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrUnparseable)
	}

	candles, dropped, err := toCandles(tbl)
	if err != nil {
		return nil, err
	}

	ds := New(candles)
	ds.Path = path
	ds.Strategy = tbl.strategy
	ds.Dropped = dropped
	ds.Skipped = tbl.skipped

	l.log.Info().
		Str("file", path).
		Str("delimiter", tbl.strategy).
		Str("candles", humanize.Comma(int64(len(ds.Candles)))).
		Int("days", ds.DayCount()).
		Int("dropped", dropped).
		Int("skipped", tbl.skipped).
		Msg("loaded historical data")

	return ds, nil
}

// delimited parses data with a single-rune separator. Short rows are padded
// with empty cells so they are dropped as incomplete; a row longer than the
// header fails the strategy.
func delimited(name string, sep rune) func([]byte) (*table, error) {
	return func(data []byte) (*table, error) {
		r := csv.NewReader(bytes.NewReader(data))
		r.Comma = sep
		r.LazyQuotes = true
		r.FieldsPerRecord = -1

		header, err := r.Read()
		if err != nil {
			return nil, fmt.Errorf("reading header: %w", err)
		}
		if len(header) < 2 {
			return nil, fmt.Errorf("header has %d column(s)", len(header))
		}

		t := &table{strategy: name, header: header}
		for {
			rec, err := r.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, err
			}
			line, _ := r.FieldPos(0)
			if len(rec) > len(header) {
				return nil, fmt.Errorf("line %d: expected %d fields, saw %d", line, len(header), len(rec))
			}
			for len(rec) < len(header) {
				rec = append(rec, "")
			}
			t.rows = append(t.rows, rec)
			t.lines = append(t.lines, line)
		}
		return t, nil
	}
}

// whitespace splits lines on runs of blanks, skipping rows whose field count
// differs from the header
func whitespace(data []byte) (*table, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	t := &table{strategy: "whitespace"}
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if t.header == nil {
			t.header = fields
			continue
		}
		if len(fields) != len(t.header) {
			t.skipped++
			continue
		}
		t.rows = append(t.rows, fields)
		t.lines = append(t.lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(t.header) < 2 {
		return nil, fmt.Errorf("header has %d column(s)", len(t.header))
	}
	return t, nil
}

// columns maps canonical column names to their index in the header
type columns map[string]int

func normalizeHeader(header []string) columns {
	cols := make(columns, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if _, dup := cols[h]; !dup {
			cols[h] = i
		}
	}

	if _, ok := cols["Date"]; !ok {
		if i, ok := cols["Datetime"]; ok {
			cols["Date"] = i
		} else if first := strings.TrimSpace(header[0]); first == "" || first == "index" || first == "Unnamed: 0" {
			cols["Date"] = 0
		}
	}
	return cols
}

func toCandles(t *table) ([]model.Candle, int, error) {
	cols := normalizeHeader(t.header)

	if _, ok := cols["Close"]; !ok {
		return nil, 0, ErrMissingClose
	}
	for _, name := range []string{"Date", "High", "Low"} {
		if _, ok := cols[name]; !ok {
			return nil, 0, fmt.Errorf("%w: '%s'", ErrMissingColumn, name)
		}
	}
	openIdx, hasOpen := cols["Open"]
	volIdx, hasVol := cols["Volume"]

	candles := make([]model.Candle, 0, len(t.rows))
	dropped := 0
	for n, row := range t.rows {
		if hasMissing(row) {
			dropped++
			continue
		}
		line := t.lines[n]

		ts, err := parseTime(row[cols["Date"]])
		if err != nil {
			return nil, 0, fmt.Errorf("line %d: %w", line, err)
		}

		c := model.Candle{Time: ts}
		if c.Close, err = parseFloat(row, cols["Close"], "Close", line); err != nil {
			return nil, 0, err
		}
		if c.High, err = parseFloat(row, cols["High"], "High", line); err != nil {
			return nil, 0, err
		}
		if c.Low, err = parseFloat(row, cols["Low"], "Low", line); err != nil {
			return nil, 0, err
		}
		c.Open = c.Close
		if hasOpen {
			if c.Open, err = parseFloat(row, openIdx, "Open", line); err != nil {
				return nil, 0, err
			}
		}
		if hasVol {
			v, err := parseFloat(row, volIdx, "Volume", line)
			if err != nil {
				return nil, 0, err
			}
			c.Volume = int64(v)
		}

		candles = append(candles, c)
	}

	return candles, dropped, nil
}

func hasMissing(row []string) bool {
	for _, v := range row {
		if missingValues[strings.ToLower(strings.TrimSpace(v))] {
			return true
		}
	}
	return false
}

func parseFloat(row []string, idx int, name string, line int) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(row[idx]), 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("line %d: invalid %s value %q", line, name, row[idx])
	}
	return v, nil
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid Date value %q", s)
}
