package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"markovcast/pkg/model"
)

// fileTimestamp is the generation-time suffix of transcript file names
const fileTimestamp = "2006_01_02_150405"

// Store persists prediction transcripts to a results directory
type Store struct {
	dir string
	log zerolog.Logger
}

// NewStore creates a store writing into dir. The directory is created on
// first save.
func NewStore(dir string, log zerolog.Logger) *Store {
	return &Store{dir: dir, log: log}
}

// FileName returns prediction_<date>_<generated>.<ext> for a report
func FileName(r *model.Report, ext string) string {
	return fmt.Sprintf("prediction_%s_%s.%s",
		r.Prediction.TargetDate.Format(model.DateLayout),
		r.GeneratedAt.Format(fileTimestamp), ext)
}

// Save writes the text transcript of r and returns its path
func (s *Store) Save(r *model.Report) (string, error) {
	return s.write(r, "txt", []byte(RenderString(r)))
}

// SaveJSON writes r in the same JSON form WriteJSON prints and returns its path
func (s *Store) SaveJSON(r *model.Report) (string, error) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, r); err != nil {
		return "", fmt.Errorf("encoding report: %w", err)
	}
	return s.write(r, "json", buf.Bytes())
}

func (s *Store) write(r *model.Report, ext string, data []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("creating results directory: %w", err)
	}

	path := filepath.Join(s.dir, FileName(r, ext))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing results file: %w", err)
	}

	s.log.Debug().
		Str("path", path).
		Str("size", humanize.Bytes(uint64(len(data)))).
		Time("generated", r.GeneratedAt.Truncate(time.Second)).
		Msg("saved prediction transcript")

	return path, nil
}
