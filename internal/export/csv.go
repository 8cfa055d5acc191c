package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/MikeSquared-Agency/Strategist/internal/scoring"
)

const (
	HeaderFinalScore = "Final Score"
	HeaderScore      = "Score"

	// ResultsFile is the file name written inside each pair's directory.
	ResultsFile = "results.csv"
)

// WriteCSV writes a Strategy/<scoreHeader> table, one row per entry in result
// order. An empty scoreHeader defaults to "Final Score".
func WriteCSV(w io.Writer, result *scoring.Result, scoreHeader string) error {
	if scoreHeader == "" {
		scoreHeader = HeaderFinalScore
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Strategy", scoreHeader}); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}
	for _, e := range result.Entries {
		if err := cw.Write([]string{e.Strategy, strconv.FormatFloat(e.Score, 'f', -1, 64)}); err != nil {
			return fmt.Errorf("csv: write %s: %w", e.Strategy, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// FileSink writes each evaluation to <Dir>/<pair>/results.csv, replacing any
// previous export for the same pair.
type FileSink struct {
	Dir    string
	Header string
}

func NewFileSink(dir, header string) *FileSink {
	return &FileSink{Dir: dir, Header: header}
}

// Path returns the file an export for pair is written to.
func (s *FileSink) Path(pair string) string {
	return filepath.Join(s.Dir, SafeName(pair), ResultsFile)
}

// Write exports result for pair. The file is written to a temporary name and
// renamed into place, so a failed write never leaves a truncated export.
func (s *FileSink) Write(pair string, result *scoring.Result) (string, error) {
	path := s.Path(pair)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".results-*.csv")
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if err := WriteCSV(tmp, result, s.Header); err != nil {
		tmp.Close() //nolint:errcheck
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close export file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("move export into place: %w", err)
	}
	return path, nil
}

// SafeName turns an integration pair name into a single path segment.
func SafeName(pair string) string {
	pair = strings.TrimSpace(pair)
	if pair == "" {
		return "default"
	}
	var b strings.Builder
	for _, r := range pair {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	name := b.String()
	if strings.Trim(name, ".") == "" {
		return "default"
	}
	return name
}
