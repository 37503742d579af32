// Package export writes feature rows as CSV.
package export

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"sync"

	"github.com/fortuna/faceoff/internal/features"
)

// ErrHeaderMismatch is returned when an existing season file was written
// with a different column layout.
var ErrHeaderMismatch = errors.New("csv header does not match row schema")

// FileName returns the data set file for a season. The season still in
// progress gets a fixed name so consumers can find it without knowing
// the year.
func FileName(season, currentSeason int) string {
	if season == currentSeason {
		return "currentSeason.csv"
	}
	return fmt.Sprintf("%d.csv", season)
}

// CSVSink appends rows to one CSV file per season under a directory.
type CSVSink struct {
	dir           string
	headers       []string
	currentSeason int
	truncate      bool

	mu    sync.Mutex
	files map[int]*seasonFile
}

type seasonFile struct {
	f *os.File
	w *csv.Writer
}

// NewCSVSink creates dir if needed. With truncate set, each season file is
// rewritten from scratch on first use; otherwise rows are appended after
// checking the existing header.
func NewCSVSink(dir string, headers []string, currentSeason int, truncate bool) (*CSVSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}
	return &CSVSink{
		dir:           dir,
		headers:       headers,
		currentSeason: currentSeason,
		truncate:      truncate,
		files:         make(map[int]*seasonFile),
	}, nil
}

// Name identifies the sink in logs and metrics.
func (s *CSVSink) Name() string { return "csv" }

// Emit writes one row to its season's file and flushes it.
func (s *CSVSink) Emit(_ context.Context, row features.Row) error {
	if len(row.Values) != len(s.headers) {
		return fmt.Errorf("row for game %d has %d values, schema has %d", row.GameID, len(row.Values), len(s.headers))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sf, err := s.open(row.Season, s.truncate)
	if err != nil {
		return err
	}
	if err := sf.w.Write(formatValues(row.Values)); err != nil {
		return err
	}
	sf.w.Flush()
	return sf.w.Error()
}

// Reset empties each season's file down to the header, including seasons
// that will receive no rows. Rebuilds call it before the first run.
func (s *CSVSink) Reset(seasons []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, season := range seasons {
		if sf, ok := s.files[season]; ok {
			sf.w.Flush()
			sf.f.Close()
			delete(s.files, season)
		}
		if _, err := s.open(season, true); err != nil {
			return err
		}
	}
	return nil
}

func (s *CSVSink) open(season int, truncate bool) (*seasonFile, error) {
	if sf, ok := s.files[season]; ok {
		return sf, nil
	}

	path := filepath.Join(s.dir, FileName(season, s.currentSeason))
	flags := os.O_CREATE | os.O_RDWR
	if truncate {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	existing, err := csv.NewReader(f).Read()
	switch {
	case errors.Is(err, io.EOF):
		// Empty file: write the header.
		w := csv.NewWriter(f)
		if err := w.Write(s.headers); err != nil {
			f.Close()
			return nil, err
		}
		w.Flush()
		if err := w.Error(); err != nil {
			f.Close()
			return nil, err
		}
	case err != nil:
		f.Close()
		return nil, fmt.Errorf("reading header of %s: %w", path, err)
	case !slices.Equal(existing, s.headers):
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, ErrHeaderMismatch)
	}

	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		f.Close()
		return nil, err
	}

	sf := &seasonFile{f: f, w: csv.NewWriter(f)}
	s.files[season] = sf
	return sf, nil
}

// Close flushes and closes every open season file.
func (s *CSVSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for season, sf := range s.files {
		sf.w.Flush()
		if err := sf.w.Error(); err != nil {
			errs = append(errs, err)
		}
		if err := sf.f.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(s.files, season)
	}
	return errors.Join(errs...)
}

// WriterSink writes rows, prefixed by game id and season, to a single
// writer. The header is written before the first row.
type WriterSink struct {
	mu      sync.Mutex
	w       *csv.Writer
	headers []string
	started bool
}

// NewWriterSink writes to w.
func NewWriterSink(w io.Writer, headers []string) *WriterSink {
	return &WriterSink{w: csv.NewWriter(w), headers: headers}
}

// Name identifies the sink in logs and metrics.
func (s *WriterSink) Name() string { return "csv_writer" }

// Emit writes one row.
func (s *WriterSink) Emit(_ context.Context, row features.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		if err := s.w.Write(append([]string{"game_id", "season"}, s.headers...)); err != nil {
			return err
		}
		s.started = true
	}
	rec := append([]string{strconv.Itoa(row.GameID), strconv.Itoa(row.Season)}, formatValues(row.Values)...)
	if err := s.w.Write(rec); err != nil {
		return err
	}
	s.w.Flush()
	return s.w.Error()
}

// WriteAll emits rows in order.
func (s *WriterSink) WriteAll(ctx context.Context, rows []features.Row) error {
	for _, r := range rows {
		if err := s.Emit(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func formatValues(values []float64) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return out
}
