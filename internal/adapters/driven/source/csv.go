package source

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/vepctl/internal/core/domain"
	"github.com/custodia-labs/vepctl/internal/core/ports/driven"
)

// Ensure CSVSource implements the interface.
var _ driven.RecordSource = (*CSVSource)(nil)

// sniffDelimiters are tried, in order, when no delimiter is given.
var sniffDelimiters = []rune{',', '\t', '|', ';'}

// CSVSource streams rows of a delimited text file.
type CSVSource struct {
	name   string
	file   *os.File
	reader *csv.Reader
	header []string
}

// OpenCSV opens a delimited file. A zero delimiter is sniffed from the
// header line.
func OpenCSV(path string, delimiter rune) (*CSVSource, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	br := bufio.NewReader(f)
	if delimiter == 0 {
		delimiter = sniff(br)
	}

	r := csv.NewReader(br)
	r.Comma = delimiter
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		f.Close()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s is empty", domain.ErrInvalidInput, path)
		}
		return nil, fmt.Errorf("reading header of %s: %w", path, err)
	}

	return &CSVSource{
		name:   filepath.Base(path),
		file:   f,
		reader: r,
		header: cleanHeader(header),
	}, nil
}

// Name returns the file name.
func (s *CSVSource) Name() string { return s.name }

// Header returns the cleaned column names.
func (s *CSVSource) Header() []string { return s.header }

// Records streams every data row. Rows whose width differs from the header
// are reported on the error channel and skipped.
func (s *CSVSource) Records(ctx context.Context) (<-chan domain.RawRecord, <-chan error) {
	out := make(chan domain.RawRecord)
	errs := make(chan error, 16)

	go func() {
		defer close(out)
		defer close(errs)

		for {
			row, err := s.reader.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				var pe *csv.ParseError
				if !errors.As(err, &pe) {
					sendErr(ctx, errs, fmt.Errorf("%s: %w", s.name, err))
					return
				}
				if !sendErr(ctx, errs, fmt.Errorf("%s: %w", s.name, err)) {
					return
				}
				continue
			}
			line, _ := s.reader.FieldPos(0)
			if len(row) != len(s.header) {
				if !sendErr(ctx, errs, fmt.Errorf("%s line %d: %d fields, header has %d", s.name, line, len(row), len(s.header))) {
					return
				}
				continue
			}

			select {
			case out <- s.record(line, row):
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, errs
}

// Close closes the file.
func (s *CSVSource) Close() error {
	return s.file.Close()
}

func (s *CSVSource) record(line int, row []string) domain.RawRecord {
	fields := make(map[string]string, len(row))
	for i, v := range row {
		if s.header[i] == "" {
			continue
		}
		fields[s.header[i]] = v
	}
	return domain.RawRecord{Source: s.name, Line: line, Fields: fields}
}

// sniff picks the delimiter occurring most often in the first line.
func sniff(br *bufio.Reader) rune {
	peek, _ := br.Peek(4096)
	first := string(peek)
	if i := strings.IndexByte(first, '\n'); i >= 0 {
		first = first[:i]
	}
	best, bestN := sniffDelimiters[0], 0
	for _, d := range sniffDelimiters {
		if n := strings.Count(first, string(d)); n > bestN {
			best, bestN = d, n
		}
	}
	return best
}

// cleanHeader trims whitespace and a UTF-8 byte order mark.
func cleanHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		out[i] = strings.TrimSpace(h)
	}
	return out
}

// sendErr reports err unless ctx is done.
func sendErr(ctx context.Context, errs chan<- error, err error) bool {
	select {
	case errs <- err:
		return true
	case <-ctx.Done():
		return false
	}
}
