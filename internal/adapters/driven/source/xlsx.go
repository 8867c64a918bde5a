package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/vepctl/internal/core/domain"
	"github.com/custodia-labs/vepctl/internal/core/ports/driven"
)

// Ensure XLSXSource implements the interface.
var _ driven.RecordSource = (*XLSXSource)(nil)

// XLSXSource streams rows of one worksheet.
type XLSXSource struct {
	name  string
	file  *excelize.File
	sheet string
}

// OpenXLSX opens a workbook. An empty sheet selects the first one.
func OpenXLSX(path, sheet string) (*XLSXSource, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		f.Close()
		return nil, fmt.Errorf("%w: sheet %q not found in %s", domain.ErrNotFound, sheet, path)
	}

	return &XLSXSource{name: filepath.Base(path), file: f, sheet: sheet}, nil
}

// Name returns the file name.
func (s *XLSXSource) Name() string { return s.name }

// Records streams every row after the header row. Short rows are padded
// with blanks since spreadsheets omit trailing empty cells.
func (s *XLSXSource) Records(ctx context.Context) (<-chan domain.RawRecord, <-chan error) {
	out := make(chan domain.RawRecord)
	errs := make(chan error, 16)

	go func() {
		defer close(out)
		defer close(errs)

		rows, err := s.file.Rows(s.sheet)
		if err != nil {
			sendErr(ctx, errs, fmt.Errorf("%s: %w", s.name, err))
			return
		}
		defer rows.Close()

		var header []string
		line := 0
		for rows.Next() {
			line++
			cols, err := rows.Columns()
			if err != nil {
				if !sendErr(ctx, errs, fmt.Errorf("%s row %d: %w", s.name, line, err)) {
					return
				}
				continue
			}
			if header == nil {
				header = cleanHeader(cols)
				continue
			}
			if len(cols) > len(header) {
				if !sendErr(ctx, errs, fmt.Errorf("%s row %d: %d cells, header has %d", s.name, line, len(cols), len(header))) {
					return
				}
				continue
			}

			fields := make(map[string]string, len(header))
			for i, h := range header {
				if h == "" {
					continue
				}
				if i < len(cols) {
					fields[h] = cols[i]
				} else {
					fields[h] = ""
				}
			}

			select {
			case out <- domain.RawRecord{Source: s.name, Line: line, Fields: fields}:
			case <-ctx.Done():
				return
			}
		}
		if err := rows.Error(); err != nil {
			sendErr(ctx, errs, fmt.Errorf("%s: %w", s.name, err))
		}
	}()

	return out, errs
}

// Close closes the workbook.
func (s *XLSXSource) Close() error {
	return s.file.Close()
}
