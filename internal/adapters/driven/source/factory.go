package source

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/custodia-labs/vepctl/internal/core/domain"
	"github.com/custodia-labs/vepctl/internal/core/ports/driven"
)

// Ensure Factory implements the interface.
var _ driven.SourceFactory = (*Factory)(nil)

// opener opens one file type.
type opener func(path string) (driven.RecordSource, error)

// Factory opens record sources by file extension.
type Factory struct {
	openers map[string]opener
}

// NewFactory creates a factory for every supported file type.
func NewFactory() *Factory {
	return &Factory{
		openers: map[string]opener{
			".csv":  func(p string) (driven.RecordSource, error) { return OpenCSV(p, ',') },
			".tsv":  func(p string) (driven.RecordSource, error) { return OpenCSV(p, '\t') },
			".txt":  func(p string) (driven.RecordSource, error) { return OpenCSV(p, 0) },
			".xlsx": func(p string) (driven.RecordSource, error) { return OpenXLSX(p, "") },
		},
	}
}

// Open returns a source for the file at path.
func (f *Factory) Open(_ context.Context, path string) (driven.RecordSource, error) {
	ext := strings.ToLower(filepath.Ext(path))
	open, ok := f.openers[ext]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported file type %q", domain.ErrInvalidInput, ext)
	}
	return open(path)
}

// Extensions lists the supported file extensions in sorted order.
func (f *Factory) Extensions() []string {
	exts := make([]string, 0, len(f.openers))
	for ext := range f.openers {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}
