package driven

import (
	"context"

	"github.com/custodia-labs/vepctl/internal/core/domain"
)

// RecordSource streams raw records from one input file.
type RecordSource interface {
	// Name identifies the input, usually its file name.
	Name() string

	// Records streams every row. Both channels are closed when the input is
	// exhausted or ctx is cancelled. Row-level read errors are sent on the
	// error channel without stopping the stream.
	Records(ctx context.Context) (<-chan domain.RawRecord, <-chan error)

	// Close releases the underlying file.
	Close() error
}

// SourceFactory opens record sources by path.
type SourceFactory interface {
	// Open returns a source for the file at path, chosen by its extension.
	Open(ctx context.Context, path string) (RecordSource, error)

	// Extensions lists the supported file extensions, e.g. ".csv".
	Extensions() []string
}
