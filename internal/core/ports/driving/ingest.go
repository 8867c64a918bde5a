package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/vepctl/internal/core/domain"
)

// IngestService validates a voter file and merges its valid records into
// the entity pool.
type IngestService interface {
	// Ingest processes one file. Record-level failures never abort the
	// run; an error is returned only when the file or its configuration
	// cannot be used.
	Ingest(ctx context.Context, req IngestRequest) (*IngestReport, error)

	// Status returns the progress of the running ingest, if any.
	Status() IngestStatus
}

// IngestRequest describes one ingest run.
type IngestRequest struct {
	// Path is the voter file to read.
	Path string

	// Jurisdiction selects the alias configuration.
	Jurisdiction domain.Jurisdiction

	// Merge writes valid records to the entity pool. Without it the run
	// only validates.
	Merge bool

	// OnValid and OnInvalid, when set, receive every record as it is
	// decided. They are called from a single goroutine.
	OnValid   func(domain.Record)
	OnInvalid func(domain.InvalidRecord)
}

// IngestReport summarises an ingest run.
type IngestReport struct {
	RunID       string
	Source      string
	Counts      domain.ValidationCounts
	ErrorCounts domain.ErrorCounts
	Merged      int
	MergeFailed int
	ReadErrors  int
	Duration    time.Duration
}

// IngestStatus is a snapshot of a running ingest.
type IngestStatus struct {
	Running bool
	Source  string
	Counts  domain.ValidationCounts
	Merged  int
}
