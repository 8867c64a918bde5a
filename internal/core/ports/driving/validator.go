package driving

import (
	"context"

	"github.com/custodia-labs/vepctl/internal/core/domain"
)

// RecordValidator runs raw records through renaming, cleanup and the
// optional final check.
type RecordValidator interface {
	// Validate consumes records until the channel closes or ctx is done.
	// Every record comes out on exactly one of the returned channels; both
	// close once all records have been handled.
	Validate(ctx context.Context, cfg *domain.AliasConfig, records <-chan domain.RawRecord) (<-chan domain.Record, <-chan domain.InvalidRecord)

	// ValidateOne runs a single record synchronously. It returns either
	// the record or the reason it was rejected.
	ValidateOne(ctx context.Context, cfg *domain.AliasConfig, raw domain.RawRecord) (*domain.Record, *domain.InvalidRecord)

	// Counts returns running totals of the current pass.
	Counts() domain.ValidationCounts

	// ErrorCounts returns error type occurrences of the current pass.
	ErrorCounts() domain.ErrorCounts
}
