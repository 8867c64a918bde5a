package driven

import (
	"context"

	"github.com/custodia-labs/vepctl/internal/core/domain"
)

// CleanupStage is one step of record normalisation.
// Stages are chained in a pipeline (e.g. person, address, districts, keys).
type CleanupStage interface {
	// Name returns the stage name for logging, metrics and configuration.
	Name() string

	// Apply transforms rec using the renamed fields in src. rec is a private
	// copy; the stage returns the next snapshot. Correction notes are
	// appended to notes. A returned error makes the record invalid.
	Apply(ctx context.Context, rec domain.Record, src *domain.CanonicalRecord, notes domain.Corrections) (domain.Record, error)
}

// CleanupPipeline chains CleanupStages.
type CleanupPipeline interface {
	// Process runs every stage in order and returns the final record.
	// On failure the error is a *domain.StageError naming the stage.
	Process(ctx context.Context, src *domain.CanonicalRecord) (domain.Record, error)
}
