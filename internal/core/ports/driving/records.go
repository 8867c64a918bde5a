package driving

import (
	"context"

	"github.com/custodia-labs/vepctl/internal/core/domain"
)

// RecordService reads the merged entity pool.
type RecordService interface {
	// Get retrieves a merged record by ID.
	Get(ctx context.Context, id string) (*domain.Record, error)

	// List returns merged records in ID order, page by page.
	List(ctx context.Context, after string, limit int) ([]domain.Record, error)

	// Counts returns pooled entity counts by kind.
	Counts(ctx context.Context) (map[string]int, error)

	// ScoreTurnout scores every record's vote history against the election
	// roster and stores the scores. It returns the number of records scored.
	ScoreTurnout(ctx context.Context) (int, error)
}
