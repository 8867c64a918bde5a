package driven

import (
	"context"

	"github.com/custodia-labs/vepctl/internal/core/domain"
)

// AliasProvider loads the alias configuration for a jurisdiction.
type AliasProvider interface {
	// Load returns the configuration for j.
	// Returns domain.ErrNotFound if no configuration exists for j.
	Load(ctx context.Context, j domain.Jurisdiction) (*domain.AliasConfig, error)

	// List returns every jurisdiction with a configuration.
	List(ctx context.Context) ([]domain.Jurisdiction, error)
}
