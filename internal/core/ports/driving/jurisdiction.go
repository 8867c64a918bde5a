package driving

import (
	"context"

	"github.com/custodia-labs/vepctl/internal/core/domain"
)

// JurisdictionService exposes the configured alias files.
type JurisdictionService interface {
	// List returns every configured jurisdiction.
	List(ctx context.Context) ([]domain.Jurisdiction, error)

	// Describe loads one jurisdiction's configuration.
	Describe(ctx context.Context, j domain.Jurisdiction) (*domain.AliasConfig, error)
}
