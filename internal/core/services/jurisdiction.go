package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/agnivade/levenshtein"

	"github.com/custodia-labs/vepctl/internal/core/domain"
	"github.com/custodia-labs/vepctl/internal/core/ports/driven"
	"github.com/custodia-labs/vepctl/internal/core/ports/driving"
)

// Ensure JurisdictionService implements the interface.
var _ driving.JurisdictionService = (*JurisdictionService)(nil)

// JurisdictionService exposes the alias configurations.
type JurisdictionService struct {
	aliases driven.AliasProvider
}

// NewJurisdictionService creates a jurisdiction service.
func NewJurisdictionService(aliases driven.AliasProvider) *JurisdictionService {
	return &JurisdictionService{aliases: aliases}
}

// List returns every configured jurisdiction.
func (s *JurisdictionService) List(ctx context.Context) ([]domain.Jurisdiction, error) {
	js, err := s.aliases.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list jurisdictions: %w", err)
	}
	return js, nil
}

// Describe loads one jurisdiction's configuration.
func (s *JurisdictionService) Describe(ctx context.Context, j domain.Jurisdiction) (*domain.AliasConfig, error) {
	if j.State == "" {
		return nil, fmt.Errorf("%w: state is required", domain.ErrInvalidInput)
	}
	cfg, err := s.aliases.Load(ctx, j)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			if near, ok := s.suggest(ctx, j); ok {
				return nil, fmt.Errorf("load %s/%s: %w (did you mean %s/%s?)", j.State, j.FileType, err, near.State, near.FileType)
			}
		}
		return nil, fmt.Errorf("load %s/%s: %w", j.State, j.FileType, err)
	}
	return cfg, nil
}

// maxSuggestDistance bounds the edit distance of a suggested jurisdiction.
const maxSuggestDistance = 2

// suggest returns the configured jurisdiction closest to j by edit
// distance over "state/file-type", if one is close enough.
func (s *JurisdictionService) suggest(ctx context.Context, j domain.Jurisdiction) (domain.Jurisdiction, bool) {
	known, err := s.aliases.List(ctx)
	if err != nil {
		return domain.Jurisdiction{}, false
	}
	want := j.State + "/" + j.FileType
	var (
		best  domain.Jurisdiction
		found bool
		dist  = maxSuggestDistance + 1
	)
	for _, k := range known {
		if d := levenshtein.ComputeDistance(want, k.State+"/"+k.FileType); d < dist {
			best, dist, found = k, d, true
		}
	}
	return best, found
}
