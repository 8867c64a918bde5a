package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vepctl/internal/core/domain"
)

func TestParticipationScorer_Score(t *testing.T) {
	g20 := domain.NewElection("TX", 2020, "general")
	g22 := domain.NewElection("TX", 2022, "general")
	p22 := domain.NewElection("TX", 2022, "primary")
	roster := []domain.Election{g20, g22, p22, g22}

	votes := []domain.Vote{
		{ElectionKey: g22.ID},
		{ElectionKey: g22.ID},
		{ElectionKey: p22.ID},
		{ElectionKey: "unknown"},
	}

	score, err := NewParticipationScorer().Score(votes, roster)
	require.NoError(t, err)
	assert.Equal(t, 2, score.Participated)
	assert.Equal(t, 3, score.Eligible)
	assert.InDelta(t, 2.0/3.0, score.Ratio, 1e-9)
	assert.Equal(t, map[string]float64{"general": 0.5, "primary": 1}, score.ByType)
}

func TestParticipationScorer_EmptyRoster(t *testing.T) {
	score, err := NewParticipationScorer().Score([]domain.Vote{{ElectionKey: "x"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.TurnoutScore{}, score)
}
