package services

import (
	"github.com/custodia-labs/vepctl/internal/core/domain"
	"github.com/custodia-labs/vepctl/internal/core/ports/driven"
)

// Ensure ParticipationScorer implements the interface.
var _ driven.TurnoutScorer = (*ParticipationScorer)(nil)

// ParticipationScorer scores turnout as the share of roster elections a
// voter took part in, overall and per election type.
type ParticipationScorer struct{}

// NewParticipationScorer creates a participation scorer.
func NewParticipationScorer() *ParticipationScorer {
	return &ParticipationScorer{}
}

// Score counts each roster election at most once. Votes for elections
// missing from the roster are ignored.
func (s *ParticipationScorer) Score(votes []domain.Vote, roster []domain.Election) (domain.TurnoutScore, error) {
	eligible := make(map[string]string, len(roster))
	typeTotals := make(map[string]int)
	for _, e := range roster {
		if _, ok := eligible[e.ID]; ok {
			continue
		}
		eligible[e.ID] = e.Type
		typeTotals[e.Type]++
	}

	voted := make(map[string]struct{}, len(votes))
	typeVotes := make(map[string]int)
	for _, v := range votes {
		t, ok := eligible[v.ElectionKey]
		if !ok {
			continue
		}
		if _, dup := voted[v.ElectionKey]; dup {
			continue
		}
		voted[v.ElectionKey] = struct{}{}
		typeVotes[t]++
	}

	score := domain.TurnoutScore{
		Participated: len(voted),
		Eligible:     len(eligible),
	}
	if score.Eligible == 0 {
		return score, nil
	}
	score.Ratio = float64(score.Participated) / float64(score.Eligible)
	score.ByType = make(map[string]float64, len(typeTotals))
	for t, total := range typeTotals {
		score.ByType[t] = float64(typeVotes[t]) / float64(total)
	}
	return score, nil
}
