package driven

import "github.com/custodia-labs/vepctl/internal/core/domain"

// TurnoutScorer scores a voter's history against the election roster.
type TurnoutScorer interface {
	Score(votes []domain.Vote, roster []domain.Election) (domain.TurnoutScore, error)
}
