package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/vepctl/internal/core/domain"
	"github.com/custodia-labs/vepctl/internal/core/ports/driven"
	"github.com/custodia-labs/vepctl/internal/core/ports/driving"
	"github.com/custodia-labs/vepctl/internal/logger"
)

// Ensure RecordService implements the interface.
var _ driving.RecordService = (*RecordService)(nil)

// RecordService reads merged records and scores their turnout.
type RecordService struct {
	store  driven.EntityStore
	scorer driven.TurnoutScorer
}

// NewRecordService creates a record service. A nil scorer selects the
// participation scorer.
func NewRecordService(store driven.EntityStore, scorer driven.TurnoutScorer) *RecordService {
	if scorer == nil {
		scorer = NewParticipationScorer()
	}
	return &RecordService{store: store, scorer: scorer}
}

// Get retrieves a merged record by ID.
func (s *RecordService) Get(ctx context.Context, id string) (*domain.Record, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: record id is required", domain.ErrInvalidInput)
	}
	return s.store.GetRecord(ctx, id)
}

// List returns merged records in ID order.
func (s *RecordService) List(ctx context.Context, after string, limit int) ([]domain.Record, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: negative limit", domain.ErrInvalidInput)
	}
	return s.store.ListRecords(ctx, after, limit)
}

// Counts returns pooled entity counts by kind.
func (s *RecordService) Counts(ctx context.Context) (map[string]int, error) {
	return s.store.Counts(ctx)
}

// ScoreTurnout scores every record against the election roster. Each
// voter is scored against the roster of the states they voted in.
func (s *RecordService) ScoreTurnout(ctx context.Context) (int, error) {
	roster, err := s.store.Elections(ctx)
	if err != nil {
		return 0, fmt.Errorf("load election roster: %w", err)
	}
	if len(roster) == 0 {
		logger.Info("No elections on the roster, nothing to score")
		return 0, nil
	}

	byKey := make(map[string]domain.Election, len(roster))
	for _, e := range roster {
		byKey[e.ID] = e
	}

	histories, err := s.store.RecordVotes(ctx)
	if err != nil {
		return 0, fmt.Errorf("load vote history: %w", err)
	}

	scored := 0
	for _, h := range histories {
		if err := ctx.Err(); err != nil {
			return scored, err
		}
		if len(h.Votes) == 0 {
			continue
		}

		score, err := s.scorer.Score(h.Votes, stateRoster(h.Votes, byKey, roster))
		if err != nil {
			return scored, fmt.Errorf("score record %s: %w", h.RecordID, err)
		}
		if err := s.store.SaveTurnout(ctx, h.RecordID, score); err != nil {
			return scored, fmt.Errorf("save turnout for %s: %w", h.RecordID, err)
		}
		scored++
	}

	logger.Info("Scored turnout for %d records against %d elections", scored, len(roster))
	return scored, nil
}

// stateRoster narrows roster to the states of the voter's elections.
func stateRoster(votes []domain.Vote, byKey map[string]domain.Election, roster []domain.Election) []domain.Election {
	states := make(map[string]struct{})
	for _, v := range votes {
		if e, ok := byKey[v.ElectionKey]; ok {
			states[e.State] = struct{}{}
		}
	}
	if len(states) == 0 {
		return roster
	}
	out := make([]domain.Election, 0, len(roster))
	for _, e := range roster {
		if _, ok := states[e.State]; ok {
			out = append(out, e)
		}
	}
	return out
}
