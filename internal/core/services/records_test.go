package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vepctl/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/vepctl/internal/core/domain"
)

func TestRecordService_Get(t *testing.T) {
	store := memory.NewEntityStore()
	svc := NewRecordService(store, nil)
	ctx := context.Background()
	rec := validRecord(t, txRow(2, "Jane", "Doe", "1001"))
	_, err := NewMerger(store, nil).Merge(ctx, rec)
	require.NoError(t, err)

	got, err := svc.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)

	_, err = svc.Get(ctx, "")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = svc.Get(ctx, "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestRecordService_List(t *testing.T) {
	store := memory.NewEntityStore()
	svc := NewRecordService(store, nil)
	ctx := context.Background()
	m := NewMerger(store, nil)
	for _, id := range []string{"a", "b", "c"} {
		_, err := m.Merge(ctx, domain.Record{ID: id})
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, "a", 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "b", page[0].ID)

	_, err = svc.List(ctx, "", -1)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	counts, err := svc.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, counts["record"])
}

func TestRecordService_ScoreTurnout(t *testing.T) {
	store := memory.NewEntityStore()
	svc := NewRecordService(store, nil)
	ctx := context.Background()
	m := NewMerger(store, nil)

	g20 := domain.NewElection("TX", 2020, "general")
	g22 := domain.NewElection("TX", 2022, "general")
	oh := domain.NewElection("OH", 2022, "general")

	merge := func(id string, elections ...domain.Election) {
		rec := domain.Record{ID: id, Elections: elections}
		for _, e := range elections {
			rec.Votes = append(rec.Votes, domain.Vote{ElectionKey: e.ID, Election: e.Label()})
		}
		_, err := m.Merge(ctx, rec)
		require.NoError(t, err)
	}
	merge("tx-voter", g22)
	merge("tx-regular", g20, g22)
	merge("oh-voter", oh)
	merge("non-voter")

	n, err := svc.ScoreTurnout(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	got, err := svc.Get(ctx, "tx-voter")
	require.NoError(t, err)
	require.NotNil(t, got.Turnout)
	assert.Equal(t, 1, got.Turnout.Participated)
	assert.Equal(t, 2, got.Turnout.Eligible, "scored against the Texas roster only")

	got, err = svc.Get(ctx, "oh-voter")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got.Turnout.Ratio, 1e-9)

	got, err = svc.Get(ctx, "non-voter")
	require.NoError(t, err)
	assert.Nil(t, got.Turnout)
}

func TestRecordService_ScoreTurnout_EmptyRoster(t *testing.T) {
	svc := NewRecordService(memory.NewEntityStore(), nil)
	n, err := svc.ScoreTurnout(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}
