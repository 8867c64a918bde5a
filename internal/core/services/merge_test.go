package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vepctl/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/vepctl/internal/core/domain"
	"github.com/custodia-labs/vepctl/internal/core/ports/driven"
)

// conflictStore fails the first n transactions with ErrConflict.
type conflictStore struct {
	*memory.EntityStore
	failures atomic.Int32
	calls    atomic.Int32
}

func (s *conflictStore) InRecordTx(ctx context.Context, fn func(driven.EntityTx) error) error {
	s.calls.Add(1)
	if s.failures.Add(-1) >= 0 {
		return domain.ErrConflict
	}
	return s.EntityStore.InRecordTx(ctx, fn)
}

func TestMerger_Merge_CreatesEntities(t *testing.T) {
	store := memory.NewEntityStore()
	metrics := newRecordingMetrics()
	m := NewMerger(store, nil, WithMergeMetrics(metrics))
	ctx := context.Background()
	rec := validRecord(t, txRow(2, "Jane", "Doe", "1001"))

	res, err := m.Merge(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, len(Entities(rec)), res.Created)
	assert.Zero(t, res.Filled+res.Unchanged)

	got, err := store.GetRecord(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Name.ID, got.Name.ID)
	assert.Len(t, store.Links(rec.ID), res.Created)

	assert.Equal(t, 1, metrics.merges[string(domain.KindPerson)+"/true"])
	assert.Equal(t, 1, metrics.durations["merge"])
}

func TestMerger_Merge_SharedEntitiesPooledOnce(t *testing.T) {
	store := memory.NewEntityStore()
	m := NewMerger(store, nil)
	ctx := context.Background()

	first := validRecord(t, txRow(2, "Jane", "Doe", "1001"))
	second := validRecord(t, txRow(3, "John", "Doe", "1002"))

	_, err := m.Merge(ctx, first)
	require.NoError(t, err)
	res, err := m.Merge(ctx, second)
	require.NoError(t, err)
	assert.Positive(t, res.Unchanged, "the shared address and election already exist")

	counts, err := store.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counts["record"])
	assert.Equal(t, 2, counts[string(domain.KindPerson)])
	assert.Equal(t, 1, counts[string(domain.KindAddress)])
	assert.Equal(t, 1, counts[string(domain.KindElection)])
}

func TestMerger_Merge_Idempotent(t *testing.T) {
	store := memory.NewEntityStore()
	m := NewMerger(store, nil)
	ctx := context.Background()
	rec := validRecord(t, txRow(2, "Jane", "Doe", "1001"))

	_, err := m.Merge(ctx, rec)
	require.NoError(t, err)
	before, err := store.Counts(ctx)
	require.NoError(t, err)

	res, err := m.Merge(ctx, rec)
	require.NoError(t, err)
	assert.Zero(t, res.Created)

	after, err := store.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestMerger_Merge_FillsMissingFields(t *testing.T) {
	store := memory.NewEntityStore()
	m := NewMerger(store, nil)
	ctx := context.Background()

	e := domain.NewElection("TX", 2022, "general")
	_, err := m.Merge(ctx, domain.Record{ID: "a", Elections: []domain.Election{e}})
	require.NoError(t, err)

	described := e
	described.Description = "General Election"
	res, err := m.Merge(ctx, domain.Record{ID: "b", Elections: []domain.Election{described}})
	require.NoError(t, err)
	assert.Equal(t, [3]int{0, 1, 0}, counted(res))

	// Populated fields are never overwritten.
	renamed := e
	renamed.Description = "Other"
	res, err = m.Merge(ctx, domain.Record{ID: "c", Elections: []domain.Election{renamed}})
	require.NoError(t, err)
	assert.Equal(t, [3]int{0, 0, 1}, counted(res))
	assert.Equal(t, "General Election", res.Record.Elections[0].Description)

	roster, err := store.Elections(ctx)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, "General Election", roster[0].Description)
}

// counted returns the created, filled and unchanged counts of res.
func counted(res MergeResult) [3]int {
	return [3]int{res.Created, res.Filled, res.Unchanged}
}

func TestMerger_Merge_StoresPooledEntities(t *testing.T) {
	store := memory.NewEntityStore()
	m := NewMerger(store, nil)
	ctx := context.Background()

	first := validRecord(t, txRow(2, "Jane", "Doe", "1001"))
	first.Address(domain.AddressResidence).County = "Travis"
	_, err := m.Merge(ctx, first)
	require.NoError(t, err)

	second := validRecord(t, txRow(3, "John", "Doe", "1002"))
	require.Empty(t, second.Address(domain.AddressResidence).County)
	res, err := m.Merge(ctx, second)
	require.NoError(t, err)

	// The second record references the pooled address, county included.
	assert.Equal(t, "Travis", res.Record.Address(domain.AddressResidence).County)
	got, err := store.GetRecord(ctx, second.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Address(domain.AddressResidence))
	assert.Equal(t, "Travis", got.Address(domain.AddressResidence).County)

	// The input record is left as it was.
	assert.Empty(t, second.Address(domain.AddressResidence).County)
}

func TestMerger_Merge_PooledAddressKeepsSlotType(t *testing.T) {
	store := memory.NewEntityStore()
	m := NewMerger(store, nil)
	ctx := context.Background()

	rec := validRecord(t, txRow(2, "Jane", "Doe", "1001"))
	mail := rec.Address(domain.AddressResidence).Clone()
	mail.Type = domain.AddressMail
	mail.County = "Travis"
	rec.Addresses = append(rec.Addresses, mail)

	res, err := m.Merge(ctx, rec)
	require.NoError(t, err)

	require.NotNil(t, res.Record.Address(domain.AddressResidence))
	require.NotNil(t, res.Record.Address(domain.AddressMail))
	assert.Equal(t, "Travis", res.Record.Address(domain.AddressResidence).County)

	counts, err := store.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[string(domain.KindAddress)])
}

func TestMerger_Merge_ConcurrentSameIdentity(t *testing.T) {
	store := memory.NewEntityStore()
	m := NewMerger(store, NewKeyLocks(8))
	ctx := context.Background()

	const n = 16
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e := domain.NewElection("TX", 2022, "general")
			_, err := m.Merge(ctx, domain.Record{ID: string(rune('a' + i)), Elections: []domain.Election{e}})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	counts, err := store.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[string(domain.KindElection)])
	assert.Equal(t, n, counts["record"])
}

func TestMerger_Merge_RetriesConflicts(t *testing.T) {
	store := &conflictStore{EntityStore: memory.NewEntityStore()}
	store.failures.Store(2)
	m := NewMerger(store, nil, WithMaxRetries(3), WithBackoff(time.Millisecond))

	_, err := m.Merge(context.Background(), domain.Record{ID: "a"})
	require.NoError(t, err)
	assert.Equal(t, int32(3), store.calls.Load())
}

func TestMerger_Merge_GivesUpAfterMaxRetries(t *testing.T) {
	store := &conflictStore{EntityStore: memory.NewEntityStore()}
	store.failures.Store(10)
	m := NewMerger(store, nil, WithMaxRetries(1), WithBackoff(time.Millisecond))

	_, err := m.Merge(context.Background(), domain.Record{ID: "a"})
	assert.True(t, errors.Is(err, domain.ErrConflict))
	assert.Equal(t, int32(2), store.calls.Load())
}

// blockingLocker never grants a lock.
type blockingLocker struct{}

func (blockingLocker) Lock(ctx context.Context, _ ...string) (func(), error) {
	<-ctx.Done()
	return nil, domain.ErrLockTimeout
}

func TestMerger_Merge_LockTimeout(t *testing.T) {
	m := NewMerger(memory.NewEntityStore(), blockingLocker{})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := m.Merge(ctx, domain.Record{ID: "a"})
	assert.True(t, errors.Is(err, domain.ErrLockTimeout))
}

func TestEntities_Order(t *testing.T) {
	rec := validRecord(t, txRow(2, "Jane", "Doe", "1001"))

	var kinds []domain.EntityKind
	for _, e := range Entities(rec) {
		assert.NotEmpty(t, e.Key())
		kinds = append(kinds, e.Kind())
	}
	require.NotEmpty(t, kinds)
	assert.Equal(t, domain.KindPerson, kinds[0])
	assert.Contains(t, kinds, domain.KindAddress)
	assert.Contains(t, kinds, domain.KindElection)
	assert.Contains(t, kinds, domain.KindVoteMethod)
}

func TestEntities_AreCopies(t *testing.T) {
	rec := validRecord(t, txRow(2, "Jane", "Doe", "1001"))
	for _, e := range Entities(rec) {
		if p, ok := e.(*domain.PersonName); ok {
			p.First = "changed"
		}
	}
	assert.Equal(t, "Jane", rec.Name.First)
}

func TestMergeFailure(t *testing.T) {
	rec := domain.Record{
		ID:          "r1",
		DataSources: []domain.DataSource{{File: "tx.csv"}},
		Input:       domain.InputData{Original: map[string]string{"A": "1"}},
	}

	inv := MergeFailure(rec, "e1", domain.ErrAlreadyExists)
	assert.Equal(t, "tx.csv", inv.Source)
	assert.Equal(t, map[string]string{"A": "1"}, inv.Raw)
	assert.Equal(t, domain.FailureMerge, inv.Details.PointOfFailure)
	assert.Equal(t, ModelMerge, inv.Details.Model)
	require.Len(t, inv.Details.Errors, 1)
	assert.Equal(t, domain.ErrTypeStoreConflict, inv.Details.Errors[0].Type)
	assert.Equal(t, "r1", inv.Details.Errors[0].Context["record_id"])

	inv = MergeFailure(rec, "e2", errors.New("disk full"))
	assert.Equal(t, domain.ErrTypeInternal, inv.Details.Errors[0].Type)
}
