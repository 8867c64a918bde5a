package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"

	"github.com/custodia-labs/vepctl/internal/core/domain"
	"github.com/custodia-labs/vepctl/internal/core/ports/driven"
)

// Ensure EntityStore implements the interface.
var _ driven.EntityStore = (*EntityStore)(nil)

// EntityStore is an in-memory implementation of driven.EntityStore.
// Entities and records are kept encoded so callers never share memory
// with the pool.
type EntityStore struct {
	mu       sync.RWMutex
	entities map[domain.EntityKind]map[string][]byte
	records  map[string][]byte
	links    map[string][]domain.EntityRef
}

// NewEntityStore creates a new in-memory entity store.
func NewEntityStore() *EntityStore {
	return &EntityStore{
		entities: make(map[domain.EntityKind]map[string][]byte),
		records:  make(map[string][]byte),
		links:    make(map[string][]domain.EntityRef),
	}
}

// InRecordTx buffers fn's writes and applies them atomically.
func (s *EntityStore) InRecordTx(ctx context.Context, fn func(tx driven.EntityTx) error) error {
	tx := &entityTx{
		store:   s,
		pending: make(map[domain.EntityKind]map[string][]byte),
		created: make(map[domain.EntityKind]map[string]bool),
	}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.commit(tx)
}

func (s *EntityStore) commit(tx *entityTx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for kind, keys := range tx.created {
		for key := range keys {
			if _, ok := s.entities[kind][key]; ok {
				return fmt.Errorf("%s %s: %w", kind, key, domain.ErrAlreadyExists)
			}
		}
	}

	for kind, values := range tx.pending {
		if s.entities[kind] == nil {
			s.entities[kind] = make(map[string][]byte)
		}
		maps.Copy(s.entities[kind], values)
	}
	if tx.record != nil {
		s.records[tx.recordID] = tx.record
		s.links[tx.recordID] = tx.links
	}
	return nil
}

// GetRecord retrieves a merged record by ID.
func (s *EntityStore) GetRecord(_ context.Context, id string) (*domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return decodeRecord(data)
}

// ListRecords returns merged records ordered by ID.
func (s *EntityStore) ListRecords(_ context.Context, after string, limit int) ([]domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := slices.Sorted(maps.Keys(s.records))
	var out []domain.Record
	for _, id := range ids {
		if id <= after {
			continue
		}
		rec, err := decodeRecord(s.records[id])
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Elections returns the election roster ordered by year and type.
func (s *EntityStore) Elections(_ context.Context) ([]domain.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Election, 0, len(s.entities[domain.KindElection]))
	for _, data := range s.entities[domain.KindElection] {
		var e domain.Election
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("decoding election: %w", err)
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].State < out[j].State
	})
	return out, nil
}

// RecordVotes returns the vote history of every record, ordered by ID.
func (s *EntityStore) RecordVotes(_ context.Context) ([]domain.RecordVotes, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.RecordVotes, 0, len(s.records))
	for _, id := range slices.Sorted(maps.Keys(s.records)) {
		rec, err := decodeRecord(s.records[id])
		if err != nil {
			return nil, err
		}
		out = append(out, domain.RecordVotes{RecordID: id, Votes: rec.Votes})
	}
	return out, nil
}

// SaveTurnout stores a record's turnout score.
func (s *EntityStore) SaveTurnout(_ context.Context, recordID string, score domain.TurnoutScore) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.records[recordID]
	if !ok {
		return domain.ErrNotFound
	}
	rec, err := decodeRecord(data)
	if err != nil {
		return err
	}
	rec.Turnout = &score
	encoded, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	s.records[recordID] = encoded
	return nil
}

// Counts returns the number of pooled entities per kind and of records.
func (s *EntityStore) Counts(_ context.Context) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int, len(domain.EntityKinds)+1)
	for _, kind := range domain.EntityKinds {
		counts[string(kind)] = len(s.entities[kind])
	}
	counts["record"] = len(s.records)
	return counts, nil
}

// Links returns the entity references of a record.
func (s *EntityStore) Links(recordID string) []domain.EntityRef {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.links[recordID])
}

// Close releases resources (no-op for memory store).
func (s *EntityStore) Close() error {
	return nil
}

func decodeRecord(data []byte) (*domain.Record, error) {
	var rec domain.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decoding record: %w", err)
	}
	return &rec, nil
}

// entityTx buffers one record's writes until commit.
type entityTx struct {
	store    *EntityStore
	pending  map[domain.EntityKind]map[string][]byte
	created  map[domain.EntityKind]map[string]bool
	recordID string
	record   []byte
	links    []domain.EntityRef
}

func (tx *entityTx) Get(_ context.Context, kind domain.EntityKind, key string) (domain.Entity, error) {
	if data, ok := tx.pending[kind][key]; ok {
		return domain.DecodeEntity(kind, data)
	}

	tx.store.mu.RLock()
	data, ok := tx.store.entities[kind][key]
	tx.store.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	return domain.DecodeEntity(kind, data)
}

func (tx *entityTx) Insert(ctx context.Context, e domain.Entity) error {
	if _, err := tx.Get(ctx, e.Kind(), e.Key()); err == nil {
		return fmt.Errorf("%s %s: %w", e.Kind(), e.Key(), domain.ErrAlreadyExists)
	}
	if err := tx.put(e); err != nil {
		return err
	}
	if tx.created[e.Kind()] == nil {
		tx.created[e.Kind()] = make(map[string]bool)
	}
	tx.created[e.Kind()][e.Key()] = true
	return nil
}

func (tx *entityTx) Update(ctx context.Context, e domain.Entity) error {
	if _, err := tx.Get(ctx, e.Kind(), e.Key()); err != nil {
		return err
	}
	return tx.put(e)
}

func (tx *entityTx) put(e domain.Entity) error {
	data, err := domain.EncodeEntity(e)
	if err != nil {
		return err
	}
	if tx.pending[e.Kind()] == nil {
		tx.pending[e.Kind()] = make(map[string][]byte)
	}
	tx.pending[e.Kind()][e.Key()] = data
	return nil
}

func (tx *entityTx) SaveRecord(_ context.Context, rec domain.Record, links []domain.EntityRef) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	tx.recordID = rec.ID
	tx.record = data
	tx.links = slices.Clone(links)
	return nil
}
