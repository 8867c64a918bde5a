package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/vepctl/internal/core/domain"
	"github.com/custodia-labs/vepctl/internal/core/ports/driven"
	"github.com/custodia-labs/vepctl/internal/logger"
)

// ModelMerge names the merge layer in error details.
const ModelMerge = "merge"

// DefaultMergeBackoff is the base delay between conflict retries.
const DefaultMergeBackoff = 20 * time.Millisecond

// MergeResult counts what happened to a record's entities.
type MergeResult struct {
	// Created entities were new to the pool.
	Created int

	// Filled entities existed and gained missing fields.
	Filled int

	// Unchanged entities existed with nothing to add.
	Unchanged int

	// Record is the stored record. Its entities are the pooled instances,
	// including fields other records filled in.
	Record domain.Record
}

// Merger adopts a record's entities into the shared pool. Every entity is
// get-or-create by identity key: a pooled entity is kept and only its
// missing fields are filled from the new one.
type Merger struct {
	store      driven.EntityStore
	locker     driven.KeyLocker
	metrics    driven.MetricsRecorder
	maxRetries int
	backoff    time.Duration
}

// MergeOption configures a Merger.
type MergeOption func(*Merger)

// WithMaxRetries bounds retries after a transient commit conflict.
func WithMaxRetries(n int) MergeOption {
	return func(m *Merger) {
		if n >= 0 {
			m.maxRetries = n
		}
	}
}

// WithBackoff sets the base delay between retries. Attempt n waits n times
// the base.
func WithBackoff(d time.Duration) MergeOption {
	return func(m *Merger) {
		m.backoff = d
	}
}

// WithMergeMetrics reports created and merged entities to r.
func WithMergeMetrics(r driven.MetricsRecorder) MergeOption {
	return func(m *Merger) {
		m.metrics = r
	}
}

// NewMerger creates a merger. A nil locker falls back to in-process key
// locks.
func NewMerger(store driven.EntityStore, locker driven.KeyLocker, opts ...MergeOption) *Merger {
	if locker == nil {
		locker = NewKeyLocks(DefaultStripes)
	}
	m := &Merger{
		store:      store,
		locker:     locker,
		maxRetries: domain.DefaultAppSettings().Merge.MaxRetries,
		backoff:    DefaultMergeBackoff,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Merge writes rec and its entities in one record transaction. The
// entity keys are locked for the duration so concurrent records sharing
// an identity cannot both create it. A failed record leaves the pool
// untouched.
func (m *Merger) Merge(ctx context.Context, rec domain.Record) (MergeResult, error) {
	start := time.Now()
	entities := Entities(rec)

	keys := make([]string, 0, len(entities)+1)
	keys = append(keys, "record:"+rec.ID)
	for _, e := range entities {
		keys = append(keys, string(e.Kind())+":"+e.Key())
	}

	unlock, err := m.locker.Lock(ctx, keys...)
	if err != nil {
		return MergeResult{}, fmt.Errorf("lock record %s: %w", rec.ID, err)
	}
	defer unlock()

	var (
		result  MergeResult
		created map[domain.EntityKind][]bool
	)
	for attempt := 0; ; attempt++ {
		result = MergeResult{}
		created = make(map[domain.EntityKind][]bool)

		err = m.store.InRecordTx(ctx, func(tx driven.EntityTx) error {
			links := make([]domain.EntityRef, 0, len(entities))
			resolved := make(map[domain.EntityRef]domain.Entity, len(entities))
			for _, e := range entities {
				pooled, isNew, filled, err := adopt(ctx, tx, e)
				if err != nil {
					return err
				}
				switch {
				case isNew:
					result.Created++
				case filled:
					result.Filled++
				default:
					result.Unchanged++
				}
				created[e.Kind()] = append(created[e.Kind()], isNew)
				ref := domain.EntityRef{Kind: e.Kind(), Key: e.Key()}
				resolved[ref] = pooled
				links = append(links, ref)
			}
			result.Record = withPooled(rec, resolved)
			return tx.SaveRecord(ctx, result.Record, links)
		})
		if err == nil || !errors.Is(err, domain.ErrConflict) || attempt >= m.maxRetries {
			break
		}

		logger.Debug("Commit conflict on record %s, retry %d/%d", rec.ID, attempt+1, m.maxRetries)
		select {
		case <-time.After(m.backoff * time.Duration(attempt+1)):
		case <-ctx.Done():
			return MergeResult{}, fmt.Errorf("merge record %s: %w", rec.ID, ctx.Err())
		}
	}
	if err != nil {
		return MergeResult{}, fmt.Errorf("merge record %s: %w", rec.ID, err)
	}

	if m.metrics != nil {
		for kind, flags := range created {
			for _, isNew := range flags {
				m.metrics.RecordMerge(string(kind), isNew)
			}
		}
		m.metrics.ObserveDuration("merge", time.Since(start))
	}
	return result, nil
}

// adopt inserts e when its key is new, or fills the pooled entity. It
// returns the instance the pool holds afterwards.
func adopt(ctx context.Context, tx driven.EntityTx, e domain.Entity) (pooled domain.Entity, created, filled bool, err error) {
	existing, err := tx.Get(ctx, e.Kind(), e.Key())
	if errors.Is(err, domain.ErrNotFound) {
		if err := tx.Insert(ctx, e); err != nil {
			return nil, false, false, fmt.Errorf("insert %s %s: %w", e.Kind(), e.Key(), err)
		}
		return e, true, false, nil
	}
	if err != nil {
		return nil, false, false, fmt.Errorf("get %s %s: %w", e.Kind(), e.Key(), err)
	}

	if !existing.Fill(e) {
		return existing, false, false, nil
	}
	if err := tx.Update(ctx, existing); err != nil {
		return nil, false, false, fmt.Errorf("update %s %s: %w", e.Kind(), e.Key(), err)
	}
	return existing, false, true, nil
}

// withPooled returns a copy of rec whose keyed entities are replaced by
// their pooled instances. The fresh instances are discarded. An address
// keeps its slot type, since one pooled address can be both a residence
// and a mailing address.
func withPooled(rec domain.Record, resolved map[domain.EntityRef]domain.Entity) domain.Record {
	out := rec.Clone()
	lookup := func(e domain.Entity) domain.Entity {
		if p, ok := resolved[domain.EntityRef{Kind: e.Kind(), Key: e.Key()}]; ok {
			return p
		}
		return nil
	}

	if out.Name != nil {
		if p, ok := lookup(out.Name).(*domain.PersonName); ok {
			out.Name = p.Clone()
		}
	}
	if out.Registration != nil {
		if p, ok := lookup(out.Registration).(*domain.VoterRegistration); ok {
			out.Registration = p.Clone()
		}
	}
	if out.VEP != nil {
		if p, ok := lookup(out.VEP).(*domain.VEPMatch); ok {
			v := *p
			out.VEP = &v
		}
	}
	for i := range out.Addresses {
		if p, ok := lookup(&out.Addresses[i]).(*domain.Address); ok {
			a := p.Clone()
			a.Type = out.Addresses[i].Type
			out.Addresses[i] = a
		}
	}
	if out.Districts != nil {
		set := out.Districts
		if p, ok := lookup(set).(*domain.DistrictSet); ok {
			set = p.Clone()
		}
		replacePooled(set.Districts, lookup)
		out.Districts = set
	}
	replacePooled(out.Phones, lookup)
	replacePooled(out.DataSources, lookup)
	replacePooled(out.Elections, lookup)
	replacePooled(out.VoteMethods, lookup)
	replacePooled(out.VendorNames, lookup)
	replacePooled(out.VendorTags, lookup)
	return out
}

// replacePooled swaps each item for its pooled instance in place.
func replacePooled[T any, P interface {
	*T
	domain.Entity
}](items []T, lookup func(domain.Entity) domain.Entity) {
	for i := range items {
		if p, ok := lookup(P(&items[i])).(P); ok {
			items[i] = *p
		}
	}
}

// Entities lists the keyed entities of rec in merge order. District
// members precede their set.
func Entities(rec domain.Record) []domain.Entity {
	var out []domain.Entity
	add := func(e domain.Entity) {
		if e.Key() != "" {
			out = append(out, e)
		}
	}

	if rec.Name != nil {
		add(rec.Name.Clone())
	}
	if rec.Registration != nil {
		add(rec.Registration.Clone())
	}
	if rec.VEP != nil {
		v := *rec.VEP
		add(&v)
	}
	for _, a := range rec.Addresses {
		c := a.Clone()
		add(&c)
	}
	for _, p := range rec.Phones {
		add(&p)
	}
	for _, d := range rec.DataSources {
		add(&d)
	}
	for _, e := range rec.Elections {
		add(&e)
	}
	for _, vm := range rec.VoteMethods {
		add(&vm)
	}
	if rec.Districts != nil {
		set := rec.Districts.Clone()
		for _, d := range set.Districts {
			c := d.Clone()
			add(&c)
		}
		add(set)
	}
	for _, vn := range rec.VendorNames {
		add(&vn)
	}
	for _, vt := range rec.VendorTags {
		add(&vt)
	}
	return out
}

// MergeFailure converts a merge error into an invalid record.
func MergeFailure(rec domain.Record, errorID string, err error) domain.InvalidRecord {
	errType := domain.ErrTypeInternal
	if errors.Is(err, domain.ErrAlreadyExists) || errors.Is(err, domain.ErrConflict) {
		errType = domain.ErrTypeStoreConflict
	}

	source := ""
	if len(rec.DataSources) > 0 {
		source = rec.DataSources[0].File
	}
	return domain.InvalidRecord{
		Source: source,
		Raw:    rec.Input.Original,
		Details: domain.ErrorDetails{
			ErrorID:        errorID,
			PointOfFailure: domain.FailureMerge,
			Model:          ModelMerge,
			Errors: []domain.ValidationError{
				*domain.NewValidationError(errType, err.Error(), "record_id", rec.ID),
			},
		},
	}
}
