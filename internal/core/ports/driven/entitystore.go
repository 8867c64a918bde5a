package driven

import (
	"context"

	"github.com/custodia-labs/vepctl/internal/core/domain"
)

// EntityStore is the shared entity pool.
// Writes happen inside a per-record transaction so one record's failure
// never affects another's writes.
type EntityStore interface {
	// InRecordTx runs fn in a transaction. The transaction commits when fn
	// returns nil and rolls back otherwise. A uniqueness violation at commit
	// is reported as domain.ErrAlreadyExists.
	InRecordTx(ctx context.Context, fn func(tx EntityTx) error) error

	// GetRecord retrieves a merged record by ID.
	GetRecord(ctx context.Context, id string) (*domain.Record, error)

	// ListRecords returns merged records ordered by ID, at most limit
	// (0 for all) starting after the given ID.
	ListRecords(ctx context.Context, after string, limit int) ([]domain.Record, error)

	// Elections returns the accumulated election roster.
	Elections(ctx context.Context) ([]domain.Election, error)

	// RecordVotes returns the vote history of every record.
	RecordVotes(ctx context.Context) ([]domain.RecordVotes, error)

	// SaveTurnout stores a record's turnout score.
	SaveTurnout(ctx context.Context, recordID string, score domain.TurnoutScore) error

	// Counts returns the number of pooled entities per kind, plus
	// "record" for merged records.
	Counts(ctx context.Context) (map[string]int, error)

	// Close releases resources.
	Close() error
}

// EntityTx is the view of the entity pool inside one record transaction.
type EntityTx interface {
	// Get returns the pooled entity of kind with key.
	// Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, kind domain.EntityKind, key string) (domain.Entity, error)

	// Insert adds a new entity. Returns domain.ErrAlreadyExists if the key
	// is already pooled.
	Insert(ctx context.Context, e domain.Entity) error

	// Update overwrites a pooled entity.
	Update(ctx context.Context, e domain.Entity) error

	// SaveRecord stores the merged record and its entity links.
	SaveRecord(ctx context.Context, rec domain.Record, links []domain.EntityRef) error
}
