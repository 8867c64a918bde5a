// Package sqlstore provides an SQL implementation of driven.EntityStore.
//
// Two dialects share one schema:
//
//   - sqlite: modernc.org/sqlite, a pure Go SQLite that needs no CGO.
//   - postgres: jackc/pgx/v5 through its database/sql driver.
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Entities are stored as JSON documents keyed by
// (kind, key); records hold the merged aggregate and link to the entities
// they reference.
//
// # Data Location
//
// By default, the SQLite database is stored at ~/.vepctl/data/entities.db.
//
// # Concurrency
//
// Each record is written in its own transaction. A duplicate identity key
// surfaces as domain.ErrAlreadyExists; lock contention and serialization
// failures surface as domain.ErrConflict so callers can retry.
package sqlstore
