package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/custodia-labs/vepctl/internal/adapters/driven/storage/sqlstore/migrations"
	"github.com/custodia-labs/vepctl/internal/core/domain"
	"github.com/custodia-labs/vepctl/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.EntityStore = (*Store)(nil)

// PostgreSQL error codes mapped to domain errors.
const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// Store is an SQL-backed entity pool.
type Store struct {
	db      *sql.DB
	dialect domain.StoreDriver
	path    string
}

// NewSQLiteStore opens the SQLite database file at dbPath, creating it
// and its directory when missing.
// If dbPath is empty, defaults to ~/.vepctl/data/entities.db.
func NewSQLiteStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".vepctl", "data", "entities.db")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// WAL mode for readers alongside the single writer
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// SQLite has one writer; a single connection turns lock contention
	// into queueing instead of SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	return newStore(db, domain.StoreSQLite, dbPath)
}

// NewPostgresStore connects to the PostgreSQL database at dsn.
func NewPostgresStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: postgres dsn is required", domain.ErrInvalidInput)
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	return newStore(db, domain.StorePostgres, "")
}

func newStore(db *sql.DB, dialect domain.StoreDriver, path string) (*Store, error) {
	s := &Store{db: db, dialect: dialect, path: path}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path. Empty for postgres.
func (s *Store) Path() string {
	return s.path
}

// Dialect returns the SQL dialect in use.
func (s *Store) Dialect() domain.StoreDriver {
	return s.dialect
}

// rebind rewrites ? placeholders to $n for postgres.
func (s *Store) rebind(query string) string {
	if s.dialect != domain.StorePostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_entities.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(s.rebind("INSERT INTO schema_migrations (version) VALUES (?)"), version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// classify maps driver errors onto domain errors.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var lite *sqlite.Error
	if errors.As(err, &lite) {
		switch lite.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return fmt.Errorf("%w: %w", domain.ErrAlreadyExists, err)
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return fmt.Errorf("%w: %w", domain.ErrConflict, err)
		}
		return err
	}

	var pg *pgconn.PgError
	if errors.As(err, &pg) {
		switch pg.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %w", domain.ErrAlreadyExists, err)
		case pgSerializationFailure, pgDeadlockDetected:
			return fmt.Errorf("%w: %w", domain.ErrConflict, err)
		}
	}
	return err
}

// ==================== Record Transactions ====================

// InRecordTx runs fn in a database transaction.
func (s *Store) InRecordTx(ctx context.Context, fn func(tx driven.EntityTx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", classify(err))
	}

	if err := fn(&entityTx{store: s, tx: sqlTx}); err != nil {
		_ = sqlTx.Rollback()
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", classify(err))
	}
	return nil
}

// entityTx implements driven.EntityTx on an open transaction.
type entityTx struct {
	store *Store
	tx    *sql.Tx
}

var _ driven.EntityTx = (*entityTx)(nil)

func (t *entityTx) Get(ctx context.Context, kind domain.EntityKind, key string) (domain.Entity, error) {
	var data string
	err := t.tx.QueryRowContext(ctx,
		t.store.rebind("SELECT data FROM entities WHERE kind = ? AND key = ?"),
		string(kind), key,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting %s %s: %w", kind, key, classify(err))
	}
	return domain.DecodeEntity(kind, []byte(data))
}

func (t *entityTx) Insert(ctx context.Context, e domain.Entity) error {
	data, err := domain.EncodeEntity(e)
	if err != nil {
		return err
	}
	_, err = t.tx.ExecContext(ctx,
		t.store.rebind("INSERT INTO entities (kind, key, data) VALUES (?, ?, ?)"),
		string(e.Kind()), e.Key(), string(data),
	)
	if err != nil {
		return fmt.Errorf("inserting %s %s: %w", e.Kind(), e.Key(), classify(err))
	}
	return nil
}

func (t *entityTx) Update(ctx context.Context, e domain.Entity) error {
	data, err := domain.EncodeEntity(e)
	if err != nil {
		return err
	}
	res, err := t.tx.ExecContext(ctx,
		t.store.rebind("UPDATE entities SET data = ? WHERE kind = ? AND key = ?"),
		string(data), string(e.Kind()), e.Key(),
	)
	if err != nil {
		return fmt.Errorf("updating %s %s: %w", e.Kind(), e.Key(), classify(err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SaveRecord upserts the record and replaces its links. A stored turnout
// score is kept.
func (t *entityTx) SaveRecord(ctx context.Context, rec domain.Record, links []domain.EntityRef) error {
	rec.Turnout = nil
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}

	_, err = t.tx.ExecContext(ctx, t.store.rebind(`
		INSERT INTO records (id, data) VALUES (?, ?)
		ON CONFLICT (id) DO UPDATE SET data = excluded.data
	`), rec.ID, string(data))
	if err != nil {
		return fmt.Errorf("saving record %s: %w", rec.ID, classify(err))
	}

	if _, err := t.tx.ExecContext(ctx, t.store.rebind("DELETE FROM record_links WHERE record_id = ?"), rec.ID); err != nil {
		return fmt.Errorf("clearing links of %s: %w", rec.ID, classify(err))
	}
	for _, l := range links {
		_, err := t.tx.ExecContext(ctx, t.store.rebind(`
			INSERT INTO record_links (record_id, kind, key) VALUES (?, ?, ?)
			ON CONFLICT DO NOTHING
		`), rec.ID, string(l.Kind), l.Key)
		if err != nil {
			return fmt.Errorf("linking %s to %s %s: %w", rec.ID, l.Kind, l.Key, classify(err))
		}
	}
	return nil
}

// ==================== Queries ====================

// GetRecord retrieves a merged record by ID.
func (s *Store) GetRecord(ctx context.Context, id string) (*domain.Record, error) {
	var data string
	var turnout sql.NullString
	err := s.db.QueryRowContext(ctx,
		s.rebind("SELECT data, turnout FROM records WHERE id = ?"), id,
	).Scan(&data, &turnout)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting record %s: %w", id, err)
	}
	return decodeRecord(data, turnout)
}

// ListRecords returns merged records ordered by ID.
func (s *Store) ListRecords(ctx context.Context, after string, limit int) ([]domain.Record, error) {
	query := "SELECT data, turnout FROM records WHERE id > ? ORDER BY id"
	args := []any{after}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	var out []domain.Record
	for rows.Next() {
		var data string
		var turnout sql.NullString
		if err := rows.Scan(&data, &turnout); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		rec, err := decodeRecord(data, turnout)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// Elections returns the election roster ordered by year and type.
func (s *Store) Elections(ctx context.Context) ([]domain.Election, error) {
	rows, err := s.db.QueryContext(ctx,
		s.rebind("SELECT data FROM entities WHERE kind = ?"), string(domain.KindElection))
	if err != nil {
		return nil, fmt.Errorf("listing elections: %w", err)
	}
	defer rows.Close()

	var out []domain.Election
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning election: %w", err)
		}
		var e domain.Election
		if err := json.Unmarshal([]byte(data), &e); err != nil {
			return nil, fmt.Errorf("decoding election: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
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
func (s *Store) RecordVotes(ctx context.Context) ([]domain.RecordVotes, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, data FROM records ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing vote history: %w", err)
	}
	defer rows.Close()

	var out []domain.RecordVotes
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		var history struct {
			Votes []domain.Vote `json:"vote_history"`
		}
		if err := json.Unmarshal([]byte(data), &history); err != nil {
			return nil, fmt.Errorf("decoding record %s: %w", id, err)
		}
		out = append(out, domain.RecordVotes{RecordID: id, Votes: history.Votes})
	}
	return out, rows.Err()
}

// SaveTurnout stores a record's turnout score.
func (s *Store) SaveTurnout(ctx context.Context, recordID string, score domain.TurnoutScore) error {
	data, err := json.Marshal(score)
	if err != nil {
		return fmt.Errorf("encoding turnout: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		s.rebind("UPDATE records SET turnout = ? WHERE id = ?"), string(data), recordID)
	if err != nil {
		return fmt.Errorf("saving turnout for %s: %w", recordID, classify(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Counts returns the number of pooled entities per kind and of records.
func (s *Store) Counts(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int, len(domain.EntityKinds)+1)
	for _, kind := range domain.EntityKinds {
		counts[string(kind)] = 0
	}

	rows, err := s.db.QueryContext(ctx, "SELECT kind, COUNT(*) FROM entities GROUP BY kind")
	if err != nil {
		return nil, fmt.Errorf("counting entities: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("scanning count: %w", err)
		}
		counts[kind] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var records int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records").Scan(&records); err != nil {
		return nil, fmt.Errorf("counting records: %w", err)
	}
	counts["record"] = records
	return counts, nil
}

// Links returns the entity references of a record.
func (s *Store) Links(ctx context.Context, recordID string) ([]domain.EntityRef, error) {
	rows, err := s.db.QueryContext(ctx,
		s.rebind("SELECT kind, key FROM record_links WHERE record_id = ? ORDER BY kind, key"), recordID)
	if err != nil {
		return nil, fmt.Errorf("listing links: %w", err)
	}
	defer rows.Close()

	var out []domain.EntityRef
	for rows.Next() {
		var ref domain.EntityRef
		var kind string
		if err := rows.Scan(&kind, &ref.Key); err != nil {
			return nil, fmt.Errorf("scanning link: %w", err)
		}
		ref.Kind = domain.EntityKind(kind)
		out = append(out, ref)
	}
	return out, rows.Err()
}

func decodeRecord(data string, turnout sql.NullString) (*domain.Record, error) {
	var rec domain.Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("decoding record: %w", err)
	}
	if turnout.Valid && turnout.String != "" {
		var score domain.TurnoutScore
		if err := json.Unmarshal([]byte(turnout.String), &score); err != nil {
			return nil, fmt.Errorf("decoding turnout: %w", err)
		}
		rec.Turnout = &score
	}
	return &rec, nil
}
