// Package store provides the embedded SQLite storage for the research graph:
// relational nodes and edges, an FTS5 full-text index, and a sqlite-vec
// chunk-vector index, all behind transactional operations.
package store

import (
	"database/sql"
	"fmt"
	"time"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/notegraph/notegraph/internal/apperr"
)

func init() {
	sqlite_vec.Auto() // registers the vec0 virtual table with go-sqlite3
}

// timeFormat is ISO-8601 UTC with millisecond precision.
const timeFormat = "2006-01-02T15:04:05.000Z"

// Clock supplies the current time. Injectable for tests.
type Clock interface {
	Now() time.Time
}

// IDSource supplies new globally-unique string identifiers.
type IDSource interface {
	NewID() string
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

type uuidSource struct{}

func (uuidSource) NewID() string { return uuid.NewString() }

// SystemClock returns the default UTC clock.
func SystemClock() Clock { return systemClock{} }

// UUIDSource returns the default uuid-v4 identifier source.
func UUIDSource() IDSource { return uuidSource{} }

// FormatTime renders t in the store's canonical timestamp format.
func FormatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS nodes (
	id           TEXT PRIMARY KEY,
	node_type    TEXT NOT NULL,
	title        TEXT NOT NULL,
	content_path TEXT,
	metadata     TEXT NOT NULL DEFAULT '{}',
	created_at   TEXT NOT NULL,
	updated_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS edges (
	id         TEXT PRIMARY KEY,
	source     TEXT NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
	target     TEXT NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
	label      TEXT NOT NULL DEFAULT 'related',
	created_at TEXT NOT NULL,
	UNIQUE(source, target)
);

CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(source);
CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(target);

CREATE TABLE IF NOT EXISTS chunks (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	node_id TEXT NOT NULL REFERENCES nodes(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_chunks_node ON chunks(node_id);

CREATE VIRTUAL TABLE IF NOT EXISTS nodes_fts USING fts5(
	id UNINDEXED,
	title,
	content,
	tokenize = 'porter'
);
`

// DB wraps a sql.DB with graph and index operations. Every write
// transaction is serial; SQLite's internal lock provides the ordering.
type DB struct {
	conn  *sql.DB
	dim   int
	clock Clock
	ids   IDSource
}

// Option configures a DB.
type Option func(*DB)

// WithClock overrides the time source.
func WithClock(c Clock) Option {
	return func(db *DB) { db.clock = c }
}

// WithIDSource overrides the identifier source.
func WithIDSource(s IDSource) Option {
	return func(db *DB) { db.ids = s }
}

// Open opens (or creates) the SQLite database, applies the schema, and
// fixes the vector dimension. The dimension is encoded in the vec0 table;
// reopening with a different dimension against existing data fails.
func Open(dsn string, dim int, opts ...Option) (*DB, error) {
	if dim <= 0 {
		return nil, apperr.New(apperr.Validation, "store: vector dimension must be positive, got %d", dim)
	}
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, apperr.Wrap(apperr.Storage, fmt.Errorf("store: open db: %w", err))
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, apperr.Wrap(apperr.Storage, fmt.Errorf("store: ping: %w", err))
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, apperr.Wrap(apperr.Storage, fmt.Errorf("store: apply core schema: %w", err))
	}
	// vec0 uses integer rowids keyed by the chunks table; node_id rides
	// along as an auxiliary column for the back-reference.
	vecSchema := fmt.Sprintf(`
		CREATE VIRTUAL TABLE IF NOT EXISTS nodes_vec USING vec0(
			embedding float[%d],
			+node_id TEXT
		);
	`, dim)
	if _, err := conn.Exec(vecSchema); err != nil {
		conn.Close()
		return nil, apperr.Wrap(apperr.Storage, fmt.Errorf("store: apply vector schema: %w", err))
	}

	db := &DB{conn: conn, dim: dim, clock: systemClock{}, ids: uuidSource{}}
	for _, opt := range opts {
		opt(db)
	}
	return db, nil
}

// Dim returns the configured embedding dimension.
func (db *DB) Dim() int { return db.dim }

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) now() string {
	return db.clock.Now().UTC().Format(timeFormat)
}

// checkDim validates an embedding against the configured dimension.
func (db *DB) checkDim(embedding []float32) error {
	if len(embedding) != db.dim {
		return apperr.New(apperr.Invariant,
			"store: embedding dimension %d does not match store dimension %d", len(embedding), db.dim)
	}
	return nil
}
