package store

import (
	"fmt"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"

	"github.com/notegraph/notegraph/internal/apperr"
)

// FTSResult is one full-text search hit. Rank follows FTS5 bm25 semantics:
// lower is better, typically negative.
type FTSResult struct {
	ID      string
	Title   string
	Snippet string
	Rank    float64
}

// VectorMatch is one chunk-level nearest-neighbour hit. Multiple chunks of
// the same node may appear.
type VectorMatch struct {
	NodeID   string
	Distance float64
}

// FTSSearch runs an FTS5 MATCH query over the document index, returning up
// to limit rows ordered by rank ascending. Snippets highlight matches with
// <b>…</b> over a 10-token window.
func (db *DB) FTSSearch(query string, limit int) ([]FTSResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT id,
		       title,
		       snippet(nodes_fts, 2, '<b>', '</b>', '...', 10),
		       rank
		FROM nodes_fts
		WHERE nodes_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, apperr.Wrap(apperr.Storage, fmt.Errorf("store: fts search: %w", err))
	}
	defer rows.Close()

	var out []FTSResult
	for rows.Next() {
		var r FTSResult
		if err := rows.Scan(&r.ID, &r.Title, &r.Snippet, &r.Rank); err != nil {
			return nil, apperr.Wrap(apperr.Storage, fmt.Errorf("store: scan fts row: %w", err))
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// VectorSearch returns up to limit chunk matches ordered by distance
// ascending, each carrying its owning node id.
func (db *DB) VectorSearch(embedding []float32, limit int) ([]VectorMatch, error) {
	if err := db.checkDim(embedding); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}
	serialized, err := sqlite_vec.SerializeFloat32(embedding)
	if err != nil {
		return nil, apperr.Wrap(apperr.Storage, fmt.Errorf("store: serialize query embedding: %w", err))
	}

	rows, err := db.conn.Query(`
		SELECT node_id, distance
		FROM nodes_vec
		WHERE embedding MATCH ? AND k = ?
		ORDER BY distance
	`, serialized, limit)
	if err != nil {
		return nil, apperr.Wrap(apperr.Storage, fmt.Errorf("store: vector search: %w", err))
	}
	defer rows.Close()

	var out []VectorMatch
	for rows.Next() {
		var m VectorMatch
		if err := rows.Scan(&m.NodeID, &m.Distance); err != nil {
			return nil, apperr.Wrap(apperr.Storage, fmt.Errorf("store: scan vector row: %w", err))
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ContextSnippet is a (title, content) pair used to ground chat replies.
type ContextSnippet struct {
	Title   string
	Content string
}

// TopContext returns up to limit (title, content) snippets for the nodes
// nearest to the query embedding, joining chunk matches back through the
// node row to the document-level FTS content.
func (db *DB) TopContext(embedding []float32, limit int) ([]ContextSnippet, error) {
	if err := db.checkDim(embedding); err != nil {
		return nil, err
	}
	serialized, err := sqlite_vec.SerializeFloat32(embedding)
	if err != nil {
		return nil, apperr.Wrap(apperr.Storage, fmt.Errorf("store: serialize query embedding: %w", err))
	}

	rows, err := db.conn.Query(`
		SELECT n.title, fts.content
		FROM (
			SELECT node_id, distance
			FROM nodes_vec
			WHERE embedding MATCH ? AND k = ?
			ORDER BY distance
		) v
		JOIN nodes n ON n.id = v.node_id
		JOIN nodes_fts fts ON fts.id = n.id
	`, serialized, limit)
	if err != nil {
		return nil, apperr.Wrap(apperr.Storage, fmt.Errorf("store: context search: %w", err))
	}
	defer rows.Close()

	var out []ContextSnippet
	for rows.Next() {
		var s ContextSnippet
		if err := rows.Scan(&s.Title, &s.Content); err != nil {
			return nil, apperr.Wrap(apperr.Storage, fmt.Errorf("store: scan context row: %w", err))
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
