package store

import (
	"fmt"

	"github.com/notegraph/notegraph/internal/apperr"
	"github.com/notegraph/notegraph/internal/models"
)

// DefaultEdgeLabel is used when the caller supplies no label.
const DefaultEdgeLabel = "related"

// Connect inserts a directed edge between two existing nodes. At most one
// edge exists per ordered (source, target) pair; duplicate inserts are
// silent no-ops regardless of label.
func (db *DB) Connect(source, target, label string) error {
	if label == "" {
		label = DefaultEdgeLabel
	}
	_, err := db.conn.Exec(`
		INSERT OR IGNORE INTO edges (id, source, target, label, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, db.ids.NewID(), source, target, label, db.now())
	if err != nil {
		return apperr.Wrap(apperr.Storage, fmt.Errorf("store: connect %s -> %s: %w", source, target, err))
	}
	return nil
}

// Disconnect removes any edge with the given ordered pair; no-op if absent.
func (db *DB) Disconnect(source, target string) error {
	_, err := db.conn.Exec(`DELETE FROM edges WHERE source = ? AND target = ?`, source, target)
	if err != nil {
		return apperr.Wrap(apperr.Storage, fmt.Errorf("store: disconnect %s -> %s: %w", source, target, err))
	}
	return nil
}

// Graph returns a full snapshot of nodes and edges. The two reads run as
// separate statements and are not snapshot-consistent with each other;
// callers must tolerate an edge whose endpoint is missing from the node set.
func (db *DB) Graph() ([]models.Node, []models.Edge, error) {
	rows, err := db.conn.Query(`
		SELECT id, node_type, title, content_path, metadata, created_at, updated_at
		FROM nodes
	`)
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.Storage, fmt.Errorf("store: graph nodes: %w", err))
	}
	defer rows.Close()

	var nodes []models.Node
	for rows.Next() {
		n, err := scanNode(rows.Scan)
		if err != nil {
			return nil, nil, apperr.Wrap(apperr.Storage, fmt.Errorf("store: scan node: %w", err))
		}
		nodes = append(nodes, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperr.Wrap(apperr.Storage, err)
	}

	edgeRows, err := db.conn.Query(`SELECT id, source, target, label, created_at FROM edges`)
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.Storage, fmt.Errorf("store: graph edges: %w", err))
	}
	defer edgeRows.Close()

	var edges []models.Edge
	for edgeRows.Next() {
		var e models.Edge
		if err := edgeRows.Scan(&e.ID, &e.Source, &e.Target, &e.Label, &e.CreatedAt); err != nil {
			return nil, nil, apperr.Wrap(apperr.Storage, fmt.Errorf("store: scan edge: %w", err))
		}
		edges = append(edges, e)
	}
	if err := edgeRows.Err(); err != nil {
		return nil, nil, apperr.Wrap(apperr.Storage, err)
	}

	return nodes, edges, nil
}
