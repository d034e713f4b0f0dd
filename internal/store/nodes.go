package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/notegraph/notegraph/internal/apperr"
	"github.com/notegraph/notegraph/internal/models"
)

// CreateNode allocates an id and inserts a node row with empty content path.
func (db *DB) CreateNode(nodeType, title string, metadata map[string]any) (*models.Node, error) {
	id := db.ids.NewID()
	now := db.now()

	if metadata == nil {
		metadata = map[string]any{}
	}
	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, apperr.Wrap(apperr.Validation, fmt.Errorf("store: encode metadata: %w", err))
	}

	_, err = db.conn.Exec(`
		INSERT INTO nodes (id, node_type, title, content_path, metadata, created_at, updated_at)
		VALUES (?, ?, ?, NULL, ?, ?, ?)
	`, id, nodeType, title, string(metaJSON), now, now)
	if err != nil {
		return nil, apperr.Wrap(apperr.Storage, fmt.Errorf("store: create node: %w", err))
	}

	return &models.Node{
		ID:        id,
		Type:      nodeType,
		Title:     title,
		Metadata:  metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// GetNode returns the node with the given id, or nil when absent.
func (db *DB) GetNode(id string) (*models.Node, error) {
	row := db.conn.QueryRow(`
		SELECT id, node_type, title, content_path, metadata, created_at, updated_at
		FROM nodes WHERE id = ?
	`, id)
	n, err := scanNode(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Storage, fmt.Errorf("store: get node %s: %w", id, err))
	}
	return n, nil
}

// SetContentPath records the artifact filename for a node and bumps
// updated_at. The artifact file must already be written.
func (db *DB) SetContentPath(id, contentPath string) error {
	res, err := db.conn.Exec(`
		UPDATE nodes SET content_path = ?, updated_at = ? WHERE id = ?
	`, contentPath, db.now(), id)
	if err != nil {
		return apperr.Wrap(apperr.Storage, fmt.Errorf("store: set content path: %w", err))
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return apperr.New(apperr.NotFound, "store: node %s not found", id)
	}
	return nil
}

// DeleteNode removes a node row together with its FTS entry and chunk
// vectors; incident edges and chunk rows cascade through foreign keys.
// Deleting a missing node is a no-op success. The returned content path
// (empty when unset) lets the caller clean up the artifact file.
func (db *DB) DeleteNode(id string) (string, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return "", apperr.Wrap(apperr.Storage, fmt.Errorf("store: begin tx: %w", err))
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	var contentPath sql.NullString
	err = tx.QueryRow(`SELECT content_path FROM nodes WHERE id = ?`, id).Scan(&contentPath)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", apperr.Wrap(apperr.Storage, fmt.Errorf("store: read content path: %w", err))
	}

	// vec0 rows do not cascade; remove them by chunk rowid first.
	if err := deleteVectorsTx(tx, id); err != nil {
		return "", err
	}
	if _, err := tx.Exec(`DELETE FROM nodes_fts WHERE id = ?`, id); err != nil {
		return "", apperr.Wrap(apperr.Storage, fmt.Errorf("store: delete fts row: %w", err))
	}
	if _, err := tx.Exec(`DELETE FROM nodes WHERE id = ?`, id); err != nil {
		return "", apperr.Wrap(apperr.Storage, fmt.Errorf("store: delete node: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return "", apperr.Wrap(apperr.Storage, fmt.Errorf("store: commit delete: %w", err))
	}
	return contentPath.String, nil
}

// UpdatePosition merges {x, y} into the node's metadata at the top level,
// preserving other keys, and bumps updated_at. Missing or malformed
// metadata is treated as an empty object.
func (db *DB) UpdatePosition(id string, x, y float64) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return apperr.Wrap(apperr.Storage, fmt.Errorf("store: begin tx: %w", err))
	}
	defer tx.Rollback() //nolint:errcheck

	var raw sql.NullString
	err = tx.QueryRow(`SELECT metadata FROM nodes WHERE id = ?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.New(apperr.NotFound, "store: node %s not found", id)
	}
	if err != nil {
		return apperr.Wrap(apperr.Storage, fmt.Errorf("store: read metadata: %w", err))
	}

	meta := decodeMetadata(raw)
	meta["x"] = x
	meta["y"] = y

	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return apperr.Wrap(apperr.Storage, fmt.Errorf("store: encode metadata: %w", err))
	}
	if _, err := tx.Exec(`
		UPDATE nodes SET metadata = ?, updated_at = ? WHERE id = ?
	`, string(metaJSON), db.now(), id); err != nil {
		return apperr.Wrap(apperr.Storage, fmt.Errorf("store: update position: %w", err))
	}
	return tx.Commit()
}

// scanNode reads one node row; the scan argument order matches the
// SELECT column order used throughout this package.
func scanNode(scan func(...any) error) (*models.Node, error) {
	var (
		n           models.Node
		contentPath sql.NullString
		raw         sql.NullString
	)
	if err := scan(&n.ID, &n.Type, &n.Title, &contentPath, &raw, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return nil, err
	}
	n.ContentPath = contentPath.String
	n.Metadata = decodeMetadata(raw)
	return &n, nil
}

// decodeMetadata parses the stored JSON object, falling back to an empty
// object for NULL or malformed values.
func decodeMetadata(raw sql.NullString) map[string]any {
	if !raw.Valid || raw.String == "" {
		return map[string]any{}
	}
	var meta map[string]any
	if err := json.Unmarshal([]byte(raw.String), &meta); err != nil || meta == nil {
		return map[string]any{}
	}
	return meta
}
