package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"

	"github.com/notegraph/notegraph/internal/apperr"
	"github.com/notegraph/notegraph/internal/models"
)

// CreateIngestedNode inserts a fully-ingested node in a single transaction:
// the node row, one FTS row covering the whole document, and one vector row
// per chunk embedding. All-or-nothing; the caller's artifact file is not
// touched on rollback.
func (db *DB) CreateIngestedNode(n *models.Node, content string, embeddings [][]float32) error {
	for _, emb := range embeddings {
		if err := db.checkDim(emb); err != nil {
			return err
		}
	}
	metaJSON, err := json.Marshal(n.Metadata)
	if err != nil {
		return apperr.Wrap(apperr.Validation, fmt.Errorf("store: encode metadata: %w", err))
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return apperr.Wrap(apperr.Storage, fmt.Errorf("store: begin tx: %w", err))
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	var contentPath any
	if n.ContentPath != "" {
		contentPath = n.ContentPath
	}
	_, err = tx.Exec(`
		INSERT INTO nodes (id, node_type, title, content_path, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, n.ID, n.Type, n.Title, contentPath, string(metaJSON), n.CreatedAt, n.UpdatedAt)
	if err != nil {
		return apperr.Wrap(apperr.Storage, fmt.Errorf("store: insert ingested node: %w", err))
	}

	if err := indexDocumentTx(tx, n.ID, n.Title, content, embeddings); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return apperr.Wrap(apperr.Storage, fmt.Errorf("store: commit ingest: %w", err))
	}
	return nil
}

// IndexDocument (re)indexes an existing node: one FTS row for the whole
// document and one vector row per chunk, transactionally. Previous index
// entries for the node are replaced.
func (db *DB) IndexDocument(nodeID, title, content string, embeddings [][]float32) error {
	for _, emb := range embeddings {
		if err := db.checkDim(emb); err != nil {
			return err
		}
	}
	tx, err := db.conn.Begin()
	if err != nil {
		return apperr.Wrap(apperr.Storage, fmt.Errorf("store: begin tx: %w", err))
	}
	defer tx.Rollback() //nolint:errcheck

	if err := deleteVectorsTx(tx, nodeID); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM nodes_fts WHERE id = ?`, nodeID); err != nil {
		return apperr.Wrap(apperr.Storage, fmt.Errorf("store: clear fts row: %w", err))
	}
	if err := indexDocumentTx(tx, nodeID, title, content, embeddings); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return apperr.Wrap(apperr.Storage, fmt.Errorf("store: commit index: %w", err))
	}
	return nil
}

// RefreshDocument replaces the FTS row content for a node and bumps
// updated_at, leaving chunk vectors untouched. Used when an artifact file
// changes outside an ingest (re-embedding is a re-ingest concern).
func (db *DB) RefreshDocument(nodeID, title, content string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return apperr.Wrap(apperr.Storage, fmt.Errorf("store: begin tx: %w", err))
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.Exec(`UPDATE nodes SET updated_at = ? WHERE id = ?`, db.now(), nodeID)
	if err != nil {
		return apperr.Wrap(apperr.Storage, fmt.Errorf("store: refresh node: %w", err))
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return apperr.New(apperr.NotFound, "store: node %s not found", nodeID)
	}
	if _, err := tx.Exec(`DELETE FROM nodes_fts WHERE id = ?`, nodeID); err != nil {
		return apperr.Wrap(apperr.Storage, fmt.Errorf("store: clear fts row: %w", err))
	}
	if _, err := tx.Exec(`
		INSERT INTO nodes_fts (id, title, content) VALUES (?, ?, ?)
	`, nodeID, title, content); err != nil {
		return apperr.Wrap(apperr.Storage, fmt.Errorf("store: refresh fts row: %w", err))
	}
	return tx.Commit()
}

// indexDocumentTx inserts the FTS row and the chunk vector rows inside an
// open transaction. Each chunk id comes from the chunks table; its rowid
// keys the vec0 row so deletes stay cascade-safe.
func indexDocumentTx(tx *sql.Tx, nodeID, title, content string, embeddings [][]float32) error {
	if _, err := tx.Exec(`
		INSERT INTO nodes_fts (id, title, content) VALUES (?, ?, ?)
	`, nodeID, title, content); err != nil {
		return apperr.Wrap(apperr.Storage, fmt.Errorf("store: insert fts row: %w", err))
	}

	for _, emb := range embeddings {
		res, err := tx.Exec(`INSERT INTO chunks (node_id) VALUES (?)`, nodeID)
		if err != nil {
			return apperr.Wrap(apperr.Storage, fmt.Errorf("store: insert chunk: %w", err))
		}
		chunkID, err := res.LastInsertId()
		if err != nil {
			return apperr.Wrap(apperr.Storage, fmt.Errorf("store: chunk id: %w", err))
		}
		serialized, err := sqlite_vec.SerializeFloat32(emb)
		if err != nil {
			return apperr.Wrap(apperr.Storage, fmt.Errorf("store: serialize embedding: %w", err))
		}
		if _, err := tx.Exec(`
			INSERT INTO nodes_vec (rowid, embedding, node_id) VALUES (?, ?, ?)
		`, chunkID, serialized, nodeID); err != nil {
			return apperr.Wrap(apperr.Storage, fmt.Errorf("store: insert vector: %w", err))
		}
	}
	return nil
}

// deleteVectorsTx removes all vec0 rows belonging to a node. vec0 rows must
// be deleted by rowid; the chunks table supplies them.
func deleteVectorsTx(tx *sql.Tx, nodeID string) error {
	rows, err := tx.Query(`SELECT id FROM chunks WHERE node_id = ?`, nodeID)
	if err != nil {
		return apperr.Wrap(apperr.Storage, fmt.Errorf("store: list chunks: %w", err))
	}
	var chunkIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return apperr.Wrap(apperr.Storage, fmt.Errorf("store: scan chunk id: %w", err))
		}
		chunkIDs = append(chunkIDs, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return apperr.Wrap(apperr.Storage, err)
	}

	for _, id := range chunkIDs {
		if _, err := tx.Exec(`DELETE FROM nodes_vec WHERE rowid = ?`, id); err != nil {
			return apperr.Wrap(apperr.Storage, fmt.Errorf("store: delete vector: %w", err))
		}
	}
	if _, err := tx.Exec(`DELETE FROM chunks WHERE node_id = ?`, nodeID); err != nil {
		return apperr.Wrap(apperr.Storage, fmt.Errorf("store: delete chunks: %w", err))
	}
	return nil
}
