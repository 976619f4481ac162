// Package storage persists client-side state under the data directory.
// Conversation history is deliberately not persisted; only document metadata
// survives restarts, so the picker is populated before the backend is
// reachable.
package storage

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// CachedDocument is one row of the local document metadata cache.
type CachedDocument struct {
	ID         string
	Filename   string
	ChunkCount int
	AddedAt    time.Time
}

// DocumentCache is a sqlite-backed mirror of the backend's document list.
// The backend stays authoritative: the cache is reconciled against
// GET /api/pdfs at startup and rewritten on every registry change.
type DocumentCache struct {
	db *sql.DB
}

// NewDocumentCache opens (creating if needed) documents.db in dataDir.
func NewDocumentCache(dataDir string) (*DocumentCache, error) {
	dbPath := filepath.Join(dataDir, "documents.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	cache := &DocumentCache{db: db}
	if err := cache.initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return cache, nil
}

func (dc *DocumentCache) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		filename TEXT NOT NULL,
		chunk_count INTEGER NOT NULL,
		added_at DATETIME NOT NULL
	);
	`
	_, err := dc.db.Exec(schema)
	return err
}

// Put inserts or updates a document row, preserving the original added_at on
// update so insertion order survives reconciliation.
func (dc *DocumentCache) Put(doc CachedDocument) error {
	if doc.AddedAt.IsZero() {
		doc.AddedAt = time.Now()
	}
	_, err := dc.db.Exec(`
		INSERT INTO documents (id, filename, chunk_count, added_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET filename = excluded.filename, chunk_count = excluded.chunk_count`,
		doc.ID, doc.Filename, doc.ChunkCount, doc.AddedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to cache document %s: %w", doc.ID, err)
	}
	return nil
}

// Delete removes a document row. Deleting an absent id is a no-op.
func (dc *DocumentCache) Delete(id string) error {
	if _, err := dc.db.Exec(`DELETE FROM documents WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete cached document %s: %w", id, err)
	}
	return nil
}

// All returns the cached documents ordered by when they were first added.
func (dc *DocumentCache) All() ([]CachedDocument, error) {
	rows, err := dc.db.Query(`SELECT id, filename, chunk_count, added_at FROM documents ORDER BY added_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cached documents: %w", err)
	}
	defer rows.Close()

	var docs []CachedDocument
	for rows.Next() {
		var doc CachedDocument
		if err := rows.Scan(&doc.ID, &doc.Filename, &doc.ChunkCount, &doc.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cached document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Close releases the database handle.
func (dc *DocumentCache) Close() error {
	return dc.db.Close()
}
