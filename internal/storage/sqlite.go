package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/joshu/internal/vector"
)

// SQLiteVectorCache implements VectorCache on a local SQLite file.
type SQLiteVectorCache struct {
	db *sql.DB
}

// NewSQLiteVectorCache opens or creates a SQLite database at dbPath and
// initializes the schema. Parent directories are created if they do not
// exist.
func NewSQLiteVectorCache(dbPath string) (*SQLiteVectorCache, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &SQLiteVectorCache{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS embeddings (
		text_hash TEXT NOT NULL,
		model TEXT NOT NULL,
		dimensions INTEGER NOT NULL,
		vector BLOB NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (text_hash, model)
	);
	`
	_, err := db.Exec(schema)
	return err
}

// Get returns the cached vector for (textHash, model), or ok=false when no
// entry exists.
func (s *SQLiteVectorCache) Get(ctx context.Context, textHash, model string) ([]float32, bool, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT vector FROM embeddings WHERE text_hash = ? AND model = ?`,
		textHash, model,
	).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	vec, err := vector.DecodeFloat32s(blob)
	if err != nil {
		return nil, false, fmt.Errorf("corrupt cache entry %s/%s: %w", textHash, model, err)
	}
	return vec, true, nil
}

// Put stores a vector, replacing any existing entry for the same key.
func (s *SQLiteVectorCache) Put(ctx context.Context, textHash, model string, vec []float32) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO embeddings (text_hash, model, dimensions, vector)
		 VALUES (?, ?, ?, ?)`,
		textHash, model, len(vec), vector.EncodeFloat32s(vec),
	)
	return err
}

// PutBatch stores entries in a single transaction.
func (s *SQLiteVectorCache) PutBatch(ctx context.Context, entries []CacheEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO embeddings (text_hash, model, dimensions, vector)
		 VALUES (?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.TextHash, e.Model, len(e.Vector), vector.EncodeFloat32s(e.Vector)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Count returns the number of cached embeddings.
func (s *SQLiteVectorCache) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM embeddings`).Scan(&count)
	return count, err
}

// Close releases the underlying database handle.
func (s *SQLiteVectorCache) Close() error {
	return s.db.Close()
}
