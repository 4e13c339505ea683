package metadata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/applylog/internal/dbx"
)

const (
	getQuery    = `SELECT value FROM metadata WHERE key = ?`
	listQuery   = `SELECT key, value FROM metadata ORDER BY key`
	deleteQuery = `DELETE FROM metadata WHERE key = ?`
	clearQuery  = `DELETE FROM metadata`
	upsertQuery = `
		INSERT INTO metadata (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
)

// SQLiteRepository keeps the key/value pairs in the local database. It works
// on any DBTX, so a caller's transaction can span several keys.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func opError(op, key string, err error) error {
	if key == "" {
		return fmt.Errorf("metadata %s: %w", op, err)
	}
	return fmt.Errorf("metadata %s %q: %w", op, key, err)
}

// Get returns (nil, nil) for a missing key.
func (r *SQLiteRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	switch err := r.db.QueryRowContext(ctx, getQuery, key).Scan(&value); {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, opError("get", key, err)
	}
	return value, nil
}

// Set inserts or replaces the value and stamps updated_at.
func (r *SQLiteRepository) Set(ctx context.Context, key string, value []byte) error {
	if _, err := r.db.ExecContext(ctx, upsertQuery, key, value); err != nil {
		return opError("set", key, err)
	}
	return nil
}

// Delete is a no-op for a missing key.
func (r *SQLiteRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, deleteQuery, key); err != nil {
		return opError("delete", key, err)
	}
	return nil
}

// Clear drops the ledger snapshot and the session together.
func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, clearQuery); err != nil {
		return opError("clear", "", err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context) (map[string][]byte, error) {
	rows, err := r.db.QueryContext(ctx, listQuery)
	if err != nil {
		return nil, opError("list", "", err)
	}
	defer rows.Close()

	out := map[string][]byte{}
	for rows.Next() {
		var (
			key   string
			value []byte
		)
		if err := rows.Scan(&key, &value); err != nil {
			return nil, opError("scan", "", err)
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, opError("list", "", err)
	}
	return out, nil
}
