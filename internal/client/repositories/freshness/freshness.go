// Package freshness persists the marker recording when the event collection
// was last fetched. The marker is the single row of the utility table keyed
// by UniqueID; it is overwritten, never deleted.
package freshness

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/boulin/eventverse/internal/dbx"
)

// UniqueID is the fixed key of the marker row.
const UniqueID = "Utility.UNIQUE_ID"

type Repository interface {
	// Read returns the marker, or nil when it has never been written.
	Read(ctx context.Context) (*time.Time, error)
	Write(ctx context.Context, at time.Time) error
}

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Read(ctx context.Context) (*time.Time, error) {
	var ms int64
	err := r.db.QueryRowContext(ctx, `SELECT last_event_fetch FROM utility WHERE id = ?`, UniqueID).Scan(&ms)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read freshness marker: %w", err)
	}
	t := time.UnixMilli(ms)
	return &t, nil
}

func (r *SQLiteRepository) Write(ctx context.Context, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO utility (id, last_event_fetch) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET last_event_fetch = excluded.last_event_fetch`,
		UniqueID, at.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to write freshness marker: %w", err)
	}
	return nil
}
