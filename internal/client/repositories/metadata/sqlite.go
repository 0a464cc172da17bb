package metadata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/boulin/eventverse/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, key Key) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("error reading %s: %w", key, err)
	}
	return value, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, key Key, value string) error {
	return r.upsert(ctx, map[Key]string{key: value})
}

// upsert writes all pairs with a single multi-row statement.
func (r *SQLiteRepository) upsert(ctx context.Context, pairs map[Key]string) error {
	if len(pairs) == 0 {
		return nil
	}
	rows := make([]string, 0, len(pairs))
	args := make([]any, 0, 2*len(pairs))
	for k, v := range pairs {
		rows = append(rows, "(?, ?)")
		args = append(args, string(k), v)
	}
	query := `INSERT INTO metadata (key, value) VALUES ` + strings.Join(rows, ", ") +
		` ON CONFLICT(key) DO UPDATE SET value = excluded.value`

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("error saving metadata: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, key Key) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM metadata WHERE key = ?`, key); err != nil {
		return fmt.Errorf("error deleting %s: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM metadata`); err != nil {
		return fmt.Errorf("error clearing metadata: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context) (map[Key]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM metadata`)
	if err != nil {
		return nil, fmt.Errorf("error listing metadata: %w", err)
	}
	defer rows.Close()

	result := make(map[Key]string)
	for rows.Next() {
		var key Key
		var value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("error scanning metadata row: %w", err)
		}
		result[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) SaveSession(ctx context.Context, s Session) error {
	return r.upsert(ctx, map[Key]string{
		KeyUserID:       s.UserID,
		KeyEmail:        s.Email,
		KeyAccessToken:  s.AccessToken,
		KeyRefreshToken: s.RefreshToken,
	})
}

func (r *SQLiteRepository) LoadSession(ctx context.Context) (*Session, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	s := Session{
		UserID:       all[KeyUserID],
		Email:        all[KeyEmail],
		AccessToken:  all[KeyAccessToken],
		RefreshToken: all[KeyRefreshToken],
	}
	if !s.Resumable() {
		return nil, nil
	}
	return &s, nil
}

func (r *SQLiteRepository) SaveTokens(ctx context.Context, access, refresh string) error {
	return r.upsert(ctx, map[Key]string{
		KeyAccessToken:  access,
		KeyRefreshToken: refresh,
	})
}
