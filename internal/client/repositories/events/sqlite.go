package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/boulin/eventverse/internal/api"
	"github.com/boulin/eventverse/internal/client/live"
	"github.com/boulin/eventverse/internal/dbx"
	"github.com/boulin/eventverse/internal/timex"
)

const columns = `id, title, cover, description, start_date, end_date,
	location_name, location_longitude, location_latitude, target, liked, creator, creation_date`

// SQLiteRepository implements Repository over the client cache database.
type SQLiteRepository struct {
	db       *sql.DB
	notifier *live.Notifier
}

func NewSQLiteRepository(db *sql.DB, n *live.Notifier) *SQLiteRepository {
	return &SQLiteRepository{db: db, notifier: n}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, e *api.Event) error {
	if err := upsert(ctx, r.db, e); err != nil {
		return err
	}
	r.notifier.Publish(live.TopicEvents)
	return nil
}

func upsert(ctx context.Context, db dbx.DBTX, e *api.Event) error {
	liked, err := json.Marshal(nonNil(e.Liked))
	if err != nil {
		return fmt.Errorf("failed to encode liked list: %w", err)
	}

	query := `INSERT INTO events (` + columns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			cover = excluded.cover,
			description = excluded.description,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			location_name = excluded.location_name,
			location_longitude = excluded.location_longitude,
			location_latitude = excluded.location_latitude,
			target = excluded.target,
			liked = excluded.liked,
			creator = excluded.creator,
			creation_date = excluded.creation_date`

	_, err = db.ExecContext(ctx, query,
		e.ID, e.Title, e.Cover, e.Description,
		e.StartDate.Ms(), e.EndDate.Ms(),
		e.Location.Name, e.Location.Longitude, e.Location.Latitude,
		int(e.Target), string(liked), e.Creator, e.CreationDate.Ms(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert event %s: %w", e.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*api.Event, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM events WHERE id = ?`, id)
	e, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event %s: %w", id, err)
	}
	return e, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]api.Event, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+columns+` FROM events ORDER BY start_date, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select events: %w", err)
	}
	defer rows.Close()

	result := []api.Event{}
	for rows.Next() {
		e, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		result = append(result, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete event %s: %w", id, err)
	}
	r.notifier.Publish(live.TopicEvents)
	return nil
}

func (r *SQLiteRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM events`); err != nil {
		return fmt.Errorf("failed to delete events: %w", err)
	}
	r.notifier.Publish(live.TopicEvents)
	return nil
}

func (r *SQLiteRepository) ReplaceAll(ctx context.Context, items []api.Event) error {
	return dbx.WithTxThen(ctx, r.db, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM events`); err != nil {
			return fmt.Errorf("failed to clear events: %w", err)
		}
		for i := range items {
			if err := upsert(ctx, tx, &items[i]); err != nil {
				return err
			}
		}
		return nil
	}, func() { r.notifier.Publish(live.TopicEvents) })
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (*api.Event, error) {
	var (
		e                   api.Event
		start, end, created int64
		target              int
		liked               string
	)
	err := s.Scan(&e.ID, &e.Title, &e.Cover, &e.Description, &start, &end,
		&e.Location.Name, &e.Location.Longitude, &e.Location.Latitude,
		&target, &liked, &e.Creator, &created)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(liked), &e.Liked); err != nil {
		return nil, fmt.Errorf("failed to decode liked list: %w", err)
	}
	e.StartDate = timex.FromMs(start)
	e.EndDate = timex.FromMs(end)
	e.CreationDate = timex.FromMs(created)
	e.Target = api.TargetAudience(target)
	return &e, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
