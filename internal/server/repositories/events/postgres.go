package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/boulin/eventverse/internal/common"
	"github.com/boulin/eventverse/internal/dbx"
	"github.com/boulin/eventverse/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

// foreignKeyViolation is reported when a like references a missing event.
const foreignKeyViolation = "23503"

const selectEvents = `
	SELECT e.id, e.title, e.cover, e.description, e.start_date, e.end_date,
	       e.location_name, e.location_longitude, e.location_latitude,
	       e.target, e.creator, e.creation_date,
	       COALESCE((SELECT json_agg(l.user_id ORDER BY l.created_at) FROM event_likes l WHERE l.event_id = e.id), '[]')
	FROM events e
	`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(row scanner) (*models.Event, error) {
	e := &models.Event{}
	var liked []byte
	if err := row.Scan(&e.ID, &e.Title, &e.Cover, &e.Description, &e.StartDate, &e.EndDate,
		&e.LocationName, &e.Longitude, &e.Latitude,
		&e.Target, &e.Creator, &e.CreationDate, &liked); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(liked, &e.Liked); err != nil {
		return nil, fmt.Errorf("decode likes: %w", err)
	}
	return e, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Event, error) {
	rows, err := r.db.QueryContext(ctx, selectEvents+`ORDER BY e.start_date, e.id`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Event, error) {
	e, err := scanEvent(r.db.QueryRowContext(ctx, selectEvents+`WHERE e.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

func (r *PostgresRepository) Create(ctx context.Context, e *models.Event) error {
	query :=
		`INSERT INTO events (id, title, cover, description, start_date, end_date,
		                     location_name, location_longitude, location_latitude,
		                     target, creator, creation_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 `

	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.Title, e.Cover, e.Description, e.StartDate, e.EndDate,
		e.LocationName, e.Longitude, e.Latitude,
		int(e.Target), e.Creator, e.CreationDate)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, e *models.Event) error {
	query :=
		`UPDATE events SET title = $2, description = $3, start_date = $4, end_date = $5,
		                   location_name = $6, location_longitude = $7, location_latitude = $8,
		                   target = $9
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query,
		e.ID, e.Title, e.Description, e.StartDate, e.EndDate,
		e.LocationName, e.Longitude, e.Latitude, int(e.Target))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRow(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRow(res)
}

func (r *PostgresRepository) SetCover(ctx context.Context, id string, url string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE events SET cover = $2 WHERE id = $1`, id, url)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRow(res)
}

func (r *PostgresRepository) Like(ctx context.Context, id string, uid string) error {
	query :=
		`INSERT INTO event_likes (event_id, user_id)
		 VALUES ($1, $2)
		 ON CONFLICT DO NOTHING
		 `

	if _, err := r.db.ExecContext(ctx, query, id, uid); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Unlike(ctx context.Context, id string, uid string) error {
	query := `DELETE FROM event_likes WHERE event_id = $1 AND user_id = $2`

	if _, err := r.db.ExecContext(ctx, query, id, uid); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
