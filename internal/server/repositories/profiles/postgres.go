package profiles

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

const uniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Profile) error {
	prefs, err := json.Marshal(p.Preferences)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	query :=
		`INSERT INTO profiles (uid, is_organizer, signin_date, url_picture, name, surname, preferences)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 `

	_, err = r.db.ExecContext(ctx, query,
		p.UID, p.IsOrganizer, p.SigninDate, p.URLPicture, p.Name, p.Surname, prefs)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return common.ErrorConflict
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, uid string) (*models.Profile, error) {
	query :=
		`SELECT p.uid, p.is_organizer, p.signin_date, p.url_picture, p.name, p.surname, p.preferences,
		        COALESCE((SELECT json_agg(e.id ORDER BY e.creation_date) FROM events e WHERE e.creator = p.uid), '[]'),
		        COALESCE((SELECT json_agg(l.event_id ORDER BY l.created_at) FROM event_likes l WHERE l.user_id = p.uid), '[]')
		 FROM profiles p
		 WHERE p.uid = $1
		 `

	p := &models.Profile{}
	var prefs, created, liked []byte
	err := r.db.QueryRowContext(ctx, query, uid).Scan(
		&p.UID, &p.IsOrganizer, &p.SigninDate, &p.URLPicture, &p.Name, &p.Surname, &prefs, &created, &liked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if err := json.Unmarshal(prefs, &p.Preferences); err != nil {
		return nil, fmt.Errorf("decode preferences: %w", err)
	}
	if err := json.Unmarshal(created, &p.CreatedEvents); err != nil {
		return nil, fmt.Errorf("decode created events: %w", err)
	}
	if err := json.Unmarshal(liked, &p.LikedEvents); err != nil {
		return nil, fmt.Errorf("decode liked events: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Update(ctx context.Context, p *models.Profile) error {
	prefs, err := json.Marshal(p.Preferences)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	query :=
		`UPDATE profiles SET name = $2, surname = $3, preferences = $4
		 WHERE uid = $1
		 `

	res, err := r.db.ExecContext(ctx, query, p.UID, p.Name, p.Surname, prefs)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRow(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, uid string) error {
	query := `DELETE FROM profiles WHERE uid = $1`

	res, err := r.db.ExecContext(ctx, query, uid)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRow(res)
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
