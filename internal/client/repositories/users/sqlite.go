package users

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/boulin/eventverse/internal/api"
	"github.com/boulin/eventverse/internal/client/live"
	"github.com/boulin/eventverse/internal/timex"
)

type SQLiteRepository struct {
	db       *sql.DB
	notifier *live.Notifier
}

func NewSQLiteRepository(db *sql.DB, n *live.Notifier) *SQLiteRepository {
	return &SQLiteRepository{db: db, notifier: n}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, u *api.User) error {
	created, err := json.Marshal(orEmpty(u.CreatedEvents))
	if err != nil {
		return fmt.Errorf("failed to encode created events: %w", err)
	}
	liked, err := json.Marshal(orEmpty(u.LikedEvents))
	if err != nil {
		return fmt.Errorf("failed to encode liked events: %w", err)
	}
	prefs, err := json.Marshal(u.Preferences)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO users (uid, is_organizer, signin_date, url_picture, name, surname,
			created_events, liked_events, preferences)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(uid) DO UPDATE SET
			is_organizer = excluded.is_organizer,
			signin_date = excluded.signin_date,
			url_picture = excluded.url_picture,
			name = excluded.name,
			surname = excluded.surname,
			created_events = excluded.created_events,
			liked_events = excluded.liked_events,
			preferences = excluded.preferences`,
		u.UID, u.IsOrganizer, u.SigninDate.Ms(), u.URLPicture, u.Name, u.Surname,
		string(created), string(liked), string(prefs))
	if err != nil {
		return fmt.Errorf("failed to upsert user %s: %w", u.UID, err)
	}
	r.notifier.Publish(live.TopicUsers)
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, uid string) (*api.User, error) {
	var (
		u                     api.User
		signin                int64
		created, liked, prefs string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT uid, is_organizer, signin_date, url_picture, name, surname,
			created_events, liked_events, preferences
		FROM users WHERE uid = ?`, uid).
		Scan(&u.UID, &u.IsOrganizer, &signin, &u.URLPicture, &u.Name, &u.Surname, &created, &liked, &prefs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", uid, err)
	}

	u.SigninDate = timex.FromMs(signin)
	if err := json.Unmarshal([]byte(created), &u.CreatedEvents); err != nil {
		return nil, fmt.Errorf("failed to decode created events: %w", err)
	}
	if err := json.Unmarshal([]byte(liked), &u.LikedEvents); err != nil {
		return nil, fmt.Errorf("failed to decode liked events: %w", err)
	}
	if err := json.Unmarshal([]byte(prefs), &u.Preferences); err != nil {
		return nil, fmt.Errorf("failed to decode preferences: %w", err)
	}
	return &u, nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, uid string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE uid = ?`, uid); err != nil {
		return fmt.Errorf("failed to delete user %s: %w", uid, err)
	}
	r.notifier.Publish(live.TopicUsers)
	return nil
}

func (r *SQLiteRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM users`); err != nil {
		return fmt.Errorf("failed to delete users: %w", err)
	}
	r.notifier.Publish(live.TopicUsers)
	return nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
