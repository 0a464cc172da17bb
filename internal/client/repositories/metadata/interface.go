// Package metadata stores the client's key/value settings, chiefly the
// signed-in session.
package metadata

import "context"

// Key names a metadata row.
type Key string

const (
	KeyUserID       Key = "session.uid"
	KeyEmail        Key = "session.email"
	KeyAccessToken  Key = "session.access_token"
	KeyRefreshToken Key = "session.refresh_token"
)

// Session is the persisted login. A session without a user id or refresh
// token cannot be resumed.
type Session struct {
	UserID       string
	Email        string
	AccessToken  string
	RefreshToken string
}

func (s Session) Resumable() bool {
	return s.UserID != "" && s.RefreshToken != ""
}

type Repository interface {
	// Get returns "" when the key is absent.
	Get(ctx context.Context, key Key) (string, error)
	Set(ctx context.Context, key Key, value string) error
	Delete(ctx context.Context, key Key) error
	List(ctx context.Context) (map[Key]string, error)
	Clear(ctx context.Context) error

	// SaveSession writes every session field in one statement.
	SaveSession(ctx context.Context, s Session) error
	// LoadSession returns nil when no resumable session is stored.
	LoadSession(ctx context.Context) (*Session, error)
	// SaveTokens replaces the stored token pair after a refresh.
	SaveTokens(ctx context.Context, access, refresh string) error
}
