package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/boulin/eventverse/internal/api"
	"github.com/boulin/eventverse/internal/client/repositories/events"
	"github.com/boulin/eventverse/internal/client/repositories/metadata"
	"github.com/boulin/eventverse/internal/client/repositories/users"
	"github.com/boulin/eventverse/internal/logging"
)

// AuthService manages the account session.
//
// Contract:
//   - Register: create an account on the server.
//   - Login: authenticate, keep the tokens in memory and persist the session.
//   - Restore: load a persisted session at start-up; reports whether one existed.
//   - Logout: forget the session and drop cached rows.
//   - Ping: check server liveness.
type AuthService interface {
	Register(ctx context.Context, email, password string) error
	Login(ctx context.Context, email, password string) (string, error)
	Restore(ctx context.Context) (bool, error)
	Logout(ctx context.Context) error
	CurrentUserID() string
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// AuthClient is the part of the API client used for authentication.
type AuthClient interface {
	Register(ctx context.Context, email, password string) (*api.Account, error)
	Login(ctx context.Context, email, password string) (*api.TokenPair, error)
	SetTokens(access, refresh string)
	OnTokenRefresh(fn func(api.TokenPair))
}

// Pinger reports server liveness.
type Pinger interface {
	Ping(ctx context.Context) error
	Close() error
}

type authService struct {
	client AuthClient
	health Pinger
	db     *sql.DB
	events events.Repository
	users  users.Repository
	log    logging.Logger

	mu  sync.RWMutex
	uid string
}

func NewAuthService(client AuthClient, health Pinger, db *sql.DB, ev events.Repository, us users.Repository, log logging.Logger) AuthService {
	if log == nil {
		log = logging.Nop{}
	}
	a := &authService{
		client: client,
		health: health,
		db:     db,
		events: ev,
		users:  us,
		log:    log.With("module", "auth"),
	}
	client.OnTokenRefresh(a.persistTokens)
	return a
}

func (a *authService) Register(ctx context.Context, email, password string) error {
	if _, err := a.client.Register(ctx, email, password); err != nil {
		return err
	}
	return nil
}

func (a *authService) Login(ctx context.Context, email, password string) (string, error) {
	pair, err := a.client.Login(ctx, email, password)
	if err != nil {
		return "", err
	}

	err = metadata.NewSQLiteRepository(a.db).SaveSession(ctx, metadata.Session{
		UserID:       pair.UID,
		Email:        email,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
	if err != nil {
		return "", fmt.Errorf("session saving error: %w", err)
	}

	a.setUID(pair.UID)
	a.log.Info(ctx, "logged in", "uid", pair.UID)
	return pair.UID, nil
}

func (a *authService) Restore(ctx context.Context) (bool, error) {
	session, err := metadata.NewSQLiteRepository(a.db).LoadSession(ctx)
	if err != nil || session == nil {
		return false, err
	}

	a.client.SetTokens(session.AccessToken, session.RefreshToken)
	a.setUID(session.UserID)
	return true, nil
}

func (a *authService) Logout(ctx context.Context) error {
	if err := metadata.NewSQLiteRepository(a.db).Clear(ctx); err != nil {
		return err
	}
	if err := a.events.DeleteAll(ctx); err != nil {
		return err
	}
	if err := a.users.DeleteAll(ctx); err != nil {
		return err
	}
	a.client.SetTokens("", "")
	a.setUID("")
	return nil
}

func (a *authService) CurrentUserID() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.uid
}

func (a *authService) Ping(ctx context.Context) error {
	return a.health.Ping(ctx)
}

func (a *authService) Close(ctx context.Context) error {
	return a.health.Close()
}

func (a *authService) setUID(uid string) {
	a.mu.Lock()
	a.uid = uid
	a.mu.Unlock()
}

// persistTokens stores a rotated pair so the next start-up resumes with it.
func (a *authService) persistTokens(pair api.TokenPair) {
	ctx := context.Background()
	if err := metadata.NewSQLiteRepository(a.db).SaveTokens(ctx, pair.AccessToken, pair.RefreshToken); err != nil {
		a.log.Warn(ctx, "failed to persist tokens", "error", err)
	}
}
