package services

import (
	"context"
	"database/sql"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/boulin/eventverse/internal/common"
	"github.com/boulin/eventverse/internal/dbx"
	"github.com/boulin/eventverse/internal/server/models"
	"github.com/boulin/eventverse/internal/server/repositories/accounts"
	"github.com/boulin/eventverse/internal/server/repositories/events"
	"github.com/boulin/eventverse/internal/server/repositories/profiles"
	"github.com/boulin/eventverse/internal/server/repositories/refreshtokens"
	"github.com/stretchr/testify/require"
)

// fakeManager hands out the same in-memory repositories whatever handle it
// is given; transactions are observed through sqlmock.
type fakeManager struct {
	accounts *fakeAccounts
	tokens   *fakeTokens
	profiles *fakeProfiles
	events   *fakeEvents
}

func newFakeManager() *fakeManager {
	return &fakeManager{
		accounts: &fakeAccounts{byEmail: map[string]*models.Account{}},
		tokens:   &fakeTokens{byToken: map[string]*models.RefreshToken{}},
		profiles: &fakeProfiles{byUID: map[string]*models.Profile{}},
		events:   &fakeEvents{byID: map[string]*models.Event{}},
	}
}

func (m *fakeManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *fakeManager) Accounts(dbx.DBTX) accounts.Repository           { return m.accounts }
func (m *fakeManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return m.tokens }
func (m *fakeManager) Profiles(dbx.DBTX) profiles.Repository           { return m.profiles }
func (m *fakeManager) Events(dbx.DBTX) events.Repository               { return m.events }

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

type fakeAccounts struct {
	mu      sync.Mutex
	byEmail map[string]*models.Account
	err     error
}

func (f *fakeAccounts) Create(_ context.Context, a *models.Account) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if _, ok := f.byEmail[a.Email]; ok {
		return nil, common.ErrorConflict
	}
	cp := *a
	cp.CreatedAt = time.Now()
	f.byEmail[a.Email] = &cp
	return &cp, nil
}

func (f *fakeAccounts) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	a, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *a
	return &cp, nil
}

type fakeTokens struct {
	mu      sync.Mutex
	byToken map[string]*models.RefreshToken
}

func (f *fakeTokens) Create(_ context.Context, t *models.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *t
	f.byToken[t.Token] = &cp
	return nil
}

func (f *fakeTokens) Consume(_ context.Context, token string) (*models.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.byToken[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	delete(f.byToken, token)
	return t, nil
}

func (f *fakeTokens) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for k, t := range f.byToken {
		if t.Expires.Before(now) {
			delete(f.byToken, k)
			n++
		}
	}
	return n, nil
}

type fakeProfiles struct {
	mu    sync.Mutex
	byUID map[string]*models.Profile
}

func (f *fakeProfiles) Create(_ context.Context, p *models.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byUID[p.UID]; ok {
		return common.ErrorConflict
	}
	cp := *p
	f.byUID[p.UID] = &cp
	return nil
}

func (f *fakeProfiles) Get(_ context.Context, uid string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byUID[uid]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfiles) Update(_ context.Context, p *models.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byUID[p.UID]; !ok {
		return common.ErrorNotFound
	}
	cp := *p
	f.byUID[p.UID] = &cp
	return nil
}

func (f *fakeProfiles) Delete(_ context.Context, uid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byUID[uid]; !ok {
		return common.ErrorNotFound
	}
	delete(f.byUID, uid)
	return nil
}

type fakeEvents struct {
	mu        sync.Mutex
	byID      map[string]*models.Event
	listCalls int
	// afterList runs once a List snapshot is taken, outside the lock.
	afterList func()
}

func cloneEvent(e *models.Event) *models.Event {
	cp := *e
	cp.Liked = slices.Clone(e.Liked)
	if cp.Liked == nil {
		cp.Liked = []string{}
	}
	return &cp
}

func (f *fakeEvents) List(context.Context) ([]*models.Event, error) {
	f.mu.Lock()
	f.listCalls++
	out := make([]*models.Event, 0, len(f.byID))
	for _, e := range f.byID {
		out = append(out, cloneEvent(e))
	}
	hook := f.afterList
	f.mu.Unlock()

	slices.SortFunc(out, func(a, b *models.Event) int { return a.StartDate.Compare(b.StartDate) })
	if hook != nil {
		hook()
	}
	return out, nil
}

func (f *fakeEvents) Get(_ context.Context, id string) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return cloneEvent(e), nil
}

func (f *fakeEvents) Create(_ context.Context, e *models.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[e.ID] = cloneEvent(e)
	return nil
}

func (f *fakeEvents) Update(_ context.Context, e *models.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	old, ok := f.byID[e.ID]
	if !ok {
		return common.ErrorNotFound
	}
	cp := cloneEvent(e)
	cp.Cover, cp.Liked = old.Cover, old.Liked
	f.byID[e.ID] = cp
	return nil
}

func (f *fakeEvents) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeEvents) SetCover(_ context.Context, id, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	e.Cover = url
	return nil
}

func (f *fakeEvents) Like(_ context.Context, id, uid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	if !slices.Contains(e.Liked, uid) {
		e.Liked = append(e.Liked, uid)
	}
	return nil
}

func (f *fakeEvents) Unlike(_ context.Context, id, uid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.byID[id]; ok {
		e.Liked = slices.DeleteFunc(e.Liked, func(s string) bool { return s == uid })
	}
	return nil
}

type mockTx struct {
	mock sqlmock.Sqlmock
}

func (m *mockTx) expectCommit() {
	m.mock.ExpectBegin()
	m.mock.ExpectCommit()
}

func (m *mockTx) expectRollback() {
	m.mock.ExpectBegin()
	m.mock.ExpectRollback()
}
