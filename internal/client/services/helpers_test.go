package services

import (
	"context"
	"database/sql"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/boulin/eventverse/internal/api"
	clientdb "github.com/boulin/eventverse/internal/client/db"
	"github.com/boulin/eventverse/internal/client/live"
	"github.com/boulin/eventverse/internal/client/netbound"
	"github.com/boulin/eventverse/internal/client/repositories/events"
	"github.com/boulin/eventverse/internal/client/repositories/freshness"
	"github.com/boulin/eventverse/internal/client/repositories/users"
	"github.com/boulin/eventverse/internal/client/resource"
	"github.com/stretchr/testify/require"
)

// clock is a settable time source.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// fakeEvents is an in-memory EventClient that counts calls.
type fakeEvents struct {
	mu       sync.Mutex
	all      []api.Event
	byID     map[string]*api.Event
	err      error
	calls    map[string]int
	uploaded []byte
	upload   *api.CoverUpload
}

func newFakeEvents() *fakeEvents {
	return &fakeEvents{byID: map[string]*api.Event{}, calls: map[string]int{}}
}

func (f *fakeEvents) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeEvents) hit(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
	return f.err
}

func (f *fakeEvents) one(name, id string) (*api.Event, error) {
	if err := f.hit(name); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.byID[id]
	if !ok {
		return &api.Event{ID: id}, nil
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEvents) GetAllEvents(context.Context) ([]api.Event, error) {
	if err := f.hit("GetAllEvents"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]api.Event(nil), f.all...), nil
}

func (f *fakeEvents) GetEvent(_ context.Context, id string) (*api.Event, error) {
	return f.one("GetEvent", id)
}

func (f *fakeEvents) CreateEvent(_ context.Context, in api.EventInput) (*api.Event, error) {
	if err := f.hit("CreateEvent"); err != nil {
		return nil, err
	}
	return &api.Event{ID: "new", Title: in.Title, StartDate: in.StartDate, EndDate: in.EndDate, Target: in.Target, Creator: "org"}, nil
}

func (f *fakeEvents) UpdateEvent(_ context.Context, id string, in api.EventInput) (*api.Event, error) {
	if err := f.hit("UpdateEvent"); err != nil {
		return nil, err
	}
	return &api.Event{ID: id, Title: in.Title}, nil
}

func (f *fakeEvents) DeleteEvent(_ context.Context, id string) (*api.Event, error) {
	return f.one("DeleteEvent", id)
}

func (f *fakeEvents) LikeEvent(_ context.Context, id string) (*api.Event, error) {
	e, err := f.one("LikeEvent", id)
	if err != nil {
		return nil, err
	}
	e.Liked = append(e.Liked, "me")
	return e, nil
}

func (f *fakeEvents) UnlikeEvent(_ context.Context, id string) (*api.Event, error) {
	e, err := f.one("UnlikeEvent", id)
	if err != nil {
		return nil, err
	}
	e.Liked = nil
	return e, nil
}

func (f *fakeEvents) RequestCoverUpload(_ context.Context, id string) (*api.CoverUpload, error) {
	if err := f.hit("RequestCoverUpload"); err != nil {
		return nil, err
	}
	return f.upload, nil
}

func (f *fakeEvents) UploadCover(_ context.Context, _ string, _ string, body io.Reader) error {
	if err := f.hit("UploadCover"); err != nil {
		return err
	}
	b, err := io.ReadAll(body)
	f.mu.Lock()
	f.uploaded = b
	f.mu.Unlock()
	return err
}

type fixture struct {
	db     *sql.DB
	events *events.SQLiteRepository
	users  *users.SQLiteRepository
	marker *freshness.SQLiteRepository
	engine *netbound.Engine
	clock  *clock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := clientdb.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	n := live.NewNotifier()
	return &fixture{
		db:     db,
		events: events.NewSQLiteRepository(db, n),
		users:  users.NewSQLiteRepository(db, n),
		marker: freshness.NewSQLiteRepository(db),
		engine: netbound.NewEngine(n, nil),
		clock:  &clock{now: time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)},
	}
}

func (fx *fixture) eventService(client EventClient) EventService {
	fresh := netbound.NewFreshness(fx.marker, fx.clock.Now)
	return NewEventService(fx.engine, client, fx.events, fresh, fx.clock.Now, nil)
}

func next[T any](t *testing.T, ch <-chan resource.Resource[T]) resource.Resource[T] {
	t.Helper()
	select {
	case r, ok := <-ch:
		require.True(t, ok, "stream closed unexpectedly")
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for envelope")
	}
	return resource.Resource[T]{}
}

// settle reads Loading and the first terminal or success envelope.
func settle[T any](t *testing.T, ch <-chan resource.Resource[T]) resource.Resource[T] {
	t.Helper()
	first := next(t, ch)
	require.True(t, first.IsLoading(), "first envelope must be Loading, got %v", first)
	return next(t, ch)
}
