package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/boulin/eventverse/internal/client/config"
	clientdb "github.com/boulin/eventverse/internal/client/db"
	"github.com/boulin/eventverse/internal/client/jobs"
	"github.com/boulin/eventverse/internal/client/live"
	"github.com/boulin/eventverse/internal/client/netbound"
	"github.com/boulin/eventverse/internal/client/remote"
	"github.com/boulin/eventverse/internal/client/repositories/events"
	"github.com/boulin/eventverse/internal/client/repositories/freshness"
	"github.com/boulin/eventverse/internal/client/repositories/users"
	"github.com/boulin/eventverse/internal/client/services"
	"github.com/boulin/eventverse/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// pingTimeout bounds a single health probe.
const pingTimeout = 3 * time.Second

type App struct {
	config *config.Config
	log    logging.Logger

	auth   services.AuthService
	events services.EventService
	users  services.UserService

	refresher *jobs.Refresher
	scheduler *jobs.Scheduler
	db        *sql.DB

	reader *bufio.Reader
	out    io.Writer

	mu   sync.RWMutex
	mode Mode
}

// NewApp opens the local cache and wires the services. The caller owns
// ctx; it bounds background jobs.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	db, err := clientdb.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	health, err := remote.NewHealthChecker(c.HealthAddr)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	apiClient := remote.New(c.ServerURL, c.RequestTimeout)

	notifier := live.NewNotifier()
	eventsRepo := events.NewSQLiteRepository(db, notifier)
	usersRepo := users.NewSQLiteRepository(db, notifier)
	engine := netbound.NewEngine(notifier, log)
	fresh := netbound.NewFreshness(freshness.NewSQLiteRepository(db), nil)

	as := services.NewAuthService(apiClient, health, db, eventsRepo, usersRepo, log)
	es := services.NewEventService(engine, apiClient, eventsRepo, fresh, nil, log)
	us := services.NewUserService(engine, apiClient, usersRepo, as)

	a := &App{
		config:    c,
		log:       log,
		auth:      as,
		events:    es,
		users:     us,
		refresher: jobs.NewRefresher(es, log),
		scheduler: jobs.NewScheduler(ctx, log),
		db:        db,
		reader:    bufio.NewReader(os.Stdin),
		out:       os.Stdout,
		mode:      ModeOffline,
	}

	if _, err := a.scheduler.Add(c.RefreshSchedule, a.backgroundRefresh); err != nil {
		_ = a.auth.Close(ctx)
		_ = db.Close()
		return nil, err
	}
	return a, nil
}

// Run restores the saved session, starts the background work and blocks in
// the REPL until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) error {
	defer a.db.Close()
	defer a.auth.Close(ctx)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.println("Welcome to Eventverse (type 'help' for commands)")
	a.probe(ctx)

	restored, err := a.auth.Restore(ctx)
	if err != nil {
		a.log.Warn(ctx, "failed to restore session", "error", err)
	}
	if restored {
		a.welcome(ctx)
	}

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	a.scheduler.Start()
	defer a.scheduler.Stop()

	runREPL(ctx, a, a.getStatus, a.reader)
	return nil
}

func (a *App) welcome(ctx context.Context) {
	n, err := a.events.MonthSummary(ctx)
	if err != nil {
		a.log.Warn(ctx, "month summary failed", "error", err)
		return
	}
	a.printf("Welcome back! %d event(s) coming up later this month.\n", n)
}

func (a *App) isLoggedIn() bool {
	return a.auth.CurrentUserID() != ""
}

func (a *App) Mode() Mode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.log.Info(context.Background(), "connectivity changed", "mode", string(mode))
	}
}

func (a *App) getStatus() string {
	s := string(a.Mode())
	if uid := a.auth.CurrentUserID(); uid != "" {
		s = uid + " " + s
	}
	return fmt.Sprintf("(%s)", s)
}

// probe pings the server once and updates the mode.
func (a *App) probe(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := a.auth.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

// StartOnlineStatusWatcher probes the server every interval until ctx is
// done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.probe(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// backgroundRefresh keeps the cache warm while signed in and online.
func (a *App) backgroundRefresh(ctx context.Context) {
	if !a.isLoggedIn() || a.Mode() != ModeOnline {
		return
	}
	a.refresher.Run(ctx)
}

func (a *App) println(args ...any) {
	_, _ = fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.out, format, args...)
}
