// Package server wires the Eventverse API: Postgres storage, the event
// list cache, cover storage, the REST router and the health endpoint.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/boulin/eventverse/internal/logging"
	"github.com/boulin/eventverse/internal/server/cache"
	"github.com/boulin/eventverse/internal/server/config"
	"github.com/boulin/eventverse/internal/server/health"
	"github.com/boulin/eventverse/internal/server/httpapi"
	"github.com/boulin/eventverse/internal/server/repositories/repomanager"
	"github.com/boulin/eventverse/internal/server/services"
)

const (
	// PurgeSchedule is when expired refresh tokens are removed.
	PurgeSchedule = "@hourly"

	shutdownTimeout = 10 * time.Second
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	store    cache.Store
	accounts *services.AccountService
	http     *http.Server
	health   *health.Server
	cron     *cron.Cron
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	store, err := newStore(ctx, c, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	accounts := services.NewAccountService(db, rm, c, logger)
	profiles := services.NewProfileService(db, rm, c, logger)
	events := services.NewEventService(db, rm, store, services.NewS3Covers(c), c, logger)

	router := httpapi.NewRouter(httpapi.NewHandler(accounts, profiles, events, logger))

	return &App{
		config:   c,
		logger:   logger.With("module", "app"),
		db:       db,
		store:    store,
		accounts: accounts,
		http:     &http.Server{Addr: c.EndpointAddrHTTP, Handler: router, ReadHeaderTimeout: 10 * time.Second},
		health:   health.NewServer(c.EndpointAddrHealth, logger),
		cron:     cron.New(),
	}, nil
}

// newStore connects to Redis when an address is configured and falls back
// to an in-process cache otherwise.
func newStore(ctx context.Context, c *config.Config, logger logging.Logger) (cache.Store, error) {
	if c.RedisAddr == "" {
		logger.Info(ctx, "event cache: in-memory")
		return cache.NewMemoryStore(), nil
	}
	rs := cache.NewRedisStore(&redis.Options{Addr: c.RedisAddr})
	if err := rs.Ping(ctx); err != nil {
		_ = rs.Close()
		return nil, fmt.Errorf("redis %s: %w", c.RedisAddr, err)
	}
	logger.Info(ctx, "event cache: redis", "address", c.RedisAddr)
	return rs, nil
}

func (app *App) purgeTokens(ctx context.Context) {
	n, err := app.accounts.PurgeExpiredTokens(ctx)
	if err != nil {
		app.logger.Error(ctx, "purge expired refresh tokens", "error", err)
		return
	}
	app.logger.Info(ctx, "expired refresh tokens purged", "count", n)
}

// Run serves until ctx is cancelled or a listener fails, then shuts down.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	if _, err := app.cron.AddFunc(PurgeSchedule, func() { app.purgeTokens(ctx) }); err != nil {
		return fmt.Errorf("schedule purge: %w", err)
	}
	app.cron.Start()

	errc := make(chan error, 2)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.health.Run(ctx); err != nil {
			errc <- fmt.Errorf("health server: %w", err)
			cancelFunc()
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.logger.Info(ctx, "Starting HTTP server", "address", app.config.EndpointAddrHTTP)
		if err := app.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("http server: %w", err)
			cancelFunc()
		}
	}()

	app.health.SetServing()
	<-ctx.Done()

	app.logger.Info(ctx, "Stopping app...")
	app.health.SetNotServing()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.http.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, "http shutdown", "error", err)
	}
	<-app.cron.Stop().Done()

	wg.Wait()
	app.close()

	close(errc)
	return <-errc
}

func (app *App) close() {
	if c, ok := app.store.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			app.logger.Warn(context.Background(), "cache close", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Warn(context.Background(), "db close", "error", err)
	}
}
