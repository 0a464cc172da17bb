// Package jobs runs background work on cron schedules.
package jobs

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/boulin/eventverse/internal/api"
	"github.com/boulin/eventverse/internal/client/resource"
	"github.com/boulin/eventverse/internal/logging"
)

// Scheduler wraps a cron instance whose jobs share one base context.
type Scheduler struct {
	cron    *cron.Cron
	log     logging.Logger
	baseCtx context.Context
}

func NewScheduler(baseCtx context.Context, log logging.Logger) *Scheduler {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	if log == nil {
		log = logging.Nop{}
	}
	return &Scheduler{
		cron:    cron.New(),
		log:     log.With("module", "jobs"),
		baseCtx: baseCtx,
	}
}

// Add registers job under a standard five-field cron spec or a descriptor
// such as "@every 10m".
func (s *Scheduler) Add(spec string, job func(context.Context)) (cron.EntryID, error) {
	id, err := s.cron.AddFunc(spec, func() { job(s.baseCtx) })
	if err != nil {
		return 0, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return id, nil
}

func (s *Scheduler) Start() {
	s.log.Info(s.baseCtx, "scheduler started", "jobs", len(s.cron.Entries()))
	s.cron.Start()
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info(s.baseCtx, "scheduler stopped")
}

// EventsSource is the collection read the refresh job drives.
type EventsSource interface {
	GetEvents(ctx context.Context, force bool) <-chan resource.Resource[[]api.Event]
}

// Refresher pulls the event collection through the regular cached path so
// the staleness window still applies. Overlapping runs are skipped.
type Refresher struct {
	events EventsSource
	log    logging.Logger
	mu     sync.Mutex
}

func NewRefresher(events EventsSource, log logging.Logger) *Refresher {
	if log == nil {
		log = logging.Nop{}
	}
	return &Refresher{events: events, log: log.With("module", "refresh")}
}

// Run waits for the first settled envelope and returns it.
func (r *Refresher) Run(ctx context.Context) resource.Resource[[]api.Event] {
	if !r.mu.TryLock() {
		r.log.Debug(ctx, "refresh already running")
		return resource.Loading[[]api.Event]()
	}
	defer r.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for res := range r.events.GetEvents(ctx, false) {
		switch {
		case res.IsSuccess():
			r.log.Debug(ctx, "events refreshed", "count", len(res.Data))
			return res
		case res.IsError():
			r.log.Warn(ctx, "events refresh failed", "message", res.Message, "code", res.Code)
			return res
		}
	}
	msg := "refresh interrupted"
	if err := ctx.Err(); err != nil {
		msg = err.Error()
	}
	return resource.Error[[]api.Event](msg, 0)
}
