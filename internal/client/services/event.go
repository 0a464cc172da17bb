package services

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/boulin/eventverse/internal/api"
	"github.com/boulin/eventverse/internal/client/live"
	"github.com/boulin/eventverse/internal/client/netbound"
	"github.com/boulin/eventverse/internal/client/repositories/events"
	"github.com/boulin/eventverse/internal/client/resource"
	"github.com/boulin/eventverse/internal/logging"
)

// EventService gives cached access to events.
//
// GetEvent fetches from the API when the event is not cached, when force is
// set or when the collection is stale. GetEvents fetches when the cache is
// empty, when force is set or when it is stale, and then replaces the whole
// cache. Mutations always go to the API first.
type EventService interface {
	GetEvent(ctx context.Context, id string, force bool) <-chan resource.Resource[*api.Event]
	GetEvents(ctx context.Context, force bool) <-chan resource.Resource[[]api.Event]

	Create(ctx context.Context, in api.EventInput) <-chan resource.Resource[*api.Event]
	Update(ctx context.Context, id string, in api.EventInput) <-chan resource.Resource[*api.Event]
	Delete(ctx context.Context, id string) <-chan resource.Resource[*api.Event]
	Like(ctx context.Context, id string) <-chan resource.Resource[*api.Event]
	Unlike(ctx context.Context, id string) <-chan resource.Resource[*api.Event]

	Near(ctx context.Context, from api.Location, radiusKm float64, limit int) <-chan resource.Resource[[]api.Event]
	ForMe(ctx context.Context, target api.TargetAudience, limit int) <-chan resource.Resource[[]api.Event]
	ComingSoon(ctx context.Context, weeks, limit int) <-chan resource.Resource[[]api.Event]
	ByIDs(ctx context.Context, ids []string) <-chan resource.Resource[[]api.Event]
	LikedBy(ctx context.Context, uid string) <-chan resource.Resource[[]api.Event]
	CreatedBy(ctx context.Context, uid string) <-chan resource.Resource[[]api.Event]

	RequestCoverUpload(ctx context.Context, id string) (*api.CoverUpload, error)
	UploadCover(ctx context.Context, id, path string) <-chan resource.Resource[*api.Event]

	// MonthSummary counts cached events starting later this month.
	MonthSummary(ctx context.Context) (int, error)
	// Cached returns the cached events without contacting the API.
	Cached(ctx context.Context) ([]api.Event, error)
}

// EventClient is the part of the API client used for events.
type EventClient interface {
	GetAllEvents(ctx context.Context) ([]api.Event, error)
	GetEvent(ctx context.Context, id string) (*api.Event, error)
	CreateEvent(ctx context.Context, in api.EventInput) (*api.Event, error)
	UpdateEvent(ctx context.Context, id string, in api.EventInput) (*api.Event, error)
	DeleteEvent(ctx context.Context, id string) (*api.Event, error)
	LikeEvent(ctx context.Context, id string) (*api.Event, error)
	UnlikeEvent(ctx context.Context, id string) (*api.Event, error)
	RequestCoverUpload(ctx context.Context, id string) (*api.CoverUpload, error)
	UploadCover(ctx context.Context, presignedURL, contentType string, body io.Reader) error
}

type eventService struct {
	engine *netbound.Engine
	client EventClient
	repo   events.Repository
	fresh  *netbound.Freshness
	now    func() time.Time
	log    logging.Logger
}

func NewEventService(engine *netbound.Engine, client EventClient, repo events.Repository, fresh *netbound.Freshness, now func() time.Time, log logging.Logger) EventService {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = logging.Nop{}
	}
	return &eventService{
		engine: engine,
		client: client,
		repo:   repo,
		fresh:  fresh,
		now:    now,
		log:    log.With("module", "events"),
	}
}

func (s *eventService) GetEvent(ctx context.Context, id string, force bool) <-chan resource.Resource[*api.Event] {
	return netbound.Fetch(ctx, s.engine, netbound.Query[*api.Event]{
		Topic: live.TopicEvents,
		Local: func(ctx context.Context) (*api.Event, error) {
			return s.repo.GetByID(ctx, id)
		},
		ShouldFetch: func(ctx context.Context, cached *api.Event) (bool, error) {
			if cached == nil {
				return true, nil
			}
			return s.fresh.NeedsFetch(ctx, force)
		},
		Remote: func(ctx context.Context) (*api.Event, error) {
			return s.client.GetEvent(ctx, id)
		},
		Save: func(ctx context.Context, e *api.Event) error {
			return s.repo.Upsert(ctx, e)
		},
		Shared: "event:" + id,
	})
}

func (s *eventService) GetEvents(ctx context.Context, force bool) <-chan resource.Resource[[]api.Event] {
	return netbound.Fetch(ctx, s.engine, netbound.Query[[]api.Event]{
		Topic: live.TopicEvents,
		Local: s.repo.GetAll,
		ShouldFetch: func(ctx context.Context, cached []api.Event) (bool, error) {
			if len(cached) == 0 {
				return true, nil
			}
			return s.fresh.NeedsFetch(ctx, force)
		},
		Remote: s.client.GetAllEvents,
		Save: func(ctx context.Context, items []api.Event) error {
			s.log.Debug(ctx, "replacing cached events", "count", len(items))
			return s.repo.ReplaceAll(ctx, items)
		},
		Shared: "events",
	})
}

func (s *eventService) mutate(ctx context.Context, call func(context.Context) (*api.Event, error)) <-chan resource.Resource[*api.Event] {
	return netbound.Mutate(ctx, s.engine, netbound.Mutation[*api.Event]{
		Topic:  live.TopicEvents,
		Remote: call,
		Save: func(ctx context.Context, e *api.Event) error {
			return s.repo.Upsert(ctx, e)
		},
		Local: s.readBack,
	})
}

func (s *eventService) readBack(ctx context.Context, e *api.Event) (*api.Event, error) {
	return s.repo.GetByID(ctx, e.ID)
}

func (s *eventService) Create(ctx context.Context, in api.EventInput) <-chan resource.Resource[*api.Event] {
	return s.mutate(ctx, func(ctx context.Context) (*api.Event, error) {
		return s.client.CreateEvent(ctx, in)
	})
}

func (s *eventService) Update(ctx context.Context, id string, in api.EventInput) <-chan resource.Resource[*api.Event] {
	return s.mutate(ctx, func(ctx context.Context) (*api.Event, error) {
		return s.client.UpdateEvent(ctx, id, in)
	})
}

// Delete removes the event remotely, then locally. The read-back finds
// nothing, so Success carries a nil event.
func (s *eventService) Delete(ctx context.Context, id string) <-chan resource.Resource[*api.Event] {
	return netbound.Mutate(ctx, s.engine, netbound.Mutation[*api.Event]{
		Topic: live.TopicEvents,
		Remote: func(ctx context.Context) (*api.Event, error) {
			return s.client.DeleteEvent(ctx, id)
		},
		Save: func(ctx context.Context, e *api.Event) error {
			return s.repo.DeleteByID(ctx, e.ID)
		},
		Local: s.readBack,
	})
}

func (s *eventService) Like(ctx context.Context, id string) <-chan resource.Resource[*api.Event] {
	return s.mutate(ctx, func(ctx context.Context) (*api.Event, error) {
		return s.client.LikeEvent(ctx, id)
	})
}

func (s *eventService) Unlike(ctx context.Context, id string) <-chan resource.Resource[*api.Event] {
	return s.mutate(ctx, func(ctx context.Context) (*api.Event, error) {
		return s.client.UnlikeEvent(ctx, id)
	})
}

func (s *eventService) RequestCoverUpload(ctx context.Context, id string) (*api.CoverUpload, error) {
	return s.client.RequestCoverUpload(ctx, id)
}

// UploadCover obtains a presigned URL, uploads the file and refreshes the
// cached event whose cover now points at the uploaded image.
func (s *eventService) UploadCover(ctx context.Context, id, path string) <-chan resource.Resource[*api.Event] {
	return s.mutate(ctx, func(ctx context.Context) (*api.Event, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open cover: %w", err)
		}
		defer f.Close()

		up, err := s.client.RequestCoverUpload(ctx, id)
		if err != nil {
			return nil, err
		}

		contentType := mime.TypeByExtension(filepath.Ext(path))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		if err := s.client.UploadCover(ctx, up.URL, contentType, f); err != nil {
			return nil, err
		}
		s.log.Info(ctx, "cover uploaded", "event", id, "key", up.Key)

		return s.client.GetEvent(ctx, id)
	})
}

func (s *eventService) Cached(ctx context.Context) ([]api.Event, error) {
	return s.repo.GetAll(ctx)
}

func (s *eventService) MonthSummary(ctx context.Context) (int, error) {
	all, err := s.repo.GetAll(ctx)
	if err != nil {
		return 0, err
	}
	return CountLaterThisMonth(all, s.now()), nil
}
