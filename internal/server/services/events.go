package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/boulin/eventverse/internal/api"
	"github.com/boulin/eventverse/internal/common"
	"github.com/boulin/eventverse/internal/dbx"
	"github.com/boulin/eventverse/internal/logging"
	"github.com/boulin/eventverse/internal/server/cache"
	"github.com/boulin/eventverse/internal/server/config"
	"github.com/boulin/eventverse/internal/server/models"
	"github.com/boulin/eventverse/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// EventListCacheKey holds the serialized result of List.
const EventListCacheKey = "events:all"

// EventService manages events. Writes are restricted: only organizers
// create events and only the creator may change, delete or illustrate one.
type EventService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cache       cache.Store
	cacheTTL    time.Duration
	covers      CoverStorage
	log         logging.Logger
	now         func() time.Time

	// cacheGen counts invalidations; List only stores a result read within
	// one generation.
	cacheMu  sync.Mutex
	cacheGen uint64
}

func NewEventService(db *sql.DB, m repomanager.RepositoryManager, store cache.Store, covers CoverStorage, cfg *config.Config, log logging.Logger) *EventService {
	return &EventService{
		db:          db,
		repomanager: m,
		cache:       store,
		cacheTTL:    cfg.CacheTTL,
		covers:      covers,
		log:         log.With("module", "events"),
		now:         time.Now,
	}
}

// List returns every event ordered by start date, served from the cache
// while it is warm.
func (s *EventService) List(ctx context.Context) ([]api.Event, error) {
	if b, found, err := s.cache.Get(ctx, EventListCacheKey); err != nil {
		s.log.Warn(ctx, "event cache read failed", "error", err)
	} else if found {
		var cached []api.Event
		if err := json.Unmarshal(b, &cached); err == nil {
			return cached, nil
		}
		s.log.Warn(ctx, "event cache entry unreadable", "error", err)
	}

	s.cacheMu.Lock()
	gen := s.cacheGen
	s.cacheMu.Unlock()

	events, err := s.repomanager.Events(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing events: %w", err)
	}
	result := models.EventsToAPI(events)

	if b, err := json.Marshal(result); err == nil {
		s.storeList(ctx, gen, b)
	}
	return result, nil
}

// storeList caches b unless a write invalidated the list after gen was read.
func (s *EventService) storeList(ctx context.Context, gen uint64, b []byte) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if s.cacheGen != gen {
		s.log.Debug(ctx, "event list changed while reading; not cached")
		return
	}
	if err := s.cache.Set(ctx, EventListCacheKey, b, s.cacheTTL); err != nil {
		s.log.Warn(ctx, "event cache write failed", "error", err)
	}
}

func (s *EventService) Get(ctx context.Context, id string) (*models.Event, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	return s.repomanager.Events(s.db).Get(ctx, id)
}

// Create stores a new event authored by uid, who must have an organizer
// profile.
func (s *EventService) Create(ctx context.Context, uid string, in api.EventInput) (*models.Event, error) {
	profile, err := s.repomanager.Profiles(s.db).Get(ctx, uid)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: profile required", common.ErrorForbidden)
		}
		return nil, err
	}
	if !profile.IsOrganizer {
		return nil, fmt.Errorf("%w: only organizers can create events", common.ErrorForbidden)
	}
	if err := validateEventInput(in); err != nil {
		return nil, err
	}

	e := &models.Event{
		ID:           uuid.NewString(),
		Creator:      uid,
		CreationDate: s.now(),
		Liked:        []string{},
	}
	e.Apply(in)

	if err := s.repomanager.Events(s.db).Create(ctx, e); err != nil {
		return nil, fmt.Errorf("error creating event: %w", err)
	}
	s.invalidate(ctx)
	s.log.Info(ctx, "event created", "id", e.ID, "creator", uid)
	return e, nil
}

// Update replaces the editable fields of event id.
func (s *EventService) Update(ctx context.Context, uid, id string, in api.EventInput) (*models.Event, error) {
	if err := validateEventInput(in); err != nil {
		return nil, err
	}
	return s.withOwnedEvent(ctx, uid, id, func(ctx context.Context, tx dbx.DBTX, e *models.Event) error {
		e.Apply(in)
		return s.repomanager.Events(tx).Update(ctx, e)
	})
}

// Delete removes event id and returns it as it was.
func (s *EventService) Delete(ctx context.Context, uid, id string) (*models.Event, error) {
	e, err := s.withOwnedEvent(ctx, uid, id, func(ctx context.Context, tx dbx.DBTX, e *models.Event) error {
		return s.repomanager.Events(tx).Delete(ctx, e.ID)
	})
	if err == nil {
		s.log.Info(ctx, "event deleted", "id", id)
	}
	return e, err
}

// Like adds uid to the likers of event id.
func (s *EventService) Like(ctx context.Context, uid, id string) (*models.Event, error) {
	return s.setLike(ctx, uid, id, true)
}

func (s *EventService) Unlike(ctx context.Context, uid, id string) (*models.Event, error) {
	return s.setLike(ctx, uid, id, false)
}

func (s *EventService) setLike(ctx context.Context, uid, id string, like bool) (*models.Event, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	var e *models.Event
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Events(tx)
		var err error
		if like {
			err = repo.Like(ctx, id, uid)
		} else {
			err = repo.Unlike(ctx, id, uid)
		}
		if err != nil {
			return err
		}
		e, err = repo.Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return e, nil
}

// RequestCover issues a presigned upload target for the cover of event id
// and points the event at the object's public URL.
func (s *EventService) RequestCover(ctx context.Context, uid, id string) (*api.CoverUpload, error) {
	key := CoverKey(id)
	var upload *api.CoverUpload
	_, err := s.withOwnedEvent(ctx, uid, id, func(ctx context.Context, tx dbx.DBTX, e *models.Event) error {
		url, err := s.covers.PresignPut(ctx, key)
		if err != nil {
			return fmt.Errorf("error presigning cover upload: %w", err)
		}
		public := s.covers.PublicURL(key)
		if err := s.repomanager.Events(tx).SetCover(ctx, e.ID, public); err != nil {
			return err
		}
		e.Cover = public
		upload = &api.CoverUpload{URL: url, Key: key, PublicURL: public}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return upload, nil
}

// withOwnedEvent loads event id inside a transaction, checks that uid
// created it and runs fn. The list cache is dropped after commit.
func (s *EventService) withOwnedEvent(ctx context.Context, uid, id string, fn func(ctx context.Context, tx dbx.DBTX, e *models.Event) error) (*models.Event, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	var e *models.Event
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		e, err = s.repomanager.Events(tx).Get(ctx, id)
		if err != nil {
			return err
		}
		if e.Creator != uid {
			return fmt.Errorf("%w: only the creator can change this event", common.ErrorForbidden)
		}
		return fn(ctx, tx, e)
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return e, nil
}

func (s *EventService) invalidate(ctx context.Context) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.cacheGen++
	if err := s.cache.Delete(ctx, EventListCacheKey); err != nil {
		s.log.Warn(ctx, "event cache invalidation failed", "error", err)
	}
}

// validateID rejects ids that cannot be event keys, so malformed paths read
// as not found instead of reaching the database.
func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: event %q", common.ErrorNotFound, id)
	}
	return nil
}

func validateEventInput(in api.EventInput) error {
	switch {
	case strings.TrimSpace(in.Title) == "":
		return fmt.Errorf("%w: title is required", common.ErrorValidation)
	case in.StartDate.IsZero():
		return fmt.Errorf("%w: start date is required", common.ErrorValidation)
	case in.EndDate.IsZero():
		return fmt.Errorf("%w: end date is required", common.ErrorValidation)
	case in.EndDate.Before(in.StartDate.Time):
		return fmt.Errorf("%w: end date is before start date", common.ErrorValidation)
	case !in.Target.Valid():
		return fmt.Errorf("%w: unknown target audience", common.ErrorValidation)
	}
	return validateLocation(in.Location)
}
