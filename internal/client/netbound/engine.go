package netbound

import (
	"context"
	"errors"

	"github.com/boulin/eventverse/internal/client/live"
	"github.com/boulin/eventverse/internal/client/remote"
	"github.com/boulin/eventverse/internal/client/resource"
	"github.com/boulin/eventverse/internal/logging"
	"golang.org/x/sync/singleflight"
)

// Engine carries what every stream needs: the change notifier the local
// store publishes to and the group collapsing identical in-flight reads.
type Engine struct {
	notifier *live.Notifier
	group    singleflight.Group
	log      logging.Logger
}

func NewEngine(n *live.Notifier, log logging.Logger) *Engine {
	if log == nil {
		log = logging.Nop{}
	}
	return &Engine{notifier: n, log: log.With("module", "netbound")}
}

// Query describes a cached read.
type Query[T any] struct {
	// Topic is the change topic Local depends on.
	Topic live.Topic
	// Local reads the current cached value.
	Local func(ctx context.Context) (T, error)
	// ShouldFetch decides, given the cached value, whether to call Remote.
	ShouldFetch func(ctx context.Context, cached T) (bool, error)
	Remote      func(ctx context.Context) (T, error)
	// Save mirrors a remote result into the local store.
	Save func(ctx context.Context, v T) error
	// Shared, when not empty, collapses concurrent remote reads with the
	// same key into one call.
	Shared string
}

// Mutation describes a write that always goes to the API first.
type Mutation[T any] struct {
	Topic  live.Topic
	Remote func(ctx context.Context) (T, error)
	// Save mirrors the remote result locally (upsert or delete).
	Save func(ctx context.Context, v T) error
	// Local reads back the affected record once saved.
	Local func(ctx context.Context, v T) (T, error)
}

// Fetch runs q and streams its envelopes. The channel is closed after an
// Error or once ctx is done.
func Fetch[T any](ctx context.Context, e *Engine, q Query[T]) <-chan resource.Resource[T] {
	out := make(chan resource.Resource[T], 1)
	out <- resource.Loading[T]()

	go func() {
		defer close(out)

		cached, err := q.Local(ctx)
		if err != nil {
			emit(ctx, out, localError[T](e, err))
			return
		}

		fetch, err := q.ShouldFetch(ctx, cached)
		if err != nil {
			emit(ctx, out, localError[T](e, err))
			return
		}

		if fetch {
			if err := e.fetchAndSave(ctx, q.Shared, func(ctx context.Context) error {
				v, err := q.Remote(ctx)
				if err != nil {
					return err
				}
				return q.Save(ctx, v)
			}); err != nil {
				if ctx.Err() != nil {
					return
				}
				emit(ctx, out, errorEnvelope[T](e, err))
				return
			}
		}

		stream(ctx, e, out, q.Topic, q.Local)
	}()

	return out
}

// Mutate runs m and streams its envelopes. On failure exactly one Error is
// emitted and the local store is not touched.
func Mutate[T any](ctx context.Context, e *Engine, m Mutation[T]) <-chan resource.Resource[T] {
	out := make(chan resource.Resource[T], 1)
	out <- resource.Loading[T]()

	go func() {
		defer close(out)

		v, err := m.Remote(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			emit(ctx, out, errorEnvelope[T](e, err))
			return
		}
		if err := m.Save(ctx, v); err != nil {
			emit(ctx, out, localError[T](e, err))
			return
		}

		stream(ctx, e, out, m.Topic, func(ctx context.Context) (T, error) {
			return m.Local(ctx, v)
		})
	}()

	return out
}

func (e *Engine) fetchAndSave(ctx context.Context, key string, fn func(context.Context) error) error {
	if key == "" {
		return fn(ctx)
	}

	// The shared call outlives any single caller so a cancelled leader does
	// not fail the others waiting on it.
	ch := e.group.DoChan(key, func() (any, error) {
		return nil, fn(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		if res.Shared {
			e.log.Debug(ctx, "remote read shared", "key", key)
		}
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func stream[T any](ctx context.Context, e *Engine, out chan<- resource.Resource[T], topic live.Topic, query func(context.Context) (T, error)) {
	for snap := range live.Watch(ctx, e.notifier, topic, query) {
		if snap.Err != nil {
			emit(ctx, out, localError[T](e, snap.Err))
			return
		}
		if !emit(ctx, out, resource.Success(snap.Value)) {
			return
		}
	}
}

// emit delivers r unless ctx is already done; a cancelled stream stays
// silent.
func emit[T any](ctx context.Context, out chan<- resource.Resource[T], r resource.Resource[T]) bool {
	if ctx.Err() != nil {
		return false
	}
	select {
	case out <- r:
		return true
	case <-ctx.Done():
		return false
	}
}

// errorEnvelope passes remote failures through verbatim.
func errorEnvelope[T any](e *Engine, err error) resource.Resource[T] {
	var re *remote.Error
	if errors.As(err, &re) {
		return resource.Error[T](re.Message, re.StatusCode)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return resource.Error[T](err.Error(), 0)
	}
	return localError[T](e, err)
}

func localError[T any](e *Engine, err error) resource.Resource[T] {
	e.log.Error(context.Background(), "local store failure", "error", err)
	return resource.Error[T](err.Error(), 0)
}
