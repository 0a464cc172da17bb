package live

import "context"

// Snapshot is one query result delivered by Watch.
type Snapshot[T any] struct {
	Value T
	Err   error
}

// Watch delivers query's current result, then a fresh result after every
// change published on topic. The subscription is taken before the first
// query so no change between the two is lost. The channel is closed when ctx
// is done or after the first failed query.
func Watch[T any](ctx context.Context, n *Notifier, topic Topic, query func(context.Context) (T, error)) <-chan Snapshot[T] {
	out := make(chan Snapshot[T])
	changes, cancel := n.Subscribe(topic)

	go func() {
		defer close(out)
		defer cancel()

		for {
			v, err := query(ctx)
			if ctx.Err() != nil {
				return
			}
			select {
			case out <- Snapshot[T]{Value: v, Err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}

			select {
			case <-changes:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
