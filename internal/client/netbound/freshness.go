package netbound

import (
	"context"
	"time"

	"github.com/boulin/eventverse/internal/client/repositories/freshness"
)

// MaxFetchInterval is how long a full event fetch stays fresh.
const MaxFetchInterval = 600000 * time.Millisecond

// Freshness evaluates the collection staleness predicate against the
// persisted marker.
type Freshness struct {
	marker freshness.Repository
	now    func() time.Time
	max    time.Duration
}

func NewFreshness(marker freshness.Repository, now func() time.Time) *Freshness {
	if now == nil {
		now = time.Now
	}
	return &Freshness{marker: marker, now: now, max: MaxFetchInterval}
}

// NeedsFetch reports force || marker absent || marker older than
// MaxFetchInterval. A true verdict rewrites the marker to now right away,
// before the caller has contacted the API, so a failed fetch still consumes
// the window.
func (f *Freshness) NeedsFetch(ctx context.Context, force bool) (bool, error) {
	now := f.now()

	need := force
	if !need {
		last, err := f.marker.Read(ctx)
		if err != nil {
			return false, err
		}
		need = last == nil || now.Sub(*last) > f.max
	}

	if need {
		if err := f.marker.Write(ctx, now); err != nil {
			return false, err
		}
	}
	return need, nil
}
