package services

import (
	"context"
	"slices"
	"time"

	"github.com/boulin/eventverse/internal/api"
	"github.com/boulin/eventverse/internal/client/resource"
	"github.com/boulin/eventverse/internal/geo"
)

// Week is the unit of the coming-soon look-ahead window.
const Week = 7 * 24 * time.Hour

// Filter selects events for a view.
type Filter func(e *api.Event) bool

// DistanceKm is the great-circle distance between from and the event.
func DistanceKm(from api.Location, e *api.Event) float64 {
	return geo.DistanceKm(from.Latitude, from.Longitude, e.Location.Latitude, e.Location.Longitude)
}

func NearFilter(from api.Location, radiusKm float64) Filter {
	return func(e *api.Event) bool {
		return DistanceKm(from, e) < radiusKm
	}
}

func TargetFilter(target api.TargetAudience) Filter {
	return func(e *api.Event) bool {
		return e.Target == target
	}
}

// ComingSoonFilter keeps events that start before now+weeks and have not
// ended by now. An event already under way stays in; one that has finished
// is dropped even if it started inside the window.
func ComingSoonFilter(now time.Time, weeks int) Filter {
	horizon := now.Add(time.Duration(weeks) * Week)
	return func(e *api.Event) bool {
		return e.StartDate.Before(horizon) && !e.Ended(now)
	}
}

func IDsFilter(ids []string) Filter {
	return func(e *api.Event) bool {
		return slices.Contains(ids, e.ID)
	}
}

func LikedByFilter(uid string) Filter {
	return func(e *api.Event) bool {
		return e.LikedBy(uid)
	}
}

func CreatorFilter(uid string) Filter {
	return func(e *api.Event) bool {
		return e.Creator == uid
	}
}

func byStartDate(a, b api.Event) int {
	return a.StartDate.Compare(b.StartDate.Time)
}

func byDistance(from api.Location) func(a, b api.Event) int {
	return func(a, b api.Event) int {
		da, db := DistanceKm(from, &a), DistanceKm(from, &b)
		switch {
		case da < db:
			return -1
		case da > db:
			return 1
		default:
			return 0
		}
	}
}

// Select filters, sorts and then truncates to limit (limit <= 0 means no
// limit), so a limited view holds the first events in sort order rather
// than an arbitrary subset. The input is not modified.
func Select(all []api.Event, keep Filter, cmp func(a, b api.Event) int, limit int) []api.Event {
	out := make([]api.Event, 0, len(all))
	for i := range all {
		if keep(&all[i]) {
			out = append(out, all[i])
		}
	}
	if cmp != nil {
		slices.SortStableFunc(out, cmp)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// CountLaterThisMonth counts events starting after now within now's
// calendar month.
func CountLaterThisMonth(all []api.Event, now time.Time) int {
	n := 0
	for i := range all {
		start := all[i].StartDate.In(now.Location())
		if start.After(now) && start.Year() == now.Year() && start.Month() == now.Month() {
			n++
		}
	}
	return n
}

func (s *eventService) view(ctx context.Context, keep Filter, cmp func(a, b api.Event) int, limit int) <-chan resource.Resource[[]api.Event] {
	return resource.MapStream(ctx, s.GetEvents(ctx, false), func(all []api.Event) []api.Event {
		return Select(all, keep, cmp, limit)
	})
}

func (s *eventService) Near(ctx context.Context, from api.Location, radiusKm float64, limit int) <-chan resource.Resource[[]api.Event] {
	return s.view(ctx, NearFilter(from, radiusKm), byDistance(from), limit)
}

func (s *eventService) ForMe(ctx context.Context, target api.TargetAudience, limit int) <-chan resource.Resource[[]api.Event] {
	return s.view(ctx, TargetFilter(target), byStartDate, limit)
}

func (s *eventService) ComingSoon(ctx context.Context, weeks, limit int) <-chan resource.Resource[[]api.Event] {
	return s.view(ctx, ComingSoonFilter(s.now(), weeks), byStartDate, limit)
}

func (s *eventService) ByIDs(ctx context.Context, ids []string) <-chan resource.Resource[[]api.Event] {
	return s.view(ctx, IDsFilter(ids), byStartDate, 0)
}

func (s *eventService) LikedBy(ctx context.Context, uid string) <-chan resource.Resource[[]api.Event] {
	return s.view(ctx, LikedByFilter(uid), byStartDate, 0)
}

func (s *eventService) CreatedBy(ctx context.Context, uid string) <-chan resource.Resource[[]api.Event] {
	return s.view(ctx, CreatorFilter(uid), byStartDate, 0)
}
