package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/boulin/eventverse/internal/api"
	"github.com/boulin/eventverse/internal/client/export"
	"github.com/boulin/eventverse/internal/client/resource"
	"github.com/boulin/eventverse/internal/timex"
)

type eventList = resource.Resource[[]api.Event]

// Events prints one category of cached events. With force the whole
// collection is fetched first.
func (a *App) Events(ctx context.Context, category string, force bool) error {
	if force {
		if r := a.refresh(ctx); r.IsError() {
			return envelopeError(r)
		}
	}

	view, err := a.view(ctx, category)
	if err != nil {
		return err
	}
	r := await(ctx, view)
	if r.IsError() {
		return envelopeError(r)
	}
	a.printEvents(r.Data)
	return nil
}

func (a *App) view(ctx context.Context, category string) (func(context.Context) <-chan eventList, error) {
	uid := a.auth.CurrentUserID()
	switch category {
	case "all":
		return func(ctx context.Context) <-chan eventList { return a.events.GetEvents(ctx, false) }, nil
	case "near":
		p := a.preferences(ctx)
		return func(ctx context.Context) <-chan eventList { return a.events.Near(ctx, p.Location, p.Radius, 0) }, nil
	case "forme":
		p := a.preferences(ctx)
		return func(ctx context.Context) <-chan eventList { return a.events.ForMe(ctx, p.Target, 0) }, nil
	case "soon":
		p := a.preferences(ctx)
		return func(ctx context.Context) <-chan eventList { return a.events.ComingSoon(ctx, p.Weeks, 0) }, nil
	case "liked":
		return func(ctx context.Context) <-chan eventList { return a.events.LikedBy(ctx, uid) }, nil
	case "created":
		return func(ctx context.Context) <-chan eventList { return a.events.CreatedBy(ctx, uid) }, nil
	default:
		return nil, fmt.Errorf("%w: events [all|near|forme|soon|liked|created] [-f]", ErrUsage)
	}
}

func (a *App) refresh(ctx context.Context) eventList {
	return await(ctx, func(ctx context.Context) <-chan eventList {
		return a.events.GetEvents(ctx, true)
	})
}

// Refresh refetches the whole collection.
func (a *App) Refresh(ctx context.Context) error {
	r := a.refresh(ctx)
	if r.IsError() {
		return envelopeError(r)
	}
	a.printf("%d event(s) cached\n", len(r.Data))
	return nil
}

type eventResult = resource.Resource[*api.Event]

func (a *App) single(ctx context.Context, stream func(context.Context) <-chan eventResult) error {
	r := await(ctx, stream)
	if r.IsError() {
		return envelopeError(r)
	}
	if r.Data == nil {
		a.println("Done")
		return nil
	}
	a.printEvent(r.Data)
	return nil
}

// Show prints one event.
func (a *App) Show(ctx context.Context, id string, force bool) error {
	return a.single(ctx, func(ctx context.Context) <-chan eventResult {
		return a.events.GetEvent(ctx, id, force)
	})
}

// Watch prints the event, or the whole list when id is empty, every time
// it changes until the user presses Enter.
func (a *App) Watch(ctx context.Context, id string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		if id == "" {
			done <- watchStream(ctx, a.events.GetEvents(ctx, false), a.printEvents)
			return
		}
		done <- watchStream(ctx, a.events.GetEvent(ctx, id, false), a.printEvent)
	}()

	a.println("Watching, press Enter to stop")
	_, _ = a.reader.ReadString('\n')
	cancel()
	return <-done
}

func watchStream[T any](ctx context.Context, ch <-chan resource.Resource[T], show func(T)) error {
	for r := range ch {
		switch {
		case r.IsSuccess():
			show(r.Data)
		case r.IsError():
			return envelopeError(r)
		}
	}
	return nil
}

// Create prompts for a new event. Only organizers may create events.
func (a *App) Create(ctx context.Context) error {
	in, err := a.readEventInput(api.EventInput{Target: api.AudienceAll})
	if err != nil {
		return err
	}
	return a.single(ctx, func(ctx context.Context) <-chan eventResult {
		return a.events.Create(ctx, in)
	})
}

// Edit prompts for new values, defaulting to the current ones.
func (a *App) Edit(ctx context.Context, id string) error {
	cur := await(ctx, func(ctx context.Context) <-chan eventResult {
		return a.events.GetEvent(ctx, id, false)
	})
	if cur.IsError() {
		return envelopeError(cur)
	}
	if cur.Data == nil {
		return fmt.Errorf("event %s not found", id)
	}
	e := cur.Data

	in, err := a.readEventInput(api.EventInput{
		Title:       e.Title,
		Description: e.Description,
		StartDate:   e.StartDate,
		EndDate:     e.EndDate,
		Location:    e.Location,
		Target:      e.Target,
	})
	if err != nil {
		return err
	}
	return a.single(ctx, func(ctx context.Context) <-chan eventResult {
		return a.events.Update(ctx, id, in)
	})
}

func (a *App) readEventInput(in api.EventInput) (api.EventInput, error) {
	var err error
	if in.Title, err = GetOptional(a.reader, "Title", in.Title, a.out); err != nil {
		return in, err
	}
	if strings.TrimSpace(in.Title) == "" {
		return in, errors.New("title is required")
	}

	desc, err := GetMultiline(a.reader, "Description (empty keeps the current one)", a.out)
	if err != nil {
		return in, err
	}
	if desc != "" {
		in.Description = desc
	}

	start, err := GetDate(a.reader, "Start", in.StartDate.Time, a.out)
	if err != nil {
		return in, err
	}
	end, err := GetDate(a.reader, "End", in.EndDate.Time, a.out)
	if err != nil {
		return in, err
	}
	if end.Before(start) {
		return in, errors.New("event cannot end before it starts")
	}
	in.StartDate, in.EndDate = timex.NewMillis(start), timex.NewMillis(end)

	if in.Location, err = a.readLocation(in.Location); err != nil {
		return in, err
	}

	target, err := GetOptional(a.reader, "Audience (all, children, teenager)", in.Target.String(), a.out)
	if err != nil {
		return in, err
	}
	in.Target, err = api.ParseAudience(target)
	return in, err
}

func (a *App) Delete(ctx context.Context, id string) error {
	return a.single(ctx, func(ctx context.Context) <-chan eventResult {
		return a.events.Delete(ctx, id)
	})
}

func (a *App) Like(ctx context.Context, id string) error {
	return a.single(ctx, func(ctx context.Context) <-chan eventResult {
		return a.events.Like(ctx, id)
	})
}

func (a *App) Unlike(ctx context.Context, id string) error {
	return a.single(ctx, func(ctx context.Context) <-chan eventResult {
		return a.events.Unlike(ctx, id)
	})
}

// Cover uploads an image file as the event cover.
func (a *App) Cover(ctx context.Context, id, path string) error {
	return a.single(ctx, func(ctx context.Context) <-chan eventResult {
		return a.events.UploadCover(ctx, id, path)
	})
}

// Export writes the cached events to an iCalendar file.
func (a *App) Export(ctx context.Context, path string) error {
	all, err := a.events.Cached(ctx)
	if err != nil {
		return err
	}
	if err := export.WriteFile(path, all, time.Now()); err != nil {
		return err
	}
	a.printf("Exported %d event(s) to %s\n", len(all), path)
	return nil
}

func (a *App) printEvents(list []api.Event) {
	if len(list) == 0 {
		a.println("No events")
		return
	}
	for i := range list {
		e := &list[i]
		a.printf("%-36s  %s  %-30s  %s\n", e.ID, formatDate(e.StartDate), e.Title, placeName(e.Location))
	}
}

func (a *App) printEvent(e *api.Event) {
	if e == nil {
		a.println("Event not found")
		return
	}
	a.printf("%s\n  id: %s\n", e.Title, e.ID)
	a.printf("  when: %s - %s\n", formatDate(e.StartDate), formatDate(e.EndDate))
	a.printf("  where: %s\n", placeName(e.Location))
	a.printf("  audience: %s\n", e.Target)
	a.printf("  likes: %d", len(e.Liked))
	if e.LikedBy(a.auth.CurrentUserID()) {
		a.printf(" (including you)")
	}
	a.println()
	if e.Cover != "" {
		a.printf("  cover: %s\n", e.Cover)
	}
	if e.Description != "" {
		a.printf("\n%s\n", e.Description)
	}
}

func formatDate(m timex.Millis) string {
	if m.IsZero() {
		return "-"
	}
	return m.Local().Format(DateLayout)
}
