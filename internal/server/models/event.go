package models

import (
	"time"

	"github.com/boulin/eventverse/internal/api"
	"github.com/boulin/eventverse/internal/timex"
)

type Event struct {
	ID           string
	Title        string
	Cover        string
	Description  string
	StartDate    time.Time
	EndDate      time.Time
	LocationName string
	Longitude    float64
	Latitude     float64
	Target       api.TargetAudience
	Creator      string
	CreationDate time.Time
	Liked        []string
}

// Apply copies the organizer-editable fields of in onto e.
func (e *Event) Apply(in api.EventInput) {
	e.Title = in.Title
	e.Description = in.Description
	e.StartDate = in.StartDate.Time
	e.EndDate = in.EndDate.Time
	e.LocationName = in.Location.Name
	e.Longitude = in.Location.Longitude
	e.Latitude = in.Location.Latitude
	e.Target = in.Target
}

func (e *Event) ToAPI() api.Event {
	return api.Event{
		ID:          e.ID,
		Title:       e.Title,
		Cover:       e.Cover,
		Description: e.Description,
		StartDate:   timex.NewMillis(e.StartDate),
		EndDate:     timex.NewMillis(e.EndDate),
		Location: api.Location{
			Name:      e.LocationName,
			Longitude: e.Longitude,
			Latitude:  e.Latitude,
		},
		Target:       e.Target,
		Liked:        nonNil(e.Liked),
		Creator:      e.Creator,
		CreationDate: timex.NewMillis(e.CreationDate),
	}
}

// EventsToAPI converts a slice, keeping an empty result non-nil.
func EventsToAPI(events []*Event) []api.Event {
	out := make([]api.Event, 0, len(events))
	for _, e := range events {
		out = append(out, e.ToAPI())
	}
	return out
}
