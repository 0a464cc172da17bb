package api

import (
	"slices"
	"time"

	"github.com/boulin/eventverse/internal/timex"
)

// Location is a named point; coordinates are in degrees.
type Location struct {
	Name      string  `json:"name"`
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

type Event struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Cover        string         `json:"cover"`
	Description  string         `json:"description"`
	StartDate    timex.Millis   `json:"startDate"`
	EndDate      timex.Millis   `json:"endDate"`
	Location     Location       `json:"location"`
	Target       TargetAudience `json:"target"`
	Liked        []string       `json:"liked"`
	Creator      string         `json:"creator"`
	CreationDate timex.Millis   `json:"creationDate"`
}

func (e *Event) LikedBy(uid string) bool {
	return slices.Contains(e.Liked, uid)
}

// Ended reports whether the event is over at now.
func (e *Event) Ended(now time.Time) bool {
	return !e.EndDate.IsZero() && e.EndDate.Before(now)
}

// EventInput carries the fields an organizer sets when creating or
// updating an event.
type EventInput struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	StartDate   timex.Millis   `json:"startDate"`
	EndDate     timex.Millis   `json:"endDate"`
	Location    Location       `json:"location"`
	Target      TargetAudience `json:"target"`
}

// CoverUpload is a presigned upload target for an event cover.
type CoverUpload struct {
	URL       string `json:"url"`
	Key       string `json:"key"`
	PublicURL string `json:"publicUrl"`
}
