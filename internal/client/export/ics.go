// Package export writes cached events as an iCalendar feed.
package export

import (
	"fmt"
	"io"
	"os"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/boulin/eventverse/internal/api"
)

const productID = "-//Eventverse//Eventverse Client//EN"

// uidDomain qualifies event ids so the UIDs are globally unique.
const uidDomain = "eventverse"

// Calendar builds a VCALENDAR with one VEVENT per event. Events without a
// start date are skipped.
func Calendar(events []api.Event, stamp time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	cal.SetName("Eventverse")

	for i := range events {
		e := &events[i]
		if e.StartDate.IsZero() {
			continue
		}

		ve := cal.AddEvent(e.ID + "@" + uidDomain)
		ve.SetDtStampTime(stamp.UTC())
		ve.SetStartAt(e.StartDate.UTC())
		if !e.EndDate.IsZero() {
			ve.SetEndAt(e.EndDate.UTC())
		}
		if !e.CreationDate.IsZero() {
			ve.SetCreatedTime(e.CreationDate.UTC())
		}
		ve.SetSummary(e.Title)
		if e.Description != "" {
			ve.SetDescription(e.Description)
		}
		if e.Location.Name != "" {
			ve.SetLocation(e.Location.Name)
		}
		if e.Location.Latitude != 0 || e.Location.Longitude != 0 {
			ve.SetProperty(ical.ComponentPropertyGeo, fmt.Sprintf("%f;%f", e.Location.Latitude, e.Location.Longitude))
		}
		if e.Cover != "" {
			ve.SetProperty(ical.ComponentPropertyAttach, e.Cover)
		}
		ve.SetProperty(ical.ComponentPropertyCategories, e.Target.String())
	}
	return cal
}

// Write serializes events to w.
func Write(w io.Writer, events []api.Event, stamp time.Time) error {
	if _, err := io.WriteString(w, Calendar(events, stamp).Serialize()); err != nil {
		return fmt.Errorf("failed to write calendar: %w", err)
	}
	return nil
}

// WriteFile serializes events into the file at path, replacing it.
func WriteFile(path string, events []api.Event, stamp time.Time) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := Write(f, events, stamp); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
