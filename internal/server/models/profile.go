package models

import (
	"time"

	"github.com/boulin/eventverse/internal/api"
	"github.com/boulin/eventverse/internal/timex"
)

// Profile is the application-level user record. CreatedEvents and
// LikedEvents are derived from the events and event_likes tables.
type Profile struct {
	UID           string
	IsOrganizer   bool
	SigninDate    time.Time
	URLPicture    string
	Name          string
	Surname       string
	Preferences   api.UserPreferences
	CreatedEvents []string
	LikedEvents   []string
}

func (p *Profile) ToAPI() api.User {
	return api.User{
		UID:           p.UID,
		IsOrganizer:   p.IsOrganizer,
		SigninDate:    timex.NewMillis(p.SigninDate),
		URLPicture:    p.URLPicture,
		Name:          p.Name,
		Surname:       p.Surname,
		CreatedEvents: nonNil(p.CreatedEvents),
		LikedEvents:   nonNil(p.LikedEvents),
		Preferences:   p.Preferences,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
