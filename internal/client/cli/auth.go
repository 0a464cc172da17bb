package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/boulin/eventverse/internal/api"
	"github.com/boulin/eventverse/internal/client/remote"
	"github.com/boulin/eventverse/internal/client/resource"
	"github.com/boulin/eventverse/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) credentials() (string, []byte, error) {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return "", nil, err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return "", nil, err
	}
	return email, password, nil
}

// Register creates an account. It does not sign in.
func (a *App) Register(ctx context.Context) error {
	email, password, err := a.credentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.auth.Register(ctx, email, string(password)); err != nil {
		return err
	}
	a.println("Success! You can now log in.")
	return nil
}

// Login signs in and persists the session for the next start-up.
func (a *App) Login(ctx context.Context) error {
	email, password, err := a.credentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	uid, err := a.auth.Login(ctx, email, string(password))
	if err != nil {
		if errors.Is(err, remote.ErrUnavailable) {
			a.setMode(ModeOffline)
		}
		return err
	}
	a.setMode(ModeOnline)
	a.printf("Logged in as %s\n", uid)
	a.welcome(ctx)
	return nil
}

// Logout forgets the session and the cached data.
func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	a.println("Logged out")
	return nil
}

// Profile creates the profile of the signed-in account.
func (a *App) Profile(ctx context.Context) error {
	organizer, err := GetYesNo(a.reader, "Register as an organizer?", a.out)
	if err != nil {
		return err
	}
	in := api.UserInput{IsOrganizer: organizer}
	if organizer {
		code, err := getSimpleText(a.reader, "Enter organizer code", a.out)
		if err != nil {
			return err
		}
		in.OrganizerCode = &code
	}

	r := await(ctx, func(ctx context.Context) <-chan resource.Resource[*api.User] {
		return a.users.CreateUser(ctx, in)
	})
	if r.IsError() {
		return envelopeError(r)
	}
	a.printUser(r.Data)
	return nil
}

// Me prints the cached profile, fetching it when absent or forced.
func (a *App) Me(ctx context.Context, force bool) error {
	r := await(ctx, func(ctx context.Context) <-chan resource.Resource[*api.User] {
		return a.users.GetUser(ctx, force)
	})
	if r.IsError() {
		return envelopeError(r)
	}
	a.printUser(r.Data)
	return nil
}

// Prefs edits name, surname and the event preferences.
func (a *App) Prefs(ctx context.Context) error {
	current := await(ctx, func(ctx context.Context) <-chan resource.Resource[*api.User] {
		return a.users.GetUser(ctx, false)
	})
	if current.IsError() {
		return envelopeError(current)
	}
	u := current.Data
	if u == nil {
		return errors.New("profile not found, run 'profile' first")
	}

	name, err := GetOptional(a.reader, "Name", u.Name, a.out)
	if err != nil {
		return err
	}
	surname, err := GetOptional(a.reader, "Surname", u.Surname, a.out)
	if err != nil {
		return err
	}
	p, err := a.readPreferences(u.Preferences)
	if err != nil {
		return err
	}

	r := await(ctx, func(ctx context.Context) <-chan resource.Resource[*api.User] {
		return a.users.UpdateUser(ctx, api.UserUpdate{Name: &name, Surname: &surname, Preferences: &p})
	})
	if r.IsError() {
		return envelopeError(r)
	}
	a.printUser(r.Data)
	return nil
}

func (a *App) readPreferences(p api.UserPreferences) (api.UserPreferences, error) {
	var err error
	if p.Radius, err = GetFloat(a.reader, "Search radius (km)", p.Radius, a.out); err != nil {
		return p, err
	}
	weeks, err := GetFloat(a.reader, "Coming-soon window (weeks)", float64(p.Weeks), a.out)
	if err != nil {
		return p, err
	}
	p.Weeks = int(weeks)

	target, err := GetOptional(a.reader, "Audience (all, children, teenager)", p.Target.String(), a.out)
	if err != nil {
		return p, err
	}
	if p.Target, err = api.ParseAudience(target); err != nil {
		return p, err
	}

	p.Location, err = a.readLocation(p.Location)
	return p, err
}

func (a *App) readLocation(l api.Location) (api.Location, error) {
	var err error
	if l.Name, err = GetOptional(a.reader, "Place", l.Name, a.out); err != nil {
		return l, err
	}
	if l.Latitude, err = GetFloat(a.reader, "Latitude", l.Latitude, a.out); err != nil {
		return l, err
	}
	if l.Longitude, err = GetFloat(a.reader, "Longitude", l.Longitude, a.out); err != nil {
		return l, err
	}
	return l, nil
}

// preferences returns the signed-in user's preferences, or the defaults
// when the profile is unavailable.
func (a *App) preferences(ctx context.Context) api.UserPreferences {
	r := await(ctx, func(ctx context.Context) <-chan resource.Resource[*api.User] {
		return a.users.GetUser(ctx, false)
	})
	if r.IsSuccess() && r.Data != nil {
		return r.Data.Preferences
	}
	return api.DefaultPreferences()
}

func (a *App) printUser(u *api.User) {
	if u == nil {
		a.println("No profile")
		return
	}
	role := "attendee"
	if u.IsOrganizer {
		role = "organizer"
	}
	name := strings.TrimSpace(u.Name + " " + u.Surname)
	if name == "" {
		name = "(no name)"
	}
	a.printf("%s  %s  [%s]\n", u.UID, name, role)
	p := u.Preferences
	a.printf("  preferences: radius %.0f km, %d week(s), audience %s, near %s\n",
		p.Radius, p.Weeks, p.Target, placeName(p.Location))
	a.printf("  created %d event(s), liked %d\n", len(u.CreatedEvents), len(u.LikedEvents))
}

func placeName(l api.Location) string {
	if l.Name != "" {
		return l.Name
	}
	return fmt.Sprintf("%.4f,%.4f", l.Latitude, l.Longitude)
}

