package services

import (
	"context"
	"testing"
	"time"

	"github.com/boulin/eventverse/internal/api"
	"github.com/boulin/eventverse/internal/common"
	"github.com/boulin/eventverse/internal/logging"
	"github.com/boulin/eventverse/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProfileService(t *testing.T) (*ProfileService, *fakeManager, *mockTx) {
	t.Helper()
	db, mock := newMockDB(t)
	m := newFakeManager()
	svc := NewProfileService(db, m, testConfig(), logging.Nop{})
	svc.now = func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }
	return svc, m, &mockTx{mock}
}

func ptr[T any](v T) *T { return &v }

func TestProfileCreate(t *testing.T) {
	tests := []struct {
		name    string
		in      api.UserInput
		wantErr error
	}{
		{name: "attendee", in: api.UserInput{}},
		{name: "organizer with code", in: api.UserInput{IsOrganizer: true, OrganizerCode: ptr("letmein")}},
		{name: "organizer without code", in: api.UserInput{IsOrganizer: true}, wantErr: common.ErrorForbidden},
		{name: "organizer with wrong code", in: api.UserInput{IsOrganizer: true, OrganizerCode: ptr("guess")}, wantErr: common.ErrorForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m, _ := newProfileService(t)

			p, err := svc.Create(context.Background(), "u1", tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, m.profiles.byUID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "u1", p.UID)
			assert.Equal(t, tt.in.IsOrganizer, p.IsOrganizer)
			assert.Equal(t, api.DefaultPreferences(), p.Preferences)
			assert.Equal(t, time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC), p.SigninDate)
		})
	}
}

func TestProfileCreate_Twice(t *testing.T) {
	svc, _, _ := newProfileService(t)
	_, err := svc.Create(context.Background(), "u1", api.UserInput{})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), "u1", api.UserInput{})
	assert.ErrorIs(t, err, common.ErrorConflict)
}

func TestProfileGet_Missing(t *testing.T) {
	svc, _, _ := newProfileService(t)
	_, err := svc.Get(context.Background(), "u1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestProfileUpdate(t *testing.T) {
	svc, m, tx := newProfileService(t)
	m.profiles.byUID["u1"] = &models.Profile{UID: "u1", Name: "Ada", Surname: "Byron", Preferences: api.DefaultPreferences()}

	prefs := api.UserPreferences{Radius: 10, Weeks: 1, Target: api.AudienceChildren, Location: api.Location{Name: "Lyon", Latitude: 45.76, Longitude: 4.83}}
	tx.expectCommit()
	p, err := svc.Update(context.Background(), "u1", api.UserUpdate{Surname: ptr("Lovelace"), Preferences: &prefs})
	require.NoError(t, err)

	assert.Equal(t, "Ada", p.Name)
	assert.Equal(t, "Lovelace", p.Surname)
	assert.Equal(t, prefs, p.Preferences)
	assert.Equal(t, "Lovelace", m.profiles.byUID["u1"].Surname)
}

func TestProfileUpdate_Errors(t *testing.T) {
	t.Run("invalid preferences", func(t *testing.T) {
		svc, _, _ := newProfileService(t)
		_, err := svc.Update(context.Background(), "u1", api.UserUpdate{Preferences: &api.UserPreferences{Radius: -1}})
		assert.ErrorIs(t, err, common.ErrorValidation)
	})

	t.Run("bad coordinates", func(t *testing.T) {
		svc, _, _ := newProfileService(t)
		prefs := api.DefaultPreferences()
		prefs.Location.Latitude = 91
		_, err := svc.Update(context.Background(), "u1", api.UserUpdate{Preferences: &prefs})
		assert.ErrorIs(t, err, common.ErrorValidation)
	})

	t.Run("missing profile", func(t *testing.T) {
		svc, _, tx := newProfileService(t)
		tx.expectRollback()
		_, err := svc.Update(context.Background(), "u1", api.UserUpdate{Name: ptr("Ada")})
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})
}

func TestProfileDelete(t *testing.T) {
	svc, m, tx := newProfileService(t)
	m.profiles.byUID["u1"] = &models.Profile{UID: "u1", Name: "Ada"}

	tx.expectCommit()
	p, err := svc.Delete(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", p.Name)
	assert.Empty(t, m.profiles.byUID)

	tx.expectRollback()
	_, err = svc.Delete(context.Background(), "u1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
