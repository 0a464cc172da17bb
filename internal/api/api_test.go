package api

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/boulin/eventverse/internal/timex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTargetAudience_JSONUsesStringCodes(t *testing.T) {
	b, err := json.Marshal(AudienceTeenager)
	require.NoError(t, err)
	assert.Equal(t, `"2"`, string(b))

	var got TargetAudience
	require.NoError(t, json.Unmarshal([]byte(`"1"`), &got))
	assert.Equal(t, AudienceChildren, got)

	require.NoError(t, json.Unmarshal([]byte(`0`), &got))
	assert.Equal(t, AudienceAll, got)

	assert.Error(t, json.Unmarshal([]byte(`"7"`), &got))
	_, err = json.Marshal(TargetAudience(9))
	assert.Error(t, err)
}

func TestParseAudience(t *testing.T) {
	tests := []struct {
		in      string
		want    TargetAudience
		wantErr bool
	}{
		{"all", AudienceAll, false},
		{" Teenager ", AudienceTeenager, false},
		{"1", AudienceChildren, false},
		{"adults", 0, true},
		{"5", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAudience(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvent_WireShape(t *testing.T) {
	start := time.Date(2026, 3, 14, 15, 9, 26, 535_000_000, time.UTC)
	e := Event{
		ID:        "e1",
		Title:     "Concert",
		StartDate: timex.NewMillis(start),
		Location:  Location{Name: "Paris", Longitude: 2.34, Latitude: 48.85},
		Target:    AudienceAll,
		Liked:     []string{"u1"},
	}
	b, err := json.Marshal(e)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.Equal(t, float64(1773500966535), raw["startDate"])
	assert.Equal(t, "0", raw["target"])
	assert.Equal(t, "Paris", raw["location"].(map[string]any)["name"])

	var back Event
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, back.StartDate.Equal(start))
	assert.True(t, back.LikedBy("u1"))
	assert.False(t, back.LikedBy("u2"))
}

func TestEvent_Ended(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	e := Event{EndDate: timex.NewMillis(now.Add(-time.Minute))}
	assert.True(t, e.Ended(now))
	e.EndDate = timex.NewMillis(now.Add(time.Hour))
	assert.False(t, e.Ended(now))
}

func TestUserUpdate_OmitsNilFields(t *testing.T) {
	name := "Ada"
	b, err := json.Marshal(UserUpdate{Name: &name})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Ada"}`, string(b))
}
