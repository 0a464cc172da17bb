package api

import "github.com/boulin/eventverse/internal/timex"

type UserPreferences struct {
	Radius   float64        `json:"radius"`
	Weeks    int            `json:"weeks"`
	Target   TargetAudience `json:"target"`
	Location Location       `json:"location"`
}

// DefaultPreferences are applied to freshly created profiles.
func DefaultPreferences() UserPreferences {
	return UserPreferences{Radius: 50, Weeks: 4, Target: AudienceAll}
}

type User struct {
	UID           string          `json:"uid"`
	IsOrganizer   bool            `json:"isOrganizer"`
	SigninDate    timex.Millis    `json:"signinDate"`
	URLPicture    string          `json:"urlPicture"`
	Name          string          `json:"name"`
	Surname       string          `json:"surname"`
	CreatedEvents []string        `json:"createdEvents"`
	LikedEvents   []string        `json:"likedEvents"`
	Preferences   UserPreferences `json:"preferences"`
}

// UserInput creates a profile. OrganizerCode is required when IsOrganizer
// is set.
type UserInput struct {
	IsOrganizer   bool    `json:"isOrganizer"`
	OrganizerCode *string `json:"organizerCode"`
}

// UserUpdate changes the mutable profile fields; nil fields are left as is.
type UserUpdate struct {
	Name        *string          `json:"name,omitempty"`
	Surname     *string          `json:"surname,omitempty"`
	Preferences *UserPreferences `json:"preferences,omitempty"`
}
