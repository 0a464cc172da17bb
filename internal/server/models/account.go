package models

import "time"

// Account is an email/password identity. Its ID is the user id carried in
// access tokens and shared by the profile.
type Account struct {
	ID           string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}
