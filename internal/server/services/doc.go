// Package services contains the server-side business logic behind the HTTP
// API: accounts and tokens, user profiles, events with their likes and
// covers. Services return the sentinels of package common; handlers map them
// to status codes.
package services
