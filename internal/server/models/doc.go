// Package models defines server-side data models persisted in the database
// and their conversion to the api wire types.
package models
