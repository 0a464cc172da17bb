// Package services contains the application services of the Eventverse
// client: authentication and session handling, cached access to events and
// to the user profile, and the derived event views (near me, for me, coming
// soon, liked, created).
//
// Reads and writes return channels of resource envelopes produced by the
// netbound engine; see that package for the stream contract.
package services
