// Package api defines the JSON wire contract shared by the Eventverse server
// and its client: entities, input parameters and auth payloads.
//
// Dates travel as Unix milliseconds (see timex.Millis) and the target
// audience as the strings "0", "1" and "2".
package api
