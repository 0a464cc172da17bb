// Package remote is the client's view of the Eventverse HTTP API.
//
// Client wraps a resty client rooted at <server>/v1. It injects the bearer
// access token on every authenticated request and, when the server answers
// 401 "token expired", refreshes the token pair once and retries. Every
// failure is returned as *Error carrying the server message and HTTP status,
// or the transport message with StatusCode 0.
//
// HealthChecker pings the server through the standard gRPC health protocol
// and drives the CLI's online/offline mode.
package remote
