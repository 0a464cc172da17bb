// Package common contains shared constants and sentinel errors used across
// Eventverse components.
package common

const (
	// AuthorizationHeaderName carries the bearer access token on API requests.
	AuthorizationHeaderName = "Authorization"

	// BearerScheme prefixes the access token in the Authorization header.
	BearerScheme = "Bearer"

	// RequestIDHeaderName correlates client requests with server logs.
	RequestIDHeaderName = "X-Request-ID"

	// APIVersionPrefix is the path prefix of every versioned API route.
	APIVersionPrefix = "/v1"
)

// HealthServiceName is the service reported by the gRPC health endpoint.
const HealthServiceName = "eventverse.API"
