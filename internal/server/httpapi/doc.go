// Package httpapi exposes the Eventverse REST API over gin.
//
// All routes except /healthz and /v1/auth/* require an
// "Authorization: Bearer <access token>" header. Errors are returned as
// {"message": "..."}; an expired access token answers 401 "token expired"
// so clients know to refresh.
package httpapi
