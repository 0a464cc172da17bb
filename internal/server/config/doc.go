// Package config handles configuration for the server component.
//
// Values are resolved in order: built-in defaults, the JSON file named by
// -c/-config, EVENTVERSE_* environment variables and finally the flags
// below.
//
//	-a string   HTTP bind address (e.g. ":8080")
//	-g string   gRPC health bind address
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-o string   organizer code
//	-u string   S3 access key
//	-p string   S3 secret key
//	-b string   S3 bucket name
//	-e string   S3 base endpoint
//	-R string   Redis address; empty disables the event cache
package config
