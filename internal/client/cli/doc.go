// Package cli provides the interactive Eventverse terminal client.
//
// It wires configuration, the local cache, the API client and the
// application services into a REPL. A background watcher pings the server
// health endpoint and flips the client between online and offline mode; a
// cron job keeps the event cache warm while online.
//
// The REPL is started with App.Run, which blocks until the user exits.
package cli
