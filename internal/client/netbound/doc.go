// Package netbound decides, per request, whether the local cache is enough or
// the API must be consulted first, and turns the outcome into a stream of
// resource envelopes.
//
// Every stream starts with Loading. A successful read or mutation is
// followed by a live view of the local store: Success is re-emitted after
// every change on the query's topic until the caller's context is cancelled.
// Error is terminal and leaves the local store untouched.
//
// Reads go through Fetch, writes through Mutate. Freshness implements the
// ten-minute staleness window of the event collection.
package netbound
