// Package events is the local cache of events.
//
// Rows mirror api.Event: the location is flattened into three columns, the
// liked list is stored as a JSON array and dates as Unix milliseconds.
// Every committed write publishes live.TopicEvents so watchers re-query.
//
// GetByID returns (nil, nil) when the event is not cached. ReplaceAll swaps
// the whole table inside one transaction, so watchers never observe the
// intermediate empty state.
package events
