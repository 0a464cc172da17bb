package events

import (
	"context"

	"github.com/boulin/eventverse/internal/api"
)

type Repository interface {
	// Upsert inserts the event or replaces the cached row with the same id.
	Upsert(ctx context.Context, e *api.Event) error
	GetByID(ctx context.Context, id string) (*api.Event, error)
	// GetAll returns all cached events ordered by start date.
	GetAll(ctx context.Context) ([]api.Event, error)
	DeleteByID(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
	// ReplaceAll deletes every cached event and stores items instead.
	ReplaceAll(ctx context.Context, items []api.Event) error
}
