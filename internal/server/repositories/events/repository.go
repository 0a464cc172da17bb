// Package events declares the server-side repository contract for events
// and the likes attached to them.
package events

import (
	"context"

	"github.com/boulin/eventverse/internal/server/models"
)

// Repository reads and writes events. Lookups of a missing id return
// common.ErrorNotFound.
type Repository interface {
	List(ctx context.Context) ([]*models.Event, error)
	Get(ctx context.Context, id string) (*models.Event, error)
	Create(ctx context.Context, e *models.Event) error
	// Update replaces the organizer-editable fields of e.
	Update(ctx context.Context, e *models.Event) error
	Delete(ctx context.Context, id string) error
	SetCover(ctx context.Context, id string, url string) error

	// Like and Unlike are idempotent.
	Like(ctx context.Context, id string, uid string) error
	Unlike(ctx context.Context, id string, uid string) error
}
