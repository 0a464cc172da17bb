// Package users is the local cache of user profiles. Writes publish
// live.TopicUsers.
package users

import (
	"context"

	"github.com/boulin/eventverse/internal/api"
)

type Repository interface {
	Upsert(ctx context.Context, u *api.User) error
	// GetByID returns (nil, nil) when the profile is not cached.
	GetByID(ctx context.Context, uid string) (*api.User, error)
	DeleteByID(ctx context.Context, uid string) error
	DeleteAll(ctx context.Context) error
}
