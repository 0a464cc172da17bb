// Package refreshtokens stores the opaque refresh tokens handed out at
// login. Each token is single use: refreshing consumes it.
package refreshtokens

import (
	"context"
	"time"

	"github.com/boulin/eventverse/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, t *models.RefreshToken) error

	// Consume deletes token and returns the row it held, so two concurrent
	// refreshes cannot both succeed. Returns common.ErrorNotFound when the
	// token is unknown or already used.
	Consume(ctx context.Context, token string) (*models.RefreshToken, error)

	// DeleteExpired purges tokens whose expiry is before now and reports
	// how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
