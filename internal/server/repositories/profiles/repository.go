// Package profiles stores the application-level user profiles that sit next
// to accounts.
package profiles

import (
	"context"

	"github.com/boulin/eventverse/internal/server/models"
)

type Repository interface {
	// Create fails with common.ErrorConflict when the profile exists.
	Create(ctx context.Context, p *models.Profile) error
	// Get returns common.ErrorNotFound when uid has no profile.
	Get(ctx context.Context, uid string) (*models.Profile, error)
	// Update persists the name, surname and preferences of p.
	Update(ctx context.Context, p *models.Profile) error
	Delete(ctx context.Context, uid string) error
}
