// Package accounts declares the server-side repository contract for
// email/password accounts.
package accounts

import (
	"context"

	"github.com/boulin/eventverse/internal/server/models"
)

type Repository interface {
	// Create inserts the account; an already registered email yields
	// common.ErrorConflict.
	Create(ctx context.Context, account *models.Account) (*models.Account, error)

	// GetByEmail returns common.ErrorNotFound when no account matches.
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
}
