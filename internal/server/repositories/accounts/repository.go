// Package accounts declares the account store used by credential checks and
// its PostgreSQL implementation.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/convokeeper/internal/server/models"
)

// Repository persists accounts. Mail is unique; lookups expect it normalised.
type Repository interface {
	// Create inserts a new account and fills in its ID and CreatedAt.
	// A taken mail yields common.ErrConflict.
	Create(ctx context.Context, account *models.Account) (*models.Account, error)

	// FindByMail returns common.ErrorNotFound when no account has mail.
	FindByMail(ctx context.Context, mail string) (*models.Account, error)

	// FindByID returns common.ErrorNotFound when the account does not exist.
	FindByID(ctx context.Context, id string) (*models.Account, error)

	// Save writes the mutable fields: credentials, status and last login.
	Save(ctx context.Context, account *models.Account) error
}
