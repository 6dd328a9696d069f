// Package conversations exposes the read-only view of conversations the
// access core needs: existence and the two join tokens.
package conversations

import (
	"context"

	"github.com/dmitrijs2005/convokeeper/internal/server/models"
)

type Repository interface {
	// FindByID returns common.ErrorNotFound when the conversation does not exist.
	FindByID(ctx context.Context, id string) (*models.Conversation, error)
	// LockByID takes a row lock on the conversation until the surrounding
	// transaction ends. It returns common.ErrorNotFound when there is no row.
	LockByID(ctx context.Context, id string) error
}
