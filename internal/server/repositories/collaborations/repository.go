// Package collaborations declares the store for (conversation, user) → role
// bindings and its PostgreSQL implementation.
package collaborations

import (
	"context"

	"github.com/dmitrijs2005/convokeeper/internal/server/models"
)

// Repository persists collaborations. The store enforces uniqueness of
// (conversation, user); Insert reports a breach as common.ErrConflict.
type Repository interface {
	// FindByPair returns common.ErrorNotFound when the user has no row.
	FindByPair(ctx context.Context, conversationID, userID string) (*models.Collaboration, error)
	Insert(ctx context.Context, c *models.Collaboration) (*models.Collaboration, error)
	// UpdateRole reports whether a row with id existed.
	UpdateRole(ctx context.Context, id string, role models.Role) (bool, error)
	// Delete reports whether a row was removed.
	Delete(ctx context.Context, conversationID, userID string) (bool, error)
	CountByConversation(ctx context.Context, conversationID string) (int, error)
}
