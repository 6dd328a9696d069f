package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/convokeeper/internal/common"
	"github.com/dmitrijs2005/convokeeper/internal/server/models"
	"github.com/dmitrijs2005/convokeeper/internal/server/repositories/collaborations"
	"github.com/dmitrijs2005/convokeeper/internal/server/repositories/repomanager"
)

// AccessGuard answers read-only questions about a user's role in a
// conversation. It never writes.
type AccessGuard struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewAccessGuard(db *sql.DB, m repomanager.RepositoryManager) *AccessGuard {
	return &AccessGuard{db: db, repomanager: m}
}

// HasRole reports whether userID holds exactly role on conversationID. A user
// without a collaboration row holds no role. Banned is matched like any other
// role, so HasRole(..., RoleBanned) is true for banned collaborators.
func (g *AccessGuard) HasRole(ctx context.Context, userID, conversationID string, role models.Role) (bool, error) {
	want, err := models.ParseRole(string(role))
	if err != nil {
		return false, err
	}
	c, err := findRole(ctx, g.repomanager.Collaborations(g.db), userID, conversationID)
	if err != nil {
		return false, err
	}
	return c != nil && c.Role == want, nil
}

// Require returns the caller's collaboration if it holds exactly role, and
// common.ErrPermissionDenied otherwise. An unknown role is rejected with
// common.ErrInvalidArgument.
func (g *AccessGuard) Require(ctx context.Context, userID, conversationID string, role models.Role) (*models.Collaboration, error) {
	want, err := models.ParseRole(string(role))
	if err != nil {
		return nil, err
	}
	return requireRole(ctx, g.repomanager.Collaborations(g.db), userID, conversationID, want)
}

// HasAtLeast reports whether userID holds role or a stronger one. Banned
// collaborators hold nothing.
func (g *AccessGuard) HasAtLeast(ctx context.Context, userID, conversationID string, role models.Role) (bool, error) {
	least, err := models.ParseRole(string(role))
	if err != nil {
		return false, err
	}
	c, err := findRole(ctx, g.repomanager.Collaborations(g.db), userID, conversationID)
	if err != nil {
		return false, err
	}
	return c != nil && c.Role.Satisfies(least), nil
}

func (g *AccessGuard) IsAdmin(ctx context.Context, userID, conversationID string) (bool, error) {
	return g.HasRole(ctx, userID, conversationID, models.RoleAdmin)
}

func (g *AccessGuard) IsWriter(ctx context.Context, userID, conversationID string) (bool, error) {
	return g.HasRole(ctx, userID, conversationID, models.RoleWriter)
}

func (g *AccessGuard) IsViewer(ctx context.Context, userID, conversationID string) (bool, error) {
	return g.HasRole(ctx, userID, conversationID, models.RoleViewer)
}

// findRole returns nil, nil when the user has no row.
func findRole(ctx context.Context, repo collaborations.Repository, userID, conversationID string) (*models.Collaboration, error) {
	c, err := repo.FindByPair(ctx, conversationID, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

func requireRole(ctx context.Context, repo collaborations.Repository, userID, conversationID string, role models.Role) (*models.Collaboration, error) {
	c, err := findRole(ctx, repo, userID, conversationID)
	if err != nil {
		return nil, err
	}
	if c == nil || c.Role != role {
		return nil, fmt.Errorf("%w: %s role required", common.ErrPermissionDenied, role)
	}
	return c, nil
}
