package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/convokeeper/internal/common"
)

// Role is a collaborator's standing in one conversation.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleWriter Role = "writer"
	RoleViewer Role = "viewer"
	RoleBanned Role = "banned"
)

// rank orders the roles that grant access. Banned has no rank.
var rank = map[Role]int{
	RoleViewer: 1,
	RoleWriter: 2,
	RoleAdmin:  3,
}

// ParseRole accepts any casing of the four role names and returns the
// lowercase form. Anything else is ErrInvalidArgument.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case RoleAdmin, RoleWriter, RoleViewer, RoleBanned:
		return r, nil
	}
	return "", fmt.Errorf("%w: unknown role %q", common.ErrInvalidArgument, s)
}

// Satisfies reports whether r ranks at or above least. A banned
// collaborator satisfies nothing, and nothing requires banned.
func (r Role) Satisfies(least Role) bool {
	have, ok := rank[r]
	if !ok {
		return false
	}
	want, ok := rank[least]
	return ok && have >= want
}

// Collaboration binds one user to one conversation with a role.
// (ConversationID, UserID) is unique.
type Collaboration struct {
	ID             string
	ConversationID string
	UserID         string
	Role           Role
	CreatedAt      time.Time
}
