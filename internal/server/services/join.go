package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/convokeeper/internal/common"
	"github.com/dmitrijs2005/convokeeper/internal/logging"
	"github.com/dmitrijs2005/convokeeper/internal/server/models"
	"github.com/dmitrijs2005/convokeeper/internal/server/repositories/repomanager"
)

// TokenJoinFlow lets a user enroll themselves by presenting one of a
// conversation's join tokens.
type TokenJoinFlow struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	roles       *RoleMutator
	logger      logging.Logger
}

func NewTokenJoinFlow(db *sql.DB, m repomanager.RepositoryManager, roles *RoleMutator, l logging.Logger) *TokenJoinFlow {
	return &TokenJoinFlow{db: db, repomanager: m, roles: roles, logger: l.With("module", "join")}
}

// JoinByToken adds userID to conversationID as viewer or writer depending on
// which token matches. The viewer token is checked first. An existing member
// gets common.ErrAlreadyMember and keeps their role.
func (s *TokenJoinFlow) JoinByToken(ctx context.Context, conversationID, token, userID string) (*models.Collaboration, error) {
	conv, err := s.repomanager.Conversations(s.db).FindByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("conversation %s: %w", conversationID, err)
		}
		return nil, err
	}

	role, ok := matchToken(conv, token)
	if !ok {
		s.logger.Warn(ctx, "join rejected", "conversation_id", conversationID, "user_id", userID)
		return nil, common.ErrInvalidToken
	}

	c, err := s.roles.create(ctx, conversationID, userID, role)
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, common.ErrAlreadyMember
		}
		return nil, err
	}

	s.logger.Info(ctx, "joined by token", "conversation_id", conversationID, "user_id", userID, "role", role)
	return c, nil
}

func matchToken(conv *models.Conversation, token string) (models.Role, bool) {
	if token == "" {
		return "", false
	}
	if tokenEqual(token, conv.TokenViewer) {
		return models.RoleViewer, true
	}
	if tokenEqual(token, conv.TokenWriter) {
		return models.RoleWriter, true
	}
	return "", false
}

func tokenEqual(given, stored string) bool {
	return stored != "" && subtle.ConstantTimeCompare([]byte(given), []byte(stored)) == 1
}
