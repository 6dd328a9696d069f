package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/convokeeper/internal/common"
	"github.com/dmitrijs2005/convokeeper/internal/dbx"
	"github.com/dmitrijs2005/convokeeper/internal/logging"
	"github.com/dmitrijs2005/convokeeper/internal/server/models"
	"github.com/dmitrijs2005/convokeeper/internal/server/repositories/collaborations"
	"github.com/dmitrijs2005/convokeeper/internal/server/repositories/repomanager"
	"golang.org/x/sync/errgroup"
)

// RoleMutator is the only writer of collaborations. Every mutation except
// AdmitCreator requires the acting user to be an admin of the conversation.
//
// A conversation's sole collaborator cannot change or remove their own row.
type RoleMutator struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewRoleMutator(db *sql.DB, m repomanager.RepositoryManager, l logging.Logger) *RoleMutator {
	return &RoleMutator{db: db, repomanager: m, logger: l.With("module", "roles")}
}

// CreateCollaboration adds targetUserID to conversationID with role on behalf
// of actingAdminID. Role is accepted in any case and stored lowercase.
func (s *RoleMutator) CreateCollaboration(ctx context.Context, actingAdminID, conversationID, targetUserID, role string) (*models.Collaboration, error) {
	r, err := models.ParseRole(role)
	if err != nil {
		return nil, err
	}
	if _, err := requireRole(ctx, s.repomanager.Collaborations(s.db), actingAdminID, conversationID, models.RoleAdmin); err != nil {
		return nil, err
	}

	c, err := s.create(ctx, conversationID, targetUserID, r)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "collaborator added", "conversation_id", conversationID, "user_id", targetUserID, "role", r, "by", actingAdminID)
	return c, nil
}

// AdmitCreator makes creatorID the admin of a freshly created conversation.
// It is not gated since there is no admin yet to ask, so it refuses any
// conversation that already has collaborators. The conversation row stays
// locked from the count to the insert, which serialises concurrent creators.
func (s *RoleMutator) AdmitCreator(ctx context.Context, conversationID, creatorID string) (*models.Collaboration, error) {
	var out *models.Collaboration
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Conversations(tx).LockByID(ctx, conversationID); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return fmt.Errorf("conversation %s: %w", conversationID, err)
			}
			return err
		}

		repo := s.repomanager.Collaborations(tx)
		n, err := repo.CountByConversation(ctx, conversationID)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: conversation %s already has collaborators", common.ErrInvalidOperation, conversationID)
		}

		if _, err := s.repomanager.Accounts(tx).FindByID(ctx, creatorID); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return fmt.Errorf("account %s: %w", creatorID, err)
			}
			return err
		}

		out, err = repo.Insert(ctx, &models.Collaboration{
			ConversationID: conversationID,
			UserID:         creatorID,
			Role:           models.RoleAdmin,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "creator admitted", "conversation_id", conversationID, "user_id", creatorID)
	return out, nil
}

// ChangeRole overwrites the role of targetUserID. The gate, the lookup and the
// update run in one transaction.
func (s *RoleMutator) ChangeRole(ctx context.Context, actingAdminID, conversationID, targetUserID, newRole string) (*models.Collaboration, error) {
	r, err := models.ParseRole(newRole)
	if err != nil {
		return nil, err
	}

	var out *models.Collaboration
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Collaborations(tx)

		if _, err := requireRole(ctx, repo, actingAdminID, conversationID, models.RoleAdmin); err != nil {
			return err
		}
		target, err := repo.FindByPair(ctx, conversationID, targetUserID)
		if err != nil {
			return err
		}
		if err := guardSoleMember(ctx, repo, actingAdminID, conversationID, targetUserID); err != nil {
			return err
		}

		updated, err := repo.UpdateRole(ctx, target.ID, r)
		if err != nil {
			return err
		}
		if !updated {
			return common.ErrorNotFound
		}
		target.Role = r
		out = target
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "role changed", "conversation_id", conversationID, "user_id", targetUserID, "role", r, "by", actingAdminID)
	return out, nil
}

// DeleteCollaborator removes targetUserID from conversationID. It reports
// false, without error, when there was nothing to remove.
func (s *RoleMutator) DeleteCollaborator(ctx context.Context, actingAdminID, conversationID, targetUserID string) (bool, error) {
	var removed bool
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Collaborations(tx)

		if _, err := requireRole(ctx, repo, actingAdminID, conversationID, models.RoleAdmin); err != nil {
			return err
		}
		if err := guardSoleMember(ctx, repo, actingAdminID, conversationID, targetUserID); err != nil {
			return err
		}

		var err error
		removed, err = repo.Delete(ctx, conversationID, targetUserID)
		return err
	})
	if err != nil {
		return false, err
	}

	if removed {
		s.logger.Info(ctx, "collaborator removed", "conversation_id", conversationID, "user_id", targetUserID, "by", actingAdminID)
	}
	return removed, nil
}

// create checks that both ends exist and that the pair is free, then inserts.
// A concurrent insert of the same pair surfaces as common.ErrConflict from the
// store's unique constraint.
func (s *RoleMutator) create(ctx context.Context, conversationID, userID string, role models.Role) (*models.Collaboration, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := s.repomanager.Accounts(s.db).FindByID(gctx, userID)
		if errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("account %s: %w", userID, err)
		}
		return err
	})
	g.Go(func() error {
		_, err := s.repomanager.Conversations(s.db).FindByID(gctx, conversationID)
		if errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("conversation %s: %w", conversationID, err)
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	repo := s.repomanager.Collaborations(s.db)
	_, err := repo.FindByPair(ctx, conversationID, userID)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: user %s already collaborates on %s", common.ErrConflict, userID, conversationID)
	case !errors.Is(err, common.ErrorNotFound):
		return nil, err
	}

	return repo.Insert(ctx, &models.Collaboration{
		ConversationID: conversationID,
		UserID:         userID,
		Role:           role,
	})
}

func guardSoleMember(ctx context.Context, repo collaborations.Repository, actingID, conversationID, targetID string) error {
	if actingID != targetID {
		return nil
	}
	n, err := repo.CountByConversation(ctx, conversationID)
	if err != nil {
		return err
	}
	if n <= 1 {
		return fmt.Errorf("%w: cannot modify your own role while sole member", common.ErrInvalidOperation)
	}
	return nil
}
