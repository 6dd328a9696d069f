package collaborations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/convokeeper/internal/common"
	"github.com/dmitrijs2005/convokeeper/internal/dbx"
	"github.com/dmitrijs2005/convokeeper/internal/server/models"
	"github.com/google/uuid"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) FindByPair(ctx context.Context, conversationID, userID string) (*models.Collaboration, error) {
	query :=
		`SELECT id, conversation_id, user_id, role, created_at FROM collaborations
		 WHERE conversation_id = $1 AND user_id = $2
		 `

	var (
		c    models.Collaboration
		role string
	)
	err := r.db.QueryRowContext(ctx, query, conversationID, userID).
		Scan(&c.ID, &c.ConversationID, &c.UserID, &role, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	c.Role = models.Role(role)
	return &c, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, c *models.Collaboration) (*models.Collaboration, error) {
	query :=
		`INSERT INTO collaborations (id, conversation_id, user_id, role)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at
		 `

	id := uuid.NewString()
	err := r.db.QueryRowContext(ctx, query, id, c.ConversationID, c.UserID, string(c.Role)).Scan(&c.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, fmt.Errorf("collaboration %s/%s: %w", c.ConversationID, c.UserID, common.ErrConflict)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	c.ID = id
	return c, nil
}

func (r *PostgresRepository) UpdateRole(ctx context.Context, id string, role models.Role) (bool, error) {
	query := `UPDATE collaborations SET role = $2 WHERE id = $1`
	return r.execAffected(ctx, query, id, string(role))
}

func (r *PostgresRepository) Delete(ctx context.Context, conversationID, userID string) (bool, error) {
	query := `DELETE FROM collaborations WHERE conversation_id = $1 AND user_id = $2`
	return r.execAffected(ctx, query, conversationID, userID)
}

func (r *PostgresRepository) CountByConversation(ctx context.Context, conversationID string) (int, error) {
	query := `SELECT COUNT(*) FROM collaborations WHERE conversation_id = $1`

	var n int
	if err := r.db.QueryRowContext(ctx, query, conversationID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) execAffected(ctx context.Context, query string, args ...any) (bool, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n > 0, nil
}
