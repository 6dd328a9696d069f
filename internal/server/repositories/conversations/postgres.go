package conversations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/convokeeper/internal/common"
	"github.com/dmitrijs2005/convokeeper/internal/dbx"
	"github.com/dmitrijs2005/convokeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.Conversation, error) {
	query :=
		`SELECT id, title, token_viewer, token_writter, created_at FROM conversations
		 WHERE id = $1
		 `

	var c models.Conversation
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&c.ID, &c.Title, &c.TokenViewer, &c.TokenWriter, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &c, nil
}

func (r *PostgresRepository) LockByID(ctx context.Context, id string) error {
	query := `SELECT id FROM conversations WHERE id = $1 FOR UPDATE`

	var got string
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&got); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
