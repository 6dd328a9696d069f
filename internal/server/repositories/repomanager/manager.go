package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/convokeeper/internal/dbx"
	"github.com/dmitrijs2005/convokeeper/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/convokeeper/internal/server/repositories/collaborations"
	"github.com/dmitrijs2005/convokeeper/internal/server/repositories/conversations"
)

// RepositoryManager vends repositories bound to a DBTX, so the same service
// code runs against the pool or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	Collaborations(db dbx.DBTX) collaborations.Repository
	Conversations(db dbx.DBTX) conversations.Repository
}
