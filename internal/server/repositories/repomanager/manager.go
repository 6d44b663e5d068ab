package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/pagekeeper/internal/dbx"
	"github.com/dmitrijs2005/pagekeeper/internal/server/repositories/access"
	"github.com/dmitrijs2005/pagekeeper/internal/server/repositories/invites"
	"github.com/dmitrijs2005/pagekeeper/internal/server/repositories/pages"
	"github.com/dmitrijs2005/pagekeeper/internal/server/repositories/posts"
	"github.com/dmitrijs2005/pagekeeper/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to either a *sql.DB or a
// transaction, so services can compose several of them inside dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Pages(db dbx.DBTX) pages.Repository
	Access(db dbx.DBTX) access.Repository
	Invites(db dbx.DBTX) invites.Repository
	Posts(db dbx.DBTX) posts.Repository
}
