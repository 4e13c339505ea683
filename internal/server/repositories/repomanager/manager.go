package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/applylog/internal/dbx"
	"github.com/dmitrijs2005/applylog/internal/server/repositories/jobs"
	"github.com/dmitrijs2005/applylog/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/applylog/internal/server/repositories/stats"
	"github.com/dmitrijs2005/applylog/internal/server/repositories/tags"
	"github.com/dmitrijs2005/applylog/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Jobs(db dbx.DBTX) jobs.Repository
	Tags(db dbx.DBTX) tags.Repository
	Stats(db dbx.DBTX) stats.Repository
}
