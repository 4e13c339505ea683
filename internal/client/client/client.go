package client

import (
	"context"
	"time"

	"github.com/dmitrijs2005/applylog/internal/client/models"
)

// TagMeta describes the status and platforms of a job so the server can
// register custom dictionary entries it has not seen yet.
type TagMeta struct {
	Status    *models.Tag
	Platforms []models.Tag
}

// Export is a rendered export file waiting in object storage.
type Export struct {
	FileName    string
	ContentType string
	URL         string
	ExpiresAt   time.Time
}

type Client interface {
	Close() error
	Ping(ctx context.Context) error

	Register(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) error
	// Resume restores a session from a stored refresh token.
	Resume(refreshToken string)
	Logout()
	RefreshToken() string

	ListJobs(ctx context.Context, q models.Query) (models.Page, error)
	CreateJob(ctx context.Context, idempotencyKey string, j models.Job, meta TagMeta) (models.Job, error)
	UpdateJob(ctx context.Context, id string, diff models.JobDiff, meta TagMeta) (models.Job, error)
	DeleteJob(ctx context.Context, id string) error

	ListDefaultTags(ctx context.Context, kind models.TagKind) ([]models.Tag, error)
	ListCustomTags(ctx context.Context, kind models.TagKind) ([]models.Tag, error)
	CreateTag(ctx context.Context, kind models.TagKind, key, name string) (models.Tag, error)
	DeleteTag(ctx context.Context, kind models.TagKind, key string) error

	GetStats(ctx context.Context) (models.Stats, error)
	ExportJobs(ctx context.Context, format string) (Export, error)
}
