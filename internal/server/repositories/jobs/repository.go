// Package jobs stores job applications in PostgreSQL. Every query is scoped
// to the owning user.
package jobs

import (
	"context"

	"github.com/dmitrijs2005/applylog/internal/server/models"
)

type Repository interface {
	// Create inserts job and returns the stored row. A second row with the
	// same idempotency key for the same user yields common.ErrorAlreadyExists.
	Create(ctx context.Context, job *models.Job) (*models.Job, error)
	FindByIdempotencyKey(ctx context.Context, userID, key string) (*models.Job, error)
	Get(ctx context.Context, userID, id string) (*models.Job, error)
	Update(ctx context.Context, userID, id string, patch models.JobPatch) (*models.Job, error)
	Delete(ctx context.Context, userID, id string) error
	List(ctx context.Context, userID string, q models.JobQuery) (*models.JobPage, error)
	// ListAll returns every job of the user, newest application first.
	ListAll(ctx context.Context, userID string) ([]models.Job, error)
}
