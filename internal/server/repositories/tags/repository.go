// Package tags stores the status and platform dictionaries: server-seeded
// defaults shared by everyone plus per-user custom entries.
package tags

import (
	"context"

	"github.com/dmitrijs2005/applylog/internal/server/models"
)

type Repository interface {
	ListDefaults(ctx context.Context, kind models.TagKind) ([]models.Tag, error)
	ListCustom(ctx context.Context, userID string, kind models.TagKind) ([]models.Tag, error)
	// CreateCustom fails with common.ErrorAlreadyExists when the user
	// already has the key.
	CreateCustom(ctx context.Context, userID string, kind models.TagKind, tag models.Tag) error
	// EnsureCustom inserts tag unless the user already has its key.
	EnsureCustom(ctx context.Context, userID string, kind models.TagKind, tag models.Tag) error
	// DeleteCustom fails with common.ErrorNotFound for an unknown key.
	DeleteCustom(ctx context.Context, userID string, kind models.TagKind, key string) error
}
