// Package refreshtokens declares the server-side repository contract for
// refresh tokens.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/applylog/internal/server/models"
)

// Repository issues, looks up and revokes refresh tokens. Only a hash of
// each token is persisted.
type Repository interface {
	// Create stores a new refresh token for userID with an expiry of now+validity.
	Create(ctx context.Context, userID string, token string, validity time.Duration) error
	// Find returns the token's owner and expiry, or common.ErrorNotFound.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)
	// Delete revokes a token. Deleting an unknown token is not an error.
	Delete(ctx context.Context, token string) error
	// DeleteExpired purges tokens that expired before now and reports how many.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
