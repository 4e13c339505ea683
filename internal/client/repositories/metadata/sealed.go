package metadata

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/applylog/internal/cryptox"
)

// SealedRepository encrypts the session token before it reaches the inner
// store. Other keys pass through unchanged.
type SealedRepository struct {
	Repository
	key []byte
}

func NewSealedRepository(inner Repository, key []byte) *SealedRepository {
	return &SealedRepository{Repository: inner, key: key}
}

func isSecret(key string) bool {
	return key == KeyRefreshToken
}

func (r *SealedRepository) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := r.Repository.Get(ctx, key)
	if err != nil || value == nil || !isSecret(key) {
		return value, err
	}
	plain, err := cryptox.Open(value, r.key)
	if err != nil {
		return nil, fmt.Errorf("failed to open metadata[%s]: %w", key, err)
	}
	return plain, nil
}

func (r *SealedRepository) Set(ctx context.Context, key string, value []byte) error {
	if !isSecret(key) {
		return r.Repository.Set(ctx, key, value)
	}
	sealed, err := cryptox.Seal(value, r.key)
	if err != nil {
		return fmt.Errorf("failed to seal metadata[%s]: %w", key, err)
	}
	return r.Repository.Set(ctx, key, sealed)
}
