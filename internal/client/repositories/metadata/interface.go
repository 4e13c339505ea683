// Package metadata is a small key/value store in the local database. It
// holds the persisted ledger snapshot and the session.
package metadata

import (
	"context"
)

// Well-known keys.
const (
	KeyLedger       = "ledger"
	KeyRefreshToken = "refresh_token"
	KeyUsername     = "username"
)

type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
