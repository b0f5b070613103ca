// Package metadata is a small key/value store for local auth data:
// username, salt, verifier and cached tokens.
package metadata

import "context"

// Repository is the metadata storage contract.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
