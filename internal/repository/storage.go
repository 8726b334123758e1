package repository

import "context"

// Storage is the durable key/value capability the cart persists through.
// Get returns ErrNotFound when the key has never been written or was deleted.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
