// Package persistence provides the key-value store every other component is
// layered on: string keys mapped to JSON text, scoped to a single origin.
package persistence

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get when the key holds no value.
var ErrKeyNotFound = errors.New("key not found")

// Store is the persistent key-value store. Implementations write through
// synchronously; Delete of an absent key is not an error.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
