// Package kv provides a small key-value cache used for per-process state
// that must survive restarts, such as the daily pick cache and recent
// search terms. Services depend on the Store interface so tests can swap
// in the in-memory implementation.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key does not exist.
var ErrNotFound = errors.New("kv: key not found")

// Store is a minimal JSON-valued key-value store.
type Store interface {
	// Get unmarshals the value at key into dest. Returns ErrNotFound if absent.
	Get(ctx context.Context, key string, dest any) error
	// Set marshals value and stores it at key, replacing any existing value.
	Set(ctx context.Context, key string, value any) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
