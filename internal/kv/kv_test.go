package kv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupBadger(t *testing.T) *Badger {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "bookdam-kv-test-*")
	require.NoError(t, err)

	opts := badger.DefaultOptions(filepath.Join(tmpDir, "db"))
	opts.Logger = nil

	db, err := badger.Open(opts)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Close()
		_ = os.RemoveAll(tmpDir)
	})

	return NewBadger(db)
}

// Both implementations must behave identically.
func stores(t *testing.T) map[string]Store {
	return map[string]Store{
		"badger": setupBadger(t),
		"memory": NewMemory(),
	}
}

func TestStoreRoundTrip(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			type payload struct {
				Date  string   `json:"date"`
				ISBNs []string `json:"isbns"`
			}

			in := payload{Date: "2026-09-01", ISBNs: []string{"9780000000001", "9780000000002"}}
			require.NoError(t, s.Set(ctx, "discovery:daily", in))

			var out payload
			require.NoError(t, s.Get(ctx, "discovery:daily", &out))
			assert.Equal(t, in, out)
		})
	}
}

func TestStoreGetMissing(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			var out string
			err := s.Get(context.Background(), "nope", &out)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStoreDelete(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, s.Set(ctx, "key", "value"))
			require.NoError(t, s.Delete(ctx, "key"))

			var out string
			assert.ErrorIs(t, s.Get(ctx, "key", &out), ErrNotFound)

			// Deleting a missing key is not an error.
			assert.NoError(t, s.Delete(ctx, "key"))
		})
	}
}

func TestStoreOverwrite(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, s.Set(ctx, "recent", []string{"a"}))
			require.NoError(t, s.Set(ctx, "recent", []string{"b", "a"}))

			var out []string
			require.NoError(t, s.Get(ctx, "recent", &out))
			assert.Equal(t, []string{"b", "a"}, out)
		})
	}
}
