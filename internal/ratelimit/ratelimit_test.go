package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowWithinBurst(t *testing.T) {
	rl := New(1, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("client-1"), "request %d within burst", i)
	}
	assert.False(t, rl.Allow("client-1"))
}

func TestKeysAreIndependent(t *testing.T) {
	rl := New(1, 1)

	require.True(t, rl.Allow("client-1"))
	assert.False(t, rl.Allow("client-1"))

	// A different key has its own bucket.
	assert.True(t, rl.Allow("client-2"))
}

func TestWaitRespectsContext(t *testing.T) {
	rl := New(0.001, 1)
	require.True(t, rl.Allow("client-1"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := rl.Wait(ctx, "client-1")
	assert.Error(t, err)
}

func TestRefillOverTime(t *testing.T) {
	rl := New(100, 1)
	require.True(t, rl.Allow("client-1"))
	require.False(t, rl.Allow("client-1"))

	time.Sleep(20 * time.Millisecond)
	assert.True(t, rl.Allow("client-1"))
}
