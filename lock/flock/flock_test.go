package flock

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projecteru2/hatchery/lock"
)

func testLock(t *testing.T) *Lock {
	t.Helper()
	return New(filepath.Join(t.TempDir(), ".lock"))
}

func TestLockUnlock(t *testing.T) {
	l := testLock(t)
	ctx := context.Background()

	require.NoError(t, l.Lock(ctx))
	require.NoError(t, l.Unlock(ctx))

	// reacquirable after release
	require.NoError(t, l.Lock(ctx))
	require.NoError(t, l.Unlock(ctx))
}

func TestTryLockHeld(t *testing.T) {
	l := testLock(t)
	ctx := context.Background()

	require.NoError(t, l.Lock(ctx))
	ok, err := l.TryLock(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, l.Unlock(ctx))
	ok, err = l.TryLock(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, l.Unlock(ctx))
}

func TestLockHonoursContext(t *testing.T) {
	l := testLock(t)
	require.NoError(t, l.Lock(context.Background()))
	defer l.Unlock(context.Background()) //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := l.Lock(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWithLockReleasesOnError(t *testing.T) {
	l := testLock(t)
	ctx := context.Background()

	err := lock.WithLock(ctx, l, func() error {
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	// the lock must be free again
	ok, tryErr := l.TryLock(ctx)
	require.NoError(t, tryErr)
	assert.True(t, ok)
	require.NoError(t, l.Unlock(ctx))
}
