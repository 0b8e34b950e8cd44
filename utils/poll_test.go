package utils

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitForSucceeds(t *testing.T) {
	calls := 0
	err := WaitFor(context.Background(), time.Second, time.Millisecond, func() (bool, error) {
		calls++
		return calls >= 3, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWaitForTimeout(t *testing.T) {
	err := WaitFor(context.Background(), 20*time.Millisecond, 5*time.Millisecond, func() (bool, error) {
		return false, nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
}

func TestWaitForCheckError(t *testing.T) {
	err := WaitFor(context.Background(), time.Second, time.Millisecond, func() (bool, error) {
		return false, assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)
}

func TestWaitForContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := WaitFor(ctx, time.Second, time.Millisecond, func() (bool, error) {
		return false, nil
	})
	require.ErrorIs(t, err, context.Canceled)
}
