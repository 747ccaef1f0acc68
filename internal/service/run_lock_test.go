package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalRunLock(t *testing.T) {
	ctx := context.Background()
	var l LocalRunLock

	release, ok, err := l.Acquire(ctx, "job-1", 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "job-1", l.Holder())

	_, ok, err = l.Acquire(ctx, "job-2", 0)
	require.NoError(t, err)
	assert.False(t, ok)

	release()
	assert.Empty(t, l.Holder())

	release2, ok, err := l.Acquire(ctx, "job-2", 0)
	require.NoError(t, err)
	require.True(t, ok)

	// A second release from the first holder must not free job-2's lock.
	release()
	assert.Equal(t, "job-2", l.Holder())
	release2()
}
