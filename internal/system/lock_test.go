package system

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run", "disksetup.lock")

	first, err := AcquireLock(path)
	require.NoError(t, err)
	assert.Equal(t, path, first.Path())

	_, err = AcquireLock(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLocked))

	require.NoError(t, first.Release())

	again, err := AcquireLock(path)
	require.NoError(t, err)
	require.NoError(t, again.Release())
}

func TestReleaseNil(t *testing.T) {
	var l *InstanceLock
	assert.NoError(t, l.Release())
}
