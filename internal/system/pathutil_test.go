package system

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateKeyfilePath(t *testing.T) {
	dir := t.TempDir()
	keyfile := filepath.Join(dir, "data.key")
	require.NoError(t, os.WriteFile(keyfile, []byte("secret"), 0600))
	link := filepath.Join(dir, "link.key")
	require.NoError(t, os.Symlink(keyfile, link))

	info, err := ValidateKeyfilePath(link)
	require.NoError(t, err)
	resolvedKey, err := filepath.EvalSymlinks(keyfile)
	require.NoError(t, err)
	assert.Equal(t, resolvedKey, info.Path)
	assert.False(t, info.Insecure())

	require.NoError(t, os.Chmod(keyfile, 0644))
	info, err = ValidateKeyfilePath(keyfile)
	require.NoError(t, err)
	assert.True(t, info.Insecure())
}

func TestValidateKeyfilePathRejects(t *testing.T) {
	dir := t.TempDir()

	_, err := ValidateKeyfilePath(filepath.Join(dir, "missing.key"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "keyfile not found")

	_, err = ValidateKeyfilePath(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "regular file")
}
