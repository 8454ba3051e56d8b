package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withEUID(t *testing.T, uid int) {
	t.Helper()
	orig := geteuid
	geteuid = func() int { return uid }
	t.Cleanup(func() { geteuid = orig })
}

func TestRequireRoot(t *testing.T) {
	withEUID(t, 0)
	assert.True(t, IsRoot())
	assert.NoError(t, RequireRoot())

	withEUID(t, 1000)
	err := RequireRoot()
	require.Error(t, err)
	assert.Equal(t, ExitPrivilege, ExitCode(err))
}

func TestCheckPrivilegeOutput(t *testing.T) {
	err := CheckPrivilegeOutput("WARNING: Running as non-root user...\nDevice data_crypt not found")
	assert.NoError(t, err, "marker match is case sensitive")

	err = CheckPrivilegeOutput("Cannot initialize device-mapper, running as non-root user.\n")
	require.Error(t, err)
	assert.Equal(t, KindPrivilege, KindOf(err))
}
