package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nace/disksetup/internal/config"
	"github.com/nace/disksetup/internal/lifecycle"
	"github.com/nace/disksetup/internal/system"
	"github.com/nace/disksetup/internal/ui"
)

const checkConfig = `id: all
targets: [data, media]
---
id: data
crypt: {name: data_crypt, device: /dev/sdb1}
mount: {dir: /mnt/data}
---
id: media
crypt: {name: media_crypt}
options: [ro]
---
id: empty
targets: []
`

func newTestContext(t *testing.T, config string) (*GlobalContext, *bytes.Buffer) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "setupcfg.yml")
	require.NoError(t, os.WriteFile(path, []byte(config), 0644))

	ctx := NewGlobalContext()
	s := settingsFor(path)
	ctx.Configure(&s)
	var log bytes.Buffer
	ctx.Logger = ui.NewLogger(ui.Options{Writer: &log, NoColor: true})
	return ctx, &log
}

func settingsFor(path string) config.Settings {
	return config.Settings{File: path, LogFormat: "text", DryRun: true}
}

func TestCheckCommandPrintsPlan(t *testing.T) {
	ctx, log := newTestContext(t, checkConfig)

	cmd := NewCheckCommand(ctx)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(nil)
	require.NoError(t, cmd.Execute())

	assert.Contains(t, log.String(), "4 target(s) defined")
	plan := out.String()
	assert.Contains(t, plan, "all > data")
	assert.Contains(t, plan, "data_crypt <- /dev/sdb1")
	assert.Contains(t, plan, "/dev/mapper/data_crypt -> /mnt/data")
	assert.Contains(t, plan, "media_crypt (crypttab)")
	assert.Contains(t, plan, "/dev/mapper/media_crypt -> (fstab)")
}

func TestCheckCommandEmptyGroup(t *testing.T) {
	ctx, log := newTestContext(t, checkConfig)

	cmd := NewCheckCommand(ctx)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"empty"})
	require.NoError(t, cmd.Execute())

	assert.Empty(t, out.String())
	assert.Contains(t, log.String(), "[INFO] nothing to do")
}

func TestCheckCommandErrors(t *testing.T) {
	ctx, _ := newTestContext(t, checkConfig)

	cmd := NewCheckCommand(ctx)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"missing"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, system.ExitConfig, system.ExitCode(err))

	ctx, _ = newTestContext(t, "id: all\ntargets: [ghost]\n")
	cmd = NewCheckCommand(ctx)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(nil)
	err = cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, system.ExitConfig, system.ExitCode(err))
}

func TestStatusTable(t *testing.T) {
	out := statusTable([]lifecycle.LeafStatus{
		{ID: "data", Via: "all > data", CryptName: "data_crypt", CryptActive: true, Device: "/dev/mapper/data_crypt", MountPoint: "/mnt/data", Mounted: true},
		{ID: "backup", Via: "backup", Device: "/dev/sdd1", Options: "ro"},
	}).Render()

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 6)
	assert.Contains(t, lines[3], "data_crypt (active)")
	assert.Contains(t, lines[3], "/mnt/data")
	assert.Contains(t, lines[4], "backup")
	assert.Contains(t, lines[4], "ro")
}

func TestConfigureAppliesSettings(t *testing.T) {
	ctx := NewGlobalContext()
	assert.False(t, ctx.Executor.DryRun())

	s := settingsFor("/tmp/setupcfg.yml")
	ctx.Configure(&s)
	assert.True(t, ctx.Executor.DryRun())
	assert.Equal(t, "/tmp/setupcfg.yml", ctx.Settings.File)
}

func TestCheckDependencies(t *testing.T) {
	ctx, _ := newTestContext(t, checkConfig)

	assert.NoError(t, ctx.CheckDependencies(nil))
	assert.NoError(t, ctx.CheckDependencies([]string{"sh"}))

	err := ctx.CheckDependencies([]string{"sh", "disksetup-missing-tool"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disksetup-missing-tool")
	assert.NotContains(t, err.Error(), "sh,")
}

func TestLifecycleCommandRejectsUnknownName(t *testing.T) {
	ctx, _ := newTestContext(t, checkConfig)

	cmd := newLifecycleCommand(ctx, "restart", "", "")
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(nil)
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown command "restart"`)
}
