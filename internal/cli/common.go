package cli

import (
	"os"
	"strings"

	"github.com/nace/disksetup/internal/config"
	"github.com/nace/disksetup/internal/lifecycle"
	"github.com/nace/disksetup/internal/system"
	"github.com/nace/disksetup/internal/target"
	"github.com/nace/disksetup/internal/ui"
	"github.com/nace/disksetup/internal/volume"
)

// GlobalContext holds shared resources for all commands
type GlobalContext struct {
	Settings  *config.Settings
	Executor  *system.Executor
	Logger    *ui.Logger
	Inspector *volume.SystemInspector
	CryptMgr  *volume.CryptManager
	MountMgr  *volume.MountManager
}

// NewGlobalContext creates a context with default components. Configure
// replaces them once flags are parsed.
func NewGlobalContext() *GlobalContext {
	ctx := &GlobalContext{}
	ctx.Configure(&config.Settings{
		Crypttab:  volume.DefaultPaths().Crypttab,
		Fstab:     volume.DefaultPaths().Fstab,
		Mounts:    volume.DefaultPaths().Mounts,
		File:      target.DefaultConfigPath,
		LockFile:  config.DefaultLockFile,
		LogFormat: "text",
	})
	return ctx
}

// Configure rebuilds the executor, logger and managers from settings
func (ctx *GlobalContext) Configure(s *config.Settings) {
	ctx.Settings = s
	ctx.Executor = system.NewExecutor(s.Debug, system.WithDryRun(s.DryRun))
	ctx.Logger = ui.NewLogger(ui.Options{
		Verbose: s.Verbose,
		Quiet:   s.Quiet,
		NoColor: s.NoColor,
		Format:  s.LogFormat,
	})
	ctx.Inspector = volume.NewInspector(ctx.Executor, s.Paths())
	ctx.CryptMgr = volume.NewCryptManager(ctx.Executor, os.Stdin)
	ctx.MountMgr = volume.NewMountManager(ctx.Executor)
}

// CheckDependencies checks that the given system commands are installed
func (ctx *GlobalContext) CheckDependencies(deps []string) error {
	if len(deps) == 0 {
		return nil
	}
	ctx.Logger.Debug("checking for %s", strings.Join(deps, ", "))
	return ctx.Executor.CheckDependencies(deps)
}

// LoadRegistry reads the target configuration named by the settings
func (ctx *GlobalContext) LoadRegistry() (*target.Registry, error) {
	ctx.Logger.Debug("loading targets from %s", ctx.Settings.File)
	return target.Load(ctx.Settings.File)
}

// NewDispatcher wires a dispatcher over registry
func (ctx *GlobalContext) NewDispatcher(registry *target.Registry) *lifecycle.Dispatcher {
	return lifecycle.NewDispatcher(registry, ctx.Inspector, ctx.CryptMgr, ctx.MountMgr, ctx.Logger)
}
