package cli

import (
	"github.com/spf13/cobra"

	"github.com/nace/disksetup/internal/lifecycle"
	"github.com/nace/disksetup/internal/system"
)

// LifecycleCommand handles start and stop. The transition is taken from
// the name the command was invoked as.
type LifecycleCommand struct {
	ctx *GlobalContext
}

// NewStartCommand creates the start command
func NewStartCommand(ctx *GlobalContext) *cobra.Command {
	return newLifecycleCommand(ctx, "start",
		"Open and mount targets",
		`Open the encryption layer and mount the filesystem of each target, in
configuration order. Groups expand to their members. Targets already open
or mounted are skipped. Without arguments the "all" target is started.`)
}

// NewStopCommand creates the stop command
func NewStopCommand(ctx *GlobalContext) *cobra.Command {
	return newLifecycleCommand(ctx, "stop",
		"Unmount and close targets",
		`Sync and unmount the filesystem, then close the encryption layer of each
target. Targets already unmounted or closed are skipped. Without arguments
the "all" target is stopped.`)
}

func newLifecycleCommand(ctx *GlobalContext, name, short, long string) *cobra.Command {
	cmd := &LifecycleCommand{ctx: ctx}

	return &cobra.Command{
		Use:   name + " [target...]",
		Short: short,
		Long:  long,
		RunE:  cmd.Run,
	}
}

// Run executes the command
func (c *LifecycleCommand) Run(cmd *cobra.Command, args []string) error {
	command, err := lifecycle.ParseCommand(cmd.Name())
	if err != nil {
		return err
	}

	if err := system.RequireRoot(); err != nil {
		return err
	}

	registry, err := c.ctx.LoadRegistry()
	if err != nil {
		return err
	}

	dispatcher := c.ctx.NewDispatcher(registry)
	ops, err := dispatcher.Plan(args)
	if err != nil {
		return err
	}

	if err := c.ctx.CheckDependencies(lifecycle.RequiredCommands(command, ops)); err != nil {
		return err
	}

	lock, err := system.AcquireLock(c.ctx.Settings.LockFile)
	if err != nil {
		return err
	}
	defer lock.Release()
	c.ctx.Logger.Debug("holding lock %s", lock.Path())

	if err := dispatcher.Run(cmd.Context(), command, args); err != nil {
		return err
	}

	if c.ctx.Executor.DryRun() {
		c.ctx.Logger.Info("dry run complete, no changes were made")
	}
	return nil
}
