package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nace/disksetup/internal/target"
	"github.com/nace/disksetup/internal/ui"
)

// CheckCommand validates the configuration and prints what would be done
type CheckCommand struct {
	ctx *GlobalContext
}

// NewCheckCommand creates the check command
func NewCheckCommand(ctx *GlobalContext) *cobra.Command {
	cmd := &CheckCommand{ctx: ctx}

	return &cobra.Command{
		Use:   "check [target...]",
		Short: "Validate the configuration and show the resolved plan",
		Long: `Load and validate the target configuration, then list the leaf targets
the given targets expand to, in processing order. Nothing is inspected or
changed, and root is not required.`,
		RunE: cmd.Run,
	}
}

// Run executes the check command
func (c *CheckCommand) Run(cmd *cobra.Command, args []string) error {
	registry, err := c.ctx.LoadRegistry()
	if err != nil {
		return err
	}

	ops, err := c.ctx.NewDispatcher(registry).Plan(args)
	if err != nil {
		return err
	}

	c.ctx.Logger.Success("%s: %d target(s) defined", c.ctx.Settings.File, registry.Len())
	if len(ops) == 0 {
		c.ctx.Logger.Info("nothing to do")
		return nil
	}

	planTable(ops).Print(cmd.OutOrStdout())
	return nil
}

func planTable(ops []target.Operation) *ui.Table {
	table := ui.NewTable("#", "TARGET", "VIA", "CRYPT", "MOUNT", "OPTIONS")

	for i, op := range ops {
		leaf := op.Leaf

		crypt := "-"
		if leaf.Crypt != nil {
			crypt = leaf.Crypt.Name
			if leaf.Crypt.Device != "" {
				crypt += " <- " + leaf.Crypt.Device
			} else {
				crypt += " (crypttab)"
			}
		}

		mount := "-"
		if leaf.HasMountLayer() {
			dir := leaf.MountDir()
			if dir == "" {
				dir = "(fstab)"
			}
			mount = leaf.MountDevice() + " -> " + dir
		}

		table.AddRow(fmt.Sprint(i+1), leaf.ID(), op.Via(), crypt, mount, dash(leaf.Options.String()))
	}

	return table
}
