package cli

import (
	"github.com/spf13/cobra"

	"github.com/nace/disksetup/internal/lifecycle"
	"github.com/nace/disksetup/internal/system"
	"github.com/nace/disksetup/internal/ui"
)

// StatusCommand handles showing target state
type StatusCommand struct {
	ctx  *GlobalContext
	json bool
}

// NewStatusCommand creates the status command
func NewStatusCommand(ctx *GlobalContext) *cobra.Command {
	cmd := &StatusCommand{ctx: ctx}

	cobraCmd := &cobra.Command{
		Use:   "status [target...]",
		Short: "Show crypt and mount state of targets",
		Long:  `Show whether the encryption layer of each target is open and where it is mounted.`,
		RunE:  cmd.Run,
	}

	cobraCmd.Flags().BoolVarP(&cmd.json, "json", "j", false, "JSON output")

	return cobraCmd
}

// Run executes the status command
func (c *StatusCommand) Run(cmd *cobra.Command, args []string) error {
	if err := system.RequireRoot(); err != nil {
		return err
	}

	registry, err := c.ctx.LoadRegistry()
	if err != nil {
		return err
	}

	statuses, err := c.ctx.NewDispatcher(registry).Status(cmd.Context(), args)
	if err != nil {
		return err
	}

	if c.json {
		return ui.PrintJSON(cmd.OutOrStdout(), statuses)
	}

	if len(statuses) == 0 {
		c.ctx.Logger.Info("no leaf targets selected")
		return nil
	}
	statusTable(statuses).Print(cmd.OutOrStdout())
	return nil
}

func statusTable(statuses []lifecycle.LeafStatus) *ui.Table {
	table := ui.NewTable("TARGET", "VIA", "CRYPT", "DEVICE", "MOUNT POINT", "OPTIONS")

	for _, st := range statuses {
		crypt := "-"
		if st.CryptName != "" {
			state := "inactive"
			if st.CryptActive {
				state = "active"
			}
			crypt = st.CryptName + " (" + state + ")"
		}

		mountPoint := "-"
		if st.Mounted {
			mountPoint = st.MountPoint
		}

		table.AddRow(st.ID, st.Via, crypt, dash(st.Device), mountPoint, dash(st.Options))
	}

	return table
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
