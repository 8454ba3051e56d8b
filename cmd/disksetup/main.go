package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nace/disksetup/internal/cli"
	"github.com/nace/disksetup/internal/config"
	"github.com/nace/disksetup/internal/system"
)

var ctx *cli.GlobalContext

func main() {
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(sigCtx)
	stop()

	if err != nil {
		ctx.Logger.Error("%v", err)
	}
	os.Exit(system.ExitCode(err))
}

var rootCmd = &cobra.Command{
	Use:   "disksetup",
	Short: "disksetup - declarative encrypted disk and mount lifecycle",
	Long: `disksetup starts and stops storage targets described in a YAML
configuration file. A target opens a dm-crypt mapping with cryptsetup or
cryptdisks_start and mounts the result; a group target names other targets
to process in order.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.Load(cmd.Root().PersistentFlags())
		if err != nil {
			return err
		}
		ctx.Configure(settings)
		return nil
	},
}

func init() {
	config.RegisterFlags(rootCmd.PersistentFlags())

	// Replaced with parsed settings in PersistentPreRunE
	ctx = cli.NewGlobalContext()

	rootCmd.AddCommand(cli.NewStartCommand(ctx))
	rootCmd.AddCommand(cli.NewStopCommand(ctx))
	rootCmd.AddCommand(cli.NewStatusCommand(ctx))
	rootCmd.AddCommand(cli.NewCheckCommand(ctx))

	rootCmd.SetHelpCommand(&cobra.Command{
		Use:    "no-help",
		Hidden: true,
	})

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
