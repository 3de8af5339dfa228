package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/thermal-sentinel/internal/config"
	"github.com/oshokin/thermal-sentinel/internal/service/probe"
	"github.com/oshokin/thermal-sentinel/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// serverAddress overrides the node address from the configuration.
	serverAddress string

	// rootCmd represents the base command of the probe.
	rootCmd = &cobra.Command{
		Use:   "thermal-probe",
		Short: "Query a thermal node and control its alarm.",
		Long: `Connects to a running thermal-node over gRPC.

The node address is taken from grpc_addr in the configuration file unless
--server is given; a port-only address is dialed on 127.0.0.1.
Alarm commands carry the local hostname and user for the node's log.`,
	}
)

// actions lists the subcommands and what they do.
//
//nolint:gochecknoglobals // Static table of subcommands.
var actions = []struct {
	action probe.Action
	short  string
}{
	{probe.ActionStats, "Print average, maximum and minimum temperature."},
	{probe.ActionFrame, "Print the latest frame as a 32x24 grid."},
	{probe.ActionHealth, "Print sampling health, indicator mode and alarm state."},
	{probe.ActionTrigger, "Start the alarm blink sequence."},
	{probe.ActionStop, "Silence a running alarm."},
}

// Execute runs the thermal-probe CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newActionCommand(action probe.Action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(action),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &probe.Options{
				ConfigPath:    configPath,
				ServerAddress: serverAddress,
				Action:        action,
				Out:           cmd.OutOrStdout(),
			}

			return probe.Run(ctx, options)
		},
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "path to configuration file (default "+config.DefaultConfigFilename+")")
	flags.StringVarP(&serverAddress, "server", "s", "", "node gRPC address, overrides grpc_addr")

	for _, a := range actions {
		rootCmd.AddCommand(newActionCommand(a.action, a.short))
	}
}
