package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/thermal-sentinel/internal/config"
	"github.com/oshokin/thermal-sentinel/internal/service/server"
	"github.com/oshokin/thermal-sentinel/internal/version"
)

var (
	// options collects the flag values passed to server.Run.
	options server.Options

	// rootCmd represents the base command for running the node.
	rootCmd = &cobra.Command{
		Use:   "thermal-node",
		Short: "Run the thermal sensor node.",
		Long: `Samples a 32x24 thermal sensor every 500ms, drives the three-color indicator
and the alarm transducer, and serves the latest frame and statistics.

The heat-map page, /frame, /stats, /health and /snapshot.json are served over
HTTP; ThermalService is served over gRPC. A maximum temperature of 50C or more
starts the alarm blink sequence. Listen addresses from the configuration file
can be overridden with flags.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return server.Run(ctx, &options)
		},
	}
)

// Execute runs the thermal-node CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&options.ConfigPath, "config", "c", "", "path to configuration file (default "+config.DefaultConfigFilename+")")
	flags.StringVar(&options.HTTPAddress, "http", "", "HTTP listen address, overrides http_addr")
	flags.StringVar(&options.GRPCAddress, "grpc", "", "gRPC listen address, overrides grpc_addr")
	flags.StringVarP(&options.LogLevel, "log-level", "l", "", "log level: debug, info, warn or error")
	flags.BoolVar(&options.SkipInstanceCheck, "allow-multiple", false, "skip the single-instance check")
}
