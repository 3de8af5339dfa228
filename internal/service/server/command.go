package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"

	"github.com/mitchellh/go-ps"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	thermalapi "github.com/oshokin/thermal-sentinel/internal/api/grpc/thermal"
	"github.com/oshokin/thermal-sentinel/internal/api/web"
	"github.com/oshokin/thermal-sentinel/internal/config"
	"github.com/oshokin/thermal-sentinel/internal/indicator"
	"github.com/oshokin/thermal-sentinel/internal/logger"
	"github.com/oshokin/thermal-sentinel/internal/node"
	"github.com/oshokin/thermal-sentinel/internal/sensor"
	"github.com/oshokin/thermal-sentinel/internal/snapshot"
	"github.com/oshokin/thermal-sentinel/internal/telemetry"
	"github.com/oshokin/thermal-sentinel/internal/version"
)

// Options controls the thermal-node process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// HTTPAddress overrides the web listen address from the config.
	HTTPAddress string
	// GRPCAddress overrides the gRPC listen address from the config.
	GRPCAddress string
	// LogLevel overrides the log level from the config.
	LogLevel string
	// SkipInstanceCheck allows several nodes on one host, e.g. in tests.
	SkipInstanceCheck bool
}

// Run starts the loop and both servers and blocks until ctx is canceled or
// one of them fails. A sensor that cannot be opened is fatal.
//
//nolint:funlen // Startup reads best as one sequence.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "thermal-node")

	cfg, err := loadSettings(opts)
	if err != nil {
		return err
	}

	if err = logger.SetLevelString(cfg.LogLevel); err != nil {
		return fmt.Errorf("set log level: %w", err)
	}

	if !opts.SkipInstanceCheck {
		if err = ensureSingleInstance(ps.Processes, os.Getpid(), currentExecutable()); err != nil {
			return err
		}
	}

	source, err := sensor.Open(ctx, cfg.Sensor)
	if err != nil {
		return fmt.Errorf("open sensor: %w", err)
	}

	defer func() {
		if closeErr := source.Close(); closeErr != nil {
			logger.WarnKV(ctx, "Close sensor", "error", closeErr)
		}
	}()

	publisher := snapshot.NewPublisher()
	loopOptions := []node.Option{node.WithTickInterval(cfg.TickInterval)}

	if cfg.Telemetry.Enabled() {
		sink, dialErr := telemetry.Dial(ctx, cfg.Telemetry, cfg.Timeout)
		if dialErr != nil {
			// The node is useful without telemetry; keep sampling.
			logger.WarnKV(ctx, "Telemetry disabled", "error", dialErr)
		} else {
			defer sink.Close()

			loopOptions = append(loopOptions, node.WithTelemetry(sink))
		}
	}

	loop := node.New(source, indicator.NewPins(signalContext(ctx, cfg.SignalLogLevel)), publisher, loopOptions...)
	svc := newService(publisher, loop)

	lc := net.ListenConfig{}

	grpcListener, err := lc.Listen(ctx, "tcp", cfg.GRPCAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.GRPCAddress, err)
	}

	httpListener, err := lc.Listen(ctx, "tcp", cfg.HTTPAddress)
	if err != nil {
		_ = grpcListener.Close()

		return fmt.Errorf("listen on %s: %w", cfg.HTTPAddress, err)
	}

	grpcServer := grpc.NewServer()
	thermalapi.RegisterThermalServiceServer(grpcServer, thermalapi.NewServer(svc))

	httpServer := &http.Server{
		Handler:           web.NewHandler(svc),
		ReadHeaderTimeout: cfg.Timeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	logger.InfoKV(ctx, version.Banner("thermal-node")+" listening",
		"grpc_address", grpcListener.Addr().String(),
		"http_address", httpListener.Addr().String(),
		"sensor", cfg.Sensor.Kind,
	)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return loop.Run(groupCtx)
	})

	group.Go(func() error {
		if serveErr := grpcServer.Serve(grpcListener); serveErr != nil && !errors.Is(serveErr, grpc.ErrServerStopped) {
			return fmt.Errorf("serve gRPC: %w", serveErr)
		}

		return nil
	})

	group.Go(func() error {
		if serveErr := httpServer.Serve(httpListener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			return fmt.Errorf("serve HTTP: %w", serveErr)
		}

		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info(ctx, "Shutting down servers")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Timeout)
		defer cancel()

		grpcServer.GracefulStop()

		return httpServer.Shutdown(shutdownCtx)
	})

	if err = group.Wait(); err != nil {
		return err
	}

	logger.Info(ctx, "Thermal node stopped")

	return nil
}

// loadSettings reads the config file and applies command-line overrides.
func loadSettings(opts *Options) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	if opts.HTTPAddress != "" {
		cfg.HTTPAddress = opts.HTTPAddress
	}

	if opts.GRPCAddress != "" {
		cfg.GRPCAddress = opts.GRPCAddress
	}

	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	if err = config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate settings: %w", err)
	}

	return cfg, nil
}

// signalContext pins the signal-edge logger to its own level.
func signalContext(ctx context.Context, level string) context.Context {
	lvl, ok := logger.ParseLogLevel(level)
	if !ok {
		return ctx
	}

	return logger.ToContext(ctx, logger.FromContext(ctx).WithOptions(logger.WithLevel(lvl)))
}
