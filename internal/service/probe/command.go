package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/thermal-sentinel/internal/config"
	"github.com/oshokin/thermal-sentinel/internal/domain/alarm"
	"github.com/oshokin/thermal-sentinel/internal/domain/thermal"
	"github.com/oshokin/thermal-sentinel/internal/logger"
	"github.com/oshokin/thermal-sentinel/internal/service/common"
)

// Action selects what the probe does.
type Action string

// Supported actions.
const (
	ActionStats   Action = "stats"
	ActionFrame   Action = "frame"
	ActionHealth  Action = "health"
	ActionTrigger Action = "trigger"
	ActionStop    Action = "stop"
)

// Options configures a single probe run.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// ServerAddress overrides the node gRPC address from config when specified.
	ServerAddress string
	// Action is the operation to perform.
	Action Action
	// Out receives the human-readable result.
	Out io.Writer
}

// retryInterval is the delay between attempts when the node queue is full.
const retryInterval = 200 * time.Millisecond

// errUnknownAction is returned for an unsupported action.
var errUnknownAction = errors.New("unknown action")

// Run connects to the node, performs the action and prints the result.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "thermal-probe")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	address := cfg.GRPCAddress
	if opts.ServerAddress != "" {
		address = opts.ServerAddress
	}

	address = dialAddress(address)

	client, err := common.Dial(ctx, address, common.WithCallTimeout(cfg.Timeout))
	if err != nil {
		return err
	}

	defer func() {
		_ = client.Close()
	}()

	logger.DebugKV(ctx, "Probing node", "address", address, "action", string(opts.Action))

	return perform(ctx, client, opts.Action, opts.Out)
}

// nodeClient is the subset of common.Client used by the probe.
type nodeClient interface {
	GetFrame(ctx context.Context) (thermal.Frame, error)
	GetStats(ctx context.Context) (thermal.Stats, error)
	GetHealth(ctx context.Context) (*structpb.Struct, error)
	TriggerAlarm(ctx context.Context, actor *alarm.Actor) (*structpb.Struct, error)
	StopAlarm(ctx context.Context, actor *alarm.Actor) (*structpb.Struct, error)
}

func perform(ctx context.Context, client nodeClient, action Action, out io.Writer) error {
	switch action {
	case ActionStats:
		stats, err := client.GetStats(ctx)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(out, stats.String())

		return err
	case ActionFrame:
		frame, err := client.GetFrame(ctx)
		if err != nil {
			return err
		}

		_, err = io.WriteString(out, formatGrid(&frame))

		return err
	case ActionHealth:
		health, err := client.GetHealth(ctx)
		if err != nil {
			return err
		}

		return printJSON(out, health)
	case ActionTrigger:
		return command(ctx, client.TriggerAlarm, out)
	case ActionStop:
		return command(ctx, client.StopAlarm, out)
	default:
		return fmt.Errorf("%w: %q", errUnknownAction, action)
	}
}

// command sends an alarm request, retrying while the node queue is full.
func command(
	ctx context.Context,
	send func(context.Context, *alarm.Actor) (*structpb.Struct, error),
	out io.Writer,
) error {
	actor, err := common.DetectActor()
	if err != nil {
		return err
	}

	for {
		resp, sendErr := send(ctx, actor)

		switch {
		case sendErr == nil:
			return printJSON(out, resp)
		case status.Code(sendErr) != codes.ResourceExhausted:
			return sendErr
		}

		logger.WarnKV(ctx, "Node is busy, retrying", "error", sendErr)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryInterval):
		}
	}
}

// formatGrid renders the frame as 24 lines of 32 values.
func formatGrid(frame *thermal.Frame) string {
	var b strings.Builder

	for y := range thermal.Rows {
		for x := range thermal.Columns {
			if x > 0 {
				b.WriteByte(' ')
			}

			fmt.Fprintf(&b, "%5.1f", frame.At(x, y))
		}

		b.WriteByte('\n')
	}

	return b.String()
}

func printJSON(out io.Writer, msg *structpb.Struct) error {
	body, err := protojson.MarshalOptions{Multiline: true}.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	_, err = fmt.Fprintln(out, string(body))

	return err
}

// dialAddress turns a listen address into one a client can dial.
func dialAddress(address string) string {
	host, port, err := net.SplitHostPort(address)
	if err != nil {
		return address
	}

	switch host {
	case "", "0.0.0.0", "::":
		return net.JoinHostPort("127.0.0.1", port)
	default:
		return address
	}
}
