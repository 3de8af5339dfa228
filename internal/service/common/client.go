//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	thermalapi "github.com/oshokin/thermal-sentinel/internal/api/grpc/thermal"
	"github.com/oshokin/thermal-sentinel/internal/api/wire"
	"github.com/oshokin/thermal-sentinel/internal/config"
	"github.com/oshokin/thermal-sentinel/internal/domain/alarm"
	"github.com/oshokin/thermal-sentinel/internal/domain/thermal"
)

// Client wraps the gRPC ThermalService client with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the node.
	conn *grpc.ClientConn
	// api is the ThermalService client interface.
	api thermalapi.ThermalServiceClient

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// errAddressRequired is returned when a required address value is missing.
var errAddressRequired = errors.New("address must be provided")

// Dial establishes a gRPC connection to the node.
// Note: this uses insecure transport credentials; deploy on a trusted network
// or terminate TLS in a proxy until native TLS is added.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial thermal node: %w", err)
	}

	client := &Client{
		conn:        conn,
		api:         thermalapi.NewThermalServiceClient(conn),
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// GetFrame retrieves the latest frame.
func (c *Client) GetFrame(ctx context.Context) (thermal.Frame, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.GetFrame(callCtx, new(emptypb.Empty))
	if err != nil {
		return thermal.Frame{}, fmt.Errorf("get frame: %w", err)
	}

	return wire.ListFrame(resp), nil
}

// GetStats retrieves the latest statistics.
func (c *Client) GetStats(ctx context.Context) (thermal.Stats, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.GetStats(callCtx, new(emptypb.Empty))
	if err != nil {
		return thermal.Stats{}, fmt.Errorf("get stats: %w", err)
	}

	return wire.StructStats(resp), nil
}

// GetHealth retrieves the health report as sent by the node.
func (c *Client) GetHealth(ctx context.Context) (*structpb.Struct, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.GetHealth(callCtx, new(emptypb.Empty))
	if err != nil {
		return nil, fmt.Errorf("get health: %w", err)
	}

	return resp, nil
}

// TriggerAlarm asks the node to start the alarm on behalf of actor.
func (c *Client) TriggerAlarm(ctx context.Context, actor *alarm.Actor) (*structpb.Struct, error) {
	callCtx, cancel := c.callContext(withActor(ctx, actor))
	defer cancel()

	resp, err := c.api.TriggerAlarm(callCtx, new(emptypb.Empty))
	if err != nil {
		return nil, fmt.Errorf("trigger alarm: %w", err)
	}

	return resp, nil
}

// StopAlarm asks the node to silence the alarm on behalf of actor.
func (c *Client) StopAlarm(ctx context.Context, actor *alarm.Actor) (*structpb.Struct, error) {
	callCtx, cancel := c.callContext(withActor(ctx, actor))
	defer cancel()

	resp, err := c.api.StopAlarm(callCtx, new(emptypb.Empty))
	if err != nil {
		return nil, fmt.Errorf("stop alarm: %w", err)
	}

	return resp, nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}

// withActor attaches the caller identity as outgoing metadata.
func withActor(ctx context.Context, actor *alarm.Actor) context.Context {
	if actor == nil {
		return ctx
	}

	return metadata.AppendToOutgoingContext(ctx,
		thermalapi.MetadataHostname, actor.Hostname,
		thermalapi.MetadataUsername, actor.Username,
	)
}
