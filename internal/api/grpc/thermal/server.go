package thermal

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/thermal-sentinel/internal/api/wire"
	"github.com/oshokin/thermal-sentinel/internal/domain/alarm"
	domain "github.com/oshokin/thermal-sentinel/internal/domain/thermal"
	"github.com/oshokin/thermal-sentinel/internal/node"
	"github.com/oshokin/thermal-sentinel/internal/snapshot"
)

// Metadata keys carrying the caller identity of alarm commands.
const (
	MetadataHostname = "x-actor-hostname"
	MetadataUsername = "x-actor-username"
)

// Service abstracts the node operations the transport layer depends on.
type Service interface {
	Frame(ctx context.Context) domain.Frame
	Stats(ctx context.Context) domain.Stats
	Health(ctx context.Context) (snapshot.Health, snapshot.Status)
	TriggerAlarm(ctx context.Context, actor *alarm.Actor) error
	StopAlarm(ctx context.Context, actor *alarm.Actor) error
}

// Server implements the ThermalService gRPC API.
type Server struct {
	// service provides the node state and accepts alarm commands.
	service Service
}

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// GetFrame returns the latest frame as 768 numbers, row-major.
func (s *Server) GetFrame(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	frame := s.service.Frame(ctx)

	return wire.FrameList(&frame), nil
}

// GetStats returns the latest statistics.
func (s *Server) GetStats(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return wire.StatsStruct(s.service.Stats(ctx)), nil
}

// GetHealth reports sampling health, indicator mode and alarm state.
func (s *Server) GetHealth(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return wire.HealthStruct(s.service.Health(ctx)), nil
}

// TriggerAlarm queues a manual alarm start. The reply carries the alarm state
// observed before the request is applied, under "alarm_before".
func (s *Server) TriggerAlarm(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return s.command(ctx, s.service.TriggerAlarm)
}

// StopAlarm queues a manual alarm stop. Like TriggerAlarm it replies with the
// alarm state observed before the loop drains the request.
func (s *Server) StopAlarm(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return s.command(ctx, s.service.StopAlarm)
}

func (s *Server) command(
	ctx context.Context,
	submit func(context.Context, *alarm.Actor) error,
) (*structpb.Struct, error) {
	_, before := s.service.Health(ctx)

	err := submit(ctx, actorFromContext(ctx))

	switch {
	case err == nil:
	case errors.Is(err, node.ErrQueueFull):
		return nil, status.Error(codes.ResourceExhausted, err.Error())
	default:
		return nil, status.Error(codes.Internal, "unable to queue request")
	}

	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"accepted":     structpb.NewBoolValue(true),
		"alarm_before": structpb.NewStructValue(wire.AlarmStruct(before.Alarm)),
	}}, nil
}

// actorFromContext reads the caller identity from incoming metadata.
// It returns nil when the caller did not identify itself.
func actorFromContext(ctx context.Context) *alarm.Actor {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil
	}

	actor := &alarm.Actor{
		Hostname: first(md.Get(MetadataHostname)),
		Username: first(md.Get(MetadataUsername)),
	}

	if actor.Hostname == "" && actor.Username == "" {
		return nil
	}

	return actor
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}

	return values[0]
}
