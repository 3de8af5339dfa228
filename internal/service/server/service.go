package server

import (
	"context"
	"fmt"

	"github.com/oshokin/thermal-sentinel/internal/domain/alarm"
	"github.com/oshokin/thermal-sentinel/internal/domain/thermal"
	"github.com/oshokin/thermal-sentinel/internal/logger"
	"github.com/oshokin/thermal-sentinel/internal/node"
	"github.com/oshokin/thermal-sentinel/internal/snapshot"
)

// submitter accepts manual alarm requests; implemented by node.Loop.
type submitter interface {
	Submit(req node.Request) error
}

// service bridges the transports to the core: reads go to the publisher,
// commands to the loop queue. It is safe for concurrent use.
type service struct {
	// publisher holds the latest published snapshot.
	publisher *snapshot.Publisher
	// loop accepts manual alarm requests.
	loop submitter
}

// newService creates a service over the provided publisher and loop.
func newService(publisher *snapshot.Publisher, loop submitter) *service {
	return &service{
		publisher: publisher,
		loop:      loop,
	}
}

// Frame returns the latest frame.
func (s *service) Frame(context.Context) thermal.Frame {
	return s.publisher.ReadFrame()
}

// Stats returns the latest statistics.
func (s *service) Stats(context.Context) thermal.Stats {
	return s.publisher.ReadStats()
}

// Health returns the sampling health and the node status.
func (s *service) Health(context.Context) (snapshot.Health, snapshot.Status) {
	snap := s.publisher.Read()

	return snap.Health, snap.Status
}

// Snapshot returns everything published at once.
func (s *service) Snapshot(context.Context) snapshot.Snapshot {
	return s.publisher.Read()
}

// TriggerAlarm queues a manual alarm start.
func (s *service) TriggerAlarm(ctx context.Context, actor *alarm.Actor) error {
	return s.submit(ctx, node.CommandTrigger, actor)
}

// StopAlarm queues a manual alarm stop.
func (s *service) StopAlarm(ctx context.Context, actor *alarm.Actor) error {
	return s.submit(ctx, node.CommandStop, actor)
}

func (s *service) submit(ctx context.Context, command node.Command, actor *alarm.Actor) error {
	req := node.Request{
		Command: command,
		Actor:   actor.Clone(),
	}

	if err := s.loop.Submit(req); err != nil {
		logger.WarnKV(ctx, "Alarm request rejected", "command", command.String(), "actor", actor.String(), "error", err)

		return fmt.Errorf("submit %s: %w", command, err)
	}

	logger.InfoKV(ctx, "Alarm request queued", "command", command.String(), "actor", actor.String())

	return nil
}
