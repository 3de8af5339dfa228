package node

import (
	"context"
	"errors"
	"time"

	"github.com/oshokin/thermal-sentinel/internal/domain/alarm"
	"github.com/oshokin/thermal-sentinel/internal/indicator"
	"github.com/oshokin/thermal-sentinel/internal/logger"
	"github.com/oshokin/thermal-sentinel/internal/sensor"
	"github.com/oshokin/thermal-sentinel/internal/snapshot"
)

// Command is a manual request for the alarm controller.
type Command uint8

const (
	// CommandTrigger starts the alarm as a threshold crossing would.
	CommandTrigger Command = iota + 1
	// CommandStop silences a running alarm.
	CommandStop
)

// String returns the lower-case command name.
func (c Command) String() string {
	switch c {
	case CommandTrigger:
		return "trigger"
	case CommandStop:
		return "stop"
	default:
		return "unknown"
	}
}

// Request is a queued command with its origin.
type Request struct {
	Command Command
	Actor   *alarm.Actor
}

// Telemetry receives samples and alarm events. Calls happen on the loop
// goroutine and must not block.
type Telemetry interface {
	PublishSample(ctx context.Context, update sensor.Update)
	PublishAlarm(ctx context.Context, event alarm.Event)
}

const (
	// DefaultQueueSize bounds pending manual requests.
	DefaultQueueSize = 16
	// DefaultTickInterval is the loop period when none is configured.
	DefaultTickInterval = 5 * time.Millisecond
)

// ErrQueueFull is returned by Submit when the loop is not keeping up.
var ErrQueueFull = errors.New("request queue is full")

// Loop is the cooperative scheduler of the node.
type Loop struct {
	reader    *sensor.Reader
	alarm     *alarm.Controller
	publisher *snapshot.Publisher
	telemetry Telemetry

	requests chan Request
	tick     time.Duration
	queue    int

	// pending collects alarm events raised inside a step.
	pending []alarm.Event
	// mode is the last published indicator mode.
	mode indicator.Mode
	// sampled is false until the first successful sample.
	sampled bool
}

// Option configures a Loop.
type Option func(*Loop)

// WithTelemetry forwards samples and alarm events to t.
func WithTelemetry(t Telemetry) Option {
	return func(l *Loop) {
		l.telemetry = t
	}
}

// WithTickInterval sets the loop period used by Run.
func WithTickInterval(d time.Duration) Option {
	return func(l *Loop) {
		if d > 0 {
			l.tick = d
		}
	}
}

// WithQueueSize bounds the number of pending manual requests.
func WithQueueSize(n int) Option {
	return func(l *Loop) {
		if n > 0 {
			l.queue = n
		}
	}
}

// New builds the core around a ready source and an output signal bank.
func New(source sensor.Source, out indicator.Output, publisher *snapshot.Publisher, opts ...Option) *Loop {
	l := &Loop{
		publisher: publisher,
		tick:      DefaultTickInterval,
		queue:     DefaultQueueSize,
	}

	for _, opt := range opts {
		opt(l)
	}

	l.requests = make(chan Request, l.queue)
	l.alarm = alarm.NewController(out, alarm.WithObserver(l.collect))
	l.reader = sensor.NewReader(source,
		sensor.WithIndicator(indicator.NewPolicy(out, l.alarm)),
		sensor.WithAlarm(l.alarm),
		sensor.WithSink(publisher),
	)

	return l
}

// Submit queues a manual request for the next step. It never blocks.
func (l *Loop) Submit(req Request) error {
	select {
	case l.requests <- req:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run steps the loop every tick until ctx is canceled, then silences any
// running alarm. now is measured on the monotonic clock from the start of Run.
func (l *Loop) Run(ctx context.Context) error {
	ctx = logger.WithName(ctx, "loop")

	ticker := time.NewTicker(l.tick)
	defer ticker.Stop()

	start := time.Now()

	logger.InfoKV(ctx, "Loop started", "tick", l.tick.String())
	l.Step(ctx, 0)

	for {
		select {
		case <-ctx.Done():
			if l.alarm.Stop() {
				l.publisher.SetAlarm(l.alarm.State())
				l.flush(ctx)
			}

			logger.Info(ctx, "Loop stopped")

			return nil
		case <-ticker.C:
			l.Step(ctx, time.Since(start))
		}
	}
}

// Step runs one tick at loop time now.
func (l *Loop) Step(ctx context.Context, now time.Duration) {
	l.serveRequests(ctx, now)
	l.alarm.Tick(now)

	update, err := l.reader.Sample(now)

	switch {
	case err == nil:
		l.onSample(ctx, update)
	case errors.Is(err, sensor.ErrNotDue):
	default:
		logger.WarnKV(ctx, "Read failed", "error", err)
	}

	l.publisher.SetAlarm(l.alarm.State())
	l.flush(ctx)
}

// serveRequests drains the queue without waiting.
func (l *Loop) serveRequests(ctx context.Context, now time.Duration) {
	for {
		select {
		case req := <-l.requests:
			l.apply(ctx, req, now)
		default:
			return
		}
	}
}

func (l *Loop) apply(ctx context.Context, req Request, now time.Duration) {
	var changed bool

	switch req.Command {
	case CommandTrigger:
		changed = l.alarm.Trigger(now)
	case CommandStop:
		changed = l.alarm.Stop()
	default:
		logger.WarnKV(ctx, "Unknown request ignored", "command", req.Command)
		return
	}

	logger.InfoKV(ctx, "Manual request", "command", req.Command.String(), "actor", req.Actor.String(), "changed", changed)
}

func (l *Loop) onSample(ctx context.Context, update sensor.Update) {
	logger.DebugKV(ctx, update.Stats.String(), "mode", update.Mode.String())

	if !l.sampled || update.Mode != l.mode {
		logger.InfoKV(ctx, "Indicator mode", "mode", update.Mode.String(), "max", update.Stats.Maximum)
	}

	l.sampled = true
	l.mode = update.Mode
	l.publisher.SetMode(update.Mode)

	if l.telemetry != nil {
		l.telemetry.PublishSample(ctx, update)
	}
}

// collect is the alarm observer; events are reported once the step is done.
func (l *Loop) collect(event alarm.Event) {
	l.pending = append(l.pending, event)
}

func (l *Loop) flush(ctx context.Context) {
	for _, event := range l.pending {
		logger.InfoKV(ctx, "Alarm "+event.Kind.String(), "at", event.At.String(), "steps", event.Steps)

		if l.telemetry != nil {
			l.telemetry.PublishAlarm(ctx, event)
		}
	}

	l.pending = l.pending[:0]
}
