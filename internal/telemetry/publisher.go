package telemetry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/thermal-sentinel/internal/api/wire"
	"github.com/oshokin/thermal-sentinel/internal/config"
	"github.com/oshokin/thermal-sentinel/internal/domain/alarm"
	"github.com/oshokin/thermal-sentinel/internal/logger"
	"github.com/oshokin/thermal-sentinel/internal/sensor"
)

// Topic suffixes appended to the configured prefix.
const (
	TopicStats = "stats"
	TopicAlarm = "alarm"
)

const (
	// qosAtMostOnce drops messages rather than queueing them while offline.
	qosAtMostOnce byte = 0
	// disconnectQuiesce is the time given to in-flight work on Close, in ms.
	disconnectQuiesce = 250
)

// DefaultQueueSize bounds the messages waiting for a slow broker.
const DefaultQueueSize = 64

// errConnectTimeout is returned when the broker does not answer in time.
var errConnectTimeout = errors.New("mqtt connect timed out")

// Publisher sends node telemetry to MQTT. Publish calls only enqueue; a
// single worker goroutine talks to the client, so a stalled broker never
// reaches the loop. Messages that do not fit in the queue are dropped.
type Publisher struct {
	//nolint:containedctx // The worker logs with the node's logger.
	ctx context.Context

	// client is the connected paho client.
	client mqtt.Client
	// topic is the prefix of all published topics.
	topic string
	// now stamps payloads with wall-clock time.
	now func() time.Time

	// queue holds encoded messages waiting for the worker.
	queue chan outbound
	// done is closed by Close to stop the worker.
	done      chan struct{}
	closeOnce sync.Once
	// dropped counts messages discarded because the queue was full.
	dropped atomic.Uint64
}

// outbound is one encoded message.
type outbound struct {
	topic   string
	payload []byte
}

// Dial connects to the configured broker and waits at most timeout for the handshake.
func Dial(ctx context.Context, cfg config.Telemetry, timeout time.Duration) (*Publisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	opts.SetConnectTimeout(timeout)
	opts.SetWriteTimeout(timeout)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.WarnKV(ctx, "MQTT connection lost", "error", err)
	})

	client := mqtt.NewClient(opts)

	if err := await(ctx, client.Connect(), timeout); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.Broker, err)
	}

	logger.InfoKV(ctx, "Telemetry connected", "broker", cfg.Broker, "topic", cfg.Topic)

	return newPublisher(ctx, client, cfg.Topic, DefaultQueueSize), nil
}

// newPublisher starts the worker draining a queue of size messages.
func newPublisher(ctx context.Context, client mqtt.Client, topic string, size int) *Publisher {
	p := &Publisher{
		ctx:    logger.WithName(ctx, "telemetry"),
		client: client,
		topic:  topic,
		now:    time.Now,
		queue:  make(chan outbound, size),
		done:   make(chan struct{}),
	}

	go p.run()

	return p
}

// PublishSample queues the statistics of a successful sample.
func (p *Publisher) PublishSample(ctx context.Context, update sensor.Update) {
	p.enqueue(ctx, TopicStats, &structpb.Struct{Fields: map[string]*structpb.Value{
		"stats":        structpb.NewStructValue(wire.StatsStruct(update.Stats)),
		"mode":         structpb.NewStringValue(update.Mode.String()),
		"triggered":    structpb.NewBoolValue(update.Triggered),
		"uptime_ms":    structpb.NewNumberValue(float64(update.At.Milliseconds())),
		"published_at": structpb.NewStringValue(p.now().UTC().Format(time.RFC3339Nano)),
	}})
}

// PublishAlarm queues an alarm lifecycle event.
func (p *Publisher) PublishAlarm(ctx context.Context, event alarm.Event) {
	p.enqueue(ctx, TopicAlarm, &structpb.Struct{Fields: map[string]*structpb.Value{
		"event":        structpb.NewStringValue(event.Kind.String()),
		"steps":        structpb.NewNumberValue(float64(event.Steps)),
		"uptime_ms":    structpb.NewNumberValue(float64(event.At.Milliseconds())),
		"published_at": structpb.NewStringValue(p.now().UTC().Format(time.RFC3339Nano)),
	}})
}

// Dropped returns the number of messages discarded on a full queue.
func (p *Publisher) Dropped() uint64 {
	return p.dropped.Load()
}

// Close stops the worker and disconnects from the broker. Queued messages
// that were not handed to the client yet are discarded.
func (p *Publisher) Close() {
	p.closeOnce.Do(func() {
		close(p.done)
		p.client.Disconnect(disconnectQuiesce)
	})
}

func (p *Publisher) enqueue(ctx context.Context, suffix string, msg *structpb.Struct) {
	payload, err := protojson.Marshal(msg)
	if err != nil {
		logger.WarnKV(ctx, "Encode telemetry", "error", err)

		return
	}

	select {
	case p.queue <- outbound{topic: p.topic + "/" + suffix, payload: payload}:
	default:
		p.dropped.Add(1)
		logger.WarnKV(ctx, "Telemetry queue full, message dropped", "topic_suffix", suffix)
	}
}

// run hands queued messages to the client one at a time until Close.
func (p *Publisher) run() {
	for {
		select {
		case <-p.done:
			return
		case msg := <-p.queue:
			p.send(msg)
		}
	}
}

func (p *Publisher) send(msg outbound) {
	token := p.client.Publish(msg.topic, qosAtMostOnce, false, msg.payload)

	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			logger.WarnKV(p.ctx, "Publish telemetry", "topic", msg.topic, "error", err)
		}
	case <-p.done:
	}
}

// await waits for token, ctx or timeout, whichever comes first.
func await(ctx context.Context, token mqtt.Token, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return errConnectTimeout
	}
}
