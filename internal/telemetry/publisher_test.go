package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/thermal-sentinel/internal/domain/alarm"
	"github.com/oshokin/thermal-sentinel/internal/domain/thermal"
	"github.com/oshokin/thermal-sentinel/internal/indicator"
	"github.com/oshokin/thermal-sentinel/internal/sensor"
)

var errTestBroker = errors.New("broker refused")

// fakeToken is a paho token that completes when done is closed.
type fakeToken struct {
	done chan struct{}
	err  error
}

func completedToken(err error) *fakeToken {
	t := &fakeToken{done: make(chan struct{}), err: err}
	close(t.done)

	return t
}

func (t *fakeToken) Wait() bool {
	<-t.done

	return true
}

func (t *fakeToken) WaitTimeout(d time.Duration) bool {
	select {
	case <-t.done:
		return true
	case <-time.After(d):
		return false
	}
}

func (t *fakeToken) Done() <-chan struct{} { return t.done }

func (t *fakeToken) Error() error { return t.err }

type message struct {
	topic   string
	payload []byte
}

// fakeClient records publications; methods it does not override panic.
// When block is set, Publish waits on it before returning.
type fakeClient struct {
	mqtt.Client

	block chan struct{}

	mu           sync.Mutex
	messages     []message
	disconnected uint
}

func (c *fakeClient) Publish(topic string, _ byte, _ bool, payload any) mqtt.Token {
	c.mu.Lock()
	c.messages = append(c.messages, message{topic: topic, payload: payload.([]byte)})
	c.mu.Unlock()

	if c.block != nil {
		<-c.block
	}

	return completedToken(nil)
}

func (c *fakeClient) Disconnect(quiesce uint) {
	c.mu.Lock()
	c.disconnected = quiesce
	c.mu.Unlock()
}

func (c *fakeClient) published() []message {
	c.mu.Lock()
	defer c.mu.Unlock()

	return slices.Clone(c.messages)
}

func decode(t *testing.T, payload []byte) map[string]any {
	t.Helper()

	var doc map[string]any
	require.NoError(t, json.Unmarshal(payload, &doc))

	return doc
}

// TestPublisher_Sample checks topic and payload of a sample.
func TestPublisher_Sample(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		client := new(fakeClient)
		p := newPublisher(context.Background(), client, "lab", 4)
		p.now = func() time.Time { return time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC) }

		defer p.Close()

		p.PublishSample(context.Background(), sensor.Update{
			Stats:     thermal.Stats{Average: 22.04, Maximum: 55, Minimum: 22},
			Mode:      indicator.ModeAlarm,
			Triggered: true,
			At:        1500 * time.Millisecond,
		})

		synctest.Wait()

		messages := client.published()
		require.Len(t, messages, 1)
		require.Equal(t, "lab/stats", messages[0].topic)

		doc := decode(t, messages[0].payload)
		require.Equal(t, "alarm", doc["mode"])
		require.Equal(t, true, doc["triggered"])
		require.InDelta(t, 1500.0, doc["uptime_ms"], 0)
		require.Equal(t, "2026-10-18T09:30:00Z", doc["published_at"])
		require.InDelta(t, 22.0, doc["stats"].(map[string]any)["average"], 0)
	})
}

// TestPublisher_Alarm checks the event payload and Close.
func TestPublisher_Alarm(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		client := new(fakeClient)
		p := newPublisher(context.Background(), client, "lab", 4)

		p.PublishAlarm(context.Background(), alarm.Event{Kind: alarm.EventCompleted, At: 3 * time.Second, Steps: 20})
		synctest.Wait()

		p.Close()
		p.Close()

		messages := client.published()
		require.Len(t, messages, 1)
		require.Equal(t, "lab/alarm", messages[0].topic)

		doc := decode(t, messages[0].payload)
		require.Equal(t, "completed", doc["event"])
		require.InDelta(t, 20.0, doc["steps"], 0)

		client.mu.Lock()
		defer client.mu.Unlock()

		require.Equal(t, uint(disconnectQuiesce), client.disconnected)
	})
}

// TestPublisher_StalledBroker keeps publishing calls instant while the client
// is stuck, and drops what does not fit in the queue.
func TestPublisher_StalledBroker(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		const size = 3

		client := &fakeClient{block: make(chan struct{})}
		p := newPublisher(context.Background(), client, "lab", size)
		ctx := context.Background()
		start := time.Now()

		// The worker takes the first message and hangs inside Publish.
		p.PublishSample(ctx, sensor.Update{})
		synctest.Wait()
		require.Len(t, client.published(), 1)

		for range size + 2 {
			p.PublishAlarm(ctx, alarm.Event{Kind: alarm.EventTriggered})
		}

		// No fake time passed: none of the calls waited on the client.
		require.Equal(t, start, time.Now())
		require.Equal(t, uint64(2), p.Dropped())

		close(client.block)
		synctest.Wait()

		require.Len(t, client.published(), 1+size)

		p.Close()
	})
}

// TestAwait covers the three ways a connect wait ends.
func TestAwait(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, await(context.Background(), completedToken(errTestBroker), time.Second), errTestBroker)

	synctest.Test(t, func(t *testing.T) {
		pending := &fakeToken{done: make(chan struct{})}

		require.ErrorIs(t, await(context.Background(), pending, time.Second), errConnectTimeout)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		require.ErrorIs(t, await(ctx, pending, time.Second), context.Canceled)
	})
}
