package node

import (
	"context"
	"errors"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/thermal-sentinel/internal/domain/alarm"
	"github.com/oshokin/thermal-sentinel/internal/domain/thermal"
	"github.com/oshokin/thermal-sentinel/internal/indicator"
	"github.com/oshokin/thermal-sentinel/internal/sensor"
	"github.com/oshokin/thermal-sentinel/internal/snapshot"
)

var errTestSensor = errors.New("sensor unplugged")

// scriptedSource serves a fixed frame, or an error when err is set.
type scriptedSource struct {
	frame thermal.Frame
	err   error
}

func (s *scriptedSource) FetchFrame(dst *thermal.Frame) error {
	if s.err != nil {
		return s.err
	}

	*dst = s.frame

	return nil
}

func (s *scriptedSource) Close() error { return nil }

// recordingTelemetry keeps everything the loop publishes.
type recordingTelemetry struct {
	samples []sensor.Update
	events  []alarm.Event
}

func (r *recordingTelemetry) PublishSample(_ context.Context, u sensor.Update) {
	r.samples = append(r.samples, u)
}

func (r *recordingTelemetry) PublishAlarm(_ context.Context, e alarm.Event) {
	r.events = append(r.events, e)
}

func scene(v float64) thermal.Frame {
	var f thermal.Frame
	f.Fill(v)

	return f
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

// TestLoop_HotFrameTriggersAlarm checks the full chain from sample to published alarm state.
func TestLoop_HotFrameTriggersAlarm(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	src := &scriptedSource{frame: scene(22)}
	src.frame[0] = 55

	pins := indicator.NewPins(ctx)
	pub := snapshot.NewPublisher()
	tel := new(recordingTelemetry)
	l := New(src, pins, pub, WithTelemetry(tel))

	l.Step(ctx, 0)

	status := pub.ReadStatus()
	require.Equal(t, alarm.PhaseOn, status.Alarm.Phase)
	require.Equal(t, indicator.ModeAlarm, status.Mode)
	require.Equal(t, indicator.Levels{Red: true, Transducer: true}, pins.Levels())
	require.InDelta(t, 55.0, pub.ReadStats().Maximum, 0)

	require.Len(t, tel.samples, 1)
	require.True(t, tel.samples[0].Triggered)
	require.Len(t, tel.events, 1)
	require.Equal(t, alarm.EventTriggered, tel.events[0].Kind)

	l.Step(ctx, ms(100))
	require.Equal(t, alarm.PhaseOff, pub.ReadStatus().Alarm.Phase)
	require.Equal(t, indicator.Levels{Green: true}, pins.Levels())
}

// TestLoop_AlarmOwnsIndicator makes sure a cool sample does not stomp a running blink.
func TestLoop_AlarmOwnsIndicator(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	src := &scriptedSource{frame: scene(60)}
	pins := indicator.NewPins(ctx)
	pub := snapshot.NewPublisher()
	l := New(src, pins, pub)

	l.Step(ctx, 0)
	require.True(t, pub.ReadStatus().Alarm.Active())

	// The scene cools down while the alarm is still blinking.
	src.frame = scene(10)

	l.Step(ctx, ms(100))
	l.Step(ctx, ms(150))
	l.Step(ctx, ms(500))

	require.True(t, pub.ReadStatus().Alarm.Active())
	require.Equal(t, indicator.ModeCold, pub.ReadStatus().Mode)
	require.False(t, pins.Levels().Blue)

	// Once the sequence ends, the next sample hands the indicator back.
	now := ms(500)
	for pub.ReadStatus().Alarm.Active() {
		now += ms(150)
		l.Step(ctx, now)
	}

	require.Equal(t, indicator.Levels{}, pins.Levels())

	l.Step(ctx, now+thermal.SampleInterval)
	require.Equal(t, indicator.Levels{Blue: true}, pins.Levels())
}

// TestLoop_ManualRequests exercises the queued trigger/stop path.
func TestLoop_ManualRequests(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pins := indicator.NewPins(ctx)
	pub := snapshot.NewPublisher()
	l := New(&scriptedSource{frame: scene(25)}, pins, pub, WithQueueSize(2))

	actor := &alarm.Actor{Hostname: "bench", Username: "qa"}

	require.NoError(t, l.Submit(Request{Command: CommandTrigger, Actor: actor}))
	require.NoError(t, l.Submit(Request{Command: CommandTrigger}))
	require.ErrorIs(t, l.Submit(Request{Command: CommandStop}), ErrQueueFull)

	l.Step(ctx, 0)
	require.Equal(t, alarm.PhaseOn, pub.ReadStatus().Alarm.Phase)
	// The sample ran after the alarm took over: normal range, but no green.
	require.Equal(t, indicator.ModeNormal, pub.ReadStatus().Mode)
	require.False(t, pins.Levels().Green)

	require.NoError(t, l.Submit(Request{Command: CommandStop, Actor: actor}))
	l.Step(ctx, ms(10))

	require.False(t, pub.ReadStatus().Alarm.Active())
	require.Equal(t, indicator.Levels{}, pins.Levels())
}

// TestLoop_SensorFailure keeps the last good data and reports staleness.
func TestLoop_SensorFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	src := &scriptedSource{frame: scene(27)}
	pub := snapshot.NewPublisher()
	l := New(src, indicator.NewPins(ctx), pub)

	l.Step(ctx, 0)

	stats := pub.ReadStats()
	src.err = errTestSensor

	l.Step(ctx, thermal.SampleInterval)

	require.Equal(t, stats, pub.ReadStats())
	require.True(t, pub.ReadHealth().Stale)
	require.Contains(t, pub.ReadHealth().LastError, "sensor unplugged")
	require.False(t, pub.ReadStatus().Alarm.Active())
}

// TestLoop_Run drives the real ticker inside a synctest bubble.
func TestLoop_Run(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 4999*time.Millisecond)
		defer cancel()

		src := &scriptedSource{frame: scene(70)}
		pins := indicator.NewPins(ctx)
		pub := snapshot.NewPublisher()
		tel := new(recordingTelemetry)
		l := New(src, pins, pub, WithTelemetry(tel), WithTickInterval(ms(5)))

		require.NoError(t, l.Run(ctx))

		// Ten samples before the deadline: t=0, then every 500ms.
		require.Len(t, tel.samples, 10)

		// The scene stays hot: a completed sequence is followed by a new one on the next sample.
		var completed, triggered int

		for _, e := range tel.events {
			switch e.Kind {
			case alarm.EventCompleted:
				completed++
			case alarm.EventTriggered:
				triggered++
			case alarm.EventStopped:
			}
		}

		require.Positive(t, completed)
		require.Greater(t, triggered, completed)
		require.Equal(t, alarm.EventStopped, tel.events[len(tel.events)-1].Kind)
		require.False(t, pub.ReadStatus().Alarm.Active())
		require.False(t, pins.Levels().Transducer)
	})
}
