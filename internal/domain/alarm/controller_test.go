package alarm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeSignals records the last level of every signal and counts writes.
type fakeSignals struct {
	// red, green and transducer hold the last written levels.
	red, green, transducer bool
	// writes counts all Set calls.
	writes int
}

func (f *fakeSignals) SetRed(on bool)        { f.red = on; f.writes++ }
func (f *fakeSignals) SetGreen(on bool)      { f.green = on; f.writes++ }
func (f *fakeSignals) SetTransducer(on bool) { f.transducer = on; f.writes++ }

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

// TestController_TriggerEntersOn verifies the on pattern after a trigger.
func TestController_TriggerEntersOn(t *testing.T) {
	t.Parallel()

	sig := new(fakeSignals)
	c := NewController(sig)

	require.False(t, c.Active())
	require.True(t, c.Trigger(ms(1000)))
	require.Equal(t, PhaseOn, c.Phase())
	require.True(t, sig.transducer)
	require.True(t, sig.red)
	require.False(t, sig.green)
	require.Equal(t, State{Phase: PhaseOn, Steps: 0, Since: ms(1000)}, c.State())
}

// TestController_TriggerIsIdempotent asserts a second trigger keeps steps and cursor.
func TestController_TriggerIsIdempotent(t *testing.T) {
	t.Parallel()

	sig := new(fakeSignals)
	c := NewController(sig)

	require.True(t, c.Trigger(0))
	require.True(t, c.Tick(ms(100)))
	require.Equal(t, 1, c.Steps())

	writes := sig.writes

	require.False(t, c.Trigger(ms(120)))
	require.Equal(t, 1, c.Steps())
	require.Equal(t, PhaseOff, c.Phase())
	require.Equal(t, ms(100), c.State().Since)
	require.Equal(t, writes, sig.writes)
}

// TestController_PhaseDurations checks inclusive boundaries of both phases.
func TestController_PhaseDurations(t *testing.T) {
	t.Parallel()

	sig := new(fakeSignals)
	c := NewController(sig)
	c.Trigger(0)

	require.False(t, c.Tick(ms(99)))
	require.Equal(t, PhaseOn, c.Phase())

	require.True(t, c.Tick(ms(100)))
	require.Equal(t, PhaseOff, c.Phase())
	require.False(t, sig.transducer)
	require.False(t, sig.red)
	require.True(t, sig.green)

	require.False(t, c.Tick(ms(149)))
	require.True(t, c.Tick(ms(150)))
	require.Equal(t, PhaseOn, c.Phase())
	require.True(t, sig.transducer)
	require.True(t, sig.red)
	require.False(t, sig.green)
}

// TestController_Lifecycle runs a full alarm with ticks spaced 150ms apart.
func TestController_Lifecycle(t *testing.T) {
	t.Parallel()

	var events []Event

	sig := new(fakeSignals)
	c := NewController(sig, WithObserver(func(e Event) { events = append(events, e) }))
	c.Trigger(0)

	transitions := 0
	pulses := 1

	for i := 1; c.Active(); i++ {
		require.LessOrEqual(t, i, 100, "alarm never ended")

		before := c.Phase()
		if c.Tick(ms(150 * i)) {
			transitions++

			if before == PhaseOff && c.Phase() == PhaseOn {
				pulses++
			}
		}
	}

	require.Equal(t, StepBudget, transitions)
	require.Equal(t, Cycles, pulses)
	require.Equal(t, PhaseInactive, c.Phase())
	require.False(t, sig.transducer)
	require.False(t, sig.red)
	require.False(t, sig.green)

	require.Len(t, events, 2)
	require.Equal(t, EventTriggered, events[0].Kind)
	require.Equal(t, EventCompleted, events[1].Kind)
	require.Equal(t, StepBudget, events[1].Steps)
	require.Equal(t, ms(150*StepBudget), events[1].At)
}

// TestController_LateTickSkipsPhases documents that a slow caller does not replay missed phases.
func TestController_LateTickSkipsPhases(t *testing.T) {
	t.Parallel()

	c := NewController(new(fakeSignals))
	c.Trigger(0)

	require.True(t, c.Tick(ms(1000)))
	require.Equal(t, 1, c.Steps())
	require.Equal(t, PhaseOff, c.Phase())
}

// TestController_Stop covers explicit cancellation, including on an inactive controller.
func TestController_Stop(t *testing.T) {
	t.Parallel()

	var kinds []EventKind

	sig := new(fakeSignals)
	c := NewController(sig, WithObserver(func(e Event) { kinds = append(kinds, e.Kind) }))

	// The indicator colors stay with the policy; the transducer is always silenced.
	sig.red, sig.green, sig.transducer = true, true, true

	require.False(t, c.Stop())
	require.Equal(t, 1, sig.writes)
	require.False(t, sig.transducer)
	require.True(t, sig.red)
	require.True(t, sig.green)

	c.Trigger(0)
	c.Tick(ms(40))
	require.True(t, c.Stop())
	require.False(t, c.Active())
	require.False(t, sig.transducer)
	require.False(t, sig.red)
	require.False(t, sig.green)
	require.False(t, c.Tick(ms(500)))

	require.Equal(t, []EventKind{EventTriggered, EventStopped}, kinds)

	// A new trigger starts a fresh sequence.
	require.True(t, c.Trigger(ms(600)))
	require.Equal(t, 0, c.Steps())
}

// TestActor covers cloning and rendering of the audit actor.
func TestActor(t *testing.T) {
	t.Parallel()

	require.Nil(t, (*Actor)(nil).Clone())
	require.Equal(t, "local", (*Actor)(nil).String())

	a := &Actor{Hostname: "bench-01", Username: "operator"}
	b := a.Clone()

	require.Equal(t, a, b)
	require.NotSame(t, a, b)
	require.Equal(t, "operator@bench-01", a.String())
}

// TestPhaseAndEventNames pins the names used in logs and on the wire.
func TestPhaseAndEventNames(t *testing.T) {
	t.Parallel()

	require.Equal(t, "inactive", PhaseInactive.String())
	require.Equal(t, "on", PhaseOn.String())
	require.Equal(t, "off", PhaseOff.String())
	require.Equal(t, "triggered", EventTriggered.String())
	require.Equal(t, "completed", EventCompleted.String())
	require.Equal(t, "stopped", EventStopped.String())
}
