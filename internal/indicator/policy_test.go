package indicator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeOwner lets tests decide whether the alarm holds the indicator.
type fakeOwner struct {
	active bool
}

func (f *fakeOwner) Active() bool { return f.active }

// TestModeFor_Boundaries pins the half-open ranges.
func TestModeFor_Boundaries(t *testing.T) {
	t.Parallel()

	cases := []struct {
		maximum float64
		want    Mode
	}{
		{-10, ModeCold},
		{19.99, ModeCold},
		{20.0, ModeNormal},
		{29.99, ModeNormal},
		{30.0, ModeWarm},
		{49.99, ModeWarm},
		{50.0, ModeAlarm},
		{300, ModeAlarm},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, ModeFor(tc.maximum), "maximum %v", tc.maximum)
	}
}

// TestPolicy_Apply checks the colors written for each non-alarm mode.
func TestPolicy_Apply(t *testing.T) {
	t.Parallel()

	pins := NewPins(context.Background())
	p := NewPolicy(pins, nil)

	require.Equal(t, ModeCold, p.Apply(12))
	require.Equal(t, Levels{Blue: true}, pins.Levels())

	require.Equal(t, ModeNormal, p.Apply(20))
	require.Equal(t, Levels{Green: true}, pins.Levels())

	require.Equal(t, ModeWarm, p.Apply(30))
	require.Equal(t, Levels{Red: true}, pins.Levels())
}

// TestPolicy_AlarmHandOver verifies that an alarm reading only clears blue.
func TestPolicy_AlarmHandOver(t *testing.T) {
	t.Parallel()

	pins := NewPins(context.Background())
	p := NewPolicy(pins, new(fakeOwner))

	p.Apply(5)
	require.True(t, pins.Levels().Blue)

	require.Equal(t, ModeAlarm, p.Apply(50))
	require.Equal(t, Levels{}, pins.Levels())
}

// TestPolicy_SilentWhileOwned asserts the policy never overrides a running alarm.
func TestPolicy_SilentWhileOwned(t *testing.T) {
	t.Parallel()

	pins := NewPins(context.Background())
	owner := &fakeOwner{active: true}
	p := NewPolicy(pins, owner)

	pins.SetRed(true)
	pins.SetTransducer(true)

	require.Equal(t, ModeCold, p.Apply(10))
	require.Equal(t, Levels{Red: true, Transducer: true}, pins.Levels())

	owner.active = false

	p.Apply(10)
	require.Equal(t, Levels{Blue: true, Transducer: true}, pins.Levels())
}

// TestModeNames pins the names used in logs and on the wire.
func TestModeNames(t *testing.T) {
	t.Parallel()

	require.Equal(t, "cold", ModeCold.String())
	require.Equal(t, "normal", ModeNormal.String())
	require.Equal(t, "warm", ModeWarm.String())
	require.Equal(t, "alarm", ModeAlarm.String())
}
