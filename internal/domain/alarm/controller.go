package alarm

import "time"

const (
	// OnDuration is how long the transducer and red indicator stay asserted.
	OnDuration = 100 * time.Millisecond
	// OffDuration is the pause between two pulses (green indicator asserted).
	OffDuration = 50 * time.Millisecond
	// Cycles is the number of on/off pulses per alarm.
	Cycles = 10
	// StepBudget is the number of phase transitions after which the alarm
	// ends by itself.
	StepBudget = 2 * Cycles
)

// Phase is the position of the Controller in its blink sequence.
type Phase uint8

const (
	// PhaseInactive means no alarm is running; the indicator is free.
	PhaseInactive Phase = iota
	// PhaseOn asserts the transducer and the red indicator.
	PhaseOn
	// PhaseOff asserts only the green indicator.
	PhaseOff
)

// String returns the lower-case phase name.
func (p Phase) String() string {
	switch p {
	case PhaseInactive:
		return "inactive"
	case PhaseOn:
		return "on"
	case PhaseOff:
		return "off"
	default:
		return "unknown"
	}
}

// Signals are the outputs the alarm drives. Writes are fire-and-forget.
type Signals interface {
	SetRed(on bool)
	SetGreen(on bool)
	SetTransducer(on bool)
}

// pattern is the level of every signal the alarm owns.
type pattern struct {
	transducer bool
	red        bool
	green      bool
}

// transition describes how long a phase is held and which phase follows it.
type transition struct {
	hold time.Duration
	next Phase
}

//nolint:gochecknoglobals // Static lookup tables of the blink sequence.
var (
	transitions = map[Phase]transition{
		PhaseOn:  {hold: OnDuration, next: PhaseOff},
		PhaseOff: {hold: OffDuration, next: PhaseOn},
	}

	patterns = map[Phase]pattern{
		PhaseInactive: {},
		PhaseOn:       {transducer: true, red: true},
		PhaseOff:      {green: true},
	}
)

// EventKind tells why an alarm started or ended.
type EventKind uint8

const (
	// EventTriggered is emitted when an inactive alarm starts.
	EventTriggered EventKind = iota + 1
	// EventCompleted is emitted when the step budget is exhausted.
	EventCompleted
	// EventStopped is emitted on an explicit Stop of a running alarm.
	EventStopped
)

// String returns the lower-case event name.
func (k EventKind) String() string {
	switch k {
	case EventTriggered:
		return "triggered"
	case EventCompleted:
		return "completed"
	case EventStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Event reports a lifecycle change of the alarm.
type Event struct {
	// Kind is what happened.
	Kind EventKind
	// At is the loop time of the change.
	At time.Duration
	// Steps is the number of phase transitions performed so far.
	Steps int
}

// Observer receives lifecycle events. It runs inside the caller's step and
// must return quickly.
type Observer func(Event)

// State is a read-only view of the Controller.
type State struct {
	// Phase is the current phase.
	Phase Phase
	// Steps is the number of phase transitions performed in this alarm.
	Steps int
	// Since is the loop time of the last phase change.
	Since time.Duration
}

// Active reports whether the alarm owns the indicator.
func (s State) Active() bool {
	return s.Phase != PhaseInactive
}

// Controller is the non-blocking blink state machine.
//
// Tick performs at most one transition per call. When the caller steps less
// often than OffDuration phases are skipped instead of replayed, so a late
// loop shortens the visible sequence but never bursts.
type Controller struct {
	// signals receives the pattern of every entered phase.
	signals Signals
	// observer is notified of triggers, completions and stops.
	observer Observer

	// phase is the current state.
	phase Phase
	// steps counts phase transitions since the trigger.
	steps int
	// cursor is the loop time of the last phase change.
	cursor time.Duration
	// lastSeen is the latest loop time passed in, used to stamp Stop events.
	lastSeen time.Duration
}

// Option configures a Controller.
type Option func(*Controller)

// WithObserver registers fn for lifecycle events.
func WithObserver(fn Observer) Option {
	return func(c *Controller) {
		c.observer = fn
	}
}

// NewController creates an inactive controller driving signals.
func NewController(signals Signals, opts ...Option) *Controller {
	c := &Controller{
		signals: signals,
		phase:   PhaseInactive,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Trigger starts the blink sequence in PhaseOn.
// It returns false and changes nothing when an alarm is already running.
func (c *Controller) Trigger(now time.Duration) bool {
	c.lastSeen = now

	if c.phase != PhaseInactive {
		return false
	}

	c.steps = 0
	c.cursor = now
	c.enter(PhaseOn)
	c.notify(EventTriggered)

	return true
}

// Stop ends a running alarm at once, deasserting the transducer, red and
// green. On an inactive controller only the transducer is driven low: red and
// green then belong to the temperature policy. It reports whether a running
// alarm was stopped.
func (c *Controller) Stop() bool {
	if c.phase == PhaseInactive {
		c.signals.SetTransducer(false)

		return false
	}

	c.deactivate(EventStopped)

	return true
}

// Tick advances the sequence when the current phase has been held long
// enough. It reports whether a transition happened.
func (c *Controller) Tick(now time.Duration) bool {
	if c.phase == PhaseInactive {
		return false
	}

	c.lastSeen = now

	tr := transitions[c.phase]
	if now-c.cursor < tr.hold {
		return false
	}

	c.cursor = now
	c.steps++

	if c.steps >= StepBudget {
		c.deactivate(EventCompleted)
		return true
	}

	c.enter(tr.next)

	return true
}

// Active reports whether an alarm is running.
func (c *Controller) Active() bool {
	return c.phase != PhaseInactive
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase {
	return c.phase
}

// Steps returns the number of transitions performed by the running alarm.
func (c *Controller) Steps() int {
	return c.steps
}

// State returns a snapshot of the controller.
func (c *Controller) State() State {
	return State{
		Phase: c.phase,
		Steps: c.steps,
		Since: c.cursor,
	}
}

func (c *Controller) deactivate(kind EventKind) {
	c.enter(PhaseInactive)
	c.notify(kind)
}

func (c *Controller) enter(phase Phase) {
	c.phase = phase

	p := patterns[phase]
	c.signals.SetTransducer(p.transducer)
	c.signals.SetRed(p.red)
	c.signals.SetGreen(p.green)
}

func (c *Controller) notify(kind EventKind) {
	if c.observer == nil {
		return
	}

	c.observer(Event{
		Kind:  kind,
		At:    c.lastSeen,
		Steps: c.steps,
	})
}
